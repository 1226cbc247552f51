package respcodec

import (
	"io"
	"math"
	"strconv"
)

// Writer wraps an io.Writer and provides methods for writing the RESP protocol.
//
// Each method issues exactly one Write call on the underlying io.Writer. Wrap the io.Writer in a *bufio.Writer when
// writing many small values.
type Writer struct {
	w   io.Writer
	buf []byte
}

// NewWriter returns a *Writer that uses the given io.Writer for writes.
func NewWriter(w io.Writer) *Writer {
	var rw Writer
	rw.Reset(w)
	return &rw
}

var _ io.Writer = (*Writer)(nil)

// Reset sets the underlying io.Writer to w and resets all internal state.
func (rw *Writer) Reset(w io.Writer) {
	rw.buf = rw.buf[:0]
	rw.w = w
}

func (rw *Writer) flush() (int, error) {
	return rw.w.Write(rw.buf)
}

// Write allows writing raw data to the underlying io.Writer.
//
// It implements the io.Writer interface.
func (rw *Writer) Write(dst []byte) (int, error) {
	return rw.w.Write(dst)
}

var nilArrayHeaderBytes = []byte("*-1\r\n")

// WriteArrayHeader writes an array header for an array of length n.
//
// If n is < -1, ErrInvalidLength is returned. -1 writes the RESP2 null array.
func (rw *Writer) WriteArrayHeader(n int) (int, error) {
	if n < -1 {
		return 0, ErrInvalidLength
	}

	if n == -1 { // fast-path
		return rw.w.Write(nilArrayHeaderBytes)
	}

	return rw.writeHeader(TypeArray, n)
}

// WriteSetHeader writes a set header for a set of n elements.
func (rw *Writer) WriteSetHeader(n int) (int, error) {
	return rw.writeHeader(TypeSet, n)
}

// WritePushHeader writes a push header for n elements.
func (rw *Writer) WritePushHeader(n int) (int, error) {
	return rw.writeHeader(TypePush, n)
}

// WriteMapHeader writes a map header for n key value pairs.
func (rw *Writer) WriteMapHeader(n int) (int, error) {
	return rw.writeHeader(TypeMap, n)
}

// WriteAttributeHeader writes an attribute header for n key value pairs.
func (rw *Writer) WriteAttributeHeader(n int) (int, error) {
	return rw.writeHeader(TypeAttribute, n)
}

func (rw *Writer) writeHeader(t Type, n int) (int, error) {
	if n < 0 {
		return 0, ErrInvalidLength
	}
	rw.buf = appendNumber(rw.buf[:0], t, int64(n))
	return rw.flush()
}

var nilBulkStringBytes = []byte("$-1\r\n")

// WriteBulkString writes the byte slice s as bulk string. A nil slice is written as the RESP2 null bulk string.
func (rw *Writer) WriteBulkString(s []byte) (int, error) {
	if s == nil { // fast-path
		return rw.w.Write(nilBulkStringBytes)
	}

	rw.buf = appendBulk(rw.buf[:0], TypeBulkString, s)
	return rw.flush()
}

// WriteBulkError writes the byte slice s as bulk error.
func (rw *Writer) WriteBulkError(s []byte) (int, error) {
	rw.buf = appendBulk(rw.buf[:0], TypeBulkError, s)
	return rw.flush()
}

// WriteVerbatimString writes text as verbatim string with the given 3 byte format.
func (rw *Writer) WriteVerbatimString(format string, text []byte) (int, error) {
	if !isFormatTag(format) {
		return 0, ErrInvalidFormatTag
	}
	rw.buf = appendVerbatim(rw.buf[:0], format, text)
	return rw.flush()
}

// WriteSimpleError writes the string s unvalidated as a simple error.
func (rw *Writer) WriteSimpleError(s string) (int, error) {
	rw.buf = appendLine(rw.buf[:0], TypeSimpleError, s)
	return rw.flush()
}

// WriteSimpleString writes the string s unvalidated as a simple string.
func (rw *Writer) WriteSimpleString(s string) (int, error) {
	rw.buf = appendLine(rw.buf[:0], TypeSimpleString, s)
	return rw.flush()
}

// WriteInteger writes the number n as RESP integer.
func (rw *Writer) WriteInteger(n int64) (int, error) {
	rw.buf = appendNumber(rw.buf[:0], TypeInteger, n)
	return rw.flush()
}

// WriteBigNumber writes the base 10 integer literal s as big number.
func (rw *Writer) WriteBigNumber(s string) (int, error) {
	if !isIntegerLiteral([]byte(s)) {
		return 0, ErrInvalidBigNumber
	}
	rw.buf = appendLine(rw.buf[:0], TypeBigNumber, s)
	return rw.flush()
}

// WriteDouble writes f as double.
func (rw *Writer) WriteDouble(f float64) (int, error) {
	rw.buf = appendDouble(rw.buf[:0], f)
	return rw.flush()
}

var (
	trueBytes  = []byte("#t\r\n")
	falseBytes = []byte("#f\r\n")
	nullBytes  = []byte("_\r\n")
)

// WriteBoolean writes b as boolean.
func (rw *Writer) WriteBoolean(b bool) (int, error) {
	if b {
		return rw.w.Write(trueBytes)
	}
	return rw.w.Write(falseBytes)
}

// WriteNull writes the RESP3 null value.
func (rw *Writer) WriteNull() (int, error) {
	return rw.w.Write(nullBytes)
}

// WriteValue writes v including all nested values in a single Write call.
func (rw *Writer) WriteValue(v Value) (int, error) {
	rw.buf = AppendValue(rw.buf[:0], v)
	return rw.flush()
}

// AppendValue appends the RESP encoding of v to dst and returns the extended buffer.
//
// The output only depends on v. Aggregates are written in the order of their Elems or Pairs.
func AppendValue(dst []byte, v Value) []byte {
	switch v.Type {
	case TypeSimpleString, TypeSimpleError, TypeBigNumber:
		return appendLineBytes(dst, v.Type, v.Str)
	case TypeInteger:
		return appendNumber(dst, TypeInteger, v.Int)
	case TypeBulkString:
		if v.Null {
			return append(dst, nilBulkStringBytes...)
		}
		return appendBulk(dst, TypeBulkString, v.Str)
	case TypeBulkError:
		if v.Null {
			return appendNumber(dst, TypeBulkError, -1)
		}
		return appendBulk(dst, TypeBulkError, v.Str)
	case TypeVerbatimString:
		return appendVerbatim(dst, v.Format, v.Str)
	case TypeNull:
		return append(dst, nullBytes...)
	case TypeBoolean:
		if v.Bool {
			return append(dst, trueBytes...)
		}
		return append(dst, falseBytes...)
	case TypeDouble:
		return appendDouble(dst, v.Float)
	case TypeArray, TypeSet, TypePush:
		if v.Null {
			return appendNumber(dst, v.Type, -1)
		}
		dst = appendNumber(dst, v.Type, int64(len(v.Elems)))
		for _, e := range v.Elems {
			dst = AppendValue(dst, e)
		}
		return dst
	case TypeMap, TypeAttribute:
		dst = appendNumber(dst, v.Type, int64(len(v.Pairs)))
		for _, p := range v.Pairs {
			dst = AppendValue(dst, p.Key)
			dst = AppendValue(dst, p.Value)
		}
		return dst
	default:
		// the zero Value has no type, there is nothing sensible to write other than null
		return append(dst, nullBytes...)
	}
}

func appendNumber(dst []byte, prefix Type, n int64) []byte {
	dst = append(dst, byte(prefix))
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, '\r', '\n')
}

func appendLine(dst []byte, prefix Type, s string) []byte {
	dst = append(dst, byte(prefix))
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

func appendLineBytes(dst []byte, prefix Type, s []byte) []byte {
	dst = append(dst, byte(prefix))
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

func appendBulk(dst []byte, prefix Type, s []byte) []byte {
	dst = append(dst, byte(prefix))
	dst = strconv.AppendUint(dst, uint64(len(s)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, s...)
	return append(dst, '\r', '\n')
}

func appendVerbatim(dst []byte, format string, text []byte) []byte {
	dst = append(dst, byte(TypeVerbatimString))
	dst = strconv.AppendUint(dst, uint64(len(format)+1+len(text)), 10)
	dst = append(dst, '\r', '\n')
	dst = append(dst, format...)
	dst = append(dst, ':')
	dst = append(dst, text...)
	return append(dst, '\r', '\n')
}

func appendDouble(dst []byte, f float64) []byte {
	dst = append(dst, byte(TypeDouble))
	switch {
	case math.IsInf(f, 1):
		dst = append(dst, "inf"...)
	case math.IsInf(f, -1):
		dst = append(dst, "-inf"...)
	case math.IsNaN(f):
		dst = append(dst, "nan"...)
	default:
		dst = strconv.AppendFloat(dst, f, 'f', -1, 64)
	}
	return append(dst, '\r', '\n')
}
