package respcodec

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"
)

// DefaultMaxNestedLevels is the default limit for nested aggregates used by Reader and the Marshal / Unmarshal
// functions.
const DefaultMaxNestedLevels = 1024

// Reader parses RESP values from a complete in-memory buffer.
//
// Reader never blocks and never retries. Any error aborts the current value and leaves the Reader at an undefined
// position, so callers should stop reading after the first error.
type Reader struct {
	b   []byte
	off int

	depth    int
	maxDepth int
}

// NewReader returns a *Reader that reads from the given buffer.
func NewReader(b []byte) *Reader {
	var rr Reader
	rr.Reset(b)
	return &rr
}

// Reset sets the buffer to read from to b and resets all internal state except for the nesting limit.
func (rr *Reader) Reset(b []byte) {
	rr.b = b
	rr.off = 0
	rr.depth = 0
	if rr.maxDepth <= 0 {
		rr.maxDepth = DefaultMaxNestedLevels
	}
}

// SetMaxNestedLevels sets the maximum nesting depth for aggregate values. Values <= 0 restore the default.
func (rr *Reader) SetMaxNestedLevels(n int) {
	if n <= 0 {
		n = DefaultMaxNestedLevels
	}
	rr.maxDepth = n
}

// Offset returns the number of bytes consumed so far.
func (rr *Reader) Offset() int {
	return rr.off
}

// Len returns the number of unread bytes.
func (rr *Reader) Len() int {
	return len(rr.b) - rr.off
}

// Peek looks at the next byte in the buffer and returns the Type of the next value.
//
// If the buffer is exhausted, io.EOF is returned. Unknown prefixes are reported as TypeInvalid.
func (rr *Reader) Peek() (Type, error) {
	if rr.off >= len(rr.b) {
		return TypeInvalid, io.EOF
	}
	return types[rr.b[rr.off]], nil
}

// ReadValue reads the next complete value including all nested values.
func (rr *Reader) ReadValue() (Value, error) {
	if rr.maxDepth <= 0 {
		rr.maxDepth = DefaultMaxNestedLevels
	}
	return rr.readValue()
}

func (rr *Reader) errorAt(off int, err error) error {
	return &DecodeError{Offset: off, Err: err}
}

func (rr *Reader) readValue() (Value, error) {
	if rr.off >= len(rr.b) {
		return Value{}, rr.errorAt(rr.off, ErrUnexpectedEOF)
	}

	start := rr.off
	t := types[rr.b[rr.off]]
	if t == TypeInvalid {
		return Value{}, rr.errorAt(start, ErrUnknownType)
	}
	rr.off++

	switch t {
	case TypeSimpleString, TypeSimpleError:
		line, err := rr.readLine()
		if err != nil {
			return Value{}, err
		}
		return Value{Type: t, Str: bytes.Clone(line)}, nil
	case TypeInteger:
		n, err := rr.readIntegerLine()
		if err != nil {
			return Value{}, err
		}
		return Integer(n), nil
	case TypeBulkString, TypeBulkError:
		b, null, err := rr.readBulk(true)
		if err != nil {
			return Value{}, err
		}
		if null {
			return Value{Type: t, Null: true}, nil
		}
		return Value{Type: t, Str: bytes.Clone(b)}, nil
	case TypeArray, TypeSet, TypePush, TypeMap, TypeAttribute:
		return rr.readAggregate(t, start)
	case TypeNull:
		if err := rr.readEOL(); err != nil {
			return Value{}, err
		}
		return Null(), nil
	case TypeBoolean:
		return rr.readBoolean()
	case TypeDouble:
		lineStart := rr.off
		line, err := rr.readLine()
		if err != nil {
			return Value{}, err
		}
		f, ok := parseDouble(line)
		if !ok {
			return Value{}, rr.errorAt(lineStart, ErrInvalidDouble)
		}
		return Double(f), nil
	case TypeBigNumber:
		lineStart := rr.off
		line, err := rr.readLine()
		if err != nil {
			return Value{}, err
		}
		if !isIntegerLiteral(line) {
			return Value{}, rr.errorAt(lineStart, ErrInvalidBigNumber)
		}
		return Value{Type: TypeBigNumber, Str: bytes.Clone(line)}, nil
	case TypeVerbatimString:
		payloadStart := rr.off
		b, _, err := rr.readBulk(false)
		if err != nil {
			return Value{}, err
		}
		if len(b) < 4 || b[3] != ':' || !isFormatTag(string(b[:3])) {
			return Value{}, rr.errorAt(payloadStart, ErrInvalidFormatTag)
		}
		return Value{Type: TypeVerbatimString, Format: string(b[:3]), Str: bytes.Clone(b[4:])}, nil
	default:
		return Value{}, rr.errorAt(start, ErrUnknownType)
	}
}

var crlf = []byte("\r\n")

// readLine returns the bytes up to the next \r\n and advances past the EOL marker.
func (rr *Reader) readLine() ([]byte, error) {
	i := bytes.Index(rr.b[rr.off:], crlf)
	if i < 0 {
		return nil, rr.errorAt(len(rr.b), ErrUnexpectedEOF)
	}
	line := rr.b[rr.off : rr.off+i]
	rr.off += i + len(crlf)
	return line, nil
}

// readEOL consumes a \r\n that must follow at the current position.
func (rr *Reader) readEOL() error {
	rest := rr.b[rr.off:]
	switch {
	case len(rest) > 0 && rest[0] != '\r':
		return rr.errorAt(rr.off, ErrUnexpectedEOL)
	case len(rest) < 2:
		return rr.errorAt(len(rr.b), ErrUnexpectedEOF)
	case rest[1] != '\n':
		return rr.errorAt(rr.off+1, ErrUnexpectedEOL)
	}
	rr.off += len(crlf)
	return nil
}

func (rr *Reader) readIntegerLine() (int64, error) {
	start := rr.off
	line, err := rr.readLine()
	if err != nil {
		return 0, err
	}
	if len(line) > 0 && line[0] == '+' {
		return 0, rr.errorAt(start, ErrInvalidInteger)
	}
	n, err := strconv.ParseInt(string(line), 10, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return 0, rr.errorAt(start, ErrIntegerOverflow)
		}
		return 0, rr.errorAt(start, ErrInvalidInteger)
	}
	return n, nil
}

// readLength reads a length or element count. -1 is only accepted if allowNull is true.
func (rr *Reader) readLength(allowNull bool) (int, error) {
	start := rr.off
	line, err := rr.readLine()
	if err != nil {
		return 0, err
	}
	n, ok := parseLength(line)
	if !ok || (n == -1 && !allowNull) {
		return 0, rr.errorAt(start, ErrInvalidLength)
	}
	return n, nil
}

func parseLength(b []byte) (int, bool) {
	if len(b) == 2 && b[0] == '-' && b[1] == '1' {
		return -1, true
	}
	if len(b) == 0 {
		return 0, false
	}
	var n int64
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int64(c-'0')
		if n > math.MaxInt32 {
			return 0, false
		}
	}
	return int(n), true
}

// readBulk reads a length prefixed payload and the trailing EOL marker. The returned slice aliases the buffer.
func (rr *Reader) readBulk(allowNull bool) (payload []byte, null bool, err error) {
	n, err := rr.readLength(allowNull)
	if err != nil {
		return nil, false, err
	}
	if n == -1 {
		return nil, true, nil
	}
	if n > rr.Len() {
		return nil, false, rr.errorAt(len(rr.b), ErrUnexpectedEOF)
	}
	payload = rr.b[rr.off : rr.off+n]
	rr.off += n
	if err := rr.readEOL(); err != nil {
		return nil, false, err
	}
	return payload, false, nil
}

func (rr *Reader) readBoolean() (Value, error) {
	if rr.off >= len(rr.b) {
		return Value{}, rr.errorAt(rr.off, ErrUnexpectedEOF)
	}
	var b bool
	switch rr.b[rr.off] {
	case 't':
		b = true
	case 'f':
		b = false
	default:
		return Value{}, rr.errorAt(rr.off, ErrInvalidBoolean)
	}
	rr.off++
	if err := rr.readEOL(); err != nil {
		return Value{}, err
	}
	return Boolean(b), nil
}

func (rr *Reader) readAggregate(t Type, start int) (Value, error) {
	n, err := rr.readLength(!t.isMap())
	if err != nil {
		return Value{}, err
	}
	if n == -1 {
		return Value{Type: t, Null: true}, nil
	}

	rr.depth++
	defer func() { rr.depth-- }()
	if rr.depth > rr.maxDepth {
		return Value{}, rr.errorAt(start, ErrNestingTooDeep)
	}

	items := n
	if t.isMap() {
		items *= 2
	}
	// every value needs at least 3 bytes, so larger counts can never be satisfied
	if items > rr.Len() {
		return Value{}, rr.errorAt(len(rr.b), ErrUnexpectedEOF)
	}

	if t.isMap() {
		pairs := make([]Pair, 0, n)
		for i := 0; i < n; i++ {
			k, err := rr.readValue()
			if err != nil {
				return Value{}, err
			}
			v, err := rr.readValue()
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: k, Value: v})
		}
		return Value{Type: t, Pairs: pairs}, nil
	}

	elems := make([]Value, 0, n)
	for i := 0; i < n; i++ {
		v, err := rr.readValue()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
	return Value{Type: t, Elems: elems}, nil
}

func parseDouble(b []byte) (float64, bool) {
	switch strings.ToLower(string(b)) {
	case "inf", "+inf":
		return math.Inf(1), true
	case "-inf":
		return math.Inf(-1), true
	case "nan":
		return math.NaN(), true
	}
	if len(b) == 0 {
		return 0, false
	}
	for _, c := range b {
		switch {
		case c >= '0' && c <= '9':
		case c == '+', c == '-', c == '.', c == 'e', c == 'E':
		default:
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(string(b), 64)
	return f, err == nil
}
