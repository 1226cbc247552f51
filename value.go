package respcodec

import (
	"math/big"
)

// Value is a single RESP value.
//
// The Type field decides which of the other fields are used:
//
//	TypeSimpleString, TypeSimpleError  Str
//	TypeBulkString                     Str, Null
//	TypeBulkError                      Str
//	TypeInteger                        Int
//	TypeDouble                         Float
//	TypeBoolean                        Bool
//	TypeBigNumber                      Str (base 10 integer literal)
//	TypeVerbatimString                 Format, Str
//	TypeArray, TypeSet, TypePush       Elems, Null
//	TypeMap, TypeAttribute             Pairs
//	TypeNull                           -
//
// Values should be created using the constructor functions and must not be modified after creation.
type Value struct {
	Type   Type
	Str    []byte
	Format string
	Int    int64
	Float  float64
	Bool   bool
	Null   bool
	Elems  []Value
	Pairs  []Pair
}

// Pair is a single key value pair of a map or attribute.
type Pair struct {
	Key   Value
	Value Value
}

// SimpleString returns a simple string value.
func SimpleString(s string) Value {
	return Value{Type: TypeSimpleString, Str: []byte(s)}
}

// SimpleError returns a simple error value.
func SimpleError(s string) Value {
	return Value{Type: TypeSimpleError, Str: []byte(s)}
}

// Integer returns an integer value.
func Integer(n int64) Value {
	return Value{Type: TypeInteger, Int: n}
}

// BulkString returns a bulk string value. A nil slice is treated as empty, use NullBulkString for null values.
func BulkString(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Type: TypeBulkString, Str: b}
}

// NullBulkString returns the RESP2 null bulk string ($-1).
func NullBulkString() Value {
	return Value{Type: TypeBulkString, Null: true}
}

// NullBulkError returns the null bulk error (!-1).
func NullBulkError() Value {
	return Value{Type: TypeBulkError, Null: true}
}

// BulkError returns a bulk error value.
func BulkError(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Type: TypeBulkError, Str: b}
}

// Array returns an array of the given values.
func Array(elems ...Value) Value {
	return Value{Type: TypeArray, Elems: nonNilElems(elems)}
}

// NullArray returns the RESP2 null array (*-1).
func NullArray() Value {
	return Value{Type: TypeArray, Null: true}
}

// Null returns the RESP3 null value.
func Null() Value {
	return Value{Type: TypeNull}
}

// Boolean returns a boolean value.
func Boolean(b bool) Value {
	return Value{Type: TypeBoolean, Bool: b}
}

// Double returns a double value.
func Double(f float64) Value {
	return Value{Type: TypeDouble, Float: f}
}

// BigNumber returns a big number with the given text, which must be a base 10 integer with an optional minus sign.
func BigNumber(text string) (Value, error) {
	if !isIntegerLiteral([]byte(text)) {
		return Value{}, ErrInvalidBigNumber
	}
	return Value{Type: TypeBigNumber, Str: []byte(text)}, nil
}

// VerbatimString returns a verbatim string with the given 3 byte format, e.g. "txt" or "mkd".
func VerbatimString(format, text string) (Value, error) {
	if !isFormatTag(format) {
		return Value{}, ErrInvalidFormatTag
	}
	return Value{Type: TypeVerbatimString, Format: format, Str: []byte(text)}, nil
}

// Map returns a map value with the given pairs in order.
func Map(pairs ...Pair) Value {
	return Value{Type: TypeMap, Pairs: nonNilPairs(pairs)}
}

// Attribute returns an attribute value with the given pairs in order.
func Attribute(pairs ...Pair) Value {
	return Value{Type: TypeAttribute, Pairs: nonNilPairs(pairs)}
}

// Set returns a set of the given values.
func Set(elems ...Value) Value {
	return Value{Type: TypeSet, Elems: nonNilElems(elems)}
}

// Push returns a push value with the given values.
func Push(elems ...Value) Value {
	return Value{Type: TypePush, Elems: nonNilElems(elems)}
}

// IsNull reports whether v represents an absent value. This is the case for Null as well as the null forms of
// bulk strings and aggregates.
func (v Value) IsNull() bool {
	return v.Type == TypeNull || v.Null
}

// BigInt returns the numeric value of an integer or big number.
func (v Value) BigInt() (*big.Int, bool) {
	switch v.Type {
	case TypeInteger:
		return big.NewInt(v.Int), true
	case TypeBigNumber:
		return new(big.Int).SetString(string(v.Str), 10)
	default:
		return nil, false
	}
}

func nonNilElems(elems []Value) []Value {
	if elems == nil {
		return []Value{}
	}
	return elems
}

func nonNilPairs(pairs []Pair) []Pair {
	if pairs == nil {
		return []Pair{}
	}
	return pairs
}

func isIntegerLiteral(b []byte) bool {
	if len(b) > 0 && b[0] == '-' {
		b = b[1:]
	}
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isFormatTag(s string) bool {
	if len(s) != 3 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
