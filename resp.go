package respcodec

import (
	"errors"
	"fmt"
)

var (
	// ErrUnexpectedEOF is returned when the input ends in the middle of a value.
	ErrUnexpectedEOF = errors.New("unexpected end of input")

	// ErrUnknownType is returned when encountering an unknown type prefix.
	ErrUnknownType = errors.New("unknown RESP type")

	// ErrInvalidLength is returned when reading an invalid length or element count.
	ErrInvalidLength = errors.New("invalid length")

	// ErrInvalidInteger is returned when decoding an invalid integer.
	ErrInvalidInteger = errors.New("invalid integer")

	// ErrIntegerOverflow is returned when an integer does not fit into an int64.
	ErrIntegerOverflow = errors.New("integer overflows int64")

	// ErrInvalidDouble is returned when decoding an invalid double.
	ErrInvalidDouble = errors.New("invalid double")

	// ErrInvalidBigNumber is returned for big numbers that are not base 10 integer literals.
	ErrInvalidBigNumber = errors.New("invalid big number")

	// ErrInvalidBoolean is returned when a boolean is neither t nor f.
	ErrInvalidBoolean = errors.New("invalid boolean")

	// ErrInvalidFormatTag is returned for verbatim strings without a valid 3 byte format.
	ErrInvalidFormatTag = errors.New("verbatim string format must be 3 ASCII bytes")

	// ErrUnexpectedEOL is returned when a line or payload does not end in \r\n.
	ErrUnexpectedEOL = errors.New("missing or invalid EOL")

	// ErrNestingTooDeep is returned when aggregates are nested deeper than allowed.
	ErrNestingTooDeep = errors.New("nesting too deep")

	// ErrTrailingData is returned by Unmarshal when the input contains more than a single value.
	ErrTrailingData = errors.New("trailing data after value")
)

var (
	// ErrInvalidUTF8 is returned when decoding a string that is not valid UTF-8 into a Go string.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")

	// ErrOutOfRange is returned when a number does not fit into the target type.
	ErrOutOfRange = errors.New("value out of range")

	// ErrMixedTypeSequence is returned when an element of an aggregate does not match the element type.
	ErrMixedTypeSequence = errors.New("mixed type sequence")

	// ErrUnsupportedKeyType is returned for map keys that are not strings.
	ErrUnsupportedKeyType = errors.New("unsupported map key type")

	// ErrUnknownField is returned when a map contains a key with no matching struct field.
	ErrUnknownField = errors.New("unknown field")

	// ErrTypeMismatch is returned when a RESP value can not be stored in the target type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnsupportedType is returned for Go types that have no RESP representation.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrInvalidTarget is returned when Unmarshal is not given a non-nil pointer.
	ErrInvalidTarget = errors.New("target must be a non-nil pointer")
)

// Type is an enum of the known RESP types with the values of the constants being the single-byte prefix characters.
type Type byte

const (
	// TypeInvalid is returned by Reader when encountering unknown or invalid types.
	TypeInvalid Type = 0
	// TypeSimpleString signifies a simple string.
	TypeSimpleString Type = '+'
	// TypeSimpleError signifies a simple error string.
	TypeSimpleError Type = '-'
	// TypeInteger signifies a 64 bit signed integer.
	TypeInteger Type = ':'
	// TypeBulkString signifies a RESP bulk string.
	TypeBulkString Type = '$'
	// TypeArray signifies a RESP array.
	TypeArray Type = '*'
	// TypeNull signifies the RESP3 null value.
	TypeNull Type = '_'
	// TypeBoolean signifies a boolean.
	TypeBoolean Type = '#'
	// TypeDouble signifies a double precision floating point number.
	TypeDouble Type = ','
	// TypeBigNumber signifies an arbitrary precision integer.
	TypeBigNumber Type = '('
	// TypeBulkError signifies a length prefixed error string.
	TypeBulkError Type = '!'
	// TypeVerbatimString signifies a bulk string with a 3 byte format.
	TypeVerbatimString Type = '='
	// TypeMap signifies an ordered list of key value pairs.
	TypeMap Type = '%'
	// TypeAttribute signifies an attribute map.
	TypeAttribute Type = '|'
	// TypeSet signifies an unordered collection.
	TypeSet Type = '~'
	// TypePush signifies out of band data pushed by the server.
	TypePush Type = '>'
)

var _ fmt.Stringer = TypeInvalid

var types = [256]Type{
	TypeSimpleString:   TypeSimpleString,
	TypeSimpleError:    TypeSimpleError,
	TypeInteger:        TypeInteger,
	TypeBulkString:     TypeBulkString,
	TypeArray:          TypeArray,
	TypeNull:           TypeNull,
	TypeBoolean:        TypeBoolean,
	TypeDouble:         TypeDouble,
	TypeBigNumber:      TypeBigNumber,
	TypeBulkError:      TypeBulkError,
	TypeVerbatimString: TypeVerbatimString,
	TypeMap:            TypeMap,
	TypeAttribute:      TypeAttribute,
	TypeSet:            TypeSet,
	TypePush:           TypePush,
}

var typeNames = [256]string{
	TypeInvalid:        "invalid",
	TypeSimpleString:   "simple string",
	TypeSimpleError:    "simple error",
	TypeInteger:        "integer",
	TypeBulkString:     "bulk string",
	TypeArray:          "array",
	TypeNull:           "null",
	TypeBoolean:        "boolean",
	TypeDouble:         "double",
	TypeBigNumber:      "big number",
	TypeBulkError:      "bulk error",
	TypeVerbatimString: "verbatim string",
	TypeMap:            "map",
	TypeAttribute:      "attribute",
	TypeSet:            "set",
	TypePush:           "push",
}

// String implements the fmt.Stringer interface.
func (t Type) String() string {
	if name := typeNames[t]; name != "" {
		return name
	}
	return fmt.Sprintf("Type(%q)", byte(t))
}

// Valid reports whether t is one of the known RESP types.
func (t Type) Valid() bool {
	return t != TypeInvalid && types[t] == t
}

func (t Type) isString() bool {
	switch t {
	case TypeSimpleString, TypeSimpleError, TypeBulkString, TypeBulkError, TypeVerbatimString:
		return true
	default:
		return false
	}
}

func (t Type) isSequence() bool {
	return t == TypeArray || t == TypeSet || t == TypePush
}

func (t Type) isMap() bool {
	return t == TypeMap || t == TypeAttribute
}
