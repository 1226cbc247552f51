package respcodec

import (
	"encoding"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strconv"
)

// Marshaler is implemented by types that convert themselves into a RESP value.
//
// Enum-like types with payloads usually return a single entry map from the variant name to the payload.
type Marshaler interface {
	MarshalRESP() (Value, error)
}

var (
	marshalerType     = reflect.TypeOf((*Marshaler)(nil)).Elem()
	textMarshalerType = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	bigIntType        = reflect.TypeOf(big.Int{})
	valueType         = reflect.TypeOf(Value{})
)

// Marshal returns the RESP encoding of v.
//
// See the package documentation for the mapping of Go types to RESP types.
func Marshal(v any) ([]byte, error) {
	val, err := MarshalValue(v)
	if err != nil {
		return nil, err
	}
	return AppendValue(nil, val), nil
}

// MarshalString is like Marshal but returns a string.
func MarshalString(v any) (string, error) {
	b, err := Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// MarshalValue converts v into a Value tree without serializing it.
func MarshalValue(v any) (Value, error) {
	var e encodeState
	val, err := e.encode(reflect.ValueOf(v))
	return val, finishPath(err)
}

// startDetectingCyclesAfter is the number of nested pointers after which pointers are tracked to detect cycles.
const startDetectingCyclesAfter = 1000

type encodeState struct {
	// depth counts nested aggregates, matching the nesting limit of Reader
	depth int

	ptrLevel int
	ptrSeen  map[uintptr]struct{}
}

func (e *encodeState) enter() error {
	if e.depth >= DefaultMaxNestedLevels {
		return &EncodeError{Err: ErrNestingTooDeep}
	}
	e.depth++
	return nil
}

func (e *encodeState) leave() {
	e.depth--
}

func (e *encodeState) encode(rv reflect.Value) (Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null(), nil
		}
	}

	t := rv.Type()
	switch {
	case t == valueType:
		return rv.Interface().(Value), nil
	case t.Implements(marshalerType):
		val, err := rv.Interface().(Marshaler).MarshalRESP()
		if err != nil {
			return Value{}, withEncodePath(err, "")
		}
		return val, nil
	case rv.CanAddr() && reflect.PointerTo(t).Implements(marshalerType):
		val, err := rv.Addr().Interface().(Marshaler).MarshalRESP()
		if err != nil {
			return Value{}, withEncodePath(err, "")
		}
		return val, nil
	case t == bigIntType:
		n := rv.Interface().(big.Int)
		return Value{Type: TypeBigNumber, Str: n.Append(nil, 10)}, nil
	case t.Kind() == reflect.Pointer && t.Elem() == bigIntType:
		return Value{Type: TypeBigNumber, Str: rv.Interface().(*big.Int).Append(nil, 10)}, nil
	case t.Implements(textMarshalerType):
		text, err := rv.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return Value{}, withEncodePath(err, "")
		}
		return BulkString(text), nil
	case rv.CanAddr() && reflect.PointerTo(t).Implements(textMarshalerType):
		text, err := rv.Addr().Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return Value{}, withEncodePath(err, "")
		}
		return BulkString(text), nil
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Boolean(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(rv.Int()), nil
	case reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Integer(int64(rv.Uint())), nil
	case reflect.Uint, reflect.Uintptr:
		n := rv.Uint()
		if n > math.MaxInt64 {
			return Value{}, &EncodeError{Err: ErrIntegerOverflow}
		}
		return Integer(int64(n)), nil
	case reflect.Uint64:
		return Value{Type: TypeBigNumber, Str: strconv.AppendUint(nil, rv.Uint(), 10)}, nil
	case reflect.Float32:
		return Double(widenFloat32(rv.Float())), nil
	case reflect.Float64:
		return Double(rv.Float()), nil
	case reflect.String:
		return BulkString([]byte(rv.String())), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !t.Elem().Implements(marshalerType) {
			if rv.IsNil() {
				return NullBulkString(), nil
			}
			return BulkString(append([]byte{}, rv.Bytes()...)), nil
		}
		if rv.IsNil() {
			return NullArray(), nil
		}
		return e.encodeArray(rv)
	case reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 && !t.Elem().Implements(marshalerType) {
			b := make([]byte, rv.Len())
			reflect.Copy(reflect.ValueOf(b), rv)
			return BulkString(b), nil
		}
		return e.encodeArray(rv)
	case reflect.Map:
		if rv.IsNil() {
			return Null(), nil
		}
		return e.encodeMap(rv)
	case reflect.Struct:
		return e.encodeStruct(rv)
	case reflect.Pointer:
		return e.encodePointer(rv)
	case reflect.Interface:
		return e.encode(rv.Elem())
	default:
		return Value{}, &EncodeError{Err: ErrUnsupportedType}
	}
}

// widenFloat32 converts f to the float64 closest to the shortest decimal representation of float32(f), so that
// 3.1 is written as 3.1 and not 3.0999999046325684.
func widenFloat32(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return f
	}
	w, err := strconv.ParseFloat(strconv.FormatFloat(f, 'g', -1, 32), 64)
	if err != nil {
		return f
	}
	return w
}

func (e *encodeState) encodePointer(rv reflect.Value) (Value, error) {
	e.ptrLevel++
	defer func() { e.ptrLevel-- }()

	if e.ptrLevel > startDetectingCyclesAfter {
		ptr := rv.Pointer()
		if _, ok := e.ptrSeen[ptr]; ok {
			return Value{}, &EncodeError{Err: fmt.Errorf("%w: cycle through %s", ErrNestingTooDeep, rv.Type())}
		}
		if e.ptrSeen == nil {
			e.ptrSeen = make(map[uintptr]struct{})
		}
		e.ptrSeen[ptr] = struct{}{}
		defer delete(e.ptrSeen, ptr)
	}
	return e.encode(rv.Elem())
}

func (e *encodeState) encodeArray(rv reflect.Value) (Value, error) {
	if err := e.enter(); err != nil {
		return Value{}, err
	}
	defer e.leave()

	elems := make([]Value, rv.Len())
	for i := range elems {
		val, err := e.encode(rv.Index(i))
		if err != nil {
			return Value{}, withEncodePath(err, indexPath(i))
		}
		elems[i] = val
	}
	return Array(elems...), nil
}

func (e *encodeState) encodeMap(rv reflect.Value) (Value, error) {
	if err := e.enter(); err != nil {
		return Value{}, err
	}
	defer e.leave()

	pairs := make([]Pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k, err := mapKeyString(iter.Key())
		if err != nil {
			return Value{}, err
		}
		val, err := e.encode(iter.Value())
		if err != nil {
			return Value{}, withEncodePath(err, keyPath(k))
		}
		pairs = append(pairs, Pair{Key: BulkString([]byte(k)), Value: val})
	}
	sort.Slice(pairs, func(i, j int) bool {
		return string(pairs[i].Key.Str) < string(pairs[j].Key.Str)
	})
	return Map(pairs...), nil
}

func mapKeyString(k reflect.Value) (string, error) {
	if k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "", &EncodeError{Err: ErrUnsupportedKeyType}
		}
		k = k.Elem()
	}
	if k.Type().Implements(textMarshalerType) {
		if k.Kind() == reflect.Pointer && k.IsNil() {
			return "", &EncodeError{Err: ErrUnsupportedKeyType}
		}
		text, err := k.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return "", withEncodePath(err, "")
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.String:
		return k.String(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	default:
		return "", &EncodeError{Err: ErrUnsupportedKeyType}
	}
}

func (e *encodeState) encodeStruct(rv reflect.Value) (Value, error) {
	if err := e.enter(); err != nil {
		return Value{}, err
	}
	defer e.leave()

	fields := cachedFields(rv.Type())
	pairs := make([]Pair, 0, len(fields.list))
	for _, f := range fields.list {
		fv := rv.FieldByIndex(f.index)
		if f.omitEmpty && isEmptyValue(fv) {
			continue
		}
		val, err := e.encode(fv)
		if err != nil {
			return Value{}, withEncodePath(err, fieldPath(f.name))
		}
		pairs = append(pairs, Pair{Key: BulkString([]byte(f.name)), Value: val})
	}
	return Map(pairs...), nil
}
