package respcodec

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"unicode/utf8"
)

// Unmarshaler is implemented by types that decode themselves from a RESP value.
type Unmarshaler interface {
	UnmarshalRESP(Value) error
}

var (
	unmarshalerType     = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// UnknownFieldsMode specifies how map keys without a matching struct field are handled.
type UnknownFieldsMode int

const (
	// UnknownFieldsError makes decoding fail with ErrUnknownField.
	UnknownFieldsError UnknownFieldsMode = iota
	// UnknownFieldsIgnore silently skips unknown keys.
	UnknownFieldsIgnore
)

// DecOptions specifies decoding options.
type DecOptions struct {
	// MaxNestedLevels limits the nesting depth of aggregates. 0 uses DefaultMaxNestedLevels.
	MaxNestedLevels int

	// UnknownFields specifies how keys without a matching struct field are handled.
	UnknownFields UnknownFieldsMode
}

// DecMode returns a DecMode for the options, or an error if the options are invalid.
func (opts DecOptions) DecMode() (DecMode, error) {
	if opts.MaxNestedLevels < 0 {
		return DecMode{}, fmt.Errorf("respcodec: invalid MaxNestedLevels %d", opts.MaxNestedLevels)
	}
	if opts.UnknownFields != UnknownFieldsError && opts.UnknownFields != UnknownFieldsIgnore {
		return DecMode{}, fmt.Errorf("respcodec: invalid UnknownFields %d", opts.UnknownFields)
	}
	if opts.MaxNestedLevels == 0 {
		opts.MaxNestedLevels = DefaultMaxNestedLevels
	}
	return DecMode{opts: opts}, nil
}

// DecMode decodes RESP using a fixed set of options. DecMode values are immutable and safe for concurrent use.
type DecMode struct {
	opts DecOptions
}

var defaultDecMode, _ = DecOptions{}.DecMode()

// Unmarshal parses the single RESP value in data and stores the result in the value pointed to by v.
//
// See the package documentation for the accepted conversions.
func Unmarshal(data []byte, v any) error {
	return defaultDecMode.Unmarshal(data, v)
}

// UnmarshalString is like Unmarshal but takes a string.
func UnmarshalString(s string, v any) error {
	return defaultDecMode.Unmarshal([]byte(s), v)
}

// UnmarshalValue stores val in the value pointed to by v.
func UnmarshalValue(val Value, v any) error {
	return defaultDecMode.UnmarshalValue(val, v)
}

// Options returns the options used by dm.
func (dm DecMode) Options() DecOptions {
	return dm.opts
}

// Unmarshal parses the single RESP value in data and stores the result in the value pointed to by v.
func (dm DecMode) Unmarshal(data []byte, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return decodeErr(ErrInvalidTarget)
	}

	r := NewReader(data)
	r.SetMaxNestedLevels(dm.opts.MaxNestedLevels)

	val, err := r.ReadValue()
	if err != nil {
		return err
	}
	if r.Len() > 0 {
		return &DecodeError{Offset: r.Offset(), Err: ErrTrailingData}
	}

	d := decodeState{opts: dm.opts}
	return finishPath(d.decode(val, rv.Elem()))
}

// UnmarshalString is like Unmarshal but takes a string.
func (dm DecMode) UnmarshalString(s string, v any) error {
	return dm.Unmarshal([]byte(s), v)
}

// UnmarshalValue stores val in the value pointed to by v.
func (dm DecMode) UnmarshalValue(val Value, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return decodeErr(ErrInvalidTarget)
	}
	d := decodeState{opts: dm.opts}
	return finishPath(d.decode(val, rv.Elem()))
}

type decodeState struct {
	opts DecOptions
}

func decodeErr(err error) *DecodeError {
	return &DecodeError{Offset: -1, Err: err}
}

func mismatch(val Value, t reflect.Type) error {
	return decodeErr(fmt.Errorf("%w: cannot decode %s into %s", ErrTypeMismatch, val.Type, t))
}

func outOfRange(val Value, t reflect.Type) error {
	var text string
	switch val.Type {
	case TypeInteger:
		text = strconv.FormatInt(val.Int, 10)
	case TypeDouble:
		text = strconv.FormatFloat(val.Float, 'g', -1, 64)
	default:
		text = string(val.Str)
	}
	return decodeErr(fmt.Errorf("%w: %s does not fit into %s", ErrOutOfRange, text, t))
}

func (d *decodeState) decode(val Value, rv reflect.Value) error {
	if rv.Kind() == reflect.Pointer {
		if val.IsNull() {
			rv.SetZero()
			return nil
		}
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return d.decode(val, rv.Elem())
	}

	t := rv.Type()
	if t == valueType {
		rv.Set(reflect.ValueOf(val))
		return nil
	}

	if rv.CanAddr() {
		pv := rv.Addr()
		if u, ok := pv.Interface().(Unmarshaler); ok {
			if err := u.UnmarshalRESP(val); err != nil {
				return withDecodePath(err, "")
			}
			return nil
		}
		if t == bigIntType {
			return d.decodeBigInt(val, pv.Interface().(*big.Int))
		}
		if u, ok := pv.Interface().(encoding.TextUnmarshaler); ok {
			if !val.Type.isString() || val.Null {
				return mismatch(val, t)
			}
			if err := u.UnmarshalText(val.Str); err != nil {
				return withDecodePath(err, "")
			}
			return nil
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		if val.Type != TypeBoolean {
			return mismatch(val, t)
		}
		rv.SetBool(val.Bool)
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return d.decodeInt(val, rv)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return d.decodeUint(val, rv)
	case reflect.Float32, reflect.Float64:
		return d.decodeFloat(val, rv)
	case reflect.String:
		if !val.Type.isString() {
			return mismatch(val, t)
		}
		if !utf8.Valid(val.Str) {
			return decodeErr(ErrInvalidUTF8)
		}
		rv.SetString(string(val.Str))
		return nil
	case reflect.Interface:
		if val.IsNull() {
			rv.SetZero()
			return nil
		}
		if t.NumMethod() != 0 {
			return mismatch(val, t)
		}
		x, err := d.decodeAny(val)
		if err != nil {
			return err
		}
		if x == nil {
			rv.SetZero()
		} else {
			rv.Set(reflect.ValueOf(x))
		}
		return nil
	case reflect.Slice:
		return d.decodeSlice(val, rv)
	case reflect.Array:
		return d.decodeArray(val, rv)
	case reflect.Map:
		return d.decodeMap(val, rv)
	case reflect.Struct:
		return d.decodeStruct(val, rv)
	default:
		return decodeErr(fmt.Errorf("%w: %s", ErrUnsupportedType, t))
	}
}

func (d *decodeState) decodeBigInt(val Value, n *big.Int) error {
	switch val.Type {
	case TypeInteger:
		n.SetInt64(val.Int)
	case TypeBigNumber:
		if _, ok := n.SetString(string(val.Str), 10); !ok {
			return decodeErr(ErrInvalidBigNumber)
		}
	default:
		return mismatch(val, bigIntType)
	}
	return nil
}

func (d *decodeState) decodeInt(val Value, rv reflect.Value) error {
	var n int64
	switch val.Type {
	case TypeInteger:
		n = val.Int
	case TypeBigNumber:
		b, ok := val.BigInt()
		if !ok {
			return decodeErr(ErrInvalidBigNumber)
		}
		if !b.IsInt64() {
			return outOfRange(val, rv.Type())
		}
		n = b.Int64()
	default:
		return mismatch(val, rv.Type())
	}
	if rv.OverflowInt(n) {
		return outOfRange(val, rv.Type())
	}
	rv.SetInt(n)
	return nil
}

func (d *decodeState) decodeUint(val Value, rv reflect.Value) error {
	var n uint64
	switch val.Type {
	case TypeInteger:
		if val.Int < 0 {
			return outOfRange(val, rv.Type())
		}
		n = uint64(val.Int)
	case TypeBigNumber:
		b, ok := val.BigInt()
		if !ok {
			return decodeErr(ErrInvalidBigNumber)
		}
		if !b.IsUint64() {
			return outOfRange(val, rv.Type())
		}
		n = b.Uint64()
	default:
		return mismatch(val, rv.Type())
	}
	if rv.OverflowUint(n) {
		return outOfRange(val, rv.Type())
	}
	rv.SetUint(n)
	return nil
}

// float32Overflow is the smallest magnitude that rounds to infinity when converted to float32.
const float32Overflow = 0x1.ffffffp127

func (d *decodeState) decodeFloat(val Value, rv reflect.Value) error {
	if val.Type != TypeDouble {
		return mismatch(val, rv.Type())
	}
	f := val.Float
	if rv.Kind() == reflect.Float32 && !math.IsInf(f, 0) && !math.IsNaN(f) {
		if math.Abs(f) >= float32Overflow || (f != 0 && float32(f) == 0) {
			return outOfRange(val, rv.Type())
		}
	}
	rv.SetFloat(f)
	return nil
}

func isByteSlice(t reflect.Type) bool {
	return t.Elem().Kind() == reflect.Uint8 && !reflect.PointerTo(t.Elem()).Implements(unmarshalerType)
}

func (d *decodeState) decodeSlice(val Value, rv reflect.Value) error {
	t := rv.Type()
	if isByteSlice(t) && val.Type.isString() {
		if val.Null {
			rv.SetZero()
		} else {
			rv.SetBytes(bytes.Clone(val.Str))
		}
		return nil
	}
	if val.IsNull() {
		rv.SetZero()
		return nil
	}
	if !val.Type.isSequence() {
		return mismatch(val, t)
	}

	s := reflect.MakeSlice(t, len(val.Elems), len(val.Elems))
	for i, e := range val.Elems {
		if err := d.decodeElem(e, s.Index(i), i); err != nil {
			return err
		}
	}
	rv.Set(s)
	return nil
}

func (d *decodeState) decodeArray(val Value, rv reflect.Value) error {
	t := rv.Type()
	if isByteSlice(t) && val.Type.isString() {
		if len(val.Str) > rv.Len() {
			return decodeErr(fmt.Errorf("%w: %d bytes do not fit into %s", ErrOutOfRange, len(val.Str), t))
		}
		rv.SetZero()
		for i, c := range val.Str {
			rv.Index(i).SetUint(uint64(c))
		}
		return nil
	}
	if val.IsNull() {
		rv.SetZero()
		return nil
	}
	if !val.Type.isSequence() {
		return mismatch(val, t)
	}
	if len(val.Elems) > rv.Len() {
		return decodeErr(fmt.Errorf("%w: %d elements do not fit into %s", ErrOutOfRange, len(val.Elems), t))
	}

	rv.SetZero()
	for i, e := range val.Elems {
		if err := d.decodeElem(e, rv.Index(i), i); err != nil {
			return err
		}
	}
	return nil
}

// decodeElem decodes a single element of a sequence. Elements must all match the element type, so a mismatch is
// reported as ErrMixedTypeSequence.
func (d *decodeState) decodeElem(val Value, rv reflect.Value, i int) error {
	err := d.decode(val, rv)
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTypeMismatch) && !errors.Is(err, ErrMixedTypeSequence) {
		if de, ok := err.(*DecodeError); ok {
			de.Err = fmt.Errorf("%w: %w", ErrMixedTypeSequence, de.Err)
		}
	}
	return withDecodePath(err, indexPath(i))
}

// mapKey returns the string value of a map key. Only string types are accepted as keys.
func mapKey(k Value) (string, error) {
	if !k.Type.isString() || k.Null {
		return "", decodeErr(fmt.Errorf("%w: %s", ErrUnsupportedKeyType, k.Type))
	}
	if !utf8.Valid(k.Str) {
		return "", decodeErr(ErrInvalidUTF8)
	}
	return string(k.Str), nil
}

func (d *decodeState) decodeMap(val Value, rv reflect.Value) error {
	t := rv.Type()
	if val.IsNull() {
		rv.SetZero()
		return nil
	}
	if !val.Type.isMap() {
		return mismatch(val, t)
	}

	kt := t.Key()
	if !isKeyType(kt) {
		return decodeErr(fmt.Errorf("%w: %s", ErrUnsupportedKeyType, kt))
	}

	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(t, len(val.Pairs)))
	}
	for _, p := range val.Pairs {
		k, err := mapKey(p.Key)
		if err != nil {
			return err
		}
		kv, err := convertKey(k, kt)
		if err != nil {
			return withDecodePath(err, keyPath(k))
		}
		ev := reflect.New(t.Elem()).Elem()
		if err := d.decode(p.Value, ev); err != nil {
			return withDecodePath(err, keyPath(k))
		}
		rv.SetMapIndex(kv, ev)
	}
	return nil
}

func isKeyType(kt reflect.Type) bool {
	if reflect.PointerTo(kt).Implements(textUnmarshalerType) {
		return true
	}
	switch kt.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	case reflect.Interface:
		return kt.NumMethod() == 0
	default:
		return false
	}
}

func convertKey(k string, kt reflect.Type) (reflect.Value, error) {
	if reflect.PointerTo(kt).Implements(textUnmarshalerType) {
		kp := reflect.New(kt)
		if err := kp.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(k)); err != nil {
			return reflect.Value{}, err
		}
		return kp.Elem(), nil
	}

	kv := reflect.New(kt).Elem()
	switch kt.Kind() {
	case reflect.String:
		kv.SetString(k)
	case reflect.Interface:
		kv.Set(reflect.ValueOf(k))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(k, 10, 64)
		if err != nil || kv.OverflowInt(n) {
			return reflect.Value{}, decodeErr(fmt.Errorf("%w: key %q is not a valid %s", ErrOutOfRange, k, kt))
		}
		kv.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, err := strconv.ParseUint(k, 10, 64)
		if err != nil || kv.OverflowUint(n) {
			return reflect.Value{}, decodeErr(fmt.Errorf("%w: key %q is not a valid %s", ErrOutOfRange, k, kt))
		}
		kv.SetUint(n)
	}
	return kv, nil
}

func (d *decodeState) decodeStruct(val Value, rv reflect.Value) error {
	if !val.Type.isMap() {
		return mismatch(val, rv.Type())
	}

	fields := cachedFields(rv.Type())
	for _, p := range val.Pairs {
		name, err := mapKey(p.Key)
		if err != nil {
			return err
		}
		i, ok := fields.byName[name]
		if !ok {
			if d.opts.UnknownFields == UnknownFieldsIgnore {
				continue
			}
			return &DecodeError{Offset: -1, Path: fieldPath(name), Err: ErrUnknownField}
		}
		if err := d.decode(p.Value, rv.FieldByIndex(fields.list[i].index)); err != nil {
			return withDecodePath(err, fieldPath(name))
		}
	}
	return nil
}

// decodeAny converts val into the natural Go representation used for interface targets.
func (d *decodeState) decodeAny(val Value) (any, error) {
	switch val.Type {
	case TypeSimpleString, TypeSimpleError, TypeBulkString, TypeBulkError, TypeVerbatimString:
		if val.Null {
			return nil, nil
		}
		if utf8.Valid(val.Str) {
			return string(val.Str), nil
		}
		return bytes.Clone(val.Str), nil
	case TypeInteger:
		return val.Int, nil
	case TypeBigNumber:
		n, ok := val.BigInt()
		if !ok {
			return nil, decodeErr(ErrInvalidBigNumber)
		}
		if n.IsInt64() {
			return n.Int64(), nil
		}
		return n, nil
	case TypeDouble:
		return val.Float, nil
	case TypeBoolean:
		return val.Bool, nil
	case TypeNull:
		return nil, nil
	case TypeArray, TypeSet, TypePush:
		if val.Null {
			return nil, nil
		}
		s := make([]any, len(val.Elems))
		for i, e := range val.Elems {
			x, err := d.decodeAny(e)
			if err != nil {
				return nil, withDecodePath(err, indexPath(i))
			}
			s[i] = x
		}
		return s, nil
	case TypeMap, TypeAttribute:
		m := make(map[string]any, len(val.Pairs))
		for _, p := range val.Pairs {
			k, err := mapKey(p.Key)
			if err != nil {
				return nil, err
			}
			x, err := d.decodeAny(p.Value)
			if err != nil {
				return nil, withDecodePath(err, keyPath(k))
			}
			m[k] = x
		}
		return m, nil
	default:
		return nil, decodeErr(fmt.Errorf("%w: %s", ErrUnknownType, val.Type))
	}
}
