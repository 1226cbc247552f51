package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format encodes and decodes documents that are converted from and to RESP.
type Format interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the format identifier used on the command line.
	Name() string
}

// JSON reads numbers as json.Number so that large integers are not rounded.
type JSON struct{}

// Marshal serializes v to JSON bytes.
func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal deserializes JSON bytes into v.
func (JSON) Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// Name returns "json".
func (JSON) Name() string { return "json" }

// YAML uses gopkg.in/yaml.v3.
type YAML struct{}

// Marshal serializes v to YAML bytes.
func (YAML) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal deserializes YAML bytes into v.
func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		BigIntConvert: cbor.BigIntConvertShortest,
	}
	cborEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// string keyed maps decode into map[string]any which RESP can represent
	decOpts := cbor.DecOptions{
		DupMapKey:      cbor.DupMapKeyEnforcedAPF,
		IndefLength:    cbor.IndefLengthAllowed,
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}
	cborDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// CBOR uses deterministic encoding with sorted map keys.
type CBOR struct{}

// Marshal serializes v to CBOR bytes.
func (CBOR) Marshal(v any) ([]byte, error) {
	return cborEncMode.Marshal(v)
}

// Unmarshal deserializes CBOR bytes into v.
func (CBOR) Unmarshal(data []byte, v any) error {
	return cborDecMode.Unmarshal(data, v)
}

// Name returns "cbor".
func (CBOR) Name() string { return "cbor" }

// MsgPack uses github.com/vmihailenco/msgpack/v5.
type MsgPack struct{}

// Marshal serializes v to MessagePack bytes.
func (MsgPack) Marshal(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

// Unmarshal deserializes MessagePack bytes into v.
func (MsgPack) Unmarshal(data []byte, v any) error {
	return msgpack.Unmarshal(data, v)
}

// Name returns "msgpack".
func (MsgPack) Name() string { return "msgpack" }

var formats = []Format{JSON{}, YAML{}, CBOR{}, MsgPack{}}

// FormatNames returns the names of all supported formats.
func FormatNames() []string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = f.Name()
	}
	return names
}

// LookupFormat returns the Format with the given name.
func LookupFormat(name string) (Format, error) {
	for _, f := range formats {
		if f.Name() == strings.ToLower(name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("unknown format: %s (supported: %s)", name, strings.Join(FormatNames(), ", "))
}

// Normalize prepares a decoded document for RESP encoding.
//
// Numbers decoded as json.Number become int64, *big.Int or float64. Unsigned integers that fit into an int64 become
// int64 so they are written as integers instead of big numbers. Maps with non-string keys are converted to string
// keyed maps.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case json.Number:
		return normalizeNumber(string(x))
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x), nil
		}
		return x, nil
	case uint:
		if uint64(x) <= math.MaxInt64 {
			return int64(x), nil
		}
		return uint64(x), nil
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[i] = n
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[k] = n
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			key, ok := mapKeyString(k)
			if !ok {
				return nil, fmt.Errorf("unsupported map key %v (%T)", k, k)
			}
			n, err := Normalize(e)
			if err != nil {
				return nil, err
			}
			out[key] = n
		}
		return out, nil
	default:
		return v, nil
	}
}

func normalizeNumber(s string) (any, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	if n, ok := new(big.Int).SetString(s, 10); ok {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}

func mapKeyString(k any) (string, bool) {
	switch x := k.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}

// Document converts a value produced by Unmarshal into any into a form all formats can serialize. Big integers are
// written as json.Number, which keeps them exact in JSON and writes them as strings elsewhere.
func Document(v any) any {
	switch x := v.(type) {
	case *big.Int:
		return json.Number(x.String())
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Document(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Document(e)
		}
		return out
	default:
		return v
	}
}
