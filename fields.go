package respcodec

import (
	"reflect"
	"strings"
	"sync"
)

type field struct {
	name      string
	index     []int
	typ       reflect.Type
	omitEmpty bool
	depth     int
}

type structFields struct {
	list   []field
	byName map[string]int
}

// fieldCache maps reflect.Type to *structFields.
var fieldCache sync.Map

func cachedFields(t reflect.Type) *structFields {
	if f, ok := fieldCache.Load(t); ok {
		return f.(*structFields)
	}
	f, _ := fieldCache.LoadOrStore(t, typeFields(t))
	return f.(*structFields)
}

// typeFields returns the encodable fields of t in declaration order. Fields of embedded structs without a tag name
// are inlined at the position of the embedded field. If a name is used more than once, the shallowest field wins
// and the first one declared on equal depth.
func typeFields(t reflect.Type) *structFields {
	var all []field
	collectFields(t, nil, 0, &all)

	sf := &structFields{byName: make(map[string]int, len(all))}
	for _, f := range all {
		if i, ok := sf.byName[f.name]; ok {
			if sf.list[i].depth <= f.depth {
				continue
			}
			sf.list[i] = f
			continue
		}
		sf.byName[f.name] = len(sf.list)
		sf.list = append(sf.list, f)
	}
	return sf
}

func collectFields(t reflect.Type, index []int, depth int, out *[]field) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)

		tag := sf.Tag.Get("resp")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		idx := make([]int, len(index)+1)
		copy(idx, index)
		idx[len(index)] = i

		if sf.Anonymous && name == "" && sf.Type.Kind() == reflect.Struct {
			collectFields(sf.Type, idx, depth+1, out)
			continue
		}
		if !sf.IsExported() {
			continue
		}
		if name == "" {
			name = sf.Name
		}

		*out = append(*out, field{
			name:      name,
			index:     idx,
			typ:       sf.Type,
			omitEmpty: hasOption(opts, "omitempty"),
			depth:     depth,
		})
	}
}

func hasOption(opts, name string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == name {
			return true
		}
	}
	return false
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Interface, reflect.Pointer:
		return v.IsZero()
	default:
		return false
	}
}
