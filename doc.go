// Package respcodec converts between Go values and the Redis RESP protocol (RESP2 and RESP3).
//
// The package is split in two layers. The low level layer consists of the Value type, a tree of RESP values, and
// the Reader and Writer types that parse and produce the wire format from / to complete in-memory buffers. The high
// level layer, Marshal and Unmarshal, maps arbitrary Go values onto Value trees and back, in the same way
// encoding/json does for JSON.
//
// Encoding picks the RESP type from the Go kind of the value:
//
//	int, int8-64, uint8-32        Integer
//	uint, uintptr                 Integer (error if larger than math.MaxInt64)
//	uint64, big.Int               Big number
//	float32, float64              Double
//	bool                          Boolean
//	string, []byte, [N]byte       Bulk string
//	encoding.TextMarshaler        Bulk string
//	nil pointer, nil interface    Null
//	slice, array                  Array
//	map, struct                   Map
//
// Struct fields are encoded in declaration order using the field name as key. The key can be changed with a "resp"
// struct tag, which also supports the "omitempty" option and "-" to skip a field. Map entries are sorted by key.
//
// Decoding is driven by the type of the target. Integer targets accept integers and big numbers that fit, string
// targets accept any string-like RESP type holding valid UTF-8 and pointers treat null values as absent. Types can
// take over their own conversion by implementing Marshaler and Unmarshaler.
//
// Readers and Writers can be reused via the corresponding Reset method.
package respcodec
