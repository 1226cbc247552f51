package respcodec_test

import (
	"errors"
	"fmt"

	"github.com/nussjustin/respcodec"
)

func bulk(s string) respcodec.Value {
	return respcodec.BulkString([]byte(s))
}

func simple(s string) respcodec.Value {
	return respcodec.SimpleString(s)
}

func pair(k string, v respcodec.Value) respcodec.Pair {
	return respcodec.Pair{Key: bulk(k), Value: v}
}

func bigNumber(s string) respcodec.Value {
	v, err := respcodec.BigNumber(s)
	if err != nil {
		panic(err)
	}
	return v
}

func verbatim(format, text string) respcodec.Value {
	v, err := respcodec.VerbatimString(format, text)
	if err != nil {
		panic(err)
	}
	return v
}

// Color is an enum without payload, encoded by name.
type Color int

const (
	Red Color = iota
	Green
	Blue
)

var colorNames = []string{"red", "green", "blue"}

func (c Color) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= len(colorNames) {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	for i, name := range colorNames {
		if name == string(b) {
			*c = Color(i)
			return nil
		}
	}
	return fmt.Errorf("unknown color %q", b)
}

type Circle struct {
	Radius float64 `resp:"radius"`
}

type Rect struct {
	Width  float64 `resp:"width"`
	Height float64 `resp:"height"`
}

// Shape is an enum with payload, encoded as a single entry map from the variant name to the payload.
type Shape struct {
	Circle *Circle
	Rect   *Rect
}

var errEmptyShape = errors.New("empty shape")

func (s Shape) MarshalRESP() (respcodec.Value, error) {
	var name string
	var payload any
	switch {
	case s.Circle != nil:
		name, payload = "Circle", s.Circle
	case s.Rect != nil:
		name, payload = "Rect", s.Rect
	default:
		return respcodec.Value{}, errEmptyShape
	}
	v, err := respcodec.MarshalValue(payload)
	if err != nil {
		return respcodec.Value{}, err
	}
	return respcodec.Map(pair(name, v)), nil
}

func (s *Shape) UnmarshalRESP(v respcodec.Value) error {
	if v.Type != respcodec.TypeMap || len(v.Pairs) != 1 {
		return fmt.Errorf("%w: shape must be a single entry map", respcodec.ErrTypeMismatch)
	}
	p := v.Pairs[0]
	switch string(p.Key.Str) {
	case "Circle":
		*s = Shape{Circle: new(Circle)}
		return respcodec.UnmarshalValue(p.Value, s.Circle)
	case "Rect":
		*s = Shape{Rect: new(Rect)}
		return respcodec.UnmarshalValue(p.Value, s.Rect)
	default:
		return fmt.Errorf("unknown shape %q", p.Key.Str)
	}
}
