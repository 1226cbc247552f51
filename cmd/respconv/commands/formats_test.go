package commands_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nussjustin/respcodec/cmd/respconv/commands"
)

func testLogger() *slog.Logger {
	return commands.NewLogger(io.Discard, slog.LevelDebug)
}

func TestLookupFormat(t *testing.T) {
	for _, name := range []string{"json", "yaml", "cbor", "msgpack"} {
		f, err := commands.LookupFormat(name)
		require.NoError(t, err)
		assert.Equal(t, name, f.Name())
	}

	f, err := commands.LookupFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, "yaml", f.Name())

	_, err = commands.LookupFormat("xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format: xml")
}

func TestFormatNames(t *testing.T) {
	assert.Equal(t, []string{"json", "yaml", "cbor", "msgpack"}, commands.FormatNames())
}

func TestFormatRoundTrip(t *testing.T) {
	for _, name := range commands.FormatNames() {
		t.Run(name, func(t *testing.T) {
			f, err := commands.LookupFormat(name)
			require.NoError(t, err)

			b, err := f.Marshal(map[string]any{"key": "value"})
			require.NoError(t, err)

			var out any
			require.NoError(t, f.Unmarshal(b, &out))
			assert.Equal(t, map[string]any{"key": "value"}, out)
		})
	}
}

func TestJSONUsesNumbers(t *testing.T) {
	var out any
	require.NoError(t, commands.JSON{}.Unmarshal([]byte(`[1, 1.5, 18446744073709551616]`), &out))
	assert.Equal(t, []any{json.Number("1"), json.Number("1.5"), json.Number("18446744073709551616")}, out)
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		Name     string
		In       any
		Expected any
	}{
		{Name: "integer", In: json.Number("-12"), Expected: int64(-12)},
		{Name: "float", In: json.Number("1.5"), Expected: 1.5},
		{Name: "exponent", In: json.Number("1e3"), Expected: 1000.0},
		{Name: "uint64", In: uint64(5), Expected: int64(5)},
		{Name: "uint64 large", In: uint64(math.MaxUint64), Expected: uint64(math.MaxUint64)},
		{Name: "uint", In: uint(7), Expected: int64(7)},
		{Name: "string", In: "s", Expected: "s"},
		{Name: "nil", In: nil, Expected: nil},
		{
			Name:     "slice",
			In:       []any{json.Number("1"), "x", nil},
			Expected: []any{int64(1), "x", nil},
		},
		{
			Name:     "map",
			In:       map[string]any{"a": []any{json.Number("2")}},
			Expected: map[string]any{"a": []any{int64(2)}},
		},
		{
			Name:     "map with any keys",
			In:       map[any]any{"a": 1, 2: true, false: uint64(3)},
			Expected: map[string]any{"a": 1, "2": true, "false": int64(3)},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			out, err := commands.Normalize(c.In)
			require.NoError(t, err)
			assert.Equal(t, c.Expected, out)
		})
	}
}

func TestNormalizeBigNumber(t *testing.T) {
	out, err := commands.Normalize(json.Number("18446744073709551616"))
	require.NoError(t, err)

	n, ok := out.(*big.Int)
	require.True(t, ok, "expected *big.Int, got %T", out)
	assert.Equal(t, "18446744073709551616", n.String())
}

func TestNormalizeErrors(t *testing.T) {
	_, err := commands.Normalize(map[any]any{1.5: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported map key")

	_, err = commands.Normalize([]any{json.Number("abc")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid number "abc"`)
}

func TestDocument(t *testing.T) {
	n, _ := new(big.Int).SetString("-123456789012345678901234567890", 10)

	out := commands.Document(map[string]any{
		"n":    n,
		"list": []any{n, "s"},
		"i":    int64(1),
	})

	assert.Equal(t, map[string]any{
		"n":    json.Number("-123456789012345678901234567890"),
		"list": []any{json.Number("-123456789012345678901234567890"), "s"},
		"i":    int64(1),
	}, out)
}
