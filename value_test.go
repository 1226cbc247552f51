package respcodec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nussjustin/respcodec"
)

func TestValueConstructors(t *testing.T) {
	assert.Equal(t, []byte{}, respcodec.BulkString(nil).Str)
	assert.False(t, respcodec.BulkString(nil).IsNull())
	assert.Equal(t, []byte{}, respcodec.BulkError(nil).Str)

	assert.NotNil(t, respcodec.Array().Elems)
	assert.NotNil(t, respcodec.Set().Elems)
	assert.NotNil(t, respcodec.Push().Elems)
	assert.NotNil(t, respcodec.Map().Pairs)
	assert.NotNil(t, respcodec.Attribute().Pairs)

	v := respcodec.Array(respcodec.Integer(1), respcodec.Boolean(true))
	assert.Equal(t, respcodec.TypeArray, v.Type)
	assert.Len(t, v.Elems, 2)
}

func TestValueBigNumber(t *testing.T) {
	for _, s := range []string{"0", "-1", "3492890328409238509324850943850943825024385"} {
		v, err := respcodec.BigNumber(s)
		require.NoError(t, err, s)
		assert.Equal(t, respcodec.TypeBigNumber, v.Type)
		assert.Equal(t, s, string(v.Str))
	}

	for _, s := range []string{"", "-", "+1", "1.5", "1e3", " 1", "0x10"} {
		_, err := respcodec.BigNumber(s)
		assert.ErrorIs(t, err, respcodec.ErrInvalidBigNumber, "input %q", s)
	}
}

func TestValueVerbatimString(t *testing.T) {
	v, err := respcodec.VerbatimString("txt", "hello")
	require.NoError(t, err)
	assert.Equal(t, "txt", v.Format)
	assert.Equal(t, "hello", string(v.Str))

	for _, format := range []string{"", "tx", "text", "tä"} {
		_, err := respcodec.VerbatimString(format, "hello")
		assert.ErrorIs(t, err, respcodec.ErrInvalidFormatTag, "format %q", format)
	}
}

func TestValueIsNull(t *testing.T) {
	for _, test := range []struct {
		Name     string
		In       respcodec.Value
		Expected bool
	}{
		{Name: "null", In: respcodec.Null(), Expected: true},
		{Name: "null bulk string", In: respcodec.NullBulkString(), Expected: true},
		{Name: "null bulk error", In: respcodec.NullBulkError(), Expected: true},
		{Name: "null array", In: respcodec.NullArray(), Expected: true},
		{Name: "null set", In: respcodec.Value{Type: respcodec.TypeSet, Null: true}, Expected: true},
		{Name: "empty bulk string", In: bulk(""), Expected: false},
		{Name: "empty array", In: respcodec.Array(), Expected: false},
		{Name: "false", In: respcodec.Boolean(false), Expected: false},
		{Name: "zero", In: respcodec.Integer(0), Expected: false},
	} {
		assert.Equal(t, test.Expected, test.In.IsNull(), test.Name)
	}
}
