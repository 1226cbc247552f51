package commands_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nussjustin/respcodec"
	"github.com/nussjustin/respcodec/cmd/respconv/commands"
)

func TestRunDecode(t *testing.T) {
	cases := []struct {
		Name     string
		Format   string
		In       string
		Expected string
	}{
		{
			Name:     "json",
			Format:   "json",
			In:       "%1\r\n+a\r\n:1\r\n*2\r\n$1\r\nx\r\n_\r\n",
			Expected: "{\"a\":1}\n[\"x\",null]\n",
		},
		{
			Name:     "json big number",
			Format:   "json",
			In:       "(123456789012345678901234567890\r\n",
			Expected: "123456789012345678901234567890\n",
		},
		{
			Name:     "yaml",
			Format:   "yaml",
			In:       ":1\r\n+x\r\n",
			Expected: "1\n---\nx\n",
		},
		{
			Name:     "cbor",
			Format:   "cbor",
			In:       ":1\r\n#t\r\n",
			Expected: mustMarshal(t, commands.CBOR{}, int64(1)) + mustMarshal(t, commands.CBOR{}, true),
		},
		{
			Name:     "msgpack",
			Format:   "msgpack",
			In:       "$2\r\nhi\r\n",
			Expected: mustMarshal(t, commands.MsgPack{}, "hi"),
		},
		{
			Name:     "empty input",
			Format:   "json",
			In:       "",
			Expected: "",
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			var out bytes.Buffer
			require.NoError(t, commands.RunDecode(strings.NewReader(c.In), &out, c.Format, 0, testLogger()))
			assert.Equal(t, c.Expected, out.String())
		})
	}
}

func TestRunDecodeErrors(t *testing.T) {
	t.Run("max depth", func(t *testing.T) {
		var out bytes.Buffer
		err := commands.RunDecode(strings.NewReader("*1\r\n*1\r\n:1\r\n"), &out, "json", 1, testLogger())
		require.ErrorIs(t, err, respcodec.ErrNestingTooDeep)
	})

	t.Run("truncated", func(t *testing.T) {
		var out bytes.Buffer
		err := commands.RunDecode(strings.NewReader(":1\r\n$5\r\nab"), &out, "json", 0, testLogger())
		require.ErrorIs(t, err, respcodec.ErrUnexpectedEOF)
		assert.Contains(t, err.Error(), "failed to read value 1")
		assert.Equal(t, "1\n", out.String())
	})

	t.Run("non-string map key", func(t *testing.T) {
		var out bytes.Buffer
		err := commands.RunDecode(strings.NewReader("%1\r\n:1\r\n:2\r\n"), &out, "json", 0, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to convert value 0")
	})

	t.Run("unknown format", func(t *testing.T) {
		var out bytes.Buffer
		err := commands.RunDecode(strings.NewReader(":1\r\n"), &out, "xml", 0, testLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown format")
	})
}
