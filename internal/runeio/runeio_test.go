package runeio_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorbin/gosecd/internal/runeio"
)

func TestWriteEscapedString(t *testing.T) {
	for _, tc := range []struct {
		in, out string
	}{
		{"LAMBDA", "LAMBDA"},
		{"a\x1bb", "a^[b"},
		{"tab\there", "tab^Ihere"},
		{"del\x7f", "del^?"},
		{"λx", "λx"},
		{"\u0085", "^[E"},
	} {
		var buf bytes.Buffer
		n, err := runeio.WriteEscapedString(&buf, tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.out, buf.String(), "escaping %q", tc.in)
		assert.Equal(t, len(tc.out), n, "byte count for %q", tc.in)

		var sb strings.Builder
		_, err = runeio.WriteEscapedString(&sb, tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.out, sb.String(), "escaping %q to a builder", tc.in)
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "<ESC>", runeio.Name(0x1b))
	assert.Equal(t, "<NUL>", runeio.Name(0))
	assert.Equal(t, "^?", runeio.Name(0x7f))
	assert.Equal(t, "", runeio.Name('x'))
}

func TestNewReader(t *testing.T) {
	rr := runeio.NewReader(strings.NewReader("λ"))
	r, n, err := rr.ReadRune()
	require.NoError(t, err)
	assert.Equal(t, 'λ', r)
	assert.Equal(t, 2, n)
}
