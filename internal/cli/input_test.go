package cli

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  2 \n"), "Pick: ", &out)
	require.NoError(t, err)
	assert.Equal(t, "2", got)
	assert.Equal(t, "Pick: ", out.String())
}

func TestGetSimpleText_PartialLineAtEOF(t *testing.T) {
	got, err := GetSimpleText(rdr("last"), "", &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = GetSimpleText(rdr(""), "", &bytes.Buffer{})
	assert.Error(t, err)
}

func TestConfirm(t *testing.T) {
	for in, want := range map[string]bool{
		"y\n": true, "YES\n": true, "n\n": false, "\n": false, "sure\n": false,
	} {
		var out bytes.Buffer
		got, err := Confirm(rdr(in), "Delete?", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
		assert.Equal(t, "Delete? (y/N): ", out.String())
	}
}

func TestIsInteractive(t *testing.T) {
	orig := isTerminal
	t.Cleanup(func() { isTerminal = orig })

	isTerminal = func(int) bool { return true }
	assert.True(t, IsInteractive(os.Stdin))
	isTerminal = func(int) bool { return false }
	assert.False(t, IsInteractive(os.Stdin))
}
