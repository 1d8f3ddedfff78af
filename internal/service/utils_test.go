package service

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\r\n{\"a\":1}\r\n```", `{"a":1}`},
		{"prose around", "Here you go:\n{\"a\":1}\nHope it helps", `{"a":1}`},
		{"trailing commas", "{\"a\":[1,2,],\n}", "{\"a\":[1,2]\n}"},
		{"array", "result: [1, 2]", "[1, 2]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSON(tt.in))
		})
	}
}

func TestDecodeAnswer(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, DecodeAnswer("```json\n{\"a\": 3,}\n```", &v))
	assert.Equal(t, 3, v.A)

	assert.Error(t, DecodeAnswer("no json here", &v))
}

func TestSanitizeUTF8(t *testing.T) {
	assert.Equal(t, "ab", sanitizeUTF8("a\xffb"))
	assert.Equal(t, "привет", sanitizeUTF8("привет"))
}

func TestLoadPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prompt.txt")
	writeFile(t, path, "  custom prompt\n")

	got, err := LoadPrompt(path, "fallback")
	require.NoError(t, err)
	assert.Equal(t, "custom prompt", got)

	got, err = LoadPrompt("", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", got)

	_, err = LoadPrompt(filepath.Join(dir, "missing.txt"), "fallback")
	assert.Error(t, err)
}
