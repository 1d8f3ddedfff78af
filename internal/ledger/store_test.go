package ledger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"fin-extract/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStore_LoadMissingIsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "ledger.json"), zap.NewNop())

	l, err := s.Load()
	require.NoError(t, err)
	assert.True(t, l.IsEmpty())
	assert.NotNil(t, l.Files)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	s := NewStore(path, zap.NewNop())

	l := AppendUpload(Clear(), "/docs", []models.FileRecord{{
		ID: "file-abc", Filename: "a.pdf", OriginalPath: "/docs/a.pdf",
		Purpose: "assistants", UploadedAt: "2025-03-01T10:00:00Z", Size: 1234, Status: "processed",
	}}, time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, s.Save(l))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, l, got)

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_WritesExpectedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	s := NewStore(path, zap.NewNop())
	require.NoError(t, s.Save(Clear()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"files": [], "upload_sessions": []}`, string(data))
}

func TestStore_ReadsLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	legacy := `{
  "files": [
    {"id": "file-1", "filename": "a.pdf", "original_path": "/x/a.pdf", "purpose": "assistants",
     "uploaded_at": "2025-01-02T03:04:05.678901", "size": 12, "status": "processed"}
  ],
  "upload_sessions": [
    {"directory": "/x", "uploaded_at": "2025-01-02T03:04:06.000001", "file_count": 1, "file_ids": ["file-1"]}
  ]
}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	l, err := NewStore(path, zap.NewNop()).Load()
	require.NoError(t, err)
	require.Len(t, l.Files, 1)
	assert.Equal(t, "2025-01-02T03:04:05.678901", l.Files[0].UploadedAt)
	assert.Equal(t, []string{"file-1"}, l.UploadSessions[0].FileIDs)
}

func TestStore_MalformedIsEmptyAndBackedUp(t *testing.T) {
	cases := map[string]string{
		"not json":     `{"files": [`,
		"wrong shape":  `{"files": "nope"}`,
		"missing id":   `{"files": [{"filename": "a.pdf"}]}`,
		"top is array": `[]`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "ledger.json")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

			l, err := NewStore(path, zap.NewNop()).Load()
			require.NoError(t, err)
			assert.True(t, l.IsEmpty())

			backup, err := os.ReadFile(path + ".bak")
			require.NoError(t, err)
			assert.Equal(t, body, string(backup))
		})
	}
}

func TestStore_MalformedKeepsEarlierBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	s := NewStore(path, zap.NewNop())

	for _, body := range []string{"first", "second", "third"} {
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		_, err := s.Load()
		require.NoError(t, err)
	}

	for name, want := range map[string]string{
		path + ".bak":   "first",
		path + ".bak.1": "second",
		path + ".bak.2": "third",
	} {
		got, err := os.ReadFile(name)
		require.NoError(t, err)
		assert.Equal(t, want, string(got), name)
	}
}

func TestStore_SaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	s := NewStore(path, zap.NewNop())

	first := AppendUpload(Clear(), "/a", []models.FileRecord{{ID: "f1"}}, time.Now())
	require.NoError(t, s.Save(first))
	require.NoError(t, s.Save(Clear()))

	l, err := s.Load()
	require.NoError(t, err)
	assert.True(t, l.IsEmpty())
}
