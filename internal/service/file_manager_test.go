package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fin-extract/internal/ledger"
	"fin-extract/internal/models"
	"fin-extract/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newFileManager(t *testing.T, p *fakeProvider) (*FileManagerService, *ledger.Store) {
	t.Helper()
	store := ledger.NewStore(filepath.Join(t.TempDir(), "ledger.json"), zap.NewNop())
	cfg := &config.UploadConfig{
		Purpose:              "assistants",
		AttachmentExtensions: []string{".pdf", ".txt"},
		MaxAttachments:       2,
	}
	svc := NewFileManagerService(p, store, cfg, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC) }
	return svc, store
}

func TestUploadDirectory_SessionMatchesSuccesses(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "aaa")
	writeFile(t, filepath.Join(dir, "nested", "b.txt"), "bb")
	writeFile(t, filepath.Join(dir, "nested", "bad.pdf"), "x")
	writeFile(t, filepath.Join(dir, ".hidden"), "secret")
	writeFile(t, filepath.Join(dir, ".git", "config"), "cfg")

	p := newFakeProvider()
	p.failUpload["bad.pdf"] = true
	svc, _ := newFileManager(t, p)

	l, report, err := svc.UploadDirectory(context.Background(), ledger.Clear(), dir)
	require.NoError(t, err)

	require.Len(t, report.Uploaded, 2)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, filepath.Join(dir, "nested", "bad.pdf"), report.Failed[0].Path)

	require.Len(t, l.Files, 2)
	require.Len(t, l.UploadSessions, 1)
	sess := l.UploadSessions[0]
	assert.Equal(t, []string{l.Files[0].ID, l.Files[1].ID}, sess.FileIDs)
	assert.Equal(t, 2, sess.FileCount)
	assert.Equal(t, dir, sess.Directory)
	assert.Equal(t, "2025-05-01T09:30:00Z", sess.UploadedAt)

	first := l.Files[0]
	assert.Equal(t, "a.pdf", first.Filename)
	assert.Equal(t, filepath.Join(dir, "a.pdf"), first.OriginalPath)
	assert.Equal(t, "assistants", first.Purpose)
	assert.Equal(t, int64(3), first.Size)
	assert.Equal(t, "processed", first.Status)
	assert.Equal(t, "aaa", string(p.uploaded[first.ID]))
}

func TestUploadDirectory_AllFailedAddsNoSession(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "a")

	p := newFakeProvider()
	p.failUpload["a.pdf"] = true
	svc, _ := newFileManager(t, p)

	l, report, err := svc.UploadDirectory(context.Background(), ledger.Clear(), dir)
	require.NoError(t, err)
	assert.Len(t, report.Failed, 1)
	assert.True(t, l.IsEmpty())
}

func TestUploadDirectory_MissingDirectory(t *testing.T) {
	svc, _ := newFileManager(t, newFakeProvider())

	_, _, err := svc.UploadDirectory(context.Background(), ledger.Clear(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorContains(t, err, "directory not found")
}

func TestAttachments_FilterAndCap(t *testing.T) {
	svc, _ := newFileManager(t, newFakeProvider())
	l := models.Ledger{Files: []models.FileRecord{
		{ID: "1", Filename: "a.pdf"},
		{ID: "2", Filename: "scan.PNG"},
		{ID: "3", Filename: "b.TXT"},
		{ID: "4", Filename: "c.pdf"},
	}}

	refs, filtered, truncated := svc.Attachments(l, []string{"1", "2", "3", "4", "ghost"})

	require.Len(t, refs, 2)
	assert.Equal(t, "1", refs[0].ID)
	assert.Equal(t, "3", refs[1].ID)
	assert.Equal(t, 2, filtered)
	assert.Equal(t, 1, truncated)
}

func TestRun_UploadsSavesAndAsks(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "a")
	writeFile(t, filepath.Join(dir, "b.pdf"), "b")

	p := newFakeProvider()
	p.answer = "analysis"
	svc, store := newFileManager(t, p)

	res, err := svc.Run(context.Background(), RunOptions{Directory: dir, Prompt: "summarise"})
	require.NoError(t, err)
	assert.Equal(t, "analysis", res.Answer)
	require.NotNil(t, res.Report)
	assert.Len(t, res.FileIDs, 2)

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, saved.Files, 2)
	assert.Len(t, saved.UploadSessions, 1)

	require.Len(t, p.completes, 1)
	assert.Equal(t, "summarise", p.completes[0].Prompt)
	assert.Len(t, p.completes[0].Files, 2)
}

func TestRun_SkipsUploadWhenLedgerHasFiles(t *testing.T) {
	p := newFakeProvider()
	svc, store := newFileManager(t, p)
	require.NoError(t, store.Save(ledger.AppendUpload(ledger.Clear(), "/old",
		[]models.FileRecord{{ID: "file-old", Filename: "old.pdf"}}, time.Now())))

	res, err := svc.Run(context.Background(), RunOptions{Directory: "/does/not/matter"})
	require.NoError(t, err)
	assert.Nil(t, res.Report)
	assert.Equal(t, []string{"file-old"}, res.FileIDs)
	assert.Empty(t, p.uploaded)
	require.Len(t, p.completes, 1)
	assert.Equal(t, DefaultAnalysisPrompt, p.completes[0].Prompt)
}
