package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFlatten_UniqueNamesSameBytes(t *testing.T) {
	src := t.TempDir()
	inputs := map[string]string{
		"report.pdf":           "root report",
		"a/report.pdf":         "a report",
		"a/b/report.pdf":       "b report",
		"a/b/notes":            "no extension",
		"c/notes":              "other notes",
		"c/statement.2024.csv": "1,2,3",
	}
	for rel, content := range inputs {
		writeFile(t, filepath.Join(src, rel), content)
	}
	writeFile(t, filepath.Join(src, ".DS_Store"), "junk")
	writeFile(t, filepath.Join(src, ".cache", "x.pdf"), "junk")

	dst := filepath.Join(t.TempDir(), "flat")
	report, err := Flatten(src, dst, FlattenOptions{}, zap.NewNop())
	require.NoError(t, err)
	assert.Empty(t, report.Failed)
	require.Len(t, report.Copied, len(inputs))

	entries, err := os.ReadDir(dst)
	require.NoError(t, err)
	require.Len(t, entries, len(inputs))

	seen := map[string]bool{}
	for _, c := range report.Copied {
		assert.False(t, seen[c.Target], "duplicate target %s", c.Target)
		seen[c.Target] = true

		want, err := os.ReadFile(c.Source)
		require.NoError(t, err)
		got, err := os.ReadFile(c.Target)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, name := range []string{"report.pdf", "report_1.pdf", "report_2.pdf", "notes", "notes_1", "statement.2024.csv"} {
		assert.FileExists(t, filepath.Join(dst, name))
	}
}

func TestFlatten_NeverOverwrites(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	writeFile(t, filepath.Join(src, "a.txt"), "new")
	writeFile(t, filepath.Join(dst, "a.txt"), "existing")

	report, err := Flatten(src, dst, FlattenOptions{}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, report.Copied, 1)
	assert.Equal(t, filepath.Join(dst, "a_1.txt"), report.Copied[0].Target)

	old, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(old))
}

func TestFlatten_Numbered(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "b.pdf"), "b")
	writeFile(t, filepath.Join(src, "a", "z.pdf"), "z")

	dst := t.TempDir()
	report, err := Flatten(src, dst, FlattenOptions{Numbered: true}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, report.Copied, 2)

	assert.Equal(t, filepath.Join(dst, "001_z.pdf"), report.Copied[0].Target)
	assert.Equal(t, filepath.Join(dst, "002_b.pdf"), report.Copied[1].Target)
}

func TestFlatten_SkipsNestedDestination(t *testing.T) {
	src := t.TempDir()
	writeFile(t, filepath.Join(src, "a.pdf"), "a")
	dst := filepath.Join(src, "out")

	_, err := Flatten(src, dst, FlattenOptions{}, zap.NewNop())
	require.NoError(t, err)

	// a second run must not pick up its own output
	report, err := Flatten(src, dst, FlattenOptions{}, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, report.Copied, 1)
	assert.Equal(t, filepath.Join(dst, "a_1.pdf"), report.Copied[0].Target)
}

func TestFlatten_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Flatten(filepath.Join(dir, "missing"), filepath.Join(dir, "out"), FlattenOptions{}, zap.NewNop())
	assert.ErrorContains(t, err, "source directory not found")

	_, err = Flatten(dir, dir, FlattenOptions{}, zap.NewNop())
	assert.Error(t, err)
}

func TestCountFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "alice", "a.pdf"), "")
	writeFile(t, filepath.Join(root, "alice", "sub", "b.pdf"), "")
	writeFile(t, filepath.Join(root, "alice", ".hidden"), "")
	writeFile(t, filepath.Join(root, "alice", ".git", "c"), "")
	writeFile(t, filepath.Join(root, "bob", "x.png"), "")
	writeFile(t, filepath.Join(root, ".trash", "y"), "")
	writeFile(t, filepath.Join(root, "top.txt"), "")

	counts, err := CountFiles(root)
	require.NoError(t, err)
	assert.Equal(t, []FolderCount{{Folder: "alice", Files: 2}, {Folder: "bob", Files: 1}}, counts)
}
