package scan

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agusx1211/foldkit/internal/fsaccess"
	"github.com/agusx1211/foldkit/internal/tree"
)

type spyFS struct {
	*fsaccess.FS
	reads    []string
	failList string
}

func (s *spyFS) ReadFile(path string) (string, error) {
	s.reads = append(s.reads, path)
	return s.FS.ReadFile(path)
}

func (s *spyFS) ListDirectory(path string) ([]fsaccess.Entry, error) {
	if path == s.failList {
		return nil, &fsaccess.AccessError{Op: "list", Path: path, Err: errors.New("permission denied")}
	}
	return s.FS.ListDirectory(path)
}

func project(t *testing.T, files map[string]string) *spyFS {
	t.Helper()
	mem := fsaccess.NewMemory()
	for p, content := range files {
		require.NoError(t, mem.WriteFile(filepath.Join("/proj", p), content))
	}
	return &spyFS{FS: mem}
}

func node(t *testing.T, tr *tree.Tree, rel string) tree.Node {
	t.Helper()
	id, ok := tr.Lookup(filepath.Join("/proj", rel))
	require.True(t, ok, rel)
	return tr.Node(id)
}

func TestScanner_SizesAndLines(t *testing.T) {
	fs := project(t, map[string]string{
		"a.txt":           "one\ntwo\nthree",
		"src/b.js":        "x\n",
		"src/lib/c.go":    "",
		"node_modules/m":  "ignored",
		"web/dist/app.js": "ignored",
	})

	tr, err := New(fs).Scan(context.Background(), "/proj")
	require.NoError(t, err)

	a := node(t, tr, "a.txt")
	assert.Equal(t, int64(13), a.Size)
	assert.Equal(t, 3, a.Lines)
	assert.Equal(t, 2, node(t, tr, "src/b.js").Lines)
	assert.Equal(t, 1, node(t, tr, "src/lib/c.go").Lines)

	src := node(t, tr, "src")
	assert.Equal(t, tree.Loaded, src.State)
	assert.Len(t, src.Children, 2)

	_, ok := tr.Lookup("/proj/node_modules")
	assert.False(t, ok)
	_, ok = tr.Lookup("/proj/web/dist")
	assert.False(t, ok)
	_, ok = tr.Lookup("/proj/web")
	assert.True(t, ok)
}

func TestScanner_LargeFileIsNotRead(t *testing.T) {
	fs := project(t, map[string]string{
		"big.log":   strings.Repeat("a\n", int(DefaultLineCountLimit/2)),
		"small.txt": "hi",
	})

	tr, err := New(fs).Scan(context.Background(), "/proj")
	require.NoError(t, err)

	big := node(t, tr, "big.log")
	assert.Equal(t, DefaultLineCountLimit, big.Size)
	assert.Zero(t, big.Lines)
	assert.Equal(t, []string{filepath.Join("/proj", "small.txt")}, fs.reads)
}

func TestScanner_CustomLimitAndIgnore(t *testing.T) {
	fs := project(t, map[string]string{
		"a.txt":       "0123456789",
		"dist/x.js":   "kept",
		"vendor/y.js": "skipped",
	})

	tr, err := New(fs, WithLineCountLimit(5), WithIgnore([]string{"vendor"})).Scan(context.Background(), "/proj")
	require.NoError(t, err)

	assert.Zero(t, node(t, tr, "a.txt").Lines)
	assert.Equal(t, 1, node(t, tr, "dist/x.js").Lines)
	_, ok := tr.Lookup("/proj/vendor")
	assert.False(t, ok)
}

func TestScanner_ListingFailureAborts(t *testing.T) {
	fs := project(t, map[string]string{"a.txt": "a", "locked/b.txt": "b"})

	fs.failList = "/proj"
	_, err := New(fs).Scan(context.Background(), "/proj")
	var accessErr *fsaccess.AccessError
	require.ErrorAs(t, err, &accessErr)

	fs.failList = filepath.Join("/proj", "locked")
	_, err = New(fs).Scan(context.Background(), "/proj")
	assert.ErrorAs(t, err, &accessErr)
}

func TestScanner_Cancelled(t *testing.T) {
	fs := project(t, map[string]string{"a.txt": "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(fs).Scan(ctx, "/proj")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyze(t *testing.T) {
	fs := project(t, map[string]string{
		"main.go":          "package main\n",
		"lib/util.GO":      "package lib\n\nfunc x() {}\n",
		"README":           "readme",
		"docs/guide.md":    "# guide",
		".vscode/settings": "{}",
	})
	tr, err := New(fs).Scan(context.Background(), "/proj")
	require.NoError(t, err)

	stats := Analyze(tr)
	assert.Equal(t, 4, stats.Files)
	assert.Equal(t, 2, stats.Folders)
	require.Contains(t, stats.Extensions, "go")
	assert.Equal(t, 2, stats.Extensions["go"].Files)
	assert.Equal(t, 6, stats.Extensions["go"].Lines)
	assert.Equal(t, 1, stats.Extensions["other"].Files)
	assert.Equal(t, 1, stats.Extensions["md"].Files)
	assert.NotContains(t, stats.Extensions, "settings")
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "gz", Extension("a.tar.gz"))
	assert.Equal(t, "gitignore", Extension(".gitignore"))
	assert.Equal(t, "other", Extension("Makefile"))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2*1024*1024))
}

func TestReport(t *testing.T) {
	out := Report(Stats{
		Files: 3, Folders: 1, Size: 2048, Lines: 10,
		Extensions: map[string]*ExtStats{
			"go": {Files: 2, Size: 1024, Lines: 8},
			"md": {Files: 1, Size: 1024, Lines: 2},
		},
	})
	assert.Contains(t, out, "files: 3\n")
	assert.Contains(t, out, "size: 2.0 KB\n")
	assert.Less(t, strings.Index(out, "go "), strings.Index(out, "md "))
}
