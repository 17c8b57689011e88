package filter

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func TestFilter_GitIgnore(t *testing.T) {
	fs := newFS(t, map[string]string{
		"/p/.gitignore":  "*.log\ntmp/\n",
		"/p/app.log":     "log line",
		"/p/main.go":     "package main",
		"/p/tmp/x.txt":   "scratch",
		"/p/src/util.go": "package src",
	})

	f, err := New(Options{BaseDir: "/p", FS: fs})
	require.NoError(t, err)

	assert.False(t, f.ShouldInclude("/p/app.log", false))
	assert.False(t, f.ShouldInclude("/p/tmp", true))
	assert.True(t, f.ShouldInclude("/p/main.go", false))
	assert.True(t, f.ShouldInclude("/p/src", true))
	assert.True(t, f.ShouldInclude("/p/src/util.go", false))

	all, err := New(Options{BaseDir: "/p", FS: fs, IncludeGitIgnore: true})
	require.NoError(t, err)
	assert.True(t, all.ShouldInclude("/p/app.log", false))
}

func TestFilter_GitFolder(t *testing.T) {
	fs := newFS(t, map[string]string{"/p/.git/HEAD": "ref: refs/heads/main"})

	f, err := New(Options{BaseDir: "/p", FS: fs})
	require.NoError(t, err)
	assert.False(t, f.ShouldInclude("/p/.git", true))
	assert.False(t, f.ShouldInclude("/p/.git/HEAD", false))

	withGit, err := New(Options{BaseDir: "/p", FS: fs, IncludeGit: true})
	require.NoError(t, err)
	assert.True(t, withGit.ShouldInclude("/p/.git", true))
}

func TestFilter_IgnoreNames(t *testing.T) {
	f, err := New(Options{BaseDir: "/p", FS: afero.NewMemMapFs(), IgnoreNames: []string{"node_modules", "dist"}})
	require.NoError(t, err)

	assert.False(t, f.ShouldInclude("/p/node_modules", true))
	assert.False(t, f.ShouldInclude("/p/web/dist", true))
	assert.True(t, f.ShouldInclude("/p/web", true))
}

func TestFilter_IncludeExcludePatterns(t *testing.T) {
	fs := newFS(t, map[string]string{
		"/p/src/a.go":      "package src",
		"/p/src/a_test.go": "package src",
		"/p/docs/readme":   "text",
		"/p/vendor/x.go":   "package x",
	})
	f, err := New(Options{
		BaseDir: "/p",
		FS:      fs,
		Include: []string{"**/*.go"},
		Exclude: []string{"*_test.go", "vendor/"},
	})
	require.NoError(t, err)

	assert.True(t, f.ShouldInclude("/p/src/a.go", false))
	assert.False(t, f.ShouldInclude("/p/src/a_test.go", false))
	assert.False(t, f.ShouldInclude("/p/docs/readme", false))
	assert.False(t, f.ShouldInclude("/p/vendor", true))
	assert.False(t, f.ShouldInclude("/p/vendor/x.go", false))
	assert.True(t, f.ShouldInclude("/p/docs", true))
}

func TestFilter_BinaryFiles(t *testing.T) {
	fs := newFS(t, map[string]string{
		"/p/logo.png":  "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR",
		"/p/notes.txt": "plain text",
	})
	f, err := New(Options{BaseDir: "/p", FS: fs})
	require.NoError(t, err)
	assert.False(t, f.ShouldInclude("/p/logo.png", false))
	assert.True(t, f.ShouldInclude("/p/notes.txt", false))

	withBin, err := New(Options{BaseDir: "/p", FS: fs, IncludeBin: true})
	require.NoError(t, err)
	assert.True(t, withBin.ShouldInclude("/p/logo.png", false))
}

func TestFilter_InvalidPattern(t *testing.T) {
	_, err := New(Options{BaseDir: "/p", FS: afero.NewMemMapFs(), Include: []string{"[unclosed"}})
	assert.Error(t, err)
}
