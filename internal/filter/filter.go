// Package filter decides which files and folders take part in a collection.
package filter

import (
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/afero"
)

// Options configures a Filter. Exclude patterns ending with "/" are folder
// excludes; all other patterns apply to files.
type Options struct {
	BaseDir string
	// FS is used to read .gitignore and sniff binary files. Defaults to the
	// host filesystem.
	FS               afero.Fs
	IncludeGitIgnore bool
	IncludeGit       bool
	IncludeBin       bool
	IgnoreNames      []string
	Include          []string
	Exclude          []string
}

// Filter handles file filtering logic
type Filter struct {
	fs              afero.Fs
	gitIgnore       *ignore.GitIgnore
	includeGit      bool
	includeBin      bool
	baseDir         string
	ignoreNames     map[string]struct{}
	includePatterns []string
	excludePatterns []string
	excludedDirs    []string
}

// New creates a filter rooted at opts.BaseDir.
func New(opts Options) (*Filter, error) {
	f := &Filter{
		fs:          opts.FS,
		includeGit:  opts.IncludeGit,
		includeBin:  opts.IncludeBin,
		baseDir:     opts.BaseDir,
		ignoreNames: make(map[string]struct{}, len(opts.IgnoreNames)),
	}
	if f.fs == nil {
		f.fs = afero.NewOsFs()
	}
	for _, name := range opts.IgnoreNames {
		f.ignoreNames[name] = struct{}{}
	}

	for _, pat := range opts.Include {
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid include pattern %q", pat)
		}
		f.includePatterns = append(f.includePatterns, pat)
	}
	for _, pat := range opts.Exclude {
		if strings.HasSuffix(pat, "/") {
			f.excludedDirs = append(f.excludedDirs, strings.TrimSuffix(pat, "/"))
			continue
		}
		if !doublestar.ValidatePattern(pat) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pat)
		}
		f.excludePatterns = append(f.excludePatterns, pat)
	}

	if !opts.IncludeGitIgnore {
		data, err := afero.ReadFile(f.fs, filepath.Join(opts.BaseDir, ".gitignore"))
		if err == nil {
			f.gitIgnore = ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
		}
	}

	return f, nil
}

// ShouldInclude returns true if the file/directory should be included
func (f *Filter) ShouldInclude(path string, isDir bool) bool {
	rel, underBase := f.rel(path)
	base := filepath.Base(path)

	if _, ok := f.ignoreNames[base]; ok {
		return false
	}

	if f.gitIgnore != nil && underBase && rel != "." {
		target := rel
		if isDir {
			target += "/"
		}
		if f.gitIgnore.MatchesPath(target) {
			return false
		}
	}

	if !f.includeGit {
		if base == ".git" || strings.Contains(filepath.ToSlash(path), "/.git/") {
			return false
		}
	}

	if isDir {
		return !(underBase && f.isExcludedDir(rel))
	}

	if underBase && f.inExcludedDir(rel) {
		return false
	}

	if !f.includeBin {
		isBinary, err := f.isBinaryFile(path)
		if err == nil && isBinary {
			return false
		}
	}

	if f.matchesAnyPattern(rel, base, f.excludePatterns) {
		return false
	}

	if len(f.includePatterns) > 0 {
		return f.matchesAnyPattern(rel, base, f.includePatterns)
	}

	return true
}

func (f *Filter) rel(path string) (string, bool) {
	rel, err := filepath.Rel(f.baseDir, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (f *Filter) isExcludedDir(rel string) bool {
	for _, dir := range f.excludedDirs {
		if rel == dir || strings.HasPrefix(rel, dir+"/") {
			return true
		}
	}
	return false
}

func (f *Filter) inExcludedDir(rel string) bool {
	dir := rel
	for {
		i := strings.LastIndex(dir, "/")
		if i < 0 {
			return false
		}
		dir = dir[:i]
		if f.isExcludedDir(dir) {
			return true
		}
	}
}

// isBinaryFile attempts a quick detection of whether the file is binary or text
func (f *Filter) isBinaryFile(path string) (bool, error) {
	file, err := f.fs.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	buffer := make([]byte, 2048)
	n, err := file.Read(buffer)
	if err != nil {
		return false, err
	}
	buffer = buffer[:n]

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if strings.Contains(mimeType, "application/") &&
		!strings.Contains(mimeType, "json") &&
		!strings.Contains(mimeType, "xml") &&
		!strings.Contains(mimeType, "javascript") {
		return true, nil
	}

	contentType := http.DetectContentType(buffer)
	return !strings.HasPrefix(contentType, "text/"), nil
}

// matchesAnyPattern checks the root-relative path first and then the base
// name, so "*.go" and "src/**/*.go" both work.
func (f *Filter) matchesAnyPattern(rel, base string, patterns []string) bool {
	for _, pattern := range patterns {
		if rel != "" {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return true
			}
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}
