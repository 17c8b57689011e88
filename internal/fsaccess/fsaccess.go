// Package fsaccess is the filesystem capability consumed by the foldkit engines.
package fsaccess

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Entry is one immediate child of a listed directory.
type Entry struct {
	Name   string
	Path   string
	IsFile bool
}

// Accessor lists, reads and writes paths on behalf of the engines.
type Accessor interface {
	ListDirectory(path string) ([]Entry, error)
	ReadFile(path string) (string, error)
	WriteFile(path, content string) error
	CreateDirectory(path string) error
	Stat(path string) (fs.FileInfo, error)
}

// AccessError describes a failed accessor call.
type AccessError struct {
	Op   string
	Path string
	Err  error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// FS implements Accessor on top of an afero filesystem.
type FS struct {
	fs afero.Fs
}

// New wraps an existing afero filesystem.
func New(fsys afero.Fs) *FS {
	return &FS{fs: fsys}
}

// NewOS returns an accessor for the host filesystem.
func NewOS() *FS {
	return New(afero.NewOsFs())
}

// NewMemory returns an empty in-memory accessor.
func NewMemory() *FS {
	return New(afero.NewMemMapFs())
}

// NewOverlay returns an accessor that reads through to base and keeps every
// write in memory. Used for dry runs.
func NewOverlay(base *FS) *FS {
	return New(afero.NewCopyOnWriteFs(afero.NewReadOnlyFs(base.fs), afero.NewMemMapFs()))
}

// Afero exposes the underlying filesystem.
func (a *FS) Afero() afero.Fs {
	return a.fs
}

func (a *FS) ListDirectory(path string) ([]Entry, error) {
	infos, err := afero.ReadDir(a.fs, path)
	if err != nil {
		return nil, &AccessError{Op: "list", Path: path, Err: err}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, Entry{
			Name:   info.Name(),
			Path:   filepath.Join(path, info.Name()),
			IsFile: !info.IsDir(),
		})
	}
	return entries, nil
}

func (a *FS) ReadFile(path string) (string, error) {
	data, err := afero.ReadFile(a.fs, path)
	if err != nil {
		return "", &AccessError{Op: "read", Path: path, Err: err}
	}
	return string(data), nil
}

func (a *FS) WriteFile(path, content string) error {
	if err := a.mkdirAll(filepath.Dir(path)); err != nil {
		return &AccessError{Op: "write", Path: path, Err: err}
	}
	if err := afero.WriteFile(a.fs, path, []byte(content), 0o644); err != nil {
		return &AccessError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (a *FS) CreateDirectory(path string) error {
	if err := a.mkdirAll(path); err != nil {
		return &AccessError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

func (a *FS) Stat(path string) (fs.FileInfo, error) {
	info, err := a.fs.Stat(path)
	if err != nil {
		return nil, &AccessError{Op: "stat", Path: path, Err: err}
	}
	return info, nil
}

// mkdirAll treats an existing directory as success; copy-on-write layers
// report directories that only exist in the base layer as ErrFileExists.
func (a *FS) mkdirAll(path string) error {
	if info, err := a.fs.Stat(path); err == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%s exists and is not a directory", path)
	}
	return a.fs.MkdirAll(path, 0o755)
}

// Within reports whether path is root itself or lies below it.
func Within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Rel returns path relative to root with forward slashes, and false when
// path is not below root.
func Rel(root, path string) (string, bool) {
	if !Within(root, path) {
		return "", false
	}
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
