// Package collect aggregates the selected files of a tree into one text blob.
package collect

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agusx1211/foldkit/internal/filter"
	"github.com/agusx1211/foldkit/internal/fsaccess"
	"github.com/agusx1211/foldkit/internal/tree"
)

var ErrNothingSelected = errors.New("no files selected")

// File is one resolved file. Err is set when the file could not be read.
type File struct {
	Path    string
	Label   string
	Content string
	Err     error
}

type Result struct {
	Blob   string
	Files  []File
	Read   int
	Failed int
}

// Collector reads selected files below a root folder.
type Collector struct {
	fs     fsaccess.Accessor
	root   string
	filter *filter.Filter
	log    logrus.FieldLogger
}

type Option func(*Collector)

// WithFilter restricts which descendants of a selected folder are collected.
// Explicitly selected files are always collected.
func WithFilter(f *filter.Filter) Option {
	return func(c *Collector) { c.filter = f }
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Collector) {
		if log != nil {
			c.log = log
		}
	}
}

func New(fs fsaccess.Accessor, root string, opts ...Option) *Collector {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Collector{fs: fs, root: root, log: discard}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Label is the header name of a file: its slash-separated path relative to
// the root, or its base name when it lies outside the root. Files directly in
// the root get their base name; nested files keep their folders (b/c.py
// rather than c.py) so that distributing the blob restores them in place.
func (c *Collector) Label(path string) string {
	if rel, ok := fsaccess.Rel(c.root, path); ok && rel != "." {
		return rel
	}
	return filepath.Base(path)
}

// Resolve flattens the selection into file paths in pre-order. Selected
// folders contribute all their files; folders that are not loaded yet are
// listed on the way.
func (c *Collector) Resolve(ctx context.Context, t *tree.Tree) ([]string, error) {
	var paths []string
	var visit func(ids []tree.ID) error
	visit = func(ids []tree.ID) error {
		for _, id := range ids {
			n := t.Node(id)
			switch {
			case n.Selected && n.IsFile:
				paths = append(paths, n.Path)
			case n.Selected:
				files, err := c.filesUnder(ctx, t, n)
				if err != nil {
					return err
				}
				paths = append(paths, files...)
			case len(n.Children) > 0:
				if err := visit(n.Children); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := visit(t.Roots()); err != nil {
		return nil, err
	}
	return paths, nil
}

func (c *Collector) filesUnder(ctx context.Context, t *tree.Tree, n tree.Node) ([]string, error) {
	if n.State != tree.Loaded {
		return c.listFiles(ctx, n.Path)
	}
	var paths []string
	for _, id := range n.Children {
		child := t.Node(id)
		if !c.include(child.Path, !child.IsFile) {
			continue
		}
		if child.IsFile {
			paths = append(paths, child.Path)
			continue
		}
		files, err := c.filesUnder(ctx, t, child)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}

func (c *Collector) listFiles(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.log.WithField("path", dir).Debug("listing folder for collection")
	entries, err := c.fs.ListDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if !c.include(e.Path, !e.IsFile) {
			continue
		}
		if e.IsFile {
			paths = append(paths, e.Path)
			continue
		}
		files, err := c.listFiles(ctx, e.Path)
		if err != nil {
			return nil, err
		}
		paths = append(paths, files...)
	}
	return paths, nil
}

func (c *Collector) include(path string, isDir bool) bool {
	return c.filter == nil || c.filter.ShouldInclude(path, isDir)
}

// Collect resolves the selection and concatenates every file. Read failures
// become inline error segments; they do not fail the collection.
func (c *Collector) Collect(ctx context.Context, t *tree.Tree) (Result, error) {
	paths, err := c.Resolve(ctx, t)
	if err != nil {
		return Result{}, err
	}
	if len(paths) == 0 {
		return Result{}, ErrNothingSelected
	}

	var res Result
	var sb strings.Builder
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		f := File{Path: path, Label: c.Label(path)}
		f.Content, f.Err = c.fs.ReadFile(path)
		if f.Err != nil {
			c.log.WithField("path", path).WithError(f.Err).Debug("failed to read file")
			res.Failed++
		} else {
			c.log.WithField("path", path).Debug("collected file")
			res.Read++
		}
		writeSegment(&sb, f)
		res.Files = append(res.Files, f)
	}
	res.Blob = sb.String()
	return res, nil
}

func writeSegment(sb *strings.Builder, f File) {
	if f.Err != nil {
		fmt.Fprintf(sb, "\n\n# [Error reading %s]: %v\n", f.Path, f.Err)
		return
	}
	fmt.Fprintf(sb, "\n\n# ===== %s =====\n%s\n", f.Label, f.Content)
}
