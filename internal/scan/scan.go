// Package scan walks a folder recursively and measures its files.
package scan

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/agusx1211/foldkit/internal/fsaccess"
	"github.com/agusx1211/foldkit/internal/tree"
)

// DefaultIgnore names are skipped wherever they appear.
var DefaultIgnore = []string{"node_modules", ".git", "dist", "build", ".next"}

// DefaultLineCountLimit is the size from which files are not read for
// line counting.
const DefaultLineCountLimit int64 = 1 << 20

type Scanner struct {
	fs     fsaccess.Accessor
	ignore map[string]struct{}
	limit  int64
	log    logrus.FieldLogger
}

type Option func(*Scanner)

// WithIgnore replaces the default ignore set.
func WithIgnore(names []string) Option {
	return func(s *Scanner) {
		s.ignore = make(map[string]struct{}, len(names))
		for _, name := range names {
			s.ignore[name] = struct{}{}
		}
	}
}

func WithLineCountLimit(limit int64) Option {
	return func(s *Scanner) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Scanner) {
		if log != nil {
			s.log = log
		}
	}
}

func New(fs fsaccess.Accessor, opts ...Option) *Scanner {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	s := &Scanner{fs: fs, limit: DefaultLineCountLimit, log: discard}
	WithIgnore(DefaultIgnore)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan returns a fully loaded tree of root. Files that cannot be measured are
// kept with zero size and lines; a folder that cannot be listed fails the
// whole scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*tree.Tree, error) {
	b := tree.NewBuilder()
	if err := s.scanDir(ctx, b, tree.None, root); err != nil {
		return nil, err
	}
	return b.Tree(), nil
}

func (s *Scanner) scanDir(ctx context.Context, b *tree.Builder, parent tree.ID, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := s.fs.ListDirectory(dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}

	for _, e := range entries {
		if _, skip := s.ignore[e.Name]; skip {
			continue
		}
		n := tree.NodeFromEntry(e)
		if !e.IsFile {
			n.State = tree.Loaded
			id := b.Add(parent, n)
			if err := s.scanDir(ctx, b, id, e.Path); err != nil {
				return err
			}
			continue
		}
		n.Size, n.Lines = s.measure(e.Path)
		b.Add(parent, n)
	}
	return nil
}

func (s *Scanner) measure(path string) (int64, int) {
	log := s.log.WithField("path", path)
	info, err := s.fs.Stat(path)
	if err != nil {
		log.WithError(err).Debug("failed to stat file")
		return 0, 0
	}
	size := info.Size()
	if size >= s.limit {
		return size, 0
	}
	content, err := s.fs.ReadFile(path)
	if err != nil {
		log.WithError(err).Debug("failed to read file")
		return 0, 0
	}
	return size, strings.Count(content, "\n") + 1
}
