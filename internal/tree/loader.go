package tree

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/agusx1211/foldkit/internal/fsaccess"
)

// Loader lists folders on demand. Concurrent requests for the same folder
// share a single listing.
type Loader struct {
	fs    fsaccess.Accessor
	group singleflight.Group
	log   logrus.FieldLogger
}

type LoaderOption func(*Loader)

func WithLogger(log logrus.FieldLogger) LoaderOption {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

func NewLoader(fs fsaccess.Accessor, opts ...LoaderOption) *Loader {
	l := &Loader{fs: fs, log: discardLogger()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// List returns the immediate entries of path.
func (l *Loader) List(ctx context.Context, path string) ([]fsaccess.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := l.log.WithField("path", path)
	log.Debug("listing requested")
	v, err, shared := l.group.Do(path, func() (interface{}, error) {
		log.Debug("listing folder")
		return l.fs.ListDirectory(path)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debug("joined in-flight listing")
	}
	return v.([]fsaccess.Entry), nil
}

// LoadRoot lists the root folder and returns a tree of its entries.
func (l *Loader) LoadRoot(ctx context.Context, root string) (*Tree, error) {
	entries, err := l.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", root, err)
	}
	return New(entries), nil
}

// Load lists a folder that is not loaded yet and attaches its children.
// Loaded folders are returned unchanged.
func (l *Loader) Load(ctx context.Context, t *Tree, path string) (*Tree, error) {
	id, err := t.lookup(path)
	if err != nil {
		return t, err
	}
	n := t.nodes[id]
	if n.IsFile {
		return t, fmt.Errorf("%s: %w", path, ErrNotFolder)
	}
	if n.State == Loaded {
		return t, nil
	}
	entries, err := l.List(ctx, path)
	if err != nil {
		return t, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return t.WithChildren(path, entries)
}

// Expand toggles a folder open or closed, loading its children the first time
// it is opened. A folder whose listing is already in flight is left alone.
func (l *Loader) Expand(ctx context.Context, t *Tree, path string) (*Tree, error) {
	id, err := t.lookup(path)
	if err != nil {
		return t, err
	}
	n := t.nodes[id]
	if n.IsFile {
		return t, fmt.Errorf("%s: %w", path, ErrNotFolder)
	}
	if n.State == Loading {
		return t, nil
	}
	if !n.Expanded && n.State == NotLoaded {
		if t, err = l.Load(ctx, t, path); err != nil {
			return t, err
		}
	}
	return t.ToggleExpanded(path)
}

// LoadAll loads every folder that is not excluded. Excluded folders keep
// whatever children they already have.
func (l *Loader) LoadAll(ctx context.Context, t *Tree) (*Tree, error) {
	return l.LoadMatching(ctx, t, nil)
}

// LoadMatching is LoadAll with a predicate: nodes for which keep returns
// false are marked excluded and not descended into. A nil keep keeps all.
func (l *Loader) LoadMatching(ctx context.Context, t *Tree, keep func(Node) bool) (*Tree, error) {
	var err error
	var visit func(ids []ID) error
	visit = func(ids []ID) error {
		for _, id := range ids {
			n := t.nodes[id]
			if !n.Excluded && keep != nil && !keep(t.Node(id)) {
				if t, err = t.SetExcluded(n.Path, true); err != nil {
					return err
				}
				continue
			}
			if n.IsFile || n.Excluded {
				continue
			}
			if n.State != Loaded {
				if t, err = l.Load(ctx, t, n.Path); err != nil {
					return err
				}
			}
			if err := visit(t.nodes[id].Children); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(t.roots); err != nil {
		return t, err
	}
	return t, nil
}
