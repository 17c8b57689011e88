package structure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/agusx1211/foldkit/internal/fsaccess"
)

var (
	ErrNoBasePath     = errors.New("no base folder given")
	ErrEmptyStructure = errors.New("structure is empty")
	errEscapesBase    = errors.New("path escapes the base folder")
	errFolderInTheWay = errors.New("a folder already exists at this path")
)

// ItemError records why one entry could not be created.
type ItemError struct {
	Entry Entry
	Path  string
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Outcome summarises a build for reporting.
type Outcome int

const (
	OutcomeNothing Outcome = iota
	OutcomePartial
	OutcomeComplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomeComplete:
		return "complete"
	case OutcomePartial:
		return "partial"
	default:
		return "nothing created"
	}
}

type BuildResult struct {
	Entries []Entry
	Created int
	// Existing counts files that were already present and left as they were.
	Existing int
	Failed   int
	Errors   []ItemError
}

func (r BuildResult) Outcome() Outcome {
	switch {
	case r.Failed == 0 && r.Created+r.Existing > 0:
		return OutcomeComplete
	case r.Created > 0:
		return OutcomePartial
	default:
		return OutcomeNothing
	}
}

// Builder creates the folders and empty files described by a diagram.
type Builder struct {
	fs  fsaccess.Accessor
	log logrus.FieldLogger
}

type BuilderOption func(*Builder)

func WithLogger(log logrus.FieldLogger) BuilderOption {
	return func(b *Builder) {
		if log != nil {
			b.log = log
		}
	}
}

func NewBuilder(fs fsaccess.Accessor, opts ...BuilderOption) *Builder {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	b := &Builder{fs: fs, log: discard}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build parses text and creates every entry below base, root included.
// Failures are recorded per entry and do not stop the remaining entries.
// Existing files are never truncated.
func (b *Builder) Build(ctx context.Context, base, text string) (BuildResult, error) {
	if base == "" {
		return BuildResult{}, ErrNoBasePath
	}
	entries := Parse(text)
	if len(entries) == 0 {
		return BuildResult{}, ErrEmptyStructure
	}

	res := BuildResult{Entries: entries}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if entry.Name == ExcludedMarker {
			continue
		}
		target := filepath.Join(base, filepath.FromSlash(entry.FullPath))
		log := b.log.WithField("path", target)

		if !fsaccess.Within(base, target) {
			b.fail(&res, entry, target, errEscapesBase)
			continue
		}

		if !entry.IsFile {
			if err := b.fs.CreateDirectory(target); err != nil {
				b.fail(&res, entry, target, err)
				continue
			}
			log.Debug("created folder")
			res.Created++
			continue
		}

		if info, err := b.fs.Stat(target); err == nil {
			if info.IsDir() {
				b.fail(&res, entry, target, errFolderInTheWay)
				continue
			}
			log.Debug("file already exists")
			res.Existing++
			continue
		}
		if err := b.fs.WriteFile(target, ""); err != nil {
			b.fail(&res, entry, target, err)
			continue
		}
		log.Debug("created file")
		res.Created++
	}
	return res, nil
}

func (b *Builder) fail(res *BuildResult, entry Entry, path string, err error) {
	b.log.WithField("path", path).WithError(err).Debug("failed to create entry")
	res.Failed++
	res.Errors = append(res.Errors, ItemError{Entry: entry, Path: path, Err: err})
}
