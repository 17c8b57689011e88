// Package distribute splits a combined text blob back into files.
package distribute

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/sirupsen/logrus"

	"github.com/agusx1211/foldkit/internal/fsaccess"
)

var (
	ErrNoFiles  = errors.New("no files detected")
	ErrNoTarget = errors.New("no target folder given")
)

// Target is a detected block and the location it will be written to.
type Target struct {
	Block Block
	Path  string
}

// Problem is a reason a plan cannot be written.
type Problem struct {
	Path   string
	Reason string
}

func (p Problem) String() string {
	return p.Path + ": " + p.Reason
}

// Plan is the outcome of a dry run.
type Plan struct {
	Root     string
	Targets  []Target
	Skipped  []Block
	Warnings []string
	Problems []Problem
}

func (p Plan) OK() bool { return len(p.Problems) == 0 }

// PlanError is returned by Distribute when the plan has problems.
type PlanError struct {
	Problems []Problem
}

func (e *PlanError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return "refusing to write: " + strings.Join(parts, "; ")
}

type Result struct {
	Plan    Plan
	Written []string
}

// Distributor writes the files found in a blob below a target folder.
type Distributor struct {
	fs       fsaccess.Accessor
	detector *Detector
	only     []string
	skip     []string
	log      logrus.FieldLogger
}

type Option func(*Distributor)

func WithDetector(d *Detector) Option {
	return func(dist *Distributor) {
		if d != nil {
			dist.detector = d
		}
	}
}

// WithPatterns limits which blocks are written. A block is written when it
// matches one of only (or only is empty) and none of skip.
func WithPatterns(only, skip []string) Option {
	return func(d *Distributor) {
		d.only = only
		d.skip = skip
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(d *Distributor) {
		if log != nil {
			d.log = log
		}
	}
}

func New(fs fsaccess.Accessor, opts ...Option) *Distributor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	d := &Distributor{fs: fs, detector: defaultDetector, log: discard}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Plan detects the blocks of blob and checks where they would be written.
// It performs no writes.
func (d *Distributor) Plan(blob, target string) (Plan, error) {
	if strings.TrimSpace(target) == "" {
		return Plan{}, ErrNoTarget
	}
	for _, pattern := range append(append([]string(nil), d.only...), d.skip...) {
		if !doublestar.ValidatePattern(pattern) {
			return Plan{}, fmt.Errorf("invalid pattern %q", pattern)
		}
	}

	blocks := d.detector.Detect(blob)
	if len(blocks) == 0 {
		return Plan{}, ErrNoFiles
	}

	plan := Plan{Root: target}
	seen := make(map[string]int)
	for _, block := range blocks {
		rel := path.Clean(strings.ReplaceAll(block.Path, `\`, "/"))
		if !d.wanted(rel) {
			plan.Skipped = append(plan.Skipped, block)
			continue
		}

		if rel == ".." || strings.HasPrefix(rel, "../") || filepath.IsAbs(block.Path) || strings.HasPrefix(block.Path, "/") {
			plan.Problems = append(plan.Problems, Problem{Path: block.Path, Reason: "path is outside the target folder"})
			continue
		}
		dest := filepath.Join(target, filepath.FromSlash(rel))
		if !fsaccess.Within(target, dest) || dest == filepath.Clean(target) {
			plan.Problems = append(plan.Problems, Problem{Path: block.Path, Reason: "path is outside the target folder"})
			continue
		}

		if i, ok := seen[dest]; ok {
			plan.Warnings = append(plan.Warnings, fmt.Sprintf("%s appears more than once; the last block wins", block.Path))
			plan.Targets[i].Block = block
			continue
		}
		if info, err := d.fs.Stat(dest); err == nil && info.IsDir() {
			plan.Problems = append(plan.Problems, Problem{Path: block.Path, Reason: "a folder exists at this path"})
			continue
		}
		seen[dest] = len(plan.Targets)
		plan.Targets = append(plan.Targets, Target{Block: block, Path: dest})
	}

	for _, t := range plan.Targets {
		for _, other := range plan.Targets {
			if strings.HasPrefix(other.Path, t.Path+string(filepath.Separator)) {
				plan.Problems = append(plan.Problems, Problem{Path: t.Block.Path, Reason: "also needed as a folder for " + other.Block.Path})
				break
			}
		}
	}

	if len(plan.Targets) == 0 && len(plan.Problems) == 0 {
		return plan, ErrNoFiles
	}
	return plan, nil
}

func (d *Distributor) wanted(rel string) bool {
	for _, pattern := range d.skip {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	if len(d.only) == 0 {
		return true
	}
	for _, pattern := range d.only {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Distribute plans and then writes every block in order of first
// appearance, overwriting existing files. The first failed write stops the
// run; files written before it stay on disk and are listed in the result.
func (d *Distributor) Distribute(ctx context.Context, blob, target string) (Result, error) {
	plan, err := d.Plan(blob, target)
	res := Result{Plan: plan}
	if err != nil {
		return res, err
	}
	if !plan.OK() {
		return res, &PlanError{Problems: plan.Problems}
	}

	for _, t := range plan.Targets {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := d.fs.CreateDirectory(filepath.Dir(t.Path)); err != nil {
			return res, fmt.Errorf("failed to create folder for %s: %w", t.Block.Path, err)
		}
		if err := d.fs.WriteFile(t.Path, t.Block.Content); err != nil {
			return res, fmt.Errorf("failed to write %s: %w", t.Block.Path, err)
		}
		d.log.WithField("path", t.Path).Debug("wrote file")
		res.Written = append(res.Written, t.Path)
	}
	return res, nil
}
