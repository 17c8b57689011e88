package collect

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/agusx1211/foldkit/internal/fsaccess"
	"github.com/agusx1211/foldkit/internal/tree"
)

// SelectPatterns selects every node whose path relative to root matches one
// of the glob patterns. Only loaded nodes are considered and excluded
// subtrees are skipped.
func SelectPatterns(t *tree.Tree, root string, patterns []string) (*tree.Tree, error) {
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return t, fmt.Errorf("invalid select pattern %q", pattern)
		}
	}

	var matched []string
	t.Walk(func(n tree.Node, _ int) bool {
		if n.Excluded {
			return false
		}
		rel, ok := fsaccess.Rel(root, n.Path)
		if !ok {
			return true
		}
		for _, pattern := range patterns {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				matched = append(matched, n.Path)
				return false
			}
		}
		return true
	})

	var err error
	for _, path := range matched {
		if t, err = t.SetSelected(path, true); err != nil {
			return t, err
		}
	}
	return t, nil
}
