// Package structure converts between folder trees and ASCII structure
// diagrams, and creates folders and files from a diagram.
package structure

import (
	"strings"

	"github.com/agusx1211/foldkit/internal/tree"
)

// ExcludedMarker is rendered as the only child of an excluded node.
const ExcludedMarker = "[excluded]"

const (
	branch      = "├── "
	lastBranch  = "└── "
	pipeIndent  = "│   "
	blankIndent = "    "
)

// Item is a node as it should appear in a diagram.
type Item struct {
	Name     string
	IsFile   bool
	Excluded bool
	Children []Item
}

// View selects which part of a tree is rendered.
type View int

const (
	// ViewCurrent shows what the user has opened: children of expanded folders.
	ViewCurrent View = iota
	// ViewFull shows every loaded node.
	ViewFull
)

// FromTree converts the tree into diagram items. Excluded nodes are kept
// without their children.
func FromTree(t *tree.Tree, view View) []Item {
	var convert func(ids []tree.ID) []Item
	convert = func(ids []tree.ID) []Item {
		items := make([]Item, 0, len(ids))
		for _, id := range ids {
			n := t.Node(id)
			item := Item{Name: n.Name, IsFile: n.IsFile, Excluded: n.Excluded}
			descend := !n.IsFile && !n.Excluded && n.State == tree.Loaded
			if view == ViewCurrent {
				descend = descend && n.Expanded
			}
			if descend {
				item.Children = convert(n.Children)
			}
			items = append(items, item)
		}
		return items
	}
	return convert(t.Roots())
}

// Render produces the diagram for a root folder and its top-level items.
func Render(rootName string, items []Item) string {
	var sb strings.Builder
	sb.WriteString(rootName + "/\n")
	renderItems(&sb, items, "")
	return sb.String()
}

func renderItems(sb *strings.Builder, items []Item, prefix string) {
	for i, item := range items {
		isLast := i == len(items)-1
		marker := branch
		childPrefix := prefix + pipeIndent
		if isLast {
			marker = lastBranch
			childPrefix = prefix + blankIndent
		}
		sb.WriteString(prefix + marker + item.Name + "\n")

		if item.Excluded {
			sb.WriteString(childPrefix + lastBranch + ExcludedMarker + "\n")
			continue
		}
		renderItems(sb, item.Children, childPrefix)
	}
}

// RootName returns the final segment of a folder path, accepting both path
// separators.
func RootName(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return path
	}
	if i := strings.LastIndexAny(trimmed, `/\`); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}
