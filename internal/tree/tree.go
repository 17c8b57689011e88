// Package tree holds the in-memory folder tree shown to the user.
//
// A Tree is an arena of nodes addressed by ID. Trees are never modified in
// place: every mutation returns a new Tree and leaves the receiver intact, so
// a snapshot handed to a renderer or collector stays consistent while the
// caller keeps editing.
package tree

import (
	"errors"
	"fmt"

	"github.com/agusx1211/foldkit/internal/fsaccess"
)

// ID addresses a node inside one Tree and its descendants.
type ID int

// None marks the absent parent of a top-level node.
const None ID = -1

// LoadState tracks whether a directory's children have been listed.
type LoadState int

const (
	NotLoaded LoadState = iota
	Loading
	Loaded
)

func (s LoadState) String() string {
	switch s {
	case NotLoaded:
		return "not-loaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	default:
		return fmt.Sprintf("LoadState(%d)", int(s))
	}
}

var (
	ErrNotFound  = errors.New("node not found")
	ErrNotFolder = errors.New("node is not a folder")
)

// Node is one file or folder. Size and Lines are only filled by the deep scanner.
type Node struct {
	ID       ID
	Parent   ID
	Name     string
	Path     string
	IsFile   bool
	Size     int64
	Lines    int
	Children []ID
	State    LoadState
	Expanded bool
	Excluded bool
	Selected bool
}

// Loaded reports whether the node's children are known.
func (n Node) Loaded() bool {
	return n.IsFile || n.State == Loaded
}

type Tree struct {
	nodes  []Node
	roots  []ID
	byPath map[string]ID
}

// New builds a tree from a root listing. Folders start out not loaded.
func New(entries []fsaccess.Entry) *Tree {
	b := NewBuilder()
	for _, e := range entries {
		b.Add(None, NodeFromEntry(e))
	}
	return b.Tree()
}

// NodeFromEntry converts a listing entry into an unattached node.
func NodeFromEntry(e fsaccess.Entry) Node {
	n := Node{Name: e.Name, Path: e.Path, IsFile: e.IsFile}
	if e.IsFile {
		n.State = Loaded
	}
	return n
}

func (t *Tree) Len() int { return len(t.nodes) }

func (t *Tree) Roots() []ID {
	return append([]ID(nil), t.roots...)
}

// Node returns a copy of the node with the given ID.
func (t *Tree) Node(id ID) Node {
	n := t.nodes[id]
	n.Children = append([]ID(nil), n.Children...)
	return n
}

func (t *Tree) Children(id ID) []ID {
	return append([]ID(nil), t.nodes[id].Children...)
}

func (t *Tree) Lookup(path string) (ID, bool) {
	id, ok := t.byPath[path]
	return id, ok
}

// Walk visits every attached node in pre-order. Returning false from fn skips
// the node's descendants.
func (t *Tree) Walk(fn func(n Node, depth int) bool) {
	var walk func(ids []ID, depth int)
	walk = func(ids []ID, depth int) {
		for _, id := range ids {
			if fn(t.Node(id), depth) {
				walk(t.nodes[id].Children, depth+1)
			}
		}
	}
	walk(t.roots, 0)
}

// ExcludedPaths lists excluded nodes without descending below them.
func (t *Tree) ExcludedPaths() []string {
	var paths []string
	t.Walk(func(n Node, _ int) bool {
		if n.Excluded {
			paths = append(paths, n.Path)
			return false
		}
		return true
	})
	return paths
}

// SelectedPaths lists every selected node in pre-order.
func (t *Tree) SelectedPaths() []string {
	var paths []string
	t.Walk(func(n Node, _ int) bool {
		if n.Selected {
			paths = append(paths, n.Path)
		}
		return true
	})
	return paths
}

func (t *Tree) clone() *Tree {
	return &Tree{
		nodes:  append([]Node(nil), t.nodes...),
		roots:  t.roots,
		byPath: t.byPath,
	}
}

func (t *Tree) lookup(path string) (ID, error) {
	id, ok := t.byPath[path]
	if !ok {
		return None, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return id, nil
}

func (t *Tree) update(path string, fn func(c *Tree, id ID)) (*Tree, error) {
	id, err := t.lookup(path)
	if err != nil {
		return t, err
	}
	c := t.clone()
	fn(c, id)
	return c, nil
}

func (t *Tree) updateAll(fn func(n *Node)) *Tree {
	c := t.clone()
	for i := range c.nodes {
		fn(&c.nodes[i])
	}
	return c
}

func (t *Tree) descend(id ID, fn func(n *Node)) {
	fn(&t.nodes[id])
	for _, child := range t.nodes[id].Children {
		t.descend(child, fn)
	}
}

// ToggleExcluded flips the excluded flag of one node.
func (t *Tree) ToggleExcluded(path string) (*Tree, error) {
	return t.update(path, func(c *Tree, id ID) {
		c.nodes[id].Excluded = !c.nodes[id].Excluded
	})
}

func (t *Tree) SetExcluded(path string, excluded bool) (*Tree, error) {
	return t.update(path, func(c *Tree, id ID) {
		c.nodes[id].Excluded = excluded
	})
}

// ToggleSelected flips the selection of a node and applies the new value to
// every loaded descendant.
func (t *Tree) ToggleSelected(path string) (*Tree, error) {
	id, err := t.lookup(path)
	if err != nil {
		return t, err
	}
	return t.SetSelected(path, !t.nodes[id].Selected)
}

func (t *Tree) SetSelected(path string, selected bool) (*Tree, error) {
	return t.update(path, func(c *Tree, id ID) {
		c.descend(id, func(n *Node) { n.Selected = selected })
	})
}

// ToggleExpanded flips the expanded flag of a folder. It does not load
// children; see Loader.Expand.
func (t *Tree) ToggleExpanded(path string) (*Tree, error) {
	id, err := t.lookup(path)
	if err != nil {
		return t, err
	}
	if t.nodes[id].IsFile {
		return t, fmt.Errorf("%s: %w", path, ErrNotFolder)
	}
	c := t.clone()
	c.nodes[id].Expanded = !c.nodes[id].Expanded
	return c, nil
}

func (t *Tree) CollapseAll() *Tree {
	return t.updateAll(func(n *Node) { n.Expanded = false })
}

func (t *Tree) SelectAll() *Tree {
	return t.updateAll(func(n *Node) { n.Selected = true })
}

func (t *Tree) DeselectAll() *Tree {
	return t.updateAll(func(n *Node) { n.Selected = false })
}

func (t *Tree) ExcludeAll() *Tree {
	return t.updateAll(func(n *Node) { n.Excluded = true })
}

func (t *Tree) IncludeAll() *Tree {
	return t.updateAll(func(n *Node) { n.Excluded = false })
}

// WithLoading marks a not yet loaded folder as loading. It reports false when
// the folder is already loading or loaded, in which case no listing should be
// started.
func (t *Tree) WithLoading(path string) (*Tree, bool, error) {
	id, err := t.lookup(path)
	if err != nil {
		return t, false, err
	}
	n := t.nodes[id]
	if n.IsFile {
		return t, false, fmt.Errorf("%s: %w", path, ErrNotFolder)
	}
	if n.State != NotLoaded {
		return t, false, nil
	}
	c := t.clone()
	c.nodes[id].State = Loading
	return c, true, nil
}

// WithChildren attaches a listing to a folder and marks it loaded. A folder
// that is already loaded keeps its existing children.
func (t *Tree) WithChildren(path string, entries []fsaccess.Entry) (*Tree, error) {
	id, err := t.lookup(path)
	if err != nil {
		return t, err
	}
	if t.nodes[id].IsFile {
		return t, fmt.Errorf("%s: %w", path, ErrNotFolder)
	}
	if t.nodes[id].State == Loaded {
		return t, nil
	}

	c := t.clone()
	c.byPath = make(map[string]ID, len(t.byPath)+len(entries))
	for p, v := range t.byPath {
		c.byPath[p] = v
	}

	parent := c.nodes[id]
	children := make([]ID, 0, len(entries))
	for _, e := range entries {
		n := NodeFromEntry(e)
		n.Selected = parent.Selected
		children = append(children, c.attach(id, n))
	}
	c.nodes[id].Children = children
	c.nodes[id].State = Loaded
	return c, nil
}

func (t *Tree) attach(parent ID, n Node) ID {
	n.ID = ID(len(t.nodes))
	n.Parent = parent
	n.Children = nil
	t.nodes = append(t.nodes, n)
	t.byPath[n.Path] = n.ID
	return n.ID
}

// Builder assembles a tree node by node. It is used by producers that know
// the whole shape up front, such as the deep scanner.
type Builder struct {
	t *Tree
}

func NewBuilder() *Builder {
	return &Builder{t: &Tree{byPath: make(map[string]ID)}}
}

// Add appends n under parent (None for a top-level node) and returns its ID.
func (b *Builder) Add(parent ID, n Node) ID {
	id := b.t.attach(parent, n)
	if parent == None {
		b.t.roots = append(b.t.roots, id)
	} else {
		b.t.nodes[parent].Children = append(b.t.nodes[parent].Children, id)
	}
	return id
}

// Tree returns the assembled tree. The builder must not be used afterwards.
func (b *Builder) Tree() *Tree {
	t := b.t
	b.t = nil
	return t
}
