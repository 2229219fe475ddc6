package layout

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/karmyc/pkg/errors"
)

// SizeEpsilon is the tolerance used when checking that sibling sizes sum to 1.
const SizeEpsilon = 1e-6

// Tree is a layout: a flat id-to-node map, the root id, and the content of
// every area. The JSON form is the persisted snapshot shape
// {rootId, layout, areas}.
//
// An empty RootID is a valid, empty layout.
type Tree struct {
	RootID string             `json:"rootId" bson:"rootId"`
	Layout map[string]*Node   `json:"layout" bson:"layout"`
	Areas  map[string]Content `json:"areas" bson:"areas"`
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{
		Layout: make(map[string]*Node),
		Areas:  make(map[string]Content),
	}
}

// SingleArea returns a tree whose root is one area with the given content.
func SingleArea(id string, content Content) *Tree {
	t := NewTree()
	t.AddArea(id, content)
	t.RootID = id
	return t
}

// IsEmpty reports whether the tree has no resolvable root.
func (t *Tree) IsEmpty() bool {
	if t == nil || t.RootID == "" {
		return true
	}
	_, ok := t.Layout[t.RootID]
	return !ok
}

// Node returns the node with the given id.
func (t *Tree) Node(id string) (*Node, bool) {
	n, ok := t.Layout[id]
	return n, ok
}

// Row returns the row with the given id, or false if id is missing or a leaf.
func (t *Tree) Row(id string) (*Node, bool) {
	n, ok := t.Layout[id]
	if !ok || !n.IsRow() {
		return nil, false
	}
	return n, true
}

// AddArea inserts a detached area node and its content. The caller attaches
// it to a row or makes it the root.
func (t *Tree) AddArea(id string, content Content) {
	t.ensureMaps()
	t.Layout[id] = &Node{Kind: KindArea, ID: id}
	if content.Type == "" {
		content.Type = DefaultAreaType
	}
	t.Areas[id] = content
}

// AddRow inserts a detached row node.
func (t *Tree) AddRow(id string, o Orientation, children ...ChildRef) {
	t.ensureMaps()
	t.Layout[id] = &Node{Kind: KindRow, ID: id, Orientation: o, Children: slices.Clone(children)}
}

func (t *Tree) ensureMaps() {
	if t.Layout == nil {
		t.Layout = make(map[string]*Node)
	}
	if t.Areas == nil {
		t.Areas = make(map[string]Content)
	}
}

// Clone returns a deep copy of the tree structure. Content state maps are
// copied one level deep.
func (t *Tree) Clone() *Tree {
	out := &Tree{
		RootID: t.RootID,
		Layout: make(map[string]*Node, len(t.Layout)),
		Areas:  make(map[string]Content, len(t.Areas)),
	}
	for id, n := range t.Layout {
		out.Layout[id] = n.clone()
	}
	for id, c := range t.Areas {
		out.Areas[id] = c.clone()
	}
	return out
}

// Leaves returns the ids of all areas reachable from the root in depth-first
// order, following each row's children in order. This is the visual reading
// order and the iteration order of hit-testing.
func (t *Tree) Leaves() []string {
	var out []string
	t.walk(func(n *Node) {
		if n.IsArea() {
			out = append(out, n.ID)
		}
	})
	return out
}

// Rows returns the ids of all rows reachable from the root in depth-first
// pre-order.
func (t *Tree) Rows() []string {
	var out []string
	t.walk(func(n *Node) {
		if n.IsRow() {
			out = append(out, n.ID)
		}
	})
	return out
}

// walk visits every node reachable from the root once. Missing references
// and repeated visits are skipped, so walk terminates on malformed trees.
func (t *Tree) walk(fn func(*Node)) {
	if t.IsEmpty() {
		return
	}
	seen := make(map[string]bool, len(t.Layout))
	var visit func(id string)
	visit = func(id string) {
		n, ok := t.Layout[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		fn(n)
		for _, c := range n.Children {
			visit(c.ID)
		}
	}
	visit(t.RootID)
}

// Len returns the number of nodes in the layout map.
func (t *Tree) Len() int { return len(t.Layout) }

// IDs returns all node ids in sorted order.
func (t *Tree) IDs() []string {
	return slices.Sorted(maps.Keys(t.Layout))
}

// Validate checks the tree invariants without repairing anything:
//   - the root resolves, or the tree is entirely empty
//   - every row child reference resolves and no node is reached twice
//   - every node in the map is reachable from the root
//   - every row is non-empty, oriented, and its sizes are positive and sum to 1
//   - every area has content and no other node does
//
// It returns the first violation found as a coded error. Use [GC] to repair.
func (t *Tree) Validate() error {
	if t.RootID == "" {
		if len(t.Layout) > 0 {
			return errors.New(errors.ErrCodeInvalidRoot, "tree has %d nodes but no root", len(t.Layout))
		}
		return nil
	}
	if _, ok := t.Layout[t.RootID]; !ok {
		return errors.New(errors.ErrCodeInvalidRoot, "root %q does not exist", t.RootID)
	}

	seen := make(map[string]bool, len(t.Layout))
	var visit func(id string) error
	visit = func(id string) error {
		if seen[id] {
			return errors.New(errors.ErrCodeInvalidLayout, "node %q is referenced more than once", id)
		}
		seen[id] = true
		n := t.Layout[id]
		if n.ID != id {
			return errors.New(errors.ErrCodeInvalidID, "node stored under %q has id %q", id, n.ID)
		}
		switch n.Kind {
		case KindArea:
			if _, ok := t.Areas[id]; !ok {
				return errors.New(errors.ErrCodeInvalidLayout, "area %q has no content", id)
			}
			if len(n.Children) > 0 {
				return errors.New(errors.ErrCodeInvalidLayout, "area %q has children", id)
			}
			return nil
		case KindRow:
		default:
			return errors.New(errors.ErrCodeInvalidLayout, "node %q has unknown kind %q", id, n.Kind)
		}

		if !n.Orientation.Valid() {
			return errors.New(errors.ErrCodeInvalidLayout, "row %q has invalid orientation %q", id, n.Orientation)
		}
		if len(n.Children) == 0 {
			return errors.New(errors.ErrCodeInvalidLayout, "row %q has no children", id)
		}
		var sum float64
		for _, c := range n.Children {
			if !validSize(c.Size) {
				return errors.New(errors.ErrCodeInvalidSize, "row %q child %q has size %v", id, c.ID, c.Size)
			}
			sum += c.Size
			if _, ok := t.Layout[c.ID]; !ok {
				return errors.New(errors.ErrCodeInvalidReference, "row %q references missing child %q", id, c.ID)
			}
		}
		if math.Abs(sum-1) > SizeEpsilon {
			return errors.New(errors.ErrCodeInvalidSize, "row %q sizes sum to %v", id, sum)
		}
		for _, c := range n.Children {
			if err := visit(c.ID); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(t.RootID); err != nil {
		return err
	}

	for _, id := range t.IDs() {
		if !seen[id] {
			return errors.New(errors.ErrCodeInvalidLayout, "node %q is unreachable from root %q", id, t.RootID)
		}
	}
	for _, id := range slices.Sorted(maps.Keys(t.Areas)) {
		if n, ok := t.Layout[id]; !ok || !n.IsArea() {
			return errors.New(errors.ErrCodeInvalidLayout, "content stored for non-area %q", id)
		}
	}
	return nil
}
