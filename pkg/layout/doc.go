// Package layout implements the area layout engine: a tree of panes stored as
// a flat id-to-node map, the projection of that tree onto pixel rectangles,
// and the structural edits a workbench shell performs on it.
//
// # Tree Model
//
// A [Tree] holds two node kinds. An Area is a leaf with opaque [Content]
// stored in the separate Areas map under the same id. A Row is an internal
// node with an [Orientation] and an ordered list of [ChildRef] values whose
// sizes are proportional weights summing to 1.
//
//	tree := layout.NewTree()
//	tree.AddArea("editor", layout.Content{Type: "text"})
//	tree.RootID = "editor"
//
// Parent links are never stored. [ParentIndex] derives them on demand.
//
// # Projection and Hit-Testing
//
// [Project] maps every node to a [geom.Rect] inside an outer rectangle.
// [FindNearestLeaf] and [ClassifyPlacement] translate a pointer position into
// a drop target and a [Placement].
//
// # Mutations
//
// All structural edits go through an [Engine]. Each method takes the current
// tree and returns a new, garbage-collected tree. Input trees are never
// modified. When an edit cannot apply, the method returns the original tree
// pointer together with a coded error from pkg/errors, so callers can treat
// the failure as a no-op:
//
//	next, err := engine.Split(tree, "editor", layout.Horizontal, layout.After)
//	if err != nil {
//	    // tree is unchanged; next == tree
//	}
//
// # Consistency
//
// [GC] restores the tree invariants: every node reachable from the root,
// every child reference resolvable, no empty rows, and sibling sizes that sum
// to 1. It reports what it repaired in a [Report].
package layout
