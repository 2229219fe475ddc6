package layout

import (
	"maps"
	"slices"
)

// Kind distinguishes leaf areas from rows.
type Kind string

const (
	// KindArea is a leaf node carrying opaque content.
	KindArea Kind = "area"
	// KindRow is an internal node holding sized children along one axis.
	KindRow Kind = "row"
)

// Orientation is the axis along which a row lays out its children.
type Orientation string

const (
	// Horizontal rows place children left to right.
	Horizontal Orientation = "horizontal"
	// Vertical rows place children top to bottom.
	Vertical Orientation = "vertical"
)

// Valid reports whether o is a known orientation.
func (o Orientation) Valid() bool {
	return o == Horizontal || o == Vertical
}

// Other returns the perpendicular orientation.
func (o Orientation) Other() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// ChildRef is a sized reference from a row to one of its children.
type ChildRef struct {
	ID   string  `json:"id" bson:"id"`
	Size float64 `json:"size" bson:"size"`
}

// Node is an Area or a Row. Orientation and Children are only meaningful for
// rows.
type Node struct {
	Kind        Kind        `json:"kind" bson:"kind"`
	ID          string      `json:"id" bson:"id"`
	Orientation Orientation `json:"orientation,omitempty" bson:"orientation,omitempty"`
	Children    []ChildRef  `json:"children,omitempty" bson:"children,omitempty"`
}

// IsArea reports whether the node is a leaf.
func (n *Node) IsArea() bool { return n.Kind == KindArea }

// IsRow reports whether the node is a row.
func (n *Node) IsRow() bool { return n.Kind == KindRow }

// ChildIndex returns the position of id among the node's children, or -1.
func (n *Node) ChildIndex(id string) int {
	return slices.IndexFunc(n.Children, func(c ChildRef) bool { return c.ID == id })
}

// ChildIDs returns the ids of the node's children in order.
func (n *Node) ChildIDs() []string {
	ids := make([]string, len(n.Children))
	for i, c := range n.Children {
		ids[i] = c.ID
	}
	return ids
}

func (n *Node) clone() *Node {
	c := *n
	c.Children = slices.Clone(n.Children)
	return &c
}

// Content is the opaque payload of an Area. Type selects a renderer in the
// surrounding system; State is owned by that renderer.
type Content struct {
	Type  string         `json:"type" bson:"type"`
	State map[string]any `json:"state,omitempty" bson:"state,omitempty"`
}

func (c Content) clone() Content {
	return Content{Type: c.Type, State: maps.Clone(c.State)}
}

// DefaultAreaType is the content type assigned to areas that have none.
const DefaultAreaType = "empty"
