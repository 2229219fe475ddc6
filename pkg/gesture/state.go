package gesture

import (
	"math"

	"github.com/matzehuels/karmyc/pkg/geom"
	"github.com/matzehuels/karmyc/pkg/layout"
)

// Phase is the state of a pointer gesture.
type Phase int

const (
	// Idle means no gesture is in progress.
	Idle Phase = iota
	// DirectionPending means a corner was grabbed and the pointer has not
	// yet moved far enough to decide between splitting and joining.
	DirectionPending
	// Splitting is the transient phase in which the grabbed area is split.
	Splitting
	// Resizing means a separator follows the pointer.
	Resizing
	// JoinMoving means the grabbed area is being dragged over its siblings.
	JoinMoving
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case DirectionPending:
		return "direction-pending"
	case Splitting:
		return "splitting"
	case Resizing:
		return "resizing"
	case JoinMoving:
		return "join-moving"
	}
	return "unknown"
}

// Corner identifies which corner of an area was grabbed.
type Corner int

const (
	NorthEast Corner = iota
	NorthWest
	SouthEast
	SouthWest
)

func (c Corner) String() string {
	switch c {
	case NorthEast:
		return "ne"
	case NorthWest:
		return "nw"
	case SouthEast:
		return "se"
	case SouthWest:
		return "sw"
	}
	return "unknown"
}

// ParseCorner parses "ne", "nw", "se" or "sw".
func ParseCorner(s string) (Corner, bool) {
	for _, c := range []Corner{NorthEast, NorthWest, SouthEast, SouthWest} {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

func (c Corner) east() bool  { return c == NorthEast || c == SouthEast }
func (c Corner) north() bool { return c == NorthEast || c == NorthWest }

// Point returns the position of the corner on r.
func (c Corner) Point(r geom.Rect) geom.Point {
	p := geom.Point{X: r.Left, Y: r.Top}
	if c.east() {
		p.X = r.Right()
	}
	if !c.north() {
		p.Y = r.Bottom()
	}
	return p
}

// classify decides the split axis and whether movement d from the corner
// points into the area. The dominant component of d selects the axis: mostly
// horizontal movement splits into a horizontal row.
func (c Corner) classify(d geom.Point) (o layout.Orientation, inward bool) {
	if math.Abs(d.X) >= math.Abs(d.Y) {
		if c.east() {
			return layout.Horizontal, d.X < 0
		}
		return layout.Horizontal, d.X > 0
	}
	if c.north() {
		return layout.Vertical, d.Y > 0
	}
	return layout.Vertical, d.Y < 0
}

// side returns where the new area of a split goes: on the grabbed corner's
// side of the split axis.
func (c Corner) side(o layout.Orientation) layout.Side {
	if o == layout.Horizontal {
		if c.east() {
			return layout.After
		}
		return layout.Before
	}
	if c.north() {
		return layout.Before
	}
	return layout.After
}

// Direction is the compass direction of a join target relative to the
// dragged area.
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// ResizePreview is the live state of a separator drag.
type ResizePreview struct {
	Separator layout.Separator `json:"separator"`
	T         float64          `json:"t"`
	Extent    float64          `json:"extent"`
	Sizes     []float64        `json:"sizes"`
}

// JoinPreview names the sibling a join would merge into.
type JoinPreview struct {
	SourceID  string    `json:"sourceId"`
	TargetID  string    `json:"targetId"`
	Direction Direction `json:"direction"`
}

// OpenPreview is where dragged content would land if released now.
type OpenPreview struct {
	TargetID  string           `json:"targetId"`
	Placement layout.Placement `json:"placement"`
	Point     geom.Point       `json:"point"`
}

// State is a snapshot of a controller. Previews are nil when inactive.
type State struct {
	Phase     Phase             `json:"phase"`
	AreaID    string            `json:"areaId,omitempty"`
	Corner    Corner            `json:"corner"`
	Origin    geom.Point        `json:"origin"`
	Separator *layout.Separator `json:"separator,omitempty"`
	Resize    *ResizePreview    `json:"resize,omitempty"`
	Join      *JoinPreview      `json:"join,omitempty"`
	Open      *OpenPreview      `json:"open,omitempty"`
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// MarshalText encodes the corner by name.
func (c Corner) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
