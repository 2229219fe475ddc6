package layout

import (
	"math"

	"github.com/matzehuels/karmyc/pkg/geom"
)

// Placement is where dropped content lands relative to a target area.
type Placement string

const (
	PlaceTop     Placement = "top"
	PlaceLeft    Placement = "left"
	PlaceRight   Placement = "right"
	PlaceBottom  Placement = "bottom"
	PlaceReplace Placement = "replace"
)

// Valid reports whether p is a known placement.
func (p Placement) Valid() bool {
	switch p {
	case PlaceTop, PlaceLeft, PlaceRight, PlaceBottom, PlaceReplace:
		return true
	}
	return false
}

// Orientation returns the row orientation an edge placement requires.
// Top and bottom need a vertical row; left and right a horizontal one.
func (p Placement) Orientation() Orientation {
	if p == PlaceTop || p == PlaceBottom {
		return Vertical
	}
	return Horizontal
}

// Before reports whether the placement inserts ahead of the target.
func (p Placement) Before() bool {
	return p == PlaceTop || p == PlaceLeft
}

// DefaultReplaceThreshold is the fraction of a rectangle's shorter side within
// which a point counts as the center.
const DefaultReplaceThreshold = 0.3

// FindNearestLeaf returns the leaf area for point p.
//
// A leaf whose viewport contains p wins immediately. Otherwise the leaf with
// the smallest distance from p to any of its four edge lines is returned.
// That is edge-line distance, not distance to the closest point of the
// rectangle, so in corner regions the result can differ from a Euclidean
// nearest-rectangle search. Leaves are evaluated in [Tree.Leaves] order and
// the first one wins ties.
//
// ok is false when the tree has no projected leaves.
func FindNearestLeaf(p geom.Point, vps Viewports, t *Tree) (id string, ok bool) {
	best := math.Inf(1)
	for _, leaf := range t.Leaves() {
		r, has := vps[leaf]
		if !has {
			continue
		}
		if r.Contains(p) {
			return leaf, true
		}
		if d := r.MinEdgeDistance(p); d < best {
			best, id, ok = d, leaf, true
		}
	}
	return id, ok
}

// ClassifyPlacement classifies p against r with [DefaultReplaceThreshold].
func ClassifyPlacement(r geom.Rect, p geom.Point) Placement {
	return ClassifyPlacementThreshold(r, p, DefaultReplaceThreshold)
}

// ClassifyPlacementThreshold returns [PlaceReplace] when p is closer to the
// center of r than threshold times its shorter side. Otherwise it returns the
// edge with the smallest distance, measured in the rectangle's own frame
// (left = x, right = width - x, top = y, bottom = height - y). Ties resolve in
// the order top, left, right, bottom.
func ClassifyPlacementThreshold(r geom.Rect, p geom.Point, threshold float64) Placement {
	local := r.Local(p)
	dx := local.X - r.Width/2
	dy := local.Y - r.Height/2
	if math.Hypot(dx, dy) < threshold*min(r.Width, r.Height) {
		return PlaceReplace
	}

	candidates := []struct {
		placement Placement
		dist      float64
	}{
		{PlaceTop, local.Y},
		{PlaceLeft, local.X},
		{PlaceRight, r.Width - local.X},
		{PlaceBottom, r.Height - local.Y},
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.dist < best.dist {
			best = c
		}
	}
	return best.placement
}
