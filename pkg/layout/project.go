package layout

import "github.com/matzehuels/karmyc/pkg/geom"

// Viewports maps node ids to their projected pixel rectangles.
type Viewports map[string]geom.Rect

// Project computes a rectangle for every node reachable from rootID by
// subdividing outer along each row's axis in proportion to its child sizes.
//
// Sizes are used as given; Project never renormalizes. Child boundaries are
// computed from the running sum of sizes and shared between neighbours, and
// the last child always ends exactly at the row's far edge, so leaf
// rectangles tile outer without gaps or overlap.
//
// An unknown rootID yields an empty map. Project is pure and cheap enough to
// run on every frame.
func Project(t *Tree, rootID string, outer geom.Rect) Viewports {
	out := make(Viewports, len(t.Layout))
	if _, ok := t.Layout[rootID]; !ok {
		return out
	}
	project(t, rootID, outer, out)
	return out
}

// ProjectRoot is Project from the tree's own root.
func ProjectRoot(t *Tree, outer geom.Rect) Viewports {
	if t.IsEmpty() {
		return Viewports{}
	}
	return Project(t, t.RootID, outer)
}

func project(t *Tree, id string, r geom.Rect, out Viewports) {
	n, ok := t.Layout[id]
	if !ok {
		return
	}
	if _, seen := out[id]; seen {
		return
	}
	out[id] = r
	if !n.IsRow() || len(n.Children) == 0 {
		return
	}

	start, extent := r.Left, r.Width
	if n.Orientation == Vertical {
		start, extent = r.Top, r.Height
	}
	end := start + extent

	var acc float64
	lo := start
	for i, c := range n.Children {
		acc += c.Size
		hi := start + extent*acc
		if i == len(n.Children)-1 {
			hi = end
		}
		project(t, c.ID, sub(r, n.Orientation, lo, hi), out)
		lo = hi
	}
}

func sub(r geom.Rect, o Orientation, lo, hi float64) geom.Rect {
	if o == Vertical {
		return geom.Rect{Left: r.Left, Top: lo, Width: r.Width, Height: hi - lo}
	}
	return geom.Rect{Left: lo, Top: r.Top, Width: hi - lo, Height: r.Height}
}

// Leaves filters the viewports down to the tree's leaf areas.
func (v Viewports) Leaves(t *Tree) Viewports {
	out := make(Viewports)
	for id, r := range v {
		if n, ok := t.Layout[id]; ok && n.IsArea() {
			out[id] = r
		}
	}
	return out
}

// Extent returns the length of r along the axis of o.
func Extent(r geom.Rect, o Orientation) float64 {
	if o == Vertical {
		return r.Height
	}
	return r.Width
}
