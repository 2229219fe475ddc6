// Package geom provides the rectangle and point primitives used by the
// layout engine.
//
// All values are in engine pixel units. Y grows downward, matching the
// coordinate space of the rendering layer: Top is the smaller Y value.
package geom

import "math"

// Point is a position in engine coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Len returns the Euclidean length of p treated as a vector.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return p.Sub(q).Len() }

// Rect is an axis-aligned rectangle. Left and Top are the top-left corner.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// CenterX returns the horizontal center of the rectangle.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// CenterY returns the vertical center of the rectangle.
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Center returns the center point of the rectangle.
func (r Rect) Center() Point { return Point{X: r.CenterX(), Y: r.CenterY()} }

// Area returns the area of the rectangle, or 0 for degenerate rectangles.
func (r Rect) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width * r.Height
}

// IsEmpty reports whether the rectangle has zero or negative area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether p lies inside r.
// Points on the left and top edges are inside; points on the right and
// bottom edges are outside, so adjacent rectangles never both contain a point.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X < r.Right() && p.Y >= r.Top && p.Y < r.Bottom()
}

// Contract shrinks the rectangle by n on every side. The result never has a
// negative width or height.
func (r Rect) Contract(n float64) Rect {
	out := Rect{
		Left:   r.Left + n,
		Top:    r.Top + n,
		Width:  r.Width - 2*n,
		Height: r.Height - 2*n,
	}
	if out.Width < 0 {
		out.Left = r.CenterX()
		out.Width = 0
	}
	if out.Height < 0 {
		out.Top = r.CenterY()
		out.Height = 0
	}
	return out
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{Left: r.Left + dx, Top: r.Top + dy, Width: r.Width, Height: r.Height}
}

// Local converts p into the rectangle's own coordinate frame, where the
// top-left corner is the origin.
func (r Rect) Local(p Point) Point {
	return Point{X: p.X - r.Left, Y: p.Y - r.Top}
}

// EdgeDistances holds the distance from a point to each of the four edge lines
// of a rectangle.
type EdgeDistances struct {
	Top, Left, Right, Bottom float64
}

// Min returns the smallest of the four distances.
func (d EdgeDistances) Min() float64 {
	return min(d.Top, d.Left, d.Right, d.Bottom)
}

// DistanceToEdges returns the absolute distance from p to each edge line of r.
// This is distance to the edge line, not to the closest point of the rectangle.
func (r Rect) DistanceToEdges(p Point) EdgeDistances {
	return EdgeDistances{
		Top:    math.Abs(p.Y - r.Top),
		Left:   math.Abs(p.X - r.Left),
		Right:  math.Abs(r.Right() - p.X),
		Bottom: math.Abs(r.Bottom() - p.Y),
	}
}

// MinEdgeDistance returns the smallest distance from p to any edge line of r.
func (r Rect) MinEdgeDistance(p Point) float64 {
	return r.DistanceToEdges(p).Min()
}

// ApproxEqual reports whether two rectangles match within eps on every field.
func (r Rect) ApproxEqual(o Rect, eps float64) bool {
	return math.Abs(r.Left-o.Left) <= eps &&
		math.Abs(r.Top-o.Top) <= eps &&
		math.Abs(r.Width-o.Width) <= eps &&
		math.Abs(r.Height-o.Height) <= eps
}
