// Package geom holds the integer rectangle type shared by the transport
// boundary and the layout engine.
//
// Compositor logical coordinates are integers (spec.md §3), unlike the
// float32 render-space rectangles gioui.org/f32 models; a float rectangle
// type was considered and declined (see SPEC_FULL.md §A) because it would
// fight the integer invariants spec.md §8 states (e.g. usable_area ⊆
// full_area tested by direct comparison, not within-epsilon).
package geom

// Rect is an axis-aligned rectangle in compositor logical coordinates.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether p lies within r (half-open on the right/bottom
// edges, matching typical compositor logical-pixel semantics).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Center returns the rectangle's center point (integer truncation).
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// Inset shrinks r by l/t/r_/b on each edge respectively.
func (r Rect) Inset(l, t, r_, b int) Rect {
	return Rect{X: r.X + l, Y: r.Y + t, W: r.W - l - r_, H: r.H - t - b}
}

// Within reports whether r lies entirely inside bounds.
func (r Rect) Within(bounds Rect) bool {
	return r.X >= bounds.X && r.Y >= bounds.Y &&
		r.X+r.W <= bounds.X+bounds.W && r.Y+r.H <= bounds.Y+bounds.H
}

// IntersectsOrthogonal reports whether r and s overlap along the axis
// orthogonal to dir (used by the focus engine's overlap bonus, spec.md
// §4.4 step 3).
func (r Rect) IntersectsOrthogonal(s Rect, horizontal bool) bool {
	if horizontal {
		return r.Y < s.Y+s.H && s.Y < r.Y+r.H
	}
	return r.X < s.X+s.W && s.X < r.X+r.W
}

// A Point is a 2D integer point in compositor logical coordinates.
type Point struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}
