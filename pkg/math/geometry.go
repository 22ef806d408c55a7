package math

import (
	"math"

	"github.com/paulmach/orb"
)

// Epsilon is the absolute tolerance used by the inclusive containment tests.
const Epsilon = 1e-9

// Orient2D returns twice the signed area of triangle (a, b, c) on the ground
// plane. Positive means the vertices run counter-clockwise when X points right
// and Z points up.
func Orient2D(a, b, c Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// TriangleArea returns the unsigned ground-plane area of triangle (a, b, c).
func TriangleArea(a, b, c Vec2) float64 {
	return math.Abs(Orient2D(a, b, c)) / 2
}

// Centroid returns the ground-plane centroid of triangle (a, b, c).
func Centroid(a, b, c Vec2) Vec2 {
	return Vec2{(a.X + b.X + c.X) / 3, (a.Y + b.Y + c.Y) / 3}
}

// Barycentric returns the weights (u, v, w) of p relative to triangle (a, b, c),
// with u+v+w = 1. ok is false when the triangle is degenerate.
func Barycentric(p, a, b, c Vec2) (u, v, w float64, ok bool) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	denom := v0.Cross(v1)
	if math.Abs(denom) < 1e-12 {
		return 0, 0, 0, false
	}

	v = v2.Cross(v1) / denom
	w = v0.Cross(v2) / denom
	u = 1 - v - w
	return u, v, w, true
}

// PointInTriangle reports whether p lies inside triangle (a, b, c), edges
// included. Winding does not matter; degenerate triangles contain nothing.
func PointInTriangle(p, a, b, c Vec2) bool {
	u, v, w, ok := Barycentric(p, a, b, c)
	if !ok {
		return false
	}
	return u >= -Epsilon && v >= -Epsilon && w >= -Epsilon
}

// PointInPolygon runs a ray-casting parity test of (x, z) against polygon.
// Polygons with fewer than 3 points contain nothing. A closing point equal to
// the first point is allowed.
func PointInPolygon(x, z float64, polygon orb.Ring) bool {
	n := len(polygon)
	if n > 1 && polygon[0] == polygon[n-1] {
		n--
	}
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, zi := polygon[i][0], polygon[i][1]
		xj, zj := polygon[j][0], polygon[j][1]
		if (zi > z) != (zj > z) {
			crossX := xi + (z-zi)*(xj-xi)/(zj-zi)
			if x < crossX {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// SegmentDistance returns the distance from p to segment (a, b).
func SegmentDistance(p, a, b Vec2) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq == 0 {
		return p.Distance(a)
	}
	t := p.Sub(a).Dot(ab) / lenSq
	t = Clamp(t, 0, 1)
	return p.Distance(a.Add(ab.Scale(t)))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
