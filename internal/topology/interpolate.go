package topology

import "github.com/Faultbox/courseforge/pkg/math"

// BarycentricInterpolateY returns the elevation at (x, z) on the plane
// through v0, v1 and v2. Points outside the triangle are extrapolated. A
// degenerate triangle yields v0.Y.
func BarycentricInterpolateY(x, z float64, v0, v1, v2 math.Vec3) float64 {
	u, v, w, ok := math.Barycentric(math.Vec2{X: x, Y: z}, v0.XZ(), v1.XZ(), v2.XZ())
	if !ok {
		return v0.Y
	}
	return u*v0.Y + v*v1.Y + w*v2.Y
}

// InterpolateY samples elevation at (x, z) on the given triangle.
func (t *Topology) InterpolateY(id TriangleID, x, z float64) (float64, bool) {
	a, b, c, ok := t.TrianglePositions(id)
	if !ok {
		return 0, false
	}
	return BarycentricInterpolateY(x, z, a, b, c), true
}
