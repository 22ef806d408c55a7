package topology

import (
	gomath "math"
	"slices"

	"github.com/Faultbox/courseforge/pkg/math"
)

// triangulate computes a Delaunay triangulation of pts with the
// Bowyer-Watson algorithm. It returns counter-clockwise index triples into
// pts. Duplicate points must be removed beforehand.
func triangulate(pts []math.Vec2) [][3]int {
	n := len(pts)
	if n < 3 {
		return nil
	}

	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	delta := max(maxX-minX, maxY-minY, 1)
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	// super triangle vertices live after the input points
	all := make([]math.Vec2, n, n+3)
	copy(all, pts)
	all = append(all,
		math.Vec2{X: midX - 100*delta, Y: midY - 100*delta},
		math.Vec2{X: midX + 100*delta, Y: midY - 100*delta},
		math.Vec2{X: midX, Y: midY + 100*delta},
	)

	tris := []circumTriangle{newCircumTriangle(all, n, n+1, n+2)}
	for i := range n {
		p := all[i]

		var bad []circumTriangle
		keep := tris[:0:0]
		for _, tri := range tris {
			if tri.encloses(p) {
				bad = append(bad, tri)
			} else {
				keep = append(keep, tri)
			}
		}

		// cavity boundary: edges used by exactly one bad triangle, kept
		// in their counter-clockwise direction
		count := make(map[[2]int]int, len(bad)*3)
		for _, tri := range bad {
			for k := range 3 {
				count[undirected(tri.v[k], tri.v[(k+1)%3])]++
			}
		}
		for _, tri := range bad {
			for k := range 3 {
				a, b := tri.v[k], tri.v[(k+1)%3]
				if count[undirected(a, b)] != 1 {
					continue
				}
				if math.Orient2D(all[a], all[b], p) <= 0 {
					continue
				}
				keep = append(keep, newCircumTriangle(all, a, b, i))
			}
		}
		tris = keep
	}

	out := make([][3]int, 0, len(tris))
	for _, tri := range tris {
		if tri.v[0] >= n || tri.v[1] >= n || tri.v[2] >= n {
			continue
		}
		out = append(out, tri.v)
	}
	return out
}

// closeGaps restores hull triangles lost to the finite super triangle, whose
// vertices can fall inside the huge circumcircles of slivers along the
// world border. Wherever the mesh boundary bends inward at b (a -> b -> c
// turning clockwise) the triangle (a, c, b) is missing, and it is added unless it is degenerate or another boundary vertex lies in it.
// The same rule fills holes, whose boundary runs clockwise.
func closeGaps(pts []math.Vec2, tris [][3]int) [][3]int {
	for range 2 * len(pts) {
		next := boundaryNext(tris)
		starts := make([]int, 0, len(next))
		for a := range next {
			starts = append(starts, a)
		}
		slices.Sort(starts)

		added := false
		for _, a := range starts {
			b := next[a]
			c, ok := next[b]
			if b < 0 || !ok || c < 0 || c == a {
				continue
			}
			pa, pb, pc := pts[a], pts[b], pts[c]
			o := math.Orient2D(pa, pc, pb)
			if o <= 0 || isDegenerate(o, pa, pc, pb) {
				continue
			}
			blocked := false
			for _, v := range starts {
				if v != a && v != b && v != c && math.PointInTriangle(pts[v], pa, pc, pb) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			tris = append(tris, [3]int{a, c, b})
			added = true
			break
		}
		if !added {
			break
		}
	}
	return tris
}

// boundaryNext maps each vertex to the end of its outgoing boundary edge,
// directed as in its triangle. Vertices with several outgoing boundary
// edges map to -1.
func boundaryNext(tris [][3]int) map[int]int {
	directed := make(map[[2]int]struct{}, len(tris)*3)
	for _, tri := range tris {
		for k := range 3 {
			directed[[2]int{tri[k], tri[(k+1)%3]}] = struct{}{}
		}
	}
	next := make(map[int]int)
	for e := range directed {
		if _, inner := directed[[2]int{e[1], e[0]}]; inner {
			continue
		}
		if _, seen := next[e[0]]; seen {
			next[e[0]] = -1
			continue
		}
		next[e[0]] = e[1]
	}
	return next
}

type circumTriangle struct {
	v      [3]int
	cx, cy float64
	r2     float64
}

func newCircumTriangle(pts []math.Vec2, a, b, c int) circumTriangle {
	if math.Orient2D(pts[a], pts[b], pts[c]) < 0 {
		b, c = c, b
	}
	t := circumTriangle{v: [3]int{a, b, c}}
	pa, pb, pc := pts[a], pts[b], pts[c]
	d := 2 * (pa.X*(pb.Y-pc.Y) + pb.X*(pc.Y-pa.Y) + pc.X*(pa.Y-pb.Y))
	if d == 0 {
		t.r2 = gomath.Inf(1)
		return t
	}
	sa := pa.X*pa.X + pa.Y*pa.Y
	sb := pb.X*pb.X + pb.Y*pb.Y
	sc := pc.X*pc.X + pc.Y*pc.Y
	t.cx = (sa*(pb.Y-pc.Y) + sb*(pc.Y-pa.Y) + sc*(pa.Y-pb.Y)) / d
	t.cy = (sa*(pc.X-pb.X) + sb*(pa.X-pc.X) + sc*(pb.X-pa.X)) / d
	dx, dy := pa.X-t.cx, pa.Y-t.cy
	t.r2 = dx*dx + dy*dy
	return t
}

// encloses reports whether p lies strictly inside the circumcircle.
func (t circumTriangle) encloses(p math.Vec2) bool {
	if gomath.IsInf(t.r2, 1) {
		return false
	}
	dx, dy := p.X-t.cx, p.Y-t.cy
	return dx*dx+dy*dy < t.r2*(1-1e-12)
}

func undirected(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
