package topology

import (
	gomath "math"

	"github.com/paulmach/orb"

	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

const (
	DefaultBoundaryPointSpacing = 2.0
	DefaultFillPointSpacing     = 4.0
)

// BuildOptions configures BuildDelaunayTopology.
type BuildOptions struct {
	WorldWidth  float64
	WorldHeight float64

	// Regions are applied in order; later regions win where they overlap.
	Regions    []course.Region
	Background course.TerrainCode

	// BoundaryPointSpacing is the arc-length step used to sample region
	// boundaries. FillPointSpacing is the step of the regular fill grid.
	BoundaryPointSpacing float64
	FillPointSpacing     float64
}

// BuildFromCourse is a convenience wrapper around BuildDelaunayTopology.
func BuildFromCourse(c *course.Course, boundarySpacing, fillSpacing float64) *Topology {
	return BuildDelaunayTopology(BuildOptions{
		WorldWidth:           c.WorldWidth,
		WorldHeight:          c.WorldHeight,
		Regions:              c.Regions,
		Background:           c.Background,
		BoundaryPointSpacing: boundarySpacing,
		FillPointSpacing:     fillSpacing,
	})
}

// BuildDelaunayTopology triangulates boundary samples of every region
// together with a regular fill grid over the world rectangle. Triangles are
// classified by the region containing their centroid and vertices take the
// elevation of the last containing region that defines one.
func BuildDelaunayTopology(opts BuildOptions) *Topology {
	t := New(opts.WorldWidth, opts.WorldHeight)
	if opts.WorldWidth <= 0 || opts.WorldHeight <= 0 {
		return t
	}
	boundarySpacing := opts.BoundaryPointSpacing
	if boundarySpacing <= 0 {
		boundarySpacing = DefaultBoundaryPointSpacing
	}
	fillSpacing := opts.FillPointSpacing
	if fillSpacing <= 0 {
		fillSpacing = DefaultFillPointSpacing
	}

	ps := newPointSet(min(boundarySpacing, fillSpacing) / 2)
	for i := range opts.Regions {
		for _, p := range sampleBoundary(opts.Regions[i].Boundary, boundarySpacing) {
			p.X = math.Clamp(p.X, 0, opts.WorldWidth)
			p.Y = math.Clamp(p.Y, 0, opts.WorldHeight)
			ps.add(p, true)
		}
	}
	// fill points on the world border are pinned so the hull is exactly the
	// world rectangle
	for _, z := range fillSteps(opts.WorldHeight, fillSpacing) {
		for _, x := range fillSteps(opts.WorldWidth, fillSpacing) {
			border := x == 0 || x == opts.WorldWidth || z == 0 || z == opts.WorldHeight
			ps.add(math.Vec2{X: x, Y: z}, border)
		}
	}

	pts := ps.points
	ids := make([]VertexID, len(pts))
	for i, p := range pts {
		y := 0.0
		for r := range opts.Regions {
			region := &opts.Regions[r]
			if !region.Contains(p.X, p.Y) {
				continue
			}
			if e, ok := region.ElevationAt(p.X, p.Y); ok {
				y = e
			}
		}
		ids[i] = t.AddVertex(math.Vec3{X: p.X, Y: y, Z: p.Y})
	}

	for _, tri := range closeGaps(pts, triangulate(pts)) {
		a, b, c := pts[tri[0]], pts[tri[1]], pts[tri[2]]
		if isDegenerate(math.Orient2D(a, b, c), a, b, c) {
			continue
		}
		centroid := math.Centroid(a, b, c)
		code := opts.Background
		for r := range opts.Regions {
			if opts.Regions[r].Contains(centroid.X, centroid.Y) {
				code = opts.Regions[r].TerrainCode
			}
		}
		id := t.ids.triangle()
		t.triangles[id] = &Triangle{
			ID:          id,
			Vertices:    [3]VertexID{ids[tri[0]], ids[tri[1]], ids[tri[2]]},
			TerrainCode: code,
		}
	}
	t.rederiveEdges()

	// points the triangulation could not use stay out of the mesh
	for _, id := range t.VertexIDs() {
		if len(t.vertexTris[id]) == 0 {
			t.removeVertex(id)
		}
	}
	return t
}

// sampleBoundary walks a closed ring by arc length and returns
// max(3, round(perimeter/spacing)) evenly spaced points.
func sampleBoundary(ring orb.Ring, spacing float64) []math.Vec2 {
	pts := make([]math.Vec2, 0, len(ring))
	for _, p := range ring {
		pts = append(pts, math.Vec2{X: p[0], Y: p[1]})
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil
	}

	seg := make([]float64, len(pts))
	perimeter := 0.0
	for i := range pts {
		seg[i] = pts[i].Distance(pts[(i+1)%len(pts)])
		perimeter += seg[i]
	}
	if perimeter == 0 {
		return nil
	}

	n := max(3, int(gomath.Round(perimeter/spacing)))
	step := perimeter / float64(n)
	out := make([]math.Vec2, 0, n)
	i, walked := 0, 0.0
	for k := range n {
		target := float64(k) * step
		for i < len(pts)-1 && walked+seg[i] < target {
			walked += seg[i]
			i++
		}
		t := 0.0
		if seg[i] > 0 {
			t = math.Clamp((target-walked)/seg[i], 0, 1)
		}
		out = append(out, pts[i].Lerp(pts[(i+1)%len(pts)], t))
	}
	return out
}

// fillSteps divides [0, limit] into ceil(limit/spacing) equal steps and
// returns every step position, both ends included.
func fillSteps(limit, spacing float64) []float64 {
	n := max(1, int(gomath.Ceil(limit/spacing-1e-6)))
	step := limit / float64(n)
	out := make([]float64, n+1)
	for i := range n {
		out[i] = float64(i) * step
	}
	out[n] = limit
	return out
}

// pointSet deduplicates points. Pinned points are always accepted (exact
// duplicates aside); other points are dropped when closer than minDist to
// an accepted one.
type pointSet struct {
	minDist float64
	points  []math.Vec2
	cells   map[[2]int][]int
}

func newPointSet(minDist float64) *pointSet {
	return &pointSet{minDist: minDist, cells: make(map[[2]int][]int)}
}

func (s *pointSet) cell(p math.Vec2) [2]int {
	return [2]int{int(gomath.Floor(p.X / s.minDist)), int(gomath.Floor(p.Y / s.minDist))}
}

func (s *pointSet) add(p math.Vec2, pinned bool) {
	c := s.cell(p)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			for _, idx := range s.cells[[2]int{c[0] + dx, c[1] + dz}] {
				d := s.points[idx].Distance(p)
				if d < 1e-9 || (!pinned && d < s.minDist) {
					return
				}
			}
		}
	}
	s.cells[c] = append(s.cells[c], len(s.points))
	s.points = append(s.points, p)
}
