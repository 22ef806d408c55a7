// Package spatial provides fast point and brush queries over a terrain
// topology using a uniform bucket grid.
package spatial

import (
	gomath "math"
	"slices"

	"github.com/golang/geo/r2"

	"github.com/Faultbox/courseforge/internal/topology"
	"github.com/Faultbox/courseforge/pkg/math"
)

// DefaultCellSize is the bucket edge length in world units.
const DefaultCellSize = 1.0

// Index buckets triangles by their ground-plane bounding boxes. It holds no
// copies of geometry and must be rebuilt after the topology changes.
type Index struct {
	topo     *topology.Topology
	cellSize float64
	cols     int
	rows     int
	cells    [][]topology.TriangleID
	bounds   map[topology.TriangleID]r2.Rect
}

// New builds an index over topo. A non-positive cell size selects
// DefaultCellSize.
func New(topo *topology.Topology, cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = DefaultCellSize
	}
	ix := &Index{topo: topo, cellSize: cellSize}
	ix.Rebuild()
	return ix
}

// CellSize returns the bucket size.
func (ix *Index) CellSize() float64 {
	return ix.cellSize
}

// Rebuild re-buckets every triangle of the topology.
func (ix *Index) Rebuild() {
	ix.cols = max(1, int(gomath.Ceil(ix.topo.WorldWidth/ix.cellSize)))
	ix.rows = max(1, int(gomath.Ceil(ix.topo.WorldHeight/ix.cellSize)))
	ix.cells = make([][]topology.TriangleID, ix.cols*ix.rows)
	ix.bounds = make(map[topology.TriangleID]r2.Rect)

	// ascending ids keep bucket contents sorted
	for _, id := range ix.topo.TriangleIDs() {
		a, b, c, ok := ix.topo.TrianglePositions(id)
		if !ok {
			continue
		}
		rect := r2.RectFromPoints(point(a.XZ()), point(b.XZ()), point(c.XZ()))
		ix.bounds[id] = rect
		x0, z0, x1, z1 := ix.cellRange(rect)
		for cz := z0; cz <= z1; cz++ {
			for cx := x0; cx <= x1; cx++ {
				i := cz*ix.cols + cx
				ix.cells[i] = append(ix.cells[i], id)
			}
		}
	}
}

// FindFaceAtPosition returns the triangle containing (x, z). Points on a
// shared edge resolve to the lowest triangle id. Points outside the world
// rectangle are never found.
func (ix *Index) FindFaceAtPosition(x, z float64) (topology.TriangleID, bool) {
	if !(x >= 0 && z >= 0 && x <= ix.topo.WorldWidth && z <= ix.topo.WorldHeight) {
		return 0, false
	}
	cx := min(int(x/ix.cellSize), ix.cols-1)
	cz := min(int(z/ix.cellSize), ix.rows-1)
	p := math.Vec2{X: x, Y: z}
	for _, id := range ix.cells[cz*ix.cols+cx] {
		a, b, c, ok := ix.topo.TrianglePositions(id)
		if ok && math.PointInTriangle(p, a.XZ(), b.XZ(), c.XZ()) {
			return id, true
		}
	}
	return 0, false
}

// GetFacesInBrush returns the triangles whose centroid lies within radius
// of (x, z), ascending by id.
func (ix *Index) GetFacesInBrush(x, z, radius float64) []topology.TriangleID {
	if radius < 0 {
		return nil
	}
	center := math.Vec2{X: x, Y: z}
	var out []topology.TriangleID
	for _, id := range ix.candidates(x, z, radius) {
		a, b, c, _ := ix.topo.TrianglePositions(id)
		if math.Centroid(a.XZ(), b.XZ(), c.XZ()).Distance(center) <= radius {
			out = append(out, id)
		}
	}
	return out
}

// VerticesInBrush returns the vertices within radius of (x, z), ascending.
func (ix *Index) VerticesInBrush(x, z, radius float64) []topology.VertexID {
	if radius < 0 {
		return nil
	}
	center := math.Vec2{X: x, Y: z}
	seen := make(map[topology.VertexID]struct{})
	for _, id := range ix.candidates(x, z, radius) {
		tri, _ := ix.topo.Triangle(id)
		for _, v := range tri.Vertices {
			if _, done := seen[v]; done {
				continue
			}
			vert, _ := ix.topo.Vertex(v)
			if vert.Position.XZ().Distance(center) <= radius {
				seen[v] = struct{}{}
			}
		}
	}
	return sortedIDs(seen)
}

// EdgesInBrush returns the edges whose midpoint lies within radius of
// (x, z), ascending.
func (ix *Index) EdgesInBrush(x, z, radius float64) []topology.EdgeID {
	if radius < 0 {
		return nil
	}
	center := math.Vec2{X: x, Y: z}
	seen := make(map[topology.EdgeID]struct{})
	ix.eachCandidateEdge(x, z, radius, func(id topology.EdgeID, a, b math.Vec2) {
		if a.Lerp(b, 0.5).Distance(center) <= radius {
			seen[id] = struct{}{}
		}
	})
	return sortedIDs(seen)
}

// NearestVertex returns the vertex closest to (x, z). Ties resolve to the
// lowest id.
func (ix *Index) NearestVertex(x, z float64) (topology.VertexID, bool) {
	center := math.Vec2{X: x, Y: z}
	best, bestDist, found := topology.VertexID(0), gomath.Inf(1), false
	consider := func(id topology.VertexID) {
		v, _ := ix.topo.Vertex(id)
		d := v.Position.XZ().Distance(center)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist, found = id, d, true
		}
	}

	for r := ix.cellSize; r <= ix.searchLimit(); r *= 2 {
		for _, id := range ix.VerticesInBrush(x, z, r) {
			consider(id)
		}
		if found {
			return best, true
		}
	}
	for _, id := range ix.topo.VertexIDs() {
		consider(id)
	}
	return best, found
}

// NearestEdge returns the edge whose segment passes closest to (x, z). Ties
// resolve to the lowest id.
func (ix *Index) NearestEdge(x, z float64) (topology.EdgeID, bool) {
	center := math.Vec2{X: x, Y: z}
	best, bestDist, found := topology.EdgeID(0), gomath.Inf(1), false
	consider := func(id topology.EdgeID, a, b math.Vec2) {
		d := math.SegmentDistance(center, a, b)
		if d < bestDist || (d == bestDist && id < best) {
			best, bestDist, found = id, d, true
		}
	}

	for r := ix.cellSize; r <= ix.searchLimit(); r *= 2 {
		ix.eachCandidateEdge(x, z, r, consider)
		if found && bestDist <= r {
			return best, true
		}
	}
	for _, id := range ix.topo.EdgeIDs() {
		e, _ := ix.topo.Edge(id)
		a, _ := ix.topo.Vertex(e.V1)
		b, _ := ix.topo.Vertex(e.V2)
		consider(id, a.Position.XZ(), b.Position.XZ())
	}
	return best, found
}

// candidates returns triangles whose bounding box overlaps the square of
// half-size radius around (x, z), ascending by id.
func (ix *Index) candidates(x, z, radius float64) []topology.TriangleID {
	query := r2.RectFromCenterSize(r2.Point{X: x, Y: z}, r2.Point{X: 2 * radius, Y: 2 * radius})
	x0, z0, x1, z1 := ix.cellRange(query)
	seen := make(map[topology.TriangleID]struct{})
	for cz := z0; cz <= z1; cz++ {
		for cx := x0; cx <= x1; cx++ {
			for _, id := range ix.cells[cz*ix.cols+cx] {
				if ix.bounds[id].Intersects(query) {
					seen[id] = struct{}{}
				}
			}
		}
	}
	return sortedIDs(seen)
}

func (ix *Index) eachCandidateEdge(x, z, radius float64, fn func(id topology.EdgeID, a, b math.Vec2)) {
	seen := make(map[topology.EdgeID]struct{})
	for _, triID := range ix.candidates(x, z, radius) {
		tri, _ := ix.topo.Triangle(triID)
		for i := range 3 {
			u, v := tri.Vertices[i], tri.Vertices[(i+1)%3]
			id, ok := ix.topo.EdgeBetween(u, v)
			if !ok {
				continue
			}
			if _, done := seen[id]; done {
				continue
			}
			seen[id] = struct{}{}
			a, _ := ix.topo.Vertex(u)
			b, _ := ix.topo.Vertex(v)
			fn(id, a.Position.XZ(), b.Position.XZ())
		}
	}
}

// cellRange converts a rectangle to clamped bucket coordinates.
func (ix *Index) cellRange(rect r2.Rect) (x0, z0, x1, z1 int) {
	clampCell := func(v float64, n int) int {
		c := int(gomath.Floor(v / ix.cellSize))
		return min(max(c, 0), n-1)
	}
	return clampCell(rect.X.Lo, ix.cols), clampCell(rect.Y.Lo, ix.rows),
		clampCell(rect.X.Hi, ix.cols), clampCell(rect.Y.Hi, ix.rows)
}

func (ix *Index) searchLimit() float64 {
	return 2 * max(ix.topo.WorldWidth, ix.topo.WorldHeight, ix.cellSize)
}

func point(v math.Vec2) r2.Point {
	return r2.Point{X: v.X, Y: v.Y}
}

func sortedIDs[K ~int](m map[K]struct{}) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
