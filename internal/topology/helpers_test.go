package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

// unitGrid returns a flat grid of (cols+1) x (rows+1) vertices one unit apart.
func unitGrid(cols, rows int) [][]math.Vec3 {
	grid := make([][]math.Vec3, rows+1)
	for j := range grid {
		grid[j] = make([]math.Vec3, cols+1)
		for i := range grid[j] {
			grid[j][i] = math.Vec3{X: float64(i), Z: float64(j)}
		}
	}
	return grid
}

func gridTopology(cols, rows int) *Topology {
	return GridToTopology(unitGrid(cols, rows), float64(cols), float64(rows), 1, nil)
}

// vertexAt finds the vertex at ground position (x, z).
func vertexAt(t *testing.T, topo *Topology, x, z float64) VertexID {
	t.Helper()
	for _, id := range topo.VertexIDs() {
		p := topo.vertices[id].Position
		if p.X == x && p.Z == z {
			return id
		}
	}
	t.Fatalf("no vertex at (%v, %v)", x, z)
	return 0
}

func edgeAt(t *testing.T, topo *Topology, x1, z1, x2, z2 float64) EdgeID {
	t.Helper()
	id, ok := topo.EdgeBetween(vertexAt(t, topo, x1, z1), vertexAt(t, topo, x2, z2))
	require.True(t, ok, "edge (%v,%v)-(%v,%v)", x1, z1, x2, z2)
	return id
}

// faceAt returns the triangle containing (x, z) by linear scan.
func faceAt(topo *Topology, x, z float64) (TriangleID, bool) {
	p := math.Vec2{X: x, Y: z}
	for _, id := range topo.TriangleIDs() {
		a, b, c, _ := topo.TrianglePositions(id)
		if math.PointInTriangle(p, a.XZ(), b.XZ(), c.XZ()) {
			return id, true
		}
	}
	return 0, false
}

func totalArea(topo *Topology) float64 {
	sum := 0.0
	for _, id := range topo.TriangleIDs() {
		a, b, c, _ := topo.TrianglePositions(id)
		sum += math.TriangleArea(a.XZ(), b.XZ(), c.XZ())
	}
	return sum
}

func requirePositiveWinding(t *testing.T, topo *Topology) {
	t.Helper()
	for _, id := range topo.TriangleIDs() {
		a, b, c, ok := topo.TrianglePositions(id)
		require.True(t, ok)
		require.Greater(t, math.Orient2D(a.XZ(), b.XZ(), c.XZ()), 0.0, "triangle %d", id)
	}
}

func vertexSet(tri Triangle) map[VertexID]bool {
	return map[VertexID]bool{tri.Vertices[0]: true, tri.Vertices[1]: true, tri.Vertices[2]: true}
}

// fan builds three triangles around an interior vertex e of triangle abc.
func fan() (*Topology, [4]VertexID) {
	topo := New(4, 4)
	a := topo.AddVertex(math.Vec3{X: 0, Z: 0})
	b := topo.AddVertex(math.Vec3{X: 4, Z: 0})
	c := topo.AddVertex(math.Vec3{X: 2, Z: 4})
	e := topo.AddVertex(math.Vec3{X: 2, Z: 1})
	topo.AddTriangle(a, b, e, course.Fairway)
	topo.AddTriangle(b, c, e, course.Fairway)
	topo.AddTriangle(c, a, e, course.Green)
	return topo, [4]VertexID{a, b, c, e}
}

// snapshot captures the persisted form of topo together with its derived
// edges, so two snapshots are equal only when nothing changed.
func snapshot(t *testing.T, topo *Topology) []byte {
	t.Helper()
	data, err := Marshal(topo)
	require.NoError(t, err)
	for _, id := range topo.EdgeIDs() {
		e, _ := topo.Edge(id)
		data = fmt.Appendf(data, "\n%d:%d-%d%v", id, e.V1, e.V2, e.Triangles)
	}
	return data
}
