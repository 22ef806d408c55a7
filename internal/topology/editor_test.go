package topology

import (
	gomath "math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

type EditorSuite struct {
	suite.Suite
	topo *Topology
}

// SetupTest builds a flat 3x3-quad grid.
func (s *EditorSuite) SetupTest() {
	s.topo = gridTopology(3, 3)
}

func (s *EditorSuite) edge(x1, z1, x2, z2 float64) EdgeID {
	return edgeAt(s.T(), s.topo, x1, z1, x2, z2)
}

func (s *EditorSuite) TestSubdivideInteriorEdge() {
	id := s.edge(1, 1, 2, 1)
	before := s.topo.Counts()
	e, _ := s.topo.Edge(id)

	res, ok := s.topo.SubdivideEdge(id, 0.25)
	s.Require().True(ok)
	s.Require().Len(res.Modified, 2)
	s.Require().Len(res.Created, 2)
	s.Require().ElementsMatch(e.Triangles, res.Modified)

	after := s.topo.Counts()
	s.Require().Equal(before.Vertices+1, after.Vertices)
	s.Require().Equal(before.Triangles+2, after.Triangles)
	s.Require().NoError(s.topo.Validate())
	requirePositiveWinding(s.T(), s.topo)
	s.Require().InDelta(9.0, totalArea(s.topo), 1e-9)

	v, _ := s.topo.Vertex(res.Vertex)
	v1, _ := s.topo.Vertex(e.V1)
	s.Require().InDelta(0.25, v.Position.XZ().Distance(v1.Position.XZ()), 1e-9)

	_, still := s.topo.Edge(id)
	s.Require().False(still)
}

func (s *EditorSuite) TestSubdivideBoundaryEdge() {
	id := s.edge(0, 0, 1, 0)
	before := s.topo.Counts()

	res, ok := s.topo.SubdivideEdge(id, 0.5)
	s.Require().True(ok)
	s.Require().Len(res.Created, 1)
	s.Require().Equal(before.Triangles+1, s.topo.Counts().Triangles)
	s.Require().True(s.topo.IsBoundaryVertex(res.Vertex))
	s.Require().NoError(s.topo.Validate())
}

func (s *EditorSuite) TestSubdivideInterpolatesElevation() {
	a := vertexAt(s.T(), s.topo, 1, 1)
	b := vertexAt(s.T(), s.topo, 2, 1)
	s.Require().True(s.topo.SetVertexPosition(a, math.Vec3{X: 1, Y: 2, Z: 1}))
	s.Require().True(s.topo.SetVertexPosition(b, math.Vec3{X: 2, Y: 6, Z: 1}))

	id, _ := s.topo.EdgeBetween(a, b)
	res, ok := s.topo.SubdivideEdge(id, 0.5)
	s.Require().True(ok)
	v, _ := s.topo.Vertex(res.Vertex)
	s.Require().InDelta(4.0, v.Position.Y, 1e-9)
}

func (s *EditorSuite) TestSubdivideRejectsBadParameter() {
	id := s.edge(1, 1, 2, 1)
	before := snapshot(s.T(), s.topo)
	for _, at := range []float64{0, 1, -0.5, 1.5, gomath.NaN()} {
		_, ok := s.topo.SubdivideEdge(id, at)
		s.Require().False(ok, "t=%v", at)
	}
	_, ok := s.topo.SubdivideEdge(EdgeID(9999), 0.5)
	s.Require().False(ok)
	s.Require().Equal(before, snapshot(s.T(), s.topo))
}

func (s *EditorSuite) TestCollapseInteriorEdge() {
	a := vertexAt(s.T(), s.topo, 1, 1)
	b := vertexAt(s.T(), s.topo, 2, 1)
	id, _ := s.topo.EdgeBetween(a, b)

	res, ok := s.topo.CollapseEdge(id)
	s.Require().True(ok)
	s.Require().Len(res.RemovedTriangles, 2)

	c := s.topo.Counts()
	s.Require().Equal(15, c.Vertices)
	s.Require().Equal(16, c.Triangles)
	s.Require().NoError(s.topo.Validate())
	requirePositiveWinding(s.T(), s.topo)
	s.Require().InDelta(9.0, totalArea(s.topo), 1e-9)

	v, ok := s.topo.Vertex(res.Vertex)
	s.Require().True(ok)
	s.Require().InDelta(1.5, v.Position.X, 1e-9)
	s.Require().InDelta(1.0, v.Position.Z, 1e-9)
	_, ok = s.topo.Vertex(res.RemovedVertex)
	s.Require().False(ok)
	for _, triID := range res.RemovedTriangles {
		_, ok := s.topo.Triangle(triID)
		s.Require().False(ok)
	}
}

func (s *EditorSuite) TestCollapseKeepsBoundaryPosition() {
	inner := vertexAt(s.T(), s.topo, 1, 1)
	outer := vertexAt(s.T(), s.topo, 1, 0)
	id, ok := s.topo.EdgeBetween(inner, outer)
	s.Require().True(ok)

	res, ok := s.topo.CollapseEdge(id)
	s.Require().True(ok)
	v, _ := s.topo.Vertex(res.Vertex)
	s.Require().Equal(1.0, v.Position.X)
	s.Require().Equal(0.0, v.Position.Z)
	s.Require().NoError(s.topo.Validate())
	s.Require().InDelta(9.0, totalArea(s.topo), 1e-9)
}

func (s *EditorSuite) TestCollapseRefusesInteriorEdgeBetweenBoundaryVertices() {
	// the diagonal of the corner quad joins two boundary vertices
	id := s.edge(1, 0, 0, 1)
	before := snapshot(s.T(), s.topo)

	_, ok := s.topo.CollapseEdge(id)
	s.Require().False(ok)
	s.Require().Equal(before, snapshot(s.T(), s.topo))
}

func (s *EditorSuite) TestCollapseBoundaryEdgeKeepsCorner() {
	id := s.edge(1, 0, 0, 0)

	res, ok := s.topo.CollapseEdge(id)
	s.Require().True(ok)
	v, _ := s.topo.Vertex(res.Vertex)
	s.Require().Equal(math.Vec3{}, v.Position)
	s.Require().NoError(s.topo.Validate())
	requirePositiveWinding(s.T(), s.topo)
	s.Require().InDelta(9.0, totalArea(s.topo), 1e-9)
}

func (s *EditorSuite) TestCollapseStraightBoundaryEdgeUsesMidpoint() {
	id := s.edge(1, 0, 2, 0)

	res, ok := s.topo.CollapseEdge(id)
	s.Require().True(ok)
	v, _ := s.topo.Vertex(res.Vertex)
	s.Require().InDelta(1.5, v.Position.X, 1e-9)
	s.Require().Equal(0.0, v.Position.Z)
	s.Require().InDelta(9.0, totalArea(s.topo), 1e-9)
}

func (s *EditorSuite) TestFlipTwiceRestoresTriangles() {
	id := s.edge(2, 1, 1, 2)
	e, _ := s.topo.Edge(id)
	t1, _ := s.topo.Triangle(e.Triangles[0])
	t2, _ := s.topo.Triangle(e.Triangles[1])

	res, ok := s.topo.FlipEdge(id)
	s.Require().True(ok)
	s.Require().NotEqual(id, res.Edge)
	s.Require().NoError(s.topo.Validate())
	requirePositiveWinding(s.T(), s.topo)
	flipped, _ := s.topo.Edge(res.Edge)
	s.Require().ElementsMatch([]VertexID{vertexAt(s.T(), s.topo, 1, 1), vertexAt(s.T(), s.topo, 2, 2)}, []VertexID{flipped.V1, flipped.V2})

	res2, ok := s.topo.FlipEdge(res.Edge)
	s.Require().True(ok)
	s.Require().ElementsMatch(res.Triangles[:], res2.Triangles[:])

	want := []map[VertexID]bool{vertexSet(t1), vertexSet(t2)}
	var got []map[VertexID]bool
	for _, triID := range res2.Triangles {
		tri, _ := s.topo.Triangle(triID)
		got = append(got, vertexSet(tri))
	}
	s.Require().ElementsMatch(want, got)
	s.Require().Equal(course.Rough, t1.TerrainCode)
}

func (s *EditorSuite) TestFlipKeepsSurroundingEdgeIDs() {
	id := s.edge(2, 1, 1, 2)
	outer := []EdgeID{
		s.edge(1, 1, 2, 1),
		s.edge(2, 1, 2, 2),
		s.edge(2, 2, 1, 2),
		s.edge(1, 2, 1, 1),
	}

	_, ok := s.topo.FlipEdge(id)
	s.Require().True(ok)
	s.Require().Equal(outer, []EdgeID{
		s.edge(1, 1, 2, 1),
		s.edge(2, 1, 2, 2),
		s.edge(2, 2, 1, 2),
		s.edge(1, 2, 1, 1),
	})
}

func (s *EditorSuite) TestFlipRefusesBoundaryEdge() {
	before := snapshot(s.T(), s.topo)
	_, ok := s.topo.FlipEdge(s.edge(0, 0, 1, 0))
	s.Require().False(ok)
	s.Require().Equal(before, snapshot(s.T(), s.topo))
}

func (s *EditorSuite) TestFlipRefusesConcaveQuad() {
	topo := New(4, 4)
	a := topo.AddVertex(math.Vec3{X: 0, Z: 0})
	b := topo.AddVertex(math.Vec3{X: 4, Z: 0})
	c := topo.AddVertex(math.Vec3{X: 1, Z: 1})
	d := topo.AddVertex(math.Vec3{X: 0, Z: 4})
	_, ok := topo.AddTriangle(a, b, c, course.Fairway)
	s.Require().True(ok)
	_, ok = topo.AddTriangle(a, c, d, course.Fairway)
	s.Require().True(ok)
	id, _ := topo.EdgeBetween(a, c)
	before := snapshot(s.T(), topo)
	_, ok = topo.FlipEdge(id)
	s.Require().False(ok)
	s.Require().Equal(before, snapshot(s.T(), topo))
}

func (s *EditorSuite) TestDeleteInteriorVertex() {
	v := vertexAt(s.T(), s.topo, 1, 1)
	s.Require().True(s.topo.CanDeleteVertex(v))
	umbrella := s.topo.TrianglesAroundVertex(v)
	s.Require().Len(umbrella, 6)

	res, ok := s.topo.DeleteVertex(v)
	s.Require().True(ok)
	s.Require().ElementsMatch(umbrella, res.Removed)
	s.Require().Len(res.Created, 4)

	c := s.topo.Counts()
	s.Require().Equal(15, c.Vertices)
	s.Require().Equal(16, c.Triangles)
	s.Require().NoError(s.topo.Validate())
	requirePositiveWinding(s.T(), s.topo)
	s.Require().InDelta(9.0, totalArea(s.topo), 1e-9)
}

func (s *EditorSuite) TestDeleteVertexKeepsTerrainCodes() {
	v := vertexAt(s.T(), s.topo, 1, 1)
	for _, id := range s.topo.TrianglesAroundVertex(v) {
		s.Require().True(s.topo.SetTerrainCode(id, course.Green))
	}
	res, ok := s.topo.DeleteVertex(v)
	s.Require().True(ok)
	for _, id := range res.Created {
		tri, _ := s.topo.Triangle(id)
		s.Require().Equal(course.Green, tri.TerrainCode)
	}
}

func (s *EditorSuite) TestDeleteRefusesBoundaryVertex() {
	v := vertexAt(s.T(), s.topo, 0, 1)
	s.Require().True(s.topo.IsBoundaryVertex(v))
	s.Require().False(s.topo.CanDeleteVertex(v))
	before := snapshot(s.T(), s.topo)
	_, ok := s.topo.DeleteVertex(v)
	s.Require().False(ok)
	s.Require().Equal(before, snapshot(s.T(), s.topo))
}

func (s *EditorSuite) TestDeleteOrphanVertex() {
	v := s.topo.AddVertex(math.Vec3{X: 10, Z: 10})
	_, ok := s.topo.DeleteVertex(v)
	s.Require().True(ok)
	_, ok = s.topo.Vertex(v)
	s.Require().False(ok)
}

func (s *EditorSuite) TestIdsAreNeverReused() {
	v := vertexAt(s.T(), s.topo, 1, 1)
	res, ok := s.topo.DeleteVertex(v)
	s.Require().True(ok)
	for _, id := range res.Created {
		for _, old := range res.Removed {
			s.Require().NotEqual(old, id)
		}
	}
	fresh := s.topo.AddVertex(math.Vec3{X: 5, Z: 5})
	s.Require().Greater(fresh, v)
}

func TestEditorSuite(t *testing.T) {
	suite.Run(t, new(EditorSuite))
}

func TestCollapseRefusesExtraCommonNeighbour(t *testing.T) {
	topo, v := fan()
	a, b := v[0], v[1]
	id, ok := topo.EdgeBetween(a, b)
	require.True(t, ok)
	before := snapshot(t, topo)

	_, ok = topo.CollapseEdge(id)
	require.False(t, ok)
	require.Equal(t, before, snapshot(t, topo))
}

func TestCollapseFanSpoke(t *testing.T) {
	topo, v := fan()
	a, e := v[0], v[3]
	id, _ := topo.EdgeBetween(a, e)

	res, ok := topo.CollapseEdge(id)
	require.True(t, ok)
	require.Equal(t, 1, topo.Counts().Triangles)
	require.Equal(t, 3, topo.Counts().Vertices)
	vert, _ := topo.Vertex(res.Vertex)
	require.Equal(t, math.Vec3{X: 0, Z: 0}, vert.Position)
	require.NoError(t, topo.Validate())
}

func TestCollapseRefusesLastTriangles(t *testing.T) {
	topo := gridTopology(1, 1)
	id := edgeAt(t, topo, 1, 0, 0, 1)
	before := snapshot(t, topo)

	_, ok := topo.CollapseEdge(id)
	require.False(t, ok)
	require.Equal(t, before, snapshot(t, topo))
}

func TestCollapseRefusesEdgeBetweenCorners(t *testing.T) {
	topo := gridTopology(1, 2)
	id := edgeAt(t, topo, 0, 0, 1, 0)
	before := snapshot(t, topo)

	_, ok := topo.CollapseEdge(id)
	require.False(t, ok)
	require.Equal(t, before, snapshot(t, topo))
}

func TestSetVertexPositionRefusesInversion(t *testing.T) {
	topo := gridTopology(2, 2)
	v := vertexAt(t, topo, 1, 1)
	before := snapshot(t, topo)

	require.False(t, topo.SetVertexPosition(v, math.Vec3{X: 3, Z: 1}))
	require.Equal(t, before, snapshot(t, topo))
	require.True(t, topo.SetVertexPosition(v, math.Vec3{X: 1.2, Y: 4, Z: 0.9}))
	got, _ := topo.Vertex(v)
	require.Equal(t, 4.0, got.Position.Y)
}

func TestAddTriangle(t *testing.T) {
	topo := New(2, 2)
	a := topo.AddVertex(math.Vec3{X: 0, Z: 0})
	b := topo.AddVertex(math.Vec3{X: 1, Z: 0})
	c := topo.AddVertex(math.Vec3{X: 0, Z: 1})
	d := topo.AddVertex(math.Vec3{X: 2, Z: 0})

	id, ok := topo.AddTriangle(a, c, b, course.Tee)
	require.True(t, ok)
	tri, _ := topo.Triangle(id)
	require.Equal(t, [3]VertexID{a, b, c}, tri.Vertices)

	_, ok = topo.AddTriangle(a, b, d, course.Tee)
	require.False(t, ok, "collinear")
	_, ok = topo.AddTriangle(a, a, b, course.Tee)
	require.False(t, ok)
	_, ok = topo.AddTriangle(a, b, VertexID(99), course.Tee)
	require.False(t, ok)
	require.Equal(t, 3, topo.Counts().Edges)
}

func TestRandomEditSequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := range 8 {
		topo := BuildDelaunayTopology(BuildOptions{
			WorldWidth:  24,
			WorldHeight: 18,
			Regions: []course.Region{
				{TerrainCode: course.Green, Boundary: course.Circle(12, 9, 5, 24)},
			},
			Background:           course.Rough,
			BoundaryPointSpacing: 1.5 + rng.Float64(),
			FillPointSpacing:     2.5 + rng.Float64(),
		})
		require.NoError(t, topo.Validate())

		for step := range 120 {
			before := snapshot(t, topo)
			var op string
			var ok bool
			switch rng.IntN(4) {
			case 0:
				op = "subdivide"
				_, ok = topo.SubdivideEdge(pick(rng, topo.EdgeIDs()), 0.1+0.8*rng.Float64())
			case 1:
				op = "collapse"
				_, ok = topo.CollapseEdge(pick(rng, topo.EdgeIDs()))
			case 2:
				op = "flip"
				_, ok = topo.FlipEdge(pick(rng, topo.EdgeIDs()))
			default:
				op = "delete"
				v := pick(rng, topo.VertexIDs())
				can := topo.CanDeleteVertex(v)
				_, ok = topo.DeleteVertex(v)
				require.Equal(t, can, ok, "round %d step %d: CanDeleteVertex(%d)", round, step, v)
			}

			if !ok {
				require.Equal(t, before, snapshot(t, topo), "round %d step %d: refused %s", round, step, op)
				continue
			}
			require.NoError(t, topo.Validate(), "round %d step %d: %s", round, step, op)
			require.False(t, topo.Sanitize().Changed(), "round %d step %d: %s", round, step, op)
		}
		require.InDelta(t, 24.0*18.0, totalArea(topo), 1e-6, "round %d", round)
	}
}

func pick[T any](rng *rand.Rand, ids []T) T {
	return ids[rng.IntN(len(ids))]
}
