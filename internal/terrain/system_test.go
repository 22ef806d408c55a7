package terrain

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Faultbox/courseforge/internal/sdf"
	"github.com/Faultbox/courseforge/internal/topology"
	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

func testOptions() Options {
	opts := DefaultOptions()
	opts.SDF = sdf.Options{Resolution: 1, MaxDistance: 2}
	opts.Logger = zap.NewNop()
	return opts
}

func circleCourse() *course.Course {
	return &course.Course{
		WorldWidth:  20,
		WorldHeight: 20,
		Background:  course.Rough,
		Regions: []course.Region{
			{TerrainCode: course.Fairway, Boundary: course.Circle(10, 10, 5, 32)},
		},
	}
}

func TestFromCourse(t *testing.T) {
	s := FromCourse(circleCourse(), 2, 3, testOptions())

	code, ok := s.TerrainAt(10, 10)
	require.True(t, ok)
	assert.Equal(t, course.Fairway, code)
	code, ok = s.TerrainAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, course.Rough, code)

	l := s.Layout()
	assert.Equal(t, 20, l.Width)
	assert.Equal(t, course.Fairway, l.At(10, 10))
	assert.Equal(t, course.Rough, l.At(0, 0))

	f := s.SDF()
	assert.Equal(t, 20, f.Width)
	assert.Less(t, f.At(10, 10, sdf.ChannelFairway), uint8(128))
	assert.Equal(t, uint8(255), f.At(0, 0, sdf.ChannelFairway))
}

func TestFromCourse_Background(t *testing.T) {
	opts := testOptions()
	opts.Background = course.Water

	s := FromCourse(circleCourse(), 2, 3, opts)
	code, ok := s.TerrainAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, course.Water, code)
	assert.Equal(t, course.Water, s.Layout().At(0, 0))

	named := circleCourse()
	named.Background = course.Fairway
	named.HasBackground = true
	s = FromCourse(named, 2, 3, opts)
	code, ok = s.TerrainAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, course.Fairway, code)
	assert.Equal(t, course.Rough, circleCourse().Background)
}

func TestFromLayout(t *testing.T) {
	l := course.NewLayout(4, 4, course.Rough)
	l.Set(0, 0, course.Water)
	l.Elevation[2][2] = 4
	s := FromLayout(l, 8, 8, 1, testOptions())

	c := s.Topology().Counts()
	assert.Equal(t, 25, c.Vertices)
	assert.Equal(t, 32, c.Triangles)

	code, ok := s.TerrainAt(1, 1)
	require.True(t, ok)
	assert.Equal(t, course.Water, code)
	assert.False(t, s.IsPlayable(1, 1))
	assert.True(t, s.IsPlayable(7, 7))

	// vertex (3,3) of the grid is shared by cell (2,2) and three flat cells
	y, ok := s.ElevationAt(6, 6)
	require.True(t, ok)
	assert.InDelta(t, 1.0, y, 1e-9)
}

func TestElevationAt(t *testing.T) {
	grid := [][]math.Vec3{
		{{X: 0, Y: 0, Z: 0}, {X: 4, Y: 4, Z: 0}},
		{{X: 0, Y: 0, Z: 4}, {X: 4, Y: 4, Z: 4}},
	}
	s := NewSystem(topology.GridToTopology(grid, 4, 4, 1, nil), testOptions())

	y, ok := s.ElevationAt(1, 3)
	require.True(t, ok)
	assert.InDelta(t, 1.0, y, 1e-9)
	y, ok = s.ElevationAt(3, 0.5)
	require.True(t, ok)
	assert.InDelta(t, 3.0, y, 1e-9)

	_, ok = s.ElevationAt(5, 1)
	assert.False(t, ok)
}

func TestEditCycleRefreshesDerivedState(t *testing.T) {
	l := course.NewLayout(4, 4, course.Rough)
	s := FromLayout(l, 4, 4, 1, testOptions())
	topo := s.Topology()

	a, _ := s.Index().NearestVertex(2, 1)
	b, _ := s.Index().NearestVertex(1, 2)
	edge, ok := topo.EdgeBetween(a, b)
	require.True(t, ok)

	res, ok := s.SubdivideEdge(edge, 0.5)
	require.True(t, ok)
	face, ok := s.FaceAt(1.6, 1.6)
	require.True(t, ok)
	tri, _ := topo.Triangle(face)
	assert.Contains(t, tri.Vertices, res.Vertex)
	require.NoError(t, topo.Validate())

	collapse, ok := s.CollapseEdge(mustEdge(t, topo, res.Vertex, a))
	require.True(t, ok)
	_, ok = topo.Vertex(collapse.RemovedVertex)
	assert.False(t, ok)
	require.NoError(t, topo.Validate())

	_, ok = s.FlipEdge(topology.EdgeID(-1))
	assert.False(t, ok)
}

func TestPaintBrushUpdatesSDF(t *testing.T) {
	l := course.NewLayout(10, 10, course.Rough)
	s := FromLayout(l, 10, 10, 1, testOptions())
	field := s.SDF()
	require.Equal(t, uint8(255), field.At(5, 5, sdf.ChannelGreen))

	ids := s.PaintBrush(5, 5, 1.5, course.Green)
	require.NotEmpty(t, ids)
	for _, id := range ids {
		tri, _ := s.Topology().Triangle(id)
		assert.Equal(t, course.Green, tri.TerrainCode)
	}

	assert.Same(t, field, s.SDF())
	assert.Equal(t, course.Green, s.Layout().At(5, 5))
	assert.Less(t, s.SDF().At(5, 5, sdf.ChannelGreen), uint8(128))

	assert.Nil(t, s.PaintBrush(5, 5, 1, course.TerrainCode(99)))
}

func TestSetTerrainCode(t *testing.T) {
	s := FromLayout(course.NewLayout(2, 2, course.Rough), 2, 2, 1, testOptions())
	face, ok := s.FaceAt(0.2, 0.2)
	require.True(t, ok)

	require.True(t, s.SetTerrainCode(face, course.Bunker))
	assert.Equal(t, course.Bunker, s.Layout().At(0, 0))
	assert.False(t, s.SetTerrainCode(topology.TriangleID(999), course.Bunker))
}

func TestDeleteVertex(t *testing.T) {
	s := FromLayout(course.NewLayout(2, 2, course.Rough), 2, 2, 1, testOptions())
	center, ok := s.Index().NearestVertex(1, 1)
	require.True(t, ok)
	require.True(t, s.CanDeleteVertex(center))

	_, ok = s.DeleteVertex(center)
	require.True(t, ok)
	assert.Equal(t, 8, s.Topology().Counts().Vertices)

	corner, _ := s.Index().NearestVertex(0, 0)
	assert.False(t, s.CanDeleteVertex(corner))
	_, ok = s.DeleteVertex(corner)
	assert.False(t, ok)
}

func TestSetVertexPosition(t *testing.T) {
	s := FromLayout(course.NewLayout(2, 2, course.Rough), 2, 2, 1, testOptions())
	center, _ := s.Index().NearestVertex(1, 1)

	require.True(t, s.SetVertexPosition(center, math.Vec3{X: 1, Y: 3, Z: 1}))
	y, ok := s.ElevationAt(1, 1)
	require.True(t, ok)
	assert.InDelta(t, 3.0, y, 1e-9)

	assert.False(t, s.SetVertexPosition(center, math.Vec3{X: 5, Z: 5}))
}

func TestSaveLoad(t *testing.T) {
	s := FromCourse(circleCourse(), 2, 3, testOptions())
	path := filepath.Join(t.TempDir(), "course.json")
	require.NoError(t, s.Save(path))

	loaded, err := Load(path, testOptions())
	require.NoError(t, err)
	assert.Equal(t, s.Topology().Counts(), loaded.Topology().Counts())
	code, _ := loaded.TerrainAt(10, 10)
	assert.Equal(t, course.Fairway, code)

	_, err = Load(filepath.Join(t.TempDir(), "nope.json"), testOptions())
	assert.Error(t, err)
}

func mustEdge(t *testing.T, topo *topology.Topology, a, b topology.VertexID) topology.EdgeID {
	t.Helper()
	id, ok := topo.EdgeBetween(a, b)
	require.True(t, ok)
	return id
}
