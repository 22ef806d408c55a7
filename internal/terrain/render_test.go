package terrain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/courseforge/internal/topology"
	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

func TestBuildRenderMesh(t *testing.T) {
	grid := [][]math.Vec3{
		{{X: 0, Z: 0}, {X: 2, Z: 0}},
		{{X: 0, Z: 2}, {X: 2, Y: 1, Z: 2}},
	}
	classify := func(c math.Vec2) course.TerrainCode {
		if c.X+c.Y < 2 {
			return course.Green
		}
		return course.Bunker
	}
	topo := topology.GridToTopology(grid, 2, 2, 1, classify)
	mesh := BuildRenderMesh(topo)

	require.Len(t, mesh.Vertices, 6)
	require.Equal(t, []uint32{0, 1, 2, 3, 4, 5}, mesh.Indices)
	assert.Equal(t, [3]float32{0, 0, 0}, mesh.Bounds.Min)
	assert.Equal(t, [3]float32{2, 1, 2}, mesh.Bounds.Max)

	ids := topo.TriangleIDs()
	for i, v := range mesh.Vertices {
		assert.Equal(t, uint32(ids[i/3]), v.FaceID)
		assert.Greater(t, v.Normal[1], float32(0), "normal points up")
		assert.InDelta(t, float64(v.Position[0])/2, float64(v.TexCoord[0]), 1e-6)
		assert.InDelta(t, float64(v.Position[2])/2, float64(v.TexCoord[1]), 1e-6)
	}
	assert.Equal(t, float32(course.Green), mesh.Vertices[0].TerrainCode)
	assert.Equal(t, float32(course.Bunker), mesh.Vertices[3].TerrainCode)

	buf := mesh.Buffers()
	assert.Len(t, buf.Positions, 18)
	assert.Len(t, buf.Normals, 18)
	assert.Len(t, buf.UVs, 12)
	assert.Len(t, buf.TerrainCodes, 6)
	assert.Len(t, buf.FaceIDs, 6)
}

func TestBuildRenderMesh_FlatNormal(t *testing.T) {
	topo := topology.GridToTopology([][]math.Vec3{
		{{X: 0, Z: 0}, {X: 1, Z: 0}},
		{{X: 0, Z: 1}, {X: 1, Z: 1}},
	}, 1, 1, 1, nil)
	for _, v := range BuildRenderMesh(topo).Vertices {
		assert.InDeltaSlice(t, []float32{0, 1, 0}, v.Normal[:], 1e-6)
	}
}

func TestSmoothNormals(t *testing.T) {
	vertices := []Vertex{
		{Position: [3]float32{1, 0, 1}, Normal: [3]float32{1, 0, 0}},
		{Position: [3]float32{1, 0, 1}, Normal: [3]float32{0, 1, 0}},
		{Position: [3]float32{5, 0, 5}, Normal: [3]float32{0, 0, 1}},
	}
	SmoothNormals(vertices)

	assert.InDelta(t, 0.7071, vertices[0].Normal[0], 1e-3)
	assert.Equal(t, vertices[0].Normal, vertices[1].Normal)
	assert.Equal(t, [3]float32{0, 0, 1}, vertices[2].Normal)
}

func TestBuildRenderMesh_Empty(t *testing.T) {
	mesh := BuildRenderMesh(topology.New(10, 10))
	assert.Empty(t, mesh.Vertices)
	assert.Equal(t, Bounds{}, mesh.Bounds)
}
