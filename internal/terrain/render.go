package terrain

import (
	gomath "math"

	"github.com/Faultbox/courseforge/internal/topology"
	"github.com/Faultbox/courseforge/pkg/math"
)

// Vertex is one render vertex. Faces do not share vertices so that terrain
// code and face id stay per face.
type Vertex struct {
	Position    [3]float32
	Normal      [3]float32
	TexCoord    [2]float32
	TerrainCode float32
	FaceID      uint32
}

// Bounds holds the axis-aligned bounding box of the mesh.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh holds render data ready for upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Buffers is a Mesh split into flat attribute arrays.
type Buffers struct {
	Positions    []float32
	Normals      []float32
	UVs          []float32
	TerrainCodes []float32
	FaceIDs      []uint32
	Indices      []uint32
}

// RenderMesh builds render data for the current topology.
func (s *System) RenderMesh() *Mesh {
	return BuildRenderMesh(s.topo)
}

// BuildRenderMesh emits three vertices per triangle in topology winding
// order, ordered by triangle id. UVs map the world rectangle onto [0, 1].
// Normals point up and are smoothed across faces sharing a position.
func BuildRenderMesh(topo *topology.Topology) *Mesh {
	ids := topo.TriangleIDs()
	vertices := make([]Vertex, 0, len(ids)*3)
	indices := make([]uint32, 0, len(ids)*3)

	bounds := Bounds{
		Min: [3]float32{1e10, 1e10, 1e10},
		Max: [3]float32{-1e10, -1e10, -1e10},
	}
	if len(ids) == 0 {
		bounds = Bounds{}
	}

	uScale, vScale := 0.0, 0.0
	if topo.WorldWidth > 0 {
		uScale = 1 / topo.WorldWidth
	}
	if topo.WorldHeight > 0 {
		vScale = 1 / topo.WorldHeight
	}

	for _, id := range ids {
		a, b, c, ok := topo.TrianglePositions(id)
		if !ok {
			continue
		}
		tri, _ := topo.Triangle(id)
		normal := faceNormal(a, b, c)
		for _, p := range [3]math.Vec3{a, b, c} {
			pos := [3]float32{float32(p.X), float32(p.Y), float32(p.Z)}
			updateBounds(&bounds, pos)
			indices = append(indices, uint32(len(vertices)))
			vertices = append(vertices, Vertex{
				Position:    pos,
				Normal:      normal,
				TexCoord:    [2]float32{float32(p.X * uScale), float32(p.Z * vScale)},
				TerrainCode: float32(tri.TerrainCode),
				FaceID:      uint32(id),
			})
		}
	}

	SmoothNormals(vertices)

	return &Mesh{Vertices: vertices, Indices: indices, Bounds: bounds}
}

// Buffers flattens the mesh into per-attribute arrays.
func (m *Mesh) Buffers() Buffers {
	n := len(m.Vertices)
	b := Buffers{
		Positions:    make([]float32, 0, n*3),
		Normals:      make([]float32, 0, n*3),
		UVs:          make([]float32, 0, n*2),
		TerrainCodes: make([]float32, 0, n),
		FaceIDs:      make([]uint32, 0, n),
		Indices:      m.Indices,
	}
	for _, v := range m.Vertices {
		b.Positions = append(b.Positions, v.Position[:]...)
		b.Normals = append(b.Normals, v.Normal[:]...)
		b.UVs = append(b.UVs, v.TexCoord[:]...)
		b.TerrainCodes = append(b.TerrainCodes, v.TerrainCode)
		b.FaceIDs = append(b.FaceIDs, v.FaceID)
	}
	return b
}

// faceNormal returns the upward unit normal of a positively wound triangle.
func faceNormal(a, b, c math.Vec3) [3]float32 {
	n := c.Sub(a).Cross(b.Sub(a))
	return normalize([3]float32{float32(n.X), float32(n.Y), float32(n.Z)})
}

// SmoothNormals averages normals at shared vertex positions.
func SmoothNormals(vertices []Vertex) {
	const epsilon float32 = 0.001

	posMap := make(map[[3]int32][]int)
	for i := range vertices {
		key := [3]int32{
			int32(gomath.Round(float64(vertices[i].Position[0] / epsilon))),
			int32(gomath.Round(float64(vertices[i].Position[1] / epsilon))),
			int32(gomath.Round(float64(vertices[i].Position[2] / epsilon))),
		}
		posMap[key] = append(posMap[key], i)
	}

	for _, indices := range posMap {
		if len(indices) < 2 {
			continue
		}
		var sum [3]float32
		for _, idx := range indices {
			sum[0] += vertices[idx].Normal[0]
			sum[1] += vertices[idx].Normal[1]
			sum[2] += vertices[idx].Normal[2]
		}
		avg := normalize(sum)
		for _, idx := range indices {
			vertices[idx].Normal = avg
		}
	}
}

func updateBounds(b *Bounds, p [3]float32) {
	for i := range 3 {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

func normalize(v [3]float32) [3]float32 {
	l := float32(gomath.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
