package topology

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

// FlatVertex is the persisted form of a vertex.
type FlatVertex struct {
	ID VertexID `json:"id"`
	X  float64  `json:"x"`
	Y  float64  `json:"y"`
	Z  float64  `json:"z"`
}

// FlatTriangle is the persisted form of a triangle.
type FlatTriangle struct {
	ID          TriangleID         `json:"id"`
	Vertices    [3]VertexID        `json:"vertices"`
	TerrainCode course.TerrainCode `json:"terrainCode"`
}

// FlatTopology is the persisted form of a topology. Edges are not stored;
// they are re-derived on load.
type FlatTopology struct {
	WorldWidth  float64        `json:"worldWidth"`
	WorldHeight float64        `json:"worldHeight"`
	Vertices    []FlatVertex   `json:"vertices"`
	Triangles   []FlatTriangle `json:"triangles"`
}

// Serialize flattens t into lists ordered by id.
func Serialize(t *Topology) *FlatTopology {
	flat := &FlatTopology{
		WorldWidth:  t.WorldWidth,
		WorldHeight: t.WorldHeight,
		Vertices:    make([]FlatVertex, 0, len(t.vertices)),
		Triangles:   make([]FlatTriangle, 0, len(t.triangles)),
	}
	for _, id := range t.VertexIDs() {
		p := t.vertices[id].Position
		flat.Vertices = append(flat.Vertices, FlatVertex{ID: id, X: p.X, Y: p.Y, Z: p.Z})
	}
	for _, id := range t.TriangleIDs() {
		tri := t.triangles[id]
		flat.Triangles = append(flat.Triangles, FlatTriangle{ID: id, Vertices: tri.Vertices, TerrainCode: tri.TerrainCode})
	}
	return flat
}

// Deserialize rebuilds a topology from its flat form, keeping every id and
// deriving edges. Duplicate ids, references to missing vertices, repeated
// vertices and unknown terrain codes fail with ErrCorruptTopology.
func Deserialize(flat *FlatTopology) (*Topology, error) {
	if flat == nil {
		return nil, fmt.Errorf("%w: no data", ErrCorruptTopology)
	}
	t := New(flat.WorldWidth, flat.WorldHeight)
	for _, v := range flat.Vertices {
		if _, dup := t.vertices[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate vertex id %d", ErrCorruptTopology, v.ID)
		}
		t.vertices[v.ID] = &Vertex{ID: v.ID, Position: math.Vec3{X: v.X, Y: v.Y, Z: v.Z}}
		t.ids.nextVertex = max(t.ids.nextVertex, v.ID+1)
	}
	for _, ft := range flat.Triangles {
		if _, dup := t.triangles[ft.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate triangle id %d", ErrCorruptTopology, ft.ID)
		}
		if !ft.TerrainCode.Valid() {
			return nil, fmt.Errorf("%w: triangle %d has terrain code %d", ErrCorruptTopology, ft.ID, ft.TerrainCode)
		}
		a, b, c := ft.Vertices[0], ft.Vertices[1], ft.Vertices[2]
		if a == b || b == c || a == c {
			return nil, fmt.Errorf("%w: triangle %d repeats a vertex", ErrCorruptTopology, ft.ID)
		}
		for _, v := range ft.Vertices {
			if _, ok := t.vertices[v]; !ok {
				return nil, fmt.Errorf("%w: triangle %d references missing vertex %d", ErrCorruptTopology, ft.ID, v)
			}
		}
		t.triangles[ft.ID] = &Triangle{ID: ft.ID, Vertices: ft.Vertices, TerrainCode: ft.TerrainCode}
		t.ids.nextTriangle = max(t.ids.nextTriangle, ft.ID+1)
	}
	t.rederiveEdges()
	return t, nil
}

// Marshal encodes t as JSON.
func Marshal(t *Topology) ([]byte, error) {
	return json.Marshal(Serialize(t))
}

// Unmarshal decodes a topology from JSON.
func Unmarshal(data []byte) (*Topology, error) {
	var flat FlatTopology
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptTopology, err)
	}
	return Deserialize(&flat)
}

// SaveFile writes t as JSON to path.
func SaveFile(path string, t *Topology) error {
	data, err := json.MarshalIndent(Serialize(t), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding topology: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing topology: %w", err)
	}
	return nil
}

// LoadFile reads a topology written by SaveFile.
func LoadFile(path string) (*Topology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology: %w", err)
	}
	return Unmarshal(data)
}
