// Package topology implements the editable terrain mesh: id-indexed vertex,
// edge and triangle registries, their construction, structural edits and
// persistence.
//
// Triangles are authoritative. Edges are always derived from triangle vertex
// pairs; an edge keeps its id for as long as its vertex pair stays connected.
// Every triangle produced by this package has positive orientation on the
// ground plane (see math.Orient2D).
package topology

import (
	"slices"

	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

// VertexID identifies a vertex. Ids are never reused within a Topology.
type VertexID int

// EdgeID identifies an edge.
type EdgeID int

// TriangleID identifies a triangle. External simulation state is keyed by it.
type TriangleID int

// Vertex is a mesh vertex. Position.Y is elevation.
type Vertex struct {
	ID       VertexID
	Position math.Vec3
}

// Edge connects V1 and V2 and borders one (boundary) or two triangles.
type Edge struct {
	ID        EdgeID
	V1, V2    VertexID
	Triangles []TriangleID
}

// IsBoundary reports whether the edge borders a single triangle.
func (e Edge) IsBoundary() bool {
	return len(e.Triangles) == 1
}

// Triangle is a mesh face with a fixed vertex winding.
type Triangle struct {
	ID          TriangleID
	Vertices    [3]VertexID
	TerrainCode course.TerrainCode
}

// Counts summarizes registry sizes.
type Counts struct {
	Vertices  int
	Edges     int
	Triangles int
}

// edgeKey is an unordered vertex pair with Lo < Hi.
type edgeKey struct {
	Lo, Hi VertexID
}

func keyOf(a, b VertexID) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// idAllocator hands out monotonically increasing ids.
type idAllocator struct {
	nextVertex   VertexID
	nextEdge     EdgeID
	nextTriangle TriangleID
}

func newIDAllocator() idAllocator {
	return idAllocator{nextVertex: 1, nextEdge: 1, nextTriangle: 1}
}

func (a *idAllocator) vertex() VertexID {
	id := a.nextVertex
	a.nextVertex++
	return id
}

func (a *idAllocator) edge() EdgeID {
	id := a.nextEdge
	a.nextEdge++
	return id
}

func (a *idAllocator) triangle() TriangleID {
	id := a.nextTriangle
	a.nextTriangle++
	return id
}

// Topology is the terrain mesh graph. It is not safe for concurrent use.
type Topology struct {
	WorldWidth  float64
	WorldHeight float64

	vertices  map[VertexID]*Vertex
	edges     map[EdgeID]*Edge
	triangles map[TriangleID]*Triangle

	edgeByKey  map[edgeKey]EdgeID
	vertexTris map[VertexID]map[TriangleID]struct{}

	// edge keys touched since the last commit
	dirty map[edgeKey]struct{}

	ids idAllocator
}

// New returns an empty topology covering a world of the given size.
func New(worldWidth, worldHeight float64) *Topology {
	return &Topology{
		WorldWidth:  worldWidth,
		WorldHeight: worldHeight,
		vertices:    make(map[VertexID]*Vertex),
		edges:       make(map[EdgeID]*Edge),
		triangles:   make(map[TriangleID]*Triangle),
		edgeByKey:   make(map[edgeKey]EdgeID),
		vertexTris:  make(map[VertexID]map[TriangleID]struct{}),
		dirty:       make(map[edgeKey]struct{}),
		ids:         newIDAllocator(),
	}
}

// Counts returns the number of vertices, edges and triangles.
func (t *Topology) Counts() Counts {
	return Counts{
		Vertices:  len(t.vertices),
		Edges:     len(t.edges),
		Triangles: len(t.triangles),
	}
}

// Vertex returns a copy of the vertex with the given id.
func (t *Topology) Vertex(id VertexID) (Vertex, bool) {
	v, ok := t.vertices[id]
	if !ok {
		return Vertex{}, false
	}
	return *v, true
}

// Edge returns a copy of the edge with the given id.
func (t *Topology) Edge(id EdgeID) (Edge, bool) {
	e, ok := t.edges[id]
	if !ok {
		return Edge{}, false
	}
	out := *e
	out.Triangles = slices.Clone(e.Triangles)
	return out, true
}

// EdgeBetween returns the id of the edge joining a and b.
func (t *Topology) EdgeBetween(a, b VertexID) (EdgeID, bool) {
	id, ok := t.edgeByKey[keyOf(a, b)]
	return id, ok
}

// Triangle returns a copy of the triangle with the given id.
func (t *Topology) Triangle(id TriangleID) (Triangle, bool) {
	tri, ok := t.triangles[id]
	if !ok {
		return Triangle{}, false
	}
	return *tri, true
}

// TrianglePositions returns the corner positions of a triangle in winding order.
func (t *Topology) TrianglePositions(id TriangleID) (a, b, c math.Vec3, ok bool) {
	tri, found := t.triangles[id]
	if !found {
		return a, b, c, false
	}
	va, okA := t.vertices[tri.Vertices[0]]
	vb, okB := t.vertices[tri.Vertices[1]]
	vc, okC := t.vertices[tri.Vertices[2]]
	if !okA || !okB || !okC {
		return a, b, c, false
	}
	return va.Position, vb.Position, vc.Position, true
}

// VertexIDs returns all vertex ids in ascending order.
func (t *Topology) VertexIDs() []VertexID {
	return sortedKeys(t.vertices)
}

// EdgeIDs returns all edge ids in ascending order.
func (t *Topology) EdgeIDs() []EdgeID {
	return sortedKeys(t.edges)
}

// TriangleIDs returns all triangle ids in ascending order.
func (t *Topology) TriangleIDs() []TriangleID {
	return sortedKeys(t.triangles)
}

// TrianglesAroundVertex returns the ids of triangles using v, ascending.
func (t *Topology) TrianglesAroundVertex(v VertexID) []TriangleID {
	return sortedKeys(t.vertexTris[v])
}

// EdgesAroundVertex returns the ids of edges incident to v, ascending.
func (t *Topology) EdgesAroundVertex(v VertexID) []EdgeID {
	seen := make(map[EdgeID]struct{})
	for triID := range t.vertexTris[v] {
		for _, n := range t.triangles[triID].Vertices {
			if n == v {
				continue
			}
			if id, ok := t.edgeByKey[keyOf(v, n)]; ok {
				seen[id] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// SetTerrainCode reclassifies a triangle. Geometry is untouched.
func (t *Topology) SetTerrainCode(id TriangleID, code course.TerrainCode) bool {
	tri, ok := t.triangles[id]
	if !ok || !code.Valid() {
		return false
	}
	tri.TerrainCode = code
	return true
}

// SetVertexPosition moves a vertex. The move is refused when it would
// collapse or invert any incident triangle on the ground plane.
func (t *Topology) SetVertexPosition(id VertexID, pos math.Vec3) bool {
	v, ok := t.vertices[id]
	if !ok {
		return false
	}
	for triID := range t.vertexTris[id] {
		tri := t.triangles[triID]
		var before, after [3]math.Vec2
		for i, vid := range tri.Vertices {
			p := t.vertices[vid].Position
			before[i] = p.XZ()
			if vid == id {
				p = pos
			}
			after[i] = p.XZ()
		}
		if !sameOrientation(before, after) {
			return false
		}
	}
	v.Position = pos
	return true
}

// AddVertex inserts a free vertex and returns its id.
func (t *Topology) AddVertex(pos math.Vec3) VertexID {
	id := t.ids.vertex()
	t.vertices[id] = &Vertex{ID: id, Position: pos}
	return id
}

// AddTriangle inserts a triangle over existing vertices. It is refused when a
// vertex is missing or repeated, the triangle is degenerate, or an edge would
// border a third triangle. Clockwise input is reordered.
func (t *Topology) AddTriangle(a, b, c VertexID, code course.TerrainCode) (TriangleID, bool) {
	verts := [3]VertexID{a, b, c}
	if a == b || b == c || a == c {
		return 0, false
	}
	var pts [3]math.Vec2
	for i, v := range verts {
		vert, ok := t.vertices[v]
		if !ok {
			return 0, false
		}
		pts[i] = vert.Position.XZ()
	}
	o := math.Orient2D(pts[0], pts[1], pts[2])
	if isDegenerate(o, pts[0], pts[1], pts[2]) {
		return 0, false
	}
	if o < 0 {
		verts[1], verts[2] = verts[2], verts[1]
	}
	for i := range 3 {
		if id, ok := t.edgeByKey[keyOf(verts[i], verts[(i+1)%3])]; ok && len(t.edges[id].Triangles) >= 2 {
			return 0, false
		}
	}

	id := t.ids.triangle()
	t.linkTriangle(&Triangle{ID: id, Vertices: verts, TerrainCode: code})
	t.commit()
	return id, true
}

// neighbors returns the vertices sharing an edge with v.
func (t *Topology) neighbors(v VertexID) map[VertexID]struct{} {
	out := make(map[VertexID]struct{})
	for triID := range t.vertexTris[v] {
		for _, n := range t.triangles[triID].Vertices {
			if n != v {
				out[n] = struct{}{}
			}
		}
	}
	return out
}

// linkTriangle registers tri and its edges. The caller must commit.
func (t *Topology) linkTriangle(tri *Triangle) {
	t.triangles[tri.ID] = tri
	for i, v := range tri.Vertices {
		set, ok := t.vertexTris[v]
		if !ok {
			set = make(map[TriangleID]struct{})
			t.vertexTris[v] = set
		}
		set[tri.ID] = struct{}{}

		a, b := v, tri.Vertices[(i+1)%3]
		k := keyOf(a, b)
		id, ok := t.edgeByKey[k]
		if !ok {
			id = t.ids.edge()
			t.edgeByKey[k] = id
			t.edges[id] = &Edge{ID: id, V1: a, V2: b}
		}
		e := t.edges[id]
		e.Triangles = append(e.Triangles, tri.ID)
		t.dirty[k] = struct{}{}
	}
}

// unlinkTriangle removes a triangle from every registry and returns it.
// Edges left without triangles survive until commit so that a relinked pair
// keeps its id.
func (t *Topology) unlinkTriangle(id TriangleID) *Triangle {
	tri, ok := t.triangles[id]
	if !ok {
		return nil
	}
	delete(t.triangles, id)
	for i, v := range tri.Vertices {
		if set, ok := t.vertexTris[v]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(t.vertexTris, v)
			}
		}
		k := keyOf(v, tri.Vertices[(i+1)%3])
		if eid, ok := t.edgeByKey[k]; ok {
			e := t.edges[eid]
			e.Triangles = slices.DeleteFunc(e.Triangles, func(x TriangleID) bool { return x == id })
		}
		t.dirty[k] = struct{}{}
	}
	return tri
}

// commit drops edges that lost all their triangles during the current edit.
func (t *Topology) commit() {
	for k := range t.dirty {
		if id, ok := t.edgeByKey[k]; ok && len(t.edges[id].Triangles) == 0 {
			delete(t.edges, id)
			delete(t.edgeByKey, k)
		}
	}
	clear(t.dirty)
}

// removeVertex deletes a vertex that no triangle references anymore.
func (t *Topology) removeVertex(id VertexID) {
	delete(t.vertices, id)
	delete(t.vertexTris, id)
}

// rederiveEdges rebuilds edges and vertex incidence purely from the triangle
// list. Ids of vertex pairs that already had an edge are kept.
func (t *Topology) rederiveEdges() {
	oldByKey := t.edgeByKey
	t.edges = make(map[EdgeID]*Edge)
	t.edgeByKey = make(map[edgeKey]EdgeID)
	t.vertexTris = make(map[VertexID]map[TriangleID]struct{})

	for _, triID := range t.TriangleIDs() {
		tri := t.triangles[triID]
		for i, v := range tri.Vertices {
			set, ok := t.vertexTris[v]
			if !ok {
				set = make(map[TriangleID]struct{})
				t.vertexTris[v] = set
			}
			set[triID] = struct{}{}

			a, b := v, tri.Vertices[(i+1)%3]
			k := keyOf(a, b)
			id, ok := t.edgeByKey[k]
			if !ok {
				if old, had := oldByKey[k]; had {
					id = old
				} else {
					id = t.ids.edge()
				}
				t.edgeByKey[k] = id
				t.edges[id] = &Edge{ID: id, V1: a, V2: b}
			}
			e := t.edges[id]
			e.Triangles = append(e.Triangles, triID)
		}
	}
	clear(t.dirty)
}

// rotateToEdge returns the triangle's vertices rotated so that the first two
// are the endpoints of edge {u, v} in winding order. ok is false when the
// triangle does not contain the edge.
func rotateToEdge(verts [3]VertexID, u, v VertexID) (a, b, c VertexID, ok bool) {
	for i := range 3 {
		x, y := verts[i], verts[(i+1)%3]
		if (x == u && y == v) || (x == v && y == u) {
			return x, y, verts[(i+2)%3], true
		}
	}
	return 0, 0, 0, false
}

// degenerateTolerance scales the orientation threshold with the squared
// length of the longest side.
const degenerateTolerance = 1e-9

// sanitizeTolerance is looser than degenerateTolerance so that triangles
// accepted by edits are never dropped by Sanitize.
const sanitizeTolerance = 1e-10

func longestSideSq(a, b, c math.Vec2) float64 {
	ab := b.Sub(a)
	bc := c.Sub(b)
	ca := a.Sub(c)
	return max(ab.Dot(ab), bc.Dot(bc), ca.Dot(ca))
}

// isDegenerate reports whether orientation o of (a, b, c) is too small for
// the triangle's size.
func isDegenerate(o float64, a, b, c math.Vec2) bool {
	scale := longestSideSq(a, b, c)
	if scale == 0 {
		return true
	}
	if o < 0 {
		o = -o
	}
	return o <= degenerateTolerance*scale
}

// sameOrientation reports whether after keeps the sign of before's
// orientation without becoming degenerate.
func sameOrientation(before, after [3]math.Vec2) bool {
	ob := math.Orient2D(before[0], before[1], before[2])
	oa := math.Orient2D(after[0], after[1], after[2])
	if isDegenerate(oa, after[0], after[1], after[2]) {
		return false
	}
	return (ob > 0) == (oa > 0)
}

func sortedKeys[K ~int, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
