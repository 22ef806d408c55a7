package topology

import (
	"slices"

	"github.com/Faultbox/courseforge/pkg/math"
)

// SubdivideResult describes a successful SubdivideEdge.
type SubdivideResult struct {
	// Vertex is the inserted vertex.
	Vertex VertexID
	// Modified holds the original triangles, which keep their ids.
	Modified []TriangleID
	// Created holds one new triangle per original triangle.
	Created []TriangleID
}

// CollapseResult describes a successful CollapseEdge.
type CollapseResult struct {
	// Vertex is the surviving endpoint, moved to the collapse position.
	Vertex VertexID
	// RemovedVertex is the endpoint merged into Vertex.
	RemovedVertex VertexID
	// RemovedTriangles are the triangles that bordered the edge.
	RemovedTriangles []TriangleID
}

// FlipResult describes a successful FlipEdge.
type FlipResult struct {
	// Edge is the new diagonal.
	Edge EdgeID
	// Triangles are the two rewritten triangles; ids and terrain codes are kept.
	Triangles [2]TriangleID
}

// SubdivideEdge inserts a vertex at parameter t along the edge (0 < t < 1,
// measured from V1) and splits every adjacent triangle in two. Elevation is
// interpolated linearly.
func (t *Topology) SubdivideEdge(id EdgeID, at float64) (SubdivideResult, bool) {
	e, ok := t.edges[id]
	if !ok || !(at > 0 && at < 1) {
		return SubdivideResult{}, false
	}
	v1, v2 := e.V1, e.V2
	adjacent := slices.Clone(e.Triangles)
	slices.Sort(adjacent)

	p1, p2 := t.vertices[v1].Position, t.vertices[v2].Position
	mid := p1.Lerp(p2, at)

	type split struct {
		a, b, o VertexID
	}
	plan := make([]split, 0, len(adjacent))
	for _, triID := range adjacent {
		a, b, o, ok := rotateToEdge(t.triangles[triID].Vertices, v1, v2)
		if !ok {
			return SubdivideResult{}, false
		}
		pa, pb, po := t.vertices[a].Position.XZ(), t.vertices[b].Position.XZ(), t.vertices[o].Position.XZ()
		m := mid.XZ()
		if isDegenerate(math.Orient2D(pa, m, po), pa, m, po) || isDegenerate(math.Orient2D(m, pb, po), m, pb, po) {
			return SubdivideResult{}, false
		}
		plan = append(plan, split{a, b, o})
	}

	m := t.AddVertex(mid)
	res := SubdivideResult{Vertex: m}
	for i, triID := range adjacent {
		s := plan[i]
		old := t.unlinkTriangle(triID)
		t.linkTriangle(&Triangle{ID: triID, Vertices: [3]VertexID{s.a, m, s.o}, TerrainCode: old.TerrainCode})
		created := t.ids.triangle()
		t.linkTriangle(&Triangle{ID: created, Vertices: [3]VertexID{m, s.b, s.o}, TerrainCode: old.TerrainCode})
		res.Modified = append(res.Modified, triID)
		res.Created = append(res.Created, created)
	}
	t.commit()
	return res, true
}

// CollapseEdge merges the edge's endpoints into V1 and removes the triangles
// that bordered the edge. The merged vertex sits at the midpoint, or on the
// endpoint that pins the outline: the boundary endpoint of an edge leaving
// the boundary, or the corner endpoint of a boundary edge.
//
// The collapse is refused when the endpoints share neighbours other than the
// opposite vertices of the edge, when an interior edge joins two boundary
// vertices, when a boundary edge joins two corners, when any remaining triangle would flip or degenerate, when an
// opposite vertex would be left without triangles, or when no triangle
// would remain.
func (t *Topology) CollapseEdge(id EdgeID) (CollapseResult, bool) {
	e, ok := t.edges[id]
	if !ok {
		return CollapseResult{}, false
	}
	keep, drop := e.V1, e.V2
	removed := slices.Clone(e.Triangles)
	slices.Sort(removed)
	if len(t.triangles) <= len(removed) {
		return CollapseResult{}, false
	}

	opposite := make(map[VertexID]struct{}, 2)
	for _, triID := range removed {
		_, _, o, _ := rotateToEdge(t.triangles[triID].Vertices, keep, drop)
		opposite[o] = struct{}{}
		if len(t.vertexTris[o]) <= 1 {
			return CollapseResult{}, false
		}
	}

	nKeep, nDrop := t.neighbors(keep), t.neighbors(drop)
	for n := range nKeep {
		if n == drop {
			continue
		}
		if _, shared := nDrop[n]; !shared {
			continue
		}
		if _, opp := opposite[n]; !opp {
			return CollapseResult{}, false
		}
	}

	keepBoundary, dropBoundary := t.IsBoundaryVertex(keep), t.IsBoundaryVertex(drop)
	pKeep, pDrop := t.vertices[keep].Position, t.vertices[drop].Position
	var pos math.Vec3
	switch {
	case keepBoundary && dropBoundary && !e.IsBoundary():
		return CollapseResult{}, false
	case keepBoundary && !dropBoundary:
		pos = pKeep
	case dropBoundary && !keepBoundary:
		pos = pDrop
	case keepBoundary && dropBoundary:
		keepCorner, dropCorner := t.isCornerVertex(keep), t.isCornerVertex(drop)
		switch {
		case keepCorner && dropCorner:
			return CollapseResult{}, false
		case keepCorner:
			pos = pKeep
		case dropCorner:
			pos = pDrop
		default:
			pos = pKeep.Lerp(pDrop, 0.5)
		}
	default:
		pos = pKeep.Lerp(pDrop, 0.5)
	}

	isRemoved := func(id TriangleID) bool {
		_, found := slices.BinarySearch(removed, id)
		return found
	}
	var moved []TriangleID
	for _, v := range []VertexID{keep, drop} {
		for triID := range t.vertexTris[v] {
			if isRemoved(triID) {
				continue
			}
			tri := t.triangles[triID]
			var before, after [3]math.Vec2
			for i, vid := range tri.Vertices {
				p := t.vertices[vid].Position
				before[i] = p.XZ()
				if vid == keep || vid == drop {
					p = pos
				}
				after[i] = p.XZ()
			}
			if !sameOrientation(before, after) {
				return CollapseResult{}, false
			}
			if v == drop {
				moved = append(moved, triID)
			}
		}
	}
	slices.Sort(moved)

	for _, triID := range removed {
		t.unlinkTriangle(triID)
	}
	for _, triID := range moved {
		tri := t.unlinkTriangle(triID)
		for i, vid := range tri.Vertices {
			if vid == drop {
				tri.Vertices[i] = keep
			}
		}
		t.linkTriangle(tri)
	}
	t.vertices[keep].Position = pos
	t.removeVertex(drop)
	t.commit()

	return CollapseResult{Vertex: keep, RemovedVertex: drop, RemovedTriangles: removed}, true
}

// FlipEdge replaces the diagonal of the quad formed by the edge's two
// triangles with the other diagonal. It is refused for boundary edges,
// inconsistent winding, an already existing opposite diagonal, or a
// non-convex quad.
func (t *Topology) FlipEdge(id EdgeID) (FlipResult, bool) {
	e, ok := t.edges[id]
	if !ok || len(e.Triangles) != 2 {
		return FlipResult{}, false
	}
	t1, t2 := t.triangles[e.Triangles[0]], t.triangles[e.Triangles[1]]

	a, b, c, ok1 := rotateToEdge(t1.Vertices, e.V1, e.V2)
	b2, a2, d, ok2 := rotateToEdge(t2.Vertices, e.V1, e.V2)
	if !ok1 || !ok2 || a2 != a || b2 != b || c == d {
		return FlipResult{}, false
	}
	if _, exists := t.edgeByKey[keyOf(c, d)]; exists {
		return FlipResult{}, false
	}

	pa, pb := t.vertices[a].Position.XZ(), t.vertices[b].Position.XZ()
	pc, pd := t.vertices[c].Position.XZ(), t.vertices[d].Position.XZ()
	before := [3]math.Vec2{pa, pb, pc}
	if !sameOrientation(before, [3]math.Vec2{pa, pd, pc}) || !sameOrientation(before, [3]math.Vec2{pd, pb, pc}) {
		return FlipResult{}, false
	}

	id1, id2 := t1.ID, t2.ID
	code1, code2 := t1.TerrainCode, t2.TerrainCode
	t.unlinkTriangle(id1)
	t.unlinkTriangle(id2)
	t.linkTriangle(&Triangle{ID: id1, Vertices: [3]VertexID{a, d, c}, TerrainCode: code1})
	t.linkTriangle(&Triangle{ID: id2, Vertices: [3]VertexID{d, b, c}, TerrainCode: code2})
	t.commit()

	return FlipResult{Edge: t.edgeByKey[keyOf(c, d)], Triangles: [2]TriangleID{id1, id2}}, true
}
