package topology

import (
	"slices"

	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

// DeleteResult describes a successful DeleteVertex.
type DeleteResult struct {
	Removed []TriangleID
	Created []TriangleID
}

// IsBoundaryVertex reports whether any edge incident to v borders a single
// triangle.
func (t *Topology) IsBoundaryVertex(v VertexID) bool {
	for triID := range t.vertexTris[v] {
		for _, n := range t.triangles[triID].Vertices {
			if n == v {
				continue
			}
			if id, ok := t.edgeByKey[keyOf(v, n)]; ok && len(t.edges[id].Triangles) == 1 {
				return true
			}
		}
	}
	return false
}

// isCornerVertex reports whether a boundary vertex bends the outline: its
// two boundary edges are not collinear, or it has more than two.
func (t *Topology) isCornerVertex(v VertexID) bool {
	var ends []VertexID
	for _, id := range t.EdgesAroundVertex(v) {
		e := t.edges[id]
		if !e.IsBoundary() {
			continue
		}
		if e.V1 == v {
			ends = append(ends, e.V2)
		} else {
			ends = append(ends, e.V1)
		}
	}
	if len(ends) != 2 {
		return len(ends) > 0
	}
	a, p, b := t.vertices[ends[0]].Position.XZ(), t.vertices[v].Position.XZ(), t.vertices[ends[1]].Position.XZ()
	return !isDegenerate(math.Orient2D(a, p, b), a, p, b)
}

// CanDeleteVertex reports whether DeleteVertex would succeed.
func (t *Topology) CanDeleteVertex(v VertexID) bool {
	_, ok := t.planDeletion(v)
	return ok
}

// DeleteVertex removes an interior vertex and re-triangulates the hole left
// by its incident triangles. Boundary vertices are never deleted. A vertex
// without triangles is simply dropped.
func (t *Topology) DeleteVertex(v VertexID) (DeleteResult, bool) {
	plan, ok := t.planDeletion(v)
	if !ok {
		return DeleteResult{}, false
	}
	res := DeleteResult{Removed: plan.removed}
	for _, triID := range plan.removed {
		t.unlinkTriangle(triID)
	}
	t.removeVertex(v)
	for i, verts := range plan.fill {
		id := t.ids.triangle()
		t.linkTriangle(&Triangle{ID: id, Vertices: verts, TerrainCode: plan.codes[i]})
		res.Created = append(res.Created, id)
	}
	t.commit()
	return res, true
}

type deletionPlan struct {
	removed []TriangleID
	fill    [][3]VertexID
	codes   []course.TerrainCode
}

func (t *Topology) planDeletion(v VertexID) (deletionPlan, bool) {
	if _, ok := t.vertices[v]; !ok {
		return deletionPlan{}, false
	}
	umbrella := t.TrianglesAroundVertex(v)
	if len(umbrella) == 0 {
		return deletionPlan{}, true
	}
	if len(umbrella) < 3 || t.IsBoundaryVertex(v) {
		return deletionPlan{}, false
	}

	// link ring in winding order: every umbrella triangle (v, x, y) maps x to y
	next := make(map[VertexID]VertexID, len(umbrella))
	for _, triID := range umbrella {
		tri := t.triangles[triID]
		i := slices.Index(tri.Vertices[:], v)
		x, y := tri.Vertices[(i+1)%3], tri.Vertices[(i+2)%3]
		if _, dup := next[x]; dup {
			return deletionPlan{}, false
		}
		next[x] = y
	}
	start := slices.Min(mapKeys(next))
	ring := []VertexID{start}
	for cur := next[start]; cur != start; cur = next[cur] {
		if _, ok := next[cur]; !ok || len(ring) >= len(umbrella) {
			return deletionPlan{}, false
		}
		ring = append(ring, cur)
	}
	if len(ring) != len(umbrella) {
		return deletionPlan{}, false
	}

	fill, ok := t.earClip(ring)
	if !ok {
		return deletionPlan{}, false
	}

	plan := deletionPlan{removed: umbrella, fill: fill}
	fallback := t.majorityCode(umbrella)
	for _, verts := range fill {
		c := math.Centroid(t.vertices[verts[0]].Position.XZ(), t.vertices[verts[1]].Position.XZ(), t.vertices[verts[2]].Position.XZ())
		code := fallback
		for _, triID := range umbrella {
			a, b, cc, _ := t.TrianglePositions(triID)
			if math.PointInTriangle(c, a.XZ(), b.XZ(), cc.XZ()) {
				code = t.triangles[triID].TerrainCode
				break
			}
		}
		plan.codes = append(plan.codes, code)
	}
	return plan, true
}

// earClip triangulates the polygon ring (counter-clockwise on the ground
// plane). Diagonals that already exist as mesh edges are not used.
func (t *Topology) earClip(ring []VertexID) ([][3]VertexID, bool) {
	pos := func(v VertexID) math.Vec2 { return t.vertices[v].Position.XZ() }
	poly := slices.Clone(ring)
	var out [][3]VertexID

	for len(poly) > 3 {
		n := len(poly)
		clipped := false
		for i := range n {
			p, c, nx := poly[(i+n-1)%n], poly[i], poly[(i+1)%n]
			pp, pc, pn := pos(p), pos(c), pos(nx)
			o := math.Orient2D(pp, pc, pn)
			if o <= 0 || isDegenerate(o, pp, pc, pn) {
				continue
			}
			if _, exists := t.edgeByKey[keyOf(p, nx)]; exists {
				continue
			}
			blocked := false
			for _, other := range poly {
				if other == p || other == c || other == nx {
					continue
				}
				if math.PointInTriangle(pos(other), pp, pc, pn) {
					blocked = true
					break
				}
			}
			if blocked {
				continue
			}
			out = append(out, [3]VertexID{p, c, nx})
			poly = slices.Delete(poly, i, i+1)
			clipped = true
			break
		}
		if !clipped {
			return nil, false
		}
	}

	pa, pb, pc := pos(poly[0]), pos(poly[1]), pos(poly[2])
	o := math.Orient2D(pa, pb, pc)
	if o <= 0 || isDegenerate(o, pa, pb, pc) {
		return nil, false
	}
	out = append(out, [3]VertexID{poly[0], poly[1], poly[2]})
	return out, true
}

func (t *Topology) majorityCode(ids []TriangleID) course.TerrainCode {
	var counts [course.NumTerrainCodes]int
	for _, id := range ids {
		if code := t.triangles[id].TerrainCode; code.Valid() {
			counts[code]++
		}
	}
	best := course.Rough
	for code, n := range counts {
		if n > counts[best] {
			best = course.TerrainCode(code)
		}
	}
	return best
}

func mapKeys[K comparable, V any](m map[K]V) []K {
	out := make([]K, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
