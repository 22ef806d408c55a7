package topology

import (
	"slices"

	"github.com/Faultbox/courseforge/pkg/math"
)

// SanitizeReport lists what Sanitize removed.
type SanitizeReport struct {
	RemovedTriangles []TriangleID
	RemovedVertices  []VertexID
	EdgesRederived   bool
}

// Changed reports whether Sanitize modified the topology.
func (r SanitizeReport) Changed() bool {
	return len(r.RemovedTriangles) > 0 || len(r.RemovedVertices) > 0 || r.EdgesRederived
}

// Sanitize repairs structural damage: triangles with missing or repeated
// vertices, near-zero area, duplicates of another triangle and the extra
// triangles on edges shared by more than two. Orphan vertices are dropped
// and edges are re-derived when they disagree with the triangles. It never
// adds elements and a second call is a no-op.
func (t *Topology) Sanitize() SanitizeReport {
	var report SanitizeReport
	drop := func(id TriangleID) {
		delete(t.triangles, id)
		report.RemovedTriangles = append(report.RemovedTriangles, id)
	}

	seen := make(map[[3]VertexID]TriangleID)
	for _, id := range t.TriangleIDs() {
		tri := t.triangles[id]
		if !t.wellFormed(tri) {
			drop(id)
			continue
		}
		sorted := tri.Vertices
		slices.Sort(sorted[:])
		if _, dup := seen[sorted]; dup {
			drop(id)
			continue
		}
		seen[sorted] = id
	}

	if len(report.RemovedTriangles) > 0 || !t.edgesConsistent() {
		t.rederiveEdges()
		report.EdgesRederived = true
	}

	// non-manifold edges keep their two oldest triangles
	var excess []TriangleID
	for _, eid := range t.EdgeIDs() {
		tris := slices.Clone(t.edges[eid].Triangles)
		if len(tris) <= 2 {
			continue
		}
		slices.Sort(tris)
		excess = append(excess, tris[2:]...)
	}
	if len(excess) > 0 {
		slices.Sort(excess)
		excess = slices.Compact(excess)
		for _, id := range excess {
			drop(id)
		}
		t.rederiveEdges()
		report.EdgesRederived = true
	}

	for _, id := range t.VertexIDs() {
		if len(t.vertexTris[id]) == 0 {
			t.removeVertex(id)
			report.RemovedVertices = append(report.RemovedVertices, id)
		}
	}
	slices.Sort(report.RemovedTriangles)
	return report
}

func (t *Topology) wellFormed(tri *Triangle) bool {
	var pts [3]math.Vec2
	for i, v := range tri.Vertices {
		vert, ok := t.vertices[v]
		if !ok {
			return false
		}
		pts[i] = vert.Position.XZ()
	}
	a, b, c := tri.Vertices[0], tri.Vertices[1], tri.Vertices[2]
	if a == b || b == c || a == c {
		return false
	}
	scale := longestSideSq(pts[0], pts[1], pts[2])
	o := math.Orient2D(pts[0], pts[1], pts[2])
	if o < 0 {
		o = -o
	}
	return scale > 0 && o > sanitizeTolerance*scale
}

// edgesConsistent compares the stored edges and incidence with what the
// triangles imply.
func (t *Topology) edgesConsistent() bool {
	want := make(map[edgeKey][]TriangleID)
	incidence := 0
	for id, tri := range t.triangles {
		for i, v := range tri.Vertices {
			k := keyOf(v, tri.Vertices[(i+1)%3])
			want[k] = append(want[k], id)
			if _, ok := t.vertexTris[v][id]; !ok {
				return false
			}
			incidence++
		}
	}
	have := 0
	for _, set := range t.vertexTris {
		have += len(set)
	}
	if have != incidence || len(want) != len(t.edges) || len(want) != len(t.edgeByKey) {
		return false
	}
	for k, tris := range want {
		id, ok := t.edgeByKey[k]
		if !ok {
			return false
		}
		e, ok := t.edges[id]
		if !ok || keyOf(e.V1, e.V2) != k || len(e.Triangles) != len(tris) {
			return false
		}
		got := slices.Clone(e.Triangles)
		slices.Sort(got)
		slices.Sort(tris)
		if !slices.Equal(got, tris) {
			return false
		}
	}
	return true
}
