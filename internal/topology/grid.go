package topology

import (
	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

// Classifier assigns a terrain code to a triangle from its ground-plane centroid.
type Classifier func(centroid math.Vec2) course.TerrainCode

// GridToTopology builds a regular triangulation from a row-major grid of
// vertex positions (grid[row][col], rows along z). meshResolution is the
// sampling stride in grid steps; the last row and column are always kept so
// the mesh spans the whole grid. Each quad is split along the same diagonal.
// A nil classifier marks every triangle as rough.
func GridToTopology(grid [][]math.Vec3, worldWidth, worldHeight float64, meshResolution int, classify Classifier) *Topology {
	t := New(worldWidth, worldHeight)
	if classify == nil {
		classify = func(math.Vec2) course.TerrainCode { return course.Rough }
	}
	if len(grid) < 2 {
		return t
	}
	cols := len(grid[0])
	for _, row := range grid {
		cols = min(cols, len(row))
	}
	if cols < 2 {
		return t
	}

	rowIdx := strideIndices(len(grid), meshResolution)
	colIdx := strideIndices(cols, meshResolution)

	ids := make([][]VertexID, len(rowIdx))
	for j, r := range rowIdx {
		ids[j] = make([]VertexID, len(colIdx))
		for i, c := range colIdx {
			ids[j][i] = t.AddVertex(grid[r][c])
		}
	}

	for j := 0; j+1 < len(rowIdx); j++ {
		for i := 0; i+1 < len(colIdx); i++ {
			v00, v10 := ids[j][i], ids[j][i+1]
			v01, v11 := ids[j+1][i], ids[j+1][i+1]
			t.addGridTriangle(v00, v10, v01, classify)
			t.addGridTriangle(v10, v11, v01, classify)
		}
	}
	t.rederiveEdges()
	return t
}

// addGridTriangle inserts a triangle without edge bookkeeping; the grid
// builder derives all edges once at the end.
func (t *Topology) addGridTriangle(a, b, c VertexID, classify Classifier) {
	pa := t.vertices[a].Position.XZ()
	pb := t.vertices[b].Position.XZ()
	pc := t.vertices[c].Position.XZ()
	o := math.Orient2D(pa, pb, pc)
	if isDegenerate(o, pa, pb, pc) {
		return
	}
	if o < 0 {
		b, c = c, b
	}
	id := t.ids.triangle()
	t.triangles[id] = &Triangle{
		ID:          id,
		Vertices:    [3]VertexID{a, b, c},
		TerrainCode: classify(math.Centroid(pa, pb, pc)),
	}
}

// strideIndices returns 0, s, 2s, ... and always n-1.
func strideIndices(n, stride int) []int {
	stride = max(stride, 1)
	out := make([]int, 0, n/stride+2)
	for i := 0; i < n-1; i += stride {
		out = append(out, i)
	}
	return append(out, n-1)
}

// LayoutClassifier classifies triangles by the layout cell under their
// centroid.
func LayoutClassifier(l *course.Layout, worldWidth, worldHeight float64) Classifier {
	return func(c math.Vec2) course.TerrainCode {
		x, z := l.CellAt(c.X, c.Y, worldWidth, worldHeight)
		return l.At(x, z)
	}
}
