package course

import (
	"github.com/Faultbox/courseforge/pkg/math"
)

// Layout is a legacy rectangular terrain grid. Rows are indexed by z and
// columns by x. Rows may be short or missing; absent cells read as the
// background terrain with zero elevation.
type Layout struct {
	Width      int
	Height     int
	Terrain    [][]TerrainCode
	Elevation  [][]float64
	Background TerrainCode
}

// NewLayout allocates a grid filled with the background terrain.
func NewLayout(width, height int, background TerrainCode) *Layout {
	l := &Layout{
		Width:      width,
		Height:     height,
		Terrain:    make([][]TerrainCode, height),
		Elevation:  make([][]float64, height),
		Background: background,
	}
	for z := range height {
		row := make([]TerrainCode, width)
		for x := range row {
			row[x] = background
		}
		l.Terrain[z] = row
		l.Elevation[z] = make([]float64, width)
	}
	return l
}

// At returns the terrain code of cell (x, z).
func (l *Layout) At(x, z int) TerrainCode {
	if z < 0 || z >= len(l.Terrain) || x < 0 || x >= len(l.Terrain[z]) {
		return l.Background
	}
	return l.Terrain[z][x]
}

// ElevationAt returns the elevation of cell (x, z).
func (l *Layout) ElevationAt(x, z int) float64 {
	if z < 0 || z >= len(l.Elevation) || x < 0 || x >= len(l.Elevation[z]) {
		return 0
	}
	return l.Elevation[z][x]
}

// Set assigns the terrain code of cell (x, z). Out of range cells are ignored.
func (l *Layout) Set(x, z int, code TerrainCode) {
	if z < 0 || z >= l.Height || x < 0 || x >= l.Width {
		return
	}
	for len(l.Terrain) <= z {
		l.Terrain = append(l.Terrain, nil)
	}
	for len(l.Terrain[z]) <= x {
		l.Terrain[z] = append(l.Terrain[z], l.Background)
	}
	l.Terrain[z][x] = code
}

// CellAt maps a world position to the cell containing it. Positions on the
// far edges map to the last row or column.
func (l *Layout) CellAt(worldX, worldZ, worldWidth, worldHeight float64) (x, z int) {
	x = int(worldX / worldWidth * float64(l.Width))
	z = int(worldZ / worldHeight * float64(l.Height))
	if x == l.Width && worldX <= worldWidth {
		x--
	}
	if z == l.Height && worldZ <= worldHeight {
		z--
	}
	return x, z
}

// CountByType returns the number of cells for each terrain code.
func (l *Layout) CountByType() map[TerrainCode]int {
	counts := make(map[TerrainCode]int)
	for z := range l.Height {
		for x := range l.Width {
			counts[l.At(x, z)]++
		}
	}
	return counts
}

// VertexGrid returns cell-corner positions for a world of the given size,
// indexed [z][x] with (Height+1) rows of (Width+1) vertices. Each corner takes
// the mean elevation of the cells touching it.
func (l *Layout) VertexGrid(worldWidth, worldHeight float64) [][]math.Vec3 {
	grid := make([][]math.Vec3, l.Height+1)
	for j := range l.Height + 1 {
		row := make([]math.Vec3, l.Width+1)
		for i := range l.Width + 1 {
			var sum float64
			var n int
			for _, c := range [4][2]int{{i - 1, j - 1}, {i, j - 1}, {i - 1, j}, {i, j}} {
				if c[0] < 0 || c[1] < 0 || c[0] >= l.Width || c[1] >= l.Height {
					continue
				}
				sum += l.ElevationAt(c[0], c[1])
				n++
			}
			var y float64
			if n > 0 {
				y = sum / float64(n)
			}
			row[i] = math.Vec3{
				X: float64(i) * worldWidth / float64(l.Width),
				Y: y,
				Z: float64(j) * worldHeight / float64(l.Height),
			}
		}
		grid[j] = row
	}
	return grid
}
