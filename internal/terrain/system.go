// Package terrain owns a course's terrain mesh and keeps every derived
// structure (spatial index, rasterized layout, SDF images) in step with it.
//
// Each edit runs one cycle: editor operation, sanitize, index rebuild,
// rasterization and SDF refresh. Derived data is always regenerated from the
// topology, never patched.
package terrain

import (
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/courseforge/internal/logger"
	"github.com/Faultbox/courseforge/internal/sdf"
	"github.com/Faultbox/courseforge/internal/spatial"
	"github.com/Faultbox/courseforge/internal/topology"
	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

// Options configures a System.
type Options struct {
	// CellSize is the spatial index bucket size in world units.
	CellSize float64
	// GridCellsPerUnit sets the density of the rasterized layout.
	GridCellsPerUnit float64
	// Background is used for layout cells not covered by any face.
	Background course.TerrainCode
	SDF        sdf.Options

	Logger *zap.Logger
}

// DefaultOptions returns options matching the default configuration.
func DefaultOptions() Options {
	return Options{
		CellSize:         spatial.DefaultCellSize,
		GridCellsPerUnit: 1,
		Background:       course.Rough,
		SDF: sdf.Options{
			Resolution:    sdf.DefaultResolution,
			MaxDistance:   sdf.DefaultMaxDistance,
			SplineSamples: sdf.DefaultSplineSamples,
		},
	}
}

// System is the single owner of a topology and its derived state. It is not
// safe for concurrent use; callers serialize edits.
type System struct {
	topo   *topology.Topology
	index  *spatial.Index
	layout *course.Layout
	field  *sdf.Field
	opts   Options
	log    *zap.Logger
}

// NewSystem takes ownership of topo and builds all derived state.
func NewSystem(topo *topology.Topology, opts Options) *System {
	if !(opts.GridCellsPerUnit > 0) {
		opts.GridCellsPerUnit = 1
	}
	log := opts.Logger
	if log == nil {
		log = logger.Named("terrain")
	}
	s := &System{topo: topo, opts: opts, log: log}

	start := time.Now()
	if report := topo.Sanitize(); report.Changed() {
		s.logRepairs("load", report)
	}
	s.index = spatial.New(topo, opts.CellSize)
	s.layout = s.RasterizeLayout()
	s.field = sdf.GenerateFromGrid(s.layout, topo.WorldWidth, topo.WorldHeight, opts.SDF)

	c := topo.Counts()
	s.log.Info("terrain ready",
		zap.Int("vertices", c.Vertices),
		zap.Int("edges", c.Edges),
		zap.Int("triangles", c.Triangles),
		zap.Int("sdfWidth", s.field.Width),
		zap.Int("sdfHeight", s.field.Height),
		zap.Duration("took", time.Since(start)))
	return s
}

// FromCourse triangulates a region course and wraps it in a System. A
// background named by the course wins over opts.Background.
func FromCourse(c *course.Course, boundarySpacing, fillSpacing float64, opts Options) *System {
	if c.HasBackground {
		opts.Background = c.Background
	} else {
		withBackground := *c
		withBackground.Background = opts.Background
		c = &withBackground
	}
	return NewSystem(topology.BuildFromCourse(c, boundarySpacing, fillSpacing), opts)
}

// FromLayout builds a grid mesh from a legacy layout. Elevations come from
// the layout and triangles are classified by the cell under their centroid.
// Layout files always carry a background, so it replaces opts.Background.
func FromLayout(l *course.Layout, worldWidth, worldHeight float64, meshResolution int, opts Options) *System {
	opts.Background = l.Background
	topo := topology.GridToTopology(
		l.VertexGrid(worldWidth, worldHeight),
		worldWidth, worldHeight, meshResolution,
		topology.LayoutClassifier(l, worldWidth, worldHeight),
	)
	return NewSystem(topo, opts)
}

// Topology exposes the owned topology for read access. Mutations must go
// through the System so derived state stays current.
func (s *System) Topology() *topology.Topology { return s.topo }

// Index returns the current spatial index.
func (s *System) Index() *spatial.Index { return s.index }

// Layout returns the cached rasterized layout.
func (s *System) Layout() *course.Layout { return s.layout }

// SDF returns the current distance field.
func (s *System) SDF() *sdf.Field { return s.field }

// SubdivideEdge splits an edge and refreshes derived state.
func (s *System) SubdivideEdge(id topology.EdgeID, t float64) (topology.SubdivideResult, bool) {
	start := time.Now()
	res, ok := s.topo.SubdivideEdge(id, t)
	if !ok {
		s.log.Debug("subdivide refused", zap.Int("edge", int(id)))
		return res, false
	}
	s.refresh("subdivide", true, start)
	return res, true
}

// CollapseEdge collapses an edge and refreshes derived state.
func (s *System) CollapseEdge(id topology.EdgeID) (topology.CollapseResult, bool) {
	start := time.Now()
	res, ok := s.topo.CollapseEdge(id)
	if !ok {
		s.log.Debug("collapse refused", zap.Int("edge", int(id)))
		return res, false
	}
	s.refresh("collapse", true, start)
	return res, true
}

// FlipEdge flips an edge and refreshes derived state.
func (s *System) FlipEdge(id topology.EdgeID) (topology.FlipResult, bool) {
	start := time.Now()
	res, ok := s.topo.FlipEdge(id)
	if !ok {
		s.log.Debug("flip refused", zap.Int("edge", int(id)))
		return res, false
	}
	s.refresh("flip", true, start)
	return res, true
}

// CanDeleteVertex reports whether DeleteVertex would succeed.
func (s *System) CanDeleteVertex(id topology.VertexID) bool {
	return s.topo.CanDeleteVertex(id)
}

// DeleteVertex removes a vertex and refreshes derived state.
func (s *System) DeleteVertex(id topology.VertexID) (topology.DeleteResult, bool) {
	start := time.Now()
	res, ok := s.topo.DeleteVertex(id)
	if !ok {
		s.log.Debug("delete refused", zap.Int("vertex", int(id)))
		return res, false
	}
	s.refresh("delete", true, start)
	return res, true
}

// SetVertexPosition moves a vertex. Ground-plane moves rebuild the index.
func (s *System) SetVertexPosition(id topology.VertexID, pos math.Vec3) bool {
	start := time.Now()
	before, ok := s.topo.Vertex(id)
	if !ok || !s.topo.SetVertexPosition(id, pos) {
		return false
	}
	moved := before.Position.X != pos.X || before.Position.Z != pos.Z
	s.refresh("move", moved, start)
	return true
}

// SetTerrainCode recolors one triangle.
func (s *System) SetTerrainCode(id topology.TriangleID, code course.TerrainCode) bool {
	start := time.Now()
	if !s.topo.SetTerrainCode(id, code) {
		return false
	}
	s.refresh("recolor", false, start)
	return true
}

// PaintBrush recolors every triangle whose centroid lies within radius of
// (x, z) and returns the ids touched.
func (s *System) PaintBrush(x, z, radius float64, code course.TerrainCode) []topology.TriangleID {
	if !code.Valid() {
		return nil
	}
	start := time.Now()
	ids := s.index.GetFacesInBrush(x, z, radius)
	for _, id := range ids {
		s.topo.SetTerrainCode(id, code)
	}
	if len(ids) > 0 {
		s.refresh("paint", false, start)
	}
	return ids
}

// FaceAt returns the triangle under (x, z).
func (s *System) FaceAt(x, z float64) (topology.TriangleID, bool) {
	return s.index.FindFaceAtPosition(x, z)
}

// TerrainAt returns the terrain code under (x, z).
func (s *System) TerrainAt(x, z float64) (course.TerrainCode, bool) {
	id, ok := s.index.FindFaceAtPosition(x, z)
	if !ok {
		return s.opts.Background, false
	}
	tri, _ := s.topo.Triangle(id)
	return tri.TerrainCode, true
}

// ElevationAt returns the interpolated surface height at (x, z).
func (s *System) ElevationAt(x, z float64) (float64, bool) {
	id, ok := s.index.FindFaceAtPosition(x, z)
	if !ok {
		return 0, false
	}
	return s.topo.InterpolateY(id, x, z)
}

// IsPlayable reports whether a ball can come to rest at (x, z).
func (s *System) IsPlayable(x, z float64) bool {
	code, ok := s.TerrainAt(x, z)
	return ok && code.IsPlayable()
}

// RasterizeLayout samples the mesh at every grid cell centre. Cells not
// covered by a face take the background code and zero elevation.
func (s *System) RasterizeLayout() *course.Layout {
	w := max(1, int(gomath.Ceil(s.topo.WorldWidth*s.opts.GridCellsPerUnit)))
	h := max(1, int(gomath.Ceil(s.topo.WorldHeight*s.opts.GridCellsPerUnit)))
	l := course.NewLayout(w, h, s.opts.Background)
	cellW := s.topo.WorldWidth / float64(w)
	cellH := s.topo.WorldHeight / float64(h)

	for z := range h {
		for x := range w {
			wx := (float64(x) + 0.5) * cellW
			wz := (float64(z) + 0.5) * cellH
			id, ok := s.index.FindFaceAtPosition(wx, wz)
			if !ok {
				continue
			}
			tri, _ := s.topo.Triangle(id)
			l.Set(x, z, tri.TerrainCode)
			if y, ok := s.topo.InterpolateY(id, wx, wz); ok {
				l.Elevation[z][x] = y
			}
		}
	}
	return l
}

// refresh runs the post-edit cycle. Structural edits also sanitize and
// rebuild the index.
func (s *System) refresh(op string, structural bool, start time.Time) {
	if structural {
		if report := s.topo.Sanitize(); report.Changed() {
			s.logRepairs(op, report)
		}
		s.index.Rebuild()
	}
	s.layout = s.RasterizeLayout()
	if err := s.field.UpdateFromGrid(s.layout); err != nil {
		s.log.Warn("sdf update failed, regenerating", zap.String("op", op), zap.Error(err))
		s.field = sdf.GenerateFromGrid(s.layout, s.topo.WorldWidth, s.topo.WorldHeight, s.opts.SDF)
	}

	c := s.topo.Counts()
	s.log.Debug("edit applied",
		zap.String("op", op),
		zap.Int("vertices", c.Vertices),
		zap.Int("triangles", c.Triangles),
		zap.Duration("took", time.Since(start)))
}

func (s *System) logRepairs(op string, report topology.SanitizeReport) {
	s.log.Warn("topology repaired",
		zap.String("op", op),
		zap.Int("removedTriangles", len(report.RemovedTriangles)),
		zap.Int("removedVertices", len(report.RemovedVertices)),
		zap.Bool("edgesRederived", report.EdgesRederived))
}
