package course

import (
	"errors"
	"fmt"
	gomath "math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/courseforge/pkg/math"
)

// ErrNoRegions is returned when a course file defines no usable regions.
var ErrNoRegions = errors.New("course defines no regions")

// ElevationFunc returns the elevation of a point inside a region.
type ElevationFunc func(x, z float64) float64

// Region is a polygonal terrain area. Boundary points are (x, z) pairs.
// When regions overlap, the one later in the list wins.
type Region struct {
	TerrainCode TerrainCode
	Boundary    orb.Ring
	// Elevation, when set, takes precedence over ElevationFn.
	Elevation   *float64
	ElevationFn ElevationFunc
}

// Contains reports whether (x, z) lies inside the region boundary.
func (r *Region) Contains(x, z float64) bool {
	if len(r.Boundary) < 3 {
		return false
	}
	if !r.Boundary.Bound().Contains(orb.Point{x, z}) {
		return false
	}
	return math.PointInPolygon(x, z, r.Boundary)
}

// ElevationAt returns the region's elevation at (x, z) and whether the region
// defines one at all. It does not test containment.
func (r *Region) ElevationAt(x, z float64) (float64, bool) {
	if r.Elevation != nil {
		return *r.Elevation, true
	}
	if r.ElevationFn != nil {
		return r.ElevationFn(x, z), true
	}
	return 0, false
}

// Circle returns an open ring (first point not repeated) approximating a circle.
func Circle(cx, cz, radius float64, segments int) orb.Ring {
	if segments < 3 {
		segments = 3
	}
	ring := make(orb.Ring, segments)
	for i := range segments {
		a := 2 * gomath.Pi * float64(i) / float64(segments)
		ring[i] = orb.Point{cx + radius*gomath.Cos(a), cz + radius*gomath.Sin(a)}
	}
	return ring
}

// Course is a complete region-based course description.
type Course struct {
	WorldWidth  float64
	WorldHeight float64
	// Background is Rough unless the course file names one, in which case
	// HasBackground is set.
	Background    TerrainCode
	HasBackground bool
	Regions       []Region
}

// courseFile is the YAML form of a Course.
type courseFile struct {
	World struct {
		Width  float64 `yaml:"width"`
		Height float64 `yaml:"height"`
	} `yaml:"world"`
	Background string       `yaml:"background"`
	Regions    []regionFile `yaml:"regions"`
}

type regionFile struct {
	Terrain   string       `yaml:"terrain"`
	Elevation *float64     `yaml:"elevation,omitempty"`
	Boundary  [][2]float64 `yaml:"boundary,omitempty"`
	Circle    *struct {
		X        float64 `yaml:"x"`
		Z        float64 `yaml:"z"`
		Radius   float64 `yaml:"radius"`
		Segments int     `yaml:"segments"`
	} `yaml:"circle,omitempty"`
}

// ParseCourseYAML parses a YAML course description.
func ParseCourseYAML(data []byte) (*Course, error) {
	var f courseFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding course yaml: %w", err)
	}

	c := &Course{
		WorldWidth:  f.World.Width,
		WorldHeight: f.World.Height,
		Background:  Rough,
	}
	if f.Background != "" {
		bg, err := ParseTerrainCode(f.Background)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		c.Background = bg
		c.HasBackground = true
	}

	for i, rf := range f.Regions {
		code, err := ParseTerrainCode(rf.Terrain)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i, err)
		}
		r := Region{TerrainCode: code, Elevation: rf.Elevation}
		switch {
		case rf.Circle != nil:
			segs := rf.Circle.Segments
			if segs == 0 {
				segs = 32
			}
			r.Boundary = Circle(rf.Circle.X, rf.Circle.Z, rf.Circle.Radius, segs)
		default:
			for _, p := range rf.Boundary {
				r.Boundary = append(r.Boundary, orb.Point{p[0], p[1]})
			}
		}
		if len(r.Boundary) < 3 {
			return nil, fmt.Errorf("region %d: boundary needs at least 3 points", i)
		}
		c.Regions = append(c.Regions, r)
	}

	if len(c.Regions) == 0 {
		return nil, ErrNoRegions
	}
	c.fitWorld()
	return c, nil
}

// ParseCourseGeoJSON reads regions from a GeoJSON FeatureCollection. Each
// Polygon or MultiPolygon feature becomes one region per outer ring; the
// "terrain" property names the terrain and an optional numeric "elevation"
// property fixes its height. Feature order is region order.
func ParseCourseGeoJSON(data []byte) (*Course, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding geojson: %w", err)
	}

	c := &Course{Background: Rough}
	for i, f := range fc.Features {
		code, err := ParseTerrainCode(f.Properties.MustString("terrain", ""))
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		var elevation *float64
		if _, ok := f.Properties["elevation"]; ok {
			e := f.Properties.MustFloat64("elevation", 0)
			elevation = &e
		}

		var rings []orb.Ring
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			if len(g) > 0 {
				rings = append(rings, g[0])
			}
		case orb.MultiPolygon:
			for _, p := range g {
				if len(p) > 0 {
					rings = append(rings, p[0])
				}
			}
		default:
			continue
		}

		for _, ring := range rings {
			if len(ring) < 3 {
				continue
			}
			c.Regions = append(c.Regions, Region{
				TerrainCode: code,
				Boundary:    ring,
				Elevation:   elevation,
			})
		}
	}

	if len(c.Regions) == 0 {
		return nil, ErrNoRegions
	}
	c.fitWorld()
	return c, nil
}

// LoadCourseFile loads a course from a .yaml/.yml or .geojson/.json file.
func LoadCourseFile(path string) (*Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading course file: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".geojson", ".json":
		return ParseCourseGeoJSON(data)
	default:
		return ParseCourseYAML(data)
	}
}

// fitWorld grows unset world dimensions to cover every region.
func (c *Course) fitWorld() {
	if c.WorldWidth > 0 && c.WorldHeight > 0 {
		return
	}
	bound := c.Regions[0].Boundary.Bound()
	for _, r := range c.Regions[1:] {
		bound = bound.Union(r.Boundary.Bound())
	}
	if c.WorldWidth <= 0 {
		c.WorldWidth = gomath.Ceil(bound.Max[0])
	}
	if c.WorldHeight <= 0 {
		c.WorldHeight = gomath.Ceil(bound.Max[1])
	}
}
