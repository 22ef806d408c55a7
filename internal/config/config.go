// Package config handles courseforge configuration loading and management.
package config

import (
	"fmt"

	"github.com/Faultbox/courseforge/pkg/course"
)

// Config holds all courseforge settings.
type Config struct {
	Mesh    MeshConfig    `yaml:"mesh"`
	Spatial SpatialConfig `yaml:"spatial"`
	SDF     SDFConfig     `yaml:"sdf"`
	Logging LoggingConfig `yaml:"logging"`
}

// MeshConfig holds topology construction settings.
type MeshConfig struct {
	MeshResolution       int     `yaml:"mesh_resolution"`        // grid stride for legacy layouts
	BoundaryPointSpacing float64 `yaml:"boundary_point_spacing"` // world units between boundary samples
	FillPointSpacing     float64 `yaml:"fill_point_spacing"`     // world units between interior samples
	BackgroundTerrain    string  `yaml:"background_terrain"`
}

// SpatialConfig holds spatial index settings.
type SpatialConfig struct {
	CellSize float64 `yaml:"cell_size"`
}

// SDFConfig holds signed distance field settings.
type SDFConfig struct {
	Resolution    float64 `yaml:"resolution"`   // pixels per world unit
	MaxDistance   float64 `yaml:"max_distance"` // grid cells
	SplineSamples int     `yaml:"spline_samples"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Mesh: MeshConfig{
			MeshResolution:       1,
			BoundaryPointSpacing: 2.0,
			FillPointSpacing:     4.0,
			BackgroundTerrain:    "rough",
		},
		Spatial: SpatialConfig{
			CellSize: 1.0,
		},
		SDF: SDFConfig{
			Resolution:    4.0,
			MaxDistance:   8.0,
			SplineSamples: 1,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Background returns the parsed background terrain code.
func (c *Config) Background() (course.TerrainCode, error) {
	return course.ParseTerrainCode(c.Mesh.BackgroundTerrain)
}

// Validate checks values that would otherwise be silently replaced by
// defaults further down.
func (c *Config) Validate() error {
	if c.Mesh.MeshResolution < 1 {
		return fmt.Errorf("mesh.mesh_resolution must be >= 1, got %d", c.Mesh.MeshResolution)
	}
	if c.Mesh.BoundaryPointSpacing <= 0 {
		return fmt.Errorf("mesh.boundary_point_spacing must be positive, got %g", c.Mesh.BoundaryPointSpacing)
	}
	if c.Mesh.FillPointSpacing <= 0 {
		return fmt.Errorf("mesh.fill_point_spacing must be positive, got %g", c.Mesh.FillPointSpacing)
	}
	if _, err := c.Background(); err != nil {
		return fmt.Errorf("mesh.background_terrain: %w", err)
	}
	if c.Spatial.CellSize <= 0 {
		return fmt.Errorf("spatial.cell_size must be positive, got %g", c.Spatial.CellSize)
	}
	if c.SDF.Resolution <= 0 {
		return fmt.Errorf("sdf.resolution must be positive, got %g", c.SDF.Resolution)
	}
	if c.SDF.MaxDistance <= 0 {
		return fmt.Errorf("sdf.max_distance must be positive, got %g", c.SDF.MaxDistance)
	}
	if c.SDF.SplineSamples < 1 {
		return fmt.Errorf("sdf.spline_samples must be >= 1, got %d", c.SDF.SplineSamples)
	}
	return nil
}
