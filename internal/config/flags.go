package config

import "github.com/spf13/pflag"

// flagValues holds CLI overrides. Zero values mean "not set".
type flagValues struct {
	config         string
	debug          bool
	logFile        string
	meshResolution int
	boundarySpace  float64
	fillSpace      float64
	background     string
	cellSize       float64
	sdfResolution  float64
	sdfMaxDistance float64
	splineSamples  int
}

var flags flagValues

// BindFlags registers the configuration flags on fs and resets any values
// bound earlier. Call it once with the root command's persistent flags.
func BindFlags(fs *pflag.FlagSet) {
	flags = flagValues{}
	fs.StringVar(&flags.config, "config", "", "Path to config file")
	fs.BoolVar(&flags.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&flags.logFile, "log-file", "", "Write logs to this file as well")
	fs.IntVar(&flags.meshResolution, "mesh-resolution", 0, "Grid stride when meshing legacy layouts")
	fs.Float64Var(&flags.boundarySpace, "boundary-spacing", 0, "Boundary point spacing in world units")
	fs.Float64Var(&flags.fillSpace, "fill-spacing", 0, "Interior fill point spacing in world units")
	fs.StringVar(&flags.background, "background", "", "Background terrain (fairway, rough, ...)")
	fs.Float64Var(&flags.cellSize, "cell-size", 0, "Spatial index cell size")
	fs.Float64Var(&flags.sdfResolution, "sdf-resolution", 0, "SDF pixels per world unit")
	fs.Float64Var(&flags.sdfMaxDistance, "sdf-max-distance", 0, "SDF search radius in grid cells")
	fs.IntVar(&flags.splineSamples, "spline-samples", 0, "SDF supersampling factor per axis")
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return flags.config
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if flags.debug {
		cfg.Logging.Level = "debug"
	}
	if flags.logFile != "" {
		cfg.Logging.LogFile = flags.logFile
	}
	if flags.meshResolution > 0 {
		cfg.Mesh.MeshResolution = flags.meshResolution
	}
	if flags.boundarySpace > 0 {
		cfg.Mesh.BoundaryPointSpacing = flags.boundarySpace
	}
	if flags.fillSpace > 0 {
		cfg.Mesh.FillPointSpacing = flags.fillSpace
	}
	if flags.background != "" {
		cfg.Mesh.BackgroundTerrain = flags.background
	}
	if flags.cellSize > 0 {
		cfg.Spatial.CellSize = flags.cellSize
	}
	if flags.sdfResolution > 0 {
		cfg.SDF.Resolution = flags.sdfResolution
	}
	if flags.sdfMaxDistance > 0 {
		cfg.SDF.MaxDistance = flags.sdfMaxDistance
	}
	if flags.splineSamples > 0 {
		cfg.SDF.SplineSamples = flags.splineSamples
	}
}
