package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/courseforge/internal/config"
	"github.com/Faultbox/courseforge/internal/logger"
	"github.com/Faultbox/courseforge/internal/sdf"
	"github.com/Faultbox/courseforge/internal/terrain"
)

// app carries state shared by subcommands once the root pre-run finished.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "courseforge",
		Short:        "Golf course terrain mesh tool",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load("")
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			logger.Debug("config loaded",
				zap.Float64("cellSize", cfg.Spatial.CellSize),
				zap.Float64("sdfResolution", cfg.SDF.Resolution))
			a.cfg = cfg
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}
	config.BindFlags(root.PersistentFlags())

	root.AddCommand(
		newBuildCmd(a),
		newInfoCmd(a),
		newEditCmd(a),
		newSDFCmd(a),
		newQueryCmd(a),
	)
	return root
}

// terrainOptions maps the loaded configuration onto terrain.Options.
func (a *app) terrainOptions() (terrain.Options, error) {
	bg, err := a.cfg.Background()
	if err != nil {
		return terrain.Options{}, err
	}
	return terrain.Options{
		CellSize:         a.cfg.Spatial.CellSize,
		GridCellsPerUnit: 1,
		Background:       bg,
		SDF: sdf.Options{
			Resolution:    a.cfg.SDF.Resolution,
			MaxDistance:   a.cfg.SDF.MaxDistance,
			SplineSamples: a.cfg.SDF.SplineSamples,
		},
		Logger: logger.Named("terrain"),
	}, nil
}

// loadSystem opens a saved mesh and rebuilds its derived state.
func (a *app) loadSystem(path string) (*terrain.System, error) {
	opts, err := a.terrainOptions()
	if err != nil {
		return nil, err
	}
	return terrain.Load(path, opts)
}
