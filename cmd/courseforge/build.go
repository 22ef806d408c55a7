package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/courseforge/internal/logger"
	"github.com/Faultbox/courseforge/internal/terrain"
	"github.com/Faultbox/courseforge/pkg/course"
)

func newBuildCmd(a *app) *cobra.Command {
	var (
		regionsPath string
		gridPath    string
		outPath     string
		worldWidth  float64
		worldHeight float64
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a terrain mesh from a region file or a legacy grid",
		Example: `  courseforge build --regions hole1.yaml --out hole1.mesh.json
  courseforge build --grid hole1.cgrd --out hole1.mesh.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (regionsPath == "") == (gridPath == "") {
				return errors.New("exactly one of --regions or --grid is required")
			}
			opts, err := a.terrainOptions()
			if err != nil {
				return err
			}

			var sys *terrain.System
			if regionsPath != "" {
				c, err := course.LoadCourseFile(regionsPath)
				if err != nil {
					return err
				}
				if worldWidth > 0 {
					c.WorldWidth = worldWidth
				}
				if worldHeight > 0 {
					c.WorldHeight = worldHeight
				}
				sys = terrain.FromCourse(c, a.cfg.Mesh.BoundaryPointSpacing, a.cfg.Mesh.FillPointSpacing, opts)
			} else {
				l, err := course.ParseLayoutFile(gridPath)
				if err != nil {
					return err
				}
				w, h := float64(l.Width), float64(l.Height)
				if worldWidth > 0 {
					w = worldWidth
				}
				if worldHeight > 0 {
					h = worldHeight
				}
				sys = terrain.FromLayout(l, w, h, a.cfg.Mesh.MeshResolution, opts)
			}

			if err := sys.Save(outPath); err != nil {
				return err
			}
			c := sys.Topology().Counts()
			logger.Info("mesh written",
				zap.String("path", outPath),
				zap.Int("vertices", c.Vertices),
				zap.Int("triangles", c.Triangles))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d vertices, %d edges, %d triangles\n",
				outPath, c.Vertices, c.Edges, c.Triangles)
			return nil
		},
	}
	cmd.Flags().StringVar(&regionsPath, "regions", "", "Region course file (.yaml or .geojson)")
	cmd.Flags().StringVar(&gridPath, "grid", "", "Legacy terrain grid file (.cgrd)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "mesh.json", "Output mesh file")
	cmd.Flags().Float64Var(&worldWidth, "world-width", 0, "Override the world width")
	cmd.Flags().Float64Var(&worldHeight, "world-height", 0, "Override the world height")
	return cmd
}
