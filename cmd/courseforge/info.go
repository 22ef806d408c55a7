package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/courseforge/internal/logger"
	"github.com/Faultbox/courseforge/internal/topology"
	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <mesh.json>",
		Short: "Show mesh statistics and check its invariants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topo, err := topology.LoadFile(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			c := topo.Counts()
			fmt.Fprintf(out, "World:     %g x %g\n", topo.WorldWidth, topo.WorldHeight)
			fmt.Fprintf(out, "Vertices:  %d\n", c.Vertices)
			fmt.Fprintf(out, "Edges:     %d\n", c.Edges)
			fmt.Fprintf(out, "Triangles: %d\n", c.Triangles)

			area := make(map[course.TerrainCode]float64)
			boundary := 0
			for _, id := range topo.EdgeIDs() {
				if e, _ := topo.Edge(id); e.IsBoundary() {
					boundary++
				}
			}
			for _, id := range topo.TriangleIDs() {
				tri, _ := topo.Triangle(id)
				p0, p1, p2, _ := topo.TrianglePositions(id)
				area[tri.TerrainCode] += math.TriangleArea(p0.XZ(), p1.XZ(), p2.XZ())
			}
			fmt.Fprintf(out, "Boundary edges: %d\n", boundary)
			fmt.Fprintln(out, "\nArea by terrain:")
			for code := course.TerrainCode(0); code < course.NumTerrainCodes; code++ {
				if area[code] > 0 {
					fmt.Fprintf(out, "  %-8s %10.2f\n", code, area[code])
				}
			}

			if err := topo.Validate(); err != nil {
				errs := multierr.Errors(err)
				logger.Error("mesh failed validation", zap.String("path", args[0]), zap.Int("problems", len(errs)))
				fmt.Fprintf(out, "\nInvalid: %d problem(s)\n", len(errs))
				for _, e := range errs {
					fmt.Fprintf(out, "  %v\n", e)
				}
				return fmt.Errorf("%s: %w", args[0], topology.ErrCorruptTopology)
			}
			fmt.Fprintln(out, "\nValid")
			return nil
		},
	}
}
