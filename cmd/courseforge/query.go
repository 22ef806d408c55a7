package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newQueryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "query <mesh.json> <x> <z>",
		Short: "Report the face, terrain and elevation at a point",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid x: %w", err)
			}
			z, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid z: %w", err)
			}
			sys, err := a.loadSystem(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			id, ok := sys.FaceAt(x, z)
			if !ok {
				fmt.Fprintf(out, "(%g, %g): no face\n", x, z)
				return nil
			}
			code, _ := sys.TerrainAt(x, z)
			y, _ := sys.ElevationAt(x, z)
			fmt.Fprintf(out, "(%g, %g): face %d, terrain %s, elevation %.3f, playable %t\n",
				x, z, id, code, y, sys.IsPlayable(x, z))
			return nil
		},
	}
}
