package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/courseforge/internal/debug"
)

func newSDFCmd(a *app) *cobra.Command {
	var (
		outDir string
		layout bool
	)
	cmd := &cobra.Command{
		Use:   "sdf <mesh.json>",
		Short: "Rasterize a mesh and write its SDF images as PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := a.loadSystem(args[0])
			if err != nil {
				return err
			}

			prefix := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			d := debug.NewDumper(outDir, prefix)
			combined, tee, err := d.DumpSDF(sys.SDF())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			f := sys.SDF()
			fmt.Fprintf(out, "SDF %dx%d\n  %s\n  %s\n", f.Width, f.Height, combined, tee)

			if layout {
				path, err := d.DumpLayout(sys.Layout())
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "Output directory")
	cmd.Flags().BoolVar(&layout, "layout", false, "Also write the rasterized terrain layout")
	return cmd
}
