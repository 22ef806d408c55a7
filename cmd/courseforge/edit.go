package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/courseforge/internal/logger"
	"github.com/Faultbox/courseforge/internal/terrain"
	"github.com/Faultbox/courseforge/internal/topology"
	"github.com/Faultbox/courseforge/pkg/course"
	"github.com/Faultbox/courseforge/pkg/math"
)

func newEditCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "edit <mesh.json> <op> <id> [args...]",
		Short: "Apply one topology edit and save the result",
		Long: `Apply one topology edit and save the result.

Operations:
  subdivide <edge> [t]        split an edge at parameter t (default 0.5)
  collapse  <edge>            merge an edge's endpoints
  flip      <edge>            swap the diagonal of the two adjacent triangles
  delete    <vertex>          remove an interior vertex and re-triangulate
  move      <vertex> x y z    move a vertex
  paint     <triangle> <terrain>
  brush     x z radius <terrain>`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := a.loadSystem(args[0])
			if err != nil {
				return err
			}
			msg, err := applyEdit(sys, args[1], args[2:])
			if err != nil {
				logger.Warn("edit not applied",
					zap.String("mesh", args[0]),
					zap.Strings("args", args[1:]),
					zap.Error(err))
				return err
			}

			dst := outPath
			if dst == "" {
				dst = args[0]
			}
			if err := sys.Save(dst); err != nil {
				return err
			}
			logger.Info("edit applied", zap.String("op", args[1]), zap.String("path", dst))
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write the edited mesh here instead of in place")
	return cmd
}

// applyEdit dispatches one edit operation. A refused edit is an error so
// the mesh file is left untouched.
func applyEdit(sys *terrain.System, op string, args []string) (string, error) {
	switch op {
	case "subdivide":
		id, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		t := 0.5
		if len(args) > 1 {
			if t, err = strconv.ParseFloat(args[1], 64); err != nil {
				return "", fmt.Errorf("parameter t: %w", err)
			}
		}
		res, ok := sys.SubdivideEdge(topology.EdgeID(id), t)
		if !ok {
			return "", refused(op, id)
		}
		return fmt.Sprintf("subdivided edge %d: new vertex %d, %d triangle(s) created",
			id, res.Vertex, len(res.Created)), nil

	case "collapse":
		id, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		res, ok := sys.CollapseEdge(topology.EdgeID(id))
		if !ok {
			return "", refused(op, id)
		}
		return fmt.Sprintf("collapsed edge %d into vertex %d, removed %d triangle(s)",
			id, res.Vertex, len(res.RemovedTriangles)), nil

	case "flip":
		id, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		res, ok := sys.FlipEdge(topology.EdgeID(id))
		if !ok {
			return "", refused(op, id)
		}
		return fmt.Sprintf("flipped edge %d: new edge %d", id, res.Edge), nil

	case "delete":
		id, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		res, ok := sys.DeleteVertex(topology.VertexID(id))
		if !ok {
			return "", refused(op, id)
		}
		return fmt.Sprintf("deleted vertex %d: %d triangle(s) replaced by %d",
			id, len(res.Removed), len(res.Created)), nil

	case "move":
		id, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		xyz, err := parseFloats(args[1:], 3)
		if err != nil {
			return "", err
		}
		if !sys.SetVertexPosition(topology.VertexID(id), math.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}) {
			return "", refused(op, id)
		}
		return fmt.Sprintf("moved vertex %d", id), nil

	case "paint":
		id, err := parseID(args, 0)
		if err != nil {
			return "", err
		}
		if len(args) < 2 {
			return "", fmt.Errorf("paint needs a terrain name")
		}
		code, err := course.ParseTerrainCode(args[1])
		if err != nil {
			return "", err
		}
		if !sys.SetTerrainCode(topology.TriangleID(id), code) {
			return "", refused(op, id)
		}
		return fmt.Sprintf("painted triangle %d %s", id, code), nil

	case "brush":
		xzr, err := parseFloats(args, 3)
		if err != nil {
			return "", err
		}
		if len(args) < 4 {
			return "", fmt.Errorf("brush needs a terrain name")
		}
		code, err := course.ParseTerrainCode(args[3])
		if err != nil {
			return "", err
		}
		ids := sys.PaintBrush(xzr[0], xzr[1], xzr[2], code)
		return fmt.Sprintf("painted %d triangle(s) %s", len(ids), code), nil
	}
	return "", fmt.Errorf("unknown operation %q", op)
}

func refused(op string, id int) error {
	return fmt.Errorf("%s %d refused: would break the mesh or does not apply", op, id)
}

func parseID(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, fmt.Errorf("missing id")
	}
	id, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", args[i], err)
	}
	return id, nil
}

func parseFloats(args []string, n int) ([]float64, error) {
	if len(args) < n {
		return nil, fmt.Errorf("expected %d numbers, got %d", n, len(args))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", args[i], err)
		}
		out[i] = v
	}
	return out, nil
}
