package topology

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

// ErrCorruptTopology is returned for topologies that violate structural
// invariants, either on load or from Validate.
var ErrCorruptTopology = errors.New("corrupt topology")

// Validate checks every structural invariant and returns all violations
// combined. A nil result means the topology is consistent.
func (t *Topology) Validate() error {
	var err error
	for _, id := range t.TriangleIDs() {
		tri := t.triangles[id]
		if !tri.TerrainCode.Valid() {
			err = multierr.Append(err, fmt.Errorf("%w: triangle %d has terrain code %d", ErrCorruptTopology, id, tri.TerrainCode))
		}
		missing := false
		for _, v := range tri.Vertices {
			if _, ok := t.vertices[v]; !ok {
				err = multierr.Append(err, fmt.Errorf("%w: triangle %d references missing vertex %d", ErrCorruptTopology, id, v))
				missing = true
			}
		}
		if missing {
			continue
		}
		if !t.wellFormed(tri) {
			err = multierr.Append(err, fmt.Errorf("%w: triangle %d is degenerate", ErrCorruptTopology, id))
		}
	}
	for _, id := range t.EdgeIDs() {
		e := t.edges[id]
		if n := len(e.Triangles); n < 1 || n > 2 {
			err = multierr.Append(err, fmt.Errorf("%w: edge %d borders %d triangles", ErrCorruptTopology, id, n))
		}
		for _, triID := range e.Triangles {
			if _, ok := t.triangles[triID]; !ok {
				err = multierr.Append(err, fmt.Errorf("%w: edge %d references missing triangle %d", ErrCorruptTopology, id, triID))
			}
		}
	}
	if !t.edgesConsistent() {
		err = multierr.Append(err, fmt.Errorf("%w: edges do not match triangles", ErrCorruptTopology))
	}
	return err
}
