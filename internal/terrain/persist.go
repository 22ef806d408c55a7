package terrain

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/courseforge/internal/topology"
)

// Save writes the topology to path. Derived state is not persisted.
func (s *System) Save(path string) error {
	if err := topology.SaveFile(path, s.topo); err != nil {
		return fmt.Errorf("saving terrain: %w", err)
	}
	s.log.Info("terrain saved", zap.String("path", path))
	return nil
}

// Load restores a topology saved with Save and rebuilds derived state.
func Load(path string, opts Options) (*System, error) {
	topo, err := topology.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading terrain: %w", err)
	}
	return NewSystem(topo, opts), nil
}
