// Package heightmap fills grid height fields procedurally.
package heightmap

import (
	"fmt"

	"github.com/Faultbox/procmesh/pkg/grid"
)

// Generator writes a full height field in place.
type Generator interface {
	Name() string
	Generate(f *grid.HeightField) error
}

// GenerateInto creates map id on gd if it is missing and fills it with g.
func GenerateInto(gd *grid.Data, id int, g Generator) (*grid.HeightField, error) {
	if g == nil {
		return nil, fmt.Errorf("nil generator")
	}
	f, err := gd.EnsureHeightMap(id)
	if err != nil {
		return nil, err
	}
	if err := g.Generate(f); err != nil {
		return f, fmt.Errorf("%s: %w", g.Name(), err)
	}
	return f, nil
}

// ConfigError reports generator parameters that cannot produce a field. The
// target field is left untouched when it is returned.
type ConfigError struct {
	Param string
	Value int
	Limit int
}

func (e *ConfigError) Error() string {
	if e.Limit <= 0 {
		return fmt.Sprintf("invalid %s: %d", e.Param, e.Value)
	}
	return fmt.Sprintf("invalid %s: %d (must be in [0, %d))", e.Param, e.Value, e.Limit)
}
