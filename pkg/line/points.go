package line

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// ParsePoints decodes a YAML sequence of [x, y] pairs.
func ParsePoints(data []byte) ([]pmath.Vec2, error) {
	var raw [][]float32
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing points: %w", err)
	}

	points := make([]pmath.Vec2, len(raw))
	for i, p := range raw {
		if len(p) != 2 {
			return nil, fmt.Errorf("point %d: want 2 coordinates, got %d", i, len(p))
		}
		points[i] = pmath.Vec2{X: p[0], Y: p[1]}
	}
	return points, nil
}

// LoadPoints reads a points file written for ParsePoints.
func LoadPoints(path string) ([]pmath.Vec2, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading points file: %w", err)
	}
	return ParsePoints(data)
}
