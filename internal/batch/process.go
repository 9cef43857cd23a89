package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/procmesh/internal/config"
	"github.com/Faultbox/procmesh/internal/logger"
	"github.com/Faultbox/procmesh/pkg/formats"
	"github.com/Faultbox/procmesh/pkg/grid"
	"github.com/Faultbox/procmesh/pkg/heightmap"
	pmath "github.com/Faultbox/procmesh/pkg/math"
	"github.com/Faultbox/procmesh/pkg/mesh"
)

// Output file names inside a job directory.
const (
	HeightMapFile = "heightmap.phm"
	ImageBase     = "heightmap"
	MeshFile      = "mesh.obj"
)

// Result holds the outcome of processing one job.
type Result struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Success   bool       `json:"success"`
	Error     string     `json:"error,omitempty"`
	Width     int        `json:"width"`
	Height    int        `json:"height"`
	MinHeight float32    `json:"min_height"`
	MaxHeight float32    `json:"max_height"`
	Mesh      mesh.Stats `json:"mesh"`
	Files     []string   `json:"files,omitempty"`
	Duration  string     `json:"duration"`
}

// NewGenerator builds the generator selected by hm.
func NewGenerator(hm config.HeightMapConfig) (heightmap.Generator, error) {
	switch hm.Generator {
	case config.GeneratorDiamondSquare:
		return heightmap.NewDiamondSquare(hm.DiamondSquare), nil
	case config.GeneratorPerlin, config.GeneratorSimplex:
		kind, err := heightmap.ParseNoiseKind(hm.Generator)
		if err != nil {
			return nil, err
		}
		return heightmap.NewNoise(kind, hm.Noise), nil
	default:
		return nil, fmt.Errorf("unknown generator %q", hm.Generator)
	}
}

// GenerateField produces the height field for hm, smoothed and normalized
// as configured.
func GenerateField(hm config.HeightMapConfig) (*grid.HeightField, error) {
	gen, err := NewGenerator(hm)
	if err != nil {
		return nil, err
	}

	gd := grid.NewData(hm.Width, hm.Height)
	f, err := heightmap.GenerateInto(gd, 0, gen)
	if err != nil {
		return nil, err
	}
	gd.SetName("terrain", 0)

	if hm.SmoothRadius > 0 {
		f.Smooth(hm.SmoothRadius)
	}
	if hm.Normalize {
		f.ScaleRange(0, 1)
	}
	return f, nil
}

// BuildMesh turns f into a world-space grid mesh and simplifies it.
func BuildMesh(f *grid.HeightField, mc config.MeshConfig, opts mesh.SimplifierOptions) (*mesh.Mesh, mesh.Stats, error) {
	m, err := mesh.BuildGridMesh(f, mc.CellSize, mc.HeightScale)
	if err != nil {
		return nil, mesh.Stats{}, err
	}

	offset := pmath.Vec3{X: mc.WorldOffset[0], Y: mc.WorldOffset[1], Z: mc.WorldOffset[2]}
	m.Translate(offset)

	stats, err := mesh.Simplify(m, offset, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("simplifying: %w", err)
	}
	return m, stats, nil
}

// Process runs every stage of job and writes its outputs under
// job.Output.Dir/job.Name. Failures are reported in the result.
func Process(ctx context.Context, job Job) Result {
	start := time.Now()
	log := logger.Named("batch").With(zap.String("job", job.Name), zap.String("id", job.ID))

	res := Result{ID: job.ID, Name: job.Name, Width: job.HeightMap.Width, Height: job.HeightMap.Height}
	fail := func(err error) Result {
		res.Error = err.Error()
		res.Duration = time.Since(start).String()
		log.Warn("job failed", zap.Error(err))
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	f, err := GenerateField(job.HeightMap)
	if err != nil {
		return fail(fmt.Errorf("generating height map: %w", err))
	}
	res.MinHeight, res.MaxHeight = f.Extrema()

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	var m *mesh.Mesh
	if job.Output.WriteOBJ {
		m, res.Mesh, err = BuildMesh(f, job.Mesh, job.Simplifier)
		if err != nil {
			return fail(err)
		}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	dir := filepath.Join(job.Output.Dir, job.Name)
	files, err := writeOutputs(dir, f, m, job.Output)
	if err != nil {
		return fail(err)
	}

	res.Files = files
	res.Success = true
	res.Duration = time.Since(start).String()
	log.Info("job finished",
		zap.Int("triangles_in", res.Mesh.InputTriangles),
		zap.Int("triangles_out", res.Mesh.OutputTriangles),
		zap.Duration("elapsed", time.Since(start)))
	return res
}

func writeOutputs(dir string, f *grid.HeightField, m *mesh.Mesh, out config.OutputConfig) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	var files []string
	if out.WritePHM {
		path := filepath.Join(dir, HeightMapFile)
		if err := formats.WritePHMFile(path, f); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if out.WriteImage {
		format, err := formats.ParseImageFormat(out.ImageFormat)
		if err != nil {
			return files, err
		}
		img, err := formats.HeightFieldImage(f, out.BitDepth)
		if err != nil {
			return files, err
		}
		path := filepath.Join(dir, ImageBase+format.Extension())
		if err := formats.WriteImageFile(path, img); err != nil {
			return files, err
		}
		files = append(files, path)
	}

	if out.WriteOBJ && m != nil {
		path := filepath.Join(dir, MeshFile)
		if err := formats.WriteOBJFile(path, m); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}
