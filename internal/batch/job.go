// Package batch runs terrain jobs through the generate, mesh, simplify and
// export stages on a bounded worker pool.
package batch

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/procmesh/internal/config"
	"github.com/Faultbox/procmesh/pkg/mesh"
)

// Job describes one terrain to produce. Every section starts from the
// run configuration and is overridden by the job file.
type Job struct {
	ID         string                 `yaml:"id"`
	Name       string                 `yaml:"name"`
	HeightMap  config.HeightMapConfig `yaml:"heightmap"`
	Mesh       config.MeshConfig      `yaml:"mesh"`
	Simplifier mesh.SimplifierOptions `yaml:"simplifier"`
	Output     config.OutputConfig    `yaml:"output"`
}

// NewJob returns a job carrying the sections of cfg.
func NewJob(name string, cfg *config.Config) Job {
	return Job{
		ID:         uuid.NewString(),
		Name:       name,
		HeightMap:  cfg.HeightMap,
		Mesh:       cfg.Mesh,
		Simplifier: cfg.Simplifier,
		Output:     cfg.Output,
	}
}

// Config returns a copy of base with the job's sections applied, for validation.
func (j Job) Config(base *config.Config) *config.Config {
	c := *base
	c.HeightMap = j.HeightMap
	c.Mesh = j.Mesh
	c.Simplifier = j.Simplifier
	c.Output = j.Output
	return &c
}

type jobFile struct {
	Jobs []yaml.Node `yaml:"jobs"`
}

// ParseJobs decodes a jobs document. Each entry is layered over cfg, so a
// job only lists the settings it changes.
func ParseJobs(data []byte, cfg *config.Config) ([]Job, error) {
	var doc jobFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding jobs: %w", err)
	}
	if len(doc.Jobs) == 0 {
		return nil, fmt.Errorf("jobs file lists no jobs")
	}

	jobs := make([]Job, 0, len(doc.Jobs))
	seen := make(map[string]bool, len(doc.Jobs))
	for i := range doc.Jobs {
		job := NewJob(fmt.Sprintf("job%03d", i), cfg)
		job.ID = ""
		if err := doc.Jobs[i].Decode(&job); err != nil {
			return nil, fmt.Errorf("job %d: %w", i, err)
		}
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		if seen[job.Name] {
			return nil, fmt.Errorf("job %d: duplicate name %q", i, job.Name)
		}
		seen[job.Name] = true
		if err := job.Config(cfg).Validate(); err != nil {
			return nil, fmt.Errorf("job %q: %w", job.Name, err)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// LoadJobs reads and decodes a jobs file.
func LoadJobs(path string, cfg *config.Config) ([]Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading jobs: %w", err)
	}
	return ParseJobs(data, cfg)
}
