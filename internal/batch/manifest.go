package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Manifest is the JSON summary written after a batch run.
type Manifest struct {
	Jobs      int      `json:"jobs"`
	Succeeded int      `json:"succeeded"`
	Results   []Result `json:"results"`
}

// NewManifest summarizes results.
func NewManifest(results []Result) Manifest {
	m := Manifest{Jobs: len(results), Results: results}
	for _, r := range results {
		if r.Success {
			m.Succeeded++
		}
	}
	return m
}

// WriteManifest writes the manifest for results to path.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(NewManifest(results), "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	data, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}
