package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pmath "github.com/Faultbox/procmesh/pkg/math"
	"github.com/Faultbox/procmesh/pkg/mesh"
)

// ErrMalformedOBJ is returned for OBJ lines that cannot be parsed.
var ErrMalformedOBJ = errors.New("malformed OBJ")

// WriteOBJ writes m as a Wavefront OBJ with one normal per vertex, or plain
// faces when m has no normals. Vertex colors, when present, are appended to
// the "v" lines.
func WriteOBJ(w io.Writer, m *mesh.Mesh) error {
	if err := m.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# procmesh: %d vertices, %d triangles\n", m.NumVertices(), m.NumTriangles())

	hasColors := len(m.Colors) == len(m.Positions)
	for i, p := range m.Positions {
		if hasColors {
			c := m.Colors[i]
			fmt.Fprintf(bw, "v %s %s %s %s %s %s\n", ff(p.X), ff(p.Y), ff(p.Z), ff(c[0]), ff(c[1]), ff(c[2]))
			continue
		}
		fmt.Fprintf(bw, "v %s %s %s\n", ff(p.X), ff(p.Y), ff(p.Z))
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %s %s %s\n", ff(n.X), ff(n.Y), ff(n.Z))
	}
	hasNormals := len(m.Normals) > 0
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i]+1, m.Indices[i+1]+1, m.Indices[i+2]+1
		if !hasNormals {
			fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
			continue
		}
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	return bw.Flush()
}

// WriteOBJFile writes m to path.
func WriteOBJFile(path string, m *mesh.Mesh) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating OBJ file: %w", err)
	}
	if err := WriteOBJ(out, m); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// ParseOBJ reads positions, normals, vertex colors and faces. Polygons are
// fan triangulated. Normals are attached to the position a face corner
// references; meshes without normals get area weighted ones.
func ParseOBJ(r io.Reader) (*mesh.Mesh, error) {
	var (
		positions []pmath.Vec3
		colors    []mesh.Color
		normals   []pmath.Vec3
		indices   []uint32
		assigned  []pmath.Vec3
		hasNormal []bool
	)
	colored := true

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			vals, err := parseFloats(fields[1:])
			if err != nil || (len(vals) != 3 && len(vals) != 4 && len(vals) != 6) {
				return nil, fmt.Errorf("%w: line %d: bad vertex", ErrMalformedOBJ, line)
			}
			positions = append(positions, pmath.Vec3{X: vals[0], Y: vals[1], Z: vals[2]})
			// A fourth value is the optional w; colors follow x y z only
			if len(vals) == 6 {
				colors = append(colors, mesh.Color{vals[3], vals[4], vals[5], 1})
			} else {
				colored = false
			}
		case "vn":
			vals, err := parseFloats(fields[1:])
			if err != nil || len(vals) != 3 {
				return nil, fmt.Errorf("%w: line %d: bad normal", ErrMalformedOBJ, line)
			}
			normals = append(normals, pmath.Vec3{X: vals[0], Y: vals[1], Z: vals[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs 3 corners", ErrMalformedOBJ, line)
			}
			if len(assigned) < len(positions) {
				assigned = append(assigned, make([]pmath.Vec3, len(positions)-len(assigned))...)
				hasNormal = append(hasNormal, make([]bool, len(positions)-len(hasNormal))...)
			}

			corners := make([]uint32, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				vi, ni, err := parseCorner(tok, len(positions), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedOBJ, line, err)
				}
				if ni >= 0 {
					assigned[vi] = normals[ni]
					hasNormal[vi] = true
				}
				corners = append(corners, uint32(vi))
			}
			for k := 1; k+1 < len(corners); k++ {
				indices = append(indices, corners[0], corners[k], corners[k+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	m := &mesh.Mesh{Positions: positions, Indices: indices}
	if colored && len(colors) == len(positions) && len(positions) > 0 {
		m.Colors = colors
	}

	complete := len(hasNormal) == len(positions)
	for _, ok := range hasNormal {
		complete = complete && ok
	}
	if complete && len(positions) > 0 {
		m.Normals = assigned
	} else {
		m.RecomputeNormals()
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*mesh.Mesh, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening OBJ file: %w", err)
	}
	defer in.Close()
	return ParseOBJ(in)
}

// parseCorner resolves "v", "v/t", "v//n" or "v/t/n" to zero based vertex
// and normal indices. Negative references count back from the end. The
// normal index is -1 when absent.
func parseCorner(tok string, numPositions, numNormals int) (int, int, error) {
	parts := strings.Split(tok, "/")

	vi, err := resolveIndex(parts[0], numPositions)
	if err != nil {
		return 0, 0, fmt.Errorf("vertex %q: %w", tok, err)
	}

	ni := -1
	if len(parts) == 3 && parts[2] != "" {
		ni, err = resolveIndex(parts[2], numNormals)
		if err != nil {
			return 0, 0, fmt.Errorf("normal %q: %w", tok, err)
		}
	}
	return vi, ni, nil
}

func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	switch {
	case i > 0 && i <= n:
		return i - 1, nil
	case i < 0 && -i <= n:
		return n + i, nil
	}
	return 0, fmt.Errorf("index %d out of range (%d)", i, n)
}

func parseFloats(fields []string) ([]float32, error) {
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(v)
	}
	return out, nil
}

func ff(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}
