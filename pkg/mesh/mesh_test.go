package mesh

import (
	"errors"
	"math"
	"testing"

	"github.com/Faultbox/procmesh/pkg/grid"
	pmath "github.com/Faultbox/procmesh/pkg/math"
)

func permissiveOptions() SimplifierOptions {
	opts := DefaultSimplifierOptions()
	opts.Enabled = true
	opts.TargetPercentage = 0.5
	opts.MaxIterations = 10
	opts.MaxError = 100
	opts.MaxEdgeSize = 100
	opts.MinAngleCosine = -1
	return opts
}

func approx(a, b pmath.Vec3) bool {
	return a.DistanceSquared(b) < 1e-8
}

func TestMeshValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(m *Mesh)
	}{
		{"indices not triangles", func(m *Mesh) { m.Indices = m.Indices[:len(m.Indices)-1] }},
		{"index out of range", func(m *Mesh) { m.Indices[4] = uint32(len(m.Positions)) }},
		{"normals mismatch", func(m *Mesh) { m.Normals = m.Normals[:3] }},
		{"colors mismatch", func(m *Mesh) { m.Colors = make([]Color, 2) }},
	}

	if err := PlaneMesh(2).Validate(); err != nil {
		t.Fatalf("plane should be valid: %v", err)
	}
	bare := PlaneMesh(2)
	bare.Normals = nil
	if err := bare.Validate(); err != nil {
		t.Fatalf("plane without normals should be valid: %v", err)
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := PlaneMesh(2)
			tc.mutate(m)
			if err := m.Validate(); !errors.Is(err, ErrInvalidMesh) {
				t.Errorf("expected ErrInvalidMesh, got %v", err)
			}
		})
	}
}

func TestMeshBoundsAndClone(t *testing.T) {
	m := PlaneMesh(3)
	b := m.Bounds()
	if b.Min != (pmath.Vec3{}) || b.Max != (pmath.Vec3{X: 3, Y: 3}) {
		t.Errorf("Bounds = %+v", b)
	}

	c := m.Clone()
	c.Translate(pmath.Vec3{Z: 5})
	if m.Positions[0].Z != 0 {
		t.Error("Clone shares position storage")
	}
	if c.Bounds().Min.Z != 5 {
		t.Errorf("translated min Z = %v, want 5", c.Bounds().Min.Z)
	}
}

func TestRecomputeNormals(t *testing.T) {
	m := PlaneMesh(2)
	for i := range m.Normals {
		m.Normals[i] = pmath.Vec3{}
	}
	m.RecomputeNormals()
	for i, n := range m.Normals {
		if !approx(n, pmath.Vec3{Z: 1}) {
			t.Fatalf("normal %d = %v, want +Z", i, n)
		}
	}
}

func TestNewEdge(t *testing.T) {
	e := NewEdge(9, 3)
	if e.Min != 3 || e.Max != 9 {
		t.Errorf("NewEdge(9, 3) = %+v", e)
	}
	if e.Key() != uint64(3)<<32|9 {
		t.Errorf("Key = %x", e.Key())
	}
	if NewEdge(1, 9).Key() >= NewEdge(2, 3).Key() {
		t.Error("keys should order by min vertex first")
	}
}

func TestCandidateEdges(t *testing.T) {
	m := PlaneMesh(4)
	tris := make([]triangle, m.NumTriangles())
	for i := range tris {
		tris[i] = triangle{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
	}

	edges := candidateEdges(tris, m.NumVertices())
	// 3x3 interior lattice: 6 horizontal, 6 vertical, 4 diagonal
	if len(edges) != 16 {
		t.Fatalf("expected 16 interior edges, got %d", len(edges))
	}

	onBoundary := func(i uint32) bool {
		x, y := i%5, i/5
		return x == 0 || y == 0 || x == 4 || y == 4
	}
	for i, e := range edges {
		if e.Min >= e.Max {
			t.Errorf("edge %d not ordered: %+v", i, e)
		}
		if onBoundary(e.Min) || onBoundary(e.Max) {
			t.Errorf("edge %d touches the boundary: %+v", i, e)
		}
		if i > 0 && edges[i-1].Key() >= e.Key() {
			t.Errorf("edges not sorted and unique at %d", i)
		}
	}

	if got := candidateEdges(nil, 0); got != nil {
		t.Errorf("expected no edges for empty input, got %v", got)
	}
}

func TestQEFFlatPlane(t *testing.T) {
	points := []pmath.Vec3{{X: 0, Y: 0, Z: 2}, {X: 1, Y: 3, Z: 2}}
	normals := []pmath.Vec3{{Z: 1}, {Z: 1}}

	pos, residual := SolveQEF(points, normals)
	if residual != 0 {
		t.Errorf("coplanar residual = %v, want 0", residual)
	}
	if !approx(pos, pmath.Vec3{X: 0.5, Y: 1.5, Z: 2}) {
		t.Errorf("position = %v, want mass point", pos)
	}
}

func TestQEFCorner(t *testing.T) {
	points := []pmath.Vec3{{X: 1}, {Y: 1}}
	normals := []pmath.Vec3{{X: 1}, {Y: 1}}

	pos, residual := SolveQEF(points, normals)
	if residual != 0 {
		t.Errorf("residual = %v, want 0", residual)
	}
	if !approx(pos, pmath.Vec3{X: 1, Y: 1}) {
		t.Errorf("position = %v, want (1, 1, 0)", pos)
	}
}

func TestQEFEmpty(t *testing.T) {
	var q QEF
	pos, residual := q.Solve()
	if pos != (pmath.Vec3{}) || residual != 0 {
		t.Errorf("empty QEF = %v, %v", pos, residual)
	}
}

func TestSimplifyPlaneScenario(t *testing.T) {
	m := PlaneMesh(4)
	if m.NumVertices() != 25 || m.NumTriangles() != 32 {
		t.Fatalf("plane has %d vertices, %d triangles", m.NumVertices(), m.NumTriangles())
	}

	stats, err := Simplify(m, pmath.Vec3{}, permissiveOptions())
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if stats.Skipped {
		t.Fatal("simplify should not skip a 25 vertex plane")
	}

	tris := m.NumTriangles()
	if tris >= 32 || tris < 16 {
		t.Errorf("triangle count = %d, want [16, 32)", tris)
	}
	if stats.OutputTriangles != tris {
		t.Errorf("stats report %d triangles, mesh has %d", stats.OutputTriangles, tris)
	}
	if err := m.Validate(); err != nil {
		t.Errorf("result invalid: %v", err)
	}
}

func TestSimplifyMonotonic(t *testing.T) {
	prev := PlaneMesh(8).NumTriangles()
	for iters := int32(1); iters <= 6; iters++ {
		m := PlaneMesh(8)
		opts := permissiveOptions()
		opts.TargetPercentage = 0
		opts.MaxIterations = iters

		if _, err := Simplify(m, pmath.Vec3{}, opts); err != nil {
			t.Fatalf("Simplify failed: %v", err)
		}
		if m.NumTriangles() > prev {
			t.Fatalf("%d iterations: %d triangles, previous run had %d", iters, m.NumTriangles(), prev)
		}
		prev = m.NumTriangles()
	}
}

func TestSimplifyPreservesBoundary(t *testing.T) {
	const cells = 6
	m := PlaneMesh(cells)

	var boundary []pmath.Vec3
	for _, p := range m.Positions {
		if p.X == 0 || p.Y == 0 || p.X == cells || p.Y == cells {
			boundary = append(boundary, p)
		}
	}

	opts := permissiveOptions()
	opts.TargetPercentage = 0
	opts.EdgeFraction = 0.5
	if _, err := Simplify(m, pmath.Vec3{}, opts); err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}

	remaining := 0
	for _, p := range m.Positions {
		if p.X == 0 || p.Y == 0 || p.X == cells || p.Y == cells {
			remaining++
		}
	}
	if remaining != len(boundary) {
		t.Errorf("boundary vertices: %d before, %d after", len(boundary), remaining)
	}

	for _, want := range boundary {
		found := false
		for _, p := range m.Positions {
			if p == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("boundary vertex %v moved or removed", want)
		}
	}
}

func TestSimplifyNoDegenerates(t *testing.T) {
	m := PlaneMesh(10)
	opts := permissiveOptions()
	opts.TargetPercentage = 0.1
	opts.EdgeFraction = 0.3

	stats, err := Simplify(m, pmath.Vec3{}, opts)
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if stats.Collapsed == 0 {
		t.Fatal("expected some collapses")
	}

	used := make([]bool, m.NumVertices())
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		if a == b || a == c || b == c {
			t.Fatalf("degenerate triangle %d: %d %d %d", i/3, a, b, c)
		}
		used[a], used[b], used[c] = true, true, true
	}
	for i, u := range used {
		if !u {
			t.Errorf("vertex %d is not referenced after compaction", i)
		}
	}
	if stats.OutputVertices >= stats.InputVertices {
		t.Errorf("vertex count %d -> %d, expected a reduction", stats.InputVertices, stats.OutputVertices)
	}
}

func TestSimplifyCompactsColors(t *testing.T) {
	m := PlaneMesh(6)
	m.Colors = make([]Color, m.NumVertices())
	for i := range m.Colors {
		m.Colors[i] = Color{float32(i), 0, 0, 1}
	}
	before := m.Clone()

	opts := permissiveOptions()
	opts.TargetPercentage = 0
	if _, err := Simplify(m, pmath.Vec3{}, opts); err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if len(m.Colors) != m.NumVertices() {
		t.Fatalf("%d colors for %d vertices", len(m.Colors), m.NumVertices())
	}

	// Boundary vertices never move, so each keeps its own color
	for i, p := range m.Positions {
		if p.X != 0 && p.Y != 0 && p.X != 6 && p.Y != 6 {
			continue
		}
		j := int(p.X) + int(p.Y)*7
		if m.Colors[i] != before.Colors[j] {
			t.Errorf("vertex %v carries color %v, want %v", p, m.Colors[i], before.Colors[j])
		}
	}
}

func TestSimplifySkipped(t *testing.T) {
	tetra := &Mesh{
		Positions: []pmath.Vec3{{}, {X: 1}, {Y: 1}, {Z: 1}},
		Normals:   []pmath.Vec3{{X: -1}, {X: 1}, {Y: 1}, {Z: 1}},
		Indices:   []uint32{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}
	before := tetra.Clone()

	stats, err := Simplify(tetra, pmath.Vec3{}, permissiveOptions())
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if !stats.Skipped {
		t.Error("tetrahedron should be skipped")
	}
	for i := range before.Positions {
		if tetra.Positions[i] != before.Positions[i] {
			t.Errorf("position %d changed", i)
		}
	}

	disabled := PlaneMesh(6)
	opts := permissiveOptions()
	opts.Enabled = false
	stats, err = Simplify(disabled, pmath.Vec3{}, opts)
	if err != nil || !stats.Skipped {
		t.Errorf("disabled options: stats %+v, err %v", stats, err)
	}
	if disabled.NumTriangles() != 72 {
		t.Errorf("disabled simplify changed triangle count to %d", disabled.NumTriangles())
	}
}

func TestSimplifyRejectsAll(t *testing.T) {
	m := PlaneMesh(6)
	before := m.Clone()

	opts := permissiveOptions()
	opts.MaxEdgeSize = 0.5
	stats, err := Simplify(m, pmath.Vec3{}, opts)
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if stats.Collapsed != 0 {
		t.Errorf("expected no collapses, got %d", stats.Collapsed)
	}
	if m.NumTriangles() != before.NumTriangles() || m.NumVertices() != before.NumVertices() {
		t.Errorf("mesh changed: %d/%d -> %d/%d", before.NumVertices(), before.NumTriangles(), m.NumVertices(), m.NumTriangles())
	}
	for i := range before.Positions {
		if m.Positions[i] != before.Positions[i] {
			t.Fatalf("position %d changed", i)
		}
	}
}

func TestSimplifyInvalidMesh(t *testing.T) {
	m := PlaneMesh(6)
	m.Indices = append(m.Indices, 0)
	before := len(m.Positions)

	if _, err := Simplify(m, pmath.Vec3{}, permissiveOptions()); !errors.Is(err, ErrInvalidMesh) {
		t.Fatalf("expected ErrInvalidMesh, got %v", err)
	}
	if len(m.Positions) != before {
		t.Error("invalid mesh was modified")
	}
}

func TestSimplifyDeterministic(t *testing.T) {
	opts := permissiveOptions()
	opts.TargetPercentage = 0.2

	a := PlaneMesh(8)
	b := PlaneMesh(8)
	if _, err := Simplify(a, pmath.Vec3{}, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := Simplify(b, pmath.Vec3{}, opts); err != nil {
		t.Fatal(err)
	}

	if len(a.Indices) != len(b.Indices) || len(a.Positions) != len(b.Positions) {
		t.Fatalf("runs differ: %d/%d vs %d/%d", len(a.Positions), len(a.Indices), len(b.Positions), len(b.Indices))
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs", i)
		}
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("position %d differs", i)
		}
	}
}

func TestSimplifyWithoutNormals(t *testing.T) {
	opts := permissiveOptions()
	opts.TargetPercentage = 0.2

	want := PlaneMesh(8)
	if _, err := Simplify(want, pmath.Vec3{}, opts); err != nil {
		t.Fatal(err)
	}

	bare := PlaneMesh(8)
	bare.Normals = nil
	stats, err := Simplify(bare, pmath.Vec3{}, opts)
	if err != nil {
		t.Fatalf("Simplify failed: %v", err)
	}
	if stats.Collapsed == 0 {
		t.Fatal("expected collapses on a plane without normals")
	}
	if len(bare.Normals) != len(bare.Positions) {
		t.Fatalf("got %d normals for %d positions", len(bare.Normals), len(bare.Positions))
	}
	if len(bare.Indices) != len(want.Indices) || len(bare.Positions) != len(want.Positions) {
		t.Fatalf("runs differ: %d/%d vs %d/%d", len(bare.Positions), len(bare.Indices), len(want.Positions), len(want.Indices))
	}
	for i := range want.Indices {
		if bare.Indices[i] != want.Indices[i] {
			t.Fatalf("index %d differs", i)
		}
	}
}

func TestSimplifyWorldOffset(t *testing.T) {
	offset := pmath.Vec3{X: 100, Y: 200, Z: 0}
	opts := permissiveOptions()
	opts.TargetPercentage = 0.3

	local := PlaneMesh(6)
	world := PlaneMesh(6)
	world.Translate(offset)

	if _, err := Simplify(local, pmath.Vec3{}, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := Simplify(world, offset, opts); err != nil {
		t.Fatal(err)
	}

	if len(local.Positions) != len(world.Positions) {
		t.Fatalf("vertex counts differ: %d vs %d", len(local.Positions), len(world.Positions))
	}
	for i := range local.Positions {
		want := local.Positions[i].Add(offset)
		if !approx(world.Positions[i], want) {
			t.Errorf("position %d = %v, want %v", i, world.Positions[i], want)
		}
	}
}

func TestBuildGridMesh(t *testing.T) {
	f := grid.NewHeightField(5, 4)
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			f.Set(x, y, float32(x))
		}
	}

	m, err := BuildGridMesh(f, 2, 0.5)
	if err != nil {
		t.Fatalf("BuildGridMesh failed: %v", err)
	}
	if m.NumVertices() != 20 || m.NumTriangles() != 24 {
		t.Fatalf("got %d vertices, %d triangles", m.NumVertices(), m.NumTriangles())
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("mesh invalid: %v", err)
	}
	if got := m.Positions[3]; got != (pmath.Vec3{X: 6, Y: 0, Z: 1.5}) {
		t.Errorf("vertex 3 = %v", got)
	}

	// Interior slope is heightScale/cellSize = 0.25 rising along +X
	n := m.Normals[1*5+2]
	want := pmath.Vec3{X: -0.25, Z: 1}.Normalize()
	if math.Abs(float64(n.X-want.X)) > 1e-5 || math.Abs(float64(n.Z-want.Z)) > 1e-5 {
		t.Errorf("interior normal = %v, want %v", n, want)
	}

	for i := 0; i < len(m.Indices); i += 3 {
		p0, p1, p2 := m.Positions[m.Indices[i]], m.Positions[m.Indices[i+1]], m.Positions[m.Indices[i+2]]
		if p1.Sub(p0).Cross(p2.Sub(p0)).Z <= 0 {
			t.Fatalf("triangle %d is not facing up", i/3)
		}
	}
}

func TestBuildGridMeshErrors(t *testing.T) {
	if _, err := BuildGridMesh(grid.NewHeightField(1, 5), 1, 1); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh for a single column, got %v", err)
	}
	if _, err := BuildGridMesh(grid.NewHeightField(3, 3), 0, 1); !errors.Is(err, ErrInvalidMesh) {
		t.Errorf("expected ErrInvalidMesh for zero cell size, got %v", err)
	}
}
