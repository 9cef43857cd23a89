package mesh

import (
	"math"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"

	"github.com/Faultbox/procmesh/internal/logger"
	pmath "github.com/Faultbox/procmesh/pkg/math"
)

const (
	// Meshes below either size are returned untouched.
	minSimplifyVertices = 16
	minSimplifyIndices  = 16 * 3

	// maxCollapseDegree caps the combined triangle count around an edge.
	maxCollapseDegree = 16
	// hubDegree is the combined degree above which collapses are penalised.
	hubDegree = 10
)

// SimplifierOptions tunes Simplify.
type SimplifierOptions struct {
	Enabled bool `yaml:"enabled"`
	// Seed starts the edge sampling stream. The stream is seeded once per
	// Simplify call and carries on across iterations, so later iterations
	// sample different edges than the first.
	Seed int32 `yaml:"seed"`
	// EdgeFraction is the share of candidate edges sampled per iteration.
	EdgeFraction  float32 `yaml:"edge_fraction"`
	MaxIterations int32   `yaml:"max_iterations"`
	// TargetPercentage stops the loop once the triangle count falls to this
	// share of the input.
	TargetPercentage float32 `yaml:"target_percentage"`
	// MaxError bounds the collapse cost, computed as 1/qef residual.
	MaxError       float32 `yaml:"max_error"`
	MaxEdgeSize    float32 `yaml:"max_edge_size"`
	MinAngleCosine float32 `yaml:"min_angle_cosine"`
}

// DefaultSimplifierOptions returns disabled options with the stock tuning.
func DefaultSimplifierOptions() SimplifierOptions {
	return SimplifierOptions{
		Enabled:          false,
		Seed:             42,
		EdgeFraction:     0.125,
		MaxIterations:    10,
		TargetPercentage: 0.05,
		MaxError:         5,
		MaxEdgeSize:      2.5,
		MinAngleCosine:   0.8,
	}
}

// Stats reports what a Simplify call did.
type Stats struct {
	Skipped         bool `json:"skipped"`
	InputVertices   int  `json:"input_vertices"`
	InputTriangles  int  `json:"input_triangles"`
	OutputVertices  int  `json:"output_vertices"`
	OutputTriangles int  `json:"output_triangles"`
	Iterations      int  `json:"iterations"`
	Collapsed       int  `json:"collapsed"`
}

type triangle [3]uint32

type vertex struct {
	position pmath.Vec3
	normal   pmath.Vec3
}

// simplifier holds the working buffers of one Simplify call.
type simplifier struct {
	opts SimplifierOptions
	rng  *rand.Rand

	vertices []vertex
	tris     []triangle
	edges    []Edge
	degree   []int

	collapsePosition []pmath.Vec3
	collapseNormal   []pmath.Vec3
	collapseValid    []int
	collapseEdgeID   []int
	collapseTarget   []int
	minEdgeCost      []float32

	triBuffer  []triangle
	edgeBuffer []Edge
}

// Simplify reduces m in place by collapsing interior edges whose quadric
// error stays below opts.MaxError. Boundary vertices are never moved.
// worldOffset is removed from positions while solving and restored after.
//
// Meshes that are too small, or disabled options, leave m untouched and
// return Stats.Skipped. Structurally broken meshes return ErrInvalidMesh.
// A mesh without normals gets area weighted ones before simplifying.
func Simplify(m *Mesh, worldOffset pmath.Vec3, opts SimplifierOptions) (Stats, error) {
	stats := Stats{
		InputVertices:  m.NumVertices(),
		InputTriangles: m.NumTriangles(),
	}

	if err := m.Validate(); err != nil {
		return stats, err
	}

	log := logger.Named("simplify")

	if !opts.Enabled || len(m.Positions) < minSimplifyVertices || len(m.Indices) < minSimplifyIndices {
		stats.Skipped = true
		stats.OutputVertices = stats.InputVertices
		stats.OutputTriangles = stats.InputTriangles
		log.Debug("simplify skipped",
			zap.Bool("enabled", opts.Enabled),
			zap.Int("vertices", stats.InputVertices),
			zap.Int("indices", len(m.Indices)))
		return stats, nil
	}

	if len(m.Normals) == 0 {
		m.RecomputeNormals()
	}
	s := newSimplifier(m, worldOffset, opts)

	target := int(float32(len(s.tris)) * opts.TargetPercentage)
	for int32(stats.Iterations) < opts.MaxIterations && len(s.tris) > target {
		stats.Iterations++

		if s.findValidCollapses() == 0 {
			break
		}
		stats.Collapsed += s.collapseEdges()
		s.removeTriangles()
		s.removeEdges()
	}

	s.writeBack(m, worldOffset)

	stats.OutputVertices = m.NumVertices()
	stats.OutputTriangles = m.NumTriangles()

	log.Debug("simplify finished",
		zap.Int("iterations", stats.Iterations),
		zap.Int("collapsed", stats.Collapsed),
		zap.Int("triangles_in", stats.InputTriangles),
		zap.Int("triangles_out", stats.OutputTriangles))
	return stats, nil
}

func newSimplifier(m *Mesh, offset pmath.Vec3, opts SimplifierOptions) *simplifier {
	nv := len(m.Positions)
	s := &simplifier{
		opts:     opts,
		rng:      rand.New(rand.NewSource(uint64(int64(opts.Seed)))),
		vertices: make([]vertex, nv),
		tris:     make([]triangle, len(m.Indices)/3),
		degree:   make([]int, nv),

		collapseEdgeID: make([]int, nv),
		collapseTarget: make([]int, nv),
		minEdgeCost:    make([]float32, nv),
	}

	for i := range m.Positions {
		s.vertices[i] = vertex{
			position: m.Positions[i].Sub(offset),
			normal:   m.Normals[i],
		}
	}
	for i := range s.tris {
		s.tris[i] = triangle{m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]}
		for _, idx := range s.tris[i] {
			s.degree[idx]++
		}
	}

	s.edges = candidateEdges(s.tris, nv)
	s.collapsePosition = make([]pmath.Vec3, len(s.edges))
	s.collapseNormal = make([]pmath.Vec3, len(s.edges))
	s.collapseValid = make([]int, 0, len(s.edges))
	s.triBuffer = make([]triangle, 0, len(s.tris))
	s.edgeBuffer = make([]Edge, 0, len(s.edges))
	return s
}

// findValidCollapses scores a random sample of edges and records, per
// vertex, the cheapest valid edge touching it.
func (s *simplifier) findValidCollapses() int {
	for i := range s.collapseEdgeID {
		s.collapseEdgeID[i] = -1
		s.collapseTarget[i] = -1
		s.minEdgeCost[i] = math.MaxFloat32
	}
	s.collapseValid = s.collapseValid[:0]

	if len(s.edges) == 0 {
		return 0
	}

	numRandom := int(float32(len(s.edges)) * s.opts.EdgeFraction)
	sample := make([]int, numRandom)
	for i := range sample {
		sample[i] = s.rng.Intn(len(s.edges))
	}
	slices.Sort(sample)

	maxEdgeSq := s.opts.MaxEdgeSize * s.opts.MaxEdgeSize

	for _, i := range sample {
		e := s.edges[i]
		vMin, vMax := s.vertices[e.Min], s.vertices[e.Max]

		if vMin.normal.Dot(vMax.normal) < s.opts.MinAngleCosine {
			continue
		}
		if vMax.position.DistanceSquared(vMin.position) > maxEdgeSq {
			continue
		}
		deg := s.degree[e.Min] + s.degree[e.Max]
		if deg > maxCollapseDegree {
			continue
		}

		var q QEF
		q.Add(vMin.position, vMin.normal)
		q.Add(vMax.position, vMax.normal)
		pos, cost := q.Solve()
		if cost > 0 {
			cost = 1 / cost
		}
		cost += float32(max(0, deg-hubDegree)) * (s.opts.MaxError * 0.1)
		if cost > s.opts.MaxError {
			continue
		}

		s.collapseValid = append(s.collapseValid, i)
		s.collapseNormal[i] = vMin.normal.Add(vMax.normal).Scale(0.5)
		s.collapsePosition[i] = pos

		if cost < s.minEdgeCost[e.Min] {
			s.minEdgeCost[e.Min] = cost
			s.collapseEdgeID[e.Min] = i
		}
		if cost < s.minEdgeCost[e.Max] {
			s.minEdgeCost[e.Max] = cost
			s.collapseEdgeID[e.Max] = i
		}
	}
	return len(s.collapseValid)
}

// collapseEdges commits every valid edge that is the best choice of both of
// its endpoints, folding Max into Min.
func (s *simplifier) collapseEdges() int {
	collapsed := 0
	for _, i := range s.collapseValid {
		e := s.edges[i]
		if s.collapseEdgeID[e.Min] != i || s.collapseEdgeID[e.Max] != i {
			continue
		}
		s.collapseTarget[e.Max] = int(e.Min)
		s.vertices[e.Min].position = s.collapsePosition[i]
		s.vertices[e.Min].normal = s.collapseNormal[i]
		collapsed++
	}
	return collapsed
}

func (s *simplifier) remap(idx uint32) uint32 {
	if t := s.collapseTarget[idx]; t >= 0 {
		return uint32(t)
	}
	return idx
}

// removeTriangles applies the collapse targets, drops triangles that became
// degenerate and recounts vertex degrees.
func (s *simplifier) removeTriangles() {
	clear(s.degree)
	s.triBuffer = s.triBuffer[:0]

	for _, t := range s.tris {
		t = triangle{s.remap(t[0]), s.remap(t[1]), s.remap(t[2])}
		if t[0] == t[1] || t[0] == t[2] || t[1] == t[2] {
			continue
		}
		for _, idx := range t {
			s.degree[idx]++
		}
		s.triBuffer = append(s.triBuffer, t)
	}
	s.tris, s.triBuffer = s.triBuffer, s.tris
}

// removeEdges applies the collapse targets and drops edges that shrank to a
// single vertex.
func (s *simplifier) removeEdges() {
	s.edgeBuffer = s.edgeBuffer[:0]
	for _, e := range s.edges {
		e = NewEdge(s.remap(e.Min), s.remap(e.Max))
		if e.Min != e.Max {
			s.edgeBuffer = append(s.edgeBuffer, e)
		}
	}
	s.edges, s.edgeBuffer = s.edgeBuffer, s.edges
}

// writeBack compacts away unreferenced vertices and stores the result in m.
func (s *simplifier) writeBack(m *Mesh, offset pmath.Vec3) {
	remap := make([]int, len(s.vertices))
	for i := range remap {
		remap[i] = -1
	}
	for _, t := range s.tris {
		for _, idx := range t {
			remap[idx] = 0
		}
	}

	hasColors := len(m.Colors) == len(s.vertices)
	positions := make([]pmath.Vec3, 0, len(s.vertices))
	normals := make([]pmath.Vec3, 0, len(s.vertices))
	var colors []Color
	if hasColors {
		colors = make([]Color, 0, len(s.vertices))
	}

	for i, v := range s.vertices {
		if remap[i] < 0 {
			continue
		}
		remap[i] = len(positions)
		positions = append(positions, v.position.Add(offset))
		normals = append(normals, v.normal)
		if hasColors {
			colors = append(colors, m.Colors[i])
		}
	}

	indices := make([]uint32, 0, len(s.tris)*3)
	for _, t := range s.tris {
		indices = append(indices, uint32(remap[t[0]]), uint32(remap[t[1]]), uint32(remap[t[2]]))
	}

	m.Positions = positions
	m.Normals = normals
	m.Colors = colors
	m.Indices = indices
}
