package mesh

import "slices"

// Edge is an undirected edge stored with its smaller vertex first.
type Edge struct {
	Min uint32
	Max uint32
}

// NewEdge orders a and b into an Edge.
func NewEdge(a, b uint32) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{Min: a, Max: b}
}

// Key packs the edge into one sortable value.
func (e Edge) Key() uint64 {
	return uint64(e.Min)<<32 | uint64(e.Max)
}

// candidateEdges returns the collapsible edges of tris: every edge shared by
// at least two triangles and touching no boundary vertex. A vertex is on the
// boundary when it belongs to an edge used by exactly one triangle.
func candidateEdges(tris []triangle, numVertices int) []Edge {
	if len(tris) == 0 {
		return nil
	}

	all := make([]Edge, 0, len(tris)*3)
	for _, t := range tris {
		all = append(all,
			NewEdge(t[0], t[1]),
			NewEdge(t[1], t[2]),
			NewEdge(t[0], t[2]),
		)
	}
	slices.SortFunc(all, func(a, b Edge) int {
		switch ka, kb := a.Key(), b.Key(); {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	})

	boundary := make([]bool, numVertices)
	shared := make([]Edge, 0, len(all)/2)

	flush := func(e Edge, count int) {
		if count == 1 {
			boundary[e.Min] = true
			boundary[e.Max] = true
			return
		}
		shared = append(shared, e)
	}

	prev, count := all[0], 1
	for _, cur := range all[1:] {
		if cur == prev {
			count++
			continue
		}
		flush(prev, count)
		prev, count = cur, 1
	}
	flush(prev, count)

	edges := shared[:0]
	for _, e := range shared {
		if !boundary[e.Min] && !boundary[e.Max] {
			edges = append(edges, e)
		}
	}
	return edges
}
