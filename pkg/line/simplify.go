// Package line simplifies 2D polylines and extrudes them into flat
// triangle strips.
package line

import (
	"container/heap"

	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// minArea is the smallest triangle area treated as a real corner.
// Collinear points fall below it and are removed first.
const minArea = 1e-4

// SimplifyVisvalingam drops every interior point whose effective area is at
// or below areaThreshold. The effective area of a point is the area of the
// triangle it forms with its surviving neighbours at the time it would be
// removed, never less than the area of an earlier removal. Endpoints are
// always kept; inputs of fewer than three points are returned as a copy.
func SimplifyVisvalingam(points []pmath.Vec2, areaThreshold float32) []pmath.Vec2 {
	if len(points) < 3 {
		return append([]pmath.Vec2(nil), points...)
	}

	areas := effectiveAreas(points)
	out := make([]pmath.Vec2, 0, len(points))
	last := len(points) - 1
	for i, p := range points {
		if i == 0 || i == last || areas[i] > areaThreshold {
			out = append(out, p)
		}
	}
	return out
}

func effectiveAreas(points []pmath.Vec2) []float32 {
	areas := make([]float32, len(points))
	nodes := make([]*vertexNode, len(points))
	h := make(areaHeap, 0, len(points))

	for i := 1; i < len(points)-1; i++ {
		area := triangleArea(points[i-1], points[i], points[i+1])
		if area > minArea {
			nodes[i] = &vertexNode{vertex: i, prev: i - 1, next: i + 1, area: area}
			h = append(h, nodes[i])
		}
	}
	heap.Init(&h)

	var floor float32
	for h.Len() > 0 {
		cur := heap.Pop(&h).(*vertexNode)
		// A point cannot outlive a point removed before it.
		floor = max(floor, cur.area)

		if prev := nodes[cur.prev]; prev != nil {
			prev.next = cur.next
			prev.area = triangleArea(points[prev.prev], points[prev.vertex], points[prev.next])
			heap.Fix(&h, prev.index)
		}
		if next := nodes[cur.next]; next != nil {
			next.prev = cur.prev
			next.area = triangleArea(points[next.prev], points[next.vertex], points[next.next])
			heap.Fix(&h, next.index)
		}

		areas[cur.vertex] = floor
		nodes[cur.vertex] = nil
	}
	return areas
}

func triangleArea(p, c, n pmath.Vec2) float32 {
	a, b := n.Sub(c), p.Sub(c)
	return 0.5 * pmath.Abs(a.X*b.Y-a.Y*b.X)
}

type vertexNode struct {
	vertex, prev, next int
	area               float32
	index              int
}

// areaHeap is a min-heap of nodes ordered by area.
type areaHeap []*vertexNode

func (h areaHeap) Len() int           { return len(h) }
func (h areaHeap) Less(i, j int) bool { return h[i].area < h[j].area }

func (h areaHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *areaHeap) Push(x any) {
	n := x.(*vertexNode)
	n.index = len(*h)
	*h = append(*h, n)
}

func (h *areaHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*h = old[:len(old)-1]
	return n
}

// SimplifyDouglasPeucker reduces points so that no removed point lies
// further than tolerance from the simplified line. Unless highestQuality
// is set, points closer than tolerance to their predecessor are dropped
// first, which is faster but coarser. Inputs of fewer than three points
// are returned as a copy.
func SimplifyDouglasPeucker(points []pmath.Vec2, tolerance float32, highestQuality bool) []pmath.Vec2 {
	if len(points) < 3 {
		return append([]pmath.Vec2(nil), points...)
	}

	sqTolerance := tolerance * tolerance
	if !highestQuality {
		points = simplifyRadial(points, sqTolerance)
	}

	last := len(points) - 1
	out := make([]pmath.Vec2, 0, len(points))
	out = append(out, points[0])
	out = douglasPeuckerStep(points, 0, last, sqTolerance, out)
	return append(out, points[last])
}

func simplifyRadial(points []pmath.Vec2, sqTolerance float32) []pmath.Vec2 {
	prev := points[0]
	out := []pmath.Vec2{prev}
	for _, p := range points[1:] {
		if distSquared(p, prev) > sqTolerance {
			out = append(out, p)
			prev = p
		}
	}
	if end := points[len(points)-1]; prev != end {
		out = append(out, end)
	}
	return out
}

func douglasPeuckerStep(points []pmath.Vec2, first, last int, sqTolerance float32, out []pmath.Vec2) []pmath.Vec2 {
	maxDist := sqTolerance
	index := -1
	for i := first + 1; i < last; i++ {
		if d := segmentDistSquared(points[i], points[first], points[last]); d > maxDist {
			index = i
			maxDist = d
		}
	}

	if index < 0 {
		return out
	}
	if index-first > 1 {
		out = douglasPeuckerStep(points, first, index, sqTolerance, out)
	}
	out = append(out, points[index])
	if last-index > 1 {
		out = douglasPeuckerStep(points, index, last, sqTolerance, out)
	}
	return out
}

func distSquared(a, b pmath.Vec2) float32 {
	d := a.Sub(b)
	return d.Dot(d)
}

// segmentDistSquared returns the squared distance from p to segment ab.
func segmentDistSquared(p, a, b pmath.Vec2) float32 {
	closest := a
	d := b.Sub(a)
	if lenSq := d.Dot(d); lenSq != 0 {
		t := p.Sub(a).Dot(d) / lenSq
		switch {
		case t > 1:
			closest = b
		case t > 0:
			closest = a.Add(d.Scale(t))
		}
	}
	return distSquared(p, closest)
}
