package mesh

import (
	"math"

	"gonum.org/v1/gonum/mat"

	pmath "github.com/Faultbox/procmesh/pkg/math"
)

// pinvTolerance drops near-singular directions from the pseudo-inverse.
const pinvTolerance = 0.1

// zeroResidual is the residual treated as an exact fit.
const zeroResidual = 1e-12

// QEF accumulates the quadratic error of a set of planes, each given by a
// point and a normal, and solves for the point closest to all of them.
type QEF struct {
	ata   [9]float64
	atb   [3]float64
	mass  [3]float64
	count int
}

// Add accumulates the plane through p with normal n.
func (q *QEF) Add(p, n pmath.Vec3) {
	nv := vec64(n)
	pv := vec64(p)
	d := nv[0]*pv[0] + nv[1]*pv[1] + nv[2]*pv[2]

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			q.ata[r*3+c] += nv[r] * nv[c]
		}
		q.atb[r] += nv[r] * d
		q.mass[r] += pv[r]
	}
	q.count++
}

// Solve returns the minimizing position and its squared residual. The
// solve is taken relative to the mass point of the added points, so
// under-determined directions collapse onto it.
func (q *QEF) Solve() (pmath.Vec3, float32) {
	if q.count == 0 {
		return pmath.Vec3{}, 0
	}

	var mp [3]float64
	for i := range mp {
		mp[i] = q.mass[i] / float64(q.count)
	}

	// Shift the right-hand side so x is solved relative to the mass point
	var b [3]float64
	for r := 0; r < 3; r++ {
		b[r] = q.atb[r] - (q.ata[r*3]*mp[0] + q.ata[r*3+1]*mp[1] + q.ata[r*3+2]*mp[2])
	}

	x := q.pseudoInverseSolve(b)

	var residual float64
	for r := 0; r < 3; r++ {
		e := b[r] - (q.ata[r*3]*x[0] + q.ata[r*3+1]*x[1] + q.ata[r*3+2]*x[2])
		residual += e * e
	}
	if residual <= zeroResidual {
		residual = 0
	}

	pos := pmath.Vec3{
		X: float32(x[0] + mp[0]),
		Y: float32(x[1] + mp[1]),
		Z: float32(x[2] + mp[2]),
	}
	return pos, float32(residual)
}

func (q *QEF) pseudoInverseSolve(b [3]float64) [3]float64 {
	var x [3]float64

	ata := q.ata
	sym := mat.NewSymDense(3, ata[:])

	var eig mat.EigenSym
	if !eig.Factorize(sym, true) {
		return x
	}
	values := eig.Values(nil)

	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	for k, lambda := range values {
		if math.Abs(lambda) < pinvTolerance {
			continue
		}
		v0, v1, v2 := vectors.At(0, k), vectors.At(1, k), vectors.At(2, k)
		s := (v0*b[0] + v1*b[1] + v2*b[2]) / lambda
		x[0] += s * v0
		x[1] += s * v1
		x[2] += s * v2
	}
	return x
}

// SolveQEF solves the quadratic error of the planes (points[i], normals[i]).
func SolveQEF(points, normals []pmath.Vec3) (pmath.Vec3, float32) {
	var q QEF
	for i := range points {
		if i >= len(normals) {
			break
		}
		q.Add(points[i], normals[i])
	}
	return q.Solve()
}

func vec64(v pmath.Vec3) [3]float64 {
	return [3]float64{float64(v.X), float64(v.Y), float64(v.Z)}
}
