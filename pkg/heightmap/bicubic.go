package heightmap

// bicubicCentre evaluates the cubic convolution surface through a 4x4 block
// of control points at its centre (t = 0.5 on both axes).
func bicubicCentre(p *[4][4]float32) float32 {
	a00 := p[1][1]
	a01 := -.5*p[1][0] + .5*p[1][2]
	a02 := p[1][0] - 2.5*p[1][1] + 2*p[1][2] - .5*p[1][3]
	a03 := -.5*p[1][0] + 1.5*p[1][1] - 1.5*p[1][2] + .5*p[1][3]
	a10 := -.5*p[0][1] + .5*p[2][1]
	a11 := .25*p[0][0] - .25*p[0][2] - .25*p[2][0] + .25*p[2][2]
	a12 := -.5*p[0][0] + 1.25*p[0][1] - p[0][2] + .25*p[0][3] + .5*p[2][0] - 1.25*p[2][1] + p[2][2] - .25*p[2][3]
	a13 := .25*p[0][0] - .75*p[0][1] + .75*p[0][2] - .25*p[0][3] - .25*p[2][0] + .75*p[2][1] - .75*p[2][2] + .25*p[2][3]
	a20 := p[0][1] - 2.5*p[1][1] + 2*p[2][1] - .5*p[3][1]
	a21 := -.5*p[0][0] + .5*p[0][2] + 1.25*p[1][0] - 1.25*p[1][2] - p[2][0] + p[2][2] + .25*p[3][0] - .25*p[3][2]
	a22 := p[0][0] - 2.5*p[0][1] + 2*p[0][2] - .5*p[0][3] - 2.5*p[1][0] + 6.25*p[1][1] - 5*p[1][2] + 1.25*p[1][3] +
		2*p[2][0] - 5*p[2][1] + 4*p[2][2] - p[2][3] - .5*p[3][0] + 1.25*p[3][1] - p[3][2] + .25*p[3][3]
	a23 := -.5*p[0][0] + 1.5*p[0][1] - 1.5*p[0][2] + .5*p[0][3] + 1.25*p[1][0] - 3.75*p[1][1] + 3.75*p[1][2] - 1.25*p[1][3] -
		p[2][0] + 3*p[2][1] - 3*p[2][2] + p[2][3] + .25*p[3][0] - .75*p[3][1] + .75*p[3][2] - .25*p[3][3]
	a30 := -.5*p[0][1] + 1.5*p[1][1] - 1.5*p[2][1] + .5*p[3][1]
	a31 := .25*p[0][0] - .25*p[0][2] - .75*p[1][0] + .75*p[1][2] + .75*p[2][0] - .75*p[2][2] - .25*p[3][0] + .25*p[3][2]
	a32 := -.5*p[0][0] + 1.25*p[0][1] - p[0][2] + .25*p[0][3] + 1.5*p[1][0] - 3.75*p[1][1] + 3*p[1][2] - .75*p[1][3] -
		1.5*p[2][0] + 3.75*p[2][1] - 3*p[2][2] + .75*p[2][3] + .5*p[3][0] - 1.25*p[3][1] + p[3][2] - .25*p[3][3]
	a33 := .25*p[0][0] - .75*p[0][1] + .75*p[0][2] - .25*p[0][3] - .75*p[1][0] + 2.25*p[1][1] - 2.25*p[1][2] + .75*p[1][3] +
		.75*p[2][0] - 2.25*p[2][1] + 2.25*p[2][2] - .75*p[2][3] - .25*p[3][0] + .75*p[3][1] - .75*p[3][2] + .25*p[3][3]

	const t, t2, t3 = 0.5, 0.25, 0.125
	return (a00 + a01*t + a02*t2 + a03*t3) +
		(a10+a11*t+a12*t2+a13*t3)*t +
		(a20+a21*t+a22*t2+a23*t3)*t2 +
		(a30+a31*t+a32*t2+a33*t3)*t3
}
