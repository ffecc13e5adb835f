package models

import (
	"math"
	"sort"

	pdefd "github.com/cwbudde/algo-pde/fd"
	pdepoisson "github.com/cwbudde/algo-pde/poisson"
)

// gridPoints is the 1-D grid size used for the discrete Laplacian spectrum.
// The lowest eight modes of a 64 point grid stay within 1% of the
// continuous (k*pi)^2 values.
const gridPoints = 64

// squareMembraneTable returns the modes of a square membrane with clamped
// edges: sqrt(lambda_m + lambda_n) over the first eight eigenvalues of the
// 1-D Dirichlet Laplacian, sorted.
func squareMembraneTable() Table {
	lambda := pdefd.Eigenvalues(gridPoints, 1.0/float64(gridPoints+1), pdepoisson.Dirichlet)
	if len(lambda) < 8 {
		// Continuous fallback keeps the table usable.
		lambda = make([]float64, 8)
		for k := range lambda {
			w := float64(k+1) * math.Pi
			lambda[k] = w * w
		}
	}
	modes := make([]float64, 0, Size)
	for m := 0; m < 8; m++ {
		for n := 0; n < 8; n++ {
			modes = append(modes, math.Sqrt(lambda[m]+lambda[n]))
		}
	}
	sort.Float64s(modes)
	var raw [Size]float64
	copy(raw[:], modes)
	return normalize(raw)
}

// circularMembraneTable returns the lowest 64 Bessel zeros j(m,n) of an
// ideal circular drumhead, sorted and normalized to j(0,1).
func circularMembraneTable() Table {
	const (
		orders        = 24
		zerosPerOrder = 12
	)
	zeros := make([]float64, 0, orders*zerosPerOrder)
	for m := 0; m < orders; m++ {
		zeros = append(zeros, besselZeros(m, zerosPerOrder)...)
	}
	sort.Float64s(zeros)
	var raw [Size]float64
	copy(raw[:], zeros)
	return normalize(raw)
}

// besselZeros finds the first count positive zeros of J_m by scanning for
// sign changes and refining each by bisection.
func besselZeros(m, count int) []float64 {
	const (
		step = 0.05
		xMax = 80.0
	)
	out := make([]float64, 0, count)
	x := float64(m) + step
	prev := math.Jn(m, x)
	for len(out) < count && x < xMax {
		next := x + step
		cur := math.Jn(m, next)
		if prev == 0 {
			out = append(out, x)
		} else if (prev < 0) != (cur < 0) {
			out = append(out, bisect(m, x, next))
		}
		x, prev = next, cur
	}
	return out
}

func bisect(m int, lo, hi float64) float64 {
	flo := math.Jn(m, lo)
	for range 60 {
		mid := 0.5 * (lo + hi)
		fm := math.Jn(m, mid)
		if (fm < 0) == (flo < 0) {
			lo, flo = mid, fm
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi)
}
