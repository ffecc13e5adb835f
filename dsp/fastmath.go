package dsp

import (
	"math"

	"github.com/cwbudde/algo-approx"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
)

const ln2 = 0.69314718055994530942

// Exp is a fast float32 exponential for per-sample and per-note paths where a
// few ulps of error are inaudible.
func Exp(x float32) float32 {
	return approx.FastExp(x)
}

// Pow2 returns an approximation of 2^x.
func Pow2(x float32) float32 {
	return approx.FastExp(x * ln2)
}

// DBToGain converts decibels to a linear amplitude factor.
func DBToGain(db float32) float32 {
	return Exp(db * (math.Ln10 / 20))
}

// Flush converts denormal numbers to zero.
func Flush(x float32) float32 {
	return float32(dspcore.FlushDenormals(float64(x)))
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 limits v to [0, 1].
func Clamp01(v float32) float32 {
	return Clamp(v, 0, 1)
}
