package dsp

import "math"

// Coefs holds normalized second-order IIR coefficients (a0 == 1).
type Coefs struct {
	B0, B1, B2 float32
	A1, A2     float32
}

// rbj computes the shared RBJ denominator. The cutoff is clamped to
// 0.49*sampleRate to keep the poles inside the unit circle.
func rbj(sampleRate, freq, q float32) (a1, a2 float64) {
	ratio := float64(freq) / float64(sampleRate)
	if sampleRate <= 0 || ratio < 0 {
		ratio = 0
	}
	w0 := 2 * math.Pi * math.Min(ratio, 0.49)
	alpha := math.Sin(w0) / (2 * float64(q))
	a0 := 1 + alpha
	return -2 * math.Cos(w0) / a0, (1 - alpha) / a0
}

func safeQ(q float32) float32 {
	if q <= 0 || q != q {
		return 0.707
	}
	return q
}

// LowPass sets lowpass coefficients.
func (c *Coefs) LowPass(sampleRate, freq, q float32) {
	a1, a2 := rbj(sampleRate, freq, safeQ(q))
	b0 := (1 + a1 + a2) / 4
	c.A1, c.A2 = float32(a1), float32(a2)
	c.B0, c.B1, c.B2 = float32(b0), float32(2*b0), float32(b0)
}

// BandPass sets bandpass coefficients.
func (c *Coefs) BandPass(sampleRate, freq, q float32) {
	q = safeQ(q)
	a1, a2 := rbj(sampleRate, freq, q)
	b0 := (1 - a2) * float64(q) / 2
	c.A1, c.A2 = float32(a1), float32(a2)
	c.B0, c.B1, c.B2 = float32(b0), 0, float32(-b0)
}

// HighPass sets highpass coefficients.
func (c *Coefs) HighPass(sampleRate, freq, q float32) {
	a1, a2 := rbj(sampleRate, freq, safeQ(q))
	b0 := (1 - a1 + a2) / 4
	c.A1, c.A2 = float32(a1), float32(a2)
	c.B0, c.B1, c.B2 = float32(b0), float32(-2*b0), float32(b0)
}

// DCGain returns the steady-state response to a constant input.
func (c *Coefs) DCGain() float32 {
	den := 1 + c.A1 + c.A2
	if den == 0 {
		return 0
	}
	return (c.B0 + c.B1 + c.B2) / den
}

// Filter is a scalar direct-form-I biquad.
type Filter struct {
	Coefs

	x1, x2 float32
	y1, y2 float32
}

// DF1 processes one sample.
func (f *Filter) DF1(x float32) float32 {
	y := f.B0*x + f.B1*f.x1 + f.B2*f.x2 - f.A1*f.y1 - f.A2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// Clear seeds the history as if input had been applied forever.
func (f *Filter) Clear(input float32) {
	y := input * f.DCGain()
	f.x1, f.x2 = input, input
	f.y1, f.y2 = y, y
}

// Reset zeroes the history and keeps the coefficients.
func (f *Filter) Reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
}

// Filter4 runs the same biquad over the four lanes of a Vec4.
type Filter4 struct {
	Coefs

	x1, x2 Vec4
	y1, y2 Vec4
}

// Process filters one four-lane sample.
func (f *Filter4) Process(x Vec4) Vec4 {
	var y Vec4
	for i := range y {
		y[i] = Flush(f.B0*x[i] + f.B1*f.x1[i] + f.B2*f.x2[i] - f.A1*f.y1[i] - f.A2*f.y2[i])
	}
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

// Reset zeroes the history and keeps the coefficients.
func (f *Filter4) Reset() {
	f.x1, f.x2 = Vec4{}, Vec4{}
	f.y1, f.y2 = Vec4{}, Vec4{}
}
