package dsp

// Vec4 is a four-lane sample vector. The lanes are independent channels that
// share one set of filter coefficients; which lane carries which signal is a
// caller convention.
type Vec4 [4]float32

// Splat returns a vector with every lane set to v.
func Splat(v float32) Vec4 {
	return Vec4{v, v, v, v}
}

// Add returns a+b lane by lane.
func (a Vec4) Add(b Vec4) Vec4 {
	return Vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]}
}

// Sub returns a-b lane by lane.
func (a Vec4) Sub(b Vec4) Vec4 {
	return Vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]}
}

// Mul returns a*b lane by lane.
func (a Vec4) Mul(b Vec4) Vec4 {
	return Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

// Scale multiplies every lane by s.
func (a Vec4) Scale(s float32) Vec4 {
	return Vec4{a[0] * s, a[1] * s, a[2] * s, a[3] * s}
}

// MulAdd returns a + b*s.
func (a Vec4) MulAdd(b Vec4, s float32) Vec4 {
	return Vec4{a[0] + b[0]*s, a[1] + b[1]*s, a[2] + b[2]*s, a[3] + b[3]*s}
}

// Abs returns |a| lane by lane.
func (a Vec4) Abs() Vec4 {
	for i, v := range a {
		if v < 0 {
			a[i] = -v
		}
	}
	return a
}

// Fold sums the two stereo pairs into one frame: (lane0+lane2, lane1+lane3).
func (a Vec4) Fold() (float32, float32) {
	return a[0] + a[2], a[1] + a[3]
}

// Flush zeroes denormal lanes.
func (a Vec4) Flush() Vec4 {
	return Vec4{Flush(a[0]), Flush(a[1]), Flush(a[2]), Flush(a[3])}
}
