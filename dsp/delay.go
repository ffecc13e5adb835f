package dsp

// DelayLine is a fixed-size circular buffer of scalar samples.
type DelayLine struct {
	buffer   []float32
	writePos int
}

// NewDelayLine creates a delay line holding size samples (at least one).
func NewDelayLine(size int) *DelayLine {
	if size < 1 {
		size = 1
	}
	return &DelayLine{buffer: make([]float32, size)}
}

// Len returns the buffer length in samples.
func (d *DelayLine) Len() int {
	return len(d.buffer)
}

// Push writes x and returns the sample written Len()-1 pushes before it.
func (d *DelayLine) Push(x float32) float32 {
	d.buffer[d.writePos] = x
	d.writePos++
	if d.writePos == len(d.buffer) {
		d.writePos = 0
	}
	return d.buffer[d.writePos]
}

// Reset zeroes the buffer without reallocating it.
func (d *DelayLine) Reset() {
	clear(d.buffer)
	d.writePos = 0
}

// Ring4 is a circular buffer of Vec4 frames with independent read and write
// pointers, both advanced once per step.
type Ring4 struct {
	buffer   []Vec4
	readPos  int
	writePos int
}

// NewRing4 creates a ring of size frames (at least two).
func NewRing4(size int) *Ring4 {
	if size < 2 {
		size = 2
	}
	return &Ring4{buffer: make([]Vec4, size)}
}

// Len returns the capacity in frames.
func (r *Ring4) Len() int {
	return len(r.buffer)
}

// SetDelay places the read pointer delay frames behind the write pointer.
// The delay is clamped to [1, Len()-1].
func (r *Ring4) SetDelay(delay int) int {
	n := len(r.buffer)
	if delay < 1 {
		delay = 1
	}
	if delay > n-1 {
		delay = n - 1
	}
	r.readPos = (r.writePos - delay + n) % n
	return delay
}

// Delay returns the current distance between the write and read pointers.
func (r *Ring4) Delay() int {
	n := len(r.buffer)
	return (r.writePos - r.readPos + n) % n
}

// Read returns the frame under the read pointer.
func (r *Ring4) Read() Vec4 {
	return r.buffer[r.readPos]
}

// Write stores v under the write pointer and advances both pointers.
func (r *Ring4) Write(v Vec4) {
	r.buffer[r.writePos] = v
	n := len(r.buffer)
	r.writePos = (r.writePos + 1) % n
	r.readPos = (r.readPos + 1) % n
}

// Reset zeroes the buffer and rewinds both pointers without reallocating.
func (r *Ring4) Reset() {
	clear(r.buffer)
	r.readPos = 0
	r.writePos = 0
}
