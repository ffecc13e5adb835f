package rippler

import "github.com/cwbudde/algo-rippler/dsp"

// Comb widens a stereo signal by adding a 20 ms echo to the left channel
// and subtracting it from the right.
type Comb struct {
	left, right *dsp.DelayLine
}

// NewComb allocates the delay for sampleRate.
func NewComb(sampleRate int) *Comb {
	n := 20*sampleRate/1000 + 1
	return &Comb{left: dsp.NewDelayLine(n), right: dsp.NewDelayLine(n)}
}

// Process runs one stereo frame.
func (c *Comb) Process(l, r float32) (float32, float32) {
	dl := c.left.Push(l)
	dr := c.right.Push(r)
	return l + 0.33*dl, r - 0.33*dr
}

// Reset clears the delay.
func (c *Comb) Reset() {
	c.left.Reset()
	c.right.Reset()
}
