package rippler

import (
	"math"

	"github.com/cwbudde/algo-rippler/dsp"
)

// tubeLen is the delay buffer size, enough for 10 Hz at 200 kHz.
const tubeLen = 20000

// Waveguide is a delay-line tube with a one-pole loss filter. Open tubes
// feed back with a positive sign. Closed tubes feed back inverted through
// half the delay, so the loop period stays at f0 with odd harmonics only.
type Waveguide struct {
	closed     bool
	sampleRate float64
	mat        Material
	radius     float32

	tube  *dsp.Ring4
	decay float32
	y1    dsp.Vec4
}

func newWaveguide() *Waveguide {
	return &Waveguide{tube: dsp.NewRing4(tubeLen), radius: 0.5}
}

// Update tunes the tube to f0 and sets the loop decay for velocity vel.
func (w *Waveguide) Update(f0, vel float32, isRelease bool) {
	freq := math.Max(float64(f0), minAudibleHz)
	tlen := w.sampleRate / freq
	if w.closed {
		tlen *= 0.5
	}
	w.tube.SetDelay(int(tlen))

	decayK := math.Min(maxDecay, math.Exp(math.Log(float64(w.mat.Decay))+float64(vel*w.mat.VelDecay)*velLogRange))
	if isRelease {
		decayK *= float64(w.mat.Rel)
	}
	if decayK > 0 && w.sampleRate > 0 {
		w.decay = float32(math.Exp(-math.Pi * 125000 / (freq * w.sampleRate * decayK)))
	} else {
		w.decay = 0
	}
}

// Delay returns the tube length in samples.
func (w *Waveguide) Delay() int {
	return w.tube.Delay()
}

// Process runs one step and returns the damped sample fed back into the
// tube.
func (w *Waveguide) Process(in dsp.Vec4) dsp.Vec4 {
	sample := w.tube.Read()
	var out dsp.Vec4
	for i := range out {
		y := w.radius*sample[i] + (1-w.radius)*w.y1[i]
		w.y1[i] = dsp.Flush(y)
		out[i] = w.y1[i] * w.decay
	}
	if w.closed {
		w.tube.Write(in.Sub(out))
	} else {
		w.tube.Write(in.Add(out))
	}
	return out
}

// Clear zeroes the tube and the loss filter without reallocating. The
// delay length is kept.
func (w *Waveguide) Clear() {
	delay := w.tube.Delay()
	w.tube.Reset()
	w.tube.SetDelay(delay)
	w.y1 = dsp.Vec4{}
}
