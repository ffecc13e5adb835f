package rippler

import (
	"math"

	"github.com/cwbudde/algo-rippler/dsp"
)

// malletImpulse is the seed amplitude of a strike.
const malletImpulse = 2.0

// Mallet produces a 100 ms exponentially decaying impulse through a
// bandpass tuned to the strike frequency.
type Mallet struct {
	filter  dsp.Filter
	impulse float32
	env     float32
	elapsed int
}

// Trigger starts a new strike.
func (m *Mallet) Trigger(sampleRate, freq float32) {
	m.filter.BandPass(sampleRate, freq, 0.707)
	m.filter.Reset()
	m.elapsed = int(sampleRate / 10)
	m.impulse = malletImpulse
	m.env = float32(math.Exp(-1 / (0.1 * float64(sampleRate))))
}

// Process returns the next excitation sample, or 0 once the strike is over.
func (m *Mallet) Process() float32 {
	if m.elapsed == 0 {
		return 0
	}
	sample := m.filter.DF1(m.impulse) * 2
	m.elapsed--
	m.impulse *= m.env
	return sample
}

// Active reports whether the strike is still running.
func (m *Mallet) Active() bool {
	return m.elapsed > 0
}

// Clear stops the strike.
func (m *Mallet) Clear() {
	m.elapsed = 0
	m.impulse = 0
	m.filter.Reset()
}

// malletFrequency maps stiffness and normalized velocity onto the strike
// frequency, moving logarithmically across the 100..5000 Hz range.
func malletFrequency(stiffness, velStiffness, vel float32) float32 {
	const logRange = 3.912023005428146 // ln(5000) - ln(100)
	if stiffness < 100 {
		stiffness = 100
	}
	f := dsp.Exp(float32(math.Log(float64(stiffness))) + vel*velStiffness*logRange)
	return dsp.Clamp(f, 100, 5000)
}
