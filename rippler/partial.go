package rippler

import (
	"math"

	"github.com/cwbudde/algo-rippler/dsp"
)

const (
	// nyquistSafety is the fraction of the sample rate above which a mode
	// is left silent.
	nyquistSafety = 0.48
	minAudibleHz  = 20.0
	maxAudibleHz  = 20000.0
	maxDecay      = 100.0
	// velLogRange spans the 0.01..100 decay range: ln(100) - ln(0.01).
	velLogRange = 9.210340371976184
)

// Material is the set of shaping parameters a resonator pushes into each of
// its modes and into its waveguide.
type Material struct {
	Decay     float32 // seconds, 0.01..100
	Damp      float32 // -1..1
	Tone      float32 // -1..1
	Hit       float32 // 0.02..0.5
	Rel       float32 // release decay multiplier, 0..1
	Inharm    float32 // 0.0001..1
	VelDecay  float32
	VelHit    float32
	VelInharm float32
}

// Partial is one resonant mode: a two-pole bandpass run over four lanes that
// share its coefficients.
type Partial struct {
	k          int
	sampleRate float64
	mat        Material

	// normalized by a0
	b0, b2 float32
	a1, a2 float32
	inert  bool

	x1, x2 dsp.Vec4
	y1, y2 dsp.Vec4
}

func newPartial(k int) Partial {
	return Partial{k: k, inert: true}
}

// Update recomputes the mode for fundamental f0, table ratio, the table's
// highest ratio and velocity vel in 0..1. Modes that would sit at or above
// nyquistSafety*sampleRate, below minAudibleHz, or with no decay are made
// inert: they output silence until the next update.
func (p *Partial) Update(f0, ratio, ratioMax, vel float32, isRelease bool) {
	m := &p.mat
	sr := p.sampleRate
	fund := float64(f0)
	r := float64(ratio)
	v := float64(vel)
	logVel := v * velLogRange

	inharm := math.Min(1, math.Exp(math.Log(float64(m.Inharm))+logVel*float64(m.VelInharm))) - 0.0001
	inharm = math.Max(inharm, 0)
	inharmK := math.Sqrt(1 + inharm*math.Exp2(r-1))
	fk := fund * r * inharmK

	decayK := math.Min(maxDecay, math.Exp(math.Log(float64(m.Decay))+logVel*float64(m.VelDecay)))
	if isRelease {
		decayK *= float64(m.Rel)
	}

	if sr <= 0 || !(fk < nyquistSafety*sr) || fk < minAudibleHz || !(decayK > 0) {
		p.setInert()
		return
	}

	fMax := math.Min(maxAudibleHz, fund*float64(ratioMax)*inharmK)
	omega := 2 * math.Pi * fk / sr
	alpha := 2 * math.Pi / sr

	ref := fund
	if m.Damp > 0 {
		ref = fMax
	}
	decayK /= math.Pow(ref/fk, 2*float64(m.Damp))

	var toneGain float64
	if m.Tone <= 0 {
		toneGain = math.Pow(fk/fund, 2*float64(m.Tone))
	} else {
		toneGain = math.Pow(fk/fMax, 2*float64(m.Tone))
	}

	hit := math.Min(0.5, float64(m.Hit)+float64(m.VelHit)*v/2)
	amp := 35 * math.Abs(math.Sin(math.Pi*float64(p.k)*hit))

	b0 := alpha * toneGain * amp
	a0 := 1 + alpha/decayK
	a1 := -2 * math.Cos(omega)
	a2 := 1 - alpha/decayK

	p.b0 = float32(b0 / a0)
	p.b2 = -p.b0
	p.a1 = float32(a1 / a0)
	p.a2 = float32(a2 / a0)
	p.inert = false
}

func (p *Partial) setInert() {
	p.b0, p.b2, p.a1, p.a2 = 0, 0, 0, 0
	p.inert = true
}

// Inert reports whether the last update disabled the mode.
func (p *Partial) Inert() bool {
	return p.inert
}

// Process runs one four-lane step.
func (p *Partial) Process(in dsp.Vec4) dsp.Vec4 {
	var out dsp.Vec4
	for i := range out {
		out[i] = dsp.Flush(p.b0*in[i] + p.b2*p.x2[i] - p.a1*p.y1[i] - p.a2*p.y2[i])
	}
	p.x2, p.x1 = p.x1, in
	p.y2, p.y1 = p.y1, out
	return out
}

// Clear zeroes the history.
func (p *Partial) Clear() {
	p.x1, p.x2 = dsp.Vec4{}, dsp.Vec4{}
	p.y1, p.y2 = dsp.Vec4{}, dsp.Vec4{}
}
