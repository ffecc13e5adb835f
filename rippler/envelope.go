package rippler

import "math"

// EnvState is the segment an Envelope is in.
type EnvState int

const (
	EnvOff EnvState = iota
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
)

func (s EnvState) String() string {
	switch s {
	case EnvOff:
		return "off"
	case EnvAttack:
		return "attack"
	case EnvDecay:
		return "decay"
	case EnvSustain:
		return "sustain"
	case EnvRelease:
		return "release"
	}
	return "unknown"
}

// Envelope is an ADSR generator whose segments are one-pole recursions
// y = b + c*y shaped by a tension per segment. Coefficients are kept in
// float64: the slow-start branch cubes tensions near 100, and the resulting
// ratios are too close to 1 for float32.
type Envelope struct {
	att, dec, rel float64 // segment lengths in samples
	sus           float64 // linear sustain level
	ta, td, tr    float64 // normalized tensions

	ab, ac float64
	db, dc float64
	rb, rc float64

	env   float64
	scale float64
	state EnvState
}

// normalizeTension maps t in [-1,1] onto the curve parameter used by
// calcCoefs: 100 for the linear midpoint, (1,2] for slow-start curves and
// [0.001,1) for fast-start curves.
func normalizeTension(t float64) float64 {
	t += 1
	switch {
	case t == 1:
		return 100
	case t > 1:
		return 3.001 - t
	default:
		return 0.001 + t
	}
}

// Init sets segment times in milliseconds (floored at 1 ms), the sustain
// level in dB (clamped to <= 0) and the three segment tensions in [-1,1].
func (e *Envelope) Init(sampleRate, attackMs, decayMs, sustainDb, releaseMs, tensionA, tensionD, tensionR float32) {
	sr := float64(sampleRate)
	e.att = math.Max(float64(attackMs), 1) * 0.001 * sr
	e.dec = math.Max(float64(decayMs), 1) * 0.001 * sr
	e.rel = math.Max(float64(releaseMs), 1) * 0.001 * sr
	e.sus = math.Pow(10, math.Min(float64(sustainDb), 0)/20)
	if e.att < 1 {
		e.att = 1
	}
	if e.dec < 1 {
		e.dec = 1
	}
	if e.rel < 1 {
		e.rel = 1
	}

	e.ta = normalizeTension(clampTension(tensionA))
	e.td = normalizeTension(-clampTension(tensionD))
	e.tr = normalizeTension(-clampTension(tensionR))
}

func clampTension(t float32) float64 {
	if t != t {
		return 0
	}
	return math.Max(-1, math.Min(1, float64(t)))
}

// calcCoefs derives the recursion for one segment. Slow-start curves run a
// growing exponential away from an asymptote beyond the start point, fast
// start curves a decaying one towards an asymptote beyond the target.
func calcCoefs(targetB1, targetB2, targetC, rate, tension, mult float64) (b, c float64) {
	if tension > 1 {
		t := (tension - 1) * (tension - 1) * (tension - 1)
		c = math.Exp(math.Log((targetC+t)/t) / rate)
		b = (targetB1 - mult*t) * (1 - c)
		return b, c
	}
	t := tension * tension * tension
	c = math.Exp(-math.Log((targetC+t)/t) / rate)
	b = (targetB2 + mult*t) * (1 - c)
	return b, c
}

func (e *Envelope) recalcCoefs() {
	e.ab, e.ac = calcCoefs(0, e.scale, e.scale, e.att, e.ta, 1)
	e.db, e.dc = calcCoefs(1, e.sus*e.scale, (1-e.sus)*e.scale, e.dec, e.td, -1)
}

// Reset stops the envelope at zero.
func (e *Envelope) Reset() {
	e.state = EnvOff
	e.env = 0
}

// Attack restarts the attack/decay pair towards scale.
func (e *Envelope) Attack(scale float32) {
	e.scale = float64(scale)
	e.recalcCoefs()
	e.state = EnvAttack
}

func (e *Envelope) decay() {
	e.env = e.scale
	e.state = EnvDecay
}

func (e *Envelope) sustain() {
	e.env = e.scale * e.sus
	e.state = EnvSustain
}

// Release heads towards zero from max(env, sustain)*scale. Releasing an
// envelope that is already off does nothing.
func (e *Envelope) Release() {
	if e.state == EnvOff {
		return
	}
	start := math.Max(e.env, e.sus) * e.scale
	e.rb, e.rc = calcCoefs(start, 0, start, e.rel, e.tr, -1)
	e.state = EnvRelease
}

// Process advances one sample and returns the resulting state.
func (e *Envelope) Process() EnvState {
	switch e.state {
	case EnvAttack:
		e.env = e.ab + e.env*e.ac
		if e.env >= e.scale {
			e.decay()
		}
	case EnvDecay:
		e.env = e.db + e.env*e.dc
		if e.env <= e.sus*e.scale {
			e.sustain()
		}
	case EnvRelease:
		e.env = e.rb + e.env*e.rc
		if e.env <= 0 {
			e.Reset()
		}
	}
	return e.state
}

// Value returns the current envelope level.
func (e *Envelope) Value() float32 {
	return float32(e.env)
}

// State returns the current segment.
func (e *Envelope) State() EnvState {
	return e.state
}
