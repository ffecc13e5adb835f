package rippler

import (
	"math"

	"github.com/cwbudde/algo-rippler/dsp"
	"github.com/cwbudde/algo-rippler/models"
)

// Coupling selects how resonators A and B are combined.
type Coupling int

const (
	// Parallel mixes A and B by ABMix ("A+B").
	Parallel Coupling = iota
	// Serial feeds A's output into B and detunes colliding modes ("A>B").
	Serial
)

func (c Coupling) String() string {
	if c == Serial {
		return "A>B"
	}
	return "A+B"
}

// PartialCounts lists the selectable mode-bank sizes.
var PartialCounts = [...]int{4, 8, 16, 32, 64}

// MalletParams controls the strike.
type MalletParams struct {
	Mix          float32 // direct level, 0..1
	Res          float32 // resonator drive, 0..1
	Stiffness    float32 // strike frequency in Hz, 100..5000
	VelMix       float32
	VelRes       float32
	VelStiffness float32
}

// ResonatorParams controls one resonator.
type ResonatorParams struct {
	On        bool
	Model     models.Name
	Partials  int
	Decay     float32
	Damp      float32
	Tone      float32
	Hit       float32
	Rel       float32
	Inharm    float32
	Ratio     float32
	Cut       float32
	Radius    float32
	Coarse    float32 // semitones, -48..48
	Fine      float32 // cents, -99..99
	VelDecay  float32
	VelHit    float32
	VelInharm float32
}

// Material extracts the values shared by modes and tube.
func (p ResonatorParams) Material() Material {
	return Material{
		Decay:     p.Decay,
		Damp:      p.Damp,
		Tone:      p.Tone,
		Hit:       p.Hit,
		Rel:       p.Rel,
		Inharm:    p.Inharm,
		VelDecay:  p.VelDecay,
		VelHit:    p.VelHit,
		VelInharm: p.VelInharm,
	}
}

// NoiseParams controls the noise layer.
type NoiseParams struct {
	Mix     float32 // direct level, 0..1
	Res     float32 // resonator drive, 0..1
	Mode    NoiseMode
	Freq    float32 // Hz, 20..20000
	Q       float32 // 0.707..4
	Attack  float32 // ms, 1..5000
	Decay   float32 // ms, 1..5000
	Sustain float32 // 0..1, mapped onto -60..0 dB
	Release float32 // ms, 1..5000
	VelMix  float32
	VelRes  float32
	VelFreq float32
	VelQ    float32
}

// SustainDB maps the 0..1 sustain control onto -60..0 dB.
func (p NoiseParams) SustainDB() float32 {
	return dsp.Clamp01(p.Sustain)*60 - 60
}

// Params is the complete sound of the synth, in physical units.
type Params struct {
	Mallet   MalletParams
	A, B     ResonatorParams
	Noise    NoiseParams
	Coupling Coupling
	ABMix    float32 // 0..1
	ABSplit  float32 // 0.01..1
	Gain     float32 // resonator gain in dB, -24..24
	RoomMix  float32 // room stage wet level, 0 disables it
}

func defaultResonator(on bool) ResonatorParams {
	return ResonatorParams{
		On:       on,
		Model:    models.String,
		Partials: 32,
		Decay:    1,
		Hit:      0.26,
		Rel:      1,
		Inharm:   0.0001,
		Ratio:    models.DefaultRatio(models.String),
		Radius:   0.5,
	}
}

// DefaultParams returns the initial sound: a plucked string on A with B off.
func DefaultParams() Params {
	return Params{
		Mallet: MalletParams{
			Res:       0.8,
			Stiffness: 600,
		},
		A: defaultResonator(true),
		B: defaultResonator(false),
		Noise: NoiseParams{
			Mode:    NoiseHP,
			Freq:    20,
			Q:       0.707,
			Attack:  1,
			Decay:   500,
			Release: 500,
		},
		Coupling: Parallel,
		ABMix:    0.5,
		ABSplit:  0.01,
	}
}

func clampf(v, lo, hi float32) float32 {
	if v != v {
		return lo
	}
	return dsp.Clamp(v, lo, hi)
}

// nearestPartialCount snaps n onto PartialCounts.
func nearestPartialCount(n int) int {
	best := PartialCounts[0]
	for _, c := range PartialCounts {
		if abs(c-n) < abs(best-n) {
			best = c
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func (p ResonatorParams) clamped() ResonatorParams {
	p.Model = p.Model.Clamp()
	p.Partials = nearestPartialCount(p.Partials)
	p.Decay = clampf(p.Decay, 0.01, 100)
	p.Damp = clampf(p.Damp, -1, 1)
	p.Tone = clampf(p.Tone, -1, 1)
	p.Hit = clampf(p.Hit, 0.02, 0.5)
	p.Rel = clampf(p.Rel, 0, 1)
	p.Inharm = clampf(p.Inharm, 0.0001, 1)
	p.Ratio = clampf(p.Ratio, 0.1, 10)
	p.Cut = clampf(p.Cut, -1, 1)
	p.Radius = clampf(p.Radius, 0, 1)
	p.Coarse = clampf(p.Coarse, -48, 48)
	p.Fine = clampf(p.Fine, -99, 99)
	p.VelDecay = clampf(p.VelDecay, -1, 1)
	p.VelHit = clampf(p.VelHit, -1, 1)
	p.VelInharm = clampf(p.VelInharm, -1, 1)
	return p
}

// Clamped returns a copy with every field forced into its valid range.
// Unknown enum values fall back to their nearest valid value.
func (p Params) Clamped() Params {
	p.Mallet.Mix = clampf(p.Mallet.Mix, 0, 1)
	p.Mallet.Res = clampf(p.Mallet.Res, 0, 1)
	p.Mallet.Stiffness = clampf(p.Mallet.Stiffness, 100, 5000)
	p.Mallet.VelMix = clampf(p.Mallet.VelMix, -1, 1)
	p.Mallet.VelRes = clampf(p.Mallet.VelRes, -1, 1)
	p.Mallet.VelStiffness = clampf(p.Mallet.VelStiffness, -1, 1)

	p.A = p.A.clamped()
	p.B = p.B.clamped()

	n := &p.Noise
	n.Mix = clampf(n.Mix, 0, 1)
	n.Res = clampf(n.Res, 0, 1)
	if n.Mode < NoiseLP || n.Mode > NoiseHP {
		n.Mode = NoiseLP
	}
	n.Freq = clampf(n.Freq, noiseFreqMin, noiseFreqMax)
	n.Q = clampf(n.Q, noiseQMin, noiseQMax)
	n.Attack = clampf(n.Attack, 1, 5000)
	n.Decay = clampf(n.Decay, 1, 5000)
	n.Sustain = clampf(n.Sustain, 0, 1)
	n.Release = clampf(n.Release, 1, 5000)
	n.VelMix = clampf(n.VelMix, -1, 1)
	n.VelRes = clampf(n.VelRes, -1, 1)
	n.VelFreq = clampf(n.VelFreq, -1, 1)
	n.VelQ = clampf(n.VelQ, -1, 1)

	if p.Coupling != Serial {
		p.Coupling = Parallel
	}
	p.ABMix = clampf(p.ABMix, 0, 1)
	p.ABSplit = clampf(p.ABSplit, 0.01, 1)
	p.Gain = clampf(p.Gain, -24, 24)
	p.RoomMix = clampf(p.RoomMix, 0, 1)
	return p
}

// noiseSkew is the curve of the noise level controls: the knob position is
// value^noiseSkew.
const noiseSkew = 0.3

// noiseWeight applies a velocity offset in knob space and maps back to a
// level.
func noiseWeight(level, velAmount, vel float32) float32 {
	pos := float32(math.Pow(float64(dsp.Clamp01(level)), noiseSkew))
	pos = dsp.Clamp01(pos + velAmount*vel)
	return float32(math.Pow(float64(pos), 1/noiseSkew))
}
