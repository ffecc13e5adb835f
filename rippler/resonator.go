package rippler

import (
	"math"

	"github.com/cwbudde/algo-rippler/dsp"
	"github.com/cwbudde/algo-rippler/models"
)

const (
	// MaxPartials is the size of a resonator's mode bank.
	MaxPartials = models.Size
	// silenceThreshold is the per-lane level of |out|+|in| below which a
	// sample counts as silent.
	silenceThreshold = 1e-5
)

type resonatorKind int

const (
	kindBank resonatorKind = iota
	kindTube
)

// Resonator is either a bank of up to 64 modes or a waveguide tube,
// followed by an optional post filter. It switches itself off after one
// second of continuous silence.
type Resonator struct {
	on         bool
	model      models.Name
	kind       resonatorKind
	npartials  int
	cut        float32
	sampleRate float32

	partials  [MaxPartials]Partial
	waveguide *Waveguide

	filter       dsp.Filter4
	filterActive bool

	silence int
	active  bool
}

func newResonator() *Resonator {
	r := &Resonator{
		npartials: 32,
		waveguide: newWaveguide(),
	}
	for i := range r.partials {
		r.partials[i] = newPartial(i + 1)
	}
	return r
}

// SetParams pushes resonator parameters into every mode and into the
// waveguide, whichever of them is currently selected.
func (r *Resonator) SetParams(sampleRate float32, p ResonatorParams) {
	r.on = p.On
	r.model = p.Model.Clamp()
	r.kind = kindBank
	if r.model.IsWaveguide() {
		r.kind = kindTube
	}
	r.npartials = max(1, min(p.Partials, MaxPartials))
	r.sampleRate = sampleRate
	r.cut = p.Cut

	freq, lowpass := cutFrequency(p.Cut)
	if lowpass {
		r.filter.LowPass(sampleRate, freq, 0.707)
		r.filterActive = freq < 19999.9
	} else {
		r.filter.HighPass(sampleRate, freq, 0.707)
		r.filterActive = p.Cut > 0 && freq > 20.0001
	}

	mat := p.Material()
	for i := range r.partials {
		r.partials[i].mat = mat
		r.partials[i].sampleRate = float64(sampleRate)
	}
	r.waveguide.mat = mat
	r.waveguide.radius = dsp.Clamp01(p.Radius)
	r.waveguide.closed = r.model == models.ClosedTube
	r.waveguide.sampleRate = float64(sampleRate)
}

// cutFrequency maps cut in -1..1 onto 20..20000 Hz. Negative values select
// a lowpass, positive values a highpass.
func cutFrequency(cut float32) (float32, bool) {
	c := float64(dsp.Clamp(cut, -1, 1))
	if c < 0 {
		return float32(20 * math.Pow(1000, 1+c)), true
	}
	return float32(20 * math.Pow(1000, c)), false
}

// On reports whether the resonator is enabled.
func (r *Resonator) On() bool {
	return r.on
}

// Model returns the selected physical model.
func (r *Resonator) Model() models.Name {
	return r.model
}

// Partials returns the number of modes in use.
func (r *Resonator) Partials() int {
	return r.npartials
}

// Partial returns mode i (0-based).
func (r *Resonator) Partial(i int) *Partial {
	return &r.partials[i]
}

// Waveguide returns the tube used by the OpenTube and ClosedTube models.
func (r *Resonator) Waveguide() *Waveguide {
	return r.waveguide
}

// Active reports whether the resonator is still sounding.
func (r *Resonator) Active() bool {
	return r.active
}

// Activate marks the resonator as sounding. Silence detection restarts only
// when the resonator was inactive.
func (r *Resonator) Activate() {
	if !r.active {
		r.silence = 0
	}
	r.active = true
}

// Update retunes the modes or the tube. Every mode is normalized against
// table[63], regardless of how many modes are in use.
func (r *Resonator) Update(freq, vel float32, isRelease bool, table *models.Table) {
	if r.kind == kindTube {
		r.waveguide.Update(table[0]*freq, vel, isRelease)
		return
	}
	ratioMax := table[models.Size-1]
	for i := 0; i < r.npartials; i++ {
		r.partials[i].Update(freq, table[i], ratioMax, vel, isRelease)
	}
}

// Process runs one four-lane step. The resonator deactivates once every
// lane has stayed below silenceThreshold for sampleRate consecutive steps.
// silence counts quiet steps, not loud ones: a single loud lane sets it back
// to zero, so a quiet sustain never times out while it is still audible.
func (r *Resonator) Process(in dsp.Vec4) dsp.Vec4 {
	var out dsp.Vec4
	if !r.active {
		return out
	}
	switch r.kind {
	case kindTube:
		out = r.waveguide.Process(in)
	default:
		for i := 0; i < r.npartials; i++ {
			out = out.Add(r.partials[i].Process(in))
		}
	}

	level := out.Abs().Add(in.Abs())
	loud := false
	for _, v := range level {
		if v > silenceThreshold {
			loud = true
			break
		}
	}
	if loud {
		r.silence = 0
	} else {
		r.silence++
		if float32(r.silence) >= r.sampleRate {
			r.active = false
		}
	}

	if r.filterActive {
		out = r.filter.Process(out)
	}
	return out
}

// Clear zeroes every mode, the tube and the post filter and deactivates the
// resonator.
func (r *Resonator) Clear() {
	for i := range r.partials {
		r.partials[i].Clear()
	}
	r.waveguide.Clear()
	r.filter.Reset()
	r.silence = 0
	r.active = false
}
