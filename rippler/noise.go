package rippler

import (
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-rippler/dsp"
)

// NoiseMode selects the noise filter response.
type NoiseMode int

const (
	NoiseLP NoiseMode = iota
	NoiseBP
	NoiseHP
)

func (m NoiseMode) String() string {
	switch m {
	case NoiseBP:
		return "BP"
	case NoiseHP:
		return "HP"
	}
	return "LP"
}

const (
	noiseFreqMin  = 20.0
	noiseFreqMax  = 20000.0
	noiseQMin     = 0.707
	noiseQMax     = 4.0
	noiseLogRange = 6.907755278982137 // ln(20000) - ln(20)
	noiseResRange = noiseQMax - noiseQMin
	noiseTension  = 0.4
)

// Noise is an enveloped, velocity-filtered white noise source.
type Noise struct {
	sampleRate float32
	mode       NoiseMode
	freq, q    float32
	velFreq    float32
	velQ       float32
	vel        float32

	filter       dsp.Filter
	filterActive bool
	env          Envelope
	rng          *rand.Rand
}

func newNoise(seed uint64) Noise {
	return Noise{
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		mode: NoiseLP,
		freq: noiseFreqMax,
		q:    noiseQMin,
	}
}

// Init sets static parameters. Times are in ms, sustain in dB.
func (n *Noise) Init(sampleRate float32, mode NoiseMode, freq, q, attackMs, decayMs, sustainDb, releaseMs, velFreq, velQ float32) {
	n.sampleRate = sampleRate
	n.mode = mode
	n.freq = freq
	n.q = q
	n.velFreq = velFreq
	n.velQ = velQ
	n.initFilter()
	n.env.Init(sampleRate, attackMs, decayMs, sustainDb, releaseMs, noiseTension, noiseTension, noiseTension)
}

func (n *Noise) initFilter() {
	freq := math.Max(float64(n.freq), noiseFreqMin)
	f := float32(math.Exp(math.Log(freq) + float64(n.vel*n.velFreq)*noiseLogRange))
	f = dsp.Clamp(f, noiseFreqMin, noiseFreqMax)
	res := dsp.Clamp(n.q+n.vel*n.velQ*noiseResRange, noiseQMin, noiseQMax)

	switch n.mode {
	case NoiseBP:
		n.filterActive = true
		n.filter.BandPass(n.sampleRate, f, res)
	case NoiseHP:
		n.filterActive = f > noiseFreqMin
		n.filter.HighPass(n.sampleRate, f, res)
	default:
		n.filterActive = f < noiseFreqMax
		n.filter.LowPass(n.sampleRate, f, res)
	}
}

// Attack retunes the filter for velocity vel (0..1) and starts the envelope.
func (n *Noise) Attack(vel float32) {
	n.vel = vel
	n.initFilter()
	n.env.Attack(1)
}

// Process returns the next noise sample.
func (n *Noise) Process() float32 {
	if n.env.State() == EnvOff {
		return 0
	}
	state := n.env.Process()
	x := n.rng.Float32()*2 - 1
	if n.filterActive {
		x = n.filter.DF1(x)
	}
	out := x * n.env.Value()
	if state == EnvOff {
		n.filter.Clear(0)
	}
	return out
}

// Release starts the envelope release.
func (n *Noise) Release() {
	n.env.Release()
}

// Clear silences the generator immediately.
func (n *Noise) Clear() {
	n.env.Reset()
	n.filter.Clear(0)
}
