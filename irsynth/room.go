// Package irsynth generates stereo room impulse responses for the optional
// room stage of the synth: early reflections, a two-band diffuse tail and an
// optional resonant body tuned with one of the physical model tables.
package irsynth

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"

	"github.com/cwbudde/algo-rippler/models"
)

// Config controls room IR generation.
type Config struct {
	SampleRate int
	DurationS  float64
	Seed       uint64

	PreDelayS   float64
	EarlyCount  int
	EarlySpanS  float64 // reflections land in [PreDelayS, PreDelayS+EarlySpanS)
	EarlyLevel  float64
	LateLevel   float64
	StereoWidth float64 // 0 = mono tail, 1 = fully decorrelated

	LowDecayS   float64
	HighDecayS  float64
	CrossoverHz float64

	// Body adds damped modes at BodyHz times the ratios of BodyModel. A zero
	// BodyHz disables it.
	BodyModel  models.Name
	BodyHz     float64
	BodyModes  int
	BodyDecayS float64
	BodyLevel  float64

	FadeOutS      float64
	NormalizePeak float64
}

// DefaultConfig returns a small, fairly dry percussion room.
func DefaultConfig() Config {
	return Config{
		SampleRate:    48000,
		DurationS:     1.2,
		Seed:          1,
		PreDelayS:     0.004,
		EarlyCount:    18,
		EarlySpanS:    0.04,
		EarlyLevel:    0.5,
		LateLevel:     0.08,
		StereoWidth:   0.6,
		LowDecayS:     1.1,
		HighDecayS:    0.25,
		CrossoverHz:   2500,
		BodyModel:     models.Marimba,
		BodyModes:     16,
		BodyDecayS:    0.4,
		BodyLevel:     0.2,
		FadeOutS:      0.01,
		NormalizePeak: 0.9,
	}
}

// Validate reports the first unusable field.
func (c *Config) Validate() error {
	switch {
	case c.SampleRate < 8000:
		return fmt.Errorf("sample rate too low: %d", c.SampleRate)
	case c.DurationS <= 0:
		return fmt.Errorf("duration must be > 0")
	case c.PreDelayS < 0 || c.PreDelayS >= c.DurationS:
		return fmt.Errorf("pre-delay must be in [0,duration)")
	case c.EarlyCount < 0 || c.EarlySpanS < 0 || c.EarlyLevel < 0:
		return fmt.Errorf("early reflection settings must be >= 0")
	case c.LateLevel < 0:
		return fmt.Errorf("late level must be >= 0")
	case c.StereoWidth < 0 || c.StereoWidth > 1:
		return fmt.Errorf("stereo width must be in [0,1]")
	case c.LowDecayS <= 0 || c.HighDecayS <= 0:
		return fmt.Errorf("decay seconds must be > 0")
	case c.CrossoverHz <= 0 || c.CrossoverHz >= 0.5*float64(c.SampleRate):
		return fmt.Errorf("crossover must be in (0,nyquist)")
	case c.BodyHz < 0:
		return fmt.Errorf("body frequency must be >= 0")
	case c.BodyHz > 0 && (c.BodyModes < 1 || c.BodyModes > models.Size || c.BodyDecayS <= 0):
		return fmt.Errorf("body needs 1..%d modes and a positive decay", models.Size)
	case c.NormalizePeak <= 0:
		return fmt.Errorf("normalize peak must be > 0")
	}
	return nil
}

// Generate synthesizes a stereo IR according to cfg.
func Generate(cfg Config) ([]float32, []float32, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	sr := float64(cfg.SampleRate)
	n := max(1, int(math.Round(cfg.DurationS*sr)))
	left := make([]float64, n)
	right := make([]float64, n)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed*0x9e3779b97f4a7c15+1))

	pre := int(cfg.PreDelayS * sr)
	left[pre] += 1
	right[pre] += 1

	addEarly(left, right, cfg, rng)
	if cfg.LateLevel > 0 {
		addTail(left, right, cfg, rng, pre)
	}
	if cfg.BodyHz > 0 {
		addBody(left, right, cfg, rng, pre)
	}

	removeDC(left, 0.995)
	removeDC(right, 0.995)
	fadeOut(left, cfg.FadeOutS, cfg.SampleRate)
	fadeOut(right, cfg.FadeOutS, cfg.SampleRate)

	peak := max(maxAbs(left), maxAbs(right), 1e-12)
	s := cfg.NormalizePeak / peak
	outL := make([]float32, n)
	outR := make([]float32, n)
	for i := range left {
		outL[i] = float32(left[i] * s)
		outR[i] = float32(right[i] * s)
	}
	return outL, outR, nil
}

func addEarly(left, right []float64, cfg Config, rng *rand.Rand) {
	sr := float64(cfg.SampleRate)
	for range cfg.EarlyCount {
		t := cfg.PreDelayS + cfg.EarlySpanS*rng.Float64()
		idx := int(t * sr)
		if idx <= 0 || idx >= len(left) {
			continue
		}
		// later reflections have travelled further
		amp := cfg.EarlyLevel * (0.3 + 0.7*rng.Float64()) * math.Exp(-(t-cfg.PreDelayS)*25)
		if rng.IntN(2) == 0 {
			amp = -amp
		}
		pan := (rng.Float64()*2 - 1) * cfg.StereoWidth
		left[idx] += amp * (1 - 0.5*pan)
		right[idx] += amp * (1 + 0.5*pan)
	}
}

// addTail splits white noise at the crossover and gives each band its own
// exponential decay.
func addTail(left, right []float64, cfg Config, rng *rand.Rand, start int) {
	sr := float64(cfg.SampleRate)
	lpC, hpC := crossover(sr, cfg.CrossoverHz)
	bands := [2][2]*biquad.Section{
		{biquad.NewSection(lpC), biquad.NewSection(hpC)},
		{biquad.NewSection(lpC), biquad.NewSection(hpC)},
	}
	lowK := math.Exp(-1 / (cfg.LowDecayS / 6.91 * sr))
	highK := math.Exp(-1 / (cfg.HighDecayS / 6.91 * sr))
	lowEnv, highEnv := cfg.LateLevel, cfg.LateLevel
	w := cfg.StereoWidth
	for i := start; i < len(left); i++ {
		common := rng.NormFloat64()
		nl := (1-w)*common + w*rng.NormFloat64()
		nr := (1-w)*common + w*rng.NormFloat64()
		left[i] += lowEnv*bands[0][0].ProcessSample(nl) + highEnv*bands[0][1].ProcessSample(nl)
		right[i] += lowEnv*bands[1][0].ProcessSample(nr) + highEnv*bands[1][1].ProcessSample(nr)
		lowEnv *= lowK
		highEnv *= highK
	}
}

// crossover returns Butterworth lowpass and highpass sections at hz.
func crossover(sampleRate, hz float64) (biquad.Coefficients, biquad.Coefficients) {
	w0 := 2 * math.Pi * hz / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / math.Sqrt2 // Q = 1/sqrt2
	inv := 1 / (1 + alpha)
	a1 := -2 * cw * inv
	a2 := (1 - alpha) * inv
	lp := biquad.Coefficients{
		B0: (1 - cw) / 2 * inv,
		B1: (1 - cw) * inv,
		B2: (1 - cw) / 2 * inv,
		A1: a1,
		A2: a2,
	}
	hp := biquad.Coefficients{
		B0: (1 + cw) / 2 * inv,
		B1: -(1 + cw) * inv,
		B2: (1 + cw) / 2 * inv,
		A1: a1,
		A2: a2,
	}
	return lp, hp
}

// addBody rings the first BodyModes ratios of the body model table. Higher
// modes are weaker and decay faster.
func addBody(left, right []float64, cfg Config, rng *rand.Rand, start int) {
	sr := float64(cfg.SampleRate)
	table := models.NewBank().Table(models.A, cfg.BodyModel)
	for k := 0; k < cfg.BodyModes; k++ {
		f := cfg.BodyHz * float64(table[k])
		if f >= 0.45*sr {
			break
		}
		amp := cfg.BodyLevel / float64(k+1)
		tau := cfg.BodyDecayS / math.Sqrt(float64(table[k]))
		decay := math.Exp(-1 / (tau * sr))
		phase := rng.Float64() * 2 * math.Pi
		ringMode(left[start:], amp, f/sr, phase, decay)
		ringMode(right[start:], amp, f/sr, phase+0.2*cfg.StereoWidth, decay)
	}
}

// ringMode adds a damped cosine using the second-order oscillator
// recursion x[n] = 2cos(w)x[n-1] - x[n-2].
func ringMode(out []float64, amp, normFreq, phase, decay float64) {
	w := 2 * math.Pi * normFreq
	k := 2 * math.Cos(w)
	x0, x1 := math.Cos(phase-w), math.Cos(phase)
	env := amp
	for i := range out {
		out[i] += env * x1
		x0, x1 = x1, k*x1-x0
		env *= decay
	}
}

func removeDC(x []float64, r float64) {
	var prevIn, prevOut float64
	for i, v := range x {
		prevOut = v - prevIn + r*prevOut
		prevIn = v
		x[i] = prevOut
	}
}

func fadeOut(buf []float64, fadeS float64, sampleRate int) {
	n := min(len(buf), int(math.Round(fadeS*float64(sampleRate))))
	if n <= 0 {
		return
	}
	start := len(buf) - n
	for i := 0; i < n; i++ {
		buf[start+i] *= 0.5 * (1 + math.Cos(math.Pi*float64(i)/float64(n)))
	}
}

func maxAbs(x []float64) float64 {
	m := 0.0
	for _, v := range x {
		m = max(m, math.Abs(v))
	}
	return m
}
