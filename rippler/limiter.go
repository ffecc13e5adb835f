package rippler

import (
	"math"

	"github.com/cwbudde/algo-rippler/dsp"
)

const log2db = 20 / math.Ln10

// Limiter is a soft-knee feedback limiter with an RMS detector per channel.
// The ratio rises from 1 towards 20 as the overshoot approaches the bias.
type Limiter struct {
	threshv float64
	ratio   float64
	bias    float64
	makeupv float64
	atcoef  float64
	relcoef float64
	rmscoef float64

	runave [2]float64
	rundb  [2]float64
}

// NewLimiter returns the output limiter: 0 dB threshold, 70% bias, 0.2 ms
// attack, 300 ms release and a 100 us RMS window.
func NewLimiter(sampleRate int) *Limiter {
	const (
		threshDB = 0.0
		biasPct  = 70.0
		rmsWinUs = 100.0
		makeupDB = 0.0
		attack   = 0.0002
		release  = 0.3
	)
	sr := float64(sampleRate)
	return &Limiter{
		threshv: math.Pow(10, threshDB/20),
		ratio:   20,
		bias:    80 * biasPct / 100,
		makeupv: math.Pow(10, makeupDB/20),
		atcoef:  math.Exp(-1 / (attack * sr)),
		relcoef: math.Exp(-1 / (release * sr)),
		rmscoef: math.Exp(-1 / (rmsWinUs / 1e6 * sr)),
	}
}

func (l *Limiter) gain(ch int, x float32) float32 {
	spl := float64(x) * float64(x)
	l.runave[ch] = spl + l.rmscoef*(l.runave[ch]-spl)
	det := 0.0
	if l.runave[ch] > 0 {
		det = math.Sqrt(l.runave[ch])
	}
	overdb := 0.0
	if det > 0 {
		overdb = math.Max(0, log2db*math.Log(det/l.threshv))
	}
	if overdb > l.rundb[ch] {
		l.rundb[ch] = overdb + l.atcoef*(l.rundb[ch]-overdb)
	} else {
		l.rundb[ch] = overdb + l.relcoef*(l.rundb[ch]-overdb)
	}
	overdb = math.Max(0, l.rundb[ch])
	if overdb == 0 {
		return float32(l.makeupv)
	}
	cratio := l.ratio
	if l.bias != 0 {
		cratio = 1 + (l.ratio-1)*math.Sqrt(overdb/l.bias)
	}
	gr := -overdb * (cratio - 1) / cratio
	return dsp.DBToGain(float32(gr)) * float32(l.makeupv)
}

// Process limits one stereo frame.
func (l *Limiter) Process(left, right float32) (float32, float32) {
	return left * l.gain(0, left), right * l.gain(1, right)
}

// Reset clears the detectors.
func (l *Limiter) Reset() {
	l.runave = [2]float64{}
	l.rundb = [2]float64{}
}
