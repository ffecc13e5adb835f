package rippler

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-rippler/internal/wavio"
)

func newTestSynth(t testing.TB, cfg Config) *Synth {
	t.Helper()
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 48000
	}
	s, err := NewSynth(cfg)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	return s
}

func render(s *Synth, frames int) []float32 {
	out := make([]float32, frames*2)
	s.Render(out)
	return out
}

func stereoRMS(interleaved []float32) float64 {
	if len(interleaved) == 0 {
		return 0
	}
	var sum float64
	for _, s := range interleaved {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(interleaved)))
}

func peakAbs(samples []float32) float64 {
	p := 0.0
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > p {
			p = a
		}
	}
	return p
}

func assertFinite(t *testing.T, samples []float32, label string) {
	t.Helper()
	for i, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			t.Fatalf("%s: non-finite sample at %d: %v", label, i, s)
		}
	}
}

func deinterleave(interleaved []float32) (left, right []float32) {
	n := len(interleaved) / 2
	left = make([]float32, n)
	right = make([]float32, n)
	for i := 0; i < n; i++ {
		left[i] = interleaved[2*i]
		right[i] = interleaved[2*i+1]
	}
	return left, right
}

func directConvolve(x []float32, h []float32) []float32 {
	y := make([]float32, len(x)+len(h)-1)
	for i := range x {
		for j := range h {
			y[i+j] += x[i] * h[j]
		}
	}
	return y
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := min(len(a), len(b))
	worst := 0.0
	for i := 0; i < n; i++ {
		if d := math.Abs(float64(a[i] - b[i])); d > worst {
			worst = d
		}
	}
	return worst
}

func writeTempIRWav(t *testing.T, left []float32, right []float32, sampleRate int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ir.wav")
	if right == nil {
		if err := wavio.WriteMono(path, left, sampleRate); err != nil {
			t.Fatalf("write mono ir: %v", err)
		}
		return path
	}
	if len(right) != len(left) {
		t.Fatalf("left/right length mismatch")
	}
	data := make([]float32, 2*len(left))
	for i := range left {
		data[2*i] = left[i]
		data[2*i+1] = right[i]
	}
	if err := wavio.WriteStereoInterleaved(path, data, sampleRate); err != nil {
		t.Fatalf("write stereo ir: %v", err)
	}
	return path
}
