package irsynth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-rippler/models"
)

func shortConfig() Config {
	cfg := DefaultConfig()
	cfg.DurationS = 0.5
	cfg.Seed = 42
	cfg.NormalizePeak = 0.8
	return cfg
}

func TestGenerateBasic(t *testing.T) {
	cfg := shortConfig()
	l, r, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(l) != 24000 || len(r) != len(l) {
		t.Fatalf("unexpected output lengths: L=%d R=%d", len(l), len(r))
	}
	peak := 0.0
	energy := 0.0
	for i := range l {
		for _, v := range []float32{l[i], r[i]} {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				t.Fatalf("non-finite sample at %d", i)
			}
			peak = max(peak, math.Abs(f))
			energy += f * f
		}
	}
	if energy <= 1e-8 {
		t.Fatalf("expected non-zero energy")
	}
	if math.Abs(peak-0.8) > 1e-4 {
		t.Fatalf("peak got=%f want=0.8", peak)
	}
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	cfg := shortConfig()
	l1, r1, err := Generate(cfg)
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	l2, r2, err := Generate(cfg)
	if err != nil {
		t.Fatalf("second Generate: %v", err)
	}
	for i := range l1 {
		if l1[i] != l2[i] || r1[i] != r2[i] {
			t.Fatalf("non-deterministic output at index %d", i)
		}
	}
	cfg.Seed = 43
	l3, _, err := Generate(cfg)
	if err != nil {
		t.Fatalf("third Generate: %v", err)
	}
	same := true
	for i := range l1 {
		if l1[i] != l3[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical IRs")
	}
}

func TestTailDecays(t *testing.T) {
	cfg := shortConfig()
	cfg.DurationS = 1.5
	cfg.FadeOutS = 0
	l, _, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	seg := len(l) / 10
	head := rms(l[seg : 2*seg])
	tail := rms(l[len(l)-seg:])
	if !(tail < 0.1*head) {
		t.Fatalf("tail should decay: head=%g tail=%g", head, tail)
	}
}

func TestStereoWidthZeroGivesMonoTail(t *testing.T) {
	cfg := shortConfig()
	cfg.StereoWidth = 0
	l, r, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := range l {
		if math.Abs(float64(l[i]-r[i])) > 1e-6 {
			t.Fatalf("width 0 should give identical channels, differ at %d", i)
		}
	}
}

func TestBodyAddsModeAtBodyFrequency(t *testing.T) {
	cfg := shortConfig()
	cfg.LateLevel = 0
	cfg.EarlyCount = 0
	cfg.BodyHz = 300
	cfg.BodyModel = models.String
	cfg.BodyModes = 1
	cfg.BodyLevel = 1
	l, _, err := Generate(cfg)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	seg := l[480 : 480+4800]
	at := dftMagnitude(seg, 300, cfg.SampleRate)
	off := dftMagnitude(seg, 470, cfg.SampleRate)
	if !(at > 10*off) {
		t.Fatalf("expected a body peak at 300 Hz: at=%g off=%g", at, off)
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	mutations := []func(*Config){
		func(c *Config) { c.SampleRate = 100 },
		func(c *Config) { c.DurationS = 0 },
		func(c *Config) { c.PreDelayS = 10 },
		func(c *Config) { c.StereoWidth = 2 },
		func(c *Config) { c.LowDecayS = 0 },
		func(c *Config) { c.CrossoverHz = 30000 },
		func(c *Config) { c.BodyHz = 100; c.BodyModes = 0 },
		func(c *Config) { c.NormalizePeak = 0 },
	}
	for i, mutate := range mutations {
		cfg := DefaultConfig()
		mutate(&cfg)
		if _, _, err := Generate(cfg); err == nil {
			t.Fatalf("mutation %d: expected validation error", i)
		}
	}
}

func rms(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(x)))
}

func dftMagnitude(x []float32, hz float64, sampleRate int) float64 {
	var re, im float64
	for i, v := range x {
		ph := 2 * math.Pi * hz * float64(i) / float64(sampleRate)
		re += float64(v) * math.Cos(ph)
		im -= float64(v) * math.Sin(ph)
	}
	return math.Hypot(re, im)
}
