package dsp

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
)

func rbjLowpassReference(sampleRate, cutoff, q float64) biquad.Coefficients {
	w0 := 2 * math.Pi * cutoff / sampleRate
	cw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	inv := 1.0 / (1 + alpha)
	return biquad.Coefficients{
		B0: ((1 - cw) * 0.5) * inv,
		B1: (1 - cw) * inv,
		B2: ((1 - cw) * 0.5) * inv,
		A1: (-2 * cw) * inv,
		A2: (1 - alpha) * inv,
	}
}

func TestLowPassMatchesReferenceSection(t *testing.T) {
	const sr = 48000.0
	var f Filter
	f.LowPass(sr, 1200, 0.707)
	ref := biquad.NewSection(rbjLowpassReference(sr, 1200, 0.707))

	for i := 0; i < 2000; i++ {
		x := float32(math.Sin(2 * math.Pi * 440 * float64(i) / sr))
		if i%97 == 0 {
			x += 0.5
		}
		got := f.DF1(x)
		want := ref.ProcessSample(float64(x))
		if math.Abs(float64(got)-want) > 1e-4 {
			t.Fatalf("sample %d: got=%f want=%f", i, got, want)
		}
	}
}

func TestFilterStability(t *testing.T) {
	const sr = float32(48000)
	freqs := []float32{1, 20, 440, 5000, 15000, 0.489 * sr}
	qs := []float32{0.1, 0.707, 4, 20}
	modes := []struct {
		name string
		set  func(*Filter, float32, float32)
	}{
		{"lp", func(f *Filter, fr, q float32) { f.LowPass(sr, fr, q) }},
		{"bp", func(f *Filter, fr, q float32) { f.BandPass(sr, fr, q) }},
		{"hp", func(f *Filter, fr, q float32) { f.HighPass(sr, fr, q) }},
	}
	for _, m := range modes {
		for _, fr := range freqs {
			for _, q := range qs {
				var f Filter
				m.set(&f, fr, q)
				peak := float32(0)
				for i := 0; i < int(10*sr); i++ {
					x := float32(0)
					if i%4800 == 0 {
						x = 1
					}
					y := f.DF1(x)
					if y != y || math.IsInf(float64(y), 0) {
						t.Fatalf("%s f=%f q=%f: non-finite output at %d", m.name, fr, q, i)
					}
					if a := float32(math.Abs(float64(y))); a > peak {
						peak = a
					}
				}
				if peak > 1e4 {
					t.Fatalf("%s f=%f q=%f: output grew to %f", m.name, fr, q, peak)
				}
			}
		}
	}
}

func TestFrequencyClampedBelowNyquist(t *testing.T) {
	var a, b Filter
	a.LowPass(48000, 0.49*48000, 0.707)
	b.LowPass(48000, 96000, 0.707)
	if a.Coefs != b.Coefs {
		t.Fatalf("expected cutoff clamp at 0.49*sr: got=%+v want=%+v", b.Coefs, a.Coefs)
	}
}

func TestClearSeedsDCOperatingPoint(t *testing.T) {
	var f Filter
	f.LowPass(48000, 800, 1.2)
	f.Clear(0.75)
	for i := 0; i < 64; i++ {
		y := f.DF1(0.75)
		if math.Abs(float64(y-0.75)) > 1e-4 {
			t.Fatalf("lowpass should hold DC after Clear at step %d: got=%f want=%f", i, y, 0.75)
		}
	}

	var hp Filter
	hp.HighPass(48000, 800, 0.707)
	hp.Clear(1)
	if y := hp.DF1(1); math.Abs(float64(y)) > 1e-5 {
		t.Fatalf("highpass should reject DC after Clear: got=%f", y)
	}
}

func TestResetKeepsCoefficients(t *testing.T) {
	var f Filter
	f.BandPass(48000, 1000, 2)
	before := f.Coefs
	f.DF1(1)
	f.DF1(-1)
	f.Reset()
	if f.Coefs != before {
		t.Fatalf("reset changed coefficients")
	}
	if y := f.DF1(0); y != 0 {
		t.Fatalf("expected zero output after reset with zero input, got=%f", y)
	}
}

func TestFilter4MatchesScalarPerLane(t *testing.T) {
	var scalar [4]Filter
	var f4 Filter4
	f4.HighPass(44100, 300, 0.9)
	for i := range scalar {
		scalar[i].Coefs = f4.Coefs
	}
	for n := 0; n < 500; n++ {
		x := Vec4{
			float32(math.Sin(float64(n) * 0.1)),
			float32(math.Cos(float64(n) * 0.05)),
			float32(n%7) * 0.1,
			0,
		}
		y := f4.Process(x)
		for lane := range x {
			want := scalar[lane].DF1(x[lane])
			if math.Abs(float64(y[lane]-want)) > 1e-6 {
				t.Fatalf("lane %d step %d: got=%f want=%f", lane, n, y[lane], want)
			}
		}
	}
}

func TestRing4DelayAndReset(t *testing.T) {
	r := NewRing4(16)
	if got := r.SetDelay(5); got != 5 {
		t.Fatalf("delay got=%d want=5", got)
	}
	if got := r.SetDelay(100); got != 15 {
		t.Fatalf("delay clamp got=%d want=15", got)
	}
	r.SetDelay(5)
	for i := 0; i < 5; i++ {
		if v := r.Read(); v != (Vec4{}) {
			t.Fatalf("expected empty read before delay elapsed, got=%v", v)
		}
		r.Write(Splat(float32(i + 1)))
	}
	if v := r.Read(); v[0] != 1 {
		t.Fatalf("expected first written frame after 5 steps, got=%v", v)
	}
	if r.Delay() != 5 {
		t.Fatalf("delay drifted: got=%d", r.Delay())
	}
	r.Reset()
	if r.Len() != 16 || r.Read() != (Vec4{}) {
		t.Fatalf("reset should zero the buffer and keep its size")
	}
}

func TestDelayLinePush(t *testing.T) {
	d := NewDelayLine(3)
	outs := []float32{d.Push(1), d.Push(2), d.Push(3), d.Push(4)}
	want := []float32{0, 0, 1, 2}
	for i := range want {
		if outs[i] != want[i] {
			t.Fatalf("push %d: got=%f want=%f", i, outs[i], want[i])
		}
	}
}

func TestPow2AndDB(t *testing.T) {
	if got := Pow2(1); math.Abs(float64(got-2)) > 1e-3 {
		t.Fatalf("Pow2(1) got=%f want=2", got)
	}
	if got := DBToGain(-20); math.Abs(float64(got-0.1)) > 1e-3 {
		t.Fatalf("DBToGain(-20) got=%f want=0.1", got)
	}
}

func TestVec4Fold(t *testing.T) {
	l, r := Vec4{1, 2, 3, 4}.Fold()
	if l != 4 || r != 6 {
		t.Fatalf("fold got=(%f,%f) want=(4,6)", l, r)
	}
	if got := (Vec4{-1, 2, -3, 0}).Abs(); got != (Vec4{1, 2, 3, 0}) {
		t.Fatalf("abs got=%v", got)
	}
}
