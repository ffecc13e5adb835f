package rippler

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-rippler/dsp"
)

func testWaveguide(closed bool) *Waveguide {
	w := newWaveguide()
	w.sampleRate = 48000
	w.closed = closed
	w.mat = Material{Decay: 1, Rel: 1}
	return w
}

func TestClosedTubeUsesHalfTheDelay(t *testing.T) {
	open := testWaveguide(false)
	closed := testWaveguide(true)
	open.Update(440, 0, false)
	closed.Update(440, 0, false)
	if open.Delay() != 109 {
		t.Fatalf("open delay got=%d want=109", open.Delay())
	}
	if closed.Delay() != 54 {
		t.Fatalf("closed delay got=%d want=54", closed.Delay())
	}
}

// autocorrFundamental returns sr divided by the lag with the largest
// autocorrelation in [minLag, maxLag].
func autocorrFundamental(x []float32, sr float64, minLag, maxLag int) float64 {
	best, bestLag := math.Inf(-1), 0
	for lag := minLag; lag <= maxLag; lag++ {
		var sum float64
		for i := 0; i+lag < len(x); i++ {
			sum += float64(x[i]) * float64(x[i+lag])
		}
		if sum > best {
			best, bestLag = sum, lag
		}
	}
	return sr / float64(bestLag)
}

func TestWaveguideFundamentalMatchesTarget(t *testing.T) {
	for _, closed := range []bool{false, true} {
		w := testWaveguide(closed)
		w.radius = 1
		w.mat.Decay = 10
		w.Update(440, 0, false)
		out := make([]float32, 9600)
		for i := range out {
			var x dsp.Vec4
			if i == 0 {
				x = dsp.Splat(1)
			}
			out[i] = w.Process(x)[0]
		}
		f := autocorrFundamental(out, 48000, 40, 1200)
		if math.Abs(f-440) > 440*0.015 {
			t.Fatalf("closed=%v fundamental got=%.1f Hz want ~440", closed, f)
		}
	}
}

func TestWaveguideEchoArrivesAfterDelay(t *testing.T) {
	w := testWaveguide(false)
	w.Update(440, 0, false)
	first := -1
	for i := 0; i < 400; i++ {
		var x dsp.Vec4
		if i == 0 {
			x = dsp.Splat(1)
		}
		y := w.Process(x)
		if y[0] != 0 {
			first = i
			break
		}
	}
	if first != w.Delay() {
		t.Fatalf("first echo at %d want %d", first, w.Delay())
	}
}

func TestWaveguideDecayAndRelease(t *testing.T) {
	w := testWaveguide(false)
	w.Update(220, 0, false)
	if !(w.decay > 0 && w.decay < 1) {
		t.Fatalf("loop decay out of range: %f", w.decay)
	}
	held := w.decay
	w.mat.Rel = 0.1
	w.Update(220, 0, true)
	if !(w.decay < held) {
		t.Fatalf("release should shorten the loop decay: %f >= %f", w.decay, held)
	}
	w.mat.Rel = 0
	w.Update(220, 0, true)
	if w.decay != 0 {
		t.Fatalf("zero release should mute the loop, got %f", w.decay)
	}
}

func TestWaveguideClearKeepsTuning(t *testing.T) {
	w := testWaveguide(true)
	w.Update(300, 0, false)
	before := w.Delay()
	for i := 0; i < 1000; i++ {
		w.Process(dsp.Splat(0.1))
	}
	w.Clear()
	if w.Delay() != before {
		t.Fatalf("clear changed delay: got=%d want=%d", w.Delay(), before)
	}
	for i := 0; i < 2*before; i++ {
		if y := w.Process(dsp.Vec4{}); y != (dsp.Vec4{}) {
			t.Fatalf("cleared tube still rings at %d: %v", i, y)
		}
	}
}
