package render

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-rippler/rippler"
)

func newSynth(t *testing.T) *rippler.Synth {
	t.Helper()
	s, err := rippler.NewSynth(rippler.Config{SampleRate: 48000})
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	return s
}

func TestFixedDurationRender(t *testing.T) {
	opts := DefaultOptions()
	opts.DurationS = 0.1
	out := Notes(newSynth(t), opts)
	if len(out) != 2*4800 {
		t.Fatalf("length got=%d want=%d", len(out), 2*4800)
	}
	if RMS(out) == 0 {
		t.Fatalf("expected sound")
	}
}

func TestAutoStopEndsOnDecay(t *testing.T) {
	opts := DefaultOptions()
	opts.DecayDBFS = -80
	opts.ReleaseAfterS = 0.05
	opts.MinDurationS = 0.2
	opts.MaxDurationS = 10
	out := Notes(newSynth(t), opts)
	frames := len(out) / 2
	if frames < 9600 || frames >= 480000 {
		t.Fatalf("auto-stop length %d outside (0.2s, 10s)", frames)
	}
	tail := out[len(out)-2*BlockSize:]
	if RMS(tail) >= math.Pow(10, -80.0/20) {
		t.Fatalf("last block should be below the threshold, rms=%g", RMS(tail))
	}
}

func TestAutoStopCapsAtMaxDuration(t *testing.T) {
	opts := DefaultOptions()
	opts.DecayDBFS = -300
	opts.ReleaseAfterS = -1
	opts.MinDurationS = 0
	opts.MaxDurationS = 0.05
	out := Notes(newSynth(t), opts)
	if len(out) != 2*2400 {
		t.Fatalf("length got=%d want=%d", len(out)/2, 2400)
	}
}

func TestMonoAndPeak(t *testing.T) {
	st := []float32{1, 0, -0.5, -0.5}
	m := Mono(st)
	if len(m) != 2 || m[0] != 0.5 || m[1] != -0.5 {
		t.Fatalf("mono got=%v", m)
	}
	if Peak(st) != 1 {
		t.Fatalf("peak got=%f", Peak(st))
	}
}
