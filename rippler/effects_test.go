package rippler

import (
	"math"
	"testing"
)

func TestCombEchoesAfterTwentyMilliseconds(t *testing.T) {
	c := NewComb(48000)
	var echoL, echoR int = -1, -1
	for i := 0; i < 2000; i++ {
		var x float32
		if i == 0 {
			x = 1
		}
		l, r := c.Process(x, x)
		if i == 0 && (l != 1 || r != 1) {
			t.Fatalf("dry path changed: l=%f r=%f", l, r)
		}
		if i > 0 && l != 0 && echoL < 0 {
			echoL = i
			if math.Abs(float64(l)-0.33) > 1e-6 {
				t.Fatalf("left echo got=%f want=0.33", l)
			}
		}
		if i > 0 && r != 0 && echoR < 0 {
			echoR = i
			if math.Abs(float64(r)+0.33) > 1e-6 {
				t.Fatalf("right echo got=%f want=-0.33", r)
			}
		}
	}
	if echoL != 960 || echoR != 960 {
		t.Fatalf("echo at l=%d r=%d want 960", echoL, echoR)
	}
	c.Reset()
	for i := 0; i < 2000; i++ {
		if l, r := c.Process(0, 0); l != 0 || r != 0 {
			t.Fatalf("reset comb still echoes at %d", i)
		}
	}
}

func TestLimiterPassesQuietSignal(t *testing.T) {
	l := NewLimiter(48000)
	for i := 0; i < 4800; i++ {
		x := float32(0.1 * math.Sin(2*math.Pi*440*float64(i)/48000))
		a, b := l.Process(x, -x)
		if a != x || b != -x {
			t.Fatalf("quiet signal altered at %d: %f -> %f", i, x, a)
		}
	}
}

func TestLimiterReducesLoudSignal(t *testing.T) {
	const sr = 48000
	l := NewLimiter(sr)
	var tailL, tailR float64
	for i := 0; i < sr/2; i++ {
		x := float32(4 * math.Sin(2*math.Pi*100*float64(i)/sr))
		a, b := l.Process(x, 0.05*x)
		if i >= sr/2-4800 {
			tailL = max(tailL, math.Abs(float64(a)))
			tailR = max(tailR, math.Abs(float64(b)))
		}
	}
	if tailL >= 2 || tailL < 0.5 {
		t.Fatalf("left peak after limiting got=%f want in [0.5,2)", tailL)
	}
	// channels are detected independently
	if math.Abs(tailR-0.2) > 1e-3 {
		t.Fatalf("quiet right channel should pass: peak=%f want 0.2", tailR)
	}
	l.Reset()
	if a, _ := l.Process(0.1, 0.1); a != 0.1 {
		t.Fatalf("reset limiter should start at unity gain, got %f", a)
	}
}
