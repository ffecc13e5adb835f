package rippler

import (
	"math"
	"testing"
)

func TestMalletRunsForTenthOfASecond(t *testing.T) {
	var m Mallet
	m.Trigger(48000, 1000)
	n := 0
	energy := 0.0
	for m.Active() {
		s := m.Process()
		energy += float64(s) * float64(s)
		n++
		if n > 48000 {
			break
		}
	}
	if n != 4800 {
		t.Fatalf("strike length got=%d want=4800", n)
	}
	if energy == 0 {
		t.Fatalf("strike produced no output")
	}
	if s := m.Process(); s != 0 {
		t.Fatalf("finished mallet should be silent, got=%f", s)
	}
}

func TestMalletClearStopsStrike(t *testing.T) {
	var m Mallet
	m.Trigger(44100, 600)
	m.Process()
	m.Clear()
	if m.Active() || m.Process() != 0 {
		t.Fatalf("cleared mallet still active")
	}
}

func TestMalletFrequencyVelocityMapping(t *testing.T) {
	if f := malletFrequency(600, 0, 1); math.Abs(float64(f)-600) > 6 {
		t.Fatalf("no velocity tracking: got=%f want=600", f)
	}
	if f := malletFrequency(600, 1, 1); f != 5000 {
		t.Fatalf("full positive tracking should clamp at 5000, got=%f", f)
	}
	if f := malletFrequency(600, -1, 1); f != 100 {
		t.Fatalf("full negative tracking should clamp at 100, got=%f", f)
	}
	lo := malletFrequency(600, 0.3, 0.2)
	hi := malletFrequency(600, 0.3, 0.9)
	if !(hi > lo) {
		t.Fatalf("harder strikes should be brighter: lo=%f hi=%f", lo, hi)
	}
}
