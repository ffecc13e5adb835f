package rippler

import (
	"testing"

	"github.com/cwbudde/algo-rippler/dsp"
	"github.com/cwbudde/algo-rippler/models"
)

func testResonator(p ResonatorParams) (*Resonator, *models.Bank) {
	r := newResonator()
	r.SetParams(48000, p)
	return r, models.NewBank()
}

func TestResonatorDeactivatesAfterOneSecondOfSilence(t *testing.T) {
	r, _ := testResonator(defaultResonator(true))
	r.Activate()
	for i := 0; i < 47999; i++ {
		r.Process(dsp.Vec4{})
	}
	if !r.Active() {
		t.Fatalf("resonator stopped before a full second of silence")
	}
	r.Process(dsp.Vec4{})
	if r.Active() {
		t.Fatalf("resonator still active after a full second of silence")
	}
	if out := r.Process(dsp.Splat(1)); out != (dsp.Vec4{}) {
		t.Fatalf("inactive resonator produced %v", out)
	}
}

func TestResonatorReactivateKeepsSilenceCount(t *testing.T) {
	r, _ := testResonator(defaultResonator(true))
	r.Activate()
	for i := 0; i < 1000; i++ {
		r.Process(dsp.Vec4{})
	}
	r.Activate()
	if r.silence != 1000 {
		t.Fatalf("activating an active resonator reset silence: got=%d want=1000", r.silence)
	}
	r.Clear()
	r.Activate()
	if r.silence != 0 {
		t.Fatalf("activating a cleared resonator should restart silence, got=%d", r.silence)
	}
}

func TestResonatorInputKeepsItAlive(t *testing.T) {
	r, bank := testResonator(defaultResonator(true))
	r.Update(220, 1, false, bank.Table(models.A, models.String))
	r.Activate()
	// only the external input lanes carry signal
	in := dsp.Vec4{0, 0, 1e-3, 0}
	for i := 0; i < 3*48000; i++ {
		r.Process(in)
	}
	if !r.Active() {
		t.Fatalf("steady external input should keep the resonator active")
	}
}

func TestResonatorRingsOutAndStops(t *testing.T) {
	r, bank := testResonator(defaultResonator(true))
	r.Update(220, 1, false, bank.Table(models.A, models.String))
	r.Activate()

	steps := 0
	var peak float32
	for r.Active() && steps < 20*48000 {
		var x dsp.Vec4
		if steps == 0 {
			x = dsp.Vec4{1, 1, 0, 0}
		}
		y := r.Process(x)
		if y[0] > peak {
			peak = y[0]
		}
		steps++
	}
	if peak == 0 {
		t.Fatalf("struck resonator produced no output")
	}
	if r.Active() {
		t.Fatalf("resonator never deactivated")
	}
	if steps < 48000 {
		t.Fatalf("deactivated too early: %d steps", steps)
	}
}

func TestResonatorOnlyUsesConfiguredPartials(t *testing.T) {
	p := defaultResonator(true)
	p.Partials = 4
	r, bank := testResonator(p)
	r.Update(110, 1, false, bank.Table(models.A, models.String))
	for i := 0; i < 4; i++ {
		if r.Partial(i).Inert() {
			t.Fatalf("partial %d should be tuned", i)
		}
	}
	for i := 4; i < MaxPartials; i++ {
		if !r.Partial(i).Inert() {
			t.Fatalf("partial %d beyond the configured count was tuned", i)
		}
	}
}

func TestResonatorSelectsWaveguideForTubes(t *testing.T) {
	p := defaultResonator(true)
	p.Model = models.ClosedTube
	r, bank := testResonator(p)
	r.Update(200, 1, false, bank.Table(models.A, models.ClosedTube))
	if r.kind != kindTube || !r.Waveguide().closed {
		t.Fatalf("closed tube should route through a closed waveguide")
	}
	if got := r.Waveguide().Delay(); got != 120 {
		t.Fatalf("closed tube delay got=%d want=120", got)
	}
	r.Activate()
	energy := 0.0
	for i := 0; i < 4800; i++ {
		var x dsp.Vec4
		if i == 0 {
			x = dsp.Vec4{1, 1, 0, 0}
		}
		y := r.Process(x)
		energy += float64(y[0]) * float64(y[0])
	}
	if energy == 0 {
		t.Fatalf("tube produced no output")
	}
}

func TestResonatorCutSelectsPostFilter(t *testing.T) {
	cases := []struct {
		cut    float32
		active bool
	}{
		{0, false},
		{-1, true},
		{-0.5, true},
		{0.5, true},
		{1, true},
	}
	for _, tc := range cases {
		p := defaultResonator(true)
		p.Cut = tc.cut
		r, _ := testResonator(p)
		if r.filterActive != tc.active {
			t.Fatalf("cut=%f: filter active got=%v want=%v", tc.cut, r.filterActive, tc.active)
		}
	}
	if f, lp := cutFrequency(-1); !lp || f != 20 {
		t.Fatalf("cut -1 got=(%f,%v) want (20,lowpass)", f, lp)
	}
	if f, lp := cutFrequency(1); lp || f < 19999 {
		t.Fatalf("cut 1 got=(%f,%v) want (20000,highpass)", f, lp)
	}
}

func TestResonatorClearDeactivates(t *testing.T) {
	r, bank := testResonator(defaultResonator(true))
	r.Update(220, 1, false, bank.Table(models.A, models.String))
	r.Activate()
	r.Process(dsp.Splat(1))
	r.Clear()
	if r.Active() {
		t.Fatalf("clear should deactivate")
	}
}
