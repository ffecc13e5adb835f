package main

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-rippler/analysis"
	"github.com/cwbudde/algo-rippler/internal/render"
	"github.com/cwbudde/algo-rippler/preset"
	"github.com/cwbudde/algo-rippler/rippler"
)

func TestNewMayflyConfigVariants(t *testing.T) {
	for _, v := range []string{"ma", "desma", "olce", "eobbma", "gsasma", "mpma", "aoblmoa"} {
		cfg, err := newMayflyConfig(v, 6, 4, 3)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		if cfg.ProblemSize != 4 || cfg.NPop != 6 || cfg.NC != 12 || cfg.NM < 1 {
			t.Fatalf("%s: unexpected config %+v", v, cfg)
		}
	}
	if _, err := newMayflyConfig("nope", 6, 4, 3); err == nil {
		t.Fatalf("expected error for unknown variant")
	}
}

func shortRender() render.Options {
	opts := render.DefaultOptions()
	opts.Notes = []int{64}
	opts.ReleaseAfterS = -1
	opts.DurationS = 0.25
	return opts
}

func TestEvaluateScoresOwnRenderAsClose(t *testing.T) {
	base := rippler.DefaultParams()
	ks, init := selectKnobs(base, map[string]bool{"a": true})
	s, err := rippler.NewSynth(rippler.Config{SampleRate: 48000, Params: &base})
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	ref := render.Mono(render.Notes(s, shortRender()))
	cfg := &optimizationConfig{reference: ref, base: base, knobs: ks, render: shortRender(), sampleRate: 48000}

	same, err := evaluate(cfg, init)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	other := cloneCandidate(init)
	for i, k := range ks {
		if k.def.Name == "a.fine" {
			other.Vals[i] = 99
		}
	}
	far, err := evaluate(cfg, other)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if same.Score >= far.Score {
		t.Fatalf("own render should score better: same=%f detuned=%f", same.Score, far.Score)
	}
}

func TestRunOptimizationRespectsEvalBudget(t *testing.T) {
	base := rippler.DefaultParams()
	ks, init := selectKnobs(base, map[string]bool{"mallet": true})
	s, _ := rippler.NewSynth(rippler.Config{SampleRate: 48000, Params: &base})
	ref := render.Mono(render.Notes(s, shortRender()))

	improved := 0
	cfg := &optimizationConfig{
		reference:        ref,
		base:             base,
		knobs:            ks,
		initCandidate:    init,
		render:           shortRender(),
		sampleRate:       48000,
		seed:             3,
		timeBudget:       60,
		maxEvals:         12,
		mayflyVariant:    "ma",
		mayflyPop:        2,
		mayflyRoundEvals: 8,
		workers:          1,
		onImprove:        func(candidate, analysis.Metrics) { improved++ },
	}
	res, err := runOptimization(cfg)
	if err != nil {
		t.Fatalf("runOptimization: %v", err)
	}
	if res.evals > cfg.maxEvals {
		t.Fatalf("evals %d exceed budget %d", res.evals, cfg.maxEvals)
	}
	if len(res.best.Vals) != len(ks) {
		t.Fatalf("best candidate has %d values", len(res.best.Vals))
	}
	if improved == 0 && res.bestMetrics.Score < startScore(t, cfg) {
		t.Fatalf("score improved without an onImprove call")
	}
}

func TestWriteOutputsWritesLoadablePreset(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "fit", "glass.json")
	p, _ := preset.Program("glass")
	defs := []knobDef{{Name: "a.decay", Min: 0.05, Max: 30}}
	if err := writeOutputs(out, "", "glass-fit", p, runReport{}, defs, candidate{Vals: []float64{4}}); err != nil {
		t.Fatalf("writeOutputs: %v", err)
	}
	got, err := preset.LoadJSON(out)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if got.Name != "glass-fit" || got.Params != p.Clamped() {
		t.Fatalf("preset mismatch: %+v", got)
	}
}

func startScore(t *testing.T, cfg *optimizationConfig) float64 {
	t.Helper()
	m, err := evaluate(cfg, cfg.initCandidate)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return m.Score
}
