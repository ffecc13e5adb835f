package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-rippler/analysis"
	"github.com/cwbudde/algo-rippler/preset"
	"github.com/cwbudde/algo-rippler/rippler"
)

type runReport struct {
	ReferencePath  string             `json:"reference_path"`
	BasePreset     string             `json:"base_preset"`
	OutputPreset   string             `json:"output_preset"`
	SampleRate     int                `json:"sample_rate"`
	Notes          []int              `json:"notes"`
	Velocity       int                `json:"velocity"`
	DurationSec    float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
}

// writeOutputs stores the fitted preset and a report next to it.
func writeOutputs(outputPreset, reportPath, name string, p rippler.Params, rep runReport, defs []knobDef, best candidate) error {
	if err := preset.SaveJSON(outputPreset, name, p); err != nil {
		return err
	}
	rep.OutputPreset = outputPreset
	rep.BestKnobs = make(map[string]float64, len(defs))
	for i, d := range defs {
		rep.BestKnobs[d.Name] = best.Vals[i]
	}
	if reportPath == "" {
		reportPath = outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
