package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-rippler/analysis"
	"github.com/cwbudde/algo-rippler/internal/render"
	"github.com/cwbudde/algo-rippler/internal/wavio"
	"github.com/cwbudde/algo-rippler/preset"
)

func main() {
	referencePath := flag.String("reference", "reference/note.wav", "Reference WAV path")
	program := flag.String("program", "default", "Built-in program to start from")
	presetPath := flag.String("preset", "", "Base preset JSON path, overrides -program")
	outputPreset := flag.String("output-preset", "assets/presets/fitted.json", "Path to write the best fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	optimize := flag.String("optimize", "a,mallet", "Comma-separated knob groups to optimize: a, b, mallet, noise, mix")
	notes := flag.String("notes", "60", "MIDI notes struck together for each evaluation")
	velocity := flag.Int("velocity", 110, "MIDI velocity for rendering during fit")
	releaseAfter := flag.Float64("release-after", -1, "Seconds before NoteOff, negative holds the notes")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Float64("time-budget", 120.0, "Optimization time budget in seconds")
	maxEvals := flag.Int("max-evals", 5000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 20, "Print progress every N evaluations")
	decayDBFS := flag.Float64("decay-dbfs", -80.0, "Auto-stop threshold in dBFS")
	minDuration := flag.Float64("min-duration", 1.0, "Minimum render duration in seconds")
	maxDuration := flag.Float64("max-duration", 8.0, "Maximum render duration in seconds")
	workers := flag.String("workers", "1", "Parallel optimization workers running independent Mayfly rounds (number or 'auto')")
	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	groups, err := parseOptimizeGroups(*optimize)
	if err != nil {
		die("invalid -optimize: %v", err)
	}
	noteList, err := wavio.ParseNotes(*notes)
	if err != nil {
		die("invalid -notes: %v", err)
	}
	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	parsedWorkers, err := wavio.ParseWorkers(*workers)
	if err != nil {
		die("invalid workers value: %v", err)
	}
	*mayflyPop = max(*mayflyPop, 2)
	*mayflyRoundEvals = max(*mayflyRoundEvals, 2**mayflyPop)

	name := *program
	base, err := preset.Program(*program)
	if err != nil {
		die("%v", err)
	}
	if *presetPath != "" {
		pr, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		name, base = pr.Name, pr.Params
	}
	// the fit runs dry
	base.RoomMix = 0

	refRaw, refSR, err := wavio.ReadMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err := wavio.ResampleIfNeeded(refRaw, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	ks, init := selectKnobs(base, groups)
	if len(ks) == 0 {
		die("no knobs to optimize for groups %q", *optimize)
	}
	defs := knobDefs(ks)

	opts := render.DefaultOptions()
	opts.Notes = noteList
	opts.Velocity = *velocity
	opts.ReleaseAfterS = *releaseAfter
	opts.DecayDBFS = *decayDBFS
	opts.MinDurationS = *minDuration
	opts.MaxDurationS = *maxDuration

	fitName := name + "-fit"
	rep := runReport{
		ReferencePath: *referencePath,
		BasePreset:    name,
		SampleRate:    *sampleRate,
		Notes:         noteList,
		Velocity:      *velocity,
		MayflyVariant: strings.ToLower(*mayflyVariant),
	}
	cfg := &optimizationConfig{
		reference:        ref,
		base:             base,
		knobs:            ks,
		initCandidate:    init,
		render:           opts,
		sampleRate:       *sampleRate,
		seed:             *seed,
		timeBudget:       *timeBudget,
		maxEvals:         *maxEvals,
		reportEvery:      max(*reportEvery, 1),
		mayflyVariant:    *mayflyVariant,
		mayflyPop:        *mayflyPop,
		mayflyRoundEvals: *mayflyRoundEvals,
		workers:          parsedWorkers,
	}
	cfg.onImprove = func(best candidate, m analysis.Metrics) {
		r := rep
		r.BestScore, r.BestSimilarity, r.BestMetrics = m.Score, m.Similarity, m
		if err := writeOutputs(*outputPreset, *reportPath, fitName, applyCandidate(base, ks, best), r, defs, best); err != nil {
			fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
		}
	}

	result, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}

	rep.DurationSec = result.elapsed
	rep.Evaluations = result.evals
	rep.BestScore = result.bestMetrics.Score
	rep.BestSimilarity = result.bestMetrics.Similarity
	rep.BestMetrics = result.bestMetrics
	if err := writeOutputs(*outputPreset, *reportPath, fitName, applyCandidate(base, ks, result.best), rep, defs, result.best); err != nil {
		die("failed to write outputs: %v", err)
	}

	fmt.Printf("Best score=%.4f similarity=%.2f%% after %d evals in %.1fs\n",
		result.bestMetrics.Score, result.bestMetrics.Similarity*100, result.evals, result.elapsed)
	for i, d := range defs {
		fmt.Printf("  %-16s %.5g\n", d.Name, result.best.Vals[i])
	}
	fmt.Printf("Wrote %s\n", filepath.Clean(*outputPreset))
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
