package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-rippler/analysis"
	"github.com/cwbudde/algo-rippler/internal/render"
	"github.com/cwbudde/algo-rippler/internal/wavio"
	"github.com/cwbudde/algo-rippler/preset"
	"github.com/cwbudde/algo-rippler/rippler"
)

type band struct {
	name       string
	loHz, hiHz float64
}

var bands = []band{
	{"sub-bass (20-100Hz)", 20, 100},
	{"bass (100-300Hz)", 100, 300},
	{"low-mid (300-1kHz)", 300, 1000},
	{"mid (1-3kHz)", 1000, 3000},
	{"hi-mid (3-6kHz)", 3000, 6000},
	{"high (6-12kHz)", 6000, 12000},
	{"air (12-20kHz)", 12000, 20000},
}

type timeWindow struct {
	name           string
	startMs, endMs float64
}

var windows = []timeWindow{
	{"attack (0-20ms)", 0, 20},
	{"early (20-100ms)", 20, 100},
	{"ring (100-500ms)", 100, 500},
	{"decay (0.5-2s)", 500, 2000},
	{"late (2-4s)", 2000, 4000},
}

func main() {
	input := flag.String("input", "", "WAV to analyze; empty renders the selected sound")
	refPath := flag.String("reference", "", "Optional reference WAV to compare against")
	program := flag.String("program", "default", "Built-in program to render when -input is empty")
	presetPath := flag.String("preset", "", "Preset JSON to render, overrides -program")
	note := flag.Int("note", 60, "MIDI note to render")
	velocity := flag.Int("velocity", 110, "MIDI velocity to render")
	duration := flag.Float64("duration", 3, "Render length in seconds")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate")
	fftSize := flag.Int("fft", 8192, "FFT size for the partial list")
	partials := flag.Int("partials", 16, "Number of partials to list")
	floorDB := flag.Float64("floor", -60, "Partial floor relative to the loudest bin (dB)")
	jsonOut := flag.Bool("json", false, "Print the distance metrics as JSON (needs -reference)")
	flag.Parse()

	sr := *sampleRate
	var cand []float64
	var label string
	if *input != "" {
		raw, rate, err := wavio.ReadMono(*input)
		if err != nil {
			die("input: %v", err)
		}
		if cand, err = wavio.ResampleIfNeeded(raw, rate, sr); err != nil {
			die("input: %v", err)
		}
		label = *input
	} else {
		var err error
		if cand, label, err = renderSound(*program, *presetPath, *note, *velocity, *duration, sr); err != nil {
			die("render: %v", err)
		}
	}
	fmt.Printf("Signal: %s, %d frames @ %d Hz (%.2fs)\n", label, len(cand), sr, float64(len(cand))/float64(sr))

	an, err := analysis.NewAnalyzer(*fftSize)
	if err != nil {
		die("%v", err)
	}
	printPartials(an, cand, sr, *partials, *floorDB)
	if t60 := analysis.DecayTime(cand, sr); !math.IsNaN(t60) {
		fmt.Printf("Decay: T60 %.3fs\n", t60)
	}

	if *refPath == "" {
		return
	}
	raw, rate, err := wavio.ReadMono(*refPath)
	if err != nil {
		die("reference: %v", err)
	}
	ref, err := wavio.ResampleIfNeeded(raw, rate, sr)
	if err != nil {
		die("reference: %v", err)
	}
	fmt.Printf("\nReference: %s, %d frames\n", *refPath, len(ref))
	printPartials(an, ref, sr, *partials, *floorDB)

	m := analysis.Compare(ref, cand, sr)
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			die("%v", err)
		}
		return
	}
	fmt.Printf("\nDistance: score=%.4f similarity=%.2f%% lag=%d time=%.4f env=%.1fdB spec=%.1fdB decay=%.1fdB/s partials=%.1f cents\n\n",
		m.Score, m.Similarity*100, m.LagSamples, m.TimeRMSE, m.EnvelopeRMSEDB, m.SpectralRMSEDB, m.DecayDiffDBPerS, m.PartialCents)
	compareBands(ref, cand, sr)
}

func renderSound(program, presetPath string, note, velocity int, duration float64, sr int) ([]float64, string, error) {
	params, err := preset.Program(program)
	if err != nil {
		return nil, "", err
	}
	label := program
	if presetPath != "" {
		pr, err := preset.LoadJSON(presetPath)
		if err != nil {
			return nil, "", err
		}
		params, label = pr.Params, pr.Name
	}
	s, err := rippler.NewSynth(rippler.Config{SampleRate: sr, Params: &params})
	if err != nil {
		return nil, "", err
	}
	opts := render.DefaultOptions()
	opts.Notes = []int{note}
	opts.Velocity = velocity
	opts.DurationS = duration
	opts.ReleaseAfterS = -1
	return render.Mono(render.Notes(s, opts)), fmt.Sprintf("%s note %d", label, note), nil
}

func printPartials(an *analysis.Analyzer, x []float64, sr, count int, floorDB float64) {
	spec := an.Average(x, sr, 0, min(len(x), sr))
	peaks := spec.Peaks(count, floorDB, 20)
	fmt.Printf("%4s %10s %8s %8s\n", "#", "Hz", "ratio", "dB")
	for i, p := range peaks {
		fmt.Printf("%4d %10.2f %8.4f %8.1f\n", i+1, p.Hz, p.Ratio, p.DB)
	}
}

func compareBands(ref, cand []float64, sr int) {
	an, err := analysis.NewAnalyzer(4096)
	if err != nil {
		die("%v", err)
	}
	n := min(len(ref), len(cand))
	for _, tw := range windows {
		start := int(tw.startMs / 1000 * float64(sr))
		end := min(int(tw.endMs/1000*float64(sr)), n)
		if start >= end {
			continue
		}
		rs := an.Average(ref, sr, start, end)
		cs := an.Average(cand, sr, start, end)
		fmt.Printf("--- %s ---\n", tw.name)
		for _, b := range bands {
			rmse := analysis.BandRMSEDB(rs, cs, b.loHz, b.hiHz)
			refDB := rs.BandDB(b.loHz, b.hiHz)
			candDB := cs.BandDB(b.loHz, b.hiHz)
			marker := ""
			if rmse > 15 {
				marker = " <<<"
			}
			if rmse > 25 {
				marker = " <<< !!!"
			}
			fmt.Printf("  %-22s RMSE=%5.1fdB  ref=%6.1fdB  cand=%6.1fdB  diff=%+5.1fdB%s\n",
				b.name, rmse, refDB, candDB, candDB-refDB, marker)
		}
		fmt.Println()
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
