package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-rippler/internal/wavio"
	"github.com/cwbudde/algo-rippler/irsynth"
	"github.com/cwbudde/algo-rippler/models"
)

func main() {
	cfg := irsynth.DefaultConfig()

	output := flag.String("output", "assets/ir/room_48k.wav", "Output WAV path")
	body := flag.String("body-model", cfg.BodyModel.String(), "Model table for the body modes")
	flag.IntVar(&cfg.SampleRate, "sample-rate", cfg.SampleRate, "Output sample rate")
	flag.Float64Var(&cfg.DurationS, "duration", cfg.DurationS, "IR length in seconds")
	flag.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flag.Float64Var(&cfg.PreDelayS, "pre-delay", cfg.PreDelayS, "Delay before the first reflection (s)")
	flag.IntVar(&cfg.EarlyCount, "early", cfg.EarlyCount, "Number of early reflections")
	flag.Float64Var(&cfg.EarlySpanS, "early-span", cfg.EarlySpanS, "Time span of the early reflections (s)")
	flag.Float64Var(&cfg.EarlyLevel, "early-level", cfg.EarlyLevel, "Early reflection level")
	flag.Float64Var(&cfg.LateLevel, "late", cfg.LateLevel, "Diffuse late-tail level")
	flag.Float64Var(&cfg.StereoWidth, "stereo-width", cfg.StereoWidth, "Tail decorrelation, 0..1")
	flag.Float64Var(&cfg.LowDecayS, "low-decay", cfg.LowDecayS, "Low band T60 (s)")
	flag.Float64Var(&cfg.HighDecayS, "high-decay", cfg.HighDecayS, "High band T60 (s)")
	flag.Float64Var(&cfg.CrossoverHz, "crossover", cfg.CrossoverHz, "Tail band split frequency (Hz)")
	flag.Float64Var(&cfg.BodyHz, "body-hz", cfg.BodyHz, "Body fundamental in Hz, 0 disables the body")
	flag.IntVar(&cfg.BodyModes, "body-modes", cfg.BodyModes, "Number of body modes")
	flag.Float64Var(&cfg.BodyDecayS, "body-decay", cfg.BodyDecayS, "Body mode T60 (s)")
	flag.Float64Var(&cfg.BodyLevel, "body-level", cfg.BodyLevel, "Body level")
	flag.Float64Var(&cfg.NormalizePeak, "normalize", cfg.NormalizePeak, "Peak normalization target")
	flag.Parse()

	m, err := models.Parse(*body)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rippler-ir error: %v\n", err)
		os.Exit(1)
	}
	cfg.BodyModel = m

	left, right, err := irsynth.Generate(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rippler-ir error: %v\n", err)
		os.Exit(1)
	}

	data := make([]float32, 2*len(left))
	for i := range left {
		data[2*i] = left[i]
		data[2*i+1] = right[i]
	}
	if err := wavio.WriteStereoInterleaved(*output, data, cfg.SampleRate); err != nil {
		fmt.Fprintf(os.Stderr, "wav write error: %v\n", err)
		os.Exit(1)
	}

	peak := 0.0
	for _, v := range data {
		peak = math.Max(peak, math.Abs(float64(v)))
	}
	fmt.Printf("Wrote %s\n", *output)
	fmt.Printf("SampleRate: %d Hz, Duration: %.3f s, Samples: %d\n", cfg.SampleRate, cfg.DurationS, len(left))
	fmt.Printf("Peak: %.6f, RMS: %.6f\n", peak, wavio.RMS(data))
}
