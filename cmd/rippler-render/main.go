package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/cwbudde/algo-rippler/internal/render"
	"github.com/cwbudde/algo-rippler/internal/wavio"
	"github.com/cwbudde/algo-rippler/preset"
	"github.com/cwbudde/algo-rippler/rippler"
)

func main() {
	opts := render.DefaultOptions()

	notes := flag.String("notes", "69", "Comma separated MIDI notes struck together")
	flag.IntVar(&opts.Velocity, "velocity", opts.Velocity, "MIDI velocity (1-127)")
	flag.Float64Var(&opts.DurationS, "duration", opts.DurationS, "Duration in seconds")
	flag.Float64Var(&opts.ReleaseAfterS, "release-after", opts.ReleaseAfterS, "Send NoteOff after this many seconds, negative holds the notes")
	flag.Float64Var(&opts.DecayDBFS, "decay-dbfs", opts.DecayDBFS, "Auto-stop when stereo block RMS falls below this dBFS (e.g. -90). Disabled by default")
	flag.IntVar(&opts.HoldBlocks, "decay-hold-blocks", opts.HoldBlocks, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	flag.Float64Var(&opts.MinDurationS, "min-duration", opts.MinDurationS, "Minimum render duration in seconds when using -decay-dbfs")
	flag.Float64Var(&opts.MaxDurationS, "max-duration", opts.MaxDurationS, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	polyphony := flag.Int("polyphony", rippler.DefaultPolyphony, "Voice count")
	program := flag.String("program", "default", "Built-in program ("+strings.Join(preset.Programs(), ", ")+")")
	presetPath := flag.String("preset", "", "Preset JSON file, overrides -program")
	irPath := flag.String("ir", "", "Room IR WAV path override (optional)")
	roomMix := flag.Float64("room-mix", math.NaN(), "Room stage wet level override, 0..1")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	var err error
	if opts.Notes, err = wavio.ParseNotes(*notes); err != nil {
		fail("invalid -notes: %v", err)
	}

	name := *program
	params, err := preset.Program(*program)
	if err != nil {
		fail("%v", err)
	}
	roomIR := ""
	if *presetPath != "" {
		pr, err := preset.LoadJSON(*presetPath)
		if err != nil {
			fail("error loading preset %q: %v", *presetPath, err)
		}
		name, params, roomIR = pr.Name, pr.Params, pr.RoomIRPath
	}
	if *irPath != "" {
		roomIR = *irPath
	}
	if !math.IsNaN(*roomMix) {
		params.RoomMix = float32(*roomMix)
	}
	if roomIR != "" && params.RoomMix == 0 {
		params.RoomMix = 0.3
	}

	s, err := rippler.NewSynth(rippler.Config{
		SampleRate: *sampleRate,
		Polyphony:  *polyphony,
		Params:     &params,
		RoomIRPath: roomIR,
	})
	if err != nil {
		fail("%v", err)
	}

	fmt.Printf("Rendering notes %v, velocity %d at %d Hz (sound: %s, room IR: %q)...\n", opts.Notes, opts.Velocity, *sampleRate, name, roomIR)
	samples := render.Notes(s, opts)
	frames := len(samples) / 2
	if opts.AutoStop() {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", frames, float64(frames)/float64(*sampleRate), opts.DecayDBFS)
	}

	if err := wavio.WriteStereoInterleaved(*output, samples, *sampleRate); err != nil {
		fail("error writing WAV file: %v", err)
	}
	fmt.Printf("Successfully wrote %s (%d frames, peak %.4f)\n", *output, frames, render.Peak(samples))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
