package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/cwbudde/algo-rippler/preset"
	"github.com/cwbudde/algo-rippler/rippler"
)

func main() {
	sampleRate := flag.Int("sample-rate", 48000, "Output sample rate in Hz")
	polyphony := flag.Int("polyphony", rippler.DefaultPolyphony, "Voice count")
	program := flag.String("program", "default", "Built-in program ("+strings.Join(preset.Programs(), ", ")+")")
	presetPath := flag.String("preset", "", "Preset JSON file, overrides -program")
	irPath := flag.String("ir", "", "Room IR WAV path (optional)")
	bufferFrames := flag.Int("buffer", 512, "Output buffer size in frames, 0 lets the driver choose")
	velocity := flag.Int("velocity", 100, "Default velocity")
	flag.Parse()

	params, err := preset.Program(*program)
	if err != nil {
		die("%v", err)
	}
	roomIR := *irPath
	if *presetPath != "" {
		pr, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("error loading preset %q: %v", *presetPath, err)
		}
		params = pr.Params
		if roomIR == "" {
			roomIR = pr.RoomIRPath
		}
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
		die("%v", err)
	}
	pl, err := newPlayer(s, *bufferFrames)
	if err != nil {
		die("audio output: %v", err)
	}
	defer pl.Close()

	c := &console{synth: s, velocity: *velocity}
	if err := repl(c); err != nil && err != io.EOF {
		die("%v", err)
	}
	s.Panic()
}

func repl(c *console) error {
	rl, err := readline.New("rippler> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("type help for commands")
	for !c.quit {
		line, err := rl.Readline()
		if err == io.EOF || err == readline.ErrInterrupt {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		out, err := c.eval(line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if out != "" {
			fmt.Println(out)
		}
	}
	return nil
}

func durationOf(frames, sampleRate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
