package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-rippler/preset"
	"github.com/cwbudde/algo-rippler/rippler"
)

// synthControl is the part of the synth the console drives.
type synthControl interface {
	NoteOn(note, velocity int) bool
	NoteOff(note int) bool
	AllNotesOff() bool
	Panic() bool
	Params() rippler.Params
	SetParams(p rippler.Params)
	Sounding() int
}

type console struct {
	synth    synthControl
	velocity int
	quit     bool
}

type command struct {
	name    string
	usage   string
	run     func(*console, []string) (string, error)
	minArgs int
	maxArgs int // -1 for no limit
}

var commands []command

func init() {
	commands = []command{
		{"on", "on <note> [velocity]", onCommand, 1, 2},
		{"off", "off <note>", offCommand, 1, 1},
		{"hit", "hit <note>... strike several notes", hitCommand, 1, -1},
		{"vel", "vel <1-127> default velocity", velCommand, 1, 1},
		{"set", "set <section.field> <value>, e.g. set a.decay 3", setCommand, 2, 2},
		{"program", "program [name]", programCommand, 0, 1},
		{"save", "save <path.json>", saveCommand, 1, 1},
		{"load", "load <path.json>", loadCommand, 1, 1},
		{"release", "release all held notes", releaseCommand, 0, 0},
		{"panic", "silence everything", panicCommand, 0, 0},
		{"status", "show voices and sound", statusCommand, 0, 0},
		{"help", "list commands", helpCommand, 0, 0},
		{"quit", "exit", quitCommand, 0, 0},
	}
}

func (c *console) eval(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]
	for _, cmd := range commands {
		if name != cmd.name {
			continue
		}
		if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
			return "", fmt.Errorf("%s: wrong number of arguments, usage: %s", cmd.name, cmd.usage)
		}
		out, err := cmd.run(c, args)
		if err != nil {
			return out, fmt.Errorf("%s error: %w", cmd.name, err)
		}
		return out, nil
	}
	return "", fmt.Errorf("unknown command: %s (try help)", name)
}

func parseNote(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 127 {
		return 0, fmt.Errorf("invalid note %q", s)
	}
	return n, nil
}

func onCommand(c *console, args []string) (string, error) {
	note, err := parseNote(args[0])
	if err != nil {
		return "", err
	}
	vel := c.velocity
	if len(args) > 1 {
		if vel, err = strconv.Atoi(args[1]); err != nil || vel < 0 || vel > 127 {
			return "", fmt.Errorf("invalid velocity %q", args[1])
		}
	}
	if !c.synth.NoteOn(note, vel) {
		return "", fmt.Errorf("event queue full")
	}
	return "", nil
}

func offCommand(c *console, args []string) (string, error) {
	note, err := parseNote(args[0])
	if err != nil {
		return "", err
	}
	c.synth.NoteOff(note)
	return "", nil
}

func hitCommand(c *console, args []string) (string, error) {
	for _, a := range args {
		note, err := parseNote(a)
		if err != nil {
			return "", err
		}
		c.synth.NoteOn(note, c.velocity)
		c.synth.NoteOff(note)
	}
	return "", nil
}

func velCommand(c *console, args []string) (string, error) {
	v, err := strconv.Atoi(args[0])
	if err != nil || v < 1 || v > 127 {
		return "", fmt.Errorf("velocity must be 1..127")
	}
	c.velocity = v
	return "", nil
}

// setCommand routes one field through the preset schema so the console
// accepts exactly what preset files accept.
func setCommand(c *console, args []string) (string, error) {
	path := strings.Split(strings.ToLower(args[0]), ".")
	var value any = args[1]
	switch {
	case args[1] == "true" || args[1] == "false":
		value = args[1] == "true"
	default:
		if f, err := strconv.ParseFloat(args[1], 64); err == nil {
			value = f
		}
	}
	var doc any = value
	for i := len(path) - 1; i >= 0; i-- {
		doc = map[string]any{path[i]: doc}
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	var f preset.File
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return "", fmt.Errorf("%s: %v", args[0], err)
	}
	p := c.synth.Params()
	if err := preset.ApplyFile(&p, &f); err != nil {
		return "", err
	}
	c.synth.SetParams(p)
	return "", nil
}

func programCommand(c *console, args []string) (string, error) {
	if len(args) == 0 {
		return strings.Join(preset.Programs(), " "), nil
	}
	p, err := preset.Program(args[0])
	if err != nil {
		return "", err
	}
	c.synth.SetParams(p)
	return "", nil
}

func saveCommand(c *console, args []string) (string, error) {
	return "", preset.SaveJSON(args[0], "", c.synth.Params())
}

func loadCommand(c *console, args []string) (string, error) {
	pr, err := preset.LoadJSON(args[0])
	if err != nil {
		return "", err
	}
	c.synth.SetParams(pr.Params)
	return "loaded " + pr.Name, nil
}

func releaseCommand(c *console, _ []string) (string, error) {
	c.synth.AllNotesOff()
	return "", nil
}

func panicCommand(c *console, _ []string) (string, error) {
	c.synth.Panic()
	return "", nil
}

func statusCommand(c *console, _ []string) (string, error) {
	p := c.synth.Params()
	b := "off"
	if p.B.On {
		b = p.B.Model.String()
	}
	return fmt.Sprintf("sounding=%d velocity=%d a=%s b=%s coupling=%s gain=%.1fdB",
		c.synth.Sounding(), c.velocity, p.A.Model, b, p.Coupling, p.Gain), nil
}

func helpCommand(_ *console, _ []string) (string, error) {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, fmt.Sprintf("  %-8s %s", cmd.name, cmd.usage))
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n"), nil
}

func quitCommand(c *console, _ []string) (string, error) {
	c.quit = true
	return "", nil
}
