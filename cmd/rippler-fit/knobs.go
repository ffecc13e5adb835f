package main

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cwbudde/algo-rippler/rippler"
)

type knobDef struct {
	Name  string
	Group string
	Min   float64
	Max   float64
	Log   bool // search in log space
	IsInt bool
}

type candidate struct {
	Vals []float64
}

// knob pairs a definition with accessors on Params.
type knob struct {
	def knobDef
	get func(p *rippler.Params) float64
	set func(p *rippler.Params, v float64)
}

func resonatorKnobs(group string, sel func(*rippler.Params) *rippler.ResonatorParams) []knob {
	field := func(name string, lo, hi float64, log bool, ptr func(*rippler.ResonatorParams) *float32) knob {
		return knob{
			def: knobDef{Name: group + "." + name, Group: group, Min: lo, Max: hi, Log: log},
			get: func(p *rippler.Params) float64 { return float64(*ptr(sel(p))) },
			set: func(p *rippler.Params, v float64) { *ptr(sel(p)) = float32(v) },
		}
	}
	return []knob{
		field("decay", 0.05, 30, true, func(r *rippler.ResonatorParams) *float32 { return &r.Decay }),
		field("damp", -1, 1, false, func(r *rippler.ResonatorParams) *float32 { return &r.Damp }),
		field("tone", -1, 1, false, func(r *rippler.ResonatorParams) *float32 { return &r.Tone }),
		field("hit", 0.02, 0.5, false, func(r *rippler.ResonatorParams) *float32 { return &r.Hit }),
		field("inharm", 0.0001, 0.5, true, func(r *rippler.ResonatorParams) *float32 { return &r.Inharm }),
		field("ratio", 0.1, 10, true, func(r *rippler.ResonatorParams) *float32 { return &r.Ratio }),
		field("fine", -99, 99, false, func(r *rippler.ResonatorParams) *float32 { return &r.Fine }),
	}
}

func floatKnob(group, name string, lo, hi float64, log bool, ptr func(*rippler.Params) *float32) knob {
	return knob{
		def: knobDef{Name: group + "." + name, Group: group, Min: lo, Max: hi, Log: log},
		get: func(p *rippler.Params) float64 { return float64(*ptr(p)) },
		set: func(p *rippler.Params, v float64) { *ptr(p) = float32(v) },
	}
}

var allKnobs = func() []knob {
	ks := resonatorKnobs("a", func(p *rippler.Params) *rippler.ResonatorParams { return &p.A })
	ks = append(ks, resonatorKnobs("b", func(p *rippler.Params) *rippler.ResonatorParams { return &p.B })...)
	ks = append(ks,
		floatKnob("mallet", "stiffness", 100, 5000, true, func(p *rippler.Params) *float32 { return &p.Mallet.Stiffness }),
		floatKnob("mallet", "mix", 0, 1, false, func(p *rippler.Params) *float32 { return &p.Mallet.Mix }),
		floatKnob("mallet", "res", 0, 1, false, func(p *rippler.Params) *float32 { return &p.Mallet.Res }),
		floatKnob("noise", "mix", 0, 1, false, func(p *rippler.Params) *float32 { return &p.Noise.Mix }),
		floatKnob("noise", "res", 0, 1, false, func(p *rippler.Params) *float32 { return &p.Noise.Res }),
		floatKnob("noise", "freq", 20, 20000, true, func(p *rippler.Params) *float32 { return &p.Noise.Freq }),
		floatKnob("noise", "q", 0.707, 4, false, func(p *rippler.Params) *float32 { return &p.Noise.Q }),
		floatKnob("noise", "decay", 1, 5000, true, func(p *rippler.Params) *float32 { return &p.Noise.Decay }),
		floatKnob("mix", "ab_mix", 0, 1, false, func(p *rippler.Params) *float32 { return &p.ABMix }),
		floatKnob("mix", "ab_split", 0.01, 1, true, func(p *rippler.Params) *float32 { return &p.ABSplit }),
		floatKnob("mix", "gain", -24, 24, false, func(p *rippler.Params) *float32 { return &p.Gain }),
	)
	return ks
}()

// parseOptimizeGroups parses a comma-separated list of knob groups.
func parseOptimizeGroups(raw string) (map[string]bool, error) {
	valid := map[string]bool{}
	for _, k := range allKnobs {
		valid[k.def.Group] = true
	}
	names := make([]string, 0, len(valid))
	for g := range valid {
		names = append(names, g)
	}
	sort.Strings(names)

	groups := make(map[string]bool)
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !valid[s] {
			return nil, fmt.Errorf("unknown optimize group %q (valid: %s)", s, strings.Join(names, ", "))
		}
		groups[s] = true
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no optimize groups specified")
	}
	return groups, nil
}

// selectKnobs returns the knobs of the active groups and the candidate
// holding base's current values. Knobs of a resonator that is off are
// skipped.
func selectKnobs(base rippler.Params, groups map[string]bool) ([]knob, candidate) {
	var ks []knob
	var vals []float64
	for _, k := range allKnobs {
		if !groups[k.def.Group] {
			continue
		}
		if k.def.Group == "b" && !base.B.On {
			continue
		}
		ks = append(ks, k)
		vals = append(vals, clamp(k.get(&base), k.def.Min, k.def.Max))
	}
	return ks, candidate{Vals: vals}
}

func knobDefs(ks []knob) []knobDef {
	defs := make([]knobDef, len(ks))
	for i, k := range ks {
		defs[i] = k.def
	}
	return defs
}

// applyCandidate writes c onto a copy of base.
func applyCandidate(base rippler.Params, ks []knob, c candidate) rippler.Params {
	p := base
	for i, k := range ks {
		k.set(&p, c.Vals[i])
	}
	return p.Clamped()
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i, d := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		var v float64
		if d.Log && d.Min > 0 {
			v = d.Min * math.Pow(d.Max/d.Min, x)
		} else {
			v = d.Min + x*(d.Max-d.Min)
		}
		if d.IsInt {
			v = math.Round(v)
		}
		vals[i] = v
	}
	return candidate{Vals: vals}
}

func toNormalized(c candidate, defs []knobDef) []float64 {
	pos := make([]float64, len(defs))
	for i, d := range defs {
		v := clamp(c.Vals[i], d.Min, d.Max)
		if d.Log && d.Min > 0 {
			pos[i] = math.Log(v/d.Min) / math.Log(d.Max/d.Min)
		} else if d.Max > d.Min {
			pos[i] = (v - d.Min) / (d.Max - d.Min)
		}
	}
	return pos
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
