// Package preset stores synth sounds as JSON. Every field is optional and is
// applied on top of a base program, so a preset file only lists what differs.
package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-rippler/models"
	"github.com/cwbudde/algo-rippler/rippler"
)

// File is the JSON schema for synth presets.
type File struct {
	Name       string            `json:"name,omitempty"`
	Program    string            `json:"program,omitempty"`
	Mallet     *MalletSetting    `json:"mallet,omitempty"`
	A          *ResonatorSetting `json:"a,omitempty"`
	B          *ResonatorSetting `json:"b,omitempty"`
	Noise      *NoiseSetting     `json:"noise,omitempty"`
	Coupling   *string           `json:"coupling,omitempty"`
	ABMix      *float32          `json:"ab_mix,omitempty"`
	ABSplit    *float32          `json:"ab_split,omitempty"`
	Gain       *float32          `json:"gain,omitempty"`
	RoomMix    *float32          `json:"room_mix,omitempty"`
	RoomIRPath string            `json:"room_ir_path,omitempty"`
}

// MalletSetting overrides mallet fields.
type MalletSetting struct {
	Mix          *float32 `json:"mix,omitempty"`
	Res          *float32 `json:"res,omitempty"`
	Stiffness    *float32 `json:"stiffness,omitempty"`
	VelMix       *float32 `json:"vel_mix,omitempty"`
	VelRes       *float32 `json:"vel_res,omitempty"`
	VelStiffness *float32 `json:"vel_stiffness,omitempty"`
}

// ResonatorSetting overrides one resonator.
type ResonatorSetting struct {
	On        *bool    `json:"on,omitempty"`
	Model     *string  `json:"model,omitempty"`
	Partials  *int     `json:"partials,omitempty"`
	Decay     *float32 `json:"decay,omitempty"`
	Damp      *float32 `json:"damp,omitempty"`
	Tone      *float32 `json:"tone,omitempty"`
	Hit       *float32 `json:"hit,omitempty"`
	Rel       *float32 `json:"rel,omitempty"`
	Inharm    *float32 `json:"inharm,omitempty"`
	Ratio     *float32 `json:"ratio,omitempty"`
	Cut       *float32 `json:"cut,omitempty"`
	Radius    *float32 `json:"radius,omitempty"`
	Coarse    *float32 `json:"coarse,omitempty"`
	Fine      *float32 `json:"fine,omitempty"`
	VelDecay  *float32 `json:"vel_decay,omitempty"`
	VelHit    *float32 `json:"vel_hit,omitempty"`
	VelInharm *float32 `json:"vel_inharm,omitempty"`
}

// NoiseSetting overrides the noise layer.
type NoiseSetting struct {
	Mix     *float32 `json:"mix,omitempty"`
	Res     *float32 `json:"res,omitempty"`
	Mode    *string  `json:"mode,omitempty"`
	Freq    *float32 `json:"freq,omitempty"`
	Q       *float32 `json:"q,omitempty"`
	Attack  *float32 `json:"attack,omitempty"`
	Decay   *float32 `json:"decay,omitempty"`
	Sustain *float32 `json:"sustain,omitempty"`
	Release *float32 `json:"release,omitempty"`
	VelMix  *float32 `json:"vel_mix,omitempty"`
	VelRes  *float32 `json:"vel_res,omitempty"`
	VelFreq *float32 `json:"vel_freq,omitempty"`
	VelQ    *float32 `json:"vel_q,omitempty"`
}

// Preset is a loaded preset file.
type Preset struct {
	Name       string
	Params     rippler.Params
	RoomIRPath string
}

// LoadJSON loads a preset file and applies it on top of its base program
// (the default sound when none is named). A relative room IR path is
// resolved against the preset's directory.
func LoadJSON(path string) (*Preset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	base := rippler.DefaultParams()
	if f.Program != "" {
		base, err = Program(f.Program)
		if err != nil {
			return nil, err
		}
	}
	if err := ApplyFile(&base, &f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p := &Preset{Name: f.Name, Params: base, RoomIRPath: strings.TrimSpace(f.RoomIRPath)}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if p.RoomIRPath != "" && !filepath.IsAbs(p.RoomIRPath) {
		p.RoomIRPath = filepath.Clean(filepath.Join(filepath.Dir(path), p.RoomIRPath))
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto dst. Values outside their
// range are rejected, not clamped.
func ApplyFile(dst *rippler.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if m := f.Mallet; m != nil {
		if err := firstErr(
			set("mallet.mix", m.Mix, 0, 1, &dst.Mallet.Mix),
			set("mallet.res", m.Res, 0, 1, &dst.Mallet.Res),
			set("mallet.stiffness", m.Stiffness, 100, 5000, &dst.Mallet.Stiffness),
			set("mallet.vel_mix", m.VelMix, -1, 1, &dst.Mallet.VelMix),
			set("mallet.vel_res", m.VelRes, -1, 1, &dst.Mallet.VelRes),
			set("mallet.vel_stiffness", m.VelStiffness, -1, 1, &dst.Mallet.VelStiffness),
		); err != nil {
			return err
		}
	}
	if err := applyResonator("a", &dst.A, f.A); err != nil {
		return err
	}
	if err := applyResonator("b", &dst.B, f.B); err != nil {
		return err
	}
	if err := applyNoise(&dst.Noise, f.Noise); err != nil {
		return err
	}

	if f.Coupling != nil {
		c, err := ParseCoupling(*f.Coupling)
		if err != nil {
			return err
		}
		dst.Coupling = c
	}
	return firstErr(
		set("ab_mix", f.ABMix, 0, 1, &dst.ABMix),
		set("ab_split", f.ABSplit, 0.01, 1, &dst.ABSplit),
		set("gain", f.Gain, -24, 24, &dst.Gain),
		set("room_mix", f.RoomMix, 0, 1, &dst.RoomMix),
	)
}

func applyResonator(prefix string, dst *rippler.ResonatorParams, s *ResonatorSetting) error {
	if s == nil {
		return nil
	}
	if s.On != nil {
		dst.On = *s.On
	}
	if s.Model != nil {
		m, err := models.Parse(*s.Model)
		if err != nil {
			return fmt.Errorf("%s.model: %w", prefix, err)
		}
		SelectModel(dst, m)
	}
	if s.Partials != nil {
		if !validPartials(*s.Partials) {
			return fmt.Errorf("%s.partials must be one of %v", prefix, rippler.PartialCounts)
		}
		dst.Partials = *s.Partials
	}
	return firstErr(
		set(prefix+".decay", s.Decay, 0.01, 100, &dst.Decay),
		set(prefix+".damp", s.Damp, -1, 1, &dst.Damp),
		set(prefix+".tone", s.Tone, -1, 1, &dst.Tone),
		set(prefix+".hit", s.Hit, 0.02, 0.5, &dst.Hit),
		set(prefix+".rel", s.Rel, 0, 1, &dst.Rel),
		set(prefix+".inharm", s.Inharm, 0.0001, 1, &dst.Inharm),
		set(prefix+".ratio", s.Ratio, 0.1, 10, &dst.Ratio),
		set(prefix+".cut", s.Cut, -1, 1, &dst.Cut),
		set(prefix+".radius", s.Radius, 0, 1, &dst.Radius),
		set(prefix+".coarse", s.Coarse, -48, 48, &dst.Coarse),
		set(prefix+".fine", s.Fine, -99, 99, &dst.Fine),
		set(prefix+".vel_decay", s.VelDecay, -1, 1, &dst.VelDecay),
		set(prefix+".vel_hit", s.VelHit, -1, 1, &dst.VelHit),
		set(prefix+".vel_inharm", s.VelInharm, -1, 1, &dst.VelInharm),
	)
}

func applyNoise(dst *rippler.NoiseParams, s *NoiseSetting) error {
	if s == nil {
		return nil
	}
	if s.Mode != nil {
		m, err := ParseNoiseMode(*s.Mode)
		if err != nil {
			return err
		}
		dst.Mode = m
	}
	return firstErr(
		set("noise.mix", s.Mix, 0, 1, &dst.Mix),
		set("noise.res", s.Res, 0, 1, &dst.Res),
		set("noise.freq", s.Freq, 20, 20000, &dst.Freq),
		set("noise.q", s.Q, 0.707, 4, &dst.Q),
		set("noise.attack", s.Attack, 1, 5000, &dst.Attack),
		set("noise.decay", s.Decay, 1, 5000, &dst.Decay),
		set("noise.sustain", s.Sustain, 0, 1, &dst.Sustain),
		set("noise.release", s.Release, 1, 5000, &dst.Release),
		set("noise.vel_mix", s.VelMix, -1, 1, &dst.VelMix),
		set("noise.vel_res", s.VelRes, -1, 1, &dst.VelRes),
		set("noise.vel_freq", s.VelFreq, -1, 1, &dst.VelFreq),
		set("noise.vel_q", s.VelQ, -1, 1, &dst.VelQ),
	)
}

// SelectModel switches a resonator to model m and resets the ratio to the
// model's default.
func SelectModel(dst *rippler.ResonatorParams, m models.Name) {
	dst.Model = m
	dst.Ratio = models.DefaultRatio(m)
}

// ParseCoupling accepts "A+B"/"parallel" and "A>B"/"serial".
func ParseCoupling(s string) (rippler.Coupling, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a+b", "parallel":
		return rippler.Parallel, nil
	case "a>b", "serial":
		return rippler.Serial, nil
	}
	return 0, fmt.Errorf("coupling must be A+B or A>B, got %q", s)
}

// ParseNoiseMode accepts LP, BP and HP in any case.
func ParseNoiseMode(s string) (rippler.NoiseMode, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LP":
		return rippler.NoiseLP, nil
	case "BP":
		return rippler.NoiseBP, nil
	case "HP":
		return rippler.NoiseHP, nil
	}
	return 0, fmt.Errorf("noise.mode must be LP, BP or HP, got %q", s)
}

func validPartials(n int) bool {
	for _, c := range rippler.PartialCounts {
		if c == n {
			return true
		}
	}
	return false
}

// set copies *v into dst when present and in [lo,hi].
func set(name string, v *float32, lo, hi float32, dst *float32) error {
	if v == nil {
		return nil
	}
	if !(*v >= lo && *v <= hi) {
		return fmt.Errorf("%s must be in [%g,%g]", name, lo, hi)
	}
	*dst = *v
	return nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// FromParams builds a complete preset file from p.
func FromParams(name string, p rippler.Params) File {
	coupling := p.Coupling.String()
	mode := p.Noise.Mode.String()
	return File{
		Name: name,
		Mallet: &MalletSetting{
			Mix:          &p.Mallet.Mix,
			Res:          &p.Mallet.Res,
			Stiffness:    &p.Mallet.Stiffness,
			VelMix:       &p.Mallet.VelMix,
			VelRes:       &p.Mallet.VelRes,
			VelStiffness: &p.Mallet.VelStiffness,
		},
		A: resonatorSetting(&p.A),
		B: resonatorSetting(&p.B),
		Noise: &NoiseSetting{
			Mix:     &p.Noise.Mix,
			Res:     &p.Noise.Res,
			Mode:    &mode,
			Freq:    &p.Noise.Freq,
			Q:       &p.Noise.Q,
			Attack:  &p.Noise.Attack,
			Decay:   &p.Noise.Decay,
			Sustain: &p.Noise.Sustain,
			Release: &p.Noise.Release,
			VelMix:  &p.Noise.VelMix,
			VelRes:  &p.Noise.VelRes,
			VelFreq: &p.Noise.VelFreq,
			VelQ:    &p.Noise.VelQ,
		},
		Coupling: &coupling,
		ABMix:    &p.ABMix,
		ABSplit:  &p.ABSplit,
		Gain:     &p.Gain,
		RoomMix:  &p.RoomMix,
	}
}

func resonatorSetting(r *rippler.ResonatorParams) *ResonatorSetting {
	model := r.Model.String()
	return &ResonatorSetting{
		On:        &r.On,
		Model:     &model,
		Partials:  &r.Partials,
		Decay:     &r.Decay,
		Damp:      &r.Damp,
		Tone:      &r.Tone,
		Hit:       &r.Hit,
		Rel:       &r.Rel,
		Inharm:    &r.Inharm,
		Ratio:     &r.Ratio,
		Cut:       &r.Cut,
		Radius:    &r.Radius,
		Coarse:    &r.Coarse,
		Fine:      &r.Fine,
		VelDecay:  &r.VelDecay,
		VelHit:    &r.VelHit,
		VelInharm: &r.VelInharm,
	}
}

// SaveJSON writes p as an indented preset file, creating parent
// directories.
func SaveJSON(path string, name string, p rippler.Params) error {
	f := FromParams(name, p.Clamped())
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
