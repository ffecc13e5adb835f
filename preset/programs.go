package preset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cwbudde/algo-rippler/models"
	"github.com/cwbudde/algo-rippler/rippler"
)

var programs = map[string]func() rippler.Params{
	"default": rippler.DefaultParams,
	"marimba": func() rippler.Params {
		p := rippler.DefaultParams()
		SelectModel(&p.A, models.Marimba)
		p.A.Decay = 0.7
		p.A.Damp = 0.3
		p.A.Tone = -0.2
		p.A.Hit = 0.3
		p.A.Rel = 0.6
		p.B.On = true
		SelectModel(&p.B, models.OpenTube)
		p.B.Decay = 0.4
		p.B.Radius = 0.6
		p.ABMix = 0.25
		p.Mallet.Mix = 0.05
		p.Mallet.Stiffness = 400
		p.Mallet.VelStiffness = 0.2
		return p
	},
	"bell": func() rippler.Params {
		p := rippler.DefaultParams()
		SelectModel(&p.A, models.Plate)
		p.A.Ratio = 1.4
		p.A.Partials = 64
		p.A.Decay = 8
		p.A.Damp = 0.4
		p.A.Inharm = 0.02
		p.A.Hit = 0.14
		p.B.On = true
		SelectModel(&p.B, models.Beam)
		p.B.Decay = 5
		p.B.Coarse = 12
		p.Coupling = rippler.Serial
		p.ABSplit = 0.2
		p.Mallet.Stiffness = 2500
		return p
	},
	"drum": func() rippler.Params {
		p := rippler.DefaultParams()
		SelectModel(&p.A, models.Drumhead)
		p.A.Decay = 0.35
		p.A.Damp = 0.6
		p.A.Hit = 0.1
		p.A.VelDecay = 0.1
		p.Noise.Mix = 0.25
		p.Noise.Res = 0.4
		p.Noise.Mode = rippler.NoiseBP
		p.Noise.Freq = 900
		p.Noise.Q = 1.2
		p.Noise.Decay = 80
		p.Noise.Release = 60
		p.Mallet.Stiffness = 1200
		return p
	},
	"flute": func() rippler.Params {
		p := rippler.DefaultParams()
		SelectModel(&p.A, models.OpenTube)
		p.A.Decay = 2
		p.A.Radius = 0.7
		p.A.Rel = 0.2
		p.Mallet.Res = 0
		p.Noise.Res = 0.5
		p.Noise.Mix = 0.02
		p.Noise.Mode = rippler.NoiseLP
		p.Noise.Freq = 4000
		p.Noise.Attack = 60
		p.Noise.Sustain = 0.8
		p.Noise.Release = 120
		return p
	},
	"glass": func() rippler.Params {
		p := rippler.DefaultParams()
		SelectModel(&p.A, models.Squared)
		p.A.Partials = 16
		p.A.Decay = 4
		p.A.Tone = 0.4
		p.A.Cut = 0.15
		p.B.On = true
		SelectModel(&p.B, models.Membrane)
		p.B.Fine = 7
		p.B.Decay = 3
		p.ABMix = 0.4
		p.Mallet.Stiffness = 4000
		return p
	},
}

// Programs lists the built-in program names in sorted order.
func Programs() []string {
	names := make([]string, 0, len(programs))
	for name := range programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Program returns a built-in sound by name, case-insensitively.
func Program(name string) (rippler.Params, error) {
	build, ok := programs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return rippler.Params{}, fmt.Errorf("unknown program %q (have %s)", name, strings.Join(Programs(), ", "))
	}
	return build(), nil
}
