// Package render drives a synth offline: it strikes notes, releases them and
// renders blocks until a fixed length or until the output has decayed.
package render

import (
	"math"

	"github.com/cwbudde/algo-rippler/rippler"
)

// BlockSize is the number of frames rendered per call.
const BlockSize = 128

// Options describes one offline render.
type Options struct {
	Notes    []int
	Velocity int
	// ReleaseAfterS sends NoteOff for every note; a negative value holds
	// them to the end.
	ReleaseAfterS float64
	// DurationS is the fixed length. It is ignored when DecayDBFS is finite.
	DurationS float64

	// Auto-stop once HoldBlocks consecutive blocks fall below DecayDBFS,
	// after at least MinDurationS and never beyond MaxDurationS.
	DecayDBFS    float64
	HoldBlocks   int
	MinDurationS float64
	MaxDurationS float64
}

// DefaultOptions strikes A4 at velocity 100 for two seconds.
func DefaultOptions() Options {
	return Options{
		Notes:         []int{69},
		Velocity:      100,
		ReleaseAfterS: 0.5,
		DurationS:     2,
		DecayDBFS:     math.Inf(1),
		HoldBlocks:    6,
		MinDurationS:  0.5,
		MaxDurationS:  20,
	}
}

// AutoStop reports whether the render ends on decay.
func (o Options) AutoStop() bool {
	return !math.IsInf(o.DecayDBFS, 0) && !math.IsNaN(o.DecayDBFS)
}

// Notes renders opts on s and returns interleaved stereo samples.
func Notes(s *rippler.Synth, opts Options) []float32 {
	sr := float64(s.SampleRate())
	frames := func(sec float64) int { return int(sec * sr) }

	maxFrames := max(frames(opts.DurationS), 1)
	minFrames := 0
	threshold := 0.0
	if opts.AutoStop() {
		minFrames = frames(opts.MinDurationS)
		maxFrames = max(frames(opts.MaxDurationS), minFrames, BlockSize)
		threshold = math.Pow(10, opts.DecayDBFS/20)
	}
	hold := max(opts.HoldBlocks, 1)
	releaseAt := frames(opts.ReleaseAfterS)

	for _, n := range opts.Notes {
		s.NoteOn(n, opts.Velocity)
	}

	out := make([]float32, 0, 2*min(maxFrames, frames(2)+BlockSize))
	block := make([]float32, 2*BlockSize)
	released := opts.ReleaseAfterS < 0
	below := 0
	for rendered := 0; rendered < maxFrames; {
		if !released && rendered >= releaseAt {
			for _, n := range opts.Notes {
				s.NoteOff(n)
			}
			released = true
		}
		n := min(BlockSize, maxFrames-rendered)
		buf := block[:2*n]
		s.Render(buf)
		out = append(out, buf...)
		rendered += n

		if opts.AutoStop() && rendered >= minFrames {
			if RMS(buf) < threshold {
				below++
				if below >= hold {
					break
				}
			} else {
				below = 0
			}
		}
	}
	return out
}

// Mono averages interleaved stereo into float64 samples.
func Mono(stereo []float32) []float64 {
	out := make([]float64, len(stereo)/2)
	for i := range out {
		out[i] = 0.5 * (float64(stereo[2*i]) + float64(stereo[2*i+1]))
	}
	return out
}

// RMS returns the root mean square of samples.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range samples {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// Peak returns the largest absolute sample.
func Peak(samples []float32) float64 {
	p := 0.0
	for _, v := range samples {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}
