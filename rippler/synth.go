// Package rippler implements a polyphonic physically modelled percussion
// synth: a mallet and a noise layer excite two resonators, each either a
// bank of tuned bandpass modes or a waveguide tube.
package rippler

import (
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cwbudde/algo-rippler/dsp"
	"github.com/cwbudde/algo-rippler/models"
)

const (
	DefaultPolyphony     = 8
	MaxPolyphony         = 64
	DefaultEventCapacity = 256
	maxSampleRate        = 384000
)

// ErrInvalidConfig is wrapped by NewSynth when the configuration cannot be
// used.
var ErrInvalidConfig = errors.New("rippler: invalid config")

// Config fixes everything that is allocated up front.
type Config struct {
	SampleRate    int
	Polyphony     int // 0 selects DefaultPolyphony
	EventCapacity int // 0 selects DefaultEventCapacity

	// Params is the initial sound; nil selects DefaultParams.
	Params *Params

	// Optional room stage. RoomIRPath takes precedence over RoomIR.
	RoomIRPath   string
	RoomIR       [2][]float32
	RoomPartSize int
}

// Synth is the engine. Render and RenderInput must be called from a single
// goroutine. SetParams and the note methods may be called from one other
// goroutine.
type Synth struct {
	sampleRate int
	sr         float32

	bank *models.Bank
	pool *Pool

	params  Params
	gain    float32
	latest  atomic.Pointer[Params]
	pending atomic.Pointer[Params]
	events  *eventRing

	comb    *Comb
	limiter *Limiter
	room    *RoomConvolver

	suspended atomic.Bool
	flush     atomic.Bool

	weights []voiceWeights
}

type voiceWeights struct {
	malletDir, malletRes float32
	noiseDir, noiseRes   float32
}

// NewSynth validates cfg and allocates the voice pool and all delay lines.
func NewSynth(cfg Config) (*Synth, error) {
	if cfg.SampleRate <= 0 || cfg.SampleRate > maxSampleRate {
		return nil, fmt.Errorf("%w: sample rate %d out of range (0,%d]", ErrInvalidConfig, cfg.SampleRate, maxSampleRate)
	}
	poly := cfg.Polyphony
	if poly == 0 {
		poly = DefaultPolyphony
	}
	if poly < 1 || poly > MaxPolyphony {
		return nil, fmt.Errorf("%w: polyphony %d out of range [1,%d]", ErrInvalidConfig, poly, MaxPolyphony)
	}
	capacity := cfg.EventCapacity
	if capacity == 0 {
		capacity = DefaultEventCapacity
	}
	if capacity < 1 {
		return nil, fmt.Errorf("%w: event capacity %d", ErrInvalidConfig, capacity)
	}

	bank := models.NewBank()
	s := &Synth{
		sampleRate: cfg.SampleRate,
		sr:         float32(cfg.SampleRate),
		bank:       bank,
		pool:       NewPool(poly, bank),
		events:     newEventRing(capacity),
		comb:       NewComb(cfg.SampleRate),
		limiter:    NewLimiter(cfg.SampleRate),
		weights:    make([]voiceWeights, poly),
	}

	if cfg.RoomIRPath != "" || len(cfg.RoomIR[0]) > 0 || len(cfg.RoomIR[1]) > 0 {
		room, err := NewRoomConvolver(cfg.SampleRate, cfg.RoomPartSize)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		if cfg.RoomIRPath != "" {
			err = room.SetIRFromWAV(cfg.RoomIRPath)
		} else {
			err = room.SetIR(cfg.RoomIR[0], cfg.RoomIR[1])
		}
		if err != nil {
			return nil, fmt.Errorf("%w: room impulse response: %v", ErrInvalidConfig, err)
		}
		s.room = room
	}

	p := DefaultParams()
	if cfg.Params != nil {
		p = *cfg.Params
	}
	p = p.Clamped()
	s.latest.Store(&p)
	s.applyParams(p, true)
	return s, nil
}

// SampleRate returns the engine rate in Hz.
func (s *Synth) SampleRate() int {
	return s.sampleRate
}

// Polyphony returns the number of voices.
func (s *Synth) Polyphony() int {
	return s.pool.Len()
}

// Voice returns voice i for inspection. Only safe from the render goroutine
// or while no render is running.
func (s *Synth) Voice(i int) *Voice {
	return s.pool.Voice(i)
}

// Sounding returns the number of voices still producing output.
func (s *Synth) Sounding() int {
	return s.pool.Sounding()
}

// Params returns the most recently published parameters.
func (s *Synth) Params() Params {
	return *s.latest.Load()
}

// SetParams clamps p and publishes it. The render goroutine picks it up at
// the start of its next block.
func (s *Synth) SetParams(p Params) {
	c := p.Clamped()
	s.latest.Store(&c)
	s.pending.Store(&c)
}

// Send queues an event for the next block. It reports false if the queue is
// full.
func (s *Synth) Send(ev Event) bool {
	return s.events.push(ev)
}

// NoteOn queues a note start. Velocity is 0..127; velocity 0 is a note off.
func (s *Synth) NoteOn(note, velocity int) bool {
	if note < 0 || note > 127 {
		return false
	}
	return s.events.push(Event{Kind: EventNoteOn, Note: note, Velocity: velocity})
}

// NoteOff queues the release of every voice holding note.
func (s *Synth) NoteOff(note int) bool {
	return s.events.push(Event{Kind: EventNoteOff, Note: note})
}

// AllNotesOff queues the release of every held voice.
func (s *Synth) AllNotesOff() bool {
	return s.events.push(Event{Kind: EventAllNotesOff})
}

// Panic queues an immediate silence of every voice.
func (s *Synth) Panic() bool {
	return s.events.push(Event{Kind: EventPanic})
}

// Suspend makes Render output silence without advancing any state.
func (s *Synth) Suspend() {
	s.suspended.Store(true)
}

// Resume leaves the suspended state; the next block starts from flushed
// state.
func (s *Synth) Resume() {
	s.flush.Store(true)
	s.suspended.Store(false)
}

// Reset flushes all voice, effect and delay state at the next block without
// reallocating.
func (s *Synth) Reset() {
	s.flush.Store(true)
}

func (s *Synth) flushState() {
	s.pool.clear()
	for _, v := range s.pool.voices {
		v.framesSinceNoteOn = idleFrames
	}
	s.comb.Reset()
	s.limiter.Reset()
	if s.room != nil {
		s.room.Reset()
	}
}

// applyParams pushes a new parameter set into every voice. Changing a
// resonator's model or partial count silences all voices.
func (s *Synth) applyParams(p Params, first bool) {
	prev := s.params
	s.params = p
	if !first && (p.A.Model != prev.A.Model || p.B.Model != prev.B.Model ||
		p.A.Partials != prev.A.Partials || p.B.Partials != prev.B.Partials) {
		s.pool.clear()
	}

	s.bank.Recalc(models.A, p.A.Model, p.A.Ratio)
	s.bank.Recalc(models.B, p.B.Model, p.B.Ratio)
	s.gain = float32(math.Pow(10, float64(p.Gain)/20))

	n := p.Noise
	for _, v := range s.pool.voices {
		v.noise.Init(s.sr, n.Mode, n.Freq, n.Q, n.Attack, n.Decay, n.SustainDB(), n.Release, n.VelFreq, n.VelQ)
		v.SetPitch(p.A.Coarse, p.B.Coarse, p.A.Fine, p.B.Fine)
		v.resA.SetParams(s.sr, p.A)
		v.resB.SetParams(s.sr, p.B)
		v.SetCoupling(p.Coupling == Serial, p.ABSplit*100)
		v.UpdateResonators()
	}
}

func (s *Synth) drainEvents() {
	for {
		ev, ok := s.events.pop()
		if !ok {
			return
		}
		switch ev.Kind {
		case EventNoteOn:
			if ev.Velocity <= 0 {
				s.pool.release(ev.Note)
				continue
			}
			s.noteOn(ev.Note, ev.Velocity)
		case EventNoteOff:
			s.pool.release(ev.Note)
		case EventAllNotesOff:
			s.pool.releaseAll()
		case EventPanic:
			s.pool.clear()
		}
	}
}

func (s *Synth) noteOn(note, velocity int) {
	vel := float32(min(velocity, 127)) / 127
	m := s.params.Mallet
	freq := malletFrequency(m.Stiffness, m.VelStiffness, vel)
	s.pool.Voice(s.pool.nextVoiceNumber()).Trigger(s.sr, note, vel, freq)
}

// Render writes len(out)/2 interleaved stereo frames.
func (s *Synth) Render(out []float32) {
	s.RenderInput(out, nil)
}

// RenderInput is Render with an interleaved stereo input that excites every
// held voice. in may be shorter than out or nil.
func (s *Synth) RenderInput(out []float32, in []float32) {
	if s.suspended.Load() {
		clear(out)
		return
	}
	if s.flush.Swap(false) {
		s.flushState()
	}
	if p := s.pending.Swap(nil); p != nil {
		s.applyParams(*p, false)
	}
	s.drainEvents()

	p := &s.params
	aOn, bOn := p.A.On, p.B.On
	serial := p.Coupling == Serial
	abMix := p.ABMix
	roomMix := p.RoomMix

	for i, v := range s.pool.voices {
		w := &s.weights[i]
		w.malletDir = dsp.Clamp01(p.Mallet.Mix + p.Mallet.VelMix*v.vel)
		w.malletRes = dsp.Clamp01(p.Mallet.Res + p.Mallet.VelRes*v.vel)
		w.noiseDir = noiseWeight(p.Noise.Mix, p.Noise.VelMix, v.vel)
		w.noiseRes = noiseWeight(p.Noise.Res, p.Noise.VelRes, v.vel)
	}

	frames := len(out) / 2
	for i := 0; i < frames; i++ {
		var inL, inR float32
		if 2*i+1 < len(in) {
			inL, inR = in[2*i], in[2*i+1]
		}

		var direct float32
		var aSum, bSum dsp.Vec4
		for vi, v := range s.pool.voices {
			w := &s.weights[vi]
			var exc float32
			if ms := v.mallet.Process(); ms != 0 {
				direct += ms * w.malletDir
				exc += ms * w.malletRes
			}
			if ns := v.noise.Process(); ns != 0 {
				direct += ns * w.noiseDir
				exc += ns * w.noiseRes
			}

			// lanes 0-1: excitation, lanes 2-3: external input
			bus := dsp.Vec4{exc, exc, 0, 0}
			if v.pressed {
				bus[2], bus[3] = inL, inR
			}

			var fromA dsp.Vec4
			if aOn {
				fromA = v.resA.Process(bus)
				aSum = aSum.Add(fromA)
			}
			if bOn {
				src := bus
				if aOn && serial {
					src = fromA
				}
				bSum = bSum.Add(v.resB.Process(src))
			}
		}

		var res dsp.Vec4
		switch {
		case aOn && bOn && serial:
			res = bSum
		case aOn && bOn:
			res = aSum.Scale(1 - abMix).Add(bSum.Scale(abMix))
		default:
			res = aSum.Add(bSum)
		}
		rl, rr := res.Fold()
		l := direct + rl*s.gain
		r := direct + rr*s.gain

		l, r = s.comb.Process(l, r)
		l, r = s.limiter.Process(l, r)
		if s.room != nil {
			wl, wr := s.room.Process(l, r)
			l += (wl - l) * roomMix
			r += (wr - r) * roomMix
		}
		out[2*i] = l
		out[2*i+1] = r
	}

	s.pool.advance(frames)
}
