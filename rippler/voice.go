package rippler

import (
	"math"

	"github.com/cwbudde/algo-rippler/dsp"
	"github.com/cwbudde/algo-rippler/models"
)

const (
	// couplingThreshold is the largest ratio distance at which two modes of
	// A and B repel each other.
	couplingThreshold = 4.0
	// idleFrames marks a voice that has never been triggered.
	idleFrames = math.MaxUint64
)

// note2freq converts a MIDI note to Hz in equal temperament, A4 (69) = 440.
func note2freq(note int) float32 {
	return float32(440 * math.Exp2(float64(note-69)/12))
}

// Voice is one note slot: a mallet and a noise layer exciting resonators A
// and B.
type Voice struct {
	note     int
	freq     float32
	vel      float32
	pressed  bool
	released bool

	couple bool
	split  float32
	aPitch float32
	bPitch float32

	mallet Mallet
	noise  Noise
	resA   *Resonator
	resB   *Resonator

	bank              *models.Bank
	framesSinceNoteOn uint64

	aTable, bTable models.Table
}

func newVoice(bank *models.Bank, seed uint64) *Voice {
	return &Voice{
		note:              -1,
		aPitch:            1,
		bPitch:            1,
		noise:             newNoise(seed),
		resA:              newResonator(),
		resB:              newResonator(),
		bank:              bank,
		framesSinceNoteOn: idleFrames,
	}
}

// Trigger starts note at normalized velocity vel (0..1), striking the
// mallet at malletFreq.
func (v *Voice) Trigger(sampleRate float32, note int, vel, malletFreq float32) {
	v.resA.Clear()
	v.resB.Clear()
	v.note = note
	v.released = false
	v.pressed = true
	v.vel = vel
	v.freq = note2freq(note)
	v.mallet.Trigger(sampleRate, malletFreq)
	v.noise.Attack(vel)
	if v.resA.On() {
		v.resA.Activate()
	}
	if v.resB.On() {
		v.resB.Activate()
	}
	v.framesSinceNoteOn = 0
	v.UpdateResonators()
}

// Release lets the note ring out with the release decay.
func (v *Voice) Release() {
	v.released = true
	v.pressed = false
	v.noise.Release()
	v.UpdateResonators()
}

// Clear silences every component of the voice.
func (v *Voice) Clear() {
	v.mallet.Clear()
	v.noise.Clear()
	v.resA.Clear()
	v.resB.Clear()
}

// SetPitch sets the per-resonator transposition in semitones and cents.
func (v *Voice) SetPitch(coarseA, coarseB, fineA, fineB float32) {
	v.aPitch = pitchFactor(coarseA, fineA)
	v.bPitch = pitchFactor(coarseB, fineB)
}

func pitchFactor(coarse, fine float32) float32 {
	if coarse == 0 && fine == 0 {
		return 1
	}
	return dsp.Pow2((coarse + fine/100) / 12)
}

// SetCoupling enables serial coupling with the given split amount.
func (v *Voice) SetCoupling(couple bool, split float32) {
	v.couple = couple
	v.split = split
}

// UpdateResonators computes the ratio tables of both sides, applying pitch
// and, in serial mode, the frequency split between colliding modes, and
// retunes the enabled resonators.
func (v *Voice) UpdateResonators() {
	v.aTable = *v.bank.Table(models.A, v.resA.Model())
	v.bTable = *v.bank.Table(models.B, v.resB.Model())

	if v.aPitch != 1 {
		applyPitch(&v.aTable, v.aPitch)
	}
	if v.bPitch != 1 {
		applyPitch(&v.bTable, v.bPitch)
	}

	if v.couple && v.resA.On() && v.resB.On() {
		frequencyShifts(&v.aTable, &v.bTable, v.freq, v.split)
	}

	if v.resA.On() {
		v.resA.Update(v.freq, v.vel, v.released, &v.aTable)
	}
	if v.resB.On() {
		v.resB.Update(v.freq, v.vel, v.released, &v.bTable)
	}
}

func applyPitch(t *models.Table, factor float32) {
	for i := range t {
		t[i] *= factor
	}
}

// frequencyShifts pushes apart every pair of modes of a and b whose ratios
// are within couplingThreshold. For a pair (fa, fb) at fundamental freq the
// shift is sqrt(dx^2 + dy^2) - dx with dx half their distance in Hz and dy
// derived from split plus a cosine offset of their mean, so pairs do not move
// in lockstep. Both shifts land at a's index i, and all pairs compare
// unshifted ratios.
func frequencyShifts(a, b *models.Table, freq, split float32) {
	if freq <= 0 {
		return
	}
	fa0, fb0 := *a, *b
	f := float64(freq)
	s := float64(split)
	for i := range fa0 {
		fa := float64(fa0[i])
		var shiftA, shiftB float64
		for j := range fb0 {
			fb := float64(fb0[j])
			dist := math.Abs(fa - fb)
			if dist > couplingThreshold {
				continue
			}
			dx := dist * f / 2
			k := s + math.Cos((fa+fb)*f/2)/5
			dy := k / 2.5
			shift := (math.Sqrt(dx*dx+dy*dy) - dx) / f
			if fa > fb {
				shiftA += shift
				shiftB -= shift
			} else {
				shiftA -= shift
				shiftB += shift
			}
		}
		a[i] += float32(shiftA)
		b[i] += float32(shiftB)
	}
}

// Note returns the current MIDI note, or -1 before the first trigger.
func (v *Voice) Note() int {
	return v.note
}

// Freq returns the note frequency in Hz.
func (v *Voice) Freq() float32 {
	return v.freq
}

// Pressed reports whether the key is held.
func (v *Voice) Pressed() bool {
	return v.pressed
}

// Released reports whether the voice is in its release stage.
func (v *Voice) Released() bool {
	return v.released
}

// FramesSinceNoteOn returns the frames rendered since the last trigger.
func (v *Voice) FramesSinceNoteOn() uint64 {
	return v.framesSinceNoteOn
}

// ResonatorA returns resonator A.
func (v *Voice) ResonatorA() *Resonator {
	return v.resA
}

// ResonatorB returns resonator B.
func (v *Voice) ResonatorB() *Resonator {
	return v.resB
}

// Sounding reports whether any part of the voice still produces output.
func (v *Voice) Sounding() bool {
	return v.mallet.Active() || v.noise.env.State() != EnvOff ||
		(v.resA.On() && v.resA.Active()) || (v.resB.On() && v.resB.Active())
}

func (v *Voice) advance(frames int) {
	if v.framesSinceNoteOn == idleFrames {
		return
	}
	n := uint64(frames)
	if v.framesSinceNoteOn > idleFrames-1-n {
		v.framesSinceNoteOn = idleFrames - 1
		return
	}
	v.framesSinceNoteOn += n
}
