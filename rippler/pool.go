package rippler

import "github.com/cwbudde/algo-rippler/models"

// Pool is a fixed set of voices with least-recently-triggered stealing.
type Pool struct {
	voices []*Voice
}

// NewPool allocates n voices reading ratio tables from bank.
func NewPool(n int, bank *models.Bank) *Pool {
	p := &Pool{voices: make([]*Voice, n)}
	for i := range p.voices {
		p.voices[i] = newVoice(bank, uint64(i)+1)
	}
	return p
}

// Len returns the polyphony.
func (p *Pool) Len() int {
	return len(p.voices)
}

// Voice returns voice i.
func (p *Pool) Voice(i int) *Voice {
	return p.voices[i]
}

// nextVoiceNumber returns the voice with the most frames since its last
// trigger. Never-triggered voices count as oldest; ties go to the lowest
// index.
func (p *Pool) nextVoiceNumber() int {
	best := 0
	longest := p.voices[0].framesSinceNoteOn
	for i := 1; i < len(p.voices); i++ {
		if f := p.voices[i].framesSinceNoteOn; f > longest {
			longest = f
			best = i
		}
	}
	return best
}

// advance ages every voice by frames.
func (p *Pool) advance(frames int) {
	for _, v := range p.voices {
		v.advance(frames)
	}
}

// release releases every held voice playing note.
func (p *Pool) release(note int) {
	for _, v := range p.voices {
		if v.note == note && v.pressed {
			v.Release()
		}
	}
}

func (p *Pool) releaseAll() {
	for _, v := range p.voices {
		if v.pressed {
			v.Release()
		}
	}
}

func (p *Pool) clear() {
	for _, v := range p.voices {
		v.Clear()
		v.pressed = false
	}
}

// Sounding returns the number of voices still producing output.
func (p *Pool) Sounding() int {
	n := 0
	for _, v := range p.voices {
		if v.Sounding() {
			n++
		}
	}
	return n
}
