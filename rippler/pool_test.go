package rippler

import (
	"testing"

	"github.com/cwbudde/algo-rippler/models"
)

func TestNextVoicePrefersNeverUsedLowestIndex(t *testing.T) {
	p := NewPool(4, models.NewBank())
	for want := 0; want < 4; want++ {
		got := p.nextVoiceNumber()
		if got != want {
			t.Fatalf("allocation %d: got voice %d", want, got)
		}
		p.Voice(got).Trigger(48000, 60+want, 1, 600)
	}
	// all voices at zero frames: ties go to the lowest index
	if got := p.nextVoiceNumber(); got != 0 {
		t.Fatalf("tie should pick voice 0, got %d", got)
	}
}

func TestNextVoiceStealsOldest(t *testing.T) {
	p := NewPool(4, models.NewBank())
	for i := 0; i < 4; i++ {
		p.Voice(p.nextVoiceNumber()).Trigger(48000, 60+i, 1, 600)
		p.advance(100)
	}
	// ages are now 400, 300, 200, 100
	if got := p.nextVoiceNumber(); got != 0 {
		t.Fatalf("oldest voice got=%d want=0", got)
	}
	p.Voice(0).Trigger(48000, 70, 1, 600)
	if got := p.nextVoiceNumber(); got != 1 {
		t.Fatalf("next oldest got=%d want=1", got)
	}
	if p.Voice(0).FramesSinceNoteOn() != 0 || p.Voice(1).FramesSinceNoteOn() != 300 {
		t.Fatalf("frame counters wrong: %d %d", p.Voice(0).FramesSinceNoteOn(), p.Voice(1).FramesSinceNoteOn())
	}
}

func TestPoolAdvanceSaturates(t *testing.T) {
	p := NewPool(1, models.NewBank())
	v := p.Voice(0)
	p.advance(10)
	if v.FramesSinceNoteOn() != idleFrames {
		t.Fatalf("idle voices must not age")
	}
	v.Trigger(48000, 60, 1, 600)
	v.framesSinceNoteOn = idleFrames - 5
	p.advance(100)
	if v.FramesSinceNoteOn() != idleFrames-1 {
		t.Fatalf("counter should saturate below the idle marker, got %d", v.FramesSinceNoteOn())
	}
}

func TestPoolReleaseOnlyHeldNotes(t *testing.T) {
	p := NewPool(3, models.NewBank())
	p.Voice(0).Trigger(48000, 60, 1, 600)
	p.Voice(1).Trigger(48000, 60, 1, 600)
	p.Voice(2).Trigger(48000, 64, 1, 600)
	p.release(60)
	if p.Voice(0).Pressed() || p.Voice(1).Pressed() {
		t.Fatalf("both voices holding note 60 should release")
	}
	if !p.Voice(2).Pressed() {
		t.Fatalf("note 64 should still be held")
	}
	p.releaseAll()
	if p.Voice(2).Pressed() || !p.Voice(2).Released() {
		t.Fatalf("release all missed voice 2")
	}
	p.clear()
	for i := 0; i < p.Len(); i++ {
		if p.Voice(i).mallet.Active() {
			t.Fatalf("clear left voice %d striking", i)
		}
	}
}
