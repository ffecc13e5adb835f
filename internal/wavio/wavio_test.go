package wavio

import (
	"math"
	"path/filepath"
	"testing"
)

func TestStereoRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "st.wav")
	in := []float32{0.5, -0.5, 0.25, -0.25, 0, 0.75}
	if err := WriteStereoInterleaved(path, in, 44100); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	left, right, sr, err := ReadStereo(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if sr != 44100 || len(left) != 3 || len(right) != 3 {
		t.Fatalf("unexpected shape: sr=%d frames=%d/%d", sr, len(left), len(right))
	}
	for i := range left {
		if math.Abs(float64(left[i]-in[i*2])) > 1e-3 || math.Abs(float64(right[i]-in[i*2+1])) > 1e-3 {
			t.Fatalf("frame %d: got=(%f,%f) want=(%f,%f)", i, left[i], right[i], in[i*2], in[i*2+1])
		}
	}
	mono, _, err := ReadMono(path)
	if err != nil {
		t.Fatalf("mono read failed: %v", err)
	}
	if math.Abs(mono[0]) > 1e-3 {
		t.Fatalf("mono average got=%f want=0", mono[0])
	}
}

func TestReadStereoDuplicatesMono(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.wav")
	if err := WriteMono(path, []float32{0.5, -0.25}, 48000); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	left, right, _, err := ReadStereo(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if left[0] != right[0] || left[1] != right[1] {
		t.Fatalf("mono file should duplicate into both channels")
	}
}

func TestResampleHalvesLength(t *testing.T) {
	in := make([]float32, 960)
	for i := range in {
		in[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / 96000))
	}
	out, err := Resample32(in, 96000, 48000)
	if err != nil {
		t.Fatalf("resample failed: %v", err)
	}
	if d := len(out) - len(in)/2; d < -16 || d > 16 {
		t.Fatalf("resampled length got=%d want~%d", len(out), len(in)/2)
	}
	same, _ := Resample32(in, 48000, 48000)
	if &same[0] != &in[0] {
		t.Fatalf("equal rates should return input unchanged")
	}
}

func TestParseNotesAndWorkers(t *testing.T) {
	notes, err := ParseNotes("60, 64,67")
	if err != nil || len(notes) != 3 || notes[2] != 67 {
		t.Fatalf("parse notes got=(%v,%v)", notes, err)
	}
	if _, err := ParseNotes("60,200"); err == nil {
		t.Fatalf("expected range error")
	}
	if n, err := ParseWorkers("auto"); err != nil || n != 0 {
		t.Fatalf("auto workers got=(%d,%v)", n, err)
	}
	if _, err := ParseWorkers("0"); err == nil {
		t.Fatalf("expected error for zero workers")
	}
}

func TestRMSAndMono(t *testing.T) {
	if got := RMS([]float32{1, -1, 1, -1}); math.Abs(got-1) > 1e-12 {
		t.Fatalf("rms got=%f want=1", got)
	}
	m := StereoToMono64([]float32{1, 0, 0.5, 0.5})
	if len(m) != 2 || m[0] != 0.5 || m[1] != 0.5 {
		t.Fatalf("mono mixdown got=%v", m)
	}
}
