package main

import (
	"encoding/binary"
	"math"

	"github.com/ebitengine/oto/v3"

	"github.com/cwbudde/algo-rippler/rippler"
)

// stream adapts the synth to oto's pull model: every Read renders the
// requested frames as little-endian float32 stereo. oto calls Read from a
// single goroutine, which makes it the synth's render goroutine.
type stream struct {
	synth *rippler.Synth
	buf   []float32
}

func (s *stream) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if cap(s.buf) < 2*frames {
		s.buf = make([]float32, 2*frames)
	}
	buf := s.buf[:2*frames]
	s.synth.Render(buf)

	for i, v := range buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return 8 * frames, nil
}

type player struct {
	ctx    *oto.Context
	player *oto.Player
	stream *stream
}

func newPlayer(s *rippler.Synth, bufferFrames int) (*player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   s.SampleRate(),
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}
	if bufferFrames > 0 {
		op.BufferSize = durationOf(bufferFrames, s.SampleRate())
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-ready

	st := &stream{synth: s}
	pl := ctx.NewPlayer(st)
	pl.Play()
	return &player{ctx: ctx, player: pl, stream: st}, nil
}

func (p *player) Close() error {
	return p.player.Close()
}
