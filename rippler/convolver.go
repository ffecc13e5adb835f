package rippler

import (
	"fmt"

	dspconv "github.com/cwbudde/algo-dsp/dsp/conv"

	"github.com/cwbudde/algo-rippler/internal/wavio"
)

// DefaultRoomPartSize is the partition length of the room convolver, which
// is also its latency in frames.
const DefaultRoomPartSize = 128

// RoomConvolver applies a stereo impulse response with partitioned
// overlap-add convolution. Input is gathered into partitions sample by
// sample, so the wet output lags the input by one partition.
type RoomConvolver struct {
	sampleRate int
	partSize   int
	irLen      int

	leftOLA  *dspconv.StreamingOverlapAddT[float32, complex64]
	rightOLA *dspconv.StreamingOverlapAddT[float32, complex64]

	inL, inR   []float32
	outL, outR []float32
	fill       int
}

// NewRoomConvolver creates a convolver with an identity response.
func NewRoomConvolver(sampleRate int, partSize int) (*RoomConvolver, error) {
	if partSize < 1 {
		partSize = DefaultRoomPartSize
	}
	c := &RoomConvolver{
		sampleRate: sampleRate,
		partSize:   partSize,
		inL:        make([]float32, partSize),
		inR:        make([]float32, partSize),
		outL:       make([]float32, partSize),
		outR:       make([]float32, partSize),
	}
	if err := c.SetIR([]float32{1}, []float32{1}); err != nil {
		return nil, err
	}
	return c, nil
}

// SetIR installs left/right impulse responses. An empty channel becomes an
// identity response.
func (c *RoomConvolver) SetIR(leftIR []float32, rightIR []float32) error {
	if len(leftIR) == 0 {
		leftIR = []float32{1}
	}
	if len(rightIR) == 0 {
		rightIR = []float32{1}
	}
	leftOLA, err := dspconv.NewStreamingOverlapAdd32(leftIR, c.partSize)
	if err != nil {
		return fmt.Errorf("room convolver left: %w", err)
	}
	rightOLA, err := dspconv.NewStreamingOverlapAdd32(rightIR, c.partSize)
	if err != nil {
		return fmt.Errorf("room convolver right: %w", err)
	}
	c.leftOLA = leftOLA
	c.rightOLA = rightOLA
	c.irLen = max(len(leftIR), len(rightIR))
	c.Reset()
	return nil
}

// SetIRFromWAV loads a mono or stereo response and resamples it to the
// engine rate.
func (c *RoomConvolver) SetIRFromWAV(path string) error {
	left, right, srcRate, err := wavio.ReadStereo(path)
	if err != nil {
		return err
	}
	left, err = wavio.Resample32(left, srcRate, c.sampleRate)
	if err != nil {
		return err
	}
	right, err = wavio.Resample32(right, srcRate, c.sampleRate)
	if err != nil {
		return err
	}
	return c.SetIR(left, right)
}

// Latency returns the delay of the wet signal in frames.
func (c *RoomConvolver) Latency() int {
	return c.partSize
}

// IRLen returns the longer of the two responses in frames.
func (c *RoomConvolver) IRLen() int {
	return c.irLen
}

// Process pushes one stereo frame and returns the wet frame due now.
func (c *RoomConvolver) Process(l, r float32) (float32, float32) {
	c.inL[c.fill] = l
	c.inR[c.fill] = r
	wl, wr := c.outL[c.fill], c.outR[c.fill]
	c.fill++
	if c.fill == c.partSize {
		c.fill = 0
		if err := c.leftOLA.ProcessBlockTo(c.outL, c.inL); err != nil {
			copy(c.outL, c.inL)
		}
		if err := c.rightOLA.ProcessBlockTo(c.outR, c.inR); err != nil {
			copy(c.outR, c.inR)
		}
	}
	return wl, wr
}

// Reset clears convolver history and pending partitions.
func (c *RoomConvolver) Reset() {
	if c.leftOLA != nil {
		c.leftOLA.Reset()
	}
	if c.rightOLA != nil {
		c.rightOLA.Reset()
	}
	clear(c.inL)
	clear(c.inR)
	clear(c.outL)
	clear(c.outR)
	c.fill = 0
}
