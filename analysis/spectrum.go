package analysis

import (
	"fmt"
	"math"
	"math/cmplx"
	"sort"

	algofft "github.com/cwbudde/algo-fft"
)

// Spectrum is the averaged magnitude spectrum of a signal segment.
type Spectrum struct {
	SampleRate int
	Size       int       // FFT size
	Mag        []float64 // Size/2+1 bins, Hann-window amplitude corrected
}

// BinHz returns the bin spacing in Hz.
func (s *Spectrum) BinHz() float64 {
	return float64(s.SampleRate) / float64(s.Size)
}

// Analyzer computes windowed spectra with a reusable real FFT plan.
type Analyzer struct {
	size   int
	fwd    func(dst []complex128, src []float64)
	window []float64
	buf    []float64
	spec   []complex128
}

// NewAnalyzer creates an analyzer with a power-of-two FFT size.
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 16 || size&(size-1) != 0 {
		return nil, fmt.Errorf("fft size must be a power of two >= 16, got %d", size)
	}
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, err
	}
	a := &Analyzer{
		size:   size,
		fwd:    func(dst []complex128, src []float64) { plan.Forward(dst, src) },
		window: make([]float64, size),
		buf:    make([]float64, size),
		spec:   make([]complex128, size/2+1),
	}
	var sum float64
	for i := range a.window {
		a.window[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size))
		sum += a.window[i]
	}
	// a full-scale sine then reads 1.0 at its bin
	g := 2 / sum
	for i := range a.window {
		a.window[i] *= g
	}
	return a, nil
}

// Size returns the FFT size.
func (a *Analyzer) Size() int { return a.size }

// Frame transforms one frame starting at x[0]; missing samples are zero.
func (a *Analyzer) Frame(x []float64, dst []float64) {
	for i := range a.buf {
		v := 0.0
		if i < len(x) {
			v = x[i]
		}
		a.buf[i] = v * a.window[i]
	}
	a.fwd(a.spec, a.buf)
	for k := range dst {
		dst[k] = cmplx.Abs(a.spec[k])
	}
}

// Average returns the spectrum of x[start:end] averaged over half
// overlapping frames. A segment shorter than one frame is zero padded.
func (a *Analyzer) Average(x []float64, sampleRate, start, end int) *Spectrum {
	start = max(start, 0)
	end = min(end, len(x))
	s := &Spectrum{SampleRate: sampleRate, Size: a.size, Mag: make([]float64, a.size/2+1)}
	if start >= end {
		return s
	}
	frame := make([]float64, len(s.Mag))
	hop := a.size / 2
	frames := 0
	for pos := start; pos == start || pos+a.size <= end; pos += hop {
		a.Frame(x[pos:min(pos+a.size, end)], frame)
		for k, v := range frame {
			s.Mag[k] += v
		}
		frames++
	}
	for k := range s.Mag {
		s.Mag[k] /= float64(frames)
	}
	return s
}

// Peak is a spectral maximum.
type Peak struct {
	Hz    float64
	Mag   float64
	DB    float64
	Bin   int
	Ratio float64 // Hz over the lowest returned peak
}

// Peaks returns up to count local maxima above floorDB (relative to the
// loudest bin), sorted by frequency. Frequencies are refined by parabolic
// interpolation of the log magnitude.
func (s *Spectrum) Peaks(count int, floorDB, minHz float64) []Peak {
	if count <= 0 || len(s.Mag) < 3 {
		return nil
	}
	top := 0.0
	for _, v := range s.Mag {
		top = math.Max(top, v)
	}
	if top <= 0 {
		return nil
	}
	binHz := s.BinHz()
	var peaks []Peak
	for k := 1; k < len(s.Mag)-1; k++ {
		m := s.Mag[k]
		if m <= s.Mag[k-1] || m < s.Mag[k+1] {
			continue
		}
		db := linToDB(m / top)
		if db < floorDB || float64(k)*binHz < minHz {
			continue
		}
		a, b, c := linToDB(s.Mag[k-1]), linToDB(m), linToDB(s.Mag[k+1])
		off := 0.0
		if den := a - 2*b + c; den < 0 {
			off = 0.5 * (a - c) / den
		}
		peaks = append(peaks, Peak{Hz: (float64(k) + off) * binHz, Mag: m, DB: db, Bin: k})
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Mag > peaks[j].Mag })
	if len(peaks) > count {
		peaks = peaks[:count]
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].Hz < peaks[j].Hz })
	for i := range peaks {
		peaks[i].Ratio = peaks[i].Hz / peaks[0].Hz
	}
	return peaks
}

// BandDB returns the mean power of [loHz, hiHz] in dB.
func (s *Spectrum) BandDB(loHz, hiHz float64) float64 {
	binHz := s.BinHz()
	lo := max(int(loHz/binHz), 1)
	hi := min(int(hiHz/binHz), len(s.Mag)-1)
	if lo > hi {
		return math.Inf(-1)
	}
	var pow float64
	for k := lo; k <= hi; k++ {
		pow += s.Mag[k] * s.Mag[k]
	}
	return 10 * math.Log10(math.Max(pow/float64(hi-lo+1), 1e-24))
}

// BandRMSEDB returns the RMS dB difference between two spectra of equal
// size over [loHz, hiHz].
func BandRMSEDB(ref, cand *Spectrum, loHz, hiHz float64) float64 {
	binHz := ref.BinHz()
	lo := max(int(loHz/binHz), 1)
	hi := min(int(hiHz/binHz), len(ref.Mag)-1, len(cand.Mag)-1)
	if lo > hi {
		return 0
	}
	var sum float64
	for k := lo; k <= hi; k++ {
		d := linToDB(ref.Mag[k]) - linToDB(cand.Mag[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(hi-lo+1))
}

// DecayTime estimates the T60 of x in seconds from the slope of its RMS
// envelope after the peak. It returns NaN for signals without a usable
// decay.
func DecayTime(x []float64, sampleRate int) float64 {
	const frame, hop = 256, 128
	slope := decaySlopeDBPerS(rmsEnvelope(x, frame, hop), float64(hop)/float64(sampleRate))
	if !isFinite(slope) || slope >= 0 {
		return math.NaN()
	}
	return -60 / slope
}
