package energy

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/mjibson/go-dsp/window"
)

var (
	// ErrNoSamples reports analysis of an empty signal.
	ErrNoSamples = errors.New("energy: no samples")
	// ErrInvalidSampleRate reports a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("energy: sample rate must be positive")
	// ErrInvalidFFTSize reports an FFT size below two.
	ErrInvalidFFTSize = errors.New("energy: fft size must be at least 2")
	// ErrInvalidHopSize reports a negative hop size.
	ErrInvalidHopSize = errors.New("energy: hop size must be positive")
	// ErrFrameOutOfRange reports a frame index outside [0, FrameCount).
	ErrFrameOutOfRange = errors.New("energy: frame index out of range")
	// ErrFrequencyRange reports a band whose minimum is not below its
	// maximum, or a negative minimum.
	ErrFrequencyRange = errors.New("energy: invalid frequency range")
)

const (
	defaultSampleRate = 44100.0
	defaultFFTSize    = 2048
)

// Config holds analysis parameters.
type Config struct {
	// SampleRate of the input signal in Hz. Defaults to 44100.
	SampleRate float64
	// FFTSize is the number of samples per analysis frame. Defaults to 2048.
	FFTSize int
	// HopSize is the sample distance between adjacent frame centers.
	// Defaults to FFTSize/2 (50% overlap).
	HopSize int
	// Window generates the window coefficients applied before each FFT,
	// e.g. window.Hann or window.Hamming from go-dsp. Defaults to Hann.
	Window func(int) []float64
}

func normalizeConfig(cfg Config) (Config, error) {
	if cfg.SampleRate < 0 {
		return cfg, fmt.Errorf("energy: sample rate %g: %w", cfg.SampleRate, ErrInvalidSampleRate)
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = defaultSampleRate
	}

	if cfg.FFTSize < 0 || cfg.FFTSize == 1 {
		return cfg, fmt.Errorf("energy: fft size %d: %w", cfg.FFTSize, ErrInvalidFFTSize)
	}
	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.HopSize < 0 {
		return cfg, fmt.Errorf("energy: hop size %d: %w", cfg.HopSize, ErrInvalidHopSize)
	}
	if cfg.HopSize == 0 {
		cfg.HopSize = cfg.FFTSize / 2
	}

	if cfg.Window == nil {
		cfg.Window = window.Hann
	}

	return cfg, nil
}

// Frames holds the per-frame analysis results for one signal.
type Frames struct {
	sampleRate float64
	fftSize    int
	hop        int
	rms        []float64
	mags       [][]float64 // one-sided magnitude spectrum per frame
	rmsMax     float64
	magMax     float64
}

// Analyze computes RMS and spectral frames for a mono PCM signal.
//
// A zero-valued Config selects 44.1 kHz, 2048-sample frames with 50%
// overlap and a Hann window. The returned Frames is immutable afterwards
// and safe for concurrent reads.
func Analyze(samples []float64, cfg Config) (*Frames, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}

	cfg, err := normalizeConfig(cfg)
	if err != nil {
		return nil, err
	}

	hop := cfg.HopSize
	frameCount := (len(samples) + hop - 1) / hop
	binCount := cfg.FFTSize/2 + 1

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("energy: failed to create FFT plan: %w", err)
	}

	coeffs := cfg.Window(cfg.FFTSize)

	f := &Frames{
		sampleRate: cfg.SampleRate,
		fftSize:    cfg.FFTSize,
		hop:        hop,
		rms:        make([]float64, frameCount),
		mags:       make([][]float64, frameCount),
	}

	in := make([]complex128, cfg.FFTSize)
	out := make([]complex128, cfg.FFTSize)
	re := make([]float64, binCount)
	im := make([]float64, binCount)

	for i := 0; i < frameCount; i++ {
		start := i*hop - cfg.FFTSize/2

		var sumSq float64
		var n int
		for j := 0; j < cfg.FFTSize; j++ {
			idx := start + j
			if idx < 0 || idx >= len(samples) {
				in[j] = 0
				continue
			}
			x := samples[idx]
			sumSq += x * x
			n++
			in[j] = complex(x*coeffs[j], 0)
		}

		if n > 0 {
			f.rms[i] = math.Sqrt(sumSq / float64(n))
		}
		if f.rms[i] > f.rmsMax {
			f.rmsMax = f.rms[i]
		}

		if err := plan.Forward(out, in); err != nil {
			return nil, fmt.Errorf("energy: forward FFT failed: %w", err)
		}

		for k := 0; k < binCount; k++ {
			re[k] = real(out[k])
			im[k] = imag(out[k])
		}

		mag := make([]float64, binCount)
		vecmath.Magnitude(mag, re, im)
		f.mags[i] = mag

		for _, v := range mag {
			if v > f.magMax {
				f.magMax = v
			}
		}
	}

	return f, nil
}

// FrameCount returns the number of analysis frames.
func (f *Frames) FrameCount() int {
	return len(f.rms)
}

// FrameRate returns the number of frames per second of signal.
func (f *Frames) FrameRate() float64 {
	return f.sampleRate / float64(f.hop)
}

// SampleRate returns the sample rate the signal was analyzed at.
func (f *Frames) SampleRate() float64 {
	return f.sampleRate
}

// FFTSize returns the number of samples per analysis frame.
func (f *Frames) FFTSize() int {
	return f.fftSize
}

// HopSize returns the sample distance between adjacent frame centers.
func (f *Frames) HopSize() int {
	return f.hop
}

// BinCount returns the number of one-sided spectrum bins per frame.
func (f *Frames) BinCount() int {
	return f.fftSize/2 + 1
}

// BinResolution returns the width of one spectrum bin in Hz.
func (f *Frames) BinResolution() float64 {
	return f.sampleRate / float64(f.fftSize)
}

// RMS returns the root-mean-square level of the samples around frame i.
func (f *Frames) RMS(i int) (float64, error) {
	if i < 0 || i >= len(f.rms) {
		return 0, fmt.Errorf("energy: frame %d of %d: %w", i, len(f.rms), ErrFrameOutOfRange)
	}

	return f.rms[i], nil
}

// MaxRMS returns the largest per-frame RMS level, for normalization.
func (f *Frames) MaxRMS() float64 {
	return f.rmsMax
}

// MaxMagnitude returns the largest spectrum magnitude across all frames and
// bins, for normalization.
func (f *Frames) MaxMagnitude() float64 {
	return f.magMax
}

// Spectrum returns a copy of the one-sided magnitude spectrum of frame i.
func (f *Frames) Spectrum(i int) ([]float64, error) {
	if i < 0 || i >= len(f.mags) {
		return nil, fmt.Errorf("energy: frame %d of %d: %w", i, len(f.mags), ErrFrameOutOfRange)
	}

	out := make([]float64, len(f.mags[i]))
	copy(out, f.mags[i])

	return out, nil
}

// BandEnergy returns the mean spectrum magnitude of frame i across bins
// [minBin, maxBin], both inclusive. Bins are clamped to the valid range and
// out-of-range frames report zero; this is the allocation-free hot path for
// per-frame scans where the caller has already validated its band.
func (f *Frames) BandEnergy(i, minBin, maxBin int) float64 {
	if i < 0 || i >= len(f.mags) {
		return 0
	}

	mag := f.mags[i]
	if minBin < 0 {
		minBin = 0
	}
	if maxBin > len(mag)-1 {
		maxBin = len(mag) - 1
	}
	if minBin > maxBin {
		return 0
	}

	var sum float64
	for k := minBin; k <= maxBin; k++ {
		sum += mag[k]
	}

	return sum / float64(maxBin-minBin+1)
}

// BandEnergyRange returns the mean spectrum magnitude of frame i across the
// frequency band [minHz, maxHz).
func (f *Frames) BandEnergyRange(i int, minHz, maxHz float64) (float64, error) {
	if i < 0 || i >= len(f.mags) {
		return 0, fmt.Errorf("energy: frame %d of %d: %w", i, len(f.mags), ErrFrameOutOfRange)
	}
	if !(0 <= minHz && minHz < maxHz) || math.IsInf(maxHz, 1) {
		return 0, fmt.Errorf("energy: band [%g, %g): %w", minHz, maxHz, ErrFrequencyRange)
	}

	res := f.BinResolution()
	minBin := int(minHz / res)
	maxBin := int(maxHz / res)
	// The band is half-open: a maxHz landing exactly on a bin edge excludes
	// that bin.
	if float64(maxBin)*res == maxHz {
		maxBin--
	}
	if maxBin > f.BinCount()-1 {
		maxBin = f.BinCount() - 1
	}

	return f.BandEnergy(i, minBin, maxBin), nil
}
