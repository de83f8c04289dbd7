package beat

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNilSource reports construction with a nil Source.
	ErrNilSource = errors.New("beat: nil source")
	// ErrNoMoreFrames reports Next past the last frame.
	ErrNoMoreFrames = errors.New("beat: no more frames")
	// ErrFrequencyRange reports a band whose minimum is not below its
	// maximum, or a negative minimum.
	ErrFrequencyRange = errors.New("beat: invalid frequency range")
	// ErrSensitivity reports a sensitivity outside [0, 1].
	ErrSensitivity = errors.New("beat: sensitivity must be in [0, 1]")
	// ErrHistoryLength reports a non-positive or non-finite history length.
	ErrHistoryLength = errors.New("beat: history length must be positive and finite")
	// ErrConstant reports a non-finite threshold constant.
	ErrConstant = errors.New("beat: threshold constants must be finite")
)

// Source provides framed band-energy data to a detector. *energy.Frames
// satisfies it.
type Source interface {
	// FrameCount returns the number of frames available.
	FrameCount() int
	// FrameRate returns the number of frames per second of signal.
	FrameRate() float64
	// BinResolution returns the width of one spectrum bin in Hz.
	BinResolution() float64
	// BinCount returns the number of spectrum bins per frame.
	BinCount() int
	// BandEnergy returns the mean spectrum magnitude of the given frame
	// across bins [minBin, maxBin], both inclusive.
	BandEnergy(frame, minBin, maxBin int) float64
}

// bandBins converts a frequency band in Hz to an inclusive bin range of src.
func bandBins(src Source, minHz, maxHz float64) (minBin, maxBin int, err error) {
	if !(0 <= minHz && minHz < maxHz) || math.IsInf(maxHz, 1) {
		return 0, 0, fmt.Errorf("beat: band [%g, %g): %w", minHz, maxHz, ErrFrequencyRange)
	}

	res := src.BinResolution()
	minBin = int(minHz / res)
	maxBin = int(maxHz / res)
	// The band is half-open: a maxHz landing exactly on a bin edge excludes
	// that bin.
	if float64(maxBin)*res == maxHz {
		maxBin--
	}
	if maxBin > src.BinCount()-1 {
		maxBin = src.BinCount() - 1
	}
	if minBin > maxBin {
		return 0, 0, fmt.Errorf("beat: band [%g, %g) spans no bins: %w", minHz, maxHz, ErrFrequencyRange)
	}

	return minBin, maxBin, nil
}
