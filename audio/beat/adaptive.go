package beat

import (
	"fmt"
	"math"

	"github.com/jnhankins/ffmv/stats/rolling"
)

// Threshold constants tuned against hand-annotated beats; see
// Patin, "Beat Detection Algorithms" (2003) for the derivation approach.
const (
	defaultMulConstant = -0.0025714
	defaultAddConstant = 1.5142857
)

// Adaptive detects beats by comparing each frame's band energy against a
// statistical baseline of the recent past.
//
// The detector keeps a sliding history of the previous frames' band energies.
// A frame contains a beat when
//
//	e > (C1*Var + C0) * baseline
//
// where e is the frame's energy, Var the energy variance over the history
// window, and baseline the window mean (or median, with WithMedianBaseline).
// The variance term lowers the threshold for noisy material, where beats are
// embedded in a busier signal, and raises it for clean material with sharp
// dynamics.
type Adaptive struct {
	src            Source
	minBin, maxBin int
	historyFrames  int
	mulC, addC     float64

	stats      *rolling.Stats
	median     *rolling.Median[float64]
	wantMedian bool

	frame int
}

// AdaptiveOption configures an Adaptive detector.
type AdaptiveOption func(*Adaptive)

// WithConstants overrides the multiplicative (C1) and additive (C0) threshold
// constants.
func WithConstants(mul, add float64) AdaptiveOption {
	return func(d *Adaptive) {
		d.mulC = mul
		d.addC = add
	}
}

// WithMedianBaseline compares frames against the median of the history window
// instead of the mean. The median ignores outlier frames, so a single loud
// transient does not mask the beats that follow it.
func WithMedianBaseline() AdaptiveOption {
	return func(d *Adaptive) { d.wantMedian = true }
}

// NewAdaptive returns a detector scanning src for beats within the frequency
// band [minHz, maxHz), comparing each frame against the previous
// historyLength seconds of signal.
func NewAdaptive(src Source, minHz, maxHz, historyLength float64, opts ...AdaptiveOption) (*Adaptive, error) {
	if src == nil {
		return nil, ErrNilSource
	}
	if !(historyLength > 0) || math.IsInf(historyLength, 1) {
		return nil, fmt.Errorf("beat: history %g s: %w", historyLength, ErrHistoryLength)
	}

	minBin, maxBin, err := bandBins(src, minHz, maxHz)
	if err != nil {
		return nil, err
	}

	historyFrames := int(math.Ceil(historyLength * src.FrameRate()))
	if historyFrames < 2 {
		historyFrames = 2
	}

	d := &Adaptive{
		src:           src,
		minBin:        minBin,
		maxBin:        maxBin,
		historyFrames: historyFrames,
		mulC:          defaultMulConstant,
		addC:          defaultAddConstant,
	}
	for _, opt := range opts {
		opt(d)
	}

	if math.IsNaN(d.mulC) || math.IsInf(d.mulC, 0) {
		return nil, fmt.Errorf("beat: multiplicative constant %g: %w", d.mulC, ErrConstant)
	}
	if math.IsNaN(d.addC) || math.IsInf(d.addC, 0) {
		return nil, fmt.Errorf("beat: additive constant %g: %w", d.addC, ErrConstant)
	}

	d.stats, err = rolling.NewStats(historyFrames)
	if err != nil {
		return nil, err
	}
	if d.wantMedian {
		d.median, err = rolling.NewMedian[float64](historyFrames)
		if err != nil {
			return nil, err
		}
	}

	return d, nil
}

// MinFrequency returns the lower bound of the detector's band in Hz, rounded
// to its bin grid.
func (d *Adaptive) MinFrequency() float64 {
	return d.src.BinResolution() * float64(d.minBin)
}

// MaxFrequency returns the upper bound of the detector's band in Hz, rounded
// to its bin grid.
func (d *Adaptive) MaxFrequency() float64 {
	return d.src.BinResolution() * float64(d.maxBin+1)
}

// HistoryLength returns the length of the history window in seconds, rounded
// to the frame grid.
func (d *Adaptive) HistoryLength() float64 {
	return float64(d.historyFrames) / d.src.FrameRate()
}

// Constants returns the multiplicative (C1) and additive (C0) threshold
// constants.
func (d *Adaptive) Constants() (mul, add float64) {
	return d.mulC, d.addC
}

// FrameIndex returns the index of the frame the next call to Next examines.
func (d *Adaptive) FrameIndex() int {
	return d.frame
}

// HasNext reports whether unexamined frames remain.
func (d *Adaptive) HasNext() bool {
	return d.frame < d.src.FrameCount()
}

// Next examines the current frame, advances past it, and reports whether it
// contains a beat. It returns ErrNoMoreFrames after the last frame.
func (d *Adaptive) Next() (bool, error) {
	if !d.HasNext() {
		return false, ErrNoMoreFrames
	}

	e := d.nextFrame()

	// The baseline needs at least two frames before the variance is
	// defined, so the first frame is never a beat.
	if d.stats.Len() < 2 {
		return false, nil
	}

	baseline := d.stats.Mean()
	if d.median != nil {
		baseline, _ = d.median.Median()
	}

	c := d.mulC*d.stats.Variance() + d.addC

	return e > c*baseline, nil
}

// Skip advances past up to n frames without testing them for beats and
// returns the number of frames actually skipped. Frames that land inside the
// history window of the next examined frame still contribute to the baseline;
// frames before that are discarded without being read.
func (d *Adaptive) Skip(n int) int {
	if n <= 0 {
		return 0
	}

	skipped := 0
	avail := d.src.FrameCount() - d.frame - 1
	if n > d.historyFrames && avail > d.historyFrames {
		skipped = min(n, avail) - d.historyFrames
		d.frame += skipped
	}

	for skipped < n && d.HasNext() {
		d.nextFrame()
		skipped++
	}

	return skipped
}

// nextFrame reads the current frame's band energy into the history window and
// advances the frame index.
func (d *Adaptive) nextFrame() float64 {
	e := d.src.BandEnergy(d.frame, d.minBin, d.maxBin)
	d.stats.Push(e)
	if d.median != nil {
		d.median.Push(e)
	}
	d.frame++

	return e
}
