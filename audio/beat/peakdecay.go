package beat

import "fmt"

const (
	defaultSensitivity = 0.005
	defaultBoost       = 0.02
)

// PeakDecay detects beats by tracking a decaying peak threshold.
//
// Each frame's band energy is compared against the threshold. A local energy
// peak at or above the threshold is a beat and raises the threshold to the
// peak energy plus a boost margin; every other frame lets the threshold decay
// by the sensitivity factor. Higher sensitivity means faster decay and more
// reported beats.
type PeakDecay struct {
	src            Source
	minBin, maxBin int
	sensitivity    float64
	boost          float64

	frame      int
	nextEnergy float64
	threshold  float64
}

// PeakDecayOption configures a PeakDecay detector.
type PeakDecayOption func(*PeakDecay)

// WithSensitivity sets the per-frame threshold decay factor in [0, 1].
// The default is 0.005.
func WithSensitivity(s float64) PeakDecayOption {
	return func(d *PeakDecay) { d.sensitivity = s }
}

// WithBoost sets the relative margin added to the threshold on each detected
// beat. The default is 0.02.
func WithBoost(b float64) PeakDecayOption {
	return func(d *PeakDecay) { d.boost = b }
}

// NewPeakDecay returns a detector scanning src for beats within the frequency
// band [minHz, maxHz).
func NewPeakDecay(src Source, minHz, maxHz float64, opts ...PeakDecayOption) (*PeakDecay, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	minBin, maxBin, err := bandBins(src, minHz, maxHz)
	if err != nil {
		return nil, err
	}

	d := &PeakDecay{
		src:         src,
		minBin:      minBin,
		maxBin:      maxBin,
		sensitivity: defaultSensitivity,
		boost:       defaultBoost,
	}
	for _, opt := range opts {
		opt(d)
	}

	if !(0 <= d.sensitivity && d.sensitivity <= 1) {
		return nil, fmt.Errorf("beat: sensitivity %g: %w", d.sensitivity, ErrSensitivity)
	}

	return d, nil
}

// MinFrequency returns the lower bound of the detector's band in Hz, rounded
// to its bin grid.
func (d *PeakDecay) MinFrequency() float64 {
	return d.src.BinResolution() * float64(d.minBin)
}

// MaxFrequency returns the upper bound of the detector's band in Hz, rounded
// to its bin grid.
func (d *PeakDecay) MaxFrequency() float64 {
	return d.src.BinResolution() * float64(d.maxBin+1)
}

// Sensitivity returns the per-frame threshold decay factor.
func (d *PeakDecay) Sensitivity() float64 {
	return d.sensitivity
}

// FrameIndex returns the index of the frame the next call to Next examines.
func (d *PeakDecay) FrameIndex() int {
	return d.frame
}

// HasNext reports whether unexamined frames remain.
func (d *PeakDecay) HasNext() bool {
	return d.frame < d.src.FrameCount()
}

// Next examines the current frame, advances past it, and reports whether it
// contains a beat. It returns ErrNoMoreFrames after the last frame.
func (d *PeakDecay) Next() (bool, error) {
	if !d.HasNext() {
		return false, ErrNoMoreFrames
	}

	// The verdict for the current frame needs one frame of lookahead to
	// know the energy is a local peak, hence the one-frame lag between
	// nextEnergy and the frame being judged.
	curr := d.nextEnergy
	d.nextEnergy = d.src.BandEnergy(d.frame, d.minBin, d.maxBin)
	d.frame++

	if curr >= d.threshold && curr > d.nextEnergy {
		d.threshold = curr * (1 + d.boost)
		return true, nil
	}

	d.threshold *= 1 - d.sensitivity
	return false, nil
}
