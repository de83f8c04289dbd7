package beat

import (
	"errors"
	"math"
	"testing"

	"github.com/jnhankins/ffmv/audio/energy"
	"github.com/jnhankins/ffmv/internal/testutil"
)

// sliceSource serves precomputed per-frame energies, ignoring the bin range.
type sliceSource struct {
	energies  []float64
	frameRate float64
	binRes    float64
	binCount  int
}

func (s *sliceSource) FrameCount() int        { return len(s.energies) }
func (s *sliceSource) FrameRate() float64     { return s.frameRate }
func (s *sliceSource) BinResolution() float64 { return s.binRes }
func (s *sliceSource) BinCount() int          { return s.binCount }

func (s *sliceSource) BandEnergy(frame, minBin, maxBin int) float64 {
	return s.energies[frame]
}

func newSliceSource(energies []float64) *sliceSource {
	return &sliceSource{
		energies:  energies,
		frameRate: 10,
		binRes:    10,
		binCount:  100,
	}
}

func TestNewPeakDecayErrors(t *testing.T) {
	src := newSliceSource(make([]float64, 8))

	if _, err := NewPeakDecay(nil, 0, 100); !errors.Is(err, ErrNilSource) {
		t.Errorf("nil source err = %v, want ErrNilSource", err)
	}
	if _, err := NewPeakDecay(src, 200, 100); !errors.Is(err, ErrFrequencyRange) {
		t.Errorf("inverted band err = %v, want ErrFrequencyRange", err)
	}
	if _, err := NewPeakDecay(src, -1, 100); !errors.Is(err, ErrFrequencyRange) {
		t.Errorf("negative min err = %v, want ErrFrequencyRange", err)
	}
	if _, err := NewPeakDecay(src, 0, math.Inf(1)); !errors.Is(err, ErrFrequencyRange) {
		t.Errorf("infinite max err = %v, want ErrFrequencyRange", err)
	}
	if _, err := NewPeakDecay(src, 2000, 3000); !errors.Is(err, ErrFrequencyRange) {
		t.Errorf("band past Nyquist err = %v, want ErrFrequencyRange", err)
	}
	if _, err := NewPeakDecay(src, 0, 100, WithSensitivity(1.5)); !errors.Is(err, ErrSensitivity) {
		t.Errorf("sensitivity 1.5 err = %v, want ErrSensitivity", err)
	}
	if _, err := NewPeakDecay(src, 0, 100, WithSensitivity(-0.1)); !errors.Is(err, ErrSensitivity) {
		t.Errorf("sensitivity -0.1 err = %v, want ErrSensitivity", err)
	}
}

func TestNewAdaptiveErrors(t *testing.T) {
	src := newSliceSource(make([]float64, 8))

	if _, err := NewAdaptive(nil, 0, 100, 1); !errors.Is(err, ErrNilSource) {
		t.Errorf("nil source err = %v, want ErrNilSource", err)
	}
	if _, err := NewAdaptive(src, 200, 100, 1); !errors.Is(err, ErrFrequencyRange) {
		t.Errorf("inverted band err = %v, want ErrFrequencyRange", err)
	}
	if _, err := NewAdaptive(src, 0, 100, 0); !errors.Is(err, ErrHistoryLength) {
		t.Errorf("zero history err = %v, want ErrHistoryLength", err)
	}
	if _, err := NewAdaptive(src, 0, 100, -1); !errors.Is(err, ErrHistoryLength) {
		t.Errorf("negative history err = %v, want ErrHistoryLength", err)
	}
	if _, err := NewAdaptive(src, 0, 100, math.Inf(1)); !errors.Is(err, ErrHistoryLength) {
		t.Errorf("infinite history err = %v, want ErrHistoryLength", err)
	}
	if _, err := NewAdaptive(src, 0, 100, 1, WithConstants(math.NaN(), 1)); !errors.Is(err, ErrConstant) {
		t.Errorf("NaN mul err = %v, want ErrConstant", err)
	}
	if _, err := NewAdaptive(src, 0, 100, 1, WithConstants(1, math.Inf(1))); !errors.Is(err, ErrConstant) {
		t.Errorf("infinite add err = %v, want ErrConstant", err)
	}
}

func TestBandRounding(t *testing.T) {
	src := newSliceSource(make([]float64, 8))

	d, err := NewPeakDecay(src, 95, 250)
	if err != nil {
		t.Fatalf("NewPeakDecay: %v", err)
	}

	// binRes 10 puts 95 Hz in bin 9; 250 Hz lands exactly on the edge of
	// bin 25, which the half-open band excludes.
	testutil.RequireInDelta(t, d.MinFrequency(), 90, 1e-12)
	testutil.RequireInDelta(t, d.MaxFrequency(), 250, 1e-12)

	// A maximum inside a bin keeps that bin.
	d, err = NewPeakDecay(src, 95, 255)
	if err != nil {
		t.Fatalf("NewPeakDecay: %v", err)
	}
	testutil.RequireInDelta(t, d.MaxFrequency(), 260, 1e-12)
}

func TestAdaptiveHistoryRounding(t *testing.T) {
	src := newSliceSource(make([]float64, 8))

	d, err := NewAdaptive(src, 0, 100, 1.25)
	if err != nil {
		t.Fatalf("NewAdaptive: %v", err)
	}

	// frameRate 10 rounds 1.25 s up to 13 frames.
	testutil.RequireInDelta(t, d.HistoryLength(), 1.3, 1e-12)

	mul, add := d.Constants()
	testutil.RequireInDelta(t, mul, -0.0025714, 1e-12)
	testutil.RequireInDelta(t, add, 1.5142857, 1e-12)
}

func collectBeats(t *testing.T, d interface {
	HasNext() bool
	Next() (bool, error)
}) []int {
	t.Helper()
	var beats []int
	for i := 0; d.HasNext(); i++ {
		beat, err := d.Next()
		if err != nil {
			t.Fatalf("Next at call %d: %v", i, err)
		}
		if beat {
			beats = append(beats, i)
		}
	}
	if _, err := d.Next(); !errors.Is(err, ErrNoMoreFrames) {
		t.Fatalf("Next past end err = %v, want ErrNoMoreFrames", err)
	}
	return beats
}

func TestPeakDecaySingleSpike(t *testing.T) {
	energies := make([]float64, 16)
	energies[3] = 10

	d, err := NewPeakDecay(newSliceSource(energies), 0, 100)
	if err != nil {
		t.Fatalf("NewPeakDecay: %v", err)
	}

	beats := collectBeats(t, d)
	if len(beats) != 1 {
		t.Fatalf("beats = %v, want exactly one", beats)
	}
	// The verdict for the spike lands one call after its frame.
	if beats[0] != 4 {
		t.Errorf("beat at call %d, want 4", beats[0])
	}
}

func TestPeakDecayThresholdDecay(t *testing.T) {
	energies := make([]float64, 20)
	energies[3] = 10
	energies[12] = 5

	// With no decay the threshold stays above the second, smaller spike.
	d, err := NewPeakDecay(newSliceSource(energies), 0, 100, WithSensitivity(0))
	if err != nil {
		t.Fatalf("NewPeakDecay: %v", err)
	}
	if beats := collectBeats(t, d); len(beats) != 1 {
		t.Fatalf("sensitivity 0: beats = %v, want exactly one", beats)
	}

	// Fast decay lets the threshold drop below it in time.
	d, err = NewPeakDecay(newSliceSource(energies), 0, 100, WithSensitivity(0.5))
	if err != nil {
		t.Fatalf("NewPeakDecay: %v", err)
	}
	if beats := collectBeats(t, d); len(beats) != 2 {
		t.Fatalf("sensitivity 0.5: beats = %v, want two", beats)
	}
}

func TestAdaptiveDetectsSpike(t *testing.T) {
	energies := make([]float64, 20)
	for i := range energies {
		energies[i] = 1
	}
	energies[8] = 10

	d, err := NewAdaptive(newSliceSource(energies), 0, 100, 1)
	if err != nil {
		t.Fatalf("NewAdaptive: %v", err)
	}

	beats := collectBeats(t, d)
	if len(beats) != 1 || beats[0] != 8 {
		t.Fatalf("beats = %v, want [8]", beats)
	}
}

func TestAdaptiveMedianBaselineResistsOutlier(t *testing.T) {
	// A large spike at frame 8 inflates the mean of the history window,
	// masking the moderate spike at frame 10 from the mean-based detector.
	// The median baseline stays at the floor level and catches both.
	energies := make([]float64, 20)
	for i := range energies {
		energies[i] = 1
	}
	energies[8] = 10
	energies[10] = 3

	d, err := NewAdaptive(newSliceSource(energies), 0, 100, 1)
	if err != nil {
		t.Fatalf("NewAdaptive: %v", err)
	}
	beats := collectBeats(t, d)
	if len(beats) != 1 || beats[0] != 8 {
		t.Fatalf("mean baseline: beats = %v, want [8]", beats)
	}

	d, err = NewAdaptive(newSliceSource(energies), 0, 100, 1, WithMedianBaseline())
	if err != nil {
		t.Fatalf("NewAdaptive: %v", err)
	}
	beats = collectBeats(t, d)
	if len(beats) != 2 || beats[0] != 8 || beats[1] != 10 {
		t.Fatalf("median baseline: beats = %v, want [8 10]", beats)
	}
}

func TestAdaptiveSkip(t *testing.T) {
	src := newSliceSource(make([]float64, 100))

	d, err := NewAdaptive(src, 0, 100, 1) // 10 history frames
	if err != nil {
		t.Fatalf("NewAdaptive: %v", err)
	}

	if got := d.Skip(0); got != 0 {
		t.Errorf("Skip(0) = %d, want 0", got)
	}
	if got := d.Skip(-5); got != 0 {
		t.Errorf("Skip(-5) = %d, want 0", got)
	}

	if got := d.Skip(50); got != 50 {
		t.Errorf("Skip(50) = %d, want 50", got)
	}
	if d.FrameIndex() != 50 {
		t.Errorf("FrameIndex = %d, want 50", d.FrameIndex())
	}

	// Only 50 frames remain.
	if got := d.Skip(1000); got != 50 {
		t.Errorf("Skip(1000) = %d, want 50", got)
	}
	if d.HasNext() {
		t.Error("HasNext after skipping all frames")
	}
	if _, err := d.Next(); !errors.Is(err, ErrNoMoreFrames) {
		t.Errorf("Next err = %v, want ErrNoMoreFrames", err)
	}
}

func TestAdaptiveSkipKeepsBaseline(t *testing.T) {
	// A spike right after a long skip must still stand out against the
	// skipped-over floor frames feeding the baseline.
	energies := make([]float64, 60)
	for i := range energies {
		energies[i] = 1
	}
	energies[50] = 10

	d, err := NewAdaptive(newSliceSource(energies), 0, 100, 1)
	if err != nil {
		t.Fatalf("NewAdaptive: %v", err)
	}

	if got := d.Skip(48); got != 48 {
		t.Fatalf("Skip(48) = %d, want 48", got)
	}

	var beats []int
	for d.HasNext() {
		beat, err := d.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if beat {
			beats = append(beats, d.FrameIndex()-1)
		}
	}
	if len(beats) != 1 || beats[0] != 50 {
		t.Fatalf("beats = %v, want [50]", beats)
	}
}

func TestDetectorsOnClickTrain(t *testing.T) {
	const (
		rate    = 8000.0
		bpm     = 93.75 // one click every 20 analysis frames
		seconds = 3.0
	)

	samples := testutil.ClickTrain(rate, bpm, 1000, seconds, 7)

	frames, err := energy.Analyze(samples, energy.Config{SampleRate: rate, FFTSize: 512})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	clicks := testutil.BeatFrames(bpm, seconds, frames.FrameRate())

	nearClick := func(frame int) bool {
		for _, c := range clicks {
			if frame >= c-2 && frame <= c+2 {
				return true
			}
		}
		return false
	}

	t.Run("peak decay", func(t *testing.T) {
		d, err := NewPeakDecay(frames, 900, 1100, WithSensitivity(0.02))
		if err != nil {
			t.Fatalf("NewPeakDecay: %v", err)
		}

		var beats []int
		for d.HasNext() {
			beat, err := d.Next()
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if beat {
				beats = append(beats, d.FrameIndex()-1)
			}
		}

		for _, c := range clicks {
			found := false
			for _, b := range beats {
				if b >= c-2 && b <= c+2 {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("click at frame %d not detected (beats %v)", c, beats)
			}
		}
		for _, b := range beats {
			if !nearClick(b) {
				t.Errorf("spurious beat at frame %d (clicks %v)", b, clicks)
			}
		}
	})

	t.Run("adaptive", func(t *testing.T) {
		d, err := NewAdaptive(frames, 900, 1100, 1)
		if err != nil {
			t.Fatalf("NewAdaptive: %v", err)
		}

		var beats []int
		for d.HasNext() {
			beat, err := d.Next()
			if err != nil {
				t.Fatalf("Next: %v", err)
			}
			if beat {
				beats = append(beats, d.FrameIndex()-1)
			}
		}

		// The first click bootstraps the history, later ones must all
		// be caught.
		for _, c := range clicks[1:] {
			found := false
			for _, b := range beats {
				if b >= c-2 && b <= c+2 {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("click at frame %d not detected (beats %v)", c, beats)
			}
		}
	})
}
