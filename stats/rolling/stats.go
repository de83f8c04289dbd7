package rolling

import "fmt"

// Stats maintains the mean and sample variance of a bounded stream of
// samples using running sums over a circular history buffer. Push, Mean,
// and Variance are O(1) regardless of window size.
//
// The variance uses the running-sum form (n*Σx² - (Σx)²) / (n*(n-1)), which
// is cheap but can lose precision when the mean is large relative to the
// spread. Energy envelopes, the intended input, are non-negative and
// short-windowed, where the form is well behaved.
type Stats struct {
	ring   []float64
	oldest int
	count  int
	sum    float64
	sumSq  float64
}

// NewStats returns a windowed accumulator holding at most capacity samples.
func NewStats(capacity int) (*Stats, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("rolling: stats capacity %d: %w", capacity, ErrInvalidCapacity)
	}

	return &Stats{ring: make([]float64, capacity)}, nil
}

// Len returns the number of samples currently in the window.
func (s *Stats) Len() int {
	return s.count
}

// Cap returns the window capacity.
func (s *Stats) Cap() int {
	return len(s.ring)
}

// Push appends a sample, evicting the oldest sample when the window is
// full. The running sums are updated with one subtraction and one addition
// per push.
func (s *Stats) Push(x float64) (evicted float64, ok bool) {
	if s.count == len(s.ring) {
		evicted = s.ring[s.oldest]
		ok = true
		s.oldest = (s.oldest + 1) % len(s.ring)
		s.count--
		s.sum -= evicted
		s.sumSq -= evicted * evicted
	}

	s.ring[(s.oldest+s.count)%len(s.ring)] = x
	s.count++
	s.sum += x
	s.sumSq += x * x

	return evicted, ok
}

// Mean returns the mean of the windowed samples, or 0 for an empty window.
func (s *Stats) Mean() float64 {
	if s.count == 0 {
		return 0
	}

	return s.sum / float64(s.count)
}

// Variance returns the sample variance of the windowed samples, or 0 when
// fewer than two samples are present.
func (s *Stats) Variance() float64 {
	n := float64(s.count)
	if s.count < 2 {
		return 0
	}

	v := (n*s.sumSq - s.sum*s.sum) / (n * (n - 1))
	if v < 0 {
		// Running sums can go slightly negative through cancellation.
		return 0
	}

	return v
}

// Reset clears all accumulated data, allowing the Stats to be reused.
func (s *Stats) Reset() {
	for i := range s.ring {
		s.ring[i] = 0
	}
	s.oldest = 0
	s.count = 0
	s.sum = 0
	s.sumSq = 0
}
