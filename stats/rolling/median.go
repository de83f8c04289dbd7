package rolling

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/jnhankins/ffmv/container/ranklist"
)

var (
	// ErrInvalidCapacity reports a window capacity below one.
	ErrInvalidCapacity = errors.New("rolling: capacity must be positive")
	// ErrEmptyWindow reports a statistic read from a window holding no
	// samples.
	ErrEmptyWindow = errors.New("rolling: window is empty")
)

// Median maintains the moving median (rolling median, running median) of a
// bounded stream of samples. A moving median can be preferable to a moving
// average when the stream carries rare shocks or dropouts that would drag an
// average but leave the middle of the distribution in place.
//
// Samples live in two lockstep views: a FIFO ring that knows which sample is
// oldest, and an indexed skip list that knows which sample is in the middle.
// Push, eviction, and Median are all O(log n) in the window size.
type Median[E any] struct {
	ring        []E // arrival order, circular
	oldest      int
	count       int
	list        *ranklist.List[E]
	preferUpper bool
}

type medianConfig struct {
	preferUpper bool
	listOpts    []ranklist.Option
}

// MedianOption configures Median construction.
type MedianOption func(*medianConfig)

// WithPreferUpper selects the upper of the two central ranks for odd-sized
// windows. The flag has no effect on even-sized windows.
func WithPreferUpper() MedianOption {
	return func(c *medianConfig) {
		c.preferUpper = true
	}
}

// WithListOptions forwards options to the backing rank list, e.g. a fixed
// seed for deterministic tests.
func WithListOptions(opts ...ranklist.Option) MedianOption {
	return func(c *medianConfig) {
		c.listOpts = append(c.listOpts, opts...)
	}
}

// NewMedian returns a moving-median window over naturally ordered samples
// holding at most capacity samples.
func NewMedian[E cmp.Ordered](capacity int, opts ...MedianOption) (*Median[E], error) {
	return NewMedianFunc(capacity, cmp.Compare[E], opts...)
}

// NewMedianFunc returns a moving-median window ordered by compare, which
// must define a total order over all pushed samples.
func NewMedianFunc[E any](capacity int, compare func(a, b E) int, opts ...MedianOption) (*Median[E], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("rolling: median capacity %d: %w", capacity, ErrInvalidCapacity)
	}

	var cfg medianConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &Median[E]{
		ring:        make([]E, capacity),
		list:        ranklist.NewFunc(compare, cfg.listOpts...),
		preferUpper: cfg.preferUpper,
	}, nil
}

// Len returns the number of samples currently in the window.
func (m *Median[E]) Len() int {
	return m.count
}

// Cap returns the maximum number of samples the window holds before the
// oldest sample is evicted on each push.
func (m *Median[E]) Cap() int {
	return len(m.ring)
}

// PreferUpper reports whether the upper central rank is used for odd-sized
// windows.
func (m *Median[E]) PreferUpper() bool {
	return m.preferUpper
}

// SetPreferUpper sets the central-rank choice for odd-sized windows.
func (m *Median[E]) SetPreferUpper(preferUpper bool) {
	m.preferUpper = preferUpper
}

// Push appends a sample. If the window is full the oldest sample is evicted
// and returned with ok true.
//
// When the window holds duplicate values, the evicted occurrence is the
// arrival-oldest among them: the rank list inserts equal samples after one
// another in arrival order and removes the lowest-ranked equal, so the two
// views cannot drift apart.
func (m *Median[E]) Push(v E) (evicted E, ok bool) {
	if m.count == len(m.ring) {
		evicted = m.popOldest()
		ok = true
	}

	m.ring[(m.oldest+m.count)%len(m.ring)] = v
	m.count++
	m.list.Insert(v)

	return evicted, ok
}

// popOldest drops the arrival-oldest sample from both views.
func (m *Median[E]) popOldest() E {
	var zero E
	v := m.ring[m.oldest]
	m.ring[m.oldest] = zero
	m.oldest = (m.oldest + 1) % len(m.ring)
	m.count--
	m.list.Remove(v)

	return v
}

// SetCapacity changes the window capacity. If the window currently holds
// more than capacity samples, the oldest surplus samples are evicted from
// both views and returned in arrival order.
func (m *Median[E]) SetCapacity(capacity int) ([]E, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("rolling: median capacity %d: %w", capacity, ErrInvalidCapacity)
	}

	var evicted []E
	for m.count > capacity {
		evicted = append(evicted, m.popOldest())
	}

	ring := make([]E, capacity)
	for i := 0; i < m.count; i++ {
		ring[i] = m.ring[(m.oldest+i)%len(m.ring)]
	}
	m.ring = ring
	m.oldest = 0

	return evicted, nil
}

// Median returns the sample at the window's central rank, as selected by
// MedianIndex. It fails with ErrEmptyWindow if no samples are present.
func (m *Median[E]) Median() (E, error) {
	var zero E
	if m.count == 0 {
		return zero, ErrEmptyWindow
	}

	idx := m.MedianIndex()
	if idx > m.count-1 {
		// The upper-rank branch lands one past the end for a single-sample
		// window; clamp instead of failing the read.
		idx = m.count - 1
	}

	v, err := m.list.At(idx)
	if err != nil {
		return zero, err
	}

	return v, nil
}

// MedianIndex returns the rank Median reads for the current window size:
// (size+1)/2 when the size is odd and PreferUpper is set, size/2 otherwise.
// The flag does not change the result for even sizes.
func (m *Median[E]) MedianIndex() int {
	if m.count%2 == 1 && m.preferUpper {
		return (m.count + 1) / 2
	}

	return m.count / 2
}

// Values returns the samples in arrival order, oldest first.
func (m *Median[E]) Values() []E {
	out := make([]E, m.count)
	for i := 0; i < m.count; i++ {
		out[i] = m.ring[(m.oldest+i)%len(m.ring)]
	}

	return out
}

// Clear drops all samples, keeping the capacity and rank settings.
func (m *Median[E]) Clear() {
	var zero E
	for i := range m.ring {
		m.ring[i] = zero
	}
	m.oldest = 0
	m.count = 0
	m.list.Clear()
}
