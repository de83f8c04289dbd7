package ranklist

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

var (
	// ErrIndexOutOfRange reports a rank outside [0, Len).
	ErrIndexOutOfRange = errors.New("ranklist: index out of range")
	// ErrUnsupported reports a positional write, which would break the
	// maintained ordering.
	ErrUnsupported = errors.New("ranklist: positional writes are not supported")
	// ErrStaleIterator reports use of an iterator created before a
	// structural mutation of its list.
	ErrStaleIterator = errors.New("ranklist: list modified during iteration")
)

// node is a payload-bearing skip list entry. next and width are parallel
// arrays sized to the node's drawn level plus one. width[l] is the number of
// rank positions advanced by following next[l]; base-level links always have
// width 1, and a link to the end of the list spans the remaining elements
// plus one.
type node[E any] struct {
	elem  E
	next  []*node[E]
	width []int
}

func (n *node[E]) level() int {
	return len(n.next) - 1
}

// List is an indexed skip list ordered by an injected comparison function.
// Equal elements keep their insertion order: a new element is placed after
// all existing elements that compare equal to it.
//
// The zero value is not usable; construct lists with New or NewFunc.
type List[E any] struct {
	compare func(a, b E) int
	rng     *rand.Rand
	head    *node[E] // sentinel, carries no element
	size    int
	mods    uint64 // structural modification counter for fail-fast iteration
}

type config struct {
	src rand.Source
}

// Option configures list construction.
type Option func(*config)

// WithSeed fixes the level generator seed, making the internal structure
// deterministic for a given insertion sequence.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.src = rand.NewPCG(seed, seed)
	}
}

// WithRandSource supplies the random source used for level selection.
func WithRandSource(src rand.Source) Option {
	return func(c *config) {
		if src != nil {
			c.src = src
		}
	}
}

// New returns an empty list ordered by the natural ordering of E.
func New[E cmp.Ordered](opts ...Option) *List[E] {
	return NewFunc(cmp.Compare[E], opts...)
}

// NewFunc returns an empty list ordered by compare, which must define a
// total order over all elements that will be inserted. NewFunc panics if
// compare is nil.
func NewFunc[E any](compare func(a, b E) int, opts ...Option) *List[E] {
	if compare == nil {
		panic("ranklist: nil compare function")
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.src == nil {
		cfg.src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	return &List[E]{
		compare: compare,
		rng:     rand.New(cfg.src),
		head:    newHead[E](),
	}
}

func newHead[E any]() *node[E] {
	return &node[E]{
		next:  make([]*node[E], 1),
		width: []int{1},
	}
}

// Len returns the number of elements in the list. O(1).
func (l *List[E]) Len() int {
	return l.size
}

// At returns the element at rank i (0-based position in the sorted
// sequence). O(log n).
func (l *List[E]) At(i int) (E, error) {
	var zero E
	if i < 0 || i >= l.size {
		return zero, fmt.Errorf("ranklist: rank %d with len %d: %w", i, l.size, ErrIndexOutOfRange)
	}

	n := l.head
	rem := i + 1
	for level := l.head.level(); level >= 0; level-- {
		for n.width[level] <= rem {
			rem -= n.width[level]
			n = n.next[level]
		}
	}

	return n.elem, nil
}

// Insert places v so the list stays sorted, after any elements already equal
// to v. All ranks at or after the insertion point shift up by one. O(log n)
// expected.
func (l *List[E]) Insert(v E) {
	maxLevel := l.head.level()

	// Rightmost node on each level whose element does not exceed v, with
	// the rank distance covered at that level.
	path := make([]*node[E], maxLevel+1)
	steps := make([]int, maxLevel+1)
	n := l.head
	for level := maxLevel; level >= 0; level-- {
		for n.next[level] != nil && l.compare(v, n.next[level].elem) >= 0 {
			steps[level] += n.width[level]
			n = n.next[level]
		}
		path[level] = n
	}

	lvl := l.randomLevel()
	if lvl > maxLevel {
		// Extend the head. A fresh top level holds a single link spanning
		// the whole list.
		for level := maxLevel + 1; level <= lvl; level++ {
			l.head.next = append(l.head.next, nil)
			l.head.width = append(l.head.width, l.size+1)
			path = append(path, l.head)
			steps = append(steps, 0)
		}
	}

	nn := &node[E]{
		elem:  v,
		next:  make([]*node[E], lvl+1),
		width: make([]int, lvl+1),
	}

	s := 0
	for level := 0; level <= lvl; level++ {
		prev := path[level]
		nn.next[level] = prev.next[level]
		prev.next[level] = nn
		nn.width[level] = prev.width[level] - s
		prev.width[level] = s + 1
		s += steps[level]
	}
	// Links above the new node now straddle one more element.
	for level := lvl + 1; level <= l.head.level(); level++ {
		path[level].width[level]++
	}

	l.size++
	l.mods++
}

// RemoveAt removes and returns the element at rank i. All ranks after i
// shift down by one. O(log n).
func (l *List[E]) RemoveAt(i int) (E, error) {
	var zero E
	if i < 0 || i >= l.size {
		return zero, fmt.Errorf("ranklist: rank %d with len %d: %w", i, l.size, ErrIndexOutOfRange)
	}

	maxLevel := l.head.level()
	path := make([]*node[E], maxLevel+1)
	n := l.head
	rem := i + 1
	for level := maxLevel; level >= 0; level-- {
		for n.next[level] != nil && n.width[level] < rem {
			rem -= n.width[level]
			n = n.next[level]
		}
		path[level] = n
	}
	target := n.next[0]

	l.unlink(path, target)

	return target.elem, nil
}

// Remove removes the first (lowest-ranked) element comparing equal to v and
// reports whether a removal occurred. Later equal elements are untouched.
// O(log n).
func (l *List[E]) Remove(v E) bool {
	maxLevel := l.head.level()
	path := make([]*node[E], maxLevel+1)
	n := l.head
	for level := maxLevel; level >= 0; level-- {
		for n.next[level] != nil && l.compare(v, n.next[level].elem) > 0 {
			n = n.next[level]
		}
		path[level] = n
	}

	target := n.next[0]
	if target == nil || l.compare(v, target.elem) != 0 {
		return false
	}

	l.unlink(path, target)

	return true
}

// unlink splices target out of every level it participates in, fixing the
// spans of links that now bypass it, then contracts redundant head levels.
func (l *List[E]) unlink(path []*node[E], target *node[E]) {
	for level := 0; level <= target.level(); level++ {
		path[level].next[level] = target.next[level]
		path[level].width[level] += target.width[level] - 1
	}
	for level := target.level() + 1; level <= l.head.level(); level++ {
		path[level].width[level]--
	}

	l.size--

	// Drop head levels whose single link spans the entire list.
	maxLevel := l.head.level()
	for maxLevel > 0 && l.head.width[maxLevel] == l.size+1 {
		maxLevel--
	}
	if maxLevel < l.head.level() {
		l.head.next = l.head.next[:maxLevel+1]
		l.head.width = l.head.width[:maxLevel+1]
	}

	l.mods++
}

// IndexOf returns the lowest rank of an element comparing equal to v.
// The second result reports whether such an element exists. O(log n).
func (l *List[E]) IndexOf(v E) (int, bool) {
	n := l.head
	idx := 0
	for level := l.head.level(); level >= 0; level-- {
		for n.next[level] != nil && l.compare(v, n.next[level].elem) > 0 {
			idx += n.width[level]
			n = n.next[level]
		}
	}

	cand := n.next[0]
	if cand == nil || l.compare(v, cand.elem) != 0 {
		return 0, false
	}

	return idx, true
}

// LastIndexOf returns the highest rank of an element comparing equal to v.
// The second result reports whether such an element exists. O(log n).
func (l *List[E]) LastIndexOf(v E) (int, bool) {
	n := l.head
	idx := 0
	for level := l.head.level(); level >= 0; level-- {
		for n.next[level] != nil && l.compare(v, n.next[level].elem) >= 0 {
			idx += n.width[level]
			n = n.next[level]
		}
	}

	if n == l.head || l.compare(v, n.elem) != 0 {
		return 0, false
	}

	return idx - 1, true
}

// Contains reports whether the list holds an element comparing equal to v.
// O(log n).
func (l *List[E]) Contains(v E) bool {
	_, ok := l.LastIndexOf(v)
	return ok
}

// Clear removes all elements. O(1).
func (l *List[E]) Clear() {
	l.head = newHead[E]()
	l.size = 0
	l.mods++
}

// Values returns the elements in ascending order as a fresh slice.
func (l *List[E]) Values() []E {
	out := make([]E, 0, l.size)
	for n := l.head.next[0]; n != nil; n = n.next[0] {
		out = append(out, n.elem)
	}

	return out
}

// InsertAt is not supported: writing to a chosen rank would break the
// maintained ordering. It always returns ErrUnsupported.
func (l *List[E]) InsertAt(i int, v E) error {
	return fmt.Errorf("ranklist: insert at rank %d: %w", i, ErrUnsupported)
}

// SetAt is not supported: writing to a chosen rank would break the
// maintained ordering. It always returns ErrUnsupported.
func (l *List[E]) SetAt(i int, v E) error {
	return fmt.Errorf("ranklist: set at rank %d: %w", i, ErrUnsupported)
}

// String renders the elements in ascending order.
func (l *List[E]) String() string {
	return fmt.Sprintf("%v", l.Values())
}

// randomLevel draws the level for a new node: level k with probability
// 2^-(k+1), capped at ceil(1+log2(size+1)) so the height tracks the size.
func (l *List[E]) randomLevel() int {
	maxLevel := int(1 + math.Log2(float64(l.size+1)))
	level := 0
	for level < maxLevel && l.rng.Uint64()&1 == 1 {
		level++
	}

	return level
}
