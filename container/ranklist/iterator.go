package ranklist

// Iterator walks a list in ascending order:
//
//	it := l.Iter()
//	for it.Next() {
//		use(it.Value())
//	}
//	if err := it.Err(); err != nil {
//		// list was mutated mid-iteration
//	}
//
// Iterators are fail-fast: any insert, removal, or clear performed after the
// iterator was created makes the next call to Next report false with
// ErrStaleIterator. Detection is best-effort and meant to surface bugs; it
// is not a substitute for external synchronization.
type Iterator[E any] struct {
	list *List[E]
	mods uint64
	node *node[E]
	cur  E
	err  error
}

// Iter returns a new iterator positioned before the first element. O(1).
func (l *List[E]) Iter() *Iterator[E] {
	return &Iterator[E]{
		list: l,
		mods: l.mods,
		node: l.head.next[0],
	}
}

// Next advances to the next element, reporting false when the iteration is
// exhausted or the list was structurally modified.
func (it *Iterator[E]) Next() bool {
	if it.err != nil {
		return false
	}
	if it.mods != it.list.mods {
		it.err = ErrStaleIterator
		return false
	}
	if it.node == nil {
		return false
	}

	it.cur = it.node.elem
	it.node = it.node.next[0]

	return true
}

// Value returns the element produced by the last successful Next.
func (it *Iterator[E]) Value() E {
	return it.cur
}

// Err returns ErrStaleIterator if the list was structurally modified after
// the iterator was created, and nil otherwise.
func (it *Iterator[E]) Err() error {
	return it.err
}
