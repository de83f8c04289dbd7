// Package ranklist provides an indexed probabilistic skip list: an ordered
// container with O(log n) insertion, removal, and rank (by-position) access.
//
// Every forward link carries a span counter recording how many base-level
// elements it skips, so the rank of an element is derived by summing spans
// along a search path instead of walking the base level. The link hierarchy
// is probabilistic: each inserted node draws its level from a geometric
// distribution capped near log2 of the current size, which keeps the expected
// height balanced without any rebalancing pass.
//
// Lists are not safe for concurrent use. Callers that share a list across
// goroutines must serialize access externally. Iterators are fail-fast on a
// best-effort basis: a structural mutation invalidates every open iterator,
// and the next use reports ErrStaleIterator.
package ranklist
