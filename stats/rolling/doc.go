// Package rolling provides bounded sliding-window statistics for streaming
// scalar samples: an order-statistics median backed by an indexed skip list,
// and constant-time windowed mean/variance from running sums.
//
// Both types assume single-goroutine use; a caller sharing one across
// goroutines must serialize access, typically holding one lock around each
// push-then-read pair.
package rolling
