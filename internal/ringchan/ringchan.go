// Package ringchan provides a bounded channel with overwrite-oldest
// semantics. The scanner uses it to stream discovery events to a consumer
// that may fall behind: producers never block, the latest events win.
package ringchan

import "sync/atomic"

// Ring wraps a buffered channel. When the buffer is full, Send discards the
// oldest element instead of blocking the producer.
type Ring[T any] struct {
	ch      chan T
	dropped atomic.Int64
}

// New creates a Ring with the given capacity. Panics if capacity <= 0.
func New[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &Ring[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel. Consumers can range over it
// until Close.
func (r *Ring[T]) C() <-chan T {
	return r.ch
}

// Send inserts an item, discarding the oldest buffered item if the ring is
// full. It never blocks indefinitely.
func (r *Ring[T]) Send(v T) {
	select {
	case r.ch <- v:
	default:
		select {
		case <-r.ch:
			r.dropped.Add(1)
		default:
		}
		r.ch <- v
	}
}

// TrySend inserts an item only if there is room. Returns false if the ring
// is full.
func (r *Ring[T]) TrySend(v T) bool {
	select {
	case r.ch <- v:
		return true
	default:
		return false
	}
}

// Receive blocks until a value is available or the ring is closed.
func (r *Ring[T]) Receive() (v T, ok bool) {
	v, ok = <-r.ch
	return
}

// Len returns the number of buffered elements.
func (r *Ring[T]) Len() int {
	return len(r.ch)
}

// Dropped returns how many elements were discarded due to a full buffer.
func (r *Ring[T]) Dropped() int64 {
	return r.dropped.Load()
}

// Close closes the ring. Send after Close panics, as with any channel.
func (r *Ring[T]) Close() {
	close(r.ch)
}
