// Package ringchan provides a bounded channel with overwrite-oldest semantics.
package ringchan

import "sync/atomic"

// Chan is a bounded channel-like buffer with overwrite-oldest semantics.
//
// Producers never block: if the buffer is full, the oldest element is discarded.
// Consumers read from C() like a normal Go channel.
//
//	rc := ringchan.New[int](3)
//	for i := 0; i < 10; i++ {
//	    rc.ForceSend(i)
//	}
//	rc.Close()
//	for v := range rc.C() {
//	    fmt.Println("got:", v) // 7, 8, 9
//	}
//
// A single producer is assumed; concurrent producers may transiently exceed the
// overwrite accounting but never block.
type Chan[T any] struct {
	ch      chan T
	metrics Metrics
}

// New creates a Chan with the given capacity.
func New[T any](capacity int) *Chan[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &Chan[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel.
// Consumers can range over this until it's closed.
func (rc *Chan[T]) C() <-chan T {
	return rc.ch
}

// TrySend attempts to insert without blocking.
// Returns true if successful, false if the buffer is full.
func (rc *Chan[T]) TrySend(v T) bool {
	select {
	case rc.ch <- v:
		atomic.AddInt64(&rc.metrics.Written, 1)
		return true
	default:
		return false
	}
}

// ForceSend always succeeds immediately, discarding the oldest element if needed.
// Returns true when an element was dropped.
func (rc *Chan[T]) ForceSend(v T) bool {
	dropped := false

	for {
		select {
		case rc.ch <- v:
			atomic.AddInt64(&rc.metrics.Written, 1)
			return dropped
		default:
		}

		select {
		case <-rc.ch: // drop oldest
			atomic.AddInt64(&rc.metrics.Overwritten, 1)
			dropped = true
		default:
		}
	}
}

// Len returns the number of buffered elements.
func (rc *Chan[T]) Len() int {
	return len(rc.ch)
}

// Cap returns the channel capacity.
func (rc *Chan[T]) Cap() int {
	return cap(rc.ch)
}

// Close closes the underlying channel. After this, sends panic.
func (rc *Chan[T]) Close() {
	close(rc.ch)
}

// GetMetrics returns a snapshot of current metrics values.
func (rc *Chan[T]) GetMetrics() Metrics {
	return Metrics{
		Written:     atomic.LoadInt64(&rc.metrics.Written),
		Overwritten: atomic.LoadInt64(&rc.metrics.Overwritten),
	}
}

// Metrics provides lock-free counters for a Chan.
type Metrics struct {
	Written     int64
	Overwritten int64
}
