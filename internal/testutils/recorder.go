//go:build test

package testutils

import (
	"time"

	"github.com/srg/bledisco/internal/discovery"
)

// EventRecorder accumulates the events of one subscription.
//
// The core publishes before it answers a later request, so after any round trip
// (for example Core.Peripherals) every event caused by earlier callbacks is already
// buffered and Events sees it without waiting.
type EventRecorder struct {
	sub    *discovery.Subscription
	events []discovery.Event
	closed bool
}

func NewEventRecorder(sub *discovery.Subscription) *EventRecorder {
	return &EventRecorder{sub: sub}
}

// collect moves every buffered event into the record without blocking.
func (r *EventRecorder) collect() {
	for !r.closed {
		select {
		case ev, ok := <-r.sub.C():
			if !ok {
				r.closed = true
				return
			}
			r.events = append(r.events, ev)
		default:
			return
		}
	}
}

// Events returns every event recorded so far.
func (r *EventRecorder) Events() []discovery.Event {
	r.collect()
	out := make([]discovery.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Of returns recorded events of kind.
func (r *EventRecorder) Of(kind discovery.EventKind) []discovery.Event {
	var out []discovery.Event
	for _, ev := range r.Events() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Kinds returns the kinds of recorded events, in order.
func (r *EventRecorder) Kinds() []discovery.EventKind {
	var out []discovery.EventKind
	for _, ev := range r.Events() {
		out = append(out, ev.Kind)
	}
	return out
}

// Discovered returns the peripherals of recorded PeripheralDiscovered events, in order.
func (r *EventRecorder) Discovered() []discovery.Peripheral {
	var out []discovery.Peripheral
	for _, ev := range r.Of(discovery.PeripheralDiscovered) {
		out = append(out, ev.Peripheral)
	}
	return out
}

// WaitFor blocks until n events of kind were recorded, the subscription closes, or
// timeout elapses. It reports whether n events arrived. Use it for timer-driven events.
func (r *EventRecorder) WaitFor(kind discovery.EventKind, n int, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if len(r.Of(kind)) >= n {
			return true
		}
		if r.closed {
			return false
		}
		select {
		case ev, ok := <-r.sub.C():
			if !ok {
				r.closed = true
				continue
			}
			r.events = append(r.events, ev)
		case <-deadline.C:
			return false
		}
	}
}

// Closed reports whether the subscription channel was closed.
func (r *EventRecorder) Closed() bool {
	r.collect()
	return r.closed
}

// Reset forgets recorded events.
func (r *EventRecorder) Reset() {
	r.collect()
	r.events = nil
}
