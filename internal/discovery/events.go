package discovery

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/ringchan"
)

// EventKind selects which events a Subscription receives.
type EventKind uint8

const (
	ScanStarted EventKind = iota + 1
	ScanStopped
	PeripheralDiscovered
	AdapterStateChanged
)

func (k EventKind) String() string {
	switch k {
	case ScanStarted:
		return "scan_started"
	case ScanStopped:
		return "scan_stopped"
	case PeripheralDiscovered:
		return "peripheral_discovered"
	case AdapterStateChanged:
		return "adapter_state_changed"
	default:
		return fmt.Sprintf("event(%d)", uint8(k))
	}
}

// DiscoveryKinds is the default subscription set.
var DiscoveryKinds = []EventKind{ScanStarted, ScanStopped, PeripheralDiscovered}

// Event is delivered to subscribers.
type Event struct {
	Kind      EventKind
	Timestamp time.Time

	// Session is the scan session number for ScanStarted/ScanStopped.
	Session uint64
	// Reason explains a ScanStopped that the caller did not request.
	Reason string
	// Peripheral is set for PeripheralDiscovered.
	Peripheral Peripheral
	// State is set for AdapterStateChanged.
	State device.AdapterState
}

// DefaultSubscriptionBuffer is the per-subscriber queue length.
const DefaultSubscriptionBuffer = 256

// Bus multicasts events to subscribers. Publishing never blocks: each subscriber owns a
// bounded queue that drops its oldest event when full.
type Bus struct {
	subs     *hashmap.Map[uint64, *Subscription]
	nextID   atomic.Uint64
	capacity int
	logger   *logrus.Logger
}

// NewBus creates a bus whose subscriber queues hold capacity events.
func NewBus(capacity int, logger *logrus.Logger) *Bus {
	if capacity <= 0 {
		capacity = DefaultSubscriptionBuffer
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Bus{
		subs:     hashmap.New[uint64, *Subscription](),
		capacity: capacity,
		logger:   logger,
	}
}

// Subscribe registers a subscriber for kinds, or DiscoveryKinds when none are given.
func (b *Bus) Subscribe(kinds ...EventKind) *Subscription {
	if len(kinds) == 0 {
		kinds = DiscoveryKinds
	}

	s := &Subscription{
		id:  b.nextID.Add(1),
		bus: b,
		ch:  ringchan.New[Event](b.capacity),
	}
	for _, k := range kinds {
		s.mask |= 1 << k
	}
	b.subs.Set(s.id, s)

	b.logger.WithFields(logrus.Fields{
		"subscription": s.id,
		"kinds":        kinds,
	}).Debug("Subscriber registered")
	return s
}

// Publish delivers ev to every subscriber interested in its kind, in call order.
func (b *Bus) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.subs.Range(func(_ uint64, s *Subscription) bool {
		if s.wants(ev.Kind) && s.deliver(ev) {
			b.logger.WithFields(logrus.Fields{
				"subscription": s.id,
				"kind":         ev.Kind,
			}).Warn("Subscriber queue full, dropped oldest event")
		}
		return true
	})
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	return b.subs.Len()
}

// CloseAll closes every subscription.
func (b *Bus) CloseAll() {
	b.subs.Range(func(_ uint64, s *Subscription) bool {
		s.Close()
		return true
	})
}

// Subscription is one consumer's event stream.
type Subscription struct {
	id   uint64
	mask uint32
	bus  *Bus
	ch   *ringchan.Chan[Event]

	mu     sync.Mutex
	closed bool
}

// C returns the event channel. It is closed by Close.
func (s *Subscription) C() <-chan Event {
	return s.ch.C()
}

// Dropped returns how many events were discarded because the consumer fell behind.
func (s *Subscription) Dropped() int64 {
	return s.ch.GetMetrics().Overwritten
}

// Close unsubscribes and closes C. Safe to call more than once.
func (s *Subscription) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.bus.subs.Del(s.id)
	s.ch.Close()
}

func (s *Subscription) wants(k EventKind) bool {
	return s.mask&(1<<k) != 0
}

// deliver enqueues ev and reports whether an older event was dropped.
func (s *Subscription) deliver(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	return s.ch.ForceSend(ev)
}
