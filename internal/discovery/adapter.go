package discovery

import (
	"sync/atomic"

	"github.com/srg/bledisco/internal/device"
)

// adapterMonitor tracks the radio state reported by the driver. Observers run on the
// core's sequence, in registration order.
type adapterMonitor struct {
	state     atomic.Int32
	observers []func(old, current device.AdapterState)
}

func newAdapterMonitor(initial device.AdapterState) *adapterMonitor {
	m := &adapterMonitor{}
	m.state.Store(int32(initial))
	return m
}

// State may be read from any goroutine.
func (m *adapterMonitor) State() device.AdapterState {
	return device.AdapterState(m.state.Load())
}

func (m *adapterMonitor) observe(fn func(old, current device.AdapterState)) {
	m.observers = append(m.observers, fn)
}

// set records a transition and notifies observers. Repeated states are not transitions.
func (m *adapterMonitor) set(s device.AdapterState) bool {
	old := device.AdapterState(m.state.Swap(int32(s)))
	if old == s {
		return false
	}
	for _, fn := range m.observers {
		fn(old, s)
	}
	return true
}
