//go:build test

package testutils

import (
	"fmt"
	"strings"
	"sync"

	"github.com/srg/bledisco/internal/device"
)

// RadioOp names an imperative call made on a FakeRadio.
type RadioOp string

const (
	OpStartScanning           RadioOp = "start_scanning"
	OpStopScanning            RadioOp = "stop_scanning"
	OpConnect                 RadioOp = "connect"
	OpCancelConnection        RadioOp = "cancel_connection"
	OpDiscoverServices        RadioOp = "discover_services"
	OpDiscoverCharacteristics RadioOp = "discover_characteristics"
	OpReadValue               RadioOp = "read_value"
)

// RadioCall is one recorded imperative call.
type RadioCall struct {
	Op             RadioOp
	ID             string
	Service        string
	Characteristic string
}

func (c RadioCall) String() string {
	parts := []string{string(c.Op)}
	for _, s := range []string{c.ID, c.Service, c.Characteristic} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// FakeRadio is a scripted device.Radio. It records every imperative call and never
// answers on its own: tests inject driver callbacks with Emit, which calls the handler on
// the test goroutine just like a driver callback queue would.
type FakeRadio struct {
	mu      sync.Mutex
	state   device.AdapterState
	handler device.Handler
	calls   []RadioCall
	errs    map[RadioOp]error
}

// NewFakeRadio creates a powered-on fake radio.
func NewFakeRadio() *FakeRadio {
	return &FakeRadio{
		state: device.StatePoweredOn,
		errs:  make(map[RadioOp]error),
	}
}

// FailWith makes every later call of op return err. A nil err clears the failure.
func (r *FakeRadio) FailWith(op RadioOp, err error) *FakeRadio {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err == nil {
		delete(r.errs, op)
	} else {
		r.errs[op] = err
	}
	return r
}

// WithState sets the initial adapter state without emitting a callback.
func (r *FakeRadio) WithState(s device.AdapterState) *FakeRadio {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = s
	return r
}

// Emit delivers ev to the installed handler.
func (r *FakeRadio) Emit(ev device.Event) {
	r.mu.Lock()
	h := r.handler
	if sc, ok := ev.(device.StateChanged); ok {
		r.state = sc.State
	}
	r.mu.Unlock()

	if h == nil {
		panic(fmt.Sprintf("FakeRadio: no handler installed for %T", ev))
	}
	h(ev)
}

// Calls returns a snapshot of recorded calls.
func (r *FakeRadio) Calls() []RadioCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RadioCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallsOf returns recorded calls of op.
func (r *FakeRadio) CallsOf(op RadioOp) []RadioCall {
	var out []RadioCall
	for _, c := range r.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times op was called for id ("" matches any id).
func (r *FakeRadio) Count(op RadioOp, id string) int {
	n := 0
	for _, c := range r.CallsOf(op) {
		if id == "" || c.ID == id {
			n++
		}
	}
	return n
}

func (r *FakeRadio) State() device.AdapterState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *FakeRadio) SetHandler(h device.Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handler = h
}

func (r *FakeRadio) StartScanning() error {
	return r.record(RadioCall{Op: OpStartScanning})
}

func (r *FakeRadio) StopScanning() error {
	return r.record(RadioCall{Op: OpStopScanning})
}

func (r *FakeRadio) Connect(id string) error {
	return r.record(RadioCall{Op: OpConnect, ID: id})
}

func (r *FakeRadio) CancelConnection(id string) error {
	return r.record(RadioCall{Op: OpCancelConnection, ID: id})
}

func (r *FakeRadio) DiscoverServices(id string) error {
	return r.record(RadioCall{Op: OpDiscoverServices, ID: id})
}

func (r *FakeRadio) DiscoverCharacteristics(id, service string) error {
	return r.record(RadioCall{Op: OpDiscoverCharacteristics, ID: id, Service: service})
}

func (r *FakeRadio) ReadValue(id, service, characteristic string) error {
	return r.record(RadioCall{Op: OpReadValue, ID: id, Service: service, Characteristic: characteristic})
}

func (r *FakeRadio) record(c RadioCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, c)
	return r.errs[c.Op]
}

var _ device.Radio = (*FakeRadio)(nil)
