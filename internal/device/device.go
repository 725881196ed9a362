package device

import (
	"errors"
	"fmt"
	"strings"
)

// AdapterState is the power/availability state of the local radio.
type AdapterState int

const (
	StateUnknown AdapterState = iota
	StateUnsupported
	StateUnauthorized
	StatePoweredOff
	StatePoweredOn
	StateResetting
)

// String returns the short state name used in logs and CLI output.
func (s AdapterState) String() string {
	switch s {
	case StateUnsupported:
		return "unsupported"
	case StateUnauthorized:
		return "unauthorized"
	case StatePoweredOff:
		return "off"
	case StatePoweredOn:
		return "on"
	case StateResetting:
		return "reset"
	default:
		return "unknown"
	}
}

// Available reports whether the radio can scan and connect.
func (s AdapterState) Available() bool {
	return s == StatePoweredOn
}

// ConnectionState represents the specific kind of connection state failure
type ConnectionState string

const (
	NotConnected     ConnectionState = "not_connected"
	AlreadyConnected ConnectionState = "already_connected"
	NotInitialized   ConnectionState = "not_initialized"
)

// ConnectionError represents any connection-related problem
type ConnectionError struct {
	State ConnectionState
	Msg   string
}

// Error implements the error interface
func (e *ConnectionError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.State)
	}
	return fmt.Sprintf("%s: %s", e.State, e.Msg)
}

// Is allows errors.Is to compare ConnectionError values by State
func (e *ConnectionError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ConnectionError)
	if !ok {
		return false
	}
	return e.State == t.State
}

// Predefined sentinel errors for connection states
var (
	ErrNotConnected     = &ConnectionError{State: NotConnected}
	ErrAlreadyConnected = &ConnectionError{State: AlreadyConnected}
	ErrNotInitialized   = &ConnectionError{State: NotInitialized}
)

// Operation errors
var (
	ErrTimeout      = errors.New("timeout")
	ErrUnsupported  = errors.New("unsupported")
	ErrBluetoothOff = errors.New("bluetooth is turned off")
	ErrScanning     = errors.New("radio is already scanning")
)

// IsConnectionState reports whether err is a ConnectionError with the given state
func IsConnectionState(err error, state ConnectionState) bool {
	var cerr *ConnectionError
	if errors.As(err, &cerr) {
		return cerr.State == state
	}
	return false
}

// StateForError maps a driver error to the adapter state it implies.
func StateForError(err error) AdapterState {
	switch {
	case err == nil:
		return StatePoweredOn
	case errors.Is(err, ErrBluetoothOff):
		return StatePoweredOff
	case errors.Is(err, ErrUnsupported):
		return StateUnsupported
	case containsIgnoreCase(err.Error(), "not authorized"), containsIgnoreCase(err.Error(), "permission denied"):
		return StateUnauthorized
	default:
		return StateUnknown
	}
}

// containsIgnoreCase checks substring case-insensitively
func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Advertisement is a single advertising report as seen by the central.
type Advertisement interface {
	LocalName() string
	ManufacturerData() []byte
	ServiceData() []struct {
		UUID string
		Data []byte
	}

	Services() []string
	TxPowerLevel() int
	Connectable() bool

	RSSI() int
	Addr() string
}

// Radio is the platform driver the discovery core runs on.
//
// Imperative calls must return without waiting for the radio and must never invoke the
// handler on the calling goroutine; completions are delivered later as Events.
type Radio interface {
	State() AdapterState
	SetHandler(h Handler)

	StartScanning() error
	StopScanning() error

	Connect(id string) error
	CancelConnection(id string) error
	DiscoverServices(id string) error
	DiscoverCharacteristics(id, service string) error
	ReadValue(id, service, characteristic string) error
}

// Handler receives driver callbacks.
type Handler func(Event)
