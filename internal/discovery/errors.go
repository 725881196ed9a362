package discovery

import (
	"errors"
	"fmt"

	"github.com/srg/bledisco/internal/device"
)

// ScanErrorCode identifies a caller-misuse condition of the scan API.
type ScanErrorCode string

const (
	ScanInProgress   ScanErrorCode = "scan_in_progress"
	NoScanInProgress ScanErrorCode = "no_scan_in_progress"
	Closed           ScanErrorCode = "closed"
)

// ScanError is returned synchronously by StartScan/StopScan. State is left unchanged.
type ScanError struct {
	Code ScanErrorCode
	Msg  string
}

// Error implements the error interface
func (e *ScanError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is allows errors.Is to compare ScanError values by Code
func (e *ScanError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ScanError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

var (
	ErrScanInProgress   = &ScanError{Code: ScanInProgress, Msg: "scan already in progress"}
	ErrNoScanInProgress = &ScanError{Code: NoScanInProgress, Msg: "no scan in progress"}
	ErrClosed           = &ScanError{Code: Closed, Msg: "discovery core is not running"}
)

// ErrAdapterUnavailable matches any AdapterUnavailableError.
var ErrAdapterUnavailable = errors.New("bluetooth adapter unavailable")

// AdapterUnavailableError reports that a scan cannot start in the current adapter state.
type AdapterUnavailableError struct {
	State device.AdapterState
}

// Error implements the error interface
func (e *AdapterUnavailableError) Error() string {
	return fmt.Sprintf("%s (state: %s)", ErrAdapterUnavailable, e.State)
}

// Is matches ErrAdapterUnavailable regardless of state.
func (e *AdapterUnavailableError) Is(target error) bool {
	return target == ErrAdapterUnavailable
}

// Unwrap exposes device.ErrBluetoothOff for a powered-off adapter so callers matching on
// the driver taxonomy see the same condition.
func (e *AdapterUnavailableError) Unwrap() error {
	if e.State == device.StatePoweredOff {
		return device.ErrBluetoothOff
	}
	return nil
}
