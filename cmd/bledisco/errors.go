package main

import (
	"errors"
	"fmt"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/discovery"
	"github.com/srg/bledisco/internal/script"
)

// FormatUserError turns an error into a one-line message for the terminal.
func FormatUserError(err error) string {
	var unavailable *discovery.AdapterUnavailableError
	var luaErr *script.LuaError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &unavailable):
		switch unavailable.State {
		case device.StatePoweredOff:
			return "Bluetooth is turned off. Turn it on and try again."
		case device.StateUnauthorized:
			return "Bluetooth access is not authorized for this program."
		case device.StateUnsupported:
			return "No usable Bluetooth LE adapter was found."
		default:
			return fmt.Sprintf("Bluetooth adapter is not ready (state: %s).", unavailable.State)
		}
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is turned off. Turn it on and try again."
	case errors.Is(err, device.ErrUnsupported):
		return "No usable Bluetooth LE adapter was found."
	case errors.Is(err, discovery.ErrScanInProgress):
		return "A scan is already running."
	case errors.Is(err, discovery.ErrClosed):
		return "Discovery stopped before the request completed."
	case errors.As(err, &luaErr):
		return luaErr.Error()
	default:
		return err.Error()
	}
}
