package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/discovery"
	"github.com/srg/bledisco/internal/script"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{
			name: "adapter off",
			err:  &discovery.AdapterUnavailableError{State: device.StatePoweredOff},
			want: "Bluetooth is turned off. Turn it on and try again.",
		},
		{
			name: "unauthorized",
			err:  fmt.Errorf("start: %w", &discovery.AdapterUnavailableError{State: device.StateUnauthorized}),
			want: "Bluetooth access is not authorized for this program.",
		},
		{
			name: "unsupported",
			err:  &discovery.AdapterUnavailableError{State: device.StateUnsupported},
			want: "No usable Bluetooth LE adapter was found.",
		},
		{
			name: "resetting",
			err:  &discovery.AdapterUnavailableError{State: device.StateResetting},
			want: "Bluetooth adapter is not ready (state: reset).",
		},
		{name: "driver off", err: fmt.Errorf("scan: %w", device.ErrBluetoothOff), want: "Bluetooth is turned off. Turn it on and try again."},
		{name: "scan in progress", err: discovery.ErrScanInProgress, want: "A scan is already running."},
		{name: "closed", err: discovery.ErrClosed, want: "Discovery stopped before the request completed."},
		{
			name: "lua",
			err:  &script.LuaError{Type: "syntax", Message: "unexpected symbol", Line: 3, Source: "f.lua"},
			want: "Lua syntax error (in f.lua, line 3): unexpected symbol",
		},
		{name: "other", err: errors.New("boom"), want: "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserError(tt.err))
		})
	}
}
