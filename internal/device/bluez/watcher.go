// Package bluez follows the power state of a BlueZ adapter over the system D-Bus.
//
// go-ble's Linux driver talks HCI directly and never learns that the adapter was powered
// off through bluetoothctl or rfkill. The Watcher fills that gap by forwarding Adapter1
// power changes to a StateSink, usually the go-ble Central.
package bluez

import (
	"context"
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/groutine"
)

const (
	busName      = "org.bluez"
	adapterIface = "org.bluez.Adapter1"
	propsIface   = "org.freedesktop.DBus.Properties"
	propsSignal  = "org.freedesktop.DBus.Properties.PropertiesChanged"

	// DefaultAdapter is the adapter watched when none is configured.
	DefaultAdapter = "hci0"
)

// StateSink receives adapter states.
type StateSink interface {
	SetAdapterState(s device.AdapterState)
}

// Watcher forwards power changes of one adapter to a StateSink.
type Watcher struct {
	path   dbus.ObjectPath
	sink   StateSink
	logger *logrus.Logger

	conn *dbus.Conn
	ch   chan *dbus.Signal
}

// AdapterPath returns the object path of adapter ("hci0" → "/org/bluez/hci0").
func AdapterPath(adapter string) dbus.ObjectPath {
	if adapter == "" {
		adapter = DefaultAdapter
	}
	return dbus.ObjectPath("/org/bluez/" + adapter)
}

// NewWatcher creates a watcher for adapter.
func NewWatcher(adapter string, sink StateSink, logger *logrus.Logger) *Watcher {
	if logger == nil {
		logger = logrus.New()
	}
	return &Watcher{path: AdapterPath(adapter), sink: sink, logger: logger}
}

// Start connects to the system bus, reports the current power state and keeps reporting
// changes until ctx ends. It fails when the bus or BlueZ is not reachable.
func (w *Watcher) Start(ctx context.Context) error {
	conn, err := dbus.SystemBus()
	if err != nil {
		return fmt.Errorf("connect to system bus: %w", err)
	}

	var powered dbus.Variant
	err = conn.Object(busName, w.path).Call(propsIface+".Get", 0, adapterIface, "Powered").Store(&powered)
	if err != nil {
		return fmt.Errorf("read %s power state: %w", w.path, err)
	}
	if on, ok := powered.Value().(bool); ok {
		w.sink.SetAdapterState(stateFromPowered(on))
	}

	call := conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0,
		"type='signal',interface='"+propsIface+"',member='PropertiesChanged',path='"+string(w.path)+"'")
	if call.Err != nil {
		return fmt.Errorf("subscribe to %s: %w", w.path, call.Err)
	}

	w.conn = conn
	w.ch = make(chan *dbus.Signal, 16)
	conn.Signal(w.ch)

	w.logger.WithField("adapter", w.path).Debug("Watching BlueZ adapter power")
	groutine.Go(ctx, "bluez-watch", w.run)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	defer w.conn.RemoveSignal(w.ch)

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-w.ch:
			if !ok {
				return
			}
			if st, changed := stateFromSignal(sig, w.path); changed {
				w.logger.WithFields(logrus.Fields{
					"adapter": w.path,
					"state":   st,
				}).Debug("BlueZ adapter power changed")
				w.sink.SetAdapterState(st)
			}
		}
	}
}

// stateFromSignal extracts the adapter state from a PropertiesChanged signal of path.
// The second result is false when the signal does not concern the adapter's power.
func stateFromSignal(sig *dbus.Signal, path dbus.ObjectPath) (device.AdapterState, bool) {
	if sig == nil || sig.Name != propsSignal || sig.Path != path {
		return device.StateUnknown, false
	}
	// Body: [interface_name string, changed_props map[string]Variant, invalidated []string]
	if len(sig.Body) < 2 {
		return device.StateUnknown, false
	}
	if iface, ok := sig.Body[0].(string); !ok || iface != adapterIface {
		return device.StateUnknown, false
	}
	changed, ok := sig.Body[1].(map[string]dbus.Variant)
	if !ok {
		return device.StateUnknown, false
	}

	// PowerState (BlueZ 5.66+) carries transitions; Powered only the end state.
	if v, ok := changed["PowerState"]; ok {
		if s, ok := v.Value().(string); ok {
			return stateFromPowerState(s), true
		}
	}
	if v, ok := changed["Powered"]; ok {
		if on, ok := v.Value().(bool); ok {
			return stateFromPowered(on), true
		}
	}
	return device.StateUnknown, false
}

func stateFromPowered(on bool) device.AdapterState {
	if on {
		return device.StatePoweredOn
	}
	return device.StatePoweredOff
}

func stateFromPowerState(s string) device.AdapterState {
	switch strings.ToLower(s) {
	case "on":
		return device.StatePoweredOn
	case "off", "off-blocked":
		return device.StatePoweredOff
	case "off-enabling", "on-disabling":
		return device.StateResetting
	default:
		return device.StateUnknown
	}
}
