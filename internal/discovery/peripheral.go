package discovery

import "encoding/json"

// UnknownDeviceName is rendered for peripherals whose name could not be resolved.
const UnknownDeviceName = "Unknown Device"

// Peripheral is one discovered device as held in the session table.
//
// The name is optional: Name reports whether one was advertised or resolved, and only
// DisplayName substitutes UnknownDeviceName.
type Peripheral struct {
	ID   string
	RSSI int

	name  string
	named bool
	seq   uint64
}

// NewPeripheral builds a record. An empty name means the name is unknown.
func NewPeripheral(id, name string, rssi int) Peripheral {
	return Peripheral{ID: id, RSSI: rssi, name: name, named: name != ""}
}

// Name returns the advertised or resolved name and whether one is known.
func (p Peripheral) Name() (string, bool) {
	return p.name, p.named
}

// DisplayName returns the name, or UnknownDeviceName when none is known.
func (p Peripheral) DisplayName() string {
	if !p.named {
		return UnknownDeviceName
	}
	return p.name
}

type peripheralJSON struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	SignalStrength int    `json:"signalStrength"`
}

// MarshalJSON renders the discovery event payload.
func (p Peripheral) MarshalJSON() ([]byte, error) {
	return json.Marshal(peripheralJSON{ID: p.ID, Name: p.DisplayName(), SignalStrength: p.RSSI})
}

// usableName reports whether s names a device. The sentinel never counts: a driver
// that substitutes it for a missing name must not suppress resolution.
func usableName(s string) bool {
	return s != "" && s != UnknownDeviceName
}
