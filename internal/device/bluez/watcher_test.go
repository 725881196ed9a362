package bluez

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"

	"github.com/srg/bledisco/internal/device"
)

func propsChanged(path dbus.ObjectPath, iface string, changed map[string]dbus.Variant) *dbus.Signal {
	return &dbus.Signal{
		Name: propsSignal,
		Path: path,
		Body: []interface{}{iface, changed, []string{}},
	}
}

func TestStateFromSignal(t *testing.T) {
	hci0 := AdapterPath("")

	tests := []struct {
		name    string
		sig     *dbus.Signal
		want    device.AdapterState
		changed bool
	}{
		{
			name:    "powered off",
			sig:     propsChanged(hci0, adapterIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant(false)}),
			want:    device.StatePoweredOff,
			changed: true,
		},
		{
			name:    "powered on",
			sig:     propsChanged(hci0, adapterIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant(true)}),
			want:    device.StatePoweredOn,
			changed: true,
		},
		{
			name: "power state transition wins over powered",
			sig: propsChanged(hci0, adapterIface, map[string]dbus.Variant{
				"Powered":    dbus.MakeVariant(true),
				"PowerState": dbus.MakeVariant("on-disabling"),
			}),
			want:    device.StateResetting,
			changed: true,
		},
		{
			name:    "rfkill blocked",
			sig:     propsChanged(hci0, adapterIface, map[string]dbus.Variant{"PowerState": dbus.MakeVariant("off-blocked")}),
			want:    device.StatePoweredOff,
			changed: true,
		},
		{
			name: "other adapter property",
			sig:  propsChanged(hci0, adapterIface, map[string]dbus.Variant{"Discovering": dbus.MakeVariant(true)}),
		},
		{
			name: "device interface",
			sig:  propsChanged(hci0+"/dev_AA_BB", "org.bluez.Device1", map[string]dbus.Variant{"Powered": dbus.MakeVariant(false)}),
		},
		{
			name: "other adapter",
			sig:  propsChanged(AdapterPath("hci1"), adapterIface, map[string]dbus.Variant{"Powered": dbus.MakeVariant(false)}),
		},
		{
			name: "malformed body",
			sig:  &dbus.Signal{Name: propsSignal, Path: hci0, Body: []interface{}{adapterIface}},
		},
		{
			name: "nil signal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := stateFromSignal(tt.sig, hci0)
			assert.Equal(t, tt.changed, changed, "signal relevance MUST match")
			if tt.changed {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestAdapterPath(t *testing.T) {
	assert.Equal(t, dbus.ObjectPath("/org/bluez/hci0"), AdapterPath(""))
	assert.Equal(t, dbus.ObjectPath("/org/bluez/hci1"), AdapterPath("hci1"))
}
