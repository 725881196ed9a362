//go:build test

package testutils

import (
	"encoding/json"
	"fmt"

	"github.com/go-ble/ble"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/testutils/mocks"
)

// Advertisement is a plain device.Advertisement for feeding the discovery core.
type Advertisement struct {
	Name          string
	Address       string
	Rssi          int
	ServiceList   []string
	ManufData     []byte
	SvcData       map[string][]byte
	TxPower       int
	IsConnectable bool
}

func (a *Advertisement) LocalName() string        { return a.Name }
func (a *Advertisement) ManufacturerData() []byte { return a.ManufData }
func (a *Advertisement) Services() []string       { return a.ServiceList }
func (a *Advertisement) TxPowerLevel() int        { return a.TxPower }
func (a *Advertisement) Connectable() bool        { return a.IsConnectable }
func (a *Advertisement) RSSI() int                { return a.Rssi }
func (a *Advertisement) Addr() string             { return a.Address }

func (a *Advertisement) ServiceData() []struct {
	UUID string
	Data []byte
} {
	out := make([]struct {
		UUID string
		Data []byte
	}, 0, len(a.SvcData))
	for uuid, data := range a.SvcData {
		out = append(out, struct {
			UUID string
			Data []byte
		}{UUID: uuid, Data: data})
	}
	return out
}

var _ device.Advertisement = (*Advertisement)(nil)

// AdvertisementBuilder builds advertisements for tests. Build returns a plain
// device.Advertisement; BuildMock returns a go-ble mock with expectations only for the
// fields that were explicitly set.
type AdvertisementBuilder struct {
	adv Advertisement

	nameSet        bool
	addressSet     bool
	rssiSet        bool
	servicesSet    bool
	manufDataSet   bool
	serviceDataSet bool
	txPowerSet     bool
	connectableSet bool
}

// NewAdvertisementBuilder creates a builder for a connectable advertisement without TX power.
func NewAdvertisementBuilder() *AdvertisementBuilder {
	return &AdvertisementBuilder{adv: Advertisement{
		SvcData:       make(map[string][]byte),
		TxPower:       127,
		IsConnectable: true,
	}}
}

// WithName sets the local name for the advertisement.
func (b *AdvertisementBuilder) WithName(name string) *AdvertisementBuilder {
	b.adv.Name, b.nameSet = name, true
	return b
}

// WithAddress sets the device address for the advertisement.
func (b *AdvertisementBuilder) WithAddress(addr string) *AdvertisementBuilder {
	b.adv.Address, b.addressSet = addr, true
	return b
}

// WithRSSI sets the signal strength for the advertisement.
func (b *AdvertisementBuilder) WithRSSI(rssi int) *AdvertisementBuilder {
	b.adv.Rssi, b.rssiSet = rssi, true
	return b
}

// WithServices adds service UUIDs to the advertisement.
func (b *AdvertisementBuilder) WithServices(uuids ...string) *AdvertisementBuilder {
	b.adv.ServiceList = append(b.adv.ServiceList, uuids...)
	b.servicesSet = true
	return b
}

// WithManufacturerData sets the manufacturer-specific data.
func (b *AdvertisementBuilder) WithManufacturerData(data []byte) *AdvertisementBuilder {
	b.adv.ManufData, b.manufDataSet = data, true
	return b
}

// WithServiceData adds service-specific data for the given service UUID.
func (b *AdvertisementBuilder) WithServiceData(uuid string, data []byte) *AdvertisementBuilder {
	b.adv.SvcData[uuid] = data
	b.serviceDataSet = true
	return b
}

// WithTxPower sets the transmission power level.
func (b *AdvertisementBuilder) WithTxPower(power int) *AdvertisementBuilder {
	b.adv.TxPower, b.txPowerSet = power, true
	return b
}

// WithConnectable sets whether the device accepts connections.
func (b *AdvertisementBuilder) WithConnectable(c bool) *AdvertisementBuilder {
	b.adv.IsConnectable, b.connectableSet = c, true
	return b
}

// FromJSON fills builder fields from a JSON string with format support.
// Panics on invalid JSON as this is intended for test data setup.
func (b *AdvertisementBuilder) FromJSON(jsonStrFmt string, args ...interface{}) *AdvertisementBuilder {
	var data struct {
		Name        *string           `json:"name"`
		Address     *string           `json:"address"`
		RSSI        *int              `json:"rssi"`
		Services    []string          `json:"services"`
		ManufData   []byte            `json:"manufacturerData"`
		ServiceData map[string][]byte `json:"serviceData"`
		TxPower     *int              `json:"txPower"`
		Connectable *bool             `json:"connectable"`
	}
	if err := json.Unmarshal([]byte(fmt.Sprintf(jsonStrFmt, args...)), &data); err != nil {
		panic(fmt.Sprintf("FromJSON: %v", err))
	}

	if data.Name != nil {
		b.WithName(*data.Name)
	}
	if data.Address != nil {
		b.WithAddress(*data.Address)
	}
	if data.RSSI != nil {
		b.WithRSSI(*data.RSSI)
	}
	if data.Services != nil {
		b.WithServices(data.Services...)
	}
	if data.ManufData != nil {
		b.WithManufacturerData(data.ManufData)
	}
	for uuid, d := range data.ServiceData {
		b.WithServiceData(uuid, d)
	}
	if data.TxPower != nil {
		b.WithTxPower(*data.TxPower)
	}
	if data.Connectable != nil {
		b.WithConnectable(*data.Connectable)
	}
	return b
}

// Build returns the advertisement as seen by the discovery core.
func (b *AdvertisementBuilder) Build() *Advertisement {
	adv := b.adv
	return &adv
}

// Received wraps the advertisement into the driver callback, keyed by its address.
func (b *AdvertisementBuilder) Received() device.AdvertisementReceived {
	adv := b.Build()
	return device.AdvertisementReceived{ID: adv.Address, Advertisement: adv}
}

// BuildMock creates a MockAdvertisement that implements ble.Advertisement.
// Only explicitly configured fields get expectations; overflow and solicited services
// are always empty.
func (b *AdvertisementBuilder) BuildMock() *mocks.MockAdvertisement {
	adv := &mocks.MockAdvertisement{}

	if b.addressSet {
		addr := &mocks.MockAddr{}
		addr.On("String").Return(b.adv.Address)
		adv.On("Addr").Return(addr)
	}
	if b.nameSet {
		adv.On("LocalName").Return(b.adv.Name)
	}
	if b.rssiSet {
		adv.On("RSSI").Return(b.adv.Rssi)
	}
	if b.manufDataSet {
		adv.On("ManufacturerData").Return(b.adv.ManufData)
	}
	if b.serviceDataSet {
		var sd []ble.ServiceData
		for uuid, data := range b.adv.SvcData {
			sd = append(sd, ble.ServiceData{UUID: ble.MustParse(uuid), Data: data})
		}
		adv.On("ServiceData").Return(sd)
	}
	if b.servicesSet {
		var uuids []ble.UUID
		for _, s := range b.adv.ServiceList {
			uuids = append(uuids, ble.MustParse(s))
		}
		adv.On("Services").Return(uuids)
		adv.On("OverflowService").Return([]ble.UUID(nil))
		adv.On("SolicitedService").Return([]ble.UUID(nil))
	}
	if b.connectableSet {
		adv.On("Connectable").Return(b.adv.IsConnectable)
	}
	if b.txPowerSet {
		adv.On("TxPowerLevel").Return(b.adv.TxPower)
	}
	return adv
}
