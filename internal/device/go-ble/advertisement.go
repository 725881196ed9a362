package goble

import (
	"github.com/go-ble/ble"

	"github.com/srg/bledisco/internal/device"
)

// txPowerUnavailable is what go-ble reports when the advertisement carries no TX power.
const txPowerUnavailable = 127

// BLEAdvertisement wraps ble.Advertisement to implement device.Advertisement interface.
// Service UUIDs are returned in normalized form.
type BLEAdvertisement struct {
	adv ble.Advertisement
}

// NewBLEAdvertisement creates a new BLEAdvertisement wrapper
func NewBLEAdvertisement(adv ble.Advertisement) device.Advertisement {
	return &BLEAdvertisement{adv: adv}
}

func (a *BLEAdvertisement) LocalName() string        { return device.CleanName([]byte(a.adv.LocalName())) }
func (a *BLEAdvertisement) ManufacturerData() []byte { return a.adv.ManufacturerData() }
func (a *BLEAdvertisement) Connectable() bool        { return a.adv.Connectable() }
func (a *BLEAdvertisement) RSSI() int                { return a.adv.RSSI() }

func (a *BLEAdvertisement) Addr() string {
	if a.adv.Addr() == nil {
		return ""
	}
	return a.adv.Addr().String()
}

// TxPowerLevel returns the advertised TX power, or 127 when absent.
func (a *BLEAdvertisement) TxPowerLevel() int {
	return a.adv.TxPowerLevel()
}

// HasTxPower reports whether the advertisement carried a TX power level.
func (a *BLEAdvertisement) HasTxPower() bool {
	return a.adv.TxPowerLevel() != txPowerUnavailable
}

func (a *BLEAdvertisement) ServiceData() []struct {
	UUID string
	Data []byte
} {
	bleServiceData := a.adv.ServiceData()
	result := make([]struct {
		UUID string
		Data []byte
	}, len(bleServiceData))
	for i, sd := range bleServiceData {
		result[i].UUID = device.NormalizeUUID(sd.UUID.String())
		result[i].Data = sd.Data
	}
	return result
}

// Services returns advertised, overflow and solicited service UUIDs, deduplicated.
func (a *BLEAdvertisement) Services() []string {
	seen := make(map[string]struct{})
	var result []string
	for _, group := range [][]ble.UUID{a.adv.Services(), a.adv.OverflowService(), a.adv.SolicitedService()} {
		for _, svc := range group {
			u := device.NormalizeUUID(svc.String())
			if _, dup := seen[u]; dup || u == "" {
				continue
			}
			seen[u] = struct{}{}
			result = append(result, u)
		}
	}
	return result
}

// Unwrap returns the underlying ble.Advertisement for internal use within go-ble package
func (a *BLEAdvertisement) Unwrap() ble.Advertisement {
	return a.adv
}
