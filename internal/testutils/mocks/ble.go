//go:build test

// Package mocks holds testify mocks of the go-ble interfaces the driver consumes.
package mocks

import (
	"context"
	"sync/atomic"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/mock"
)

// MockAddr mocks ble.Addr.
type MockAddr struct {
	mock.Mock
}

func (m *MockAddr) String() string {
	return m.Called().String(0)
}

// MockAdvertisement mocks ble.Advertisement.
type MockAdvertisement struct {
	mock.Mock
}

func (m *MockAdvertisement) LocalName() string {
	return m.Called().String(0)
}

func (m *MockAdvertisement) ManufacturerData() []byte {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]byte)
	}
	return nil
}

func (m *MockAdvertisement) ServiceData() []ble.ServiceData {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]ble.ServiceData)
	}
	return nil
}

func (m *MockAdvertisement) Services() []ble.UUID {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]ble.UUID)
	}
	return nil
}

func (m *MockAdvertisement) OverflowService() []ble.UUID {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]ble.UUID)
	}
	return nil
}

func (m *MockAdvertisement) TxPowerLevel() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Connectable() bool {
	return m.Called().Bool(0)
}

func (m *MockAdvertisement) SolicitedService() []ble.UUID {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]ble.UUID)
	}
	return nil
}

func (m *MockAdvertisement) RSSI() int {
	return m.Called().Int(0)
}

func (m *MockAdvertisement) Addr() ble.Addr {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.(ble.Addr)
	}
	return nil
}

// MockScanner mocks the scanning half of ble.Device. Scan replays the advertisements
// configured with On("Scan") through the handler, then blocks until ctx ends unless the
// expectation returns an error.
type MockScanner struct {
	mock.Mock
	Advertisements []ble.Advertisement

	// Scans counts Scan calls.
	Scans atomic.Int32
}

func (m *MockScanner) Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error {
	m.Scans.Add(1)
	args := m.Called(ctx, allowDup, h)
	if err := args.Error(0); err != nil {
		return err
	}
	for _, a := range m.Advertisements {
		h(a)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (m *MockScanner) Stop() error {
	return m.Called().Error(0)
}

// MockGATTClient mocks the GATT half of ble.Client used for name resolution.
type MockGATTClient struct {
	mock.Mock
	DisconnectedCh chan struct{}
}

// NewMockGATTClient creates a client whose Disconnected channel is open.
func NewMockGATTClient() *MockGATTClient {
	return &MockGATTClient{DisconnectedCh: make(chan struct{})}
}

func (m *MockGATTClient) Name() string {
	return m.Called().String(0)
}

func (m *MockGATTClient) DiscoverServices(filter []ble.UUID) ([]*ble.Service, error) {
	args := m.Called(filter)
	var svcs []*ble.Service
	if v := args.Get(0); v != nil {
		svcs = v.([]*ble.Service)
	}
	return svcs, args.Error(1)
}

func (m *MockGATTClient) DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error) {
	args := m.Called(filter, s)
	var chars []*ble.Characteristic
	if v := args.Get(0); v != nil {
		chars = v.([]*ble.Characteristic)
	}
	return chars, args.Error(1)
}

func (m *MockGATTClient) ReadCharacteristic(c *ble.Characteristic) ([]byte, error) {
	args := m.Called(c)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Error(1)
}

// CancelConnection closes the Disconnected channel on success, as a real client does
// once the link is down.
func (m *MockGATTClient) CancelConnection() error {
	if err := m.Called().Error(0); err != nil {
		return err
	}
	select {
	case <-m.DisconnectedCh:
	default:
		close(m.DisconnectedCh)
	}
	return nil
}

func (m *MockGATTClient) Disconnected() <-chan struct{} {
	return m.DisconnectedCh
}
