//go:build test

//go:generate go run github.com/srgg/testify/depend/cmd/dependgen CentralTestSuite

package goble

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srgg/testify/depend"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/testutils"
	"github.com/srg/bledisco/internal/testutils/mocks"
)

// CentralTestSuite tests the go-ble driver against mocked scanner and GATT client
type CentralTestSuite struct {
	suite.Suite

	logger  *logrus.Logger
	scanner *mocks.MockScanner
	client  *mocks.MockGATTClient
	dial    func(ctx context.Context, addr ble.Addr) (gattClient, error)
	central *Central
	events  chan device.Event
}

func (s *CentralTestSuite) SetupSuite() {
	s.logger = testutils.NewTestHelper(s.T()).Logger
}

func (s *CentralTestSuite) SetupTest() {
	s.scanner = &mocks.MockScanner{}
	s.client = mocks.NewMockGATTClient()
	s.dial = func(context.Context, ble.Addr) (gattClient, error) { return s.client, nil }
	s.events = make(chan device.Event, 64)

	s.central = newCentralWithDevice(s.scanner,
		func(ctx context.Context, addr ble.Addr) (gattClient, error) { return s.dial(ctx, addr) },
		s.logger, nil)
	s.central.SetHandler(func(ev device.Event) { s.events <- ev })
}

func (s *CentralTestSuite) TearDownTest() {
	_ = s.central.StopScanning()
}

// next waits for the next driver event.
func (s *CentralTestSuite) next() device.Event {
	select {
	case ev := <-s.events:
		return ev
	case <-time.After(2 * time.Second):
		s.FailNow("driver event MUST arrive")
		return nil
	}
}

func (s *CentralTestSuite) TestScanReportsAdvertisements() {
	// GOAL: Verify go-ble advertisements are reported as normalized driver events
	//
	// TEST SCENARIO: scanner replays one advertisement → AdvertisementReceived keyed by address → UUIDs normalized

	s.scanner.Advertisements = []ble.Advertisement{
		testutils.NewAdvertisementBuilder().
			WithAddress("AA:BB:CC:DD:EE:01").
			WithName("Widget\x00").
			WithRSSI(-40).
			WithServices("0000180D-0000-1000-8000-00805F9B34FB").
			BuildMock(),
	}
	s.scanner.On("Scan", mock.Anything, true, mock.Anything).Return(nil)

	s.Require().NoError(s.central.StartScanning())

	ev, ok := s.next().(device.AdvertisementReceived)
	s.Require().True(ok, "event MUST be an advertisement")
	s.Equal("AA:BB:CC:DD:EE:01", ev.ID)
	s.Equal("Widget", ev.Advertisement.LocalName(), "name MUST be cleaned")
	s.Equal(-40, ev.Advertisement.RSSI())
	s.Equal([]string{"180d"}, ev.Advertisement.Services(), "UUIDs MUST be normalized")

	s.ErrorIs(s.central.StartScanning(), device.ErrScanning, "second start MUST be refused")
	s.NoError(s.central.StopScanning())
	s.NoError(s.central.StopScanning(), "stopping an idle central MUST succeed")
}

// @dependsOn TestScanReportsAdvertisements
func (s *CentralTestSuite) TestScanRestart() {
	// GOAL: Verify a scan can be restarted right after stopping
	//
	// TEST SCENARIO: start → stop → start → scanner called twice

	s.scanner.On("Scan", mock.Anything, true, mock.Anything).Return(nil)

	s.Require().NoError(s.central.StartScanning())
	s.Require().NoError(s.central.StopScanning())
	s.Require().NoError(s.central.StartScanning())

	s.Eventually(func() bool {
		return s.scanner.Scans.Load() == 2
	}, 2*time.Second, 10*time.Millisecond, "scanner MUST be restarted")
}

func (s *CentralTestSuite) TestScanFailureReportsAdapterState() {
	// GOAL: Verify a powered-off error from the scanner becomes an adapter state change
	//
	// TEST SCENARIO: Scan fails "bluetooth is turned off" → StateChanged(off) → StartScanning refused

	s.scanner.On("Scan", mock.Anything, true, mock.Anything).Return(errors.New("bluetooth is turned off"))

	s.Require().NoError(s.central.StartScanning())

	ev, ok := s.next().(device.StateChanged)
	s.Require().True(ok, "event MUST be a state change")
	s.Equal(device.StatePoweredOff, ev.State)
	s.Equal(device.StatePoweredOff, s.central.State())
	s.ErrorIs(s.central.StartScanning(), device.ErrBluetoothOff)
}

func (s *CentralTestSuite) TestNameResolutionFlow() {
	// GOAL: Verify the connect, discover, read, disconnect chain over go-ble
	//
	// TEST SCENARIO: Connect → Connected → services [1800] → chars [2a00] → read "Gadget" → NameUpdated, ValueRead → cancel → Disconnected

	gap := &ble.Service{UUID: ble.UUID16(0x1800)}
	name := &ble.Characteristic{UUID: ble.UUID16(0x2a00), Property: ble.CharRead}
	s.client.On("Name").Return("")
	s.client.On("DiscoverServices", mock.Anything).Return([]*ble.Service{gap}, nil)
	s.client.On("DiscoverCharacteristics", mock.Anything, gap).Return([]*ble.Characteristic{name}, nil)
	s.client.On("ReadCharacteristic", name).Return([]byte("Gadget\x00"), nil)
	s.client.On("CancelConnection").Return(nil)

	s.Require().NoError(s.central.Connect("A2"))
	s.Equal(device.Connected{ID: "A2"}, s.next())
	s.ErrorIs(s.central.Connect("A2"), device.ErrAlreadyConnected, "second connect MUST be refused")

	s.Require().NoError(s.central.DiscoverServices("A2"))
	s.Equal(device.ServicesDiscovered{ID: "A2", Services: []string{"1800"}}, s.next())

	s.Require().NoError(s.central.DiscoverCharacteristics("A2", "1800"))
	s.Equal(device.CharacteristicsDiscovered{ID: "A2", Service: "1800", Characteristics: []string{"2a00"}}, s.next())

	s.Require().NoError(s.central.ReadValue("A2", "1800", "2a00"))
	s.Equal(device.NameUpdated{ID: "A2", Name: "Gadget"}, s.next(), "GAP name MUST be reported")
	s.Equal(device.ValueRead{ID: "A2", Service: "1800", Characteristic: "2a00"}, s.next())

	s.Require().NoError(s.central.CancelConnection("A2"))
	s.Equal(device.Disconnected{ID: "A2"}, s.next())

	s.ErrorIs(s.central.CancelConnection("A2"), device.ErrNotConnected, "closed link MUST be forgotten")
	s.ErrorIs(s.central.DiscoverServices("A2"), device.ErrNotConnected)
	s.client.AssertExpectations(s.T())
}

func (s *CentralTestSuite) TestGATTRequestsValidated() {
	// GOAL: Verify requests for unknown attributes fail synchronously
	//
	// TEST SCENARIO: connected → chars of undiscovered service refused → read of undiscovered characteristic refused

	s.client.On("Name").Return("")
	s.Require().NoError(s.central.Connect("A2"))
	s.next()

	s.Error(s.central.DiscoverCharacteristics("A2", "1800"))
	s.Error(s.central.ReadValue("A2", "1800", "2a00"))
	s.ErrorIs(s.central.DiscoverServices("B2"), device.ErrNotConnected)
}

func (s *CentralTestSuite) TestCancelWhileDialing() {
	// GOAL: Verify cancelling a connect in progress aborts the dial
	//
	// TEST SCENARIO: dial blocks → CancelConnection → Disconnected carrying the cancellation

	dialing := make(chan struct{})
	s.dial = func(ctx context.Context, _ ble.Addr) (gattClient, error) {
		close(dialing)
		<-ctx.Done()
		return nil, ctx.Err()
	}

	s.Require().NoError(s.central.Connect("A2"))
	<-dialing
	s.Require().NoError(s.central.CancelConnection("A2"))

	ev, ok := s.next().(device.Disconnected)
	s.Require().True(ok, "event MUST be a disconnect")
	s.Equal("A2", ev.ID)
	s.ErrorIs(ev.Err, context.Canceled)
}

func (s *CentralTestSuite) TestPeerDisconnect() {
	// GOAL: Verify a link dropped by the peer is reported once
	//
	// TEST SCENARIO: connected → Disconnected channel closes → Disconnected event → link forgotten

	s.client.On("Name").Return("Cached")
	s.Require().NoError(s.central.Connect("A2"))
	s.Equal(device.Connected{ID: "A2", Name: "Cached"}, s.next())

	close(s.client.DisconnectedCh)
	s.Equal(device.Disconnected{ID: "A2"}, s.next())
	s.ErrorIs(s.central.CancelConnection("A2"), device.ErrNotConnected)
}

func (s *CentralTestSuite) TestAdapterStateChanges() {
	// GOAL: Verify externally observed adapter states are reported once per transition
	//
	// TEST SCENARIO: off → StateChanged(off) → off again → nothing → on → StateChanged(on)

	s.central.SetAdapterState(device.StatePoweredOff)
	s.Equal(device.StateChanged{State: device.StatePoweredOff}, s.next())

	s.central.SetAdapterState(device.StatePoweredOff)
	s.ErrorIs(s.central.Connect("A2"), device.ErrBluetoothOff)

	s.central.SetAdapterState(device.StatePoweredOn)
	s.Equal(device.StateChanged{State: device.StatePoweredOn}, s.next())
	s.Empty(s.events, "repeated state MUST NOT be reported")
}

// TestCentralTestSuite runs the test suite
func TestCentralTestSuite(t *testing.T) {
	depend.RunSuite(t, new(CentralTestSuite))
}

func TestOpenFailureReportsState(t *testing.T) {
	original := DeviceFactory
	t.Cleanup(func() { DeviceFactory = original })
	DeviceFactory = func() (ble.Device, error) {
		return nil, errors.New("can't init hci: no such device")
	}

	c := NewCentral(testutils.NewTestHelper(t).Logger, nil)
	var got []device.Event
	c.SetHandler(func(ev device.Event) { got = append(got, ev) })

	err := c.Open()

	if !errors.Is(err, device.ErrUnsupported) {
		t.Fatalf("Open MUST fail with ErrUnsupported, got %v", err)
	}
	if c.State() != device.StateUnsupported {
		t.Fatalf("state MUST be unsupported, got %s", c.State())
	}
	if len(got) != 1 || got[0] != (device.StateChanged{State: device.StateUnsupported}) {
		t.Fatalf("one StateChanged MUST be emitted, got %v", got)
	}
	if !errors.Is(c.StartScanning(), device.ErrNotInitialized) {
		t.Fatal("scanning MUST be refused without a device")
	}
}
