//go:build test

package testutils

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/discovery"
)

// CoreSuite runs a discovery.Core over a FakeRadio for each test.
//
// Basic usage:
//
//	type ScanSuite struct {
//	    testutils.CoreSuite
//	}
//
//	func (s *ScanSuite) TestWidget() {
//	    s.StartScan(nil)
//	    s.Advertise(testutils.CreateAdvertisement("Widget", "A1", -40))
//	    s.Require().Len(s.Events.Discovered(), 1)
//	}
//
// Custom options or radio state are configured before calling the parent SetupTest:
//
//	func (s *ScanSuite) SetupTest() {
//	    s.Options = &discovery.Options{ResolveNames: false}
//	    s.Radio = testutils.NewFakeRadio().WithState(device.StatePoweredOff)
//	    s.CoreSuite.SetupTest()
//	}
type CoreSuite struct {
	suite.Suite

	Helper      *TestHelper
	Logger      *logrus.Logger
	TestTimeout time.Duration

	// Configuration consumed by SetupTest; reset after each test.
	Options *discovery.Options
	Radio   *FakeRadio

	Core   *discovery.Core
	Events *EventRecorder

	cancel context.CancelFunc
}

// SetupSuite initializes the helper and logger once for all tests.
func (s *CoreSuite) SetupSuite() {
	s.Helper = NewTestHelper(s.T())
	s.Logger = s.Helper.Logger
	s.TestTimeout = 2 * time.Second
}

// SetupTest starts a fresh core and subscribes to every event kind.
func (s *CoreSuite) SetupTest() {
	if s.Radio == nil {
		s.Radio = NewFakeRadio()
	}
	if s.Options == nil {
		s.Options = discovery.DefaultOptions()
	}

	s.Core = discovery.New(s.Radio, s.Logger, s.Options)
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.Core.Start(ctx)

	s.Events = NewEventRecorder(s.Core.Subscribe(
		discovery.ScanStarted,
		discovery.ScanStopped,
		discovery.PeripheralDiscovered,
		discovery.AdapterStateChanged,
	))
}

// TearDownTest stops the core and waits for it to exit.
func (s *CoreSuite) TearDownTest() {
	if s.cancel != nil {
		s.cancel()
		select {
		case <-s.Core.Done():
		case <-time.After(s.TestTimeout):
			s.Fail("discovery core MUST shut down")
		}
	}
	s.Radio = nil
	s.Options = nil
	s.cancel = nil
}

// Ctx returns a context bounded by TestTimeout.
func (s *CoreSuite) Ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), s.TestTimeout)
	s.T().Cleanup(cancel)
	return ctx
}

// Shutdown cancels the core and waits for it to exit.
func (s *CoreSuite) Shutdown() {
	s.cancel()
	select {
	case <-s.Core.Done():
	case <-time.After(s.TestTimeout):
		s.FailNow("discovery core MUST shut down")
	}
}

// StartScan starts a session and requires success.
func (s *CoreSuite) StartScan(opts *discovery.ScanOptions) {
	s.Require().NoError(s.Core.StartScan(s.Ctx(), opts), "startScan MUST succeed")
}

// StopScan stops the session and requires success.
func (s *CoreSuite) StopScan() {
	s.Require().NoError(s.Core.StopScan(s.Ctx()), "stopScan MUST succeed")
}

// Emit delivers driver callbacks and waits until the core has processed them.
func (s *CoreSuite) Emit(events ...device.Event) {
	for _, ev := range events {
		s.Radio.Emit(ev)
	}
	s.Sync()
}

// Advertise emits the advertisements built by builders.
func (s *CoreSuite) Advertise(builders ...*AdvertisementBuilder) {
	for _, b := range builders {
		s.Radio.Emit(b.Received())
	}
	s.Sync()
}

// Sync waits until every previously emitted callback has been processed.
func (s *CoreSuite) Sync() {
	_, err := s.Core.Peripherals(s.Ctx())
	s.Require().NoError(err, "core MUST answer")
}

// Peripherals returns the ranked table.
func (s *CoreSuite) Peripherals() []discovery.Peripheral {
	list, err := s.Core.Peripherals(s.Ctx())
	s.Require().NoError(err, "core MUST answer")
	return list
}

// Resolve drives a full connect/discover/read/disconnect exchange for id where the GAP
// name read surfaces name. An empty name leaves the peripheral unnamed.
func (s *CoreSuite) Resolve(id, name string) {
	s.Emit(device.Connected{ID: id})
	s.Emit(device.ServicesDiscovered{ID: id, Services: []string{device.GAPServiceUUID}})
	s.Emit(device.CharacteristicsDiscovered{ID: id, Service: device.GAPServiceUUID,
		Characteristics: []string{device.DeviceNameCharUUID}})
	if name != "" {
		s.Emit(device.NameUpdated{ID: id, Name: name})
	}
	s.Emit(device.ValueRead{ID: id, Service: device.GAPServiceUUID, Characteristic: device.DeviceNameCharUUID})
	s.Emit(device.Disconnected{ID: id})
}
