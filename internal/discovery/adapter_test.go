//go:build test

//go:generate go run github.com/srgg/testify/depend/cmd/dependgen AdapterTestSuite

package discovery_test

import (
	"testing"

	"github.com/srgg/testify/depend"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/discovery"
	"github.com/srg/bledisco/internal/testutils"
)

// AdapterTestSuite tests how adapter state gates and interrupts sessions
type AdapterTestSuite struct {
	testutils.CoreSuite
}

func (s *AdapterTestSuite) SetupTest() {
	s.Radio = testutils.NewFakeRadio().WithState(device.StatePoweredOff)
	s.CoreSuite.SetupTest()
}

func (s *AdapterTestSuite) TestStartRequiresPoweredOn() {
	// GOAL: Verify startScan fails while the adapter is not powered on
	//
	// TEST SCENARIO: adapter off → startScan → AdapterUnavailable wrapping ErrBluetoothOff → radio untouched

	err := s.Core.StartScan(s.Ctx(), nil)

	s.ErrorIs(err, discovery.ErrAdapterUnavailable, "error MUST be AdapterUnavailable")
	s.ErrorIs(err, device.ErrBluetoothOff, "powered-off MUST unwrap to ErrBluetoothOff")
	var unavailable *discovery.AdapterUnavailableError
	s.Require().ErrorAs(err, &unavailable)
	s.Equal(device.StatePoweredOff, unavailable.State)
	s.Empty(s.Radio.Calls(), "radio MUST NOT be called")
}

func (s *AdapterTestSuite) TestPowerOnEnablesScan() {
	// GOAL: Verify the monitor follows adapter callbacks and notifies observers
	//
	// TEST SCENARIO: StateChanged(on) → AdapterStateChanged event → startScan succeeds

	s.Emit(device.StateChanged{State: device.StatePoweredOn})

	s.Equal(device.StatePoweredOn, s.Core.AdapterState())
	changes := s.Events.Of(discovery.AdapterStateChanged)
	s.Require().Len(changes, 1)
	s.Equal(device.StatePoweredOn, changes[0].State)

	s.StartScan(nil)
}

func (s *AdapterTestSuite) TestRepeatedStateIsNotATransition() {
	// GOAL: Verify identical state reports do not notify observers
	//
	// TEST SCENARIO: StateChanged(off) while off → no event

	s.Emit(device.StateChanged{State: device.StatePoweredOff})

	s.Empty(s.Events.Of(discovery.AdapterStateChanged))
}

// @dependsOn TestPowerOnEnablesScan
func (s *AdapterTestSuite) TestPowerOffForcesStop() {
	// GOAL: Verify losing the adapter ends the active session
	//
	// TEST SCENARIO: on → startScan → StateChanged(off) → ScanStopped("adapter off") → stopScan fails NoScanInProgress

	s.Emit(device.StateChanged{State: device.StatePoweredOn})
	s.StartScan(nil)

	s.Emit(device.StateChanged{State: device.StatePoweredOff})

	stopped := s.Events.Of(discovery.ScanStopped)
	s.Require().Len(stopped, 1, "session MUST be stopped by the adapter")
	s.Equal("adapter off", stopped[0].Reason)
	s.False(s.Core.Scanning())
	s.ErrorIs(s.Core.StopScan(s.Ctx()), discovery.ErrNoScanInProgress)

	err := s.Core.StartScan(s.Ctx(), nil)
	s.ErrorIs(err, discovery.ErrAdapterUnavailable, "restart MUST wait for power")
}

// @dependsOn TestPowerOffForcesStop
func (s *AdapterTestSuite) TestPowerOffCompletesPendingResolutions() {
	// GOAL: Verify pending name resolutions end when the adapter goes away
	//
	// TEST SCENARIO: unnamed A2 pending → adapter reset → connection cancelled → A2 reported as Unknown Device once

	s.Emit(device.StateChanged{State: device.StatePoweredOn})
	s.StartScan(nil)
	s.Advertise(testutils.CreateUnnamedAdvertisement("A2", -60))
	s.Empty(s.Events.Discovered(), "pending peripheral MUST NOT be reported yet")

	s.Emit(device.StateChanged{State: device.StateResetting})

	found := s.Events.Discovered()
	s.Require().Len(found, 1, "pending resolution MUST complete exactly once")
	s.Equal(discovery.UnknownDeviceName, found[0].DisplayName())
	s.Equal(1, s.Radio.Count(testutils.OpCancelConnection, "A2"), "aborted resolution MUST cancel its connection")

	s.Emit(device.Disconnected{ID: "A2"})
	s.Len(s.Events.Discovered(), 1, "late disconnect MUST NOT re-emit")
}

// TestAdapterTestSuite runs the test suite
func TestAdapterTestSuite(t *testing.T) {
	depend.RunSuite(t, new(AdapterTestSuite))
}
