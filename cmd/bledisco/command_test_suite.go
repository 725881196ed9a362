//go:build test

package main

import (
	"bytes"
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/testutils"
	"github.com/srg/bledisco/pkg/config"
)

// Test device addresses for consistent fake peripheral identification
const (
	TestDeviceAddress1 = "AA:BB:CC:DD:EE:01"
	TestDeviceAddress2 = "AA:BB:CC:DD:EE:02"
	TestDeviceAddress3 = "AA:BB:CC:DD:EE:03"
)

// CommandTestSuite runs commands against a FakeRadio installed as the radio factory.
// All cmd/bledisco test suites should embed it.
type CommandTestSuite struct {
	suite.Suite
	Radio *testutils.FakeRadio

	originalFactory func(context.Context, *config.Config, *logrus.Logger) (device.Radio, func(), error)
}

func (s *CommandTestSuite) SetupSuite() {
	s.originalFactory = radioFactory
}

func (s *CommandTestSuite) TearDownSuite() {
	radioFactory = s.originalFactory
}

func (s *CommandTestSuite) SetupTest() {
	s.Radio = testutils.NewFakeRadio()
	radioFactory = func(context.Context, *config.Config, *logrus.Logger) (device.Radio, func(), error) {
		return s.Radio, func() {}, nil
	}

	// Flag values and their Changed marks survive Execute; start every test clean
	scanCmd.ResetFlags()
	registerScanFlags()
}

// ExecuteCommand runs the root command with args, returns combined output and error.
func (s *CommandTestSuite) ExecuteCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

// AdvertiseWhenScanning waits for the command to start scanning and then delivers the
// advertisements. The returned channel closes once they are delivered.
func (s *CommandTestSuite) AdvertiseWhenScanning(builders ...*testutils.AdvertisementBuilder) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if !s.WaitForCall(testutils.OpStartScanning) {
			return
		}
		for _, b := range builders {
			s.Radio.Emit(b.Received())
		}
	}()
	return done
}

// WaitForCall polls the radio until op has been called at least once. It reports false
// if that takes longer than two seconds.
func (s *CommandTestSuite) WaitForCall(op testutils.RadioOp) bool {
	deadline := time.Now().Add(2 * time.Second)
	for s.Radio.Count(op, "") == 0 {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(2 * time.Millisecond)
	}
	return true
}
