//go:build !linux

package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
)

type stateSink interface {
	SetAdapterState(s device.AdapterState)
}

// watchAdapter is a no-op: CoreBluetooth reports power changes through the driver.
func watchAdapter(context.Context, string, stateSink, *logrus.Logger) {}
