package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
	goble "github.com/srg/bledisco/internal/device/go-ble"
	"github.com/srg/bledisco/pkg/config"
)

// radioFactory opens the radio commands run on (can be overridden in tests).
//
//nolint:gochecknoglobals // replaced by command tests
var radioFactory = openCentral

// openCentral opens the go-ble central. A device that cannot be opened is still
// returned: its adapter state explains the failure, and the discovery core turns that
// into a user-facing error on the first scan.
func openCentral(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (device.Radio, func(), error) {
	central := goble.NewCentral(logger, cfg.CentralOptions())
	if err := central.Open(); err != nil {
		logger.WithError(err).Debug("BLE device unavailable")
		return central, func() {}, nil
	}

	watchAdapter(ctx, cfg.Adapter, central, logger)
	return central, func() {
		if err := central.Close(); err != nil {
			logger.WithError(err).Debug("Failed to close BLE device")
		}
	}, nil
}
