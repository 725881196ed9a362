package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device/bluez"
)

// watchAdapter follows the BlueZ power state of adapter. Without D-Bus the central only
// learns about power changes from failing HCI calls.
func watchAdapter(ctx context.Context, adapter string, sink bluez.StateSink, logger *logrus.Logger) {
	w := bluez.NewWatcher(adapter, sink, logger)
	if err := w.Start(ctx); err != nil {
		logger.WithError(err).Debug("BlueZ power watcher unavailable")
	}
}
