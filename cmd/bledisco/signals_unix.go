//go:build unix

package main

import (
	"os"

	"golang.org/x/sys/unix"
)

// shutdownSignals stop a running scan cleanly.
var shutdownSignals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP}
