//go:build !unix

package main

import "os"

// shutdownSignals stop a running scan cleanly.
var shutdownSignals = []os.Signal{os.Interrupt}
