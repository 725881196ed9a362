// Package discovery implements the BLE discovery core: the scan session lifecycle, a
// per-session table of peripherals ranked by signal strength, and the connect/read/
// disconnect procedure that resolves names of peripherals advertising none.
//
// A Core runs as a single actor goroutine. Driver callbacks arrive through the
// device.Radio handler and are queued together with caller requests, so the session,
// the table and the pending resolutions are only ever touched by one goroutine.
//
//	core := discovery.New(radio, logger, nil)
//	core.Start(ctx)
//	sub := core.Subscribe()
//	defer sub.Close()
//	if err := core.StartScan(ctx, nil); err != nil {
//	    return err
//	}
//	for ev := range sub.C() {
//	    // ScanStarted, PeripheralDiscovered..., ScanStopped
//	}
package discovery
