package discovery

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
)

// session is the scan session state. Only the core's sequence touches it.
type session struct {
	active  bool
	number  uint64
	started time.Time
	opts    *ScanOptions
	filter  filter
	timer   *time.Timer
}

// scanTimeout ends session number when its Duration elapses.
type scanTimeout struct {
	session uint64
}

// Stop reasons reported on ScanStopped.
const (
	StopRequested = "requested"
	StopDuration  = "duration elapsed"
	StopShutdown  = "shutdown"
)

func (c *Core) startScan(opts *ScanOptions) error {
	if c.session.active {
		return ErrScanInProgress
	}
	if st := c.adapter.State(); !st.Available() {
		return &AdapterUnavailableError{State: st}
	}
	if opts == nil {
		opts = DefaultScanOptions()
	}
	f, err := newFilter(opts)
	if err != nil {
		return err
	}

	if err := c.radio.StartScanning(); err != nil {
		return fmt.Errorf("failed to start scanning: %w", err)
	}

	c.table.Reset()
	c.session = session{
		active:  true,
		number:  c.session.number + 1,
		started: time.Now(),
		opts:    opts,
		filter:  f,
	}
	if opts.Duration > 0 {
		c.session.timer = c.after(opts.Duration, scanTimeout{session: c.session.number})
	}
	c.scanning.Store(true)

	c.logger.WithFields(logrus.Fields{
		"session":  c.session.number,
		"duration": opts.Duration,
	}).Info("Scan started")
	c.bus.Publish(Event{Kind: ScanStarted, Session: c.session.number})
	return nil
}

func (c *Core) stopScan(reason string) error {
	if !c.session.active {
		return ErrNoScanInProgress
	}

	if err := c.radio.StopScanning(); err != nil {
		// The session ends regardless; the radio is expected to stop on its own.
		c.logger.WithError(err).Warn("Driver failed to stop scanning")
	}
	c.endSession(reason)
	return nil
}

// endSession marks the session inactive and announces it. Pending resolutions are left
// running; their results still land in this session's table.
func (c *Core) endSession(reason string) {
	if c.session.timer != nil {
		c.session.timer.Stop()
		c.session.timer = nil
	}
	c.session.active = false
	c.scanning.Store(false)

	c.logger.WithFields(logrus.Fields{
		"session":      c.session.number,
		"reason":       reason,
		"device_count": c.table.Len(),
		"elapsed":      time.Since(c.session.started).Round(time.Millisecond),
	}).Info("Scan stopped")
	c.bus.Publish(Event{Kind: ScanStopped, Session: c.session.number, Reason: reason})
}

func (c *Core) onScanTimeout(number uint64) {
	if !c.session.active || c.session.number != number {
		return
	}
	_ = c.stopScan(StopDuration)
}

// onAdapterChanged force-stops an active session when the radio becomes unavailable.
func (c *Core) onAdapterChanged(old, current device.AdapterState) {
	c.logger.WithFields(logrus.Fields{
		"from": old,
		"to":   current,
	}).Info("Adapter state changed")

	if current.Available() {
		return
	}
	reason := "adapter " + current.String()
	if c.session.active {
		c.endSession(reason)
	}
	c.resolver.abortAll(reason)
}
