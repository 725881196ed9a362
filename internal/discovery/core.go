package discovery

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/groutine"
)

// Core is the BLE discovery core. It owns one scan session, the session's peripheral
// table and the pending name resolutions, and publishes discovery events on its Bus.
//
// All state is owned by a single goroutine started by Start. Public methods and driver
// callbacks only post messages to it, so none of them block on radio work.
type Core struct {
	radio  device.Radio
	logger *logrus.Logger
	opts   Options
	bus    *Bus

	mailbox   chan any
	done      chan struct{}
	startOnce sync.Once
	scanning  atomic.Bool

	// Owned by the run goroutine.
	adapter  *adapterMonitor
	table    *Table
	resolver *resolver
	session  session
}

// call runs fn on the core's sequence; fail is used instead if the core shuts down first.
type call struct {
	run  func()
	fail func()
}

// New creates a core over radio. The radio handler is installed immediately; callbacks
// queue until Start.
func New(radio device.Radio, logger *logrus.Logger, opts *Options) *Core {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.MailboxSize <= 0 {
		o.MailboxSize = DefaultMailboxSize
	}

	c := &Core{
		radio:   radio,
		logger:  logger,
		opts:    o,
		bus:     NewBus(o.EventBuffer, logger),
		mailbox: make(chan any, o.MailboxSize),
		done:    make(chan struct{}),
		adapter: newAdapterMonitor(radio.State()),
		table:   NewTable(),
	}
	c.resolver = newResolver(radio, logger, o.ResolveTimeout, c.accept, c.after)
	c.adapter.observe(c.onAdapterChanged)
	c.adapter.observe(func(_, current device.AdapterState) {
		c.bus.Publish(Event{Kind: AdapterStateChanged, State: current})
	})

	radio.SetHandler(c.handle)
	return c
}

// Start runs the core until ctx is cancelled. It returns a channel closed after shutdown.
// Calling Start again has no effect.
func (c *Core) Start(ctx context.Context) <-chan struct{} {
	c.startOnce.Do(func() {
		groutine.Go(ctx, "discovery-core", c.run)
	})
	return c.done
}

// Done is closed once the core has shut down.
func (c *Core) Done() <-chan struct{} {
	return c.done
}

// Bus returns the event bus.
func (c *Core) Bus() *Bus {
	return c.bus
}

// Subscribe registers for kinds, or the discovery kinds when none are given.
func (c *Core) Subscribe(kinds ...EventKind) *Subscription {
	return c.bus.Subscribe(kinds...)
}

// AdapterState returns the last adapter state reported by the driver.
func (c *Core) AdapterState() device.AdapterState {
	return c.adapter.State()
}

// Scanning reports whether a scan session is active.
func (c *Core) Scanning() bool {
	return c.scanning.Load()
}

// StartScanAsync requests a new scan session. The result is available from the returned
// Pending once the core has processed the request.
func (c *Core) StartScanAsync(opts *ScanOptions) *Pending {
	return c.submit(func() error { return c.startScan(opts) })
}

// StartScan starts a scan session and waits for the result.
//
// Fails with ErrScanInProgress if a session is active and with an AdapterUnavailableError
// when the radio is not powered on. A failure leaves all state unchanged.
func (c *Core) StartScan(ctx context.Context, opts *ScanOptions) error {
	return c.StartScanAsync(opts).Wait(ctx)
}

// StopScanAsync requests the end of the active scan session.
func (c *Core) StopScanAsync() *Pending {
	return c.submit(func() error { return c.stopScan(StopRequested) })
}

// StopScan stops the active session and waits for the result. Fails with
// ErrNoScanInProgress when no session is active. Name resolutions in flight keep running.
func (c *Core) StopScan(ctx context.Context) error {
	return c.StopScanAsync().Wait(ctx)
}

// Peripherals returns the session's peripherals ranked by RSSI descending, ties in
// arrival order.
func (c *Core) Peripherals(ctx context.Context) ([]Peripheral, error) {
	var out []Peripheral
	err := c.submit(func() error {
		out = c.table.Ranked()
		return nil
	}).Wait(ctx)
	return out, err
}

// Resolving returns the number of name resolutions whose peripheral has not been
// reported yet. Their results may still arrive after the session has stopped.
func (c *Core) Resolving(ctx context.Context) (int, error) {
	var n int
	err := c.submit(func() error {
		n = c.resolver.unresolved()
		return nil
	}).Wait(ctx)
	return n, err
}

// Reset clears the peripheral table without touching the session or pending resolutions.
func (c *Core) Reset(ctx context.Context) error {
	return c.submit(func() error {
		c.table.Reset()
		c.logger.Debug("Peripheral table cleared")
		return nil
	}).Wait(ctx)
}

func (c *Core) submit(fn func() error) *Pending {
	p := &Pending{reply: make(chan error, 1), done: c.done}
	msg := call{
		run:  func() { p.reply <- fn() },
		fail: func() { p.reply <- ErrClosed },
	}
	if !c.post(msg) {
		p.reply <- ErrClosed
	}
	return p
}

// handle is the radio handler. It runs on driver goroutines.
func (c *Core) handle(ev device.Event) {
	if !c.post(ev) {
		c.logger.WithField("event", ev).Debug("Driver event after shutdown, dropped")
	}
}

func (c *Core) post(msg any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.mailbox <- msg:
		return true
	case <-c.done:
		return false
	}
}

// after delivers msg to the core's sequence once d has elapsed.
func (c *Core) after(d time.Duration, msg any) *time.Timer {
	return time.AfterFunc(d, func() { c.post(msg) })
}

func (c *Core) run(ctx context.Context) {
	defer close(c.done)

	c.logger.WithField("adapter", c.adapter.State()).Debug("Discovery core started")
	for {
		select {
		case <-ctx.Done():
			c.shutdown()
			return
		case msg := <-c.mailbox:
			c.dispatch(msg)
		}
	}
}

func (c *Core) dispatch(msg any) {
	switch m := msg.(type) {
	case call:
		m.run()
	case scanTimeout:
		c.onScanTimeout(m.session)
	case resolveTimeout:
		c.resolver.onTimeout(m.id, m.gen)
	case device.Event:
		c.onDriverEvent(m)
	default:
		c.logger.WithField("message", msg).Warn("Unexpected message")
	}
}

func (c *Core) onDriverEvent(ev device.Event) {
	switch e := ev.(type) {
	case device.StateChanged:
		c.adapter.set(e.State)
	case device.AdvertisementReceived:
		c.onAdvertisement(e)
	case device.Connected:
		c.resolver.onConnected(e.ID, e.Name)
	case device.Disconnected:
		c.resolver.onDisconnected(e.ID, e.Err)
	case device.ServicesDiscovered:
		c.resolver.onServicesDiscovered(e)
	case device.CharacteristicsDiscovered:
		c.resolver.onCharacteristicsDiscovered(e)
	case device.ValueRead:
		c.resolver.onValueRead(e)
	case device.NameUpdated:
		c.onNameUpdated(e)
	}
}

// shutdown stops an active session, completes pending resolutions and closes every
// subscription. Queued requests fail with ErrClosed.
func (c *Core) shutdown() {
	if c.session.active {
		_ = c.stopScan(StopShutdown)
	}
	c.resolver.abortAll(StopShutdown)

	for {
		select {
		case msg := <-c.mailbox:
			if m, ok := msg.(call); ok {
				m.fail()
			}
		default:
			c.bus.CloseAll()
			c.logger.Debug("Discovery core stopped")
			return
		}
	}
}

// Pending is the result of an asynchronous request.
type Pending struct {
	reply chan error
	done  <-chan struct{}
}

// Wait blocks until the request is processed, ctx ends, or the core shuts down.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case err := <-p.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		select {
		case err := <-p.reply:
			return err
		default:
			return ErrClosed
		}
	}
}
