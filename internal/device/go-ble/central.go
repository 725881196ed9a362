package goble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
	"github.com/srg/bledisco/internal/groutine"
)

// DeviceFactory creates ble.Device instances (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = newPlatformDevice

// Options configures a Central.
type Options struct {
	// ConnectTimeout bounds a single Dial.
	ConnectTimeout time.Duration
	// AllowDuplicates reports every advertisement instead of the first per address. The
	// discovery core needs duplicates to keep RSSI current.
	AllowDuplicates bool
}

// DefaultOptions returns default central options
func DefaultOptions() *Options {
	return &Options{
		ConnectTimeout:  10 * time.Second,
		AllowDuplicates: true,
	}
}

// scanner is the part of ble.Device the central scans with.
type scanner interface {
	Scan(ctx context.Context, allowDup bool, h ble.AdvHandler) error
	Stop() error
}

// gattClient is the part of ble.Client name resolution needs.
type gattClient interface {
	Name() string
	DiscoverServices(filter []ble.UUID) ([]*ble.Service, error)
	DiscoverCharacteristics(filter []ble.UUID, s *ble.Service) ([]*ble.Characteristic, error)
	ReadCharacteristic(c *ble.Characteristic) ([]byte, error)
	CancelConnection() error
	Disconnected() <-chan struct{}
}

type dialFunc func(ctx context.Context, addr ble.Addr) (gattClient, error)

// Central implements device.Radio on top of go-ble. Imperative calls validate their
// arguments, start the radio work on a named goroutine and return; results are delivered
// to the handler as device events.
type Central struct {
	logger *logrus.Logger
	opts   Options

	dev     scanner
	dial    dialFunc
	state   atomic.Int32
	handler atomic.Pointer[device.Handler]

	scanMu     sync.Mutex
	scanCancel context.CancelFunc
	scanDone   <-chan struct{}

	links *hashmap.Map[string, *link]
}

// link is one connection used for name resolution.
type link struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc

	// gatt serializes requests on the client; mu guards the fields below.
	gatt     sync.Mutex
	mu       sync.Mutex
	client   gattClient
	name     string
	services map[string]*ble.Service
	chars    map[string]*ble.Characteristic

	closeOnce sync.Once
	closed    chan struct{}
}

// NewCentral creates a central. Call Open before use.
func NewCentral(logger *logrus.Logger, opts *Options) *Central {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	c := &Central{
		logger: logger,
		opts:   *opts,
		links:  hashmap.New[string, *link](),
	}
	c.state.Store(int32(device.StateUnknown))
	return c
}

// newCentralWithDevice wires a central to an already opened device.
func newCentralWithDevice(dev scanner, dial dialFunc, logger *logrus.Logger, opts *Options) *Central {
	c := NewCentral(logger, opts)
	c.dev, c.dial = dev, dial
	c.state.Store(int32(device.StatePoweredOn))
	return c
}

// Open creates the platform device. On failure the central stays usable but reports the
// adapter state the error implies, and the error is returned.
func (c *Central) Open() error {
	dev, err := DeviceFactory()
	if err != nil {
		err = NormalizeError(err)
		st := device.StateForError(err)
		c.logger.WithFields(logrus.Fields{
			"error": err,
			"state": st,
		}).Warn("Failed to open BLE device")
		c.SetAdapterState(st)
		return fmt.Errorf("failed to create BLE device: %w", err)
	}

	c.dev = dev
	c.dial = func(ctx context.Context, addr ble.Addr) (gattClient, error) {
		return dev.Dial(ctx, addr)
	}
	c.SetAdapterState(device.StatePoweredOn)
	c.logger.Debug("BLE device opened")
	return nil
}

// Close stops scanning, drops every link and releases the device.
func (c *Central) Close() error {
	_ = c.StopScanning()
	c.links.Range(func(_ string, l *link) bool {
		l.cancel()
		l.mu.Lock()
		client := l.client
		l.mu.Unlock()
		if client != nil {
			_ = client.CancelConnection()
		}
		return true
	})
	if c.dev == nil {
		return nil
	}
	return NormalizeError(c.dev.Stop())
}

// State returns the last known adapter state.
func (c *Central) State() device.AdapterState {
	return device.AdapterState(c.state.Load())
}

// SetAdapterState records an externally observed adapter state (for example from the
// system power watcher) and reports it to the handler when it changed.
func (c *Central) SetAdapterState(s device.AdapterState) {
	if device.AdapterState(c.state.Swap(int32(s))) == s {
		return
	}
	if !s.Available() {
		_ = c.StopScanning()
	}
	c.emit(device.StateChanged{State: s})
}

// SetHandler installs the callback receiving all driver events.
func (c *Central) SetHandler(h device.Handler) {
	c.handler.Store(&h)
}

func (c *Central) emit(ev device.Event) {
	if h := c.handler.Load(); h != nil && *h != nil {
		(*h)(ev)
	}
}

// StartScanning begins reporting advertisements.
func (c *Central) StartScanning() error {
	if err := c.ready(); err != nil {
		return err
	}

	c.scanMu.Lock()
	defer c.scanMu.Unlock()
	if c.scanCancel != nil {
		return device.ErrScanning
	}

	ctx, cancel := context.WithCancel(context.Background())
	prev := c.scanDone
	c.scanCancel = cancel
	c.scanDone = groutine.Go(ctx, "ble-scan", func(ctx context.Context) {
		if prev != nil {
			<-prev
		}
		c.scan(ctx)
	})

	c.logger.WithField("allow_duplicates", c.opts.AllowDuplicates).Debug("Scanning started")
	return nil
}

func (c *Central) scan(ctx context.Context) {
	err := c.dev.Scan(ctx, c.opts.AllowDuplicates, func(a ble.Advertisement) {
		adv := NewBLEAdvertisement(a)
		c.emit(device.AdvertisementReceived{ID: adv.Addr(), Advertisement: adv})
	})
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}

	err = NormalizeError(err)
	c.logger.WithError(err).Warn("Scan ended with error")
	c.scanMu.Lock()
	if c.scanCancel != nil {
		c.scanCancel()
		c.scanCancel = nil
	}
	c.scanMu.Unlock()

	if st := device.StateForError(err); st != device.StateUnknown && st != c.State() {
		c.SetAdapterState(st)
	}
}

// StopScanning ends the scan. Stopping an idle central is not an error.
func (c *Central) StopScanning() error {
	c.scanMu.Lock()
	defer c.scanMu.Unlock()

	if c.scanCancel == nil {
		return nil
	}
	c.scanCancel()
	c.scanCancel = nil
	c.logger.Debug("Scanning stopped")
	return nil
}

// Connect dials id. Completion is reported as Connected or Disconnected.
func (c *Central) Connect(id string) error {
	if err := c.ready(); err != nil {
		return err
	}
	if id == "" {
		return fmt.Errorf("device address is empty")
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &link{
		id:       id,
		ctx:      ctx,
		cancel:   cancel,
		services: make(map[string]*ble.Service),
		chars:    make(map[string]*ble.Characteristic),
		closed:   make(chan struct{}),
	}
	if _, loaded := c.links.GetOrInsert(id, l); loaded {
		cancel()
		return device.ErrAlreadyConnected
	}

	groutine.Go(ctx, "ble-connect", func(ctx context.Context) {
		c.connect(ctx, l)
	})
	return nil
}

func (c *Central) connect(ctx context.Context, l *link) {
	dialCtx, cancel := context.WithTimeout(ctx, c.opts.ConnectTimeout)
	defer cancel()

	c.logger.WithField("address", l.id).Debug("Dialing BLE device...")
	client, err := c.dial(dialCtx, ble.NewAddr(l.id))
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"address": l.id,
			"error":   err,
		}).Debug("Failed to dial BLE device")
		c.closeLink(l, NormalizeError(err))
		return
	}

	l.mu.Lock()
	if l.ctx.Err() != nil {
		// Cancelled while dialing.
		l.mu.Unlock()
		_ = client.CancelConnection()
		c.closeLink(l, nil)
		return
	}
	l.client = client
	l.name = device.CleanName([]byte(client.Name()))
	name := l.name
	l.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"address": l.id,
		"name":    name,
	}).Debug("BLE device connected")
	c.emit(device.Connected{ID: l.id, Name: name})

	select {
	case <-client.Disconnected():
		c.closeLink(l, nil)
	case <-l.closed:
	}
}

// CancelConnection tears down the link to id, or aborts a dial in progress.
func (c *Central) CancelConnection(id string) error {
	l, ok := c.links.Get(id)
	if !ok {
		return device.ErrNotConnected
	}

	l.mu.Lock()
	client := l.client
	l.mu.Unlock()

	l.cancel()
	if client == nil {
		return nil
	}

	groutine.Go(context.Background(), "ble-disconnect", func(context.Context) {
		if err := client.CancelConnection(); err != nil {
			c.logger.WithFields(logrus.Fields{
				"address": id,
				"error":   err,
			}).Debug("Cancel connection failed")
			c.closeLink(l, NormalizeError(err))
		}
	})
	return nil
}

// closeLink removes l and reports Disconnected exactly once.
func (c *Central) closeLink(l *link, cause error) {
	l.closeOnce.Do(func() {
		l.cancel()
		close(l.closed)
		if cur, ok := c.links.Get(l.id); ok && cur == l {
			c.links.Del(l.id)
		}
		c.emit(device.Disconnected{ID: l.id, Err: cause})
	})
}

// DiscoverServices lists the primary services of a connected peripheral.
func (c *Central) DiscoverServices(id string) error {
	l, err := c.connected(id)
	if err != nil {
		return err
	}

	groutine.Go(l.ctx, "ble-discover-services", func(context.Context) {
		l.gatt.Lock()
		svcs, err := l.client.DiscoverServices(nil)
		l.gatt.Unlock()

		uuids := make([]string, 0, len(svcs))
		l.mu.Lock()
		for _, s := range svcs {
			u := device.NormalizeUUID(s.UUID.String())
			l.services[u] = s
			uuids = append(uuids, u)
		}
		l.mu.Unlock()

		c.emit(device.ServicesDiscovered{ID: id, Services: uuids, Err: NormalizeError(err)})
	})
	return nil
}

// DiscoverCharacteristics lists the characteristics of a discovered service.
func (c *Central) DiscoverCharacteristics(id, service string) error {
	l, err := c.connected(id)
	if err != nil {
		return err
	}

	svcUUID := device.NormalizeUUID(service)
	l.mu.Lock()
	svc, ok := l.services[svcUUID]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("service %s not discovered on %s", service, id)
	}

	groutine.Go(l.ctx, "ble-discover-characteristics", func(context.Context) {
		l.gatt.Lock()
		chars, err := l.client.DiscoverCharacteristics(nil, svc)
		l.gatt.Unlock()

		uuids := make([]string, 0, len(chars))
		l.mu.Lock()
		for _, ch := range chars {
			u := device.NormalizeUUID(ch.UUID.String())
			l.chars[charKey(svcUUID, u)] = ch
			uuids = append(uuids, u)
		}
		l.mu.Unlock()

		c.emit(device.CharacteristicsDiscovered{ID: id, Service: svcUUID, Characteristics: uuids, Err: NormalizeError(err)})
	})
	return nil
}

// ReadValue reads a readable characteristic. The payload is only inspected for the GAP
// device name; a name learned this way is reported as NameUpdated before ValueRead.
func (c *Central) ReadValue(id, service, characteristic string) error {
	l, err := c.connected(id)
	if err != nil {
		return err
	}

	svcUUID, charUUID := device.NormalizeUUID(service), device.NormalizeUUID(characteristic)
	l.mu.Lock()
	ch, ok := l.chars[charKey(svcUUID, charUUID)]
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("characteristic %s not discovered in service %s", characteristic, service)
	}
	if ch.Property&ble.CharRead == 0 {
		return fmt.Errorf("characteristic %s is not readable", characteristic)
	}

	groutine.Go(l.ctx, "ble-read", func(context.Context) {
		l.gatt.Lock()
		data, err := l.client.ReadCharacteristic(ch)
		current := device.CleanName([]byte(l.client.Name()))
		l.gatt.Unlock()

		name := ""
		if err == nil && charUUID == device.DeviceNameCharUUID {
			if n := device.CleanName(data); device.IsValidDeviceName(n) {
				name = n
			}
		}
		l.mu.Lock()
		if name == "" && current != "" && current != l.name {
			name = current
		}
		if name != "" {
			l.name = name
		}
		l.mu.Unlock()

		if name != "" {
			c.logger.WithFields(logrus.Fields{
				"address": id,
				"name":    name,
			}).Debug("Resolved device name")
			c.emit(device.NameUpdated{ID: id, Name: name})
		}
		c.emit(device.ValueRead{ID: id, Service: svcUUID, Characteristic: charUUID, Err: NormalizeError(err)})
	})
	return nil
}

func (c *Central) ready() error {
	if c.dev == nil {
		return device.ErrNotInitialized
	}
	if st := c.State(); !st.Available() {
		if st == device.StatePoweredOff {
			return device.ErrBluetoothOff
		}
		return fmt.Errorf("adapter is %s", st)
	}
	return nil
}

func (c *Central) connected(id string) (*link, error) {
	l, ok := c.links.Get(id)
	if !ok {
		return nil, device.ErrNotConnected
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.client == nil {
		return nil, &device.ConnectionError{State: device.NotConnected, Msg: "connection in progress"}
	}
	return l, nil
}

func charKey(service, characteristic string) string {
	return service + "/" + characteristic
}

var _ device.Radio = (*Central)(nil)
