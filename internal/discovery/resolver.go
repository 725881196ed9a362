package discovery

import (
	"time"

	"github.com/sirupsen/logrus"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/bledisco/internal/device"
)

// ResolutionState is the step a name resolution has reached for one peripheral.
type ResolutionState int

const (
	Discovered ResolutionState = iota
	Connecting
	Connected
	ServicesDiscovered
	CharacteristicsDiscovered
	ValueRead
	Disconnecting
	Resolved
)

func (s ResolutionState) String() string {
	switch s {
	case Discovered:
		return "discovered"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case ServicesDiscovered:
		return "services_discovered"
	case CharacteristicsDiscovered:
		return "characteristics_discovered"
	case ValueRead:
		return "value_read"
	case Disconnecting:
		return "disconnecting"
	case Resolved:
		return "resolved"
	default:
		return "invalid"
	}
}

// resolution is one row of the resolver table.
type resolution struct {
	id    string
	state ResolutionState
	rssi  int
	name  string
	named bool

	// completed is set once the continuation has run; the row may linger in
	// Disconnecting until the driver confirms teardown.
	completed bool

	chars int // outstanding characteristic discoveries
	reads int // outstanding value reads

	gen     uint64
	timer   *time.Timer
	started time.Time
}

// resolveTimeout fires when a resolution overstays its budget.
type resolveTimeout struct {
	id  string
	gen uint64
}

// resolver drives connect → discover services → discover characteristics → read →
// disconnect for peripherals that advertise no name. Every row ends with exactly one call
// to complete; rows are removed on disconnect, driver failure or timeout.
//
// resolver is not safe for concurrent use; it runs on the Core's sequence.
type resolver struct {
	radio   device.Radio
	logger  *logrus.Logger
	timeout time.Duration
	rows    *orderedmap.OrderedMap[string, *resolution]
	gen     uint64

	complete func(Peripheral)
	after    func(d time.Duration, msg any) *time.Timer
}

func newResolver(radio device.Radio, logger *logrus.Logger, timeout time.Duration,
	complete func(Peripheral), after func(time.Duration, any) *time.Timer) *resolver {
	return &resolver{
		radio:    radio,
		logger:   logger,
		timeout:  timeout,
		rows:     orderedmap.New[string, *resolution](),
		complete: complete,
		after:    after,
	}
}

// Len returns the number of rows, including ones tearing down.
func (r *resolver) Len() int {
	return r.rows.Len()
}

func (r *resolver) lookup(id string) (*resolution, bool) {
	return r.rows.Get(id)
}

// unresolved counts rows whose continuation has not run yet.
func (r *resolver) unresolved() int {
	n := 0
	for pair := r.rows.Oldest(); pair != nil; pair = pair.Next() {
		if !pair.Value.completed {
			n++
		}
	}
	return n
}

// pending reports whether id has a resolution whose continuation has not run yet.
func (r *resolver) pending(id string) bool {
	row, ok := r.rows.Get(id)
	return ok && !row.completed
}

// begin starts resolving id. A second begin for a live row is ignored.
func (r *resolver) begin(id string, rssi int) {
	if _, ok := r.rows.Get(id); ok {
		return
	}

	r.gen++
	row := &resolution{id: id, state: Discovered, rssi: rssi, gen: r.gen, started: time.Now()}
	r.rows.Set(id, row)
	if r.timeout > 0 && r.after != nil {
		row.timer = r.after(r.timeout, resolveTimeout{id: id, gen: row.gen})
	}

	r.logger.WithFields(logrus.Fields{
		"id":   id,
		"rssi": rssi,
	}).Debug("Peripheral has no name, connecting to resolve it")

	row.state = Connecting
	if err := r.radio.Connect(id); err != nil {
		r.logger.WithFields(logrus.Fields{
			"id":    id,
			"error": err,
		}).Warn("Connect for name resolution refused")
		r.finish(row, "connect refused")
	}
}

func (r *resolver) onConnected(id, name string) {
	row, ok := r.rows.Get(id)
	if !ok {
		// Resolution already finished (timeout or abort); drop the late link.
		r.logger.WithField("id", id).Debug("Connection without resolution, cancelling")
		_ = r.radio.CancelConnection(id)
		return
	}
	if row.state != Connecting {
		return
	}

	row.state = Connected
	if usableName(name) {
		// Reported once the link is down, like every other completion.
		row.name, row.named = name, true
		r.disconnect(row)
		return
	}

	if err := r.radio.DiscoverServices(id); err != nil {
		r.logger.WithFields(logrus.Fields{
			"id":    id,
			"error": err,
		}).Debug("Service discovery refused")
		r.disconnect(row)
	}
}

func (r *resolver) onServicesDiscovered(ev device.ServicesDiscovered) {
	row, ok := r.rows.Get(ev.ID)
	if !ok || row.state != Connected {
		return
	}
	if ev.Err != nil || len(ev.Services) == 0 {
		r.logger.WithFields(logrus.Fields{
			"id":    ev.ID,
			"error": ev.Err,
		}).Debug("No services to inspect")
		r.disconnect(row)
		return
	}

	row.state = ServicesDiscovered
	for _, svc := range ev.Services {
		if err := r.radio.DiscoverCharacteristics(ev.ID, svc); err != nil {
			r.logger.WithFields(logrus.Fields{
				"id":      ev.ID,
				"service": svc,
				"error":   err,
			}).Debug("Characteristic discovery refused")
			continue
		}
		row.chars++
	}
	if row.chars == 0 {
		r.disconnect(row)
	}
}

func (r *resolver) onCharacteristicsDiscovered(ev device.CharacteristicsDiscovered) {
	row, ok := r.rows.Get(ev.ID)
	if !ok || (row.state != ServicesDiscovered && row.state != CharacteristicsDiscovered) {
		return
	}
	if row.chars > 0 {
		row.chars--
	}
	row.state = CharacteristicsDiscovered

	if ev.Err == nil {
		for _, char := range ev.Characteristics {
			if err := r.radio.ReadValue(ev.ID, ev.Service, char); err != nil {
				continue
			}
			row.reads++
		}
	}

	if row.chars == 0 && row.reads == 0 {
		r.disconnect(row)
	}
}

func (r *resolver) onValueRead(ev device.ValueRead) {
	row, ok := r.rows.Get(ev.ID)
	if !ok || row.state != CharacteristicsDiscovered {
		return
	}
	if row.reads > 0 {
		row.reads--
	}
	row.state = ValueRead
	r.disconnect(row)
}

// onNameUpdated completes the row with name. Returns false when id has no live row.
func (r *resolver) onNameUpdated(id, name string) bool {
	row, ok := r.rows.Get(id)
	if !ok || row.completed {
		return false
	}
	if !usableName(name) {
		return true
	}

	r.resolve(row, name)
	if row.state < Disconnecting {
		r.disconnect(row)
	}
	return true
}

func (r *resolver) onDisconnected(id string, cause error) {
	row, ok := r.rows.Get(id)
	if !ok {
		return
	}

	reason := "disconnected"
	if cause != nil {
		reason = cause.Error()
	}
	r.finish(row, reason)
}

func (r *resolver) onTimeout(id string, gen uint64) {
	row, ok := r.rows.Get(id)
	if !ok || row.gen != gen {
		return
	}

	r.logger.WithFields(logrus.Fields{
		"id":    id,
		"state": row.state,
	}).Warn("Name resolution timed out")
	_ = r.radio.CancelConnection(id)
	r.finish(row, "timeout")
}

// abortAll cancels every row's connection and finishes it, oldest first.
func (r *resolver) abortAll(reason string) {
	for pair := r.rows.Oldest(); pair != nil; pair = pair.Next() {
		if err := r.radio.CancelConnection(pair.Key); err != nil {
			r.logger.WithFields(logrus.Fields{
				"id":    pair.Key,
				"error": err,
			}).Debug("Cancel on abort failed")
		}
	}
	for pair := r.rows.Oldest(); pair != nil; {
		next := pair.Next()
		r.finish(pair.Value, reason)
		pair = next
	}
}

// observe remembers the latest RSSI of a pending peripheral.
func (r *resolver) observe(id string, rssi int) {
	if row, ok := r.rows.Get(id); ok && !row.completed {
		row.rssi = rssi
	}
}

func (r *resolver) disconnect(row *resolution) {
	row.state = Disconnecting
	if err := r.radio.CancelConnection(row.id); err != nil {
		// Nothing to tear down; treat as already disconnected.
		r.finish(row, "not connected")
	}
}

func (r *resolver) finish(row *resolution, reason string) {
	if !row.completed {
		r.resolve(row, "")
	}
	row.state = Resolved
	if row.timer != nil {
		row.timer.Stop()
	}
	r.rows.Delete(row.id)

	r.logger.WithFields(logrus.Fields{
		"id":       row.id,
		"name":     row.name,
		"reason":   reason,
		"duration": time.Since(row.started).Round(time.Millisecond),
	}).Debug("Name resolution finished")
}

// resolve runs the continuation. It is the only caller of complete.
func (r *resolver) resolve(row *resolution, name string) {
	if row.completed {
		return
	}
	row.completed = true
	if usableName(name) {
		row.name, row.named = name, true
	}
	r.complete(NewPeripheral(row.id, row.name, row.rssi))
}
