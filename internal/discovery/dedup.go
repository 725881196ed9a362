package discovery

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/bledisco/internal/device"
)

// onAdvertisement folds one advertising report into the session table. A peripheral
// produces at most one PeripheralDiscovered per session; later reports only refresh its
// RSSI, and its name if it had none.
func (c *Core) onAdvertisement(ev device.AdvertisementReceived) {
	if !c.session.active {
		return
	}

	adv := ev.Advertisement
	id := ev.ID
	if id == "" && adv != nil {
		id = adv.Addr()
	}
	if id == "" || !c.session.filter.include(id, adv) {
		return
	}

	rssi, name, connectable := 0, advertisedName(ev), true
	if adv != nil {
		rssi = adv.RSSI()
		connectable = adv.Connectable()
	}

	if row, ok := c.resolver.lookup(id); ok {
		if !row.completed {
			c.resolver.observe(id, rssi)
			return
		}
		// Resolved and tearing down: reuse the result instead of connecting again.
		if name == "" && row.named {
			name = row.name
		}
		c.accept(NewPeripheral(id, name, rssi))
		return
	}

	if c.table.UpdateRSSI(id, rssi) {
		if name != "" && c.table.Rename(id, name) {
			c.logger.WithFields(logrus.Fields{
				"id":   id,
				"name": name,
			}).Debug("Peripheral name learned from advertisement")
		}
		return
	}

	if name != "" || !connectable || !c.opts.ResolveNames {
		c.accept(NewPeripheral(id, name, rssi))
		return
	}
	c.resolver.begin(id, rssi)
}

// accept inserts p and announces it, or refreshes the RSSI of an existing record.
// It is also the resolver's continuation.
func (c *Core) accept(p Peripheral) {
	rec, inserted := c.table.Insert(p)
	if !inserted {
		c.table.UpdateRSSI(p.ID, p.RSSI)
		if name, ok := p.Name(); ok {
			c.table.Rename(p.ID, name)
		}
		return
	}

	c.logger.WithFields(logrus.Fields{
		"device":  rec.DisplayName(),
		"address": rec.ID,
		"rssi":    rec.RSSI,
	}).Info("Discovered new device")
	c.bus.Publish(Event{Kind: PeripheralDiscovered, Session: c.session.number, Peripheral: rec})
}

// onNameUpdated routes a driver name callback to a pending resolution, or else renames an
// unnamed record without a new event.
func (c *Core) onNameUpdated(ev device.NameUpdated) {
	if c.resolver.onNameUpdated(ev.ID, ev.Name) {
		return
	}
	c.table.Rename(ev.ID, ev.Name)
}

// advertisedName prefers the advertised local name over a name cached by the driver.
func advertisedName(ev device.AdvertisementReceived) string {
	if ev.Advertisement != nil {
		if n := ev.Advertisement.LocalName(); usableName(n) {
			return n
		}
	}
	if usableName(ev.PeripheralName) {
		return ev.PeripheralName
	}
	return ""
}
