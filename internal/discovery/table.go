package discovery

import "sort"

// Table is the per-session set of discovered peripherals, keyed by identifier and kept
// ranked by RSSI descending with ties in arrival order.
//
// Table is not safe for concurrent use; the Core owns it exclusively.
type Table struct {
	byID   map[string]*Peripheral
	ranked []*Peripheral
	seq    uint64
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{byID: make(map[string]*Peripheral)}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.ranked)
}

// Get returns a copy of the record for id.
func (t *Table) Get(id string) (Peripheral, bool) {
	p, ok := t.byID[id]
	if !ok {
		return Peripheral{}, false
	}
	return *p, true
}

// Insert adds p if its identifier is not yet present. Returns the stored record and
// whether it was inserted.
func (t *Table) Insert(p Peripheral) (Peripheral, bool) {
	if existing, ok := t.byID[p.ID]; ok {
		return *existing, false
	}

	t.seq++
	rec := p
	rec.seq = t.seq
	t.byID[rec.ID] = &rec
	t.place(&rec)
	return rec, true
}

// UpdateRSSI re-ranks id with a new signal strength. Returns false if id is unknown.
func (t *Table) UpdateRSSI(id string, rssi int) bool {
	p, ok := t.byID[id]
	if !ok {
		return false
	}
	if p.RSSI == rssi {
		return true
	}

	t.remove(p)
	p.RSSI = rssi
	t.place(p)
	return true
}

// Rename sets the name of an unnamed record. Named records are left alone.
func (t *Table) Rename(id, name string) bool {
	p, ok := t.byID[id]
	if !ok || p.named || !usableName(name) {
		return false
	}
	p.name, p.named = name, true
	return true
}

// Ranked returns a snapshot ordered by RSSI descending, ties by arrival order.
func (t *Table) Ranked() []Peripheral {
	out := make([]Peripheral, len(t.ranked))
	for i, p := range t.ranked {
		out[i] = *p
	}
	return out
}

// Reset drops all records. Arrival numbering keeps increasing.
func (t *Table) Reset() {
	t.byID = make(map[string]*Peripheral)
	t.ranked = nil
}

func (t *Table) place(p *Peripheral) {
	i := t.index(p)
	t.ranked = append(t.ranked, nil)
	copy(t.ranked[i+1:], t.ranked[i:])
	t.ranked[i] = p
}

func (t *Table) remove(p *Peripheral) {
	i := t.index(p)
	if i < len(t.ranked) && t.ranked[i] == p {
		t.ranked = append(t.ranked[:i], t.ranked[i+1:]...)
	}
}

// index returns the first position whose element does not rank before p.
func (t *Table) index(p *Peripheral) int {
	return sort.Search(len(t.ranked), func(i int) bool {
		return !ranksBefore(t.ranked[i], p)
	})
}

func ranksBefore(a, b *Peripheral) bool {
	if a.RSSI != b.RSSI {
		return a.RSSI > b.RSSI
	}
	return a.seq < b.seq
}
