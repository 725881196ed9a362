package device

// Event is a driver callback delivered to the Handler set on a Radio.
type Event interface {
	// PeripheralID returns the peripheral the callback is about, or "" for adapter events.
	PeripheralID() string
}

// StateChanged reports a new adapter state.
type StateChanged struct {
	State AdapterState
}

// AdvertisementReceived carries one advertising report.
//
// PeripheralName is the name the driver already knows for the peripheral (for example a
// cached GAP name), which may be set even when the advertisement has no local name.
type AdvertisementReceived struct {
	ID             string
	PeripheralName string
	Advertisement  Advertisement
}

// Connected reports a successful connect. Name is the peripheral name known to the
// driver at connection time, if any.
type Connected struct {
	ID   string
	Name string
}

// Disconnected reports a torn-down connection or a failed connect attempt (Err set).
type Disconnected struct {
	ID  string
	Err error
}

// ServicesDiscovered completes DiscoverServices.
type ServicesDiscovered struct {
	ID       string
	Services []string
	Err      error
}

// CharacteristicsDiscovered completes DiscoverCharacteristics for one service.
type CharacteristicsDiscovered struct {
	ID              string
	Service         string
	Characteristics []string
	Err             error
}

// ValueRead completes ReadValue. The payload is not carried; the core never interprets it.
type ValueRead struct {
	ID             string
	Service        string
	Characteristic string
	Err            error
}

// NameUpdated reports that the driver learned the peripheral's name.
type NameUpdated struct {
	ID   string
	Name string
}

func (StateChanged) PeripheralID() string                { return "" }
func (e AdvertisementReceived) PeripheralID() string     { return e.ID }
func (e Connected) PeripheralID() string                 { return e.ID }
func (e Disconnected) PeripheralID() string              { return e.ID }
func (e ServicesDiscovered) PeripheralID() string        { return e.ID }
func (e CharacteristicsDiscovered) PeripheralID() string { return e.ID }
func (e ValueRead) PeripheralID() string                 { return e.ID }
func (e NameUpdated) PeripheralID() string               { return e.ID }
