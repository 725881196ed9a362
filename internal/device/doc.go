// Package device defines the boundary between the discovery core and a platform BLE radio.
//
// It contains:
//   - AdapterState, the radio power/availability state
//   - Radio, the imperative driver surface (scan, connect, discover, read, disconnect)
//   - Event and its concrete callback types delivered asynchronously by a Radio
//   - Advertisement, a driver-neutral view of an advertising report
//   - the driver error taxonomy and UUID normalization helpers
package device
