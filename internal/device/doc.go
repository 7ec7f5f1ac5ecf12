// Package device maintains the registry of devices that have announced
// themselves to Master Control.
//
// The registry is a single ordered document (key "index" in the record
// store) holding one Record per device ID in registration order. Every
// registration reads the whole index, appends if the ID is new, and writes
// the whole index back. The first registration for an ID wins; later
// registrations with the same ID leave the stored record untouched.
//
// # Usage
//
//	idx := device.NewIndex(store)
//	idx.SetLogger(log)
//	added, err := idx.Register(ctx, device.Record{DeviceID: "dev-1", Email: "a@b"})
//	records := idx.List(ctx)
package device
