// Package recordstore persists JSON documents under slash-separated keys.
//
// It is the storage layer shared by the device index, the per-device
// config documents and the per-device log streams:
//
//	index            the device index ([]device.Record)
//	configs/<id>     one config document per device
//	logs/<id>        one append-only log stream per device
//
// A Store wraps a Backend (file, SQLite or in-memory). Reads never fail:
// a missing or undecodable document yields the caller's default. Writes
// replace the whole document and return any backend error.
//
// Read-modify-write sequences go through Update, which serialises callers
// per key inside the process so concurrent appends to the same stream are
// never lost. Writers in other processes are not coordinated.
package recordstore
