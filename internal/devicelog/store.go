// Package devicelog keeps an append-only stream of log entries per device.
//
// Entries are opaque JSON values stored verbatim in arrival order. Streams
// are unbounded; each append rewrites the whole stream under the record
// store's per-key lock.
package devicelog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nerrad567/mastercontrol/internal/deviceid"
	"github.com/nerrad567/mastercontrol/internal/recordstore"
)

const keyPrefix = "logs/"

// Key returns the record store key for a device's log stream.
func Key(deviceID string) string {
	return keyPrefix + deviceID
}

// Store appends and lists device log entries.
type Store struct {
	records *recordstore.Store
}

// NewStore creates a log store backed by records.
func NewStore(records *recordstore.Store) *Store {
	return &Store{records: records}
}

// Append adds entry to the end of deviceID's stream and returns the new
// stream length. entry must be valid JSON.
func (s *Store) Append(ctx context.Context, deviceID string, entry json.RawMessage) (int, error) {
	if err := deviceid.Validate(deviceID); err != nil {
		return 0, err
	}
	if !json.Valid(entry) {
		return 0, fmt.Errorf("devicelog: entry for %s is not valid JSON", deviceID)
	}
	e := append(json.RawMessage(nil), entry...)

	stream, err := recordstore.Update(ctx, s.records, Key(deviceID), []json.RawMessage{},
		func(cur []json.RawMessage) ([]json.RawMessage, bool) {
			return append(cur, e), true
		})
	if err != nil {
		return 0, err
	}
	return len(stream), nil
}

// List returns deviceID's stream in arrival order, or an empty slice.
func (s *Store) List(ctx context.Context, deviceID string) []json.RawMessage {
	if deviceid.Validate(deviceID) != nil {
		return []json.RawMessage{}
	}
	stream, _ := recordstore.Read(ctx, s.records, Key(deviceID), []json.RawMessage{})
	if stream == nil {
		stream = []json.RawMessage{}
	}
	return stream
}
