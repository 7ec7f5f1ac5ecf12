// Package deviceconfig stores one configuration document per device.
//
// Documents are free-form JSON objects kept as raw JSON, so keys come back
// in the order they were sent. Set replaces the whole document and nothing
// is merged. Devices that have never been configured read the operational
// default {"email":"","log":true,"kill":false}, which is never persisted.
package deviceconfig

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nerrad567/mastercontrol/internal/deviceid"
	"github.com/nerrad567/mastercontrol/internal/recordstore"
)

// keyPrefix is the record store namespace for config documents.
const keyPrefix = "configs/"

// ErrNotObject is returned by Set and ValidateDocument when a document is
// not a JSON object.
var ErrNotObject = errors.New("deviceconfig: config must be a JSON object")

// Document is a device configuration: a raw JSON object.
type Document = json.RawMessage

// Default returns a fresh copy of the configuration served to devices that
// have none stored.
func Default() Document {
	return Document(`{"email":"","log":true,"kill":false}`)
}

// NotFoundDocument returns the marker served by the strict config lookup
// when a device has no stored configuration.
func NotFoundDocument() Document {
	return Document(`{"error":"No config found"}`)
}

// Key returns the record store key for a device's configuration.
func Key(deviceID string) string {
	return keyPrefix + deviceID
}

// ValidateDocument reports whether doc is a well-formed JSON object.
func ValidateDocument(doc Document) error {
	trimmed := bytes.TrimSpace(doc)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return ErrNotObject
	}
	return nil
}

// Store reads and writes device configurations.
type Store struct {
	records *recordstore.Store
}

// NewStore creates a config store backed by records.
func NewStore(records *recordstore.Store) *Store {
	return &Store{records: records}
}

// Get returns the stored document for deviceID. The second result is
// false when none is stored or it cannot be read as a JSON object.
func (s *Store) Get(ctx context.Context, deviceID string) (Document, bool) {
	if deviceid.Validate(deviceID) != nil {
		return nil, false
	}
	doc, ok := recordstore.Read[Document](ctx, s.records, Key(deviceID), nil)
	if !ok || ValidateDocument(doc) != nil {
		return nil, false
	}
	return doc, true
}

// GetOrDefault returns the stored document for deviceID or Default().
func (s *Store) GetOrDefault(ctx context.Context, deviceID string) Document {
	if doc, ok := s.Get(ctx, deviceID); ok {
		return doc
	}
	return Default()
}

// Set replaces the configuration for deviceID with doc.
func (s *Store) Set(ctx context.Context, deviceID string, doc Document) error {
	if err := deviceid.Validate(deviceID); err != nil {
		return err
	}
	if err := ValidateDocument(doc); err != nil {
		return fmt.Errorf("config for %s: %w", deviceID, err)
	}
	return s.records.Write(ctx, Key(deviceID), append(Document(nil), doc...))
}
