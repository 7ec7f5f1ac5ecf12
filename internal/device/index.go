package device

import (
	"context"

	"github.com/nerrad567/mastercontrol/internal/deviceid"
	"github.com/nerrad567/mastercontrol/internal/recordstore"
)

// IndexKey is the record store key of the device index.
const IndexKey = "index"

// Record is one registered device.
//
// Time is stored as supplied by the device (or stamped by the API when
// omitted); it is not parsed.
type Record struct {
	DeviceID string `json:"deviceId"`
	Email    string `json:"email"`
	IP       string `json:"ip"`
	Time     string `json:"time"`
}

// Logger defines the logging interface used by the Index.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Index is the ordered set of registered devices.
//
// All public methods are thread-safe within one process.
type Index struct {
	store  *recordstore.Store
	logger Logger
}

// NewIndex creates an Index persisted in store.
func NewIndex(store *recordstore.Store) *Index {
	return &Index{
		store:  store,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the index.
func (i *Index) SetLogger(logger Logger) {
	i.logger = logger
}

// Register appends rec to the index unless a record with the same
// DeviceID already exists. It reports whether rec was added.
func (i *Index) Register(ctx context.Context, rec Record) (bool, error) {
	if err := deviceid.Validate(rec.DeviceID); err != nil {
		return false, err
	}

	var added bool
	_, err := recordstore.Update(ctx, i.store, IndexKey, []Record{}, func(cur []Record) ([]Record, bool) {
		for _, r := range cur {
			if r.DeviceID == rec.DeviceID {
				return cur, false
			}
		}
		added = true
		return append(cur, rec), true
	})
	if err != nil {
		return false, err
	}

	if added {
		i.logger.Info("device registered", "device_id", rec.DeviceID, "ip", rec.IP)
	} else {
		i.logger.Debug("device already registered", "device_id", rec.DeviceID)
	}
	return added, nil
}

// List returns every registered device in registration order. A missing
// or unreadable index yields an empty, non-nil slice.
func (i *Index) List(ctx context.Context) []Record {
	records, _ := recordstore.Read(ctx, i.store, IndexKey, []Record{})
	if records == nil {
		records = []Record{}
	}
	return records
}

// Count returns the number of registered devices.
func (i *Index) Count(ctx context.Context) int {
	return len(i.List(ctx))
}
