// Package ingest feeds device log entries published over MQTT into the
// Log Store.
//
// Devices that hold a broker connection may publish to
// <prefix>/devices/<id>/log instead of calling POST /api/send-log. Each
// payload must be a JSON value and is stored exactly as an HTTP log entry.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nerrad567/mastercontrol/internal/deviceid"
	"github.com/nerrad567/mastercontrol/internal/devicelog"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/mqtt"
)

// Errors returned by HandleMessage.
var (
	ErrEmptyPayload = errors.New("empty payload")
	ErrInvalidJSON  = errors.New("payload is not valid JSON")
)

// Subscriber is the part of the MQTT client the ingestor needs.
// *mqtt.Client satisfies it.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Topics() mqtt.Topics
	QoS() byte
}

// AppendFunc is called after an entry is stored. count is the stream
// length after the append.
type AppendFunc func(deviceID string, entry json.RawMessage, count int)

// Logger defines the logging interface used by the Ingestor.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Ingestor subscribes to device log topics and appends what arrives.
type Ingestor struct {
	sub      Subscriber
	logs     *devicelog.Store
	onAppend AppendFunc
	logger   Logger
	ctx      context.Context
}

// New creates an Ingestor. Nothing is subscribed until Start.
func New(sub Subscriber, logs *devicelog.Store) *Ingestor {
	return &Ingestor{
		sub:    sub,
		logs:   logs,
		logger: noopLogger{},
		ctx:    context.Background(),
	}
}

// SetLogger sets the logger.
func (i *Ingestor) SetLogger(logger Logger) {
	i.logger = logger
}

// SetOnAppend registers the callback run after each stored entry.
func (i *Ingestor) SetOnAppend(fn AppendFunc) {
	i.onAppend = fn
}

// Start subscribes to every device's log topic. ctx bounds the store
// writes made by later messages.
func (i *Ingestor) Start(ctx context.Context) error {
	i.ctx = ctx
	topic := i.sub.Topics().AllDeviceLogs()
	if err := i.sub.Subscribe(topic, i.sub.QoS(), i.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	i.logger.Info("device log ingest started", "topic", topic)
	return nil
}

// HandleMessage stores one MQTT log message. Topics that are not device
// log topics are ignored. Errors are reported to the MQTT client, which
// logs them.
func (i *Ingestor) HandleMessage(topic string, payload []byte) error {
	topics := i.sub.Topics()
	deviceID, ok := topics.DeviceIDFromTopic(topic)
	if !ok || topic != topics.DeviceLog(deviceID) {
		i.logger.Debug("ignoring non-log topic", "topic", topic)
		return nil
	}
	if err := deviceid.Validate(deviceID); err != nil {
		return err
	}
	if len(payload) == 0 {
		return fmt.Errorf("device %s: %w", deviceID, ErrEmptyPayload)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("device %s: %w", deviceID, ErrInvalidJSON)
	}

	// The entry is handed to onAppend, which may keep it.
	entry := json.RawMessage(append([]byte(nil), payload...))
	n, err := i.logs.Append(i.ctx, deviceID, entry)
	if err != nil {
		return fmt.Errorf("storing log for %s: %w", deviceID, err)
	}
	i.logger.Debug("device log ingested", "device_id", deviceID, "count", n)

	if i.onAppend != nil {
		i.onAppend(deviceID, entry, n)
	}
	return nil
}
