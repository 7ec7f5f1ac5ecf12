package api

import (
	"encoding/json"

	"github.com/nerrad567/mastercontrol/internal/device"
	"github.com/nerrad567/mastercontrol/internal/deviceconfig"
	"github.com/nerrad567/mastercontrol/internal/infrastructure/influxdb"
)

// WebSocket channels.
const (
	ChannelDeviceRegistered    = "device.registered"
	ChannelDeviceLog           = "device.log"
	ChannelDeviceConfigUpdated = "device.config_updated"
)

// LogEvent is the payload broadcast on ChannelDeviceLog.
type LogEvent struct {
	DeviceID string          `json:"deviceId"`
	Entry    json.RawMessage `json:"entry"`
	Count    int             `json:"count"`
}

// ConfigEvent is the payload broadcast on ChannelDeviceConfigUpdated.
type ConfigEvent struct {
	DeviceID string                `json:"deviceId"`
	Config   deviceconfig.Document `json:"config"`
}

// deviceRegistered fans out a first-time registration.
func (s *Server) deviceRegistered(rec device.Record) {
	s.hub.Broadcast(ChannelDeviceRegistered, rec)
	s.recordActivity(rec.DeviceID, influxdb.EventRegistered)

	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("encoding registration event failed", "device_id", rec.DeviceID, "error", err)
		return
	}
	if err := s.publisher.PublishDeviceRegistered(rec.DeviceID, payload); err != nil {
		s.logger.Warn("publishing registration failed", "device_id", rec.DeviceID, "error", err)
	}
}

// LogAppended fans out a stored log entry. count is the stream length after
// the append. It is exported for log sources other than HTTP, such as the
// MQTT ingest.
func (s *Server) LogAppended(deviceID string, entry json.RawMessage, count int) {
	s.hub.Broadcast(ChannelDeviceLog, LogEvent{DeviceID: deviceID, Entry: entry, Count: count})
	s.recordActivity(deviceID, influxdb.EventLog)
}

// configUpdated fans out a replaced configuration. The MQTT copy is
// retained so devices that connect later receive it immediately.
func (s *Server) configUpdated(deviceID string, doc deviceconfig.Document) {
	s.hub.Broadcast(ChannelDeviceConfigUpdated, ConfigEvent{DeviceID: deviceID, Config: doc})
	s.recordActivity(deviceID, influxdb.EventConfigUpdated)

	if s.publisher == nil {
		return
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		s.logger.Error("encoding config event failed", "device_id", deviceID, "error", err)
		return
	}
	if err := s.publisher.PublishDeviceConfig(deviceID, payload); err != nil {
		s.logger.Warn("publishing config failed", "device_id", deviceID, "error", err)
	}
}

func (s *Server) recordActivity(deviceID, event string) {
	if s.activity != nil {
		s.activity.WriteDeviceActivity(deviceID, event)
	}
}
