package mqtt

import (
	"fmt"
	"strings"
)

// Topics builds Master Control topic names under a configurable prefix.
//
//	topics := mqtt.NewTopics("mastercontrol")
//	topics.DeviceConfig("dev-1")
//	// Returns: "mastercontrol/devices/dev-1/config"
type Topics struct {
	Prefix string
}

// NewTopics returns a builder rooted at prefix.
func NewTopics(prefix string) Topics {
	return Topics{Prefix: prefix}
}

// DeviceConfig is the retained topic carrying a device's current config.
//
// Example: mastercontrol/devices/dev-1/config
func (t Topics) DeviceConfig(deviceID string) string {
	return fmt.Sprintf("%s/devices/%s/config", t.Prefix, deviceID)
}

// DeviceRegistered announces a first-time registration.
//
// Example: mastercontrol/devices/dev-1/registered
func (t Topics) DeviceRegistered(deviceID string) string {
	return fmt.Sprintf("%s/devices/%s/registered", t.Prefix, deviceID)
}

// DeviceLog is where a device may publish log entries instead of POSTing them.
//
// Example: mastercontrol/devices/dev-1/log
func (t Topics) DeviceLog(deviceID string) string {
	return fmt.Sprintf("%s/devices/%s/log", t.Prefix, deviceID)
}

// SystemStatus carries the backend's online/offline status and LWT.
//
// Example: mastercontrol/system/status
func (t Topics) SystemStatus() string {
	return fmt.Sprintf("%s/system/status", t.Prefix)
}

// AllDeviceLogs matches every device log topic.
//
// Pattern: mastercontrol/devices/+/log
func (t Topics) AllDeviceLogs() string {
	return fmt.Sprintf("%s/devices/+/log", t.Prefix)
}

// DeviceIDFromTopic extracts the device ID from a
// <prefix>/devices/<id>/<leaf> topic. ok is false when topic does not have
// that shape.
func (t Topics) DeviceIDFromTopic(topic string) (id string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.Prefix+"/devices/")
	if !found {
		return "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", false
	}
	return parts[0], true
}
