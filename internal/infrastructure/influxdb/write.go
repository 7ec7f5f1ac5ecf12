package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Device activity events.
const (
	EventRegistered    = "registered"
	EventLog           = "log"
	EventConfigUpdated = "config_updated"
	EventConfigFetched = "config_fetched"
)

// activityMeasurement is the measurement every activity point is written to.
const activityMeasurement = "device_activity"

// WriteDeviceActivity records one event for a device. Counting points per
// (device_id, event) gives registration, log and config traffic over time.
//
// The write is non-blocking and silently dropped when not connected.
//
// Example:
//
//	client.WriteDeviceActivity("dev-1", influxdb.EventLog)
func (c *Client) WriteDeviceActivity(deviceID, event string) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(activityPoint(deviceID, event, time.Now()))
}

func activityPoint(deviceID, event string, at time.Time) *write.Point {
	return write.NewPoint(
		activityMeasurement,
		map[string]string{
			"device_id": deviceID,
			"event":     event,
		},
		map[string]interface{}{
			"count": 1,
		},
		at,
	)
}
