// Package influxdb writes device activity to InfluxDB v2.
//
// Every registration, log entry and config change handled by the API
// becomes a point in the device_activity measurement, tagged with
// device_id and event and carrying a count=1 field. Summing count over a
// window gives per-device traffic without touching the record store.
//
// The integration is optional and disabled by default:
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteDeviceActivity("dev-1", influxdb.EventRegistered)
//
// Writes are batched and non-blocking. Failures are reported through
// SetOnError.
package influxdb
