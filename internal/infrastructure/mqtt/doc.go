// Package mqtt connects Master Control to an MQTT broker.
//
// The broker is optional. When enabled, the backend:
//   - publishes each device's config, retained, to <prefix>/devices/<id>/config
//     whenever it is updated over HTTP
//   - announces first-time registrations on <prefix>/devices/<id>/registered
//   - accepts log entries published by devices on <prefix>/devices/<id>/log
//   - keeps a retained online/offline status (with LWT) on <prefix>/system/status
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishDeviceConfig("dev-1", []byte(`{"log":true}`))
//
// Integration tests need a broker on 127.0.0.1:1883:
//
//	go test -tags=integration ./internal/infrastructure/mqtt/...
package mqtt
