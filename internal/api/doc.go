// Package api implements the HTTP API and WebSocket feed for Master Control.
//
// Devices use it to register, push log entries and fetch their
// configuration; operators use it to list devices, read logs and update
// configurations.
//
//	POST /api/register-device   {deviceId, email, ip, time}  -> {"status":"registered"}
//	GET  /api/devices                                        -> [record...]
//	POST /api/send-log          {deviceId, log}              -> {"status":"log saved"}
//	GET  /api/logs/{deviceId}                                -> [entry...]
//	POST /api/update-config     {deviceId, config}           -> {"status":"config updated"}
//	GET  /api/config/{deviceId}                              -> config or {"error":"No config found"}
//	GET  /api/configs/{deviceId}                             -> config or the default config
//	GET  /api/health, /api/metrics, /api/ws
//
// # Events
//
// Successful mutations fan out to up to three optional sinks: WebSocket
// clients subscribed to the matching channel, the MQTT bus (registrations
// and retained configs), and InfluxDB activity points. Sink failures are
// logged and never change the HTTP response.
//
// # Errors
//
// Malformed bodies and bad device IDs get a 400 with a structured error
// body. Storage write failures get a 500. Storage read failures are treated
// as "nothing stored".
package api
