// Package logging provides structured logging for Master Control.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same handler, level filtering and default fields
// (service, version).
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("device registered", "device_id", id)
//	logger.Error("writing config failed", "error", err)
//
// Device log payloads are opaque and may contain anything a device chose
// to send; never log them in full at info level.
package logging
