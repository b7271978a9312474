// Package logging provides structured logging for the relay node.
//
// It wraps Go's log/slog so every component logs with the same
// default fields (service, version, device_id).
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
//	logger := logging.New(cfg.Logging, version, cfg.Device.ID)
//	logger.Info("command executed", "command", "RELAY_ON")
//
// # Security
//
// Never log the device API key. The header dump in the request
// pipeline logs captured response headers only.
package logging
