// Package api implements the local HTTP REST API and WebSocket stream of
// a relay node.
//
// This package provides:
//   - Command execution and the command catalogue
//   - Live telemetry and runtime metrics
//   - Device settings (network values are masked on read)
//   - A WebSocket hub broadcasting every command result
//   - Middleware stack (request ID, logging, recovery, body limit, API key)
//
// # Security
//
// When api.api_key is set, every route except /api/v1/health requires
// the same value in the X-Api-Key header. Browsers cannot set headers on
// a WebSocket handshake, so /api/v1/ws also accepts it as the api_key
// query parameter.
//
// # Terminal Commands
//
// POST /api/v1/commands writes and flushes its response before a REBOOT
// or HARDRESET is carried out, so the caller sees the result even though
// the node restarts straight after.
package api
