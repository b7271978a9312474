// Package natsbus provides a NATS connection for request/reply command
// delivery to a relay node.
//
// A controller sends a command with nats.Conn.Request on
// relay.{device_id}.command and receives the result as the reply. Core
// NATS only; no JetStream persistence, since a queued reset or reboot
// must never replay after the fact.
package natsbus
