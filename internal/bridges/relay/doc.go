// Package relay connects the command executor to the message buses.
//
// The MQTT bridge subscribes to graylogic/relay/{device_id}/command,
// runs each CommandMessage through the executor and publishes a
// ResultMessage to graylogic/relay/{device_id}/result. The NATS bridge
// answers requests on relay.{device_id}.command with the same
// ResultMessage as the reply. A HealthReporter publishes a retained
// HealthMessage with live telemetry to graylogic/relay/{device_id}/health.
//
// Results are published from the executor's notify callback, before a
// REBOOT or HARDRESET is carried out.
package relay
