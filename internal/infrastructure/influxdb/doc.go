// Package influxdb provides InfluxDB connectivity for the relay node.
//
// It wraps the official influxdb-client-go v2 library. The node writes
// two measurements:
//   - relay_telemetry: periodic snapshots of the values sent as base headers
//   - relay_commands: one point per executed command
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	client.WriteTelemetry(deviceID, map[string]any{"rssi": -56}, time.Now())
//
// Writes are non-blocking and batched per batch_size / flush_interval.
// Asynchronous write failures are delivered to the SetOnError callback.
package influxdb
