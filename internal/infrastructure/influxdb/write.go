package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names written by the relay node.
const (
	MeasurementTelemetry = "relay_telemetry"
	MeasurementCommand   = "relay_commands"
)

// CommandEvent is one executed command as stored in InfluxDB.
type CommandEvent struct {
	DeviceID string
	Source   string
	Command  string
	Param    string
	Result   string
	Time     time.Time
}

// WriteTelemetry writes one telemetry snapshot for deviceID.
// fields must hold numeric or string values.
func (c *Client) WriteTelemetry(deviceID string, fields map[string]any, ts time.Time) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementTelemetry,
		map[string]string{"device_id": deviceID},
		fields,
		ts,
	))
}

// WriteCommand writes one executed command. Command and source are
// tags; parameter and result text are fields.
func (c *Client) WriteCommand(ev CommandEvent) {
	if !c.IsConnected() {
		return
	}

	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	c.writeAPI.WritePoint(write.NewPoint(
		MeasurementCommand,
		map[string]string{
			"device_id": ev.DeviceID,
			"command":   ev.Command,
			"source":    ev.Source,
		},
		map[string]any{
			"param":  ev.Param,
			"result": ev.Result,
		},
		ts,
	))
}
