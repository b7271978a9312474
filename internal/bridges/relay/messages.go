package relay

import (
	"encoding/json"
	"fmt"
	"time"
)

// CommandMessage asks the node to run one command.
// Topic: graylogic/relay/{device_id}/command
type CommandMessage struct {
	// ID correlates the command with its result. Generated when empty.
	ID string `json:"id"`

	// Command is the command name (e.g. "ON", "STATUS").
	Command string `json:"command"`

	// Param is the command parameter, usually a pin number.
	Param string `json:"param"`

	// Source names the sender. Defaults to the transport name.
	Source string `json:"source,omitempty"`

	// Timestamp is when the command was issued.
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// ResultStatus tells whether a command ran.
type ResultStatus string

const (
	// ResultOK means the command ran and Result holds its text.
	ResultOK ResultStatus = "ok"

	// ResultRejected means the command did not run; see Error.
	ResultRejected ResultStatus = "rejected"
)

// ResultMessage reports the outcome of a CommandMessage.
// Topic: graylogic/relay/{device_id}/result
type ResultMessage struct {
	CommandID string       `json:"command_id"`
	DeviceID  string       `json:"device_id"`
	Timestamp time.Time    `json:"timestamp"`
	Status    ResultStatus `json:"status"`

	Command string `json:"command,omitempty"`
	Param   string `json:"param,omitempty"`
	Result  string `json:"result,omitempty"`

	// Intent is "restart" or "factory_reset" for terminal commands.
	Intent string `json:"intent,omitempty"`

	Error *ResultError `json:"error,omitempty"`
}

// ResultError explains a rejected command.
type ResultError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthStatus is the operational status of the node.
type HealthStatus string

const (
	HealthOnline     HealthStatus = "online"
	HealthRestarting HealthStatus = "restarting"
	HealthStopping   HealthStatus = "stopping"
)

// HealthMessage reports node health with live telemetry.
// Topic: graylogic/relay/{device_id}/health
// QoS: 1, Retained: Yes
type HealthMessage struct {
	DeviceID      string       `json:"device_id"`
	Timestamp     time.Time    `json:"timestamp"`
	Status        HealthStatus `json:"status"`
	Version       string       `json:"version"`
	UptimeSeconds int64        `json:"uptime_seconds"`

	ChipID     uint32 `json:"chip_id"`
	MAC        string `json:"mac"`
	RSSI       int    `json:"rssi"`
	FreeHeap   uint64 `json:"free_heap"`
	FreeSketch uint64 `json:"free_sketch"`
	FlashSize  uint64 `json:"flash_size"`
	FlashReal  uint64 `json:"flash_real"`

	// Transports lists which command transports are connected.
	Transports map[string]bool `json:"transports,omitempty"`
}

// decodeCommand parses a CommandMessage payload.
func decodeCommand(payload []byte) (CommandMessage, error) {
	var msg CommandMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return CommandMessage{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return msg, nil
}

func rejected(deviceID, commandID, code, message string, now time.Time) ResultMessage {
	return ResultMessage{
		CommandID: commandID,
		DeviceID:  deviceID,
		Timestamp: now.UTC(),
		Status:    ResultRejected,
		Error:     &ResultError{Code: code, Message: message},
	}
}
