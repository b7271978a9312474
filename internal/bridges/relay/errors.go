package relay

import "errors"

// Domain errors for the relay bridges.
var (
	// ErrInvalidPayload is returned when a command message cannot be decoded.
	ErrInvalidPayload = errors.New("relay: invalid command payload")

	// ErrBusy is returned when a command arrives while another is running.
	ErrBusy = errors.New("relay: command in progress")
)

// Error codes carried in rejected results.
const (
	ErrCodeInvalidPayload = "INVALID_PAYLOAD"
	ErrCodeEmptyCommand   = "EMPTY_COMMAND"
	ErrCodeHalted         = "NODE_RESTARTING"
	ErrCodeBusy           = "BUSY"
	ErrCodeApplyFailed    = "APPLY_FAILED"
)
