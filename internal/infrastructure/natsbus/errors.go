package natsbus

import "errors"

var (
	// ErrDisabled indicates NATS is disabled in config.
	ErrDisabled = errors.New("natsbus: disabled in configuration")

	// ErrConnectionFailed indicates the initial connection attempt failed.
	ErrConnectionFailed = errors.New("natsbus: connection failed")

	// ErrNotConnected indicates the connection is closed or reconnecting.
	ErrNotConnected = errors.New("natsbus: not connected")

	// ErrInvalidSubject indicates an empty subject.
	ErrInvalidSubject = errors.New("natsbus: subject cannot be empty")
)
