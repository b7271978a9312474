package relay

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-relay/internal/command"
)

// Executor runs commands. Satisfied by *command.Executor.
type Executor interface {
	Run(ctx context.Context, inv command.Invocation, deliver command.Listener) (command.Intent, error)
}

// Logger is the logging interface used by the bridges.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// dispatcher runs a CommandMessage and hands exactly one ResultMessage
// to deliver. For commands that run, deliver is called before any
// terminal intent is applied.
type dispatcher struct {
	deviceID string
	source   string
	executor Executor
	logger   Logger
	now      func() time.Time
}

func (d *dispatcher) run(ctx context.Context, msg CommandMessage, deliver func(ResultMessage)) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	source := msg.Source
	if source == "" {
		source = d.source
	}

	delivered := false
	intent, err := d.executor.Run(ctx, command.Invocation{
		ID:     msg.ID,
		Source: source,
		Name:   msg.Command,
		Param:  msg.Param,
	}, func(r command.Result) {
		delivered = true
		deliver(ResultMessage{
			CommandID: r.ID,
			DeviceID:  d.deviceID,
			Timestamp: r.Timestamp,
			Status:    ResultOK,
			Command:   r.Command,
			Param:     r.Param,
			Result:    r.Result,
			Intent:    r.Intent,
		})
	})

	switch {
	case delivered:
		if err != nil {
			d.logger.Error("terminal command failed", "id", msg.ID, "intent", intent.String(), "error", err)
		}
	case errors.Is(err, command.ErrEmptyName):
		deliver(rejected(d.deviceID, msg.ID, ErrCodeEmptyCommand, "command name is required", d.now()))
	case errors.Is(err, command.ErrHalted):
		deliver(rejected(d.deviceID, msg.ID, ErrCodeHalted, "node is restarting", d.now()))
	case err != nil:
		deliver(rejected(d.deviceID, msg.ID, ErrCodeApplyFailed, err.Error(), d.now()))
	}
}
