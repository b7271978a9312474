package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/command"
)

// ConfigStore is the part of the settings store a factory reset needs.
type ConfigStore interface {
	ForgetNetwork(ctx context.Context) (int64, error)
	Erase(ctx context.Context) (int64, error)
}

// Restarter restarts the node. Restart must not block.
type Restarter interface {
	Restart(reason string)
}

// Logger defines the logging interface used by the controller.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Delays are the settle times between terminal steps.
type Delays struct {
	Reboot      time.Duration
	ResetYield  time.Duration
	ResetForget time.Duration
	ResetErase  time.Duration
}

// DefaultDelays match the reference board's firmware.
var DefaultDelays = Delays{
	Reboot:      300 * time.Millisecond,
	ResetYield:  500 * time.Millisecond,
	ResetForget: 200 * time.Millisecond,
	ResetErase:  300 * time.Millisecond,
}

// Controller applies terminal intents.
type Controller struct {
	store     ConfigStore
	restarter Restarter
	delays    Delays
	logger    Logger
	sleep     func(time.Duration)
}

// NewController creates a controller. store may be nil on nodes without
// persisted configuration; the erase steps are then skipped.
func NewController(store ConfigStore, restarter Restarter, delays Delays, logger Logger) *Controller {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Controller{
		store:     store,
		restarter: restarter,
		delays:    delays,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Apply runs the sequence for intent. IntentNone is a no-op.
// The context only carries values: cancelling it does not stop a
// sequence once started.
func (c *Controller) Apply(ctx context.Context, intent command.Intent) error {
	ctx = context.WithoutCancel(ctx)

	switch intent {
	case command.IntentNone:
		return nil
	case command.IntentRestart:
		c.sleep(c.delays.Reboot)
		c.restart("reboot")
		return nil
	case command.IntentFactoryReset:
		return c.factoryReset(ctx)
	default:
		return fmt.Errorf("unsupported intent %q", intent)
	}
}

func (c *Controller) factoryReset(ctx context.Context) error {
	var errs []error

	c.sleep(c.delays.ResetYield)

	if c.store != nil {
		n, err := c.store.ForgetNetwork(ctx)
		if err != nil {
			c.logger.Error("forgetting network settings failed", "error", err)
			errs = append(errs, fmt.Errorf("forgetting network: %w", err))
		} else {
			c.logger.Info("network settings forgotten", "count", n)
		}
	}

	c.sleep(c.delays.ResetForget)

	if c.store != nil {
		n, err := c.store.Erase(ctx)
		if err != nil {
			c.logger.Error("erasing configuration failed", "error", err)
			errs = append(errs, fmt.Errorf("erasing configuration: %w", err))
		} else {
			c.logger.Info("configuration erased", "count", n)
		}
	}

	c.sleep(c.delays.ResetErase)
	c.restart("factory reset")

	return errors.Join(errs...)
}

func (c *Controller) restart(reason string) {
	c.logger.Warn("restarting node", "reason", reason)
	if c.restarter != nil {
		c.restarter.Restart(reason)
	}
}
