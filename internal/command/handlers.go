package command

import (
	"context"
	"fmt"

	"github.com/nerrad567/gray-logic-relay/internal/gpio"
)

// Handlers builds the pin and device handlers over one driver.
type Handlers struct {
	driver     gpio.Driver
	guard      *gpio.Guard
	relayParam string
	logger     Logger
}

// NewHandlers creates the handler set. relayPin must be in the guard's
// allow-list; the relay handlers pass it through the guard like any
// other parameter.
func NewHandlers(driver gpio.Driver, guard *gpio.Guard, relayPin gpio.Pin, logger Logger) *Handlers {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Handlers{
		driver:     driver,
		guard:      guard,
		relayParam: relayPin.String(),
		logger:     logger,
	}
}

// RelayParam is the parameter the relay handlers substitute for the
// caller's.
func (h *Handlers) RelayParam() string {
	return h.relayParam
}

// SetPin drives the pin named by the parameter to level.
func (h *Handlers) SetPin(name string, level gpio.Level) Handler {
	return HandlerFunc(func(_ context.Context, param string, notify NotifyFunc) Intent {
		emit(notify, name, param, h.setPinState(param, level))
		return IntentNone
	})
}

// SetRelay drives the relay pin to level. The caller's parameter is
// ignored and the relay pin is reported in its place.
func (h *Handlers) SetRelay(name string, level gpio.Level) Handler {
	return HandlerFunc(func(_ context.Context, _ string, notify NotifyFunc) Intent {
		emit(notify, name, h.relayParam, h.setPinState(h.relayParam, level))
		return IntentNone
	})
}

// Status reads the level of the pin named by the parameter.
//
// The pin is put in output mode before the read. The relay board only
// wires outputs, and switching a relay line to input would let it float;
// reading an output returns the latched level. This means STATUS cannot
// observe an external input signal.
func (h *Handlers) Status(name string) Handler {
	return HandlerFunc(func(_ context.Context, param string, notify NotifyFunc) Intent {
		emit(notify, name, param, h.readPinState(param))
		return IntentNone
	})
}

// Reboot notifies success and asks for a restart.
func (h *Handlers) Reboot(name string) Handler {
	return HandlerFunc(func(_ context.Context, param string, notify NotifyFunc) Intent {
		emit(notify, name, param, ResultRebooted)
		return IntentRestart
	})
}

// HardReset notifies success and asks for a factory reset. The
// notification goes out first: once configuration is erased the node
// can no longer report.
func (h *Handlers) HardReset(name string) Handler {
	return HandlerFunc(func(_ context.Context, param string, notify NotifyFunc) Intent {
		emit(notify, name, param, ResultRebooted)
		return IntentFactoryReset
	})
}

func (h *Handlers) setPinState(param string, level gpio.Level) string {
	pin, ok := h.guard.ParsePin(param)
	if !ok {
		return ResultInvalidPin
	}

	if err := h.driver.SetMode(pin, gpio.Output); err != nil {
		return h.pinError(pin, err)
	}
	if err := h.driver.Write(pin, level); err != nil {
		return h.pinError(pin, err)
	}

	return fmt.Sprintf("PIN %d -> %s", pin, level)
}

func (h *Handlers) readPinState(param string) string {
	pin, ok := h.guard.ParsePin(param)
	if !ok {
		return ResultInvalidPin
	}

	if err := h.driver.SetMode(pin, gpio.Output); err != nil {
		return h.pinError(pin, err)
	}
	level, err := h.driver.Read(pin)
	if err != nil {
		return h.pinError(pin, err)
	}

	return fmt.Sprintf("PIN %d state: %d", pin, level)
}

func (h *Handlers) pinError(pin gpio.Pin, err error) string {
	h.logger.Error("gpio operation failed", "pin", int(pin), "error", err)
	return fmt.Sprintf("PIN %d error: %v", pin, err)
}

// emit bounds the result and calls notify when set.
func emit(notify NotifyFunc, name, param, result string) {
	if notify != nil {
		notify(name, param, boundResult(result))
	}
}

// DefaultCommands returns the node's command table in dispatch order.
func DefaultCommands(h *Handlers) []Command {
	return []Command{
		{Name: NameOn, Description: "Drive a pin HIGH", Handler: h.SetPin(NameOn, gpio.High)},
		{Name: NameOff, Description: "Drive a pin LOW", Handler: h.SetPin(NameOff, gpio.Low)},
		{Name: NameRelayOn, Description: "Switch the relay on", Handler: h.SetRelay(NameRelayOn, gpio.High)},
		{Name: NameRelayOff, Description: "Switch the relay off", Handler: h.SetRelay(NameRelayOff, gpio.Low)},
		{Name: NameStatus, Description: "Read a pin level", Handler: h.Status(NameStatus)},
		{Name: NameReboot, Description: "Restart the node", Handler: h.Reboot(NameReboot)},
		{Name: NameHardReset, Description: "Erase configuration and restart", Handler: h.HardReset(NameHardReset)},
	}
}
