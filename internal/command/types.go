package command

import (
	"context"
	"unicode/utf8"
)

// Command names understood by the default registry.
const (
	NameOn        = "ON"
	NameOff       = "OFF"
	NameRelayOn   = "RELAY_ON"
	NameRelayOff  = "RELAY_OFF"
	NameStatus    = "STATUS"
	NameReboot    = "REBOOT"
	NameHardReset = "HARDRESET"
)

// Fixed result texts.
const (
	ResultInvalidPin     = "Invalid pin"
	ResultUnknownCommand = "Unknown command"
	ResultRebooted       = "Device: rebooted!"
)

// MaxResultLen is the longest result text in bytes.
const MaxResultLen = 127

// NotifyFunc receives the outcome of a command. It is called at most
// once per dispatch, after the handler has finished its work and before
// any terminal intent is applied.
type NotifyFunc func(command, param, result string)

// Intent tells the caller what must happen after a command returns.
type Intent int

const (
	// IntentNone means the node carries on.
	IntentNone Intent = iota

	// IntentRestart asks for a process restart.
	IntentRestart

	// IntentFactoryReset asks for network credentials and device
	// configuration to be erased, then a restart.
	IntentFactoryReset
)

func (i Intent) String() string {
	switch i {
	case IntentNone:
		return "none"
	case IntentRestart:
		return "restart"
	case IntentFactoryReset:
		return "factory_reset"
	default:
		return "unknown"
	}
}

// Terminal reports whether the intent ends the current process.
func (i Intent) Terminal() bool {
	return i == IntentRestart || i == IntentFactoryReset
}

// Handler executes one named command.
type Handler interface {
	Execute(ctx context.Context, param string, notify NotifyFunc) Intent
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, param string, notify NotifyFunc) Intent

// Execute calls f.
func (f HandlerFunc) Execute(ctx context.Context, param string, notify NotifyFunc) Intent {
	return f(ctx, param, notify)
}

// Command is one entry of the dispatch table.
type Command struct {
	Name        string
	Description string
	Handler     Handler
}

// boundResult truncates s to MaxResultLen bytes without splitting a rune.
func boundResult(s string) string {
	if len(s) <= MaxResultLen {
		return s
	}
	cut := MaxResultLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
