// Package command implements the relay node's command dispatch engine.
//
// A command is a name and a text parameter. The Registry maps names to
// Handlers in a fixed, ordered table built once at startup; the Executor
// serialises every dispatch so at most one command touches the pins at a
// time, and hands terminal intents (restart, factory reset) to the
// system controller once the caller has been notified.
//
// Command set:
//
//	ON <pin>        drive pin HIGH          "PIN 2 -> HIGH"
//	OFF <pin>       drive pin LOW           "PIN 2 -> LOW"
//	RELAY_ON        drive relay pin HIGH    parameter ignored
//	RELAY_OFF       drive relay pin LOW     parameter ignored
//	STATUS <pin>    read pin level          "PIN 2 state: 1"
//	REBOOT          restart the node        "Device: rebooted!"
//	HARDRESET       erase config, restart   "Device: rebooted!"
//
// An invalid pin yields "Invalid pin" and never reaches the driver.
// An unknown name yields "Unknown command". An empty name is dropped
// without notification.
//
// Notify callbacks run on the dispatching goroutine while the executor
// lock is held. They must not call back into the same Executor.
package command
