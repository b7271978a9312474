// Package gpio guards and drives the relay node's GPIO lines.
//
// Every pin number that arrives from outside the process passes through
// a Guard before it reaches a Driver. The Guard holds the allow-list of
// controllable pins (on the reference board: 0 and 2) and is the only
// way to turn parameter text into a Pin.
//
// Two drivers are provided:
//   - Memory: latches levels in memory, for tests and simulation
//   - Chip: the Linux GPIO character device via go-gpiocdev
//
// Drivers are not safe for concurrent use on their own; the command
// executor serialises access.
package gpio
