package gpio

import "strconv"

// Pin is a GPIO line number. Values only come from Guard.ParsePin or
// configuration checked against the allow-list.
type Pin int

func (p Pin) String() string {
	return strconv.Itoa(int(p))
}

// Level is a logic level.
type Level int

const (
	Low  Level = 0
	High Level = 1
)

func (l Level) String() string {
	if l == High {
		return "HIGH"
	}
	return "LOW"
}

// Mode is the direction a line is configured for.
type Mode int

const (
	Input Mode = iota
	Output
)

func (m Mode) String() string {
	switch m {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// Driver performs the hardware side of pin access.
type Driver interface {
	// SetMode configures the line direction.
	SetMode(pin Pin, mode Mode) error

	// Write drives an output line.
	Write(pin Pin, level Level) error

	// Read returns the current level of the line.
	Read(pin Pin) (Level, error)

	Close() error
}
