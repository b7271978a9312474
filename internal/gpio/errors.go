package gpio

import "errors"

var (
	// ErrInvalidPin is returned by drivers asked to touch a pin outside
	// their configured set.
	ErrInvalidPin = errors.New("gpio: invalid pin")

	// ErrChipNotOpen is returned by Chip after Close.
	ErrChipNotOpen = errors.New("gpio: chip not open")

	// ErrInvalidMode is returned for modes other than Input and Output.
	ErrInvalidMode = errors.New("gpio: invalid mode")
)
