package gpio

import (
	"errors"
	"fmt"
	"sync"

	gpiod "github.com/warthog618/go-gpiocdev"
)

// consumer is the label shown by gpioinfo for lines we hold.
const consumer = "graylogic-relay"

// Chip is a Driver backed by a Linux GPIO character device.
// Pins are line offsets on the chip. Lines are requested lazily on first
// use and held until Close.
type Chip struct {
	mu      sync.Mutex
	name    string
	chip    *gpiod.Chip
	allowed map[Pin]bool
	lines   map[Pin]*chipLine
}

type chipLine struct {
	line *gpiod.Line
	mode Mode
}

// OpenChip opens the named chip (e.g. "gpiochip0") serving the given pins.
func OpenChip(name string, pins []Pin) (*Chip, error) {
	c, err := gpiod.NewChip(name, gpiod.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("opening chip %s: %w", name, err)
	}

	allowed := make(map[Pin]bool, len(pins))
	for _, p := range pins {
		allowed[p] = true
	}

	return &Chip{
		name:    name,
		chip:    c,
		allowed: allowed,
		lines:   make(map[Pin]*chipLine),
	}, nil
}

// Name returns the chip name.
func (c *Chip) Name() string {
	return c.name
}

func (c *Chip) check(pin Pin) error {
	if c.chip == nil {
		return ErrChipNotOpen
	}
	if !c.allowed[pin] {
		return fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	return nil
}

// SetMode implements Driver. Switching a line to output keeps its
// current level so a restart doesn't glitch the relay.
func (c *Chip) SetMode(pin Pin, mode Mode) error {
	if mode != Input && mode != Output {
		return fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(pin); err != nil {
		return err
	}
	return c.configure(pin, mode)
}

// configure (re)requests the line in the given mode. Caller holds mu.
func (c *Chip) configure(pin Pin, mode Mode) error {
	existing := c.lines[pin]
	if existing != nil && existing.mode == mode {
		return nil
	}

	if mode == Input {
		if existing != nil {
			existing.line.Close() //nolint:errcheck // Re-requested below
			delete(c.lines, pin)
		}
		line, err := c.chip.RequestLine(int(pin), gpiod.AsInput)
		if err != nil {
			return fmt.Errorf("requesting pin %d as input: %w", pin, err)
		}
		c.lines[pin] = &chipLine{line: line, mode: Input}
		return nil
	}

	current, err := c.currentValue(pin, existing)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.line.Close() //nolint:errcheck // Re-requested below
		delete(c.lines, pin)
	}

	line, err := c.chip.RequestLine(int(pin), gpiod.AsOutput(current))
	if err != nil {
		return fmt.Errorf("requesting pin %d as output: %w", pin, err)
	}
	c.lines[pin] = &chipLine{line: line, mode: Output}
	return nil
}

// currentValue reads the level of pin before it becomes an output.
func (c *Chip) currentValue(pin Pin, existing *chipLine) (int, error) {
	if existing != nil {
		v, err := existing.line.Value()
		if err != nil {
			return 0, fmt.Errorf("reading pin %d: %w", pin, err)
		}
		return v, nil
	}

	probe, err := c.chip.RequestLine(int(pin), gpiod.AsInput)
	if err != nil {
		return 0, fmt.Errorf("reading pin %d state: %w", pin, err)
	}
	v, err := probe.Value()
	probe.Close() //nolint:errcheck // Probe line only
	if err != nil {
		return 0, fmt.Errorf("reading pin %d value: %w", pin, err)
	}
	return v, nil
}

// Write implements Driver. An unrequested line is claimed as an output.
func (c *Chip) Write(pin Pin, level Level) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(pin); err != nil {
		return err
	}
	if c.lines[pin] == nil {
		if err := c.configure(pin, Output); err != nil {
			return err
		}
	}

	if err := c.lines[pin].line.SetValue(int(level)); err != nil {
		return fmt.Errorf("writing pin %d: %w", pin, err)
	}
	return nil
}

// Read implements Driver. An unrequested line is claimed as an input.
func (c *Chip) Read(pin Pin) (Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.check(pin); err != nil {
		return Low, err
	}
	if c.lines[pin] == nil {
		if err := c.configure(pin, Input); err != nil {
			return Low, err
		}
	}

	v, err := c.lines[pin].line.Value()
	if err != nil {
		return Low, fmt.Errorf("reading pin %d: %w", pin, err)
	}
	if v != 0 {
		return High, nil
	}
	return Low, nil
}

// Close releases every line and the chip.
func (c *Chip) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	for pin, l := range c.lines {
		if err := l.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing pin %d: %w", pin, err))
		}
	}
	c.lines = make(map[Pin]*chipLine)

	if c.chip != nil {
		if err := c.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing chip %s: %w", c.name, err))
		}
		c.chip = nil
	}

	return errors.Join(errs...)
}

// NewDriver builds the driver named in configuration: "memory" or "chip".
func NewDriver(kind, chipName string, pins []Pin) (Driver, error) {
	switch kind {
	case "memory":
		return NewMemory(pins), nil
	case "chip":
		return OpenChip(chipName, pins)
	default:
		return nil, fmt.Errorf("unknown gpio driver %q", kind)
	}
}
