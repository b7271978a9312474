package gpio

import (
	"fmt"
	"sync"
)

// Memory is a Driver that keeps line state in memory.
//
// Output lines read back the last written level. Input lines read the
// level set with SetInput, which lets a simulation stand in for wiring.
// Every line starts as an Input at Low.
type Memory struct {
	mu     sync.Mutex
	pins   map[Pin]*memoryLine
	faults map[Pin]error
	closed bool
}

type memoryLine struct {
	mode   Mode
	output Level
	input  Level
}

// NewMemory creates a Memory driver serving the given pins.
func NewMemory(pins []Pin) *Memory {
	m := &Memory{
		pins:   make(map[Pin]*memoryLine, len(pins)),
		faults: make(map[Pin]error),
	}
	for _, p := range pins {
		m.pins[p] = &memoryLine{mode: Input}
	}
	return m
}

func (m *Memory) line(pin Pin) (*memoryLine, error) {
	if m.closed {
		return nil, ErrChipNotOpen
	}
	if err := m.faults[pin]; err != nil {
		return nil, err
	}
	l, ok := m.pins[pin]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPin, pin)
	}
	return l, nil
}

// SetMode implements Driver.
func (m *Memory) SetMode(pin Pin, mode Mode) error {
	if mode != Input && mode != Output {
		return fmt.Errorf("%w: %d", ErrInvalidMode, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.line(pin)
	if err != nil {
		return err
	}
	l.mode = mode
	return nil
}

// Write implements Driver. Writes to an input line update the output
// latch only, as on real hardware.
func (m *Memory) Write(pin Pin, level Level) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.line(pin)
	if err != nil {
		return err
	}
	l.output = level
	return nil
}

// Read implements Driver.
func (m *Memory) Read(pin Pin) (Level, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.line(pin)
	if err != nil {
		return Low, err
	}
	if l.mode == Output {
		return l.output, nil
	}
	return l.input, nil
}

// SetInput sets the level an input line reads.
func (m *Memory) SetInput(pin Pin, level Level) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if l, ok := m.pins[pin]; ok {
		l.input = level
	}
}

// Mode returns the configured direction of pin.
func (m *Memory) Mode(pin Pin) (Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.pins[pin]
	if !ok {
		return Input, false
	}
	return l.mode, true
}

// InjectFault makes every later operation on pin fail with err.
// A nil err clears the fault.
func (m *Memory) InjectFault(pin Pin, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.faults, pin)
		return
	}
	m.faults[pin] = err
}

// Close implements Driver.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
