package gpio

import (
	"errors"
	"testing"
)

func TestMemory_OutputReadsBackLatch(t *testing.T) {
	m := NewMemory([]Pin{0, 2})

	if err := m.SetMode(2, Output); err != nil {
		t.Fatalf("SetMode() error = %v", err)
	}
	if err := m.Write(2, High); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(2)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if got != High {
		t.Errorf("Read() = %v, want HIGH", got)
	}
}

func TestMemory_InputReadsSimulatedLevel(t *testing.T) {
	m := NewMemory([]Pin{0})
	m.SetInput(0, High)

	if err := m.Write(0, Low); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, _ := m.Read(0) //nolint:errcheck // Pin is valid
	if got != High {
		t.Errorf("input line Read() = %v, want HIGH", got)
	}

	if mode, ok := m.Mode(0); !ok || mode != Input {
		t.Errorf("Mode(0) = %v, %v, want input", mode, ok)
	}
}

func TestMemory_Errors(t *testing.T) {
	m := NewMemory([]Pin{0})

	if err := m.Write(5, High); !errors.Is(err, ErrInvalidPin) {
		t.Errorf("Write(5) error = %v, want ErrInvalidPin", err)
	}
	if err := m.SetMode(0, Mode(9)); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("SetMode(bad) error = %v, want ErrInvalidMode", err)
	}

	fault := errors.New("line busy")
	m.InjectFault(0, fault)
	if _, err := m.Read(0); !errors.Is(err, fault) {
		t.Errorf("Read() with fault error = %v, want %v", err, fault)
	}
	m.InjectFault(0, nil)
	if _, err := m.Read(0); err != nil {
		t.Errorf("Read() after clearing fault error = %v", err)
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := m.Write(0, High); !errors.Is(err, ErrChipNotOpen) {
		t.Errorf("Write() after Close error = %v, want ErrChipNotOpen", err)
	}
}

func TestNewDriver(t *testing.T) {
	d, err := NewDriver("memory", "", []Pin{0})
	if err != nil {
		t.Fatalf("NewDriver(memory) error = %v", err)
	}
	if _, ok := d.(*Memory); !ok {
		t.Errorf("NewDriver(memory) = %T, want *Memory", d)
	}

	if _, err := NewDriver("sysfs", "", nil); err == nil {
		t.Error("NewDriver(sysfs) expected error")
	}
}
