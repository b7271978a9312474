package command

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nerrad567/gray-logic-relay/internal/gpio"
)

// recordingDriver wraps a Memory driver and records every call.
type recordingDriver struct {
	*gpio.Memory
	mu    sync.Mutex
	calls []string
}

func newRecordingDriver() *recordingDriver {
	return &recordingDriver{Memory: gpio.NewMemory([]gpio.Pin{0, 2})}
}

func (d *recordingDriver) record(format string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *recordingDriver) SetMode(pin gpio.Pin, mode gpio.Mode) error {
	d.record("mode %d %s", pin, mode)
	return d.Memory.SetMode(pin, mode)
}

func (d *recordingDriver) Write(pin gpio.Pin, level gpio.Level) error {
	d.record("write %d %s", pin, level)
	return d.Memory.Write(pin, level)
}

func (d *recordingDriver) Read(pin gpio.Pin) (gpio.Level, error) {
	d.record("read %d", pin)
	return d.Memory.Read(pin)
}

func (d *recordingDriver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// notification is one captured notify call.
type notification struct {
	command, param, result string
}

// recorder collects notify calls.
type recorder struct {
	got []notification
}

func (r *recorder) notify(command, param, result string) {
	r.got = append(r.got, notification{command, param, result})
}

func (r *recorder) last() notification {
	if len(r.got) == 0 {
		return notification{}
	}
	return r.got[len(r.got)-1]
}

func newTestRegistry(driver gpio.Driver) *Registry {
	h := NewHandlers(driver, gpio.NewGuard(gpio.DefaultPins), 0, nil)
	r, err := NewRegistry(DefaultCommands(h), nil)
	if err != nil {
		panic(err)
	}
	return r
}

func run(r *Registry, name, param string) (notification, int, Intent) {
	rec := &recorder{}
	intent := r.Execute(context.Background(), name, param, rec.notify)
	return rec.last(), len(rec.got), intent
}

// sequence records ordered events across collaborators.
type sequence struct {
	mu     sync.Mutex
	events []string
}

func (s *sequence) add(e string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *sequence) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return strings.Join(s.events, ",")
}
