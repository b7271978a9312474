package system

import (
	"fmt"
	"os"
	"sync"
	"syscall"
)

// ExecRestarter turns a restart request into a signal for the main run
// loop. Only the first request is delivered.
type ExecRestarter struct {
	once      sync.Once
	requested chan string
}

// NewExecRestarter creates a restarter with an unfired signal.
func NewExecRestarter() *ExecRestarter {
	return &ExecRestarter{requested: make(chan string, 1)}
}

// Restart implements Restarter.
func (r *ExecRestarter) Restart(reason string) {
	r.once.Do(func() {
		r.requested <- reason
		close(r.requested)
	})
}

// Requested yields the reason of the first restart request. The channel
// is closed after delivery.
func (r *ExecRestarter) Requested() <-chan string {
	return r.requested
}

// Reexec replaces the current process image with a fresh copy of the
// running binary, keeping arguments and environment. It only returns on
// failure.
func Reexec() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
		return fmt.Errorf("re-executing %s: %w", exe, err)
	}
	return nil
}
