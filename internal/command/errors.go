package command

import "errors"

var (
	// ErrDuplicateCommand is returned by NewRegistry when two commands
	// share a name.
	ErrDuplicateCommand = errors.New("command: duplicate name")

	// ErrInvalidCommand is returned by NewRegistry for an empty name or
	// nil handler.
	ErrInvalidCommand = errors.New("command: invalid definition")

	// ErrEmptyName is returned by the Executor when asked to run a
	// command with no name. The command is dropped without notification.
	ErrEmptyName = errors.New("command: empty name")

	// ErrHalted is returned by the Executor after a restart or factory
	// reset has been applied.
	ErrHalted = errors.New("command: executor halted")
)
