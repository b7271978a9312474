package command

import (
	"context"
	"fmt"
	"slices"
)

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the immutable, ordered dispatch table.
// Safe for concurrent use; handlers themselves are not, see Executor.
type Registry struct {
	commands []Command
	logger   Logger
}

// NewRegistry builds a registry from commands in dispatch order.
// Every name must be non-empty and unique, and every handler non-nil.
func NewRegistry(commands []Command, logger Logger) (*Registry, error) {
	if logger == nil {
		logger = noopLogger{}
	}

	seen := make(map[string]bool, len(commands))
	for i, c := range commands {
		if c.Name == "" || c.Handler == nil {
			return nil, fmt.Errorf("%w: entry %d", ErrInvalidCommand, i)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCommand, c.Name)
		}
		seen[c.Name] = true
	}

	return &Registry{
		commands: slices.Clone(commands),
		logger:   logger,
	}, nil
}

// Execute dispatches name with param.
//
// An empty name is logged and dropped: notify is not called. A name with
// no exact, case-sensitive match notifies "Unknown command". Otherwise
// the first matching handler runs and its intent is returned.
func (r *Registry) Execute(ctx context.Context, name, param string, notify NotifyFunc) Intent {
	if name == "" {
		r.logger.Warn("no command received")
		return IntentNone
	}

	for _, c := range r.commands {
		if c.Name == name {
			return c.Handler.Execute(ctx, param, notify)
		}
	}

	r.logger.Warn("unknown command", "command", name)
	emit(notify, name, param, ResultUnknownCommand)
	return IntentNone
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (Command, bool) {
	for _, c := range r.commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Names returns command names in dispatch order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.commands))
	for i, c := range r.commands {
		names[i] = c.Name
	}
	return names
}

// Commands returns a copy of the dispatch table.
func (r *Registry) Commands() []Command {
	return slices.Clone(r.commands)
}
