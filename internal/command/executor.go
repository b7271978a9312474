package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// IntentApplier carries out terminal intents. Implemented by the system
// controller.
type IntentApplier interface {
	Apply(ctx context.Context, intent Intent) error
}

// Invocation is one request to run a command.
type Invocation struct {
	// ID correlates the invocation with its result. Generated when empty.
	ID string

	// Source names the transport the command arrived on (cloud, mqtt, nats, api).
	Source string

	Name  string
	Param string
}

// Result is the outcome of an invocation, as delivered to listeners.
type Result struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Result    string    `json:"result"`
	Intent    string    `json:"intent,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Listener observes every notified result. Listeners run with the
// executor lock held and must not block.
type Listener func(Result)

// Executor serialises command execution. Only one command runs at a
// time; callers block until the lock is free. After a terminal intent is
// applied the executor refuses further commands.
type Executor struct {
	mu        sync.Mutex
	registry  *Registry
	system    IntentApplier
	listeners []Listener
	halted    bool
	logger    Logger
	now       func() time.Time
}

// NewExecutor creates an executor over registry. system may be nil, in
// which case terminal intents are returned but not applied.
func NewExecutor(registry *Registry, system IntentApplier, logger Logger) *Executor {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Executor{
		registry: registry,
		system:   system,
		logger:   logger,
		now:      time.Now,
	}
}

// Subscribe registers a listener for every result. Call before the
// transports start.
func (e *Executor) Subscribe(l Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, l)
}

// Registry returns the dispatch table.
func (e *Executor) Registry() *Registry {
	return e.registry
}

// Execute runs inv and returns its intent.
//
// notify (optional) is called exactly once for a non-empty name, before
// any terminal intent is applied. An empty name returns ErrEmptyName
// without notifying. A terminal intent is applied through the system
// controller before Execute returns; its error, if any, is returned
// alongside the intent.
func (e *Executor) Execute(ctx context.Context, inv Invocation, notify NotifyFunc) (Intent, error) {
	return e.execute(ctx, inv, notify, nil)
}

// Run is Execute for transports that need the full Result. deliver is
// called once, with Intent set, after listeners and before any terminal
// intent is applied. It is not called when Run returns ErrEmptyName or
// ErrHalted.
func (e *Executor) Run(ctx context.Context, inv Invocation, deliver Listener) (Intent, error) {
	return e.execute(ctx, inv, nil, deliver)
}

func (e *Executor) execute(ctx context.Context, inv Invocation, notify NotifyFunc, deliver Listener) (Intent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted {
		return IntentNone, ErrHalted
	}
	if inv.Name == "" {
		e.logger.Warn("no command received", "source", inv.Source)
		return IntentNone, ErrEmptyName
	}
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}

	var notified *Result
	wrapped := func(cmd, param, result string) {
		res := Result{
			ID:        inv.ID,
			Source:    inv.Source,
			Command:   cmd,
			Param:     param,
			Result:    result,
			Timestamp: e.now().UTC(),
		}
		notified = &res
		if notify != nil {
			notify(cmd, param, result)
		}
	}

	start := e.now()
	intent := e.registry.Execute(ctx, inv.Name, inv.Param, wrapped)

	if notified != nil {
		if intent != IntentNone {
			notified.Intent = intent.String()
		}
		for _, l := range e.listeners {
			l(*notified)
		}
		if deliver != nil {
			deliver(*notified)
		}
		e.logger.Info("command executed",
			"id", inv.ID,
			"source", inv.Source,
			"command", notified.Command,
			"param", notified.Param,
			"result", notified.Result,
			"duration_ms", e.now().Sub(start).Milliseconds(),
		)
	}

	if !intent.Terminal() {
		return intent, nil
	}

	e.halted = true
	e.logger.Warn("terminal command accepted", "command", inv.Name, "intent", intent.String())

	if e.system == nil {
		return intent, nil
	}
	// Apply runs under e.mu so no other command can start while the
	// node erases or restarts; callers queued on the lock see ErrHalted.
	if err := e.system.Apply(ctx, intent); err != nil {
		return intent, fmt.Errorf("applying %s: %w", intent, err)
	}
	return intent, nil
}

// Halted reports whether a terminal intent has been accepted.
func (e *Executor) Halted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.halted
}
