package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-relay/internal/command"
	"github.com/nerrad567/gray-logic-relay/internal/request"
)

// Cloud command headers.
const (
	HeaderCommand       = "X-COMMAND"
	HeaderCommandParam  = "X-COMMAND-PARAM"
	HeaderCommandResult = "X-COMMAND-RESULT"
	HeaderCommandID     = "X-COMMAND-ID"
)

// Source is the invocation source recorded for cloud commands.
const Source = "cloud"

// DefaultInterval is used when no poll interval is configured.
const DefaultInterval = 10 * time.Second

// Sender performs outbound requests. Satisfied by *request.Pipeline.
type Sender interface {
	Send(ctx context.Context, req request.Request, onComplete request.CompleteFunc) int
}

// Executor runs commands. Satisfied by *command.Executor.
type Executor interface {
	Execute(ctx context.Context, inv command.Invocation, notify command.NotifyFunc) (command.Intent, error)
}

// Logger is the logging interface used by the agent.
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

// Config holds the cloud endpoints and timing.
type Config struct {
	PollURL   string
	ReportURL string

	// Interval between poll cycles. Zero means DefaultInterval.
	Interval time.Duration

	// Timeout bounds each exchange. Zero means request.DefaultTimeout.
	Timeout time.Duration
}

// Report is the JSON body sent to the report URL.
type Report struct {
	ID        string    `json:"id"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Result    string    `json:"result"`
	Timestamp time.Time `json:"timestamp"`
}

// Agent runs the poll loop.
type Agent struct {
	cfg      Config
	sender   Sender
	executor Executor
	logger   Logger
	now      func() time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates an agent. Call Start to begin polling.
func New(cfg Config, sender Sender, executor Executor, logger Logger) (*Agent, error) {
	if cfg.PollURL == "" || cfg.ReportURL == "" {
		return nil, ErrNotConfigured
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Agent{
		cfg:      cfg,
		sender:   sender,
		executor: executor,
		logger:   logger,
		now:      time.Now,
		done:     make(chan struct{}),
	}, nil
}

// Start begins polling in the background.
func (a *Agent) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.pollLoop(ctx)
}

// Stop ends the poll loop and waits for the current cycle. Safe to call
// more than once.
func (a *Agent) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.wg.Wait()
	})
}

func (a *Agent) pollLoop(ctx context.Context) {
	defer a.wg.Done()

	ticker := time.NewTicker(a.cfg.Interval)
	defer ticker.Stop()

	for {
		intent, err := a.PollOnce(ctx)
		switch {
		case errors.Is(err, command.ErrHalted):
			return
		case err != nil:
			a.logger.Warn("poll cycle failed", "error", err)
		}
		if intent.Terminal() {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case <-ticker.C:
		}
	}
}

// PollOnce runs one poll cycle: fetch, execute if a command is pending,
// report. It returns the command's intent.
func (a *Agent) PollOnce(ctx context.Context) (command.Intent, error) {
	var pending struct {
		status             int
		id, name, param string
	}

	a.sender.Send(ctx, request.Request{
		URL:     a.cfg.PollURL,
		Method:  http.MethodGet,
		Collect: []string{HeaderCommand, HeaderCommandParam, HeaderCommandID},
		Timeout: a.cfg.Timeout,
	}, func(out request.Outcome) {
		pending.status = out.Status
		pending.name, _ = request.Lookup(out.Headers, HeaderCommand)
		pending.param, _ = request.Lookup(out.Headers, HeaderCommandParam)
		pending.id, _ = request.Lookup(out.Headers, HeaderCommandID)
	})

	if pending.status != http.StatusOK {
		if text := request.StatusText(pending.status); text != "" {
			return command.IntentNone, fmt.Errorf("%w: %s", ErrPollFailed, text)
		}
		return command.IntentNone, fmt.Errorf("%w: status %d", ErrPollFailed, pending.status)
	}
	if pending.name == "" {
		a.logger.Debug("no command pending")
		return command.IntentNone, nil
	}

	id := pending.id
	if id == "" {
		id = uuid.NewString()
	}

	return a.executor.Execute(ctx, command.Invocation{
		ID:     id,
		Source: Source,
		Name:   pending.name,
		Param:  pending.param,
	}, func(cmd, param, result string) {
		a.report(ctx, id, cmd, param, result)
	})
}

// report posts one result. Failures are logged; the command has already
// run and is not retried.
func (a *Agent) report(ctx context.Context, id, cmd, param, result string) {
	body, err := json.Marshal(Report{
		ID:        id,
		Command:   cmd,
		Param:     param,
		Result:    result,
		Timestamp: a.now().UTC(),
	})
	if err != nil {
		a.logger.Error("encoding report failed", "error", err)
		return
	}
	payload := string(body)

	status := a.sender.Send(ctx, request.Request{
		URL:    a.cfg.ReportURL,
		Method: http.MethodPost,
		Body:   &payload,
		ExtraHeaders: []request.Header{
			request.NewHeader("Content-Type", "application/json"),
			request.NewHeader(HeaderCommandID, id),
			request.NewHeader(HeaderCommand, cmd),
			request.NewHeader(HeaderCommandParam, param),
			request.NewHeader(HeaderCommandResult, result),
		},
		Timeout: a.cfg.Timeout,
	}, nil)

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		a.logger.Warn("report not accepted",
			"id", id,
			"command", cmd,
			"status", status,
			"reason", request.StatusText(status),
		)
		return
	}
	a.logger.Info("report sent", "id", id, "command", cmd, "status", status)
}
