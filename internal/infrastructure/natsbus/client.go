package natsbus

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/config"
)

const (
	defaultPingInterval   = 5 * time.Second
	defaultMaxPingsOut    = 3
	defaultReconnectWait  = 500 * time.Millisecond
	defaultDrainTimeout   = 5 * time.Second
	defaultClientNameBase = "graylogic-relay"
)

// CommandSubject returns the request/reply subject for a node.
//
// Example: relay.relay-0001.command
func CommandSubject(deviceID string) string {
	return "relay." + deviceID + ".command"
}

// Logger is the logging interface used by the client.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RequestHandler answers one request. The returned bytes are sent as
// the reply.
type RequestHandler func(subject string, data []byte) []byte

// Client wraps a NATS connection.
type Client struct {
	nc     *nats.Conn
	logger Logger
}

// Connect dials the configured server and reconnects forever after
// that.
func Connect(cfg config.NATSConfig, deviceID string, logger Logger) (*Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	if logger == nil {
		logger = noopLogger{}
	}

	name := cfg.Name
	if name == "" {
		name = defaultClientNameBase + "-" + deviceID
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(name),
		nats.PingInterval(defaultPingInterval),
		nats.MaxPingsOutstanding(defaultMaxPingsOut),
		nats.ReconnectWait(defaultReconnectWait),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrConnectionFailed, cfg.URL, err)
	}

	return &Client{nc: nc, logger: logger}, nil
}

// Serve answers requests on subject until the returned stop function
// is called or the connection closes. Handler panics are recovered and
// logged; the requester then times out.
func (c *Client) Serve(subject string, handler RequestHandler) (stop func() error, err error) {
	if subject == "" {
		return nil, ErrInvalidSubject
	}
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}

	sub, err := c.nc.Subscribe(subject, func(msg *nats.Msg) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("nats handler panic recovered", "subject", msg.Subject, "panic", r)
			}
		}()

		reply := handler(msg.Subject, msg.Data)
		if msg.Reply == "" {
			return
		}
		if err := msg.Respond(reply); err != nil {
			c.logger.Warn("nats reply failed", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", subject, err)
	}

	return sub.Unsubscribe, nil
}

// Request sends data and waits for one reply.
func (c *Client) Request(ctx context.Context, subject string, data []byte) ([]byte, error) {
	if subject == "" {
		return nil, ErrInvalidSubject
	}
	if !c.IsConnected() {
		return nil, ErrNotConnected
	}
	msg, err := c.nc.RequestWithContext(ctx, subject, data)
	if err != nil {
		return nil, fmt.Errorf("nats request %s: %w", subject, err)
	}
	return msg.Data, nil
}

// HealthCheck round-trips to the server.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.IsConnected() {
		return ErrNotConnected
	}

	deadline, ok := ctx.Deadline()
	timeout := defaultDrainTimeout
	if ok {
		timeout = time.Until(deadline)
	}
	if err := c.nc.FlushTimeout(timeout); err != nil {
		return fmt.Errorf("nats health check: %w", err)
	}
	return nil
}

// IsConnected reports whether the connection is up.
func (c *Client) IsConnected() bool {
	return c != nil && c.nc != nil && c.nc.IsConnected()
}

// Close drains subscriptions and closes the connection.
func (c *Client) Close() error {
	if c == nil || c.nc == nil {
		return nil
	}
	if c.nc.IsClosed() {
		return nil
	}
	if err := c.nc.Drain(); err != nil {
		c.nc.Close()
		return fmt.Errorf("nats drain: %w", err)
	}
	return nil
}
