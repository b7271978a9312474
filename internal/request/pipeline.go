package request

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a request when the caller sets none.
const DefaultTimeout = 15 * time.Second

// maxDrainBytes caps how much of an unread response body is discarded
// before the connection is given up for reuse.
const maxDrainBytes = 64 << 10

// Request describes one outbound exchange.
type Request struct {
	URL string

	// Method is GET or POST (case-insensitive).
	Method string

	// Body is sent with POST; nil sends an empty body. Ignored for GET.
	Body *string

	// ExtraHeaders are added after the base headers, in order. Names
	// already present are appended, never replaced.
	ExtraHeaders []Header

	// Collect names the response headers to capture.
	Collect []string

	// Timeout bounds the whole exchange. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Outcome is what the completion callback receives.
type Outcome struct {
	// Status is the HTTP status, or a negative client-side code.
	Status int

	// Headers holds one slot per collected name, in the order requested.
	// Empty when the exchange failed before a response arrived.
	Headers []Header
}

// CompleteFunc is called once per Send after the exchange has finished.
type CompleteFunc func(Outcome)

// HeaderSource supplies the base headers for every request.
type HeaderSource interface {
	BuildBaseHeaders() []Header
}

// Doer sends HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger defines the logging interface used by the pipeline.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}

// Pipeline serialises outbound requests over one HTTP client.
//
// Send holds the pipeline lock for the whole exchange, including the
// completion callback. A callback must not call Send on the same
// pipeline.
type Pipeline struct {
	mu      sync.Mutex
	client  Doer
	headers HeaderSource
	logger  Logger
}

// New creates a pipeline. A nil client makes every Send fail with
// StatusNotConnected; a nil header source sends no base headers.
func New(client Doer, headers HeaderSource, logger Logger) *Pipeline {
	if logger == nil {
		logger = noopLogger{}
	}
	return &Pipeline{
		client:  client,
		headers: headers,
		logger:  logger,
	}
}

// NewHTTPClient returns a client with connection reuse enabled. When
// insecure is set, server certificates are not verified; the reference
// device shipped that way and some cloud endpoints rely on it.
func NewHTTPClient(insecure bool) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          4,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}
	if insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // Opt-in via cloud.insecure
	}
	return &http.Client{Transport: transport}
}

// Send performs req and returns the status code. onComplete, when
// non-nil, is called exactly once with the same status and the captured
// headers, after the connection has been released.
func (p *Pipeline) Send(ctx context.Context, req Request, onComplete CompleteFunc) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	outcome := p.exchange(ctx, req)

	if onComplete != nil {
		onComplete(outcome)
	}
	return outcome.Status
}

func (p *Pipeline) exchange(ctx context.Context, req Request) Outcome {
	method := strings.ToUpper(strings.TrimSpace(req.Method))

	p.logger.Info("start request", "method", method, "url", req.URL)
	defer p.logger.Info("end request", "method", method, "url", req.URL)

	if p.client == nil {
		p.logger.Warn("request failed", "error", ErrNotConnected)
		return Outcome{Status: StatusNotConnected}
	}

	var body io.Reader
	switch method {
	case http.MethodGet:
	case http.MethodPost:
		text := ""
		if req.Body != nil {
			text = *req.Body
		}
		body = strings.NewReader(text)
	default:
		p.logger.Warn("request failed", "error", ErrInvalidMethod, "method", req.Method)
		return Outcome{Status: StatusInvalidMethod}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		p.logger.Warn("request failed", "error", err)
		return Outcome{Status: StatusConnectionFailed}
	}
	p.applyHeaders(httpReq, req.ExtraHeaders)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		status := classify(err)
		p.logger.Warn("request failed", "status", status, "reason", StatusText(status), "error", err)
		return Outcome{Status: status}
	}

	captured := collect(resp.Header, req.Collect)

	// Drain so the keep-alive connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes)) //nolint:errcheck // Best effort drain
	resp.Body.Close()                                                   //nolint:errcheck // Read side only

	p.logResponseHeaders(resp.StatusCode, captured)

	return Outcome{Status: resp.StatusCode, Headers: captured}
}

// applyHeaders adds base headers then extras. Header.Add keeps
// duplicates, so extras never overwrite base values.
func (p *Pipeline) applyHeaders(httpReq *http.Request, extras []Header) {
	if p.headers != nil {
		for _, h := range p.headers.BuildBaseHeaders() {
			addRaw(httpReq.Header, h)
		}
	}
	for _, h := range extras {
		addRaw(httpReq.Header, NewHeader(h.Name, h.Value))
	}
}

// addRaw adds h keeping the name exactly as given (X-DEVICE-ID, not
// X-Device-Id); some cloud endpoints match header names case-sensitively.
func addRaw(dst http.Header, h Header) {
	if h.Name == "" {
		return
	}
	dst[h.Name] = append(dst[h.Name], h.Value)
}

// collect returns one bounded slot per requested name. Names the
// response did not carry get an empty value.
func collect(src http.Header, names []string) []Header {
	if len(names) == 0 {
		return nil
	}
	out := make([]Header, 0, len(names))
	for _, name := range names {
		out = append(out, NewHeader(name, src.Get(name)))
	}
	return out
}

func (p *Pipeline) logResponseHeaders(status int, headers []Header) {
	args := []any{"status", status, "headers_count", len(headers)}
	for _, h := range headers {
		args = append(args, h.Name, h.Value)
	}
	p.logger.Debug("response headers", args...)
}

// classify maps a transport error to a client-side status code.
func classify(err error) int {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusReadTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return StatusReadTimeout
	}
	return StatusConnectionFailed
}
