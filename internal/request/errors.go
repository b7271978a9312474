package request

import "errors"

// Client-side status codes passed to the completion callback in place of
// an HTTP status.
const (
	StatusConnectionFailed = -1
	StatusNotConnected     = -4
	StatusReadTimeout      = -11
	StatusInvalidMethod    = -12
)

var (
	// ErrInvalidMethod is logged for methods other than GET and POST.
	ErrInvalidMethod = errors.New("request: invalid method")

	// ErrNotConnected is logged when the pipeline has no HTTP client.
	ErrNotConnected = errors.New("request: not connected")
)

// StatusText describes a client-side status code. HTTP status codes
// return an empty string.
func StatusText(code int) string {
	switch code {
	case StatusConnectionFailed:
		return "connection failed"
	case StatusNotConnected:
		return "not connected"
	case StatusReadTimeout:
		return "read timeout"
	case StatusInvalidMethod:
		return "invalid method"
	default:
		return ""
	}
}
