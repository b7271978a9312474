package agent

import "errors"

var (
	// ErrPollFailed indicates the poll exchange did not return 200.
	ErrPollFailed = errors.New("agent: poll failed")

	// ErrNotConfigured indicates a missing poll or report URL.
	ErrNotConfigured = errors.New("agent: poll and report URLs are required")
)
