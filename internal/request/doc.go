// Package request performs the relay node's outbound HTTP exchanges.
//
// A Pipeline sends one request at a time. Each request carries the base
// identity and telemetry headers from a HeaderSource, then the caller's
// extra headers in order. The caller names the response headers it
// wants back; their values are copied into bounded Header slots and
// handed to the completion callback together with the status code.
//
// Status codes follow the device HTTP client: a positive value is the
// HTTP status, a negative value is a client-side failure (see the
// Status* constants). The callback runs exactly once per Send, after the
// response body has been drained and closed, whatever the outcome.
package request
