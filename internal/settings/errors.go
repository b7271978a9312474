package settings

import "errors"

var (
	// ErrNotFound is returned when a key has no stored value.
	ErrNotFound = errors.New("setting: not found")

	// ErrInvalidKey is returned for empty keys.
	ErrInvalidKey = errors.New("setting: invalid key")

	// ErrInvalidScope is returned for scopes other than device and network.
	ErrInvalidScope = errors.New("setting: invalid scope")
)
