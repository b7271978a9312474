package gpio

import (
	"slices"
	"strconv"
	"strings"
)

// DefaultPins is the allow-list of the reference board.
var DefaultPins = []int{0, 2}

// Guard validates pin numbers against a fixed allow-list.
// A Guard is immutable after construction and safe for concurrent use.
type Guard struct {
	allowed []int
}

// NewGuard returns a Guard for the given pins. Duplicates are dropped.
// An empty list yields a Guard that rejects everything.
func NewGuard(pins []int) *Guard {
	allowed := slices.Clone(pins)
	slices.Sort(allowed)
	return &Guard{allowed: slices.Compact(allowed)}
}

var defaultGuard = NewGuard(DefaultPins)

// IsValidPin reports whether v is in the allow-list.
func (g *Guard) IsValidPin(v int) bool {
	_, found := slices.BinarySearch(g.allowed, v)
	return found
}

// ParsePin parses decimal text into an allowed Pin. Surrounding
// whitespace is ignored. Empty text, malformed numbers and pins outside
// the allow-list all return false; callers cannot tell them apart.
func (g *Guard) ParsePin(text string) (Pin, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, false
	}

	v, err := strconv.Atoi(text)
	if err != nil || !g.IsValidPin(v) {
		return 0, false
	}
	return Pin(v), true
}

// Pins returns the allow-list in ascending order.
func (g *Guard) Pins() []Pin {
	out := make([]Pin, len(g.allowed))
	for i, v := range g.allowed {
		out[i] = Pin(v)
	}
	return out
}

// IsValidPin checks v against DefaultPins.
func IsValidPin(v int) bool {
	return defaultGuard.IsValidPin(v)
}

// ParsePin parses text against DefaultPins.
func ParsePin(text string) (Pin, bool) {
	return defaultGuard.ParsePin(text)
}
