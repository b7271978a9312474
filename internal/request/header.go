package request

import (
	"strings"
	"unicode/utf8"
)

// Header slot bounds in bytes.
const (
	MaxHeaderNameLen  = 31
	MaxHeaderValueLen = 63
)

// Header is a name/value pair. Extra and captured headers are bounded
// through NewHeader; base headers are sent as built.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewHeader returns a Header with name and value truncated to their
// bounds on a UTF-8 boundary.
func NewHeader(name, value string) Header {
	return Header{
		Name:  truncate(name, MaxHeaderNameLen),
		Value: truncate(value, MaxHeaderValueLen),
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Lookup returns the value of the first header named name, compared
// case-insensitively as HTTP does.
func Lookup(headers []Header, name string) (string, bool) {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value, true
		}
	}
	return "", false
}
