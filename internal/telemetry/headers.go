package telemetry

import (
	"strconv"

	"github.com/nerrad567/gray-logic-relay/internal/request"
)

// Base header names, in the order they are sent.
const (
	HeaderPrefer     = "Prefer"
	HeaderAPIKey     = "X-Api-Key"
	HeaderDeviceID   = "X-DEVICE-ID"
	HeaderChipID     = "X-CHIP-ID"
	HeaderMAC        = "X-MAC"
	HeaderAppVersion = "X-APP-VERSION"
	HeaderRSSI       = "X-WIFI-RSSI"
	HeaderUptime     = "X-UPTIME"
	HeaderFreeHeap   = "X-FREE-HEAP"
	HeaderFreeSketch = "X-FREE-SKETCH"
	HeaderFlashSize  = "X-FLASH-SIZE"
	HeaderFlashReal  = "X-FLASH-REAL"
)

// preferMinimal asks the cloud not to echo the resource back.
const preferMinimal = "return=minimal"

// Identity is loaded once at startup and never changes.
type Identity struct {
	DeviceID   string
	APIKey     string
	AppVersion string
}

// Builder assembles the base headers. Safe for concurrent use if the
// probe is.
type Builder struct {
	identity Identity
	probe    Probe
}

// NewBuilder creates a header builder.
func NewBuilder(identity Identity, probe Probe) *Builder {
	return &Builder{identity: identity, probe: probe}
}

// Identity returns the static identity.
func (b *Builder) Identity() Identity {
	return b.identity
}

// Snapshot takes a fresh reading from the probe.
func (b *Builder) Snapshot() Snapshot {
	return b.probe.Read()
}

// BuildBaseHeaders returns the twelve base headers with current
// readings. Numbers are decimal; uptime is in whole seconds.
func (b *Builder) BuildBaseHeaders() []request.Header {
	return b.HeadersFor(b.probe.Read())
}

// HeadersFor renders a given snapshot as base headers. Values are sent
// whole; the slot bounds apply to extra and captured headers only.
func (b *Builder) HeadersFor(s Snapshot) []request.Header {
	return []request.Header{
		{Name: HeaderPrefer, Value: preferMinimal},
		{Name: HeaderAPIKey, Value: b.identity.APIKey},
		{Name: HeaderDeviceID, Value: b.identity.DeviceID},
		{Name: HeaderChipID, Value: strconv.FormatUint(uint64(s.ChipID), 10)},
		{Name: HeaderMAC, Value: s.MAC},
		{Name: HeaderAppVersion, Value: b.identity.AppVersion},
		{Name: HeaderRSSI, Value: strconv.Itoa(s.RSSI)},
		{Name: HeaderUptime, Value: strconv.FormatInt(int64(s.Uptime.Seconds()), 10)},
		{Name: HeaderFreeHeap, Value: strconv.FormatUint(s.FreeHeap, 10)},
		{Name: HeaderFreeSketch, Value: strconv.FormatUint(s.FreeSketch, 10)},
		{Name: HeaderFlashSize, Value: strconv.FormatUint(s.FlashSize, 10)},
		{Name: HeaderFlashReal, Value: strconv.FormatUint(s.FlashReal, 10)},
	}
}
