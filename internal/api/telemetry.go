package api

import (
	"net/http"
	"time"
)

// TelemetryResponse is returned by GET /api/v1/telemetry.
type TelemetryResponse struct {
	DeviceID      string `json:"device_id"`
	AppVersion    string `json:"app_version"`
	ChipID        uint32 `json:"chip_id"`
	MAC           string `json:"mac"`
	RSSI          int    `json:"rssi"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	FreeHeap      uint64 `json:"free_heap"`
	FreeSketch    uint64 `json:"free_sketch"`
	FlashSize     uint64 `json:"flash_size"`
	FlashReal     uint64 `json:"flash_real"`
	Timestamp     string `json:"timestamp"`
}

// handleTelemetry returns a fresh set of readings.
func (s *Server) handleTelemetry(w http.ResponseWriter, _ *http.Request) {
	id := s.telemetry.Identity()
	snap := s.telemetry.Snapshot()

	writeJSON(w, http.StatusOK, TelemetryResponse{
		DeviceID:      id.DeviceID,
		AppVersion:    id.AppVersion,
		ChipID:        snap.ChipID,
		MAC:           snap.MAC,
		RSSI:          snap.RSSI,
		UptimeSeconds: int64(snap.Uptime / time.Second),
		FreeHeap:      snap.FreeHeap,
		FreeSketch:    snap.FreeSketch,
		FlashSize:     snap.FlashSize,
		FlashReal:     snap.FlashReal,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	})
}
