package telemetry

import (
	"context"
	"time"
)

// DefaultSnapshotInterval is used when no interval is configured.
const DefaultSnapshotInterval = 60 * time.Second

// Writer stores one telemetry point. Satisfied by *influxdb.Client.
type Writer interface {
	WriteTelemetry(deviceID string, fields map[string]any, ts time.Time)
}

// Logger is the logging interface used by the recorder.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Recorder writes a snapshot on a fixed interval.
type Recorder struct {
	builder  *Builder
	writer   Writer
	interval time.Duration
	logger   Logger
	now      func() time.Time
}

// NewRecorder creates a recorder. A non-positive interval uses
// DefaultSnapshotInterval.
func NewRecorder(builder *Builder, writer Writer, interval time.Duration, logger Logger) *Recorder {
	if interval <= 0 {
		interval = DefaultSnapshotInterval
	}
	if logger == nil {
		logger = noopLogger{}
	}
	return &Recorder{
		builder:  builder,
		writer:   writer,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run records one snapshot immediately, then one per interval until ctx
// is cancelled.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.Record()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Record()
		}
	}
}

// Record writes a single snapshot.
func (r *Recorder) Record() {
	s := r.builder.Snapshot()
	r.writer.WriteTelemetry(r.builder.Identity().DeviceID, Fields(s), r.now())
	r.logger.Debug("telemetry recorded", "rssi", s.RSSI, "free_heap", s.FreeHeap)
}

// Fields maps a snapshot to InfluxDB field values.
func Fields(s Snapshot) map[string]any {
	return map[string]any{
		"chip_id":     int64(s.ChipID),
		"mac":         s.MAC,
		"rssi":        int64(s.RSSI),
		"uptime_s":    int64(s.Uptime.Seconds()),
		"free_heap":   s.FreeHeap,
		"free_sketch": s.FreeSketch,
		"flash_size":  s.FlashSize,
		"flash_real":  s.FlashReal,
	}
}
