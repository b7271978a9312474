package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-relay/internal/telemetry"
)

// DefaultHealthInterval is used when no interval is configured.
const DefaultHealthInterval = 30 * time.Second

// HealthPublisher publishes health messages. Typically the MQTT client.
type HealthPublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Snapshotter supplies live telemetry. Satisfied by *telemetry.Builder.
type Snapshotter interface {
	Snapshot() telemetry.Snapshot
}

// HaltState reports whether the node has accepted a terminal command.
// Satisfied by *command.Executor.
type HaltState interface {
	Halted() bool
}

// TransportCheck reports whether a command transport is connected.
type TransportCheck func() bool

// HealthReporterConfig holds configuration for the health reporter.
type HealthReporterConfig struct {
	DeviceID  string
	Version   string
	Interval  time.Duration
	Publisher HealthPublisher
	Telemetry Snapshotter
	Halt      HaltState

	// Transports maps a transport name to its connection check.
	Transports map[string]TransportCheck
}

// HealthReporter publishes a retained HealthMessage at a fixed interval.
type HealthReporter struct {
	cfg       HealthReporterConfig
	startTime time.Time
	now       func() time.Time

	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once

	logger   Logger
	loggerMu sync.RWMutex
}

// NewHealthReporter creates a reporter. Call Start to begin reporting.
func NewHealthReporter(cfg HealthReporterConfig) *HealthReporter {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultHealthInterval
	}
	return &HealthReporter{
		cfg:       cfg,
		startTime: time.Now(),
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// SetLogger sets the logger for this reporter.
func (h *HealthReporter) SetLogger(logger Logger) {
	h.loggerMu.Lock()
	h.logger = logger
	h.loggerMu.Unlock()
}

// Start begins periodic reporting.
func (h *HealthReporter) Start(ctx context.Context) {
	h.wg.Add(1)
	go h.reportLoop(ctx)
}

// Stop ends reporting and publishes a final "stopping" status.
// Safe to call multiple times.
func (h *HealthReporter) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		//nolint:errcheck // Best-effort during shutdown
		h.publish(HealthStopping)
	})
}

// PublishNow publishes the current health immediately.
func (h *HealthReporter) PublishNow() error {
	return h.publish(h.status())
}

// Message builds the current health message.
func (h *HealthReporter) Message(status HealthStatus) HealthMessage {
	msg := HealthMessage{
		DeviceID:      h.cfg.DeviceID,
		Timestamp:     h.now().UTC(),
		Status:        status,
		Version:       h.cfg.Version,
		UptimeSeconds: int64(h.now().Sub(h.startTime).Seconds()),
	}

	if h.cfg.Telemetry != nil {
		s := h.cfg.Telemetry.Snapshot()
		msg.ChipID = s.ChipID
		msg.MAC = s.MAC
		msg.RSSI = s.RSSI
		msg.FreeHeap = s.FreeHeap
		msg.FreeSketch = s.FreeSketch
		msg.FlashSize = s.FlashSize
		msg.FlashReal = s.FlashReal
	}

	if len(h.cfg.Transports) > 0 {
		msg.Transports = make(map[string]bool, len(h.cfg.Transports))
		for name, check := range h.cfg.Transports {
			msg.Transports[name] = check()
		}
	}
	return msg
}

func (h *HealthReporter) reportLoop(ctx context.Context) {
	defer h.wg.Done()

	ticker := time.NewTicker(h.cfg.Interval)
	defer ticker.Stop()

	if err := h.PublishNow(); err != nil {
		h.logError("failed to publish initial health", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if err := h.PublishNow(); err != nil {
				h.logError("failed to publish health", err)
			}
		}
	}
}

func (h *HealthReporter) status() HealthStatus {
	if h.cfg.Halt != nil && h.cfg.Halt.Halted() {
		return HealthRestarting
	}
	return HealthOnline
}

func (h *HealthReporter) publish(status HealthStatus) error {
	if h.cfg.Publisher == nil || !h.cfg.Publisher.IsConnected() {
		return nil
	}

	payload, err := json.Marshal(h.Message(status))
	if err != nil {
		return err
	}
	return h.cfg.Publisher.Publish(mqtt.Topics{}.Health(h.cfg.DeviceID), payload, 1, true)
}

func (h *HealthReporter) logError(msg string, err error) {
	h.loggerMu.RLock()
	logger := h.logger
	h.loggerMu.RUnlock()

	if logger != nil {
		logger.Error(msg, "error", err)
	}
}
