package relay

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/telemetry"
)

type fakeHalt bool

func (h fakeHalt) Halted() bool { return bool(h) }

func snapshotter() Snapshotter {
	return telemetry.NewBuilder(telemetry.Identity{DeviceID: testDevice}, telemetry.ProbeFunc(func() telemetry.Snapshot {
		return telemetry.Snapshot{ChipID: 42, MAC: "AA:BB:CC:DD:EE:FF", RSSI: -60, FreeHeap: 1024}
	}))
}

func TestHealthReporter_Message(t *testing.T) {
	h := NewHealthReporter(HealthReporterConfig{
		DeviceID:  testDevice,
		Version:   "3",
		Telemetry: snapshotter(),
		Transports: map[string]TransportCheck{
			"mqtt": func() bool { return true },
			"nats": func() bool { return false },
		},
	})

	msg := h.Message(HealthOnline)

	if msg.DeviceID != testDevice || msg.Version != "3" || msg.Status != HealthOnline {
		t.Errorf("message = %+v", msg)
	}
	if msg.ChipID != 42 || msg.RSSI != -60 || msg.FreeHeap != 1024 || msg.MAC != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("telemetry = %+v", msg)
	}
	if !msg.Transports["mqtt"] || msg.Transports["nats"] {
		t.Errorf("transports = %v", msg.Transports)
	}
}

func TestHealthReporter_PublishNow(t *testing.T) {
	tests := []struct {
		name   string
		halted bool
		want   HealthStatus
	}{
		{"online", false, HealthOnline},
		{"restarting", true, HealthRestarting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newMockMQTT()
			h := NewHealthReporter(HealthReporterConfig{
				DeviceID:  testDevice,
				Publisher: client,
				Halt:      fakeHalt(tt.halted),
			})

			if err := h.PublishNow(); err != nil {
				t.Fatalf("PublishNow() error = %v", err)
			}

			p := <-client.publishCh
			if p.topic != "graylogic/relay/relay-0001/health" || !p.retained || p.qos != 1 {
				t.Errorf("publish = %s retained=%v qos=%d", p.topic, p.retained, p.qos)
			}
			var msg HealthMessage
			if err := json.Unmarshal(p.payload, &msg); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if msg.Status != tt.want {
				t.Errorf("status = %s, want %s", msg.Status, tt.want)
			}
		})
	}
}

func TestHealthReporter_SkipsWhenDisconnected(t *testing.T) {
	client := newMockMQTT()
	client.connected = false
	h := NewHealthReporter(HealthReporterConfig{DeviceID: testDevice, Publisher: client})

	if err := h.PublishNow(); err != nil {
		t.Errorf("PublishNow() error = %v", err)
	}
	if len(client.published) != 0 {
		t.Errorf("published %d messages while disconnected", len(client.published))
	}
}

func TestHealthReporter_StartStop(t *testing.T) {
	client := newMockMQTT()
	h := NewHealthReporter(HealthReporterConfig{
		DeviceID:  testDevice,
		Interval:  10 * time.Millisecond,
		Publisher: client,
	})

	h.Start(context.Background())

	first := <-client.publishCh
	var msg HealthMessage
	json.Unmarshal(first.payload, &msg) //nolint:errcheck // checked below
	if msg.Status != HealthOnline {
		t.Errorf("initial status = %s, want online", msg.Status)
	}

	h.Stop()
	h.Stop()

	var last HealthMessage
	for len(client.publishCh) > 0 {
		p := <-client.publishCh
		json.Unmarshal(p.payload, &last) //nolint:errcheck // checked below
	}
	if last.Status != HealthStopping {
		t.Errorf("final status = %s, want stopping", last.Status)
	}
}

func TestNewHealthReporter_DefaultInterval(t *testing.T) {
	h := NewHealthReporter(HealthReporterConfig{})
	if h.cfg.Interval != DefaultHealthInterval {
		t.Errorf("interval = %v, want %v", h.cfg.Interval, DefaultHealthInterval)
	}
}
