package relay

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nerrad567/gray-logic-relay/internal/command"
	"github.com/nerrad567/gray-logic-relay/internal/gpio"
	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/mqtt"
)

// published is one captured publish.
type published struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// mockMQTT records publishes and exposes the subscribed handler.
type mockMQTT struct {
	mu           sync.Mutex
	connected    bool
	handlers     map[string]mqtt.MessageHandler
	published    []published
	unsubscribed []string
	subErr       error
	publishCh    chan published
}

func newMockMQTT() *mockMQTT {
	return &mockMQTT{
		connected: true,
		handlers:  make(map[string]mqtt.MessageHandler),
		publishCh: make(chan published, 32),
	}
}

func (m *mockMQTT) Publish(topic string, payload []byte, qos byte, retained bool) error {
	p := published{topic, append([]byte(nil), payload...), qos, retained}
	m.mu.Lock()
	m.published = append(m.published, p)
	m.mu.Unlock()
	m.publishCh <- p
	return nil
}

func (m *mockMQTT) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	if m.subErr != nil {
		return m.subErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[topic] = handler
	return nil
}

func (m *mockMQTT) Unsubscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubscribed = append(m.unsubscribed, topic)
	delete(m.handlers, topic)
	return nil
}

func (m *mockMQTT) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *mockMQTT) handler(topic string) mqtt.MessageHandler {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handlers[topic]
}

// recordingApplier captures terminal intents.
type recordingApplier struct {
	mu      sync.Mutex
	applied []command.Intent
	err     error
}

func (a *recordingApplier) Apply(_ context.Context, intent command.Intent) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, intent)
	return a.err
}

func newTestExecutor(t *testing.T, applier command.IntentApplier) (*command.Executor, *gpio.Memory) {
	t.Helper()
	driver := gpio.NewMemory([]gpio.Pin{0, 2})
	handlers := command.NewHandlers(driver, gpio.NewGuard(gpio.DefaultPins), 0, nil)
	registry, err := command.NewRegistry(command.DefaultCommands(handlers), nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return command.NewExecutor(registry, applier, nil), driver
}

var errApply = errors.New("erase failed")
