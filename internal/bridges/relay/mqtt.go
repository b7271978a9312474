package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/infrastructure/mqtt"
)

// SourceMQTT is the default invocation source for MQTT commands.
const SourceMQTT = "mqtt"

// MQTTClient is the subset of *mqtt.Client the bridge uses.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// MQTTBridgeOptions configures an MQTTBridge.
type MQTTBridgeOptions struct {
	DeviceID string
	QoS      byte
	Client   MQTTClient
	Executor Executor
	Logger   Logger
}

// MQTTBridge runs commands received over MQTT.
//
// One command is in flight at a time and nothing waits behind it: a
// message that arrives while the worker is busy is answered BUSY. The
// paho callback never waits on the executor or on a publish token.
type MQTTBridge struct {
	client   MQTTClient
	qos      byte
	topics   mqtt.Topics
	dispatch dispatcher
	logger   Logger

	// busy is claimed by handleMessage and cleared when the result is
	// published. While it is set, handoff holds at most one message.
	busy     atomic.Bool
	handoff  chan CommandMessage
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewMQTTBridge creates the bridge. Call Start to subscribe.
func NewMQTTBridge(opts MQTTBridgeOptions) *MQTTBridge {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &MQTTBridge{
		client: opts.Client,
		qos:    opts.QoS,
		dispatch: dispatcher{
			deviceID: opts.DeviceID,
			source:   SourceMQTT,
			executor: opts.Executor,
			logger:   logger,
			now:      time.Now,
		},
		logger:  logger,
		handoff: make(chan CommandMessage, 1),
		done:    make(chan struct{}),
	}
}

// Start subscribes to the command topic and starts the worker.
func (b *MQTTBridge) Start(ctx context.Context) error {
	topic := b.topics.Command(b.dispatch.deviceID)
	if err := b.client.Subscribe(topic, b.qos, b.handleMessage); err != nil {
		return fmt.Errorf("subscribe to commands: %w", err)
	}

	b.wg.Add(1)
	go b.worker(ctx)

	b.logger.Info("mqtt command bridge started", "topic", topic)
	return nil
}

// Stop unsubscribes and waits for the worker. Safe to call more than once.
func (b *MQTTBridge) Stop() {
	b.stopOnce.Do(func() {
		if b.client.IsConnected() {
			//nolint:errcheck // Best-effort during shutdown
			b.client.Unsubscribe(b.topics.Command(b.dispatch.deviceID))
		}
		close(b.done)
		b.wg.Wait()
	})
}

// handleMessage decodes one command and hands it to the worker if it is
// idle. Undecodable payloads and commands arriving while another is in
// flight are answered with a rejected result.
func (b *MQTTBridge) handleMessage(_ string, payload []byte) error {
	msg, err := decodeCommand(payload)
	if err != nil {
		b.publishResult(rejected(b.dispatch.deviceID, "", ErrCodeInvalidPayload, err.Error(), b.dispatch.now()))
		return err
	}

	if !b.busy.CompareAndSwap(false, true) {
		b.publishResult(rejected(b.dispatch.deviceID, msg.ID, ErrCodeBusy, "another command is in progress", b.dispatch.now()))
		return fmt.Errorf("%w: dropped %s", ErrBusy, msg.Command)
	}
	b.handoff <- msg
	return nil
}

func (b *MQTTBridge) worker(ctx context.Context) {
	defer b.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-b.done:
			return
		case msg := <-b.handoff:
			b.runOne(ctx, msg)
		}
	}
}

// runOne runs msg and frees the bridge before its result goes out, so a
// caller that has seen the result can send the next command. A terminal
// intent is applied after that; commands arriving meanwhile wait on the
// executor and are refused as halted.
func (b *MQTTBridge) runOne(ctx context.Context, msg CommandMessage) {
	released := false
	b.dispatch.run(ctx, msg, func(res ResultMessage) {
		released = true
		b.busy.Store(false)
		b.publishResult(res)
	})
	if !released {
		b.busy.Store(false)
	}
}

func (b *MQTTBridge) publishResult(res ResultMessage) {
	payload, err := json.Marshal(res)
	if err != nil {
		b.logger.Error("failed to encode result", "error", err)
		return
	}
	if err := b.client.Publish(b.topics.Result(b.dispatch.deviceID), payload, b.qos, false); err != nil {
		b.logger.Warn("failed to publish result", "command_id", res.CommandID, "error", err)
	}
}
