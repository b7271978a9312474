package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/command"
	"github.com/nerrad567/gray-logic-relay/internal/gpio"
)

const (
	testDevice      = "relay-0001"
	testCommandTopic = "graylogic/relay/relay-0001/command"
	testResultTopic  = "graylogic/relay/relay-0001/result"
)

func startMQTTBridge(t *testing.T, applier command.IntentApplier) (*MQTTBridge, *mockMQTT, *gpio.Memory) {
	t.Helper()
	client := newMockMQTT()
	executor, driver := newTestExecutor(t, applier)
	b := NewMQTTBridge(MQTTBridgeOptions{
		DeviceID: testDevice,
		QoS:      1,
		Client:   client,
		Executor: executor,
	})
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(b.Stop)
	return b, client, driver
}

func waitResult(t *testing.T, client *mockMQTT) ResultMessage {
	t.Helper()
	select {
	case p := <-client.publishCh:
		if p.topic != testResultTopic {
			t.Fatalf("published to %q, want %q", p.topic, testResultTopic)
		}
		if p.retained {
			t.Error("result published retained")
		}
		var res ResultMessage
		if err := json.Unmarshal(p.payload, &res); err != nil {
			t.Fatalf("decode result: %v", err)
		}
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for result")
		return ResultMessage{}
	}
}

func TestMQTTBridge_RunsCommand(t *testing.T) {
	_, client, driver := startMQTTBridge(t, nil)

	h := client.handler(testCommandTopic)
	if h == nil {
		t.Fatal("bridge did not subscribe to the command topic")
	}
	if err := h(testCommandTopic, []byte(`{"id":"c-1","command":"ON","param":"2"}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}

	res := waitResult(t, client)
	if res.CommandID != "c-1" || res.DeviceID != testDevice || res.Status != ResultOK {
		t.Errorf("result = %+v", res)
	}
	if res.Command != "ON" || res.Param != "2" || res.Result != "PIN 2 -> HIGH" {
		t.Errorf("result = %+v", res)
	}
	if level, _ := driver.Read(2); level != gpio.High {
		t.Errorf("pin 2 = %v, want HIGH", level)
	}
}

func TestMQTTBridge_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantCode string
		wantErr  bool
	}{
		{"invalid JSON", `{not json`, ErrCodeInvalidPayload, true},
		{"empty command", `{"id":"c-2","command":""}`, ErrCodeEmptyCommand, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, client, _ := startMQTTBridge(t, nil)

			err := client.handler(testCommandTopic)(testCommandTopic, []byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Errorf("handler error = %v, wantErr %v", err, tt.wantErr)
			}

			res := waitResult(t, client)
			if res.Status != ResultRejected || res.Error == nil || res.Error.Code != tt.wantCode {
				t.Errorf("result = %+v, want rejected %s", res, tt.wantCode)
			}
		})
	}
}

func TestMQTTBridge_TerminalCommand(t *testing.T) {
	applier := &recordingApplier{}
	_, client, _ := startMQTTBridge(t, applier)
	h := client.handler(testCommandTopic)

	if err := h(testCommandTopic, []byte(`{"id":"c-3","command":"REBOOT"}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	res := waitResult(t, client)
	if res.Result != command.ResultRebooted || res.Intent != "restart" {
		t.Errorf("result = %+v, want rebooted/restart", res)
	}

	// Commands after a terminal intent are refused.
	if err := h(testCommandTopic, []byte(`{"id":"c-4","command":"ON","param":"2"}`)); err != nil {
		t.Fatalf("handler error = %v", err)
	}
	res = waitResult(t, client)
	if res.Status != ResultRejected || res.Error.Code != ErrCodeHalted {
		t.Errorf("result after halt = %+v, want %s", res, ErrCodeHalted)
	}

	applier.mu.Lock()
	defer applier.mu.Unlock()
	if len(applier.applied) != 1 || applier.applied[0] != command.IntentRestart {
		t.Errorf("applied = %v, want [restart]", applier.applied)
	}
}

func TestMQTTBridge_DefaultSource(t *testing.T) {
	client := newMockMQTT()
	executor, _ := newTestExecutor(t, nil)

	var sources []string
	executor.Subscribe(func(r command.Result) { sources = append(sources, r.Source) })

	b := NewMQTTBridge(MQTTBridgeOptions{DeviceID: testDevice, Client: client, Executor: executor})
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()

	h := client.handler(testCommandTopic)
	h(testCommandTopic, []byte(`{"command":"STATUS","param":"0"}`))                      //nolint:errcheck // checked via result
	waitResult(t, client)
	h(testCommandTopic, []byte(`{"command":"STATUS","param":"0","source":"controller"}`)) //nolint:errcheck // checked via result
	waitResult(t, client)

	if strings.Join(sources, ",") != "mqtt,controller" {
		t.Errorf("sources = %v, want [mqtt controller]", sources)
	}
}

// gatedExecutor holds each command until release is closed.
type gatedExecutor struct {
	started chan string
	release chan struct{}
}

func (g *gatedExecutor) Run(_ context.Context, inv command.Invocation, deliver command.Listener) (command.Intent, error) {
	g.started <- inv.ID
	<-g.release
	deliver(command.Result{ID: inv.ID, Command: inv.Name, Param: inv.Param, Result: "done"})
	return command.IntentNone, nil
}

func TestMQTTBridge_BusyWhileCommandRuns(t *testing.T) {
	client := newMockMQTT()
	gate := &gatedExecutor{started: make(chan string, 4), release: make(chan struct{})}
	b := NewMQTTBridge(MQTTBridgeOptions{DeviceID: testDevice, Client: client, Executor: gate})
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer b.Stop()
	h := client.handler(testCommandTopic)

	if err := h(testCommandTopic, []byte(`{"id":"c-1","command":"STATUS","param":"0"}`)); err != nil {
		t.Fatalf("first handler error = %v", err)
	}
	if id := <-gate.started; id != "c-1" {
		t.Fatalf("started %q, want c-1", id)
	}

	// Nothing waits behind a running command.
	err := h(testCommandTopic, []byte(`{"id":"c-2","command":"ON","param":"2"}`))
	if !errors.Is(err, ErrBusy) {
		t.Errorf("second handler error = %v, want ErrBusy", err)
	}
	res := waitResult(t, client)
	if res.CommandID != "c-2" || res.Status != ResultRejected || res.Error == nil || res.Error.Code != ErrCodeBusy {
		t.Errorf("result = %+v, want c-2 rejected %s", res, ErrCodeBusy)
	}

	close(gate.release)
	if res = waitResult(t, client); res.CommandID != "c-1" || res.Status != ResultOK {
		t.Errorf("result = %+v, want c-1 ok", res)
	}

	// Seeing a result means the bridge is free again.
	if err := h(testCommandTopic, []byte(`{"id":"c-3","command":"STATUS","param":"0"}`)); err != nil {
		t.Fatalf("handler after result error = %v", err)
	}
	if res = waitResult(t, client); res.CommandID != "c-3" || res.Status != ResultOK {
		t.Errorf("result = %+v, want c-3 ok", res)
	}

	select {
	case id := <-gate.started:
		if id != "c-3" {
			t.Errorf("started %q, want c-3", id)
		}
	default:
		t.Error("c-3 never reached the executor")
	}
}

func TestMQTTBridge_StartSubscribeError(t *testing.T) {
	client := newMockMQTT()
	client.subErr = errors.New("not connected")
	executor, _ := newTestExecutor(t, nil)

	b := NewMQTTBridge(MQTTBridgeOptions{DeviceID: testDevice, Client: client, Executor: executor})
	if err := b.Start(context.Background()); err == nil {
		t.Fatal("Start() error = nil, want subscribe error")
	}
}

func TestMQTTBridge_StopUnsubscribes(t *testing.T) {
	b, client, _ := startMQTTBridge(t, nil)

	b.Stop()
	b.Stop()

	if len(client.unsubscribed) != 1 || client.unsubscribed[0] != testCommandTopic {
		t.Errorf("unsubscribed = %v, want [%s]", client.unsubscribed, testCommandTopic)
	}
}
