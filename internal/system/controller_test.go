package system

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-relay/internal/command"
)

// trace records every step in order.
type trace struct {
	steps []string
}

func (tr *trace) add(s string) { tr.steps = append(tr.steps, s) }

func (tr *trace) String() string { return strings.Join(tr.steps, ",") }

type fakeStore struct {
	tr        *trace
	forgetErr error
	eraseErr  error
}

func (f *fakeStore) ForgetNetwork(context.Context) (int64, error) {
	f.tr.add("forget")
	return 2, f.forgetErr
}

func (f *fakeStore) Erase(context.Context) (int64, error) {
	f.tr.add("erase")
	return 5, f.eraseErr
}

type fakeRestarter struct {
	tr *trace
}

func (f *fakeRestarter) Restart(reason string) {
	f.tr.add("restart:" + reason)
}

func newTestController(tr *trace, store ConfigStore) *Controller {
	c := NewController(store, &fakeRestarter{tr: tr}, DefaultDelays, nil)
	c.sleep = func(d time.Duration) { tr.add(fmt.Sprintf("sleep:%d", d.Milliseconds())) }
	return c
}

func TestController_Apply(t *testing.T) {
	tests := []struct {
		name   string
		intent command.Intent
		want   string
	}{
		{
			name:   "none",
			intent: command.IntentNone,
			want:   "",
		},
		{
			name:   "restart",
			intent: command.IntentRestart,
			want:   "sleep:300,restart:reboot",
		},
		{
			name:   "factory reset",
			intent: command.IntentFactoryReset,
			want:   "sleep:500,forget,sleep:200,erase,sleep:300,restart:factory reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			c := newTestController(tr, &fakeStore{tr: tr})

			if err := c.Apply(context.Background(), tt.intent); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if got := tr.String(); got != tt.want {
				t.Errorf("steps = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestController_FactoryResetContinuesAfterFailures(t *testing.T) {
	tr := &trace{}
	forgetErr := errors.New("forget failed")
	eraseErr := errors.New("erase failed")
	c := newTestController(tr, &fakeStore{tr: tr, forgetErr: forgetErr, eraseErr: eraseErr})

	err := c.Apply(context.Background(), command.IntentFactoryReset)
	if !errors.Is(err, forgetErr) || !errors.Is(err, eraseErr) {
		t.Errorf("Apply() error = %v, want both failures", err)
	}
	if !strings.HasSuffix(tr.String(), "restart:factory reset") {
		t.Errorf("restart must still happen: %s", tr)
	}
}

func TestController_FactoryResetWithoutStore(t *testing.T) {
	tr := &trace{}
	c := newTestController(tr, nil)

	if err := c.Apply(context.Background(), command.IntentFactoryReset); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got := tr.String(); got != "sleep:500,sleep:200,sleep:300,restart:factory reset" {
		t.Errorf("steps = %q", got)
	}
}

func TestController_CancelledContextDoesNotAbort(t *testing.T) {
	tr := &trace{}
	c := newTestController(tr, &fakeStore{tr: tr})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := c.Apply(ctx, command.IntentFactoryReset); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !strings.Contains(tr.String(), "erase") {
		t.Errorf("erase skipped on cancelled context: %s", tr)
	}
}

func TestController_UnknownIntent(t *testing.T) {
	c := newTestController(&trace{}, nil)
	if err := c.Apply(context.Background(), command.Intent(99)); err == nil {
		t.Error("Apply() expected error for unknown intent")
	}
}

func TestExecRestarter_DeliversFirstRequestOnly(t *testing.T) {
	r := NewExecRestarter()

	r.Restart("reboot")
	r.Restart("factory reset")

	select {
	case reason := <-r.Requested():
		if reason != "reboot" {
			t.Errorf("reason = %q, want reboot", reason)
		}
	case <-time.After(time.Second):
		t.Fatal("restart request not delivered")
	}

	if _, ok := <-r.Requested(); ok {
		t.Error("channel should be closed after the first request")
	}
}

// TestHardResetOrdering runs HARDRESET through the real executor and
// controller and checks the caller hears about it before anything is
// erased.
func TestHardResetOrdering(t *testing.T) {
	tr := &trace{}
	c := newTestController(tr, &fakeStore{tr: tr})

	hardReset := command.HandlerFunc(func(_ context.Context, param string, notify command.NotifyFunc) command.Intent {
		notify(command.NameHardReset, param, command.ResultRebooted)
		return command.IntentFactoryReset
	})
	reg, err := command.NewRegistry([]command.Command{{Name: command.NameHardReset, Handler: hardReset}}, nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	exec := command.NewExecutor(reg, c, nil)

	_, err = exec.Execute(context.Background(), command.Invocation{Name: command.NameHardReset}, func(_, _, result string) {
		tr.add("notify:" + result)
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := "notify:Device: rebooted!,sleep:500,forget,sleep:200,erase,sleep:300,restart:factory reset"
	if got := tr.String(); got != want {
		t.Errorf("steps = %q\nwant    %q", got, want)
	}
}
