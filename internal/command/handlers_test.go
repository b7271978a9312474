package command

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/nerrad567/gray-logic-relay/internal/gpio"
)

func TestHandlers_InvalidPinNeverTouchesDriver(t *testing.T) {
	params := []string{"1", "3", "-1", "abc", "", " ", "2abc", "16"}
	commands := []string{NameOn, NameOff, NameStatus}

	for _, name := range commands {
		for _, param := range params {
			t.Run(name+"/"+param, func(t *testing.T) {
				driver := newRecordingDriver()
				r := newTestRegistry(driver)

				got, count, intent := run(r, name, param)
				if count != 1 {
					t.Fatalf("notify called %d times, want 1", count)
				}
				if got.result != ResultInvalidPin {
					t.Errorf("result = %q, want %q", got.result, ResultInvalidPin)
				}
				if got.command != name || got.param != param {
					t.Errorf("notify(%q, %q), want (%q, %q)", got.command, got.param, name, param)
				}
				if intent != IntentNone {
					t.Errorf("intent = %v, want none", intent)
				}
				if calls := driver.Calls(); len(calls) != 0 {
					t.Errorf("driver touched for invalid pin: %v", calls)
				}
			})
		}
	}
}

func TestHandlers_SetThenStatus(t *testing.T) {
	tests := []struct {
		set        string
		pin        string
		wantSet    string
		wantStatus string
	}{
		{NameOn, "0", "PIN 0 -> HIGH", "PIN 0 state: 1"},
		{NameOn, "2", "PIN 2 -> HIGH", "PIN 2 state: 1"},
		{NameOff, "0", "PIN 0 -> LOW", "PIN 0 state: 0"},
		{NameOff, "2", "PIN 2 -> LOW", "PIN 2 state: 0"},
	}

	for _, tt := range tests {
		t.Run(tt.set+"/"+tt.pin, func(t *testing.T) {
			driver := newRecordingDriver()
			r := newTestRegistry(driver)

			// Start from the opposite level so the test observes a change.
			if tt.set == NameOff {
				run(r, NameOn, tt.pin)
			}

			got, _, _ := run(r, tt.set, tt.pin)
			if got.result != tt.wantSet {
				t.Errorf("%s result = %q, want %q", tt.set, got.result, tt.wantSet)
			}

			got, _, _ = run(r, NameStatus, tt.pin)
			if got.result != tt.wantStatus {
				t.Errorf("STATUS result = %q, want %q", got.result, tt.wantStatus)
			}
		})
	}
}

func TestHandlers_SetPinConfiguresOutputBeforeWrite(t *testing.T) {
	driver := newRecordingDriver()
	r := newTestRegistry(driver)

	run(r, NameOn, "2")

	calls := driver.Calls()
	want := []string{"mode 2 output", "write 2 HIGH"}
	if strings.Join(calls, ";") != strings.Join(want, ";") {
		t.Errorf("driver calls = %v, want %v", calls, want)
	}
}

func TestHandlers_StatusUsesOutputMode(t *testing.T) {
	driver := newRecordingDriver()
	r := newTestRegistry(driver)

	run(r, NameStatus, "0")

	calls := driver.Calls()
	want := []string{"mode 0 output", "read 0"}
	if strings.Join(calls, ";") != strings.Join(want, ";") {
		t.Errorf("driver calls = %v, want %v", calls, want)
	}
}

func TestHandlers_RelayIgnoresParameter(t *testing.T) {
	params := []string{"", "2", "1", "garbage", "0"}

	for _, name := range []string{NameRelayOn, NameRelayOff} {
		for _, param := range params {
			t.Run(name+"/"+param, func(t *testing.T) {
				driver := newRecordingDriver()
				r := newTestRegistry(driver)

				got, count, _ := run(r, name, param)
				if count != 1 {
					t.Fatalf("notify called %d times, want 1", count)
				}

				level := "HIGH"
				if name == NameRelayOff {
					level = "LOW"
				}
				if want := "PIN 0 -> " + level; got.result != want {
					t.Errorf("result = %q, want %q", got.result, want)
				}
				if got.param != "0" {
					t.Errorf("reported param = %q, want relay param %q", got.param, "0")
				}
				for _, c := range driver.Calls() {
					if strings.Contains(c, " 2") {
						t.Errorf("relay command touched pin 2: %v", driver.Calls())
					}
				}
			})
		}
	}
}

func TestHandlers_ConfiguredRelayPin(t *testing.T) {
	driver := newRecordingDriver()
	h := NewHandlers(driver, gpio.NewGuard([]int{0, 2}), 2, nil)
	r, err := NewRegistry(DefaultCommands(h), nil)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	got, _, _ := run(r, NameRelayOn, "0")
	if got.result != "PIN 2 -> HIGH" || got.param != "2" {
		t.Errorf("got %+v, want PIN 2 -> HIGH with param 2", got)
	}
	if h.RelayParam() != "2" {
		t.Errorf("RelayParam() = %q, want 2", h.RelayParam())
	}
}

func TestHandlers_DriverErrorIsReported(t *testing.T) {
	driver := newRecordingDriver()
	driver.InjectFault(2, errors.New("line busy"))
	r := newTestRegistry(driver)

	got, count, _ := run(r, NameOn, "2")
	if count != 1 {
		t.Fatalf("notify called %d times, want 1", count)
	}
	if got.result != "PIN 2 error: line busy" {
		t.Errorf("result = %q", got.result)
	}

	got, _, _ = run(r, NameStatus, "2")
	if got.result != "PIN 2 error: line busy" {
		t.Errorf("STATUS result = %q", got.result)
	}
}

func TestHandlers_TerminalCommandsNotifyThenReturnIntent(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
	}{
		{NameReboot, IntentRestart},
		{NameHardReset, IntentFactoryReset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			driver := newRecordingDriver()
			r := newTestRegistry(driver)

			got, count, intent := run(r, tt.name, "x")
			if count != 1 {
				t.Fatalf("notify called %d times, want 1", count)
			}
			if got.result != ResultRebooted || got.command != tt.name || got.param != "x" {
				t.Errorf("notify = %+v", got)
			}
			if intent != tt.intent {
				t.Errorf("intent = %v, want %v", intent, tt.intent)
			}
			if !intent.Terminal() {
				t.Error("intent should be terminal")
			}
			if len(driver.Calls()) != 0 {
				t.Errorf("terminal command touched GPIO: %v", driver.Calls())
			}
		})
	}
}

func TestBoundResult(t *testing.T) {
	ascii := strings.Repeat("a", 200)
	if got := boundResult(ascii); len(got) != MaxResultLen {
		t.Errorf("len = %d, want %d", len(got), MaxResultLen)
	}

	short := "PIN 2 -> HIGH"
	if got := boundResult(short); got != short {
		t.Errorf("short result changed: %q", got)
	}

	// 3-byte runes straddling the limit must not be split.
	multi := strings.Repeat("€", 60)
	got := boundResult(multi)
	if len(got) > MaxResultLen {
		t.Errorf("len = %d, exceeds %d", len(got), MaxResultLen)
	}
	if !utf8.ValidString(got) {
		t.Error("truncation split a rune")
	}
}

func TestHandlers_LongErrorIsBounded(t *testing.T) {
	driver := newRecordingDriver()
	driver.InjectFault(0, errors.New(strings.Repeat("x", 300)))
	r := newTestRegistry(driver)

	got, _, _ := run(r, NameOn, "0")
	if len(got.result) > MaxResultLen {
		t.Errorf("result length %d exceeds %d", len(got.result), MaxResultLen)
	}
}
