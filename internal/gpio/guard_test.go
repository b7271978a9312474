package gpio

import "testing"

func TestIsValidPin(t *testing.T) {
	tests := []struct {
		pin  int
		want bool
	}{
		{0, true},
		{2, true},
		{1, false},
		{3, false},
		{-1, false},
		{16, false},
	}

	for _, tt := range tests {
		if got := IsValidPin(tt.pin); got != tt.want {
			t.Errorf("IsValidPin(%d) = %v, want %v", tt.pin, got, tt.want)
		}
	}
}

func TestParsePin(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Pin
		wantOK bool
	}{
		{"pin 0", "0", 0, true},
		{"pin 2", "2", 2, true},
		{"surrounding whitespace", " 2\n", 2, true},
		{"not allowed 1", "1", 0, false},
		{"not allowed 3", "3", 0, false},
		{"negative", "-1", 0, false},
		{"empty", "", 0, false},
		{"whitespace only", "   ", 0, false},
		{"non-numeric", "abc", 0, false},
		{"trailing garbage", "2abc", 0, false},
		{"float", "2.0", 0, false},
		{"overflow", "99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePin(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("ParsePin(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("ParsePin(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestGuard_NeverReturnsPinOutsideAllowList(t *testing.T) {
	g := NewGuard([]int{4, 17})
	for v := -5; v <= 40; v++ {
		p, ok := g.ParsePin(Pin(v).String())
		if ok && !g.IsValidPin(int(p)) {
			t.Fatalf("ParsePin returned %d outside the allow-list", p)
		}
		if ok != (v == 4 || v == 17) {
			t.Errorf("ParsePin(%d) ok = %v", v, ok)
		}
	}
}

func TestNewGuard(t *testing.T) {
	g := NewGuard([]int{2, 0, 2})
	pins := g.Pins()
	if len(pins) != 2 || pins[0] != 0 || pins[1] != 2 {
		t.Errorf("Pins() = %v, want [0 2]", pins)
	}

	empty := NewGuard(nil)
	if empty.IsValidPin(0) {
		t.Error("empty guard should reject every pin")
	}
}

func TestLevelAndModeString(t *testing.T) {
	if High.String() != "HIGH" || Low.String() != "LOW" {
		t.Errorf("Level strings = %s/%s", High, Low)
	}
	if Output.String() != "output" || Input.String() != "input" {
		t.Errorf("Mode strings = %s/%s", Output, Input)
	}
}
