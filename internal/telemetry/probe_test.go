package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const wirelessSample = `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
 wlan0: 0000   54.  -56.  -256        0      0      0      0      0        0
 wlan1: 0000   30.  -80.  -256        0      0      0      0      0        0
`

func TestParseWireless(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		iface  string
		want   int
		wantOK bool
	}{
		{"first interface", wirelessSample, "wlan0", -56, true},
		{"second interface", wirelessSample, "wlan1", -80, true},
		{"missing interface", wirelessSample, "eth0", 0, false},
		{"empty file", "", "wlan0", 0, false},
		{"truncated line", " wlan0: 0000 54.\n", "wlan0", 0, false},
		{"garbage level", " wlan0: 0000 54. abc -256\n", "wlan0", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseWireless(strings.NewReader(tt.input), tt.iface)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseWireless() = (%d, %v), want (%d, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestChipIDFromHostID(t *testing.T) {
	a := chipIDFromHostID("0f3c2a1e-1111-2222-3333-444455556666")
	b := chipIDFromHostID("  0F3C2A1E-1111-2222-3333-444455556666\n")
	c := chipIDFromHostID("another-host")

	if a != b {
		t.Errorf("chip ID not normalised: %d != %d", a, b)
	}
	if a == c {
		t.Error("different host IDs produced the same chip ID")
	}
	for _, id := range []uint32{a, c} {
		if id > 0xFFFFFF {
			t.Errorf("chip ID %#x exceeds 24 bits", id)
		}
	}
}

func TestHostProbe_RSSIFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wireless")
	if err := os.WriteFile(path, []byte(wirelessSample), 0600); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	p := NewHostProbe("wlan1", t.TempDir())
	p.wireless = path

	if got := p.readRSSI(); got != -80 {
		t.Errorf("readRSSI() = %d, want -80", got)
	}

	p.wireless = filepath.Join(t.TempDir(), "missing")
	if got := p.readRSSI(); got != 0 {
		t.Errorf("readRSSI() with missing file = %d, want 0", got)
	}
}

func TestHostProbe_Read(t *testing.T) {
	p := NewHostProbe("definitely-not-an-interface", t.TempDir())

	s := p.Read()

	if s.MAC != zeroMAC {
		t.Errorf("MAC for unknown interface = %q, want %q", s.MAC, zeroMAC)
	}
	if s.RSSI != 0 {
		t.Errorf("RSSI for unknown interface = %d, want 0", s.RSSI)
	}
	if s.Uptime < 0 {
		t.Errorf("Uptime = %v, want >= 0", s.Uptime)
	}
}
