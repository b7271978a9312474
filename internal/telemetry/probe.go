package telemetry

import (
	"bufio"
	"context"
	"hash/fnv"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// Snapshot is one set of live readings.
type Snapshot struct {
	ChipID     uint32        `json:"chip_id"`
	MAC        string        `json:"mac"`
	RSSI       int           `json:"rssi"`
	Uptime     time.Duration `json:"uptime_ns"`
	FreeHeap   uint64        `json:"free_heap"`
	FreeSketch uint64        `json:"free_sketch"`
	FlashSize  uint64        `json:"flash_size"`
	FlashReal  uint64        `json:"flash_real"`
}

// Probe takes live readings. A reading that cannot be taken is zero.
type Probe interface {
	Read() Snapshot
}

// ProbeFunc adapts a function to Probe.
type ProbeFunc func() Snapshot

// Read calls f.
func (f ProbeFunc) Read() Snapshot { return f() }

// zeroMAC is reported when the interface has no hardware address.
const zeroMAC = "00:00:00:00:00:00"

// probeTimeout bounds a single reading of host statistics.
const probeTimeout = 2 * time.Second

// HostProbe reads a Linux host.
//
//   - chip ID: 24 bits of a hash of the host ID (machine-id)
//   - MAC, RSSI: the configured network interface
//   - uptime: time since the process started
//   - free heap: available system memory
//   - free sketch / flash size: free and total bytes of the data directory's filesystem
//   - flash real: total bytes of the root filesystem
type HostProbe struct {
	iface    string
	dataDir  string
	started  time.Time
	wireless string

	chipOnce sync.Once
	chipID   uint32
}

// NewHostProbe creates a probe for the given network interface and
// data directory.
func NewHostProbe(iface, dataDir string) *HostProbe {
	return &HostProbe{
		iface:    iface,
		dataDir:  dataDir,
		started:  time.Now(),
		wireless: "/proc/net/wireless",
	}
}

// Read implements Probe.
func (p *HostProbe) Read() Snapshot {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	s := Snapshot{
		ChipID: p.readChipID(ctx),
		MAC:    p.readMAC(ctx),
		RSSI:   p.readRSSI(),
		Uptime: time.Since(p.started),
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.FreeHeap = vm.Available
	}
	if u, err := disk.UsageWithContext(ctx, p.dataDir); err == nil {
		s.FreeSketch = u.Free
		s.FlashSize = u.Total
	}
	if u, err := disk.UsageWithContext(ctx, "/"); err == nil {
		s.FlashReal = u.Total
	}

	return s
}

// readChipID hashes the host ID once; it cannot change while running.
func (p *HostProbe) readChipID(ctx context.Context) uint32 {
	p.chipOnce.Do(func() {
		id, err := host.HostIDWithContext(ctx)
		if err != nil || id == "" {
			return
		}
		p.chipID = chipIDFromHostID(id)
	})
	return p.chipID
}

func chipIDFromHostID(id string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(id)))) //nolint:errcheck // hash.Hash never fails
	return h.Sum32() & 0xFFFFFF
}

func (p *HostProbe) readMAC(ctx context.Context) string {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return zeroMAC
	}
	for _, ifc := range ifaces {
		if ifc.Name == p.iface && ifc.HardwareAddr != "" {
			return strings.ToUpper(ifc.HardwareAddr)
		}
	}
	return zeroMAC
}

func (p *HostProbe) readRSSI() int {
	f, err := os.Open(p.wireless)
	if err != nil {
		return 0
	}
	defer f.Close()

	rssi, _ := parseWireless(f, p.iface)
	return rssi
}

// parseWireless extracts the signal level in dBm for iface from the
// contents of /proc/net/wireless:
//
//	Inter-| sta-|   Quality        |   Discarded packets
//	 face | tus | link level noise |  nwid  crypt   frag
//	 wlan0: 0000   54.  -56.  -256        0      0      0
func parseWireless(r io.Reader, iface string) (int, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name, rest, found := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if !found || strings.TrimSpace(name) != iface {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 3 {
			return 0, false
		}
		level, err := strconv.ParseFloat(strings.TrimSuffix(fields[2], "."), 64)
		if err != nil {
			return 0, false
		}
		return int(level), true
	}
	return 0, false
}
