package collectors

import (
	"strings"
	"testing"

	"github.com/hardware-observer/hardware-exporter/metric"
)

const ssaStatus = `
Smart Array P420i in Slot 0 (Embedded)
   Controller Status: OK
   Cache Status: Temporarily Disabled
   Battery/Capacitor Status: Failed

Smart HBA H240 in Slot 1
   Controller Status: OK
`

const ssaConfig = `
Smart Array P420i in Slot 0 (Embedded)    (sn: 5001438025E9C2D0)

   Gen8 ServBP 12+2 at Port 1I, Box 2, OK

   Array A (SAS, Unused Space: 0  MB)

      logicaldrive 1 (279.37 GB, RAID 1, OK)

      physicaldrive 1I:2:1 (port 1I:box 2:bay 1, SAS, 300 GB, OK)
      physicaldrive 1I:2:2 (port 1I:box 2:bay 2, SAS, 300 GB, Rebuilding)

   Array B (SAS, Unused Space: 0  MB)

      logicaldrive 2 (838.10 GB, RAID 5, Interim Recovery Mode)

      physicaldrive 2I:2:5 (port 2I:box 2:bay 5, SAS, 300 GB, Failed)
`

func TestParseSsaStatus(t *testing.T) {
	var md metric.MultiRecord
	parseSsaStatus(&md, strings.Split(ssaStatus, "\n"))

	if v := findValue(t, md, "hw_raid_controller_status", metric.Labels{"controller": "0"}); v != float64(metric.OK) {
		t.Errorf("slot 0 controller status = %v, want ok", v)
	}
	if v := findValue(t, md, "hw_raid_controller_status", metric.Labels{"controller": "1"}); v != float64(metric.OK) {
		t.Errorf("slot 1 controller status = %v, want ok", v)
	}
	if v := findValue(t, md, "hw_raid_controller_cache_status", metric.Labels{"controller": "0"}); v != float64(metric.Warning) {
		t.Errorf("cache status = %v, want warning", v)
	}
	if v := findValue(t, md, "hw_battery_status", metric.Labels{"controller": "0"}); v != float64(metric.Critical) {
		t.Errorf("battery status = %v, want critical", v)
	}
}

func TestParseSsaConfig(t *testing.T) {
	var md metric.MultiRecord
	parseSsaConfig(&md, strings.Split(ssaConfig, "\n"))

	if v := findValue(t, md, "hw_virtual_disk_status", metric.Labels{"id": "1"}); v != float64(metric.OK) {
		t.Errorf("logicaldrive 1 status = %v, want ok", v)
	}
	ld2 := metric.Labels{"id": "2", "raid_level": "RAID5"}
	if v := findValue(t, md, "hw_virtual_disk_status", ld2); v != float64(metric.Warning) {
		t.Errorf("logicaldrive 2 status = %v, want warning", v)
	}

	pdTests := []struct {
		id   string
		want metric.Health
	}{
		{"1I:2:1", metric.OK},
		{"1I:2:2", metric.Warning},
		{"2I:2:5", metric.Critical},
	}
	for _, tt := range pdTests {
		if v := findValue(t, md, "hw_physical_disk_status", metric.Labels{"id": tt.id}); v != float64(tt.want) {
			t.Errorf("physicaldrive %s status = %v, want %v", tt.id, v, tt.want)
		}
	}
	if v := findValue(t, md, "hw_physical_disk_status", metric.Labels{"id": "1I:2:1"}); v != float64(metric.OK) {
		t.Errorf("physicaldrive interface lookup failed: %v", v)
	}
}

func TestSplitParen(t *testing.T) {
	parts := splitParen("port 1I:box 2:bay 1, SAS, 300 GB, OK")
	want := []string{"port 1I:box 2:bay 1", "SAS", "300 GB", "OK"}
	if len(parts) != len(want) {
		t.Fatalf("parts = %v, want %v", parts, want)
	}
	for i := range want {
		if parts[i] != want[i] {
			t.Fatalf("parts[%d] = %q, want %q", i, parts[i], want[i])
		}
	}
}
