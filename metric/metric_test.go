package metric

import "testing"

func TestHealthString(t *testing.T) {
	tests := []struct {
		h    Health
		want string
	}{
		{OK, "ok"},
		{Warning, "warning"},
		{Critical, "critical"},
		{Unknown, "unknown"},
		{Health(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.h.String(); got != tt.want {
			t.Errorf("Health(%d).String() = %q, want %q", tt.h, got, tt.want)
		}
	}
}

func TestMetricName(t *testing.T) {
	r := &Record{Component: VirtualDisk, Name: "status"}
	if got := r.Metric(); got != "hw_virtual_disk_status" {
		t.Errorf("Metric() = %q", got)
	}
}

func TestKeyStable(t *testing.T) {
	a := &Record{Component: PhysicalDisk, Name: "status", Labels: Labels{"controller": "0", "id": "32:1"}}
	b := &Record{Component: PhysicalDisk, Name: "status", Labels: Labels{"id": "32:1", "controller": "0"}}
	if a.Key() != b.Key() {
		t.Errorf("key depends on label order: %q vs %q", a.Key(), b.Key())
	}
	c := &Record{Component: PhysicalDisk, Name: "status", Labels: Labels{"controller": "0", "id": "32:2"}}
	if a.Key() == c.Key() {
		t.Errorf("distinct instances share key %q", a.Key())
	}
}

func TestAddHealth(t *testing.T) {
	var md MultiRecord
	AddHealth(&md, Battery, Warning, Labels{"controller": "0"}, "Battery status.")
	if len(md) != 1 {
		t.Fatalf("got %d records", len(md))
	}
	r := md[0]
	if r.Name != "status" || r.Value != 1 || r.Rate != Gauge {
		t.Errorf("record = %+v", r)
	}
	if r.Desc != "Battery status. "+HealthDesc {
		t.Errorf("desc = %q", r.Desc)
	}
	if r.Time.IsZero() {
		t.Error("record has zero time")
	}
}

func TestClean(t *testing.T) {
	if got := Clean("  SEAGATE ", " ST9146803SS  "); got != "SEAGATE ST9146803SS" {
		t.Errorf("Clean = %q", got)
	}
	if got := Clean(""); got != "" {
		t.Errorf("Clean(\"\") = %q", got)
	}
}

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"PERC H730P Adapter", "PERC_H730P_Adapter"},
		{"1I:2:1", "1I:2:1"},
		{"a\tb\nc", "a_b_c"},
		{"disk-0_a.b/c", "disk-0_a.b/c"},
	}
	for _, tt := range tests {
		if got := SanitizeLabel(tt.in); got != tt.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
