package hwtool

import (
	"os"
	"path/filepath"
	"testing"
)

// stubProbes replaces the host probes for the duration of a test.
func stubProbes(t *testing.T, vendor string, pci []string) {
	t.Helper()
	origVendor, origPCI := readSystemVendor, readPCIDevices
	readSystemVendor = func() (string, error) { return vendor, nil }
	readPCIDevices = func() ([]string, error) { return pci, nil }
	t.Cleanup(func() {
		readSystemVendor = origVendor
		readPCIDevices = origPCI
	})
}

func writeSlot(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const lspciLSI = `0000:03:00.0 "Serial Attached SCSI controller [0107]" "Broadcom / LSI [1000]" "SAS2308 PCI-Express Fusion-MPT SAS-2 [0087]" -r05 "Dell [1028]" "Device [1f38]"`
const lspciNone = `0000:00:02.0 "VGA compatible controller [0300]" "Intel Corporation [8086]" "HD Graphics 530 [1912]" -r06 "Dell [1028]" "Device [06b9]"`

func TestParsePCILine(t *testing.T) {
	class, vendor := parsePCILine(lspciLSI)
	if class != "Serial Attached SCSI controller [0107]" {
		t.Errorf("class = %q", class)
	}
	if vendor != "Broadcom / LSI [1000]" {
		t.Errorf("vendor = %q", vendor)
	}
	if class, vendor := parsePCILine("garbage"); class != "" || vendor != "" {
		t.Errorf("garbage line parsed to %q, %q", class, vendor)
	}
}

func TestHasLSIStorage(t *testing.T) {
	if !hasLSIStorage([]string{lspciNone, lspciLSI}) {
		t.Error("LSI SAS controller not detected")
	}
	if hasLSIStorage([]string{lspciNone}) {
		t.Error("detected LSI storage on a host without one")
	}
	if hasLSIStorage(nil) {
		t.Error("detected LSI storage with no pci data")
	}
}

func TestDetectBinarySlot(t *testing.T) {
	stubProbes(t, "Dell Inc.", nil)
	resources := t.TempDir()
	tools := t.TempDir()
	writeSlot(t, resources, "sas2ircu", "#!/bin/sh\nexit 0\n")
	writeSlot(t, resources, "sas3ircu", "") // unattached placeholder

	l := NewLocator(Config{ToolsDir: tools, ResourceDir: resources})
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}

	if !l.Available(Sas2ircu) {
		t.Fatal("sas2ircu not available after slot install")
	}
	want := filepath.Join(tools, "sas2ircu")
	if got := l.Path(Sas2ircu); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
	fi, err := os.Stat(want)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0755 {
		t.Errorf("installed binary mode = %v, want 0755", fi.Mode().Perm())
	}

	if l.Available(Sas3ircu) {
		t.Error("empty placeholder slot treated as attached")
	}
}

func TestDetectStorcliNeedsLSIOrSlot(t *testing.T) {
	stubProbes(t, "Supermicro", nil)
	tools := t.TempDir()
	writeSlot(t, tools, "storcli", "binary")

	// Binary present but no LSI controller and no attached slot.
	l := NewLocator(Config{ToolsDir: tools, ResourceDir: t.TempDir()})
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}
	if l.Available(Storcli) {
		t.Error("storcli available without LSI storage or attached slot")
	}

	// Same host with an LSI controller on the bus.
	stubProbes(t, "Supermicro", []string{lspciLSI})
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}
	if !l.Available(Storcli) {
		t.Error("storcli not available with LSI storage present")
	}

	// No LSI controller but the operator attached the package slot.
	stubProbes(t, "Supermicro", nil)
	resources := t.TempDir()
	writeSlot(t, resources, "storcli.deb", "deb")
	l = NewLocator(Config{ToolsDir: tools, ResourceDir: resources})
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}
	if !l.Available(Storcli) {
		t.Error("storcli not available with slot attached")
	}
}

func TestDetectPerccliNeedsDellOrSlot(t *testing.T) {
	tools := t.TempDir()
	writeSlot(t, tools, "perccli", "binary")

	stubProbes(t, "Supermicro", nil)
	l := NewLocator(Config{ToolsDir: tools, ResourceDir: t.TempDir()})
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}
	if l.Available(Perccli) {
		t.Error("perccli available on a non-Dell host without slot")
	}

	stubProbes(t, "Dell Inc.", nil)
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}
	if !l.Available(Perccli) {
		t.Error("perccli not available on a Dell host")
	}
}

func TestDetectRedfish(t *testing.T) {
	stubProbes(t, "", nil)
	l := NewLocator(Config{ToolsDir: t.TempDir(), ResourceDir: t.TempDir(), Redfish: true})
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}
	if !l.Available(Redfish) {
		t.Error("redfish not available despite configuration")
	}
}

func TestToolCollectors(t *testing.T) {
	tests := []struct {
		tool Tool
		want string
	}{
		{Storcli, "mega_raid"},
		{Perccli, "poweredge_raid"},
		{Sas2ircu, "lsi_sas_2"},
		{Sas3ircu, "lsi_sas_3"},
		{Ssacli, "hpe_ssa"},
		{IpmiDCMI, "ipmi_dcmi"},
		{IpmiSEL, "ipmi_sel"},
		{IpmiSensor, "ipmi_sensor"},
		{Redfish, "redfish"},
	}
	for _, tt := range tests {
		cs := tt.tool.Collectors()
		if len(cs) != 1 || cs[0] != tt.want {
			t.Errorf("%s.Collectors() = %v, want [%s]", tt.tool, cs, tt.want)
		}
	}
	if cs := Tool("bogus").Collectors(); cs != nil {
		t.Errorf("unknown tool maps to %v", cs)
	}
}

func TestEnabledCollectors(t *testing.T) {
	stubProbes(t, "", nil)
	resources := t.TempDir()
	writeSlot(t, resources, "sas2ircu", "binary")
	l := NewLocator(Config{ToolsDir: t.TempDir(), ResourceDir: resources, Redfish: true})
	if err := l.Detect(); err != nil {
		t.Fatal(err)
	}
	names := l.EnabledCollectors()
	found := map[string]bool{}
	for _, n := range names {
		found[n] = true
	}
	if !found["lsi_sas_2"] || !found["redfish"] {
		t.Errorf("EnabledCollectors = %v", names)
	}
}
