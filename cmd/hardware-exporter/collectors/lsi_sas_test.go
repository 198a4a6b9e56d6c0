package collectors

import (
	"strings"
	"testing"

	"github.com/hardware-observer/hardware-exporter/metric"
)

const sasList = `LSI Corporation SAS2 IR Configuration Utility.
Version 20.00.00.00 (2014.09.18)
Copyright (c) 2008-2014 LSI Corporation. All rights reserved.


         Adapter      Vendor  Device                       SubSys  SubSys
 Index    Type          ID      ID    Pci Address          Ven ID  Dev ID
 -----  ------------  ------  ------  -----------------    ------  ------
   0     SAS2308_2     1000h    87h   00h:03h:00h:00h      1028h   1f38h
        SAS2IRCU: Utility Completed Successfully.`

const sasDisplay = `Read configuration has been initiated for controller 0
------------------------------------------------------------------------
Controller information
------------------------------------------------------------------------
  Controller type                         : SAS2308_2
  BIOS version                            : 7.39.02.00
  Firmware version                        : 20.00.07.00
------------------------------------------------------------------------
IR Volume information
------------------------------------------------------------------------
IR volume 1
  Volume ID                               : 286
  Status of volume                        : Okay (OKY)
  RAID level                              : RAID1
  Size (in MB)                            : 139236
IR volume 2
  Volume ID                               : 287
  Status of volume                        : Degraded (DGD)
  RAID level                              : RAID10
  Size (in MB)                            : 278784
------------------------------------------------------------------------
Physical device information
------------------------------------------------------------------------
Initiator at ID #0

Device is a Hard disk
  Enclosure #                             : 1
  Slot #                                  : 0
  State                                   : Optimal (OPT)
  Size (in MB)/(in sectors)               : 140014/286749487
  Manufacturer                            : SEAGATE
  Model Number                            : ST9146803SS
  Serial No                               : 6SD38L1V
  Protocol                                : SAS
  Drive Type                              : SAS_HDD

Device is a Hard disk
  Enclosure #                             : 1
  Slot #                                  : 1
  State                                   : Failed (FLD)
  Size (in MB)/(in sectors)               : 140014/286749487
  Manufacturer                            : SEAGATE
  Model Number                            : ST9146803SS
  Serial No                               : 6SD38KXS
  Protocol                                : SAS
  Drive Type                              : SAS_HDD

Device is a Enclosure services device
  Enclosure #                             : 1
  Slot #                                  : 255
  State                                   : Standby (SBY)
  Manufacturer                            : DP
  Model Number                            : BACKPLANE
  Protocol                                : SAS
------------------------------------------------------------------------
Enclosure information
------------------------------------------------------------------------
  Enclosure#                              : 1
  Logical ID                              : 5782bcb0:3701a700
  Numslots                                : 9
  StartSlot                               : 0
------------------------------------------------------------------------
SAS2IRCU: Utility Completed Successfully.`

func TestParseSASAdapterList(t *testing.T) {
	adapters := parseSASAdapterList(strings.Split(sasList, "\n"))
	if len(adapters) != 1 || adapters[0] != 0 {
		t.Fatalf("adapters = %v, want [0]", adapters)
	}
}

func TestParseSASDisplay(t *testing.T) {
	var md metric.MultiRecord
	parseSASDisplay(&md, "0", strings.Split(sasDisplay, "\n"), "sas2ircu")

	if v := findValue(t, md, "hw_virtual_disk_status", metric.Labels{"id": "286"}); v != float64(metric.OK) {
		t.Errorf("volume 286 status = %v, want ok", v)
	}
	if v := findValue(t, md, "hw_virtual_disk_status", metric.Labels{"id": "287"}); v != float64(metric.Warning) {
		t.Errorf("volume 287 status = %v, want warning", v)
	}

	if v := findValue(t, md, "hw_physical_disk_status", metric.Labels{"id": "1:0"}); v != float64(metric.OK) {
		t.Errorf("device 1:0 status = %v, want ok", v)
	}
	if v := findValue(t, md, "hw_physical_disk_status", metric.Labels{"id": "1:1"}); v != float64(metric.Critical) {
		t.Errorf("device 1:1 status = %v, want critical", v)
	}
	// The enclosure services device is not a disk and must not be counted.
	for _, r := range md {
		if r.Metric() == "hw_physical_disk_status" && r.Labels["id"] == "1:255" {
			t.Error("enclosure services device reported as a physical disk")
		}
	}

	if v := findValue(t, md, "hw_enclosure_slots", metric.Labels{"id": "1"}); v != 9 {
		t.Errorf("enclosure slots = %v, want 9", v)
	}
	if v := findValue(t, md, "hw_enclosure_status", metric.Labels{"controller": "0", "id": "1"}); v != float64(metric.OK) {
		t.Errorf("enclosure status = %v, want ok", v)
	}
	if v := findValue(t, md, "hw_raid_controller_virtual_disks", metric.Labels{"controller": "0"}); v != 2 {
		t.Errorf("virtual disk count = %v, want 2", v)
	}
	if v := findValue(t, md, "hw_raid_controller_physical_disks", metric.Labels{"controller": "0"}); v != 2 {
		t.Errorf("physical disk count = %v, want 2", v)
	}
}

func TestParenCode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Okay (OKY)", "OKY"},
		{"Optimal (OPT)", "OPT"},
		{"Missing", "Missing"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := parenCode(tt.in); got != tt.want {
			t.Errorf("parenCode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitKV(t *testing.T) {
	key, value, ok := splitKV("Volume ID                               : 286")
	if !ok || key != "Volume ID" || value != "286" {
		t.Fatalf("splitKV = %q, %q, %v", key, value, ok)
	}
	if _, _, ok := splitKV("no separator here"); ok {
		t.Fatal("expected ok=false for line without colon")
	}
}
