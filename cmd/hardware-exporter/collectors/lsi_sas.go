package collectors

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hardware-observer/hardware-exporter/hwtool"
	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/util"
)

// sas2ircu and sas3ircu share one sectioned text grammar; the generation
// only decides which binary to run.

func init() {
	const interval = time.Minute * 5
	register(&IntervalCollector{F: cLsiSas2, name: "lsi_sas_2", Interval: interval, Enable: enableTool(hwtool.Sas2ircu)})
	register(&IntervalCollector{F: cLsiSas3, name: "lsi_sas_3", Interval: interval, Enable: enableTool(hwtool.Sas3ircu)})
}

func cLsiSas2() (metric.MultiRecord, error) {
	return lsiSAS(hwtool.Sas2ircu)
}

func cLsiSas3() (metric.MultiRecord, error) {
	return lsiSAS(hwtool.Sas3ircu)
}

func lsiSAS(t hwtool.Tool) (metric.MultiRecord, error) {
	bin := toolPath(t)
	var listLines []string
	err := util.ReadCommand(func(line string) error {
		listLines = append(listLines, line)
		return nil
	}, bin, "LIST")
	if err != nil {
		return nil, err
	}
	var md metric.MultiRecord
	for _, adapter := range parseSASAdapterList(listLines) {
		var lines []string
		err := util.ReadCommand(func(line string) error {
			lines = append(lines, line)
			return nil
		}, bin, strconv.Itoa(adapter), "DISPLAY")
		if err != nil {
			return md, fmt.Errorf("%s %d DISPLAY: %v", bin, adapter, err)
		}
		parseSASDisplay(&md, strconv.Itoa(adapter), lines, string(t))
	}
	return md, nil
}

// parseSASAdapterList extracts adapter indices from `sasXircu LIST` output:
// the data rows are the ones whose first field is an integer.
func parseSASAdapterList(lines []string) []int {
	var adapters []int
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		i, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		adapters = append(adapters, i)
	}
	return adapters
}

// Volume status codes from `Status of volume`, e.g. "Okay (OKY)".
var sasVolumeStates = map[string]metric.Health{
	"OKY":  metric.OK,
	"ONL":  metric.OK,
	"DGD":  metric.Warning,
	"INIT": metric.Warning,
	"FLD":  metric.Critical,
	"MIS":  metric.Critical,
}

// Physical device state codes, e.g. "Optimal (OPT)".
var sasDeviceStates = map[string]metric.Health{
	"OPT": metric.OK,
	"RDY": metric.OK,
	"AVL": metric.OK,
	"HSP": metric.OK,
	"SBY": metric.OK,
	"DGD": metric.Warning,
	"OSY": metric.Warning,
	"FLD": metric.Critical,
	"MIS": metric.Critical,
}

// parseSASDisplay walks the sectioned `sasXircu N DISPLAY` output. Sections
// are introduced by headers; entries are "key : value" lines. Lines that fit
// neither are skipped.
func parseSASDisplay(md *metric.MultiRecord, adapter string, lines []string, tool string) {
	const (
		secNone = iota
		secVolume
		secDevice
		secEnclosure
	)
	section := secNone
	volumes, devices := 0, 0

	var volTags metric.Labels
	var volState string
	flushVolume := func() {
		if volTags == nil {
			return
		}
		AddHealth(md, metric.VirtualDisk, healthFrom(sasVolumeStates, volState), volTags, descVDisk)
		volumes++
		volTags, volState = nil, ""
	}

	var devEnc, devSlot, devState, devModel, devProto string
	inDevice := false
	flushDevice := func() {
		if !inDevice {
			return
		}
		tags := metric.Labels{
			"controller": adapter,
			"id":         devEnc + ":" + devSlot,
			"model":      metric.Clean(devModel),
			"interface":  devProto,
			"tool":       tool,
		}
		AddHealth(md, metric.PhysicalDisk, healthFrom(sasDeviceStates, devState), tags, descPDisk)
		devices++
		devEnc, devSlot, devState, devModel, devProto = "", "", "", "", ""
		inDevice = false
	}

	var encID, encSlots string
	flushEnclosure := func() {
		if encID == "" {
			return
		}
		tags := metric.Labels{"controller": adapter, "id": encID, "tool": tool}
		// sasXircu has no enclosure health field; an enclosure answering
		// DISPLAY is ok, and one that stops answering goes stale.
		AddHealth(md, metric.Enclosure, metric.OK, tags, descSASEncStatus)
		if n, err := strconv.ParseFloat(encSlots, 64); err == nil {
			Add(md, metric.Enclosure, "slots", n, tags, metric.Gauge, metric.Device, descSASEnclosure)
		}
		encID, encSlots = "", ""
	}

	flushAll := func() {
		flushVolume()
		flushDevice()
		flushEnclosure()
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "IR Volume information"):
			flushAll()
			section = secVolume
			continue
		case strings.HasPrefix(trimmed, "Physical device information"):
			flushAll()
			section = secDevice
			continue
		case strings.HasPrefix(trimmed, "Enclosure information"):
			flushAll()
			section = secEnclosure
			continue
		}
		switch section {
		case secVolume:
			if strings.HasPrefix(trimmed, "IR volume") {
				flushVolume()
				volTags = metric.Labels{"controller": adapter, "id": "", "raid_level": "", "tool": tool}
				continue
			}
			key, value, ok := splitKV(trimmed)
			if !ok || volTags == nil {
				continue
			}
			switch key {
			case "Volume ID":
				volTags["id"] = value
			case "RAID level":
				volTags["raid_level"] = value
			case "Status of volume":
				volState = parenCode(value)
			}
		case secDevice:
			if strings.HasPrefix(trimmed, "Device is a") {
				flushDevice()
				inDevice = strings.Contains(trimmed, "Hard disk")
				continue
			}
			key, value, ok := splitKV(trimmed)
			if !ok || !inDevice {
				continue
			}
			switch key {
			case "Enclosure #":
				devEnc = value
			case "Slot #":
				devSlot = value
			case "State":
				devState = parenCode(value)
			case "Model Number":
				devModel = value
			case "Protocol":
				devProto = value
			}
		case secEnclosure:
			key, value, ok := splitKV(trimmed)
			if !ok {
				continue
			}
			switch key {
			case "Enclosure#":
				flushEnclosure()
				encID = value
			case "Numslots":
				encSlots = value
			}
		}
	}
	flushAll()

	ctags := metric.Labels{"controller": adapter, "model": "", "tool": tool}
	Add(md, metric.RAIDController, "virtual_disks", float64(volumes), ctags, metric.Gauge, metric.Device, descRAIDCtrlVD)
	Add(md, metric.RAIDController, "physical_disks", float64(devices), ctags, metric.Gauge, metric.Device, descRAIDCtrlPD)
}

// splitKV splits a "key : value" display line at the first colon.
func splitKV(line string) (key, value string, ok bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return "", "", false
	}
	return strings.TrimSpace(line[:i]), strings.TrimSpace(line[i+1:]), true
}

// parenCode extracts the short state code from values like "Optimal (OPT)".
// Without parentheses the whole value is returned.
func parenCode(s string) string {
	i := strings.LastIndexByte(s, '(')
	j := strings.LastIndexByte(s, ')')
	if i < 0 || j < i {
		return s
	}
	return s[i+1 : j]
}

const (
	descSASEnclosure = "Number of slots in the SAS enclosure."
	descSASEncStatus = "Status of SAS enclosures visible to the adapter."
)
