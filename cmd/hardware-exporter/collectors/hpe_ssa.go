package collectors

import (
	"regexp"
	"strings"
	"time"

	"github.com/hardware-observer/hardware-exporter/hwtool"
	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/util"
)

func init() {
	register(&IntervalCollector{F: cHpeSSA, name: "hpe_ssa", Interval: time.Minute * 5, Enable: enableTool(hwtool.Ssacli)})
}

func cHpeSSA() (metric.MultiRecord, error) {
	bin := toolPath(hwtool.Ssacli)
	var md metric.MultiRecord
	var statusLines []string
	err := util.ReadCommand(func(line string) error {
		statusLines = append(statusLines, line)
		return nil
	}, bin, "ctrl", "all", "show", "status")
	if err != nil {
		return nil, err
	}
	parseSsaStatus(&md, statusLines)

	var configLines []string
	err = util.ReadCommand(func(line string) error {
		configLines = append(configLines, line)
		return nil
	}, bin, "ctrl", "all", "show", "config")
	if err != nil {
		return md, err
	}
	parseSsaConfig(&md, configLines)
	return md, nil
}

var (
	ssaCtrlRE = regexp.MustCompile(`^(Smart (?:Array|HBA) \S+) in Slot (\S+)`)
	ssaLDRE   = regexp.MustCompile(`^logicaldrive (\S+) \(([^)]+)\)`)
	ssaPDRE   = regexp.MustCompile(`^physicaldrive (\S+) \(([^)]+)\)`)
)

var ssaStates = map[string]metric.Health{
	"OK":                    metric.OK,
	"Recovering":            metric.Warning,
	"Rebuilding":            metric.Warning,
	"Interim Recovery Mode": metric.Warning,
	"Predictive Failure":    metric.Warning,
	"Not Configured":        metric.Warning,
	"Temporarily Disabled":  metric.Warning,
	"Failed":                metric.Critical,
	"Disabled":              metric.Critical,
}

// parseSsaStatus reads `ssacli ctrl all show status`: a controller header
// followed by indented "<component> Status: <state>" lines.
func parseSsaStatus(md *metric.MultiRecord, lines []string) {
	var model, slot string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := ssaCtrlRE.FindStringSubmatch(trimmed); m != nil {
			model, slot = m[1], m[2]
			continue
		}
		if model == "" {
			continue
		}
		key, value, ok := splitKV(trimmed)
		if !ok {
			continue
		}
		tags := metric.Labels{"controller": slot, "model": model, "tool": "ssacli"}
		switch key {
		case "Controller Status":
			AddHealth(md, metric.RAIDController, healthFrom(ssaStates, value), tags, descRAIDCtrl)
		case "Cache Status":
			Add(md, metric.RAIDController, "cache_status", float64(healthFrom(ssaStates, value)), tags, metric.Gauge, metric.Ok, descSSACache+" "+metric.HealthDesc)
		case "Battery/Capacitor Status":
			btags := metric.Labels{"controller": slot, "id": "", "model": model, "tool": "ssacli"}
			AddHealth(md, metric.Battery, healthFrom(ssaStates, value), btags, descBattery)
		}
	}
}

// parseSsaConfig reads `ssacli ctrl all show config`: controller headers,
// then array blocks with logicaldrive and physicaldrive lines such as
//
//	logicaldrive 1 (279.37 GB, RAID 1, OK)
//	physicaldrive 1I:2:1 (port 1I:box 2:bay 1, SAS, 300 GB, OK)
func parseSsaConfig(md *metric.MultiRecord, lines []string) {
	var slot string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if m := ssaCtrlRE.FindStringSubmatch(trimmed); m != nil {
			slot = m[2]
			continue
		}
		if m := ssaLDRE.FindStringSubmatch(trimmed); m != nil {
			parts := splitParen(m[2])
			if len(parts) < 3 {
				continue
			}
			tags := metric.Labels{
				"controller": slot,
				"id":         m[1],
				"raid_level": strings.ReplaceAll(parts[1], " ", ""),
				"tool":       "ssacli",
			}
			AddHealth(md, metric.VirtualDisk, healthFrom(ssaStates, parts[2]), tags, descVDisk)
			continue
		}
		if m := ssaPDRE.FindStringSubmatch(trimmed); m != nil {
			parts := splitParen(m[2])
			if len(parts) < 4 {
				continue
			}
			tags := metric.Labels{
				"controller": slot,
				"id":         m[1],
				"interface":  parts[1],
				"model":      "",
				"tool":       "ssacli",
			}
			AddHealth(md, metric.PhysicalDisk, healthFrom(ssaStates, parts[3]), tags, descPDisk)
		}
	}
}

func splitParen(s string) []string {
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

const descSSACache = "Status of the HPE Smart Array controller cache."
