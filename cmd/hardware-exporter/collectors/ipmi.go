package collectors

import (
	"strconv"
	"strings"
	"time"

	"github.com/hardware-observer/hardware-exporter/hwtool"
	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/util"
)

func init() {
	register(&IntervalCollector{F: cIpmiDCMI, name: "ipmi_dcmi", Enable: enableTool(hwtool.IpmiDCMI)})
	register(&IntervalCollector{F: cIpmiSensor, name: "ipmi_sensor", Enable: enableTool(hwtool.IpmiSensor)})
	register(&IntervalCollector{F: cIpmiSEL, name: "ipmi_sel", Interval: time.Minute * 5, Enable: enableTool(hwtool.IpmiSEL)})
}

func cIpmiDCMI() (metric.MultiRecord, error) {
	var lines []string
	err := util.ReadCommand(func(line string) error {
		lines = append(lines, line)
		return nil
	}, toolPath(hwtool.IpmiDCMI), "--get-system-power-statistics")
	if err != nil {
		return nil, err
	}
	var md metric.MultiRecord
	parseDCMI(&md, lines)
	return md, nil
}

// parseDCMI reads `ipmi-dcmi --get-system-power-statistics` output:
//
//	Current Power                        : 105 Watts
//	...
//	Power Measurement                    : Active
func parseDCMI(md *metric.MultiRecord, lines []string) {
	tags := metric.Labels{"source": "dcmi", "id": ""}
	for _, line := range lines {
		key, value, ok := splitKV(line)
		if !ok {
			continue
		}
		switch key {
		case "Current Power":
			fs := strings.Fields(value)
			if len(fs) < 1 {
				continue
			}
			if w, err := strconv.ParseFloat(fs[0], 64); err == nil {
				Add(md, metric.Power, "watts", w, tags, metric.Gauge, metric.Watt, descPower)
			}
		case "Power Measurement":
			active := strings.EqualFold(value, "Active")
			Add(md, metric.Power, "measurement_active", float64(util.Btoi(active)), metric.Labels{"source": "dcmi"}, metric.Gauge, metric.None, descDCMIActive)
		}
	}
}

func cIpmiSensor() (metric.MultiRecord, error) {
	var lines []string
	err := util.ReadCommand(func(line string) error {
		lines = append(lines, line)
		return nil
	}, toolPath(hwtool.IpmiSensor),
		"--sdr-cache-recreate",
		"--comma-separated-output",
		"--no-header-output",
		"--output-sensor-state")
	if err != nil {
		return nil, err
	}
	var md metric.MultiRecord
	parseIpmiSensors(&md, lines)
	return md, nil
}

var ipmiSensorStates = map[string]metric.Health{
	"Nominal":  metric.OK,
	"Warning":  metric.Warning,
	"Critical": metric.Critical,
}

// parseIpmiSensors reads ipmimonitoring CSV rows:
// ID,Name,Type,State,Reading,Units,Event. Rows whose state is N/A describe
// unreadable sensors and are skipped.
func parseIpmiSensors(md *metric.MultiRecord, lines []string) {
	for _, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) < 7 {
			continue
		}
		name, typ, state := fields[1], fields[2], fields[3]
		reading, units := fields[4], fields[5]
		if state == "N/A" {
			continue
		}
		tags := metric.Labels{"name": name, "type": typ, "tool": "ipmimonitoring"}
		AddHealth(md, metric.Sensor, healthFrom(ipmiSensorStates, state), tags, descSensorState)
		if reading == "N/A" {
			continue
		}
		v, err := strconv.ParseFloat(reading, 64)
		if err != nil {
			continue
		}
		rtags := metric.Labels{"name": name, "type": typ, "unit": units, "tool": "ipmimonitoring"}
		Add(md, metric.Sensor, "reading", v, rtags, metric.Gauge, metric.Unit(units), descSensorReading)
	}
}

func cIpmiSEL() (metric.MultiRecord, error) {
	var lines []string
	err := util.ReadCommand(func(line string) error {
		lines = append(lines, line)
		return nil
	}, toolPath(hwtool.IpmiSEL),
		"--sdr-cache-recreate",
		"--comma-separated-output",
		"--no-header-output",
		"--output-event-state")
	if err != nil {
		return nil, err
	}
	var md metric.MultiRecord
	parseSEL(&md, lines)
	return md, nil
}

// parseSEL reads ipmi-sel CSV rows (ID,Date,Time,Name,Type,State,Event) and
// counts entries per state. All three severities are always emitted so that
// a cleared log resets the series to zero.
func parseSEL(md *metric.MultiRecord, lines []string) {
	counts := map[string]float64{"nominal": 0, "warning": 0, "critical": 0}
	for _, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			continue
		}
		state := strings.ToLower(fields[5])
		if _, ok := counts[state]; ok {
			counts[state]++
		}
	}
	for state, n := range counts {
		tags := metric.Labels{"severity": state, "tool": "ipmi-sel"}
		Add(md, metric.EventLog, "entries", n, tags, metric.Gauge, metric.Entry, descSEL)
	}
}

const (
	descDCMIActive    = "Whether DCMI power measurement is active."
	descSensorState   = "State of IPMI sensors."
	descSensorReading = "Reading of IPMI sensors in the sensor's own unit."
	descSEL           = "Number of system event log entries by severity."
)
