package collectors

import (
	"time"

	"github.com/stmcginnis/gofish"
	"github.com/stmcginnis/gofish/common"

	"github.com/hardware-observer/hardware-exporter/hwtool"
	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/slog"
)

// redfishConfig holds the BMC connection parameters. Set from the config
// before Run; the collector stays disabled while it is nil.
var redfishConfig *gofish.ClientConfig

// SetRedfish enables the redfish collector against the given BMC endpoint.
func SetRedfish(endpoint, username, password string) {
	redfishConfig = &gofish.ClientConfig{
		Endpoint: endpoint,
		Username: username,
		Password: password,
		Insecure: true,
	}
}

func init() {
	register(&IntervalCollector{F: cRedfish, name: "redfish", Interval: time.Minute * 5, Enable: enableTool(hwtool.Redfish)})
}

var redfishHealth = map[common.Health]metric.Health{
	common.OKHealth:       metric.OK,
	common.WarningHealth:  metric.Warning,
	common.CriticalHealth: metric.Critical,
}

func healthFromRedfish(h common.Health) metric.Health {
	if m, ok := redfishHealth[h]; ok {
		return m
	}
	return metric.Unknown
}

func cRedfish() (metric.MultiRecord, error) {
	if redfishConfig == nil {
		return nil, nil
	}
	client, err := gofish.Connect(*redfishConfig)
	if err != nil {
		return nil, err
	}
	defer client.Logout()

	var md metric.MultiRecord
	systems, err := client.Service.Systems()
	if err != nil {
		return nil, err
	}
	for _, sys := range systems {
		tags := metric.Labels{"id": sys.ID, "tool": "redfish"}
		AddHealth(&md, metric.System, healthFromRedfish(sys.Status.Health), tags, descRedfishSystem)
		Add(&md, metric.System, "memory_status", float64(healthFromRedfish(sys.MemorySummary.Status.HealthRollup)), tags, metric.Gauge, metric.Ok, descRedfishMemory+" "+metric.HealthDesc)
		Add(&md, metric.System, "processor_status", float64(healthFromRedfish(sys.ProcessorSummary.Status.HealthRollup)), tags, metric.Gauge, metric.Ok, descRedfishCPU+" "+metric.HealthDesc)

		storage, err := sys.Storage()
		if err != nil {
			slog.Debugf("redfish: system %s storage: %v", sys.ID, err)
			continue
		}
		for _, st := range storage {
			drives, err := st.Drives()
			if err != nil {
				slog.Debugf("redfish: storage %s drives: %v", st.ID, err)
				continue
			}
			for _, d := range drives {
				dtags := metric.Labels{
					"controller": st.ID,
					"id":         d.ID,
					"interface":  string(d.Protocol),
					"model":      metric.Clean(d.Model),
					"tool":       "redfish",
				}
				AddHealth(&md, metric.PhysicalDisk, healthFromRedfish(d.Status.Health), dtags, descPDisk)
			}
		}
	}

	chassis, err := client.Service.Chassis()
	if err != nil {
		slog.Debugf("redfish: chassis: %v", err)
		return md, nil
	}
	for _, ch := range chassis {
		power, err := ch.Power()
		if err != nil || power == nil {
			continue
		}
		for _, pc := range power.PowerControl {
			tags := metric.Labels{"source": "redfish", "id": ch.ID}
			Add(&md, metric.Power, "watts", float64(pc.PowerConsumedWatts), tags, metric.Gauge, metric.Watt, descPower)
			break
		}
	}
	return md, nil
}

const (
	descRedfishSystem = "Overall BMC-reported system health."
	descRedfishMemory = "BMC-reported memory health rollup."
	descRedfishCPU    = "BMC-reported processor health rollup."
)
