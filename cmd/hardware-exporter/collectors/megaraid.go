package collectors

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hardware-observer/hardware-exporter/hwtool"
	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/slog"
	"github.com/hardware-observer/hardware-exporter/util"
)

// storcli and perccli speak the same grammar: perccli is the Dell rebadge of
// Broadcom's storcli. Both collectors share one parser and are told apart by
// the tool label.

func init() {
	const interval = time.Minute * 5
	register(&IntervalCollector{F: cMegaRAID, name: "mega_raid", Interval: interval, Enable: enableTool(hwtool.Storcli)})
	register(&IntervalCollector{F: cPowerEdgeRAID, name: "poweredge_raid", Interval: interval, Enable: enableTool(hwtool.Perccli)})
}

func cMegaRAID() (metric.MultiRecord, error) {
	return megaRAID(hwtool.Storcli)
}

func cPowerEdgeRAID() (metric.MultiRecord, error) {
	return megaRAID(hwtool.Perccli)
}

func megaRAID(t hwtool.Tool) (metric.MultiRecord, error) {
	out, err := util.CommandOutput(util.DefaultTimeout, toolPath(t), "/call", "show", "all", "J")
	if err != nil {
		return nil, err
	}
	md, err := parseMegaRAID(out, string(t))
	if err != nil {
		return md, err
	}
	// Per-drive error counters and temperature live in the drive detail
	// output. Controllers without enclosures reject the eall selector, so
	// a failure here only costs the detail metrics.
	dout, err := util.CommandOutput(util.DefaultTimeout, toolPath(t), "/call/eall/sall", "show", "all", "J")
	if err != nil {
		slog.Debugf("%s: drive details: %v", t, err)
		return md, nil
	}
	if err := parseMegaRAIDDrives(&md, dout, string(t)); err != nil {
		slog.Debugf("%s: drive details: %v", t, err)
	}
	return md, nil
}

type megaraidOutput struct {
	Controllers []struct {
		CommandStatus megaraidCommandStatus `json:"Command Status"`
		ResponseData  megaraidData          `json:"Response Data"`
	} `json:"Controllers"`
}

type megaraidCommandStatus struct {
	Controller  int    `json:"Controller"`
	Status      string `json:"Status"`
	Description string `json:"Description"`
}

type megaraidData struct {
	Basics struct {
		Controller   int    `json:"Controller"`
		Model        string `json:"Model"`
		SerialNumber string `json:"Serial Number"`
	} `json:"Basics"`
	Status struct {
		ControllerStatus          string  `json:"Controller Status"`
		MemoryCorrectableErrors   float64 `json:"Memory Correctable Errors"`
		MemoryUncorrectableErrors float64 `json:"Memory Uncorrectable Errors"`
	} `json:"Status"`
	VDList  []megaraidVD  `json:"VD LIST"`
	PDList  []megaraidPD  `json:"PD LIST"`
	BBUInfo []megaraidBat `json:"BBU_Info"`
	CVInfo  []megaraidBat `json:"Cachevault_Info"`
}

type megaraidVD struct {
	ID    string `json:"DG/VD"`
	Type  string `json:"TYPE"`
	State string `json:"State"`
	Size  string `json:"Size"`
}

type megaraidPD struct {
	Slot  string `json:"EID:Slt"`
	DID   int    `json:"DID"`
	State string `json:"State"`
	Intf  string `json:"Intf"`
	Med   string `json:"Med"`
	Model string `json:"Model"`
}

type megaraidBat struct {
	Model string `json:"Model"`
	State string `json:"State"`
	Temp  string `json:"Temp"`
}

var megaraidCtrlStates = map[string]metric.Health{
	"Optimal":         metric.OK,
	"OK":              metric.OK,
	"Needs Attention": metric.Warning,
	"Degraded":        metric.Warning,
	"Failed":          metric.Critical,
}

// Virtual drive states per the storcli reference: Optl optimal, Pdgd
// partially degraded, Dgrd degraded, Rec recovering, OfLn offline. A
// degraded volume is still serving IO, so it is a warning; only an
// offline volume is critical.
var megaraidVDStates = map[string]metric.Health{
	"Optl": metric.OK,
	"Pdgd": metric.Warning,
	"Rec":  metric.Warning,
	"Dgrd": metric.Warning,
	"OfLn": metric.Critical,
}

var megaraidPDStates = map[string]metric.Health{
	"Onln":   metric.OK,
	"GHS":    metric.OK,
	"DHS":    metric.OK,
	"JBOD":   metric.OK,
	"UGood":  metric.OK,
	"Rbld":   metric.Warning,
	"Cpybck": metric.Warning,
	"UBad":   metric.Critical,
	"Offln":  metric.Critical,
	"Msng":   metric.Critical,
}

var megaraidBatStates = map[string]metric.Health{
	"Optimal":  metric.OK,
	"OK":       metric.OK,
	"Learning": metric.Warning,
	"Charging": metric.Warning,
	"Degraded": metric.Warning,
	"Failed":   metric.Critical,
	"Missing":  metric.Critical,
	"Msng":     metric.Critical,
}

func healthFrom(m map[string]metric.Health, state string) metric.Health {
	if h, ok := m[state]; ok {
		return h
	}
	return metric.Unknown
}

func parseMegaRAID(out []byte, tool string) (metric.MultiRecord, error) {
	var data megaraidOutput
	if err := json.Unmarshal(out, &data); err != nil {
		return nil, fmt.Errorf("%s: decoding output: %v", tool, err)
	}
	var md metric.MultiRecord
	for _, c := range data.Controllers {
		if c.CommandStatus.Status != "Success" {
			return md, fmt.Errorf("%s: controller %d: %s", tool, c.CommandStatus.Controller, c.CommandStatus.Description)
		}
		rd := c.ResponseData
		ctrl := strconv.Itoa(rd.Basics.Controller)
		ctags := metric.Labels{"controller": ctrl, "model": rd.Basics.Model, "tool": tool}
		AddHealth(&md, metric.RAIDController, healthFrom(megaraidCtrlStates, rd.Status.ControllerStatus), ctags, descRAIDCtrl)
		Add(&md, metric.RAIDController, "memory_correctable_errors", rd.Status.MemoryCorrectableErrors, ctags, metric.Counter, metric.Error, descRAIDCtrlCE)
		Add(&md, metric.RAIDController, "memory_uncorrectable_errors", rd.Status.MemoryUncorrectableErrors, ctags, metric.Counter, metric.Error, descRAIDCtrlUE)
		Add(&md, metric.RAIDController, "virtual_disks", float64(len(rd.VDList)), ctags, metric.Gauge, metric.Device, descRAIDCtrlVD)
		Add(&md, metric.RAIDController, "physical_disks", float64(len(rd.PDList)), ctags, metric.Gauge, metric.Device, descRAIDCtrlPD)
		for _, vd := range rd.VDList {
			tags := metric.Labels{"controller": ctrl, "id": vd.ID, "raid_level": vd.Type, "tool": tool}
			AddHealth(&md, metric.VirtualDisk, healthFrom(megaraidVDStates, vd.State), tags, descVDisk)
		}
		for _, pd := range rd.PDList {
			tags := metric.Labels{
				"controller": ctrl,
				"id":         pd.Slot,
				"interface":  pd.Intf,
				"model":      metric.Clean(pd.Model),
				"tool":       tool,
			}
			AddHealth(&md, metric.PhysicalDisk, healthFrom(megaraidPDStates, pd.State), tags, descPDisk)
		}
		bats := rd.BBUInfo
		bats = append(bats, rd.CVInfo...)
		for i, b := range bats {
			tags := metric.Labels{"controller": ctrl, "id": strconv.Itoa(i), "model": metric.Clean(b.Model), "tool": tool}
			AddHealth(&md, metric.Battery, healthFrom(megaraidBatStates, b.State), tags, descBattery)
			if v, ok := parseTempC(b.Temp); ok {
				Add(&md, metric.Battery, "temperature_celsius", v, tags, metric.Gauge, metric.C, descBatteryTemp)
			}
		}
	}
	return md, nil
}

// The drive detail output keys drives by their topology path, e.g.
// "Drive /c0/e32/s1 - Detailed Information", with the counters nested under
// a "Drive /c0/e32/s1 State" object.
var megaraidDriveRE = regexp.MustCompile(`^Drive (/c(\d+)/e(\d+)/s(\d+)) - Detailed Information$`)

type megaraidDriveOutput struct {
	Controllers []struct {
		CommandStatus megaraidCommandStatus      `json:"Command Status"`
		ResponseData  map[string]json.RawMessage `json:"Response Data"`
	} `json:"Controllers"`
}

type megaraidDriveState struct {
	MediaErrors        float64 `json:"Media Error Count"`
	OtherErrors        float64 `json:"Other Error Count"`
	PredictiveFailures float64 `json:"Predictive Failure Count"`
	Temperature        string  `json:"Drive Temperature"`
}

func parseMegaRAIDDrives(md *metric.MultiRecord, out []byte, tool string) error {
	var data megaraidDriveOutput
	if err := json.Unmarshal(out, &data); err != nil {
		return fmt.Errorf("%s: decoding drive output: %v", tool, err)
	}
	for _, c := range data.Controllers {
		if c.CommandStatus.Status != "Success" {
			continue
		}
		for key, raw := range c.ResponseData {
			m := megaraidDriveRE.FindStringSubmatch(key)
			if m == nil {
				continue
			}
			var detail map[string]json.RawMessage
			if err := json.Unmarshal(raw, &detail); err != nil {
				continue
			}
			stateRaw, ok := detail["Drive "+m[1]+" State"]
			if !ok {
				continue
			}
			var st megaraidDriveState
			if err := json.Unmarshal(stateRaw, &st); err != nil {
				continue
			}
			tags := metric.Labels{"controller": m[2], "id": m[3] + ":" + m[4], "tool": tool}
			Add(md, metric.PhysicalDisk, "media_errors", st.MediaErrors, tags, metric.Counter, metric.Error, descPDiskMediaErr)
			Add(md, metric.PhysicalDisk, "other_errors", st.OtherErrors, tags, metric.Counter, metric.Error, descPDiskOtherErr)
			Add(md, metric.PhysicalDisk, "predictive_failures", st.PredictiveFailures, tags, metric.Counter, metric.Error, descPDiskPredFail)
			if v, ok := parseTempC(st.Temperature); ok {
				Add(md, metric.PhysicalDisk, "temperature_celsius", v, tags, metric.Gauge, metric.C, descPDiskTemp)
			}
		}
	}
	return nil
}

// parseTempC reads a vendor temperature string such as "28C (82.40 F)" or
// "27C".
func parseTempC(s string) (float64, bool) {
	fs := strings.Fields(s)
	if len(fs) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(fs[0], "C"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

const (
	descRAIDCtrlCE    = "Correctable memory errors reported by the RAID controller."
	descRAIDCtrlUE    = "Uncorrectable memory errors reported by the RAID controller."
	descBatteryTemp   = "Temperature of the controller backup battery in celsius."
	descPDiskMediaErr = "Media errors reported for the physical disk."
	descPDiskOtherErr = "Other errors reported for the physical disk."
	descPDiskPredFail = "Predictive failure events reported for the physical disk."
	descPDiskTemp     = "Temperature of the physical disk in celsius."
)
