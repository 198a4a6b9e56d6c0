// Package collectors implements the vendor tool collectors. Each collector
// invokes one diagnostic CLI on an interval and normalizes its output into
// metric records.
package collectors

import (
	"strings"
	"sync"
	"time"

	"github.com/hardware-observer/hardware-exporter/hwtool"
	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/util"
)

var collectors []Collector

// DefaultFreq is the collection interval for collectors that don't specify
// their own.
var DefaultFreq = time.Minute

// AddTags is added to the labels of every record. Set from the config before
// Run.
var AddTags metric.Labels

type Collector interface {
	Run(chan<- *metric.Record, <-chan struct{})
	Name() string
	Init()
}

var locator *hwtool.Locator

// SetLocator hands the tool locator to the collectors. Must be called before
// Run; collectors use it for enablement and binary paths.
func SetLocator(l *hwtool.Locator) {
	locator = l
}

func register(c Collector) {
	collectors = append(collectors, c)
}

// forced collectors run even when tool detection did not find their tool.
var forced = make(map[string]bool)

// Force marks collectors as explicitly enabled, bypassing tool detection.
// Set from the config's Collectors list; a forced collector whose tool is
// genuinely absent surfaces the exec failure on its error metric.
func Force(names []string) {
	for _, n := range names {
		forced[n] = true
	}
}

// Search returns all collectors whose name contains one of the terms. With
// no terms, all collectors are returned.
func Search(terms []string) []Collector {
	if len(terms) == 0 {
		return collectors
	}
	var r []Collector
	for _, c := range collectors {
		for _, term := range terms {
			if strings.Contains(c.Name(), term) {
				r = append(r, c)
				break
			}
		}
	}
	return r
}

// Run starts each collector in its own goroutine. All records arrive on the
// returned channel; closing the quit channel stops the collectors.
func Run(cs []Collector) (chan *metric.Record, chan struct{}) {
	if cs == nil {
		cs = collectors
	}
	ch := make(chan *metric.Record)
	quit := make(chan struct{})
	for _, c := range cs {
		c.Init()
		go c.Run(ch, quit)
	}
	return ch, quit
}

// Add appends a record with the host identity and configured extra tags
// applied.
func Add(md *metric.MultiRecord, component metric.ComponentType, name string, value float64, labels metric.Labels, rate metric.RateType, unit metric.Unit, desc string) {
	ls := metric.Labels{"host": util.Hostname()}
	for k, v := range AddTags {
		ls[k] = v
	}
	for k, v := range labels {
		ls[k] = metric.SanitizeLabel(v)
	}
	metric.Add(md, component, name, value, ls, rate, unit, desc)
}

// AddHealth appends a status record with the host identity applied.
func AddHealth(md *metric.MultiRecord, component metric.ComponentType, h metric.Health, labels metric.Labels, desc string) {
	Add(md, component, "status", float64(h), labels, metric.Gauge, metric.Ok, desc+" "+metric.HealthDesc)
}

// Shared help strings. Prometheus requires every series of a family to carry
// the same help text and label keys, so families fed by several vendor tools
// define them once here. The tool label tells the sources apart.
const (
	descRAIDCtrl   = "Overall status of RAID controllers."
	descRAIDCtrlVD = "Number of virtual disks on the controller."
	descRAIDCtrlPD = "Number of physical disks attached to the controller."
	descVDisk      = "Overall status of virtual disks."
	descPDisk      = "Overall status of physical disks."
	descBattery    = "Status of controller backup batteries and cache vaults."
	descPower      = "System power reading in watts."
)

// enableTool gates a collector on its tool having been detected.
func enableTool(t hwtool.Tool) func() bool {
	return func() bool {
		return locator != nil && locator.Available(t)
	}
}

// toolPath resolves the binary for a tool, falling back to the tool name so
// a misconfiguration surfaces as a normal exec error.
func toolPath(t hwtool.Tool) string {
	if locator == nil {
		return string(t)
	}
	if p := locator.Path(t); p != "" {
		return p
	}
	return string(t)
}

// Per-collector run results, for the exporter's health endpoint.
var (
	statusLock sync.Mutex
	statuses   = make(map[string]error)
	ran        = make(map[string]bool)
)

func setStatus(name string, err error) {
	statusLock.Lock()
	defer statusLock.Unlock()
	ran[name] = true
	statuses[name] = err
}

// Healthy reports whether every enabled collector has completed at least one
// run and the most recent run of each succeeded.
func Healthy(cs []Collector) bool {
	statusLock.Lock()
	defer statusLock.Unlock()
	for _, c := range cs {
		type enabler interface{ Enabled() bool }
		if e, ok := c.(enabler); ok && !e.Enabled() {
			continue
		}
		if !ran[c.Name()] || statuses[c.Name()] != nil {
			return false
		}
	}
	return true
}
