// Package metric defines the normalized schema that all vendor collectors
// emit into. Heterogeneous CLI output is reduced to Records: a component
// type, an instance identity carried in labels, and either an enumerated
// health state or a numeric reading with a unit.
package metric

import (
	"sort"
	"strings"
	"time"
)

// ComponentType identifies the class of hardware a record describes.
type ComponentType string

const (
	RAIDController ComponentType = "raid_controller"
	VirtualDisk    ComponentType = "virtual_disk"
	PhysicalDisk   ComponentType = "physical_disk"
	Enclosure      ComponentType = "enclosure"
	Battery        ComponentType = "battery"
	Sensor         ComponentType = "sensor"
	Power          ComponentType = "power"
	EventLog       ComponentType = "event_log"
	System         ComponentType = "system"
	Collector      ComponentType = "collector"
)

// Health is an enumerated severity. Collectors map vendor state strings onto
// it; free-text states never leave a parser.
type Health int

const (
	OK Health = iota
	Warning
	Critical
	Unknown
)

func (h Health) String() string {
	switch h {
	case OK:
		return "ok"
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	}
	return "unknown"
}

// HealthDesc is appended to the help text of every status metric.
const HealthDesc = "0=ok, 1=warning, 2=critical, 3=unknown."

// RateType is the type of a metric: gauge or counter.
type RateType string

const (
	Gauge   RateType = "gauge"
	Counter RateType = "counter"
)

// Unit is the unit for a numeric reading.
type Unit string

const (
	None   Unit = ""
	Ok     Unit = "ok"
	C      Unit = "C"
	RPM    Unit = "RPM"
	V      Unit = "V"
	A      Unit = "A"
	Watt   Unit = "watts"
	Second Unit = "seconds"
	Bytes  Unit = "bytes"
	Entry  Unit = "entries"
	Error  Unit = "errors"
	Device Unit = "devices"
)

// Labels hold the instance identity of a record (controller number, disk
// slot, sensor name, source tool).
type Labels map[string]string

// Record is one normalized observation.
type Record struct {
	Component ComponentType
	Name      string
	Value     float64
	Rate      RateType
	Unit      Unit
	Labels    Labels
	Desc      string
	Time      time.Time

	// MaxAge bounds how long the exporter serves the record without a
	// refresh. Collectors set it from their own interval; zero means the
	// exporter's default applies.
	MaxAge time.Duration
}

// Metric returns the full metric name for the record, e.g.
// hw_virtual_disk_status.
func (r *Record) Metric() string {
	return "hw_" + string(r.Component) + "_" + r.Name
}

// Key returns a stable identity for the record's series: metric name plus
// sorted labels. The exporter keeps the latest record per key.
func (r *Record) Key() string {
	keys := make([]string, 0, len(r.Labels))
	for k := range r.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(r.Metric())
	for _, k := range keys {
		b.WriteByte('{')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.Labels[k])
		b.WriteByte('}')
	}
	return b.String()
}

// MultiRecord accumulates records during one collection pass.
type MultiRecord []*Record

// Add appends a numeric reading.
func Add(md *MultiRecord, component ComponentType, name string, value float64, labels Labels, rate RateType, unit Unit, desc string) {
	*md = append(*md, &Record{
		Component: component,
		Name:      name,
		Value:     value,
		Rate:      rate,
		Unit:      unit,
		Labels:    labels,
		Desc:      desc,
		Time:      time.Now(),
	})
}

// AddHealth appends a status record for a component instance.
func AddHealth(md *MultiRecord, component ComponentType, h Health, labels Labels, desc string) {
	Add(md, component, "status", float64(h), labels, Gauge, Ok, desc+" "+HealthDesc)
}

// Clean concatenates arguments with a space and removes extra whitespace.
func Clean(ss ...string) string {
	v := strings.Join(ss, " ")
	fs := strings.Fields(v)
	return strings.Join(fs, " ")
}

// SanitizeLabel replaces characters outside [a-zA-Z0-9_.:/-] with
// underscores so vendor identifiers are safe as label values.
func SanitizeLabel(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '.' || r == ':' || r == '/' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
