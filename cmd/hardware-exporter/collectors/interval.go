package collectors

import (
	"reflect"
	"runtime"
	"sync"
	"time"

	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/slog"
)

type IntervalCollector struct {
	F        func() (metric.MultiRecord, error)
	Interval time.Duration // defaults to DefaultFreq if unspecified
	Enable   func() bool
	name     string
	init     func()

	// internal use
	sync.Mutex
	enabled bool
}

func (c *IntervalCollector) Init() {
	if c.init != nil {
		c.init()
	}
}

func (c *IntervalCollector) Run(ch chan<- *metric.Record, quit <-chan struct{}) {
	if c.Enable != nil {
		go func() {
			for {
				next := time.After(time.Minute * 5)
				c.Lock()
				c.enabled = c.Enable()
				c.Unlock()
				select {
				case <-next:
				case <-quit:
					return
				}
			}
		}()
	}

	for {
		interval := c.Interval
		if interval == 0 {
			interval = DefaultFreq
		}
		next := time.After(interval)
		if c.Enabled() {
			timeStart := time.Now()
			md, err := c.F()
			timeFinish := time.Since(timeStart)
			result := 0
			if err != nil {
				slog.Errorf("%v: %v", c.Name(), err)
				result = 1
			}
			setStatus(c.Name(), err)
			tags := metric.Labels{"collector": c.Name()}
			Add(&md, metric.Collector, "duration_seconds", timeFinish.Seconds(), tags, metric.Gauge, metric.Second, "Duration in seconds for each collector run.")
			Add(&md, metric.Collector, "error", float64(result), tags, metric.Gauge, metric.Ok, "Status of collector run. 1=Error, 0=Success.")
			for _, r := range md {
				// A record stays scrapeable for three of its collector's
				// cycles, so slow collectors don't flap out of /metrics.
				if r.MaxAge == 0 {
					r.MaxAge = 3 * interval
				}
				ch <- r
			}
		}
		select {
		case <-next:
		case <-quit:
			return
		}
	}
}

func (c *IntervalCollector) Enabled() bool {
	if forced[c.Name()] {
		return true
	}
	if c.Enable == nil {
		return true
	}
	c.Lock()
	defer c.Unlock()
	return c.enabled
}

func (c *IntervalCollector) Name() string {
	if c.name != "" {
		return c.name
	}
	v := runtime.FuncForPC(reflect.ValueOf(c.F).Pointer())
	return v.Name()
}
