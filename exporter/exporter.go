// Package exporter exposes collected records on a Prometheus scrape
// endpoint. Collectors push records on a channel; the exporter keeps the
// latest record per series and serves them on /metrics, dropping series that
// have gone stale.
package exporter

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/version"

	"github.com/hardware-observer/hardware-exporter/metric"
	"github.com/hardware-observer/hardware-exporter/slog"
)

// Exporter implements prometheus.Collector over the record store.
type Exporter struct {
	// MaxAge is how long a record stays in the scrape output without being
	// refreshed by its collector. Records carrying their own MaxAge use
	// that instead.
	MaxAge time.Duration

	// Healthy gates the /health endpoint.
	Healthy func() bool

	mu      sync.RWMutex
	records map[string]*metric.Record
}

// New returns an Exporter with the given record freshness limit.
func New(maxAge time.Duration) *Exporter {
	return &Exporter{
		MaxAge:  maxAge,
		records: make(map[string]*metric.Record),
	}
}

// Listen consumes records from the collector channel until it is closed.
func (e *Exporter) Listen(ch <-chan *metric.Record) {
	for r := range ch {
		e.mu.Lock()
		e.records[r.Key()] = r
		e.mu.Unlock()
	}
}

// Describe implements prometheus.Collector. Descriptors are not known up
// front, so the exporter is registered as unchecked.
func (e *Exporter) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	now := time.Now()
	e.mu.Lock()
	fresh := make([]*metric.Record, 0, len(e.records))
	for k, r := range e.records {
		maxAge := r.MaxAge
		if maxAge == 0 {
			maxAge = e.MaxAge
		}
		if maxAge > 0 && now.Sub(r.Time) > maxAge {
			delete(e.records, k)
			continue
		}
		fresh = append(fresh, r)
	}
	e.mu.Unlock()

	for _, r := range fresh {
		vt := prometheus.GaugeValue
		if r.Rate == metric.Counter {
			vt = prometheus.CounterValue
		}
		desc := prometheus.NewDesc(r.Metric(), r.Desc, nil, prometheus.Labels(r.Labels))
		m, err := prometheus.NewConstMetric(desc, vt, r.Value)
		if err != nil {
			slog.Errorf("exporting %s: %v", r.Metric(), err)
			continue
		}
		ch <- m
	}
}

// Serve runs the scrape endpoint on the given port. It blocks until the
// server fails or stops.
func (e *Exporter) Serve(port int) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		version.NewCollector("hardware_exporter"),
	)
	if err := reg.Register(e); err != nil {
		return err
	}

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	router.HandleFunc("/health", e.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/", handleIndex).Methods(http.MethodGet)

	addr := fmt.Sprintf(":%d", port)
	slog.Infof("listening on %s", addr)
	return http.ListenAndServe(addr, router)
}

func (e *Exporter) handleHealth(w http.ResponseWriter, r *http.Request) {
	if e.Healthy != nil && !e.Healthy() {
		http.Error(w, "unhealthy: collector errors", http.StatusServiceUnavailable)
		return
	}
	w.Write([]byte("ok\n"))
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(`<html>
<head><title>Hardware Exporter</title></head>
<body>
<h1>Hardware Exporter</h1>
<p><a href="/metrics">Metrics</a></p>
<p><a href="/health">Health</a></p>
</body>
</html>
`))
}
