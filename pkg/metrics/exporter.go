package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/psantana5/workgate/pkg/models"
	"github.com/psantana5/workgate/pkg/store"
)

// Exporter exports Prometheus metrics for the workgate server.
// It implements gate.Recorder so every evaluation is counted.
type Exporter struct {
	store         store.Store
	startTime     time.Time
	registry      *promclient.Registry
	checksTotal   *promclient.CounterVec
	checkDuration promclient.Histogram
}

// NewExporter creates a new Prometheus exporter
func NewExporter(s store.Store) *Exporter {
	registry := promclient.NewRegistry()

	checksTotal := promclient.NewCounterVec(promclient.CounterOpts{
		Name: "workgate_checks_total",
		Help: "Total gate evaluations by window and result",
	}, []string{"window", "result"})

	checkDuration := promclient.NewHistogram(promclient.HistogramOpts{
		Name:    "workgate_check_duration_seconds",
		Help:    "Duration of gate check requests",
		Buckets: promclient.DefBuckets,
	})

	registry.MustRegister(checksTotal, checkDuration)

	return &Exporter{
		store:         s,
		startTime:     time.Now(),
		registry:      registry,
		checksTotal:   checksTotal,
		checkDuration: checkDuration,
	}
}

// RecordCheck counts one gate evaluation
func (e *Exporter) RecordCheck(window models.Window, timeOfDay int, allowed bool) {
	result := "denied"
	if allowed {
		result = "allowed"
	}
	e.checksTotal.WithLabelValues(window.Name, result).Inc()
}

// ObserveCheckDuration records the latency of one check request
func (e *Exporter) ObserveCheckDuration(d time.Duration) {
	e.checkDuration.Observe(d.Seconds())
}

// ServeHTTP serves Prometheus-compatible metrics at /metrics
func (e *Exporter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	fmt.Fprintf(w, "# HELP workgate_uptime_seconds Server uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE workgate_uptime_seconds gauge\n")
	fmt.Fprintf(w, "workgate_uptime_seconds %.0f\n", time.Since(e.startTime).Seconds())

	// Persisted decision counts survive restarts, unlike the in-process counters
	stats, err := e.store.GetDecisionStats()
	if err == nil {
		fmt.Fprintf(w, "\n# HELP workgate_decisions_total Persisted gate decisions by window and result\n")
		fmt.Fprintf(w, "# TYPE workgate_decisions_total counter\n")
		for window, count := range stats.Allowed {
			fmt.Fprintf(w, "workgate_decisions_total{window=%q,result=\"allowed\"} %d\n", window, count)
		}
		for window, count := range stats.Denied {
			fmt.Fprintf(w, "workgate_decisions_total{window=%q,result=\"denied\"} %d\n", window, count)
		}
	} else {
		fmt.Fprintf(w, "# Error collecting decision stats: %v\n", err)
	}

	windows, err := e.store.ListWindows()
	if err == nil {
		fmt.Fprintf(w, "\n# HELP workgate_windows_total Number of configured windows\n")
		fmt.Fprintf(w, "# TYPE workgate_windows_total gauge\n")
		fmt.Fprintf(w, "workgate_windows_total %d\n", len(windows))
	}

	// Append the registry-backed metrics (counters and histogram)
	fmt.Fprintf(w, "\n")
	metricFamilies, err := e.registry.Gather()
	if err != nil {
		fmt.Fprintf(w, "# Error gathering Prometheus metrics: %v\n", err)
		return
	}

	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
	for _, mf := range metricFamilies {
		if err := encoder.Encode(mf); err != nil {
			fmt.Fprintf(w, "# Error encoding metric %s: %v\n", mf.GetName(), err)
		}
	}
	w.Write(buf.Bytes())
}
