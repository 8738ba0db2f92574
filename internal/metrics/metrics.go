// Package metrics provides Prometheus-based metrics collection for
// netfold. Aggregation runs and scan operations record into a
// process-wide registry; the registry can be exposed or scraped by a
// caller, and the collected families are also snapshotted for the CLI
// stats output.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	namespace = "netfold"

	subsystemAggregate = "aggregate"
	subsystemScan      = "scan"
)

// Registry holds all Prometheus metric collectors.
type Registry struct {
	// Aggregation metrics
	aggregationRuns     prometheus.Counter
	aggregationErrors   *prometheus.CounterVec
	networksIn          prometheus.Counter
	networksOut         prometheus.Counter
	merges              *prometheus.CounterVec
	networksDropped     *prometheus.CounterVec
	aggregationDuration prometheus.Histogram

	// Scan metrics
	scansTotal   *prometheus.CounterVec
	scanErrors   *prometheus.CounterVec
	scanDuration *prometheus.HistogramVec

	registry *prometheus.Registry
	enabled  bool
	mu       sync.RWMutex
}

// New creates a metrics registry with all collectors registered.
func New() *Registry {
	registry := prometheus.NewRegistry()
	r := &Registry{
		registry: registry,
		enabled:  true,
	}

	r.aggregationRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemAggregate,
		Name:      "runs_total",
		Help:      "Total number of aggregation runs",
	})
	r.aggregationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemAggregate,
		Name:      "errors_total",
		Help:      "Total number of aggregation errors by type",
	}, []string{"error_type"})
	r.networksIn = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemAggregate,
		Name:      "networks_in_total",
		Help:      "Total number of distinct input networks across runs",
	})
	r.networksOut = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemAggregate,
		Name:      "networks_out_total",
		Help:      "Total number of surviving networks across runs",
	})
	r.merges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemAggregate,
		Name:      "merges_total",
		Help:      "Total number of supernet merges by pass kind",
	}, []string{"kind"})
	r.networksDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemAggregate,
		Name:      "networks_dropped_total",
		Help:      "Total number of networks dropped by reason",
	}, []string{"reason"})
	r.aggregationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystemAggregate,
		Name:      "run_duration_seconds",
		Help:      "Aggregation run duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
	})

	r.scansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemScan,
		Name:      "scans_total",
		Help:      "Total number of scans by type and status",
	}, []string{"scan_type", "status"})
	r.scanErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemScan,
		Name:      "errors_total",
		Help:      "Total number of scan errors by type",
	}, []string{"scan_type", "error_type"})
	r.scanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystemScan,
		Name:      "duration_seconds",
		Help:      "Scan duration in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"scan_type"})

	registry.MustRegister(
		r.aggregationRuns,
		r.aggregationErrors,
		r.networksIn,
		r.networksOut,
		r.merges,
		r.networksDropped,
		r.aggregationDuration,
		r.scansTotal,
		r.scanErrors,
		r.scanDuration,
	)
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return r
}

// PrometheusRegistry returns the underlying registry for exposure or
// test scraping.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// SetEnabled enables or disables metrics collection.
func (r *Registry) SetEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = enabled
}

// IsEnabled returns whether metrics collection is enabled.
func (r *Registry) IsEnabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// RecordAggregationRun records a completed aggregation run.
func (r *Registry) RecordAggregationRun(inputCount, outputCount int, duration time.Duration) {
	if !r.IsEnabled() {
		return
	}
	r.aggregationRuns.Inc()
	r.networksIn.Add(float64(inputCount))
	r.networksOut.Add(float64(outputCount))
	r.aggregationDuration.Observe(duration.Seconds())
}

// IncrementAggregationErrors counts an aggregation error by type.
func (r *Registry) IncrementAggregationErrors(errorType string) {
	if !r.IsEnabled() {
		return
	}
	r.aggregationErrors.WithLabelValues(errorType).Inc()
}

// IncrementMerges counts a supernet merge by pass kind
// ("horizontal" or "vertical").
func (r *Registry) IncrementMerges(kind string) {
	if !r.IsEnabled() {
		return
	}
	r.merges.WithLabelValues(kind).Inc()
}

// IncrementNetworksDropped counts a dropped network by reason
// ("subsumed" or "overlap").
func (r *Registry) IncrementNetworksDropped(reason string) {
	if !r.IsEnabled() {
		return
	}
	r.networksDropped.WithLabelValues(reason).Inc()
}

// IncrementScansTotal counts a finished scan by type and status.
func (r *Registry) IncrementScansTotal(scanType, status string) {
	if !r.IsEnabled() {
		return
	}
	r.scansTotal.WithLabelValues(scanType, status).Inc()
}

// IncrementScanErrors counts a scan error by type.
func (r *Registry) IncrementScanErrors(scanType, errorType string) {
	if !r.IsEnabled() {
		return
	}
	r.scanErrors.WithLabelValues(scanType, errorType).Inc()
}

// RecordScanDuration records the duration of a scan.
func (r *Registry) RecordScanDuration(scanType string, duration time.Duration) {
	if !r.IsEnabled() {
		return
	}
	r.scanDuration.WithLabelValues(scanType).Observe(duration.Seconds())
}

var (
	globalRegistry *Registry
	globalOnce     sync.Once
)

// Global returns the process-wide metrics registry, creating it on first
// use.
func Global() *Registry {
	globalOnce.Do(func() {
		globalRegistry = New()
	})
	return globalRegistry
}
