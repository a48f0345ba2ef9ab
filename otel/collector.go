// Package otel provides OpenTelemetry integration for uastore metrics.
//
// This package implements the uastore.MetricsCollector interface using
// OpenTelemetry, enabling observability with automatic percentile
// calculation (p50, p95, p99) and multi-backend support (Prometheus,
// Jaeger, DataDog, Grafana).
//
// # Features
//
//   - Automatic percentile calculation via OTEL Histograms (p50, p95, p99, p99.9)
//   - Per-operation latency and outcome tracking (Insert/Replace/Remove/Get/Iterate)
//   - Reclaim and resize event counters
//   - Thread-safe, lock-free implementation
//   - Compatible with any OTEL backend (Prometheus, Jaeger, DataDog, etc.)
//   - Optional: separate module, no impact on core uastore performance
//
// # Usage
//
//	import (
//	    "github.com/agilira/uastore"
//	    uastoreotel "github.com/agilira/uastore/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, _ := prometheus.New()
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//
//	collector, _ := uastoreotel.NewOTelMetricsCollector(provider)
//
//	store, _ := uastore.New(uastore.Config{
//	    MetricsCollector: collector,
//	})
//
// # Metrics Exposed
//
//   - uastore_insert_latency_ns: Histogram of Insert operation latencies
//   - uastore_replace_latency_ns: Histogram of Replace operation latencies
//   - uastore_remove_latency_ns: Histogram of Remove operation latencies
//   - uastore_get_latency_ns: Histogram of Get operation latencies
//   - uastore_iterate_latency_ns: Histogram of full Iterate call latencies
//   - uastore_get_hits_total / uastore_get_misses_total: Get outcome counters
//   - uastore_mutation_ok_total / uastore_mutation_failed_total: mutation outcome counters
//   - uastore_reclaims_total: entries finalized by the reclamation engine
//   - uastore_resizes_total: hash index resize events
//
// All metrics are automatically aggregated by the OTEL SDK and can be
// exported to any OTEL-compatible backend.
package otel

import (
	"context"
	"errors"

	"github.com/agilira/uastore"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetricsCollector implements uastore.MetricsCollector using
// OpenTelemetry.
//
// Thread-safety: Safe for concurrent use by multiple goroutines. The
// underlying OTEL instruments are thread-safe and lock-free.
type OTelMetricsCollector struct {
	insertLatency  metric.Int64Histogram
	replaceLatency metric.Int64Histogram
	removeLatency  metric.Int64Histogram
	getLatency     metric.Int64Histogram
	iterateLatency metric.Int64Histogram

	hits   metric.Int64Counter
	misses metric.Int64Counter

	mutationOK     metric.Int64Counter
	mutationFailed metric.Int64Counter

	reclaims metric.Int64Counter
	resizes  metric.Int64Counter
}

// Options for configuring OTelMetricsCollector.
type Options struct {
	// MeterName is the name of the OpenTelemetry meter.
	// Default: "github.com/agilira/uastore"
	MeterName string
}

// Option is a functional option for configuring OTelMetricsCollector.
type Option func(*Options)

// WithMeterName sets a custom meter name. Useful for distinguishing
// metrics from multiple store instances.
func WithMeterName(name string) Option {
	return func(o *Options) {
		o.MeterName = name
	}
}

// NewOTelMetricsCollector creates a new OpenTelemetry metrics collector.
// provider must not be nil.
func NewOTelMetricsCollector(provider metric.MeterProvider, opts ...Option) (*OTelMetricsCollector, error) {
	if provider == nil {
		return nil, errors.New("meter provider cannot be nil")
	}

	options := Options{
		MeterName: "github.com/agilira/uastore",
	}
	for _, opt := range opts {
		opt(&options)
	}

	meter := provider.Meter(options.MeterName)
	c := &OTelMetricsCollector{}

	var err error
	c.insertLatency, err = meter.Int64Histogram(
		"uastore_insert_latency_ns",
		metric.WithDescription("Latency of Insert operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	c.replaceLatency, err = meter.Int64Histogram(
		"uastore_replace_latency_ns",
		metric.WithDescription("Latency of Replace operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	c.removeLatency, err = meter.Int64Histogram(
		"uastore_remove_latency_ns",
		metric.WithDescription("Latency of Remove operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	c.getLatency, err = meter.Int64Histogram(
		"uastore_get_latency_ns",
		metric.WithDescription("Latency of Get operations in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	c.iterateLatency, err = meter.Int64Histogram(
		"uastore_iterate_latency_ns",
		metric.WithDescription("Latency of full Iterate calls in nanoseconds"),
		metric.WithUnit("ns"),
	)
	if err != nil {
		return nil, err
	}

	c.hits, err = meter.Int64Counter(
		"uastore_get_hits_total",
		metric.WithDescription("Total number of Get calls that found an alive entry"),
	)
	if err != nil {
		return nil, err
	}

	c.misses, err = meter.Int64Counter(
		"uastore_get_misses_total",
		metric.WithDescription("Total number of Get calls that found no alive entry"),
	)
	if err != nil {
		return nil, err
	}

	c.mutationOK, err = meter.Int64Counter(
		"uastore_mutation_ok_total",
		metric.WithDescription("Total number of Insert/Replace/Remove calls that returned Good"),
	)
	if err != nil {
		return nil, err
	}

	c.mutationFailed, err = meter.Int64Counter(
		"uastore_mutation_failed_total",
		metric.WithDescription("Total number of Insert/Replace/Remove calls that returned a non-Good status"),
	)
	if err != nil {
		return nil, err
	}

	c.reclaims, err = meter.Int64Counter(
		"uastore_reclaims_total",
		metric.WithDescription("Total number of entries finalized by the reclamation engine"),
	)
	if err != nil {
		return nil, err
	}

	c.resizes, err = meter.Int64Counter(
		"uastore_resizes_total",
		metric.WithDescription("Total number of hash index resize events"),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (c *OTelMetricsCollector) recordMutation(latency metric.Int64Histogram, latencyNs int64, status uastore.Status) {
	ctx := context.Background()
	latency.Record(ctx, latencyNs)
	if status == uastore.StatusGood {
		c.mutationOK.Add(ctx, 1)
	} else {
		c.mutationFailed.Add(ctx, 1)
	}
}

// RecordInsert records an Insert operation's latency and outcome.
func (c *OTelMetricsCollector) RecordInsert(latencyNs int64, status uastore.Status) {
	c.recordMutation(c.insertLatency, latencyNs, status)
}

// RecordReplace records a Replace operation's latency and outcome.
func (c *OTelMetricsCollector) RecordReplace(latencyNs int64, status uastore.Status) {
	c.recordMutation(c.replaceLatency, latencyNs, status)
}

// RecordRemove records a Remove operation's latency and outcome.
func (c *OTelMetricsCollector) RecordRemove(latencyNs int64, status uastore.Status) {
	c.recordMutation(c.removeLatency, latencyNs, status)
}

// RecordGet records a Get operation's latency and whether it found an entry.
func (c *OTelMetricsCollector) RecordGet(latencyNs int64, found bool) {
	ctx := context.Background()
	c.getLatency.Record(ctx, latencyNs)
	if found {
		c.hits.Add(ctx, 1)
	} else {
		c.misses.Add(ctx, 1)
	}
}

// RecordIterate records one full Iterate call's latency. visited is
// accepted for interface parity and is not exported by any instrument.
func (c *OTelMetricsCollector) RecordIterate(latencyNs int64, visited int) {
	c.iterateLatency.Record(context.Background(), latencyNs)
}

// RecordReclaim records one entry reaching finalize().
func (c *OTelMetricsCollector) RecordReclaim() {
	c.reclaims.Add(context.Background(), 1)
}

// RecordResize records the hash index doubling its bucket count.
func (c *OTelMetricsCollector) RecordResize(newCapacity int) {
	c.resizes.Add(context.Background(), 1)
}

// Compile-time interface check
var _ uastore.MetricsCollector = (*OTelMetricsCollector)(nil)
