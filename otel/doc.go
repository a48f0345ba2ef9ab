// Package otel provides OpenTelemetry integration for uastore metrics.
//
// # Overview
//
// This package implements the uastore.MetricsCollector interface using
// OpenTelemetry, enabling observability with automatic percentile
// calculation and multi-backend support (Prometheus, Jaeger, DataDog,
// Grafana).
//
// The package is a separate module to keep the uastore core lightweight.
// Applications that don't need metrics collection don't pay for the OTEL
// dependencies.
//
// # Quick Start
//
//	import (
//	    "github.com/agilira/uastore"
//	    uastoreotel "github.com/agilira/uastore/otel"
//	    "go.opentelemetry.io/otel/exporters/prometheus"
//	    "go.opentelemetry.io/otel/sdk/metric"
//	)
//
//	exporter, err := prometheus.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	provider := metric.NewMeterProvider(metric.WithReader(exporter))
//	defer provider.Shutdown(context.Background())
//
//	collector, err := uastoreotel.NewOTelMetricsCollector(provider)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store, _ := uastore.New(uastore.Config{
//	    MetricsCollector: collector,
//	})
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":2112", nil))
//
// # Prometheus Queries
//
// Calculate P99 Get latency (last 5 minutes):
//
//	histogram_quantile(0.99, rate(uastore_get_latency_ns_bucket[5m]))
//
// Calculate Get hit ratio:
//
//	rate(uastore_get_hits_total[5m]) /
//	(rate(uastore_get_hits_total[5m]) + rate(uastore_get_misses_total[5m]))
//
// Calculate mutation failure ratio:
//
//	rate(uastore_mutation_failed_total[5m]) /
//	(rate(uastore_mutation_ok_total[5m]) + rate(uastore_mutation_failed_total[5m]))
//
// # Performance
//
// The core uastore package checks MetricsCollector calls directly with no
// nil guard needed: NoOpMetricsCollector is the zero-overhead default, so
// there is no branch to skip when metrics are disabled.
//
// # Thread Safety
//
// All methods are thread-safe and use lock-free OTEL instruments.
package otel
