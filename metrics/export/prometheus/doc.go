// Package prometheus renders engine metrics in Prometheus text exposition format.
//
// Counters are named dnaauth_*_total; the single histogram is
// dnaauth_analyze_latency_seconds. Nothing is registered globally: callers
// mount [PrometheusExporter.Handler] themselves.
package prometheus
