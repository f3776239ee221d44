// Package prometheus renders goGuard metrics for Prometheus scraping.
//
// [NewPrometheusExporter] accepts a [goGuard.Engine] and exposes an
// [http.Handler] that renders all goGuard counters and histograms in
// Prometheus text exposition format. Counter names are prefixed
// goguard_*_total; the single histogram is
// goguard_authorize_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus
