// Package prometheus renders Portal metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] wraps a [hrportal.Portal] and exposes an
// [http.Handler]. Counter names are hrportal_*_total; the single histogram is
// hrportal_request_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate Portal state.
package prometheus
