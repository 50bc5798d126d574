// Package metrics records request, render, cache and reload metrics.
//
// Components take a Recorder. NoopRecorder is the default and compiles to
// nothing; PrometheusRecorder registers its collectors on a dedicated
// registry that HTTPHandler exposes on /metrics.
package metrics
