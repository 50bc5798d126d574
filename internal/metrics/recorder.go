package metrics

import "time"

// ResultLabel enumerates outcomes for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
	ResultHit     ResultLabel = "hit"
	ResultMiss    ResultLabel = "miss"
	ResultError   ResultLabel = "error"
)

// Recorder defines the metrics hooks used across the server.
type Recorder interface {
	IncHTTPRequest(routeKind string, status int)
	ObserveRenderDuration(kind string, d time.Duration)
	IncCacheResult(result ResultLabel)
	SetContentDocuments(locale string, n int)
	IncContentReload(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) IncHTTPRequest(string, int)                  {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration) {}
func (NoopRecorder) IncCacheResult(ResultLabel)                  {}
func (NoopRecorder) SetContentDocuments(string, int)             {}
func (NoopRecorder) IncContentReload(ResultLabel)                {}
