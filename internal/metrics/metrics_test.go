package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncHTTPRequest("lesson", 200)
	r.ObserveRenderDuration("lesson", time.Millisecond)
	r.IncCacheResult(ResultHit)
	r.SetContentDocuments("en", 3)
	r.IncContentReload(ResultSuccess)
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncHTTPRequest("lesson", 200)
	pr.IncHTTPRequest("lesson", 200)
	pr.IncHTTPRequest("notfound", 404)
	pr.ObserveRenderDuration("lesson", 20*time.Millisecond)
	pr.IncCacheResult(ResultMiss)
	pr.SetContentDocuments("en", 5)
	pr.IncContentReload(ResultFailed)

	assert.InDelta(t, 2, testutil.ToFloat64(pr.httpRequests.WithLabelValues("lesson", "200")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.httpRequests.WithLabelValues("notfound", "404")), 0)
	assert.InDelta(t, 5, testutil.ToFloat64(pr.documents.WithLabelValues("en")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.reloads.WithLabelValues("failed")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 5)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.IncHTTPRequest("x", 500)
	pr.IncCacheResult(ResultHit)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	RegisterRuntime(reg)
	pr.IncCacheResult(ResultHit)

	srv := httptest.NewServer(HTTPHandler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `coursesite_cache_results_total{result="hit"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
