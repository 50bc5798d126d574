package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "coursesite"

// PrometheusRecorder implements Recorder using Prometheus collectors.
type PrometheusRecorder struct {
	registry       *prom.Registry
	httpRequests   *prom.CounterVec
	renderDuration *prom.HistogramVec
	cacheResults   *prom.CounterVec
	documents      *prom.GaugeVec
	reloads        *prom.CounterVec
}

// NewPrometheusRecorder creates the collectors and registers them on reg
// (a new registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		httpRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route kind and status code",
		}, []string{"route_kind", "status"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Page render duration by page kind",
			Buckets:   prom.DefBuckets,
		}, []string{"kind"}),
		cacheResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_results_total",
			Help:      "Page cache lookups by result",
		}, []string{"result"}),
		documents: prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "content_documents",
			Help:      "Loaded documents per locale",
		}, []string{"locale"}),
		reloads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "content_reloads_total",
			Help:      "Content tree reloads by result",
		}, []string{"result"}),
	}
	reg.MustRegister(pr.httpRequests, pr.renderDuration, pr.cacheResults, pr.documents, pr.reloads)
	return pr
}

// Registry returns the registry the collectors live on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

func (p *PrometheusRecorder) IncHTTPRequest(routeKind string, status int) {
	if p == nil {
		return
	}
	p.httpRequests.WithLabelValues(routeKind, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(kind string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(kind).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheResult(result ResultLabel) {
	if p == nil {
		return
	}
	p.cacheResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetContentDocuments(locale string, n int) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues(locale).Set(float64(n))
}

func (p *PrometheusRecorder) IncContentReload(result ResultLabel) {
	if p == nil {
		return
	}
	p.reloads.WithLabelValues(string(result)).Inc()
}
