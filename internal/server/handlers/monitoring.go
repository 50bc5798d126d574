package handlers

import (
	"net/http"
	"time"

	"git.home.luguber.info/inful/coursesite/internal/content"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/server/responses"
	"git.home.luguber.info/inful/coursesite/internal/version"
)

// MonitoringHandlers serves liveness and readiness probes.
type MonitoringHandlers struct {
	store        *content.Store
	start        time.Time
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewMonitoringHandlers returns probes reporting on store.
func NewMonitoringHandlers(store *content.Store, adapter *derrors.HTTPErrorAdapter) *MonitoringHandlers {
	return &MonitoringHandlers{store: store, start: time.Now(), errorAdapter: adapter}
}

// HandleHealthCheck reports that the process is serving.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.errorAdapter, w, r, http.MethodGet, http.MethodHead) {
		return
	}
	health := responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Get(),
		Uptime:    time.Since(h.start).Seconds(),
	}
	if err := writeJSONPretty(w, r, http.StatusOK, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryInternal, "failed to write health response").Build())
	}
}

// HandleReadiness reports ready once a content tree has been published.
func (h *MonitoringHandlers) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.errorAdapter, w, r, http.MethodGet, http.MethodHead) {
		return
	}
	tree := h.store.Current()
	if tree == nil {
		_ = writeJSON(w, http.StatusServiceUnavailable, responses.ReadyResponse{Status: "loading"})
		return
	}
	stats := tree.Stats()
	ready := responses.ReadyResponse{
		Status:     "ready",
		Generation: tree.Generation(),
		Documents:  stats.Documents,
		PerLocale:  stats.PerLocale,
		Warnings:   stats.Warnings,
	}
	if err := writeJSONPretty(w, r, http.StatusOK, ready); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryInternal, "failed to write readiness response").Build())
	}
}
