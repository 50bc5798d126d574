package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
	"git.home.luguber.info/inful/coursesite/internal/observability"
	"git.home.luguber.info/inful/coursesite/internal/site"
)

// PageHandlers serves rendered pages and the theme stylesheet.
type PageHandlers struct {
	site         *site.Site
	errorAdapter *derrors.HTTPErrorAdapter
	logger       *slog.Logger
}

// NewPageHandlers returns page handlers for s.
func NewPageHandlers(s *site.Site, adapter *derrors.HTTPErrorAdapter, logger *slog.Logger) *PageHandlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &PageHandlers{site: s, errorAdapter: adapter, logger: logger}
}

// HandleStylesheet serves /theme.css and /theme.<hash>.css. A hash other
// than the current one (a page rendered before a theme reload) still gets
// the current sheet, without the long-lived cache header.
func (h *PageHandlers) HandleStylesheet(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.errorAdapter, w, r, http.MethodGet, http.MethodHead) {
		return
	}
	th := h.site.Theme()
	switch r.URL.Path {
	case th.Path():
	case "/theme.css":
		w.Header().Set("Cache-Control", "no-cache")
	default:
		w.Header().Set("Cache-Control", "public, max-age=0, must-revalidate")
	}
	etag := `"` + th.Hash + `"`
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("ETag", etag)
	if matchesETag(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_, _ = w.Write(th.CSS)
}

// IsStylesheetPath reports whether p names the theme stylesheet.
func IsStylesheetPath(p string) bool {
	if p == "/theme.css" {
		return true
	}
	return strings.HasPrefix(p, "/theme.") && strings.HasSuffix(p, ".css") && !strings.Contains(p[1:], "/")
}

// ServeHTTP renders the page for the request path. It expects
// locale.Middleware to have run.
func (h *PageHandlers) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.errorAdapter, w, r, http.MethodGet, http.MethodHead) {
		return
	}
	if IsStylesheetPath(r.URL.Path) {
		h.HandleStylesheet(w, r)
		return
	}

	route, redirect, ok := h.site.Match(r.URL.Path)
	if !ok {
		h.notFound(w, r)
		return
	}
	if redirect {
		target := route.Path
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}

	ctx := observability.WithRoute(observability.WithLocale(r.Context(), route.Locale), route.Path)
	page, err := h.site.Render(ctx, route)
	if derrors.HasCategory(err, derrors.CategoryNotFound) {
		h.notFound(w, r)
		return
	}
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r.WithContext(ctx), err)
		return
	}
	h.write(w, r, route.Locale, page)
}

func (h *PageHandlers) notFound(w http.ResponseWriter, r *http.Request) {
	loc := h.site.Router().Default()
	if res, ok := locale.FromContext(r.Context()); ok {
		loc = res.Locale
	}
	page, err := h.site.RenderNotFound(r.Context(), loc)
	if err != nil {
		observability.Logger(r.Context(), h.logger).Warn("Not found page failed", logfields.Error(err))
		http.NotFound(w, r)
		return
	}
	h.write(w, r, loc, page)
}

func (h *PageHandlers) write(w http.ResponseWriter, r *http.Request, loc string, page site.Page) {
	hdr := w.Header()
	hdr.Set("Content-Type", "text/html; charset=utf-8")
	if loc != "" {
		hdr.Set("Content-Language", loc)
	}
	if page.ETag != "" {
		hdr.Set("ETag", page.ETag)
		if page.Status == http.StatusOK && matchesETag(r.Header.Get("If-None-Match"), page.ETag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	if page.Status == http.StatusNotFound {
		hdr.Set("Cache-Control", "no-store")
	}
	w.WriteHeader(page.Status)
	if r.Method != http.MethodHead {
		_, _ = w.Write(page.HTML)
	}
}

// matchesETag implements the weak comparison of If-None-Match.
func matchesETag(header, etag string) bool {
	if header == "" {
		return false
	}
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == etag {
			return true
		}
	}
	return false
}
