package handlers

import (
	"context"
	"net/http"
	"strconv"

	"git.home.luguber.info/inful/coursesite/internal/components"
	"git.home.luguber.info/inful/coursesite/internal/components/discriminator"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/search"
	"git.home.luguber.info/inful/coursesite/internal/server/responses"
	"git.home.luguber.info/inful/coursesite/internal/site"
)

// Searcher answers full-text queries.
type Searcher interface {
	Query(ctx context.Context, locale, q string, limit int) ([]search.Hit, error)
}

// APIHandlers serves the JSON API.
type APIHandlers struct {
	site         *site.Site
	router       *locale.Router
	search       Searcher
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewAPIHandlers returns API handlers. A nil searcher disables /api/search.
func NewAPIHandlers(s *site.Site, router *locale.Router, searcher Searcher, adapter *derrors.HTTPErrorAdapter) *APIHandlers {
	return &APIHandlers{site: s, router: router, search: searcher, errorAdapter: adapter}
}

// HandleDiscriminator computes an Anchor discriminator. With format=html it
// returns the fragment the calculator component swaps into the page.
func (h *APIHandlers) HandleDiscriminator(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.errorAdapter, w, r, http.MethodGet, http.MethodPost) {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryValidation, "invalid form").Build())
		return
	}
	kind, err := discriminator.ParseKind(r.Form.Get("kind"))
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	name := r.Form.Get("name")
	d, err := discriminator.Compute(kind, name)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}

	if r.Form.Get("format") == "html" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(components.ResultFragment(kind, name, d)))
		return
	}

	pre, _ := discriminator.Preimage(kind, name)
	resp := responses.DiscriminatorResponse{
		Kind:     string(kind),
		Name:     name,
		Preimage: pre,
		Hex:      d.Hex(),
		Rust:     d.Rust(),
		Bytes:    make([]int, len(d)),
	}
	for i, b := range d {
		resp.Bytes[i] = int(b)
	}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryInternal, "failed to write discriminator response").Build())
	}
}

// HandleSearch queries the lesson index for ?q= in ?locale= (default locale
// when absent).
func (h *APIHandlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.errorAdapter, w, r, http.MethodGet) {
		return
	}
	if h.search == nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.NotFoundError("search is disabled").Build())
		return
	}
	q := r.URL.Query()
	loc := h.router.Default()
	if l := q.Get("locale"); l != "" {
		if !h.router.IsSupported(l) {
			h.errorAdapter.WriteErrorResponse(w, r, derrors.NewError(derrors.CategoryLocale, "unsupported locale").WithContext("locale", l).Build())
			return
		}
		loc = h.router.Canonical(l)
	}
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > 100 {
			h.errorAdapter.WriteErrorResponse(w, r, derrors.ValidationError("limit must be between 0 and 100").WithContext("limit", s).Build())
			return
		}
		limit = n
	}

	hits, err := h.search.Query(r.Context(), loc, q.Get("q"), limit)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}
	resp := responses.SearchResponse{Query: q.Get("q"), Locale: loc, Hits: hits}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryInternal, "failed to write search response").Build())
	}
}

// HandleRoutes lists every renderable route.
func (h *APIHandlers) HandleRoutes(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(h.errorAdapter, w, r, http.MethodGet) {
		return
	}
	resp := responses.RoutesResponse{Routes: h.site.Routes()}
	if tree := h.site.Store().Current(); tree != nil {
		resp.Generation = tree.Generation()
	}
	if resp.Routes == nil {
		resp.Routes = []site.Route{}
	}
	if err := writeJSONPretty(w, r, http.StatusOK, resp); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, derrors.WrapError(err, derrors.CategoryInternal, "failed to write routes response").Build())
	}
}
