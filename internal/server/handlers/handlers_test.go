package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/coursesite/internal/content"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/search"
	"git.home.luguber.info/inful/coursesite/internal/server/responses"
	"git.home.luguber.info/inful/coursesite/internal/site"
	"git.home.luguber.info/inful/coursesite/internal/testutil"
)

func pageServer(t *testing.T) (http.Handler, *site.Site) {
	t.Helper()
	s := testutil.SampleSite(t)
	h := NewPageHandlers(s, derrors.NewHTTPErrorAdapter(nil), nil)
	return locale.Middleware(s.Router(), false)(h), s
}

func get(h http.Handler, target string, hdr ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPageLesson(t *testing.T) {
	h, _ := pageServer(t)
	rec := get(h, "/en/courses/anchor/intro")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
	assert.NotEmpty(t, rec.Header().Get("ETag"))
	assert.Contains(t, rec.Body.String(), "Introduction to Anchor")
}

func TestPageUnprefixedServesDefaultLocale(t *testing.T) {
	h, _ := pageServer(t)
	rec := get(h, "/courses/anchor/intro")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", rec.Header().Get("Content-Language"))
}

func TestPageCanonicalRedirects(t *testing.T) {
	h, _ := pageServer(t)
	cases := map[string]string{
		"/en/courses/anchor":          "/en/courses/anchor/",
		"/en/courses/anchor/intro/":   "/en/courses/anchor/intro",
		"/es/courses/anchor/intro/?a": "/es/courses/anchor/intro?a",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			rec := get(h, in)
			assert.Equal(t, http.StatusMovedPermanently, rec.Code)
			assert.Equal(t, want, rec.Header().Get("Location"))
		})
	}
}

func TestPageNotFoundIsLocalized(t *testing.T) {
	h, _ := pageServer(t)

	rec := get(h, "/es/courses/anchor/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "es", rec.Header().Get("Content-Language"))
	assert.Contains(t, rec.Body.String(), "Página no encontrada")
	assert.Empty(t, rec.Header().Get("ETag"))

	rec = get(h, "/en/not/a/route")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page not found")
}

func TestPageConditionalGet(t *testing.T) {
	h, _ := pageServer(t)
	first := get(h, "/en/")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get(h, "/en/", "If-None-Match", "W/"+etag)
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())

	third := get(h, "/en/", "If-None-Match", `"other"`)
	assert.Equal(t, http.StatusOK, third.Code)
}

func TestPageHeadHasNoBody(t *testing.T) {
	h, _ := pageServer(t)
	req := httptest.NewRequest(http.MethodHead, "/en/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestPageRejectsPost(t *testing.T) {
	h, _ := pageServer(t)
	req := httptest.NewRequest(http.MethodPost, "/en/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "GET, HEAD", rec.Header().Get("Allow"))
}

func TestStylesheet(t *testing.T) {
	h, s := pageServer(t)
	th := s.Theme()

	rec := get(h, th.Path())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, string(th.CSS), rec.Body.String())
	assert.Empty(t, rec.Header().Get("Cache-Control"))

	stale := get(h, "/theme.0123456789ab.css")
	assert.Equal(t, http.StatusOK, stale.Code)
	assert.Equal(t, "public, max-age=0, must-revalidate", stale.Header().Get("Cache-Control"))

	plain := get(h, "/theme.css")
	assert.Equal(t, string(th.CSS), plain.Body.String())
	assert.Equal(t, "no-cache", plain.Header().Get("Cache-Control"))
}

func TestIsStylesheetPath(t *testing.T) {
	assert.True(t, IsStylesheetPath("/theme.css"))
	assert.True(t, IsStylesheetPath("/theme.abc123.css"))
	assert.False(t, IsStylesheetPath("/en/theme.css"))
	assert.False(t, IsStylesheetPath("/theme.js"))
}

func TestMatchesETag(t *testing.T) {
	assert.True(t, matchesETag(`"a", "b"`, `"b"`))
	assert.True(t, matchesETag(`*`, `"b"`))
	assert.True(t, matchesETag(`W/"b"`, `"b"`))
	assert.False(t, matchesETag(``, `"b"`))
	assert.False(t, matchesETag(`"c"`, `"b"`))
}

func apiHandlers(t *testing.T, withSearch bool) *APIHandlers {
	t.Helper()
	s := testutil.SampleSite(t)
	var searcher Searcher
	if withSearch {
		idx, err := search.Open(":memory:", nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = idx.Close() })
		require.NoError(t, idx.Rebuild(context.Background(), s.Store().Current().Documents()))
		searcher = idx
	}
	return NewAPIHandlers(s, s.Router(), searcher, derrors.NewHTTPErrorAdapter(nil))
}

func TestDiscriminatorJSON(t *testing.T) {
	h := apiHandlers(t, false)
	rec := get(http.HandlerFunc(h.HandleDiscriminator), "/api/discriminator?kind=account&name=Counter")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.DiscriminatorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "account:Counter", resp.Preimage)
	assert.Equal(t, "ffb004f5bcfd7c19", resp.Hex)
	assert.Len(t, resp.Bytes, 8)
	assert.Equal(t, 0xff, resp.Bytes[0])
}

func TestDiscriminatorHTMLFragment(t *testing.T) {
	h := apiHandlers(t, false)
	form := url.Values{"kind": {"instruction"}, "name": {"initialize"}, "format": {"html"}}
	req := httptest.NewRequest(http.MethodPost, "/api/discriminator", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleDiscriminator(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "global:initialize")
	assert.Contains(t, rec.Body.String(), "afaf6d1f0d989bed")
}

func TestDiscriminatorValidation(t *testing.T) {
	h := apiHandlers(t, false)
	for _, q := range []string{"kind=bogus&name=x", "kind=account&name=", "kind=account&name=not-ident"} {
		rec := get(http.HandlerFunc(h.HandleDiscriminator), "/api/discriminator?"+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestSearch(t *testing.T) {
	h := apiHandlers(t, true)
	rec := get(http.HandlerFunc(h.HandleSearch), "/api/search?q=anchor&locale=en")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "en", resp.Locale)
	require.NotEmpty(t, resp.Hits)
	for _, hit := range resp.Hits {
		assert.True(t, strings.HasPrefix(hit.Route, "/en/"), hit.Route)
	}
}

func TestSearchErrors(t *testing.T) {
	h := apiHandlers(t, true)
	assert.Equal(t, http.StatusBadRequest, get(http.HandlerFunc(h.HandleSearch), "/api/search?q=a&locale=xx").Code)
	assert.Equal(t, http.StatusBadRequest, get(http.HandlerFunc(h.HandleSearch), "/api/search?q=a&limit=500").Code)

	disabled := apiHandlers(t, false)
	assert.Equal(t, http.StatusNotFound, get(http.HandlerFunc(disabled.HandleSearch), "/api/search?q=a").Code)
}

func TestSearchEmptyQuery(t *testing.T) {
	h := apiHandlers(t, true)
	rec := get(http.HandlerFunc(h.HandleSearch), "/api/search")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"hits":[]`)
}

func TestRoutes(t *testing.T) {
	h := apiHandlers(t, false)
	rec := get(http.HandlerFunc(h.HandleRoutes), "/api/routes")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp responses.RoutesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.Generation)
	assert.Len(t, resp.Routes, 21)
}

func TestHealthAndReadiness(t *testing.T) {
	s := testutil.SampleSite(t)
	m := NewMonitoringHandlers(s.Store(), derrors.NewHTTPErrorAdapter(nil))

	rec := get(http.HandlerFunc(m.HandleHealthCheck), "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)

	rec = get(http.HandlerFunc(m.HandleReadiness), "/readyz")
	require.Equal(t, http.StatusOK, rec.Code)
	var ready responses.ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "ready", ready.Status)
	assert.Positive(t, ready.Documents)

	empty := NewMonitoringHandlers(content.NewStore(nil), derrors.NewHTTPErrorAdapter(nil))
	rec = get(http.HandlerFunc(empty.HandleReadiness), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
