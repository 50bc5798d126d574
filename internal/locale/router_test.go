package locale

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *Router {
	return NewRouter("en", []string{"en", "es", "zh-CN"})
}

func TestResolve(t *testing.T) {
	r := newTestRouter()
	tests := []struct {
		path string
		want Resolution
	}{
		{"/", Resolution{Locale: "en", Rest: "/"}},
		{"", Resolution{Locale: "en", Rest: "/"}},
		{"/courses/anchor-for-dummies/accounts", Resolution{Locale: "en", Rest: "/courses/anchor-for-dummies/accounts"}},
		{"/en", Resolution{Locale: "en", Rest: "/", Prefixed: true}},
		{"/en/", Resolution{Locale: "en", Rest: "/", Prefixed: true}},
		{"/es/courses/x", Resolution{Locale: "es", Rest: "/courses/x", Prefixed: true}},
		{"/ES/courses/x", Resolution{Locale: "es", Rest: "/courses/x", Prefixed: true}},
		{"/zh-cn/", Resolution{Locale: "zh-CN", Rest: "/", Prefixed: true}},
		{"/fr/courses/x", Resolution{Locale: "en", Rest: "/fr/courses/x"}},
		{"/english/", Resolution{Locale: "en", Rest: "/english/"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.path))
		})
	}
}

func TestEverySupportedLocaleResolves(t *testing.T) {
	r := newTestRouter()
	for _, l := range r.Supported() {
		res := r.Resolve(r.Localize(l, "/courses/pinocchio/intro"))
		assert.Equal(t, l, res.Locale)
		assert.True(t, res.Prefixed)
		assert.Equal(t, "/courses/pinocchio/intro", res.Rest)
	}
}

func TestLocalize(t *testing.T) {
	r := newTestRouter()
	assert.Equal(t, "/en/", r.Localize("en", "/"))
	assert.Equal(t, "/es/", r.Localize("es", ""))
	assert.Equal(t, "/es/courses/x", r.Localize("es", "courses/x"))
	assert.Equal(t, "/en/courses/x", r.Localize("klingon", "/courses/x"))
	assert.Equal(t, "/zh-CN/courses/x", r.Localize("ZH-cn", "/courses/x"))
}

func TestAlternates(t *testing.T) {
	alts := newTestRouter().Alternates("/courses/x")
	require.Len(t, alts, 3)
	assert.Equal(t, Alternate{Locale: "en", URL: "/en/courses/x"}, alts[0])
	assert.Equal(t, Alternate{Locale: "zh-CN", URL: "/zh-CN/courses/x"}, alts[2])
}

func TestNewRouterInsertsDefault(t *testing.T) {
	r := NewRouter("en", []string{"es"})
	assert.Equal(t, []string{"en", "es"}, r.Supported())
	assert.Equal(t, "en", NewRouter("", nil).Default())
}

func TestNegotiate(t *testing.T) {
	r := newTestRouter()
	assert.Equal(t, "en", r.Negotiate(""))
	assert.Equal(t, "es", r.Negotiate("es-MX,es;q=0.9,en;q=0.5"))
	assert.Equal(t, "en", r.Negotiate("de-DE"))
	assert.Equal(t, "zh-CN", r.Negotiate("zh-CN"))
	assert.Equal(t, "en", r.Negotiate("!!!"))
}

func TestMiddleware(t *testing.T) {
	r := newTestRouter()
	var got Resolution
	next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got, _ = FromContext(req.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("unprefixed uses default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/courses/x", nil)
		req.Header.Set("Accept-Language", "es")
		Middleware(r, true)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "en", got.Locale)
	})

	t.Run("root redirects with detection", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "es-ES")
		Middleware(r, true)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/es/", rec.Header().Get("Location"))
	})

	t.Run("root served without detection", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Accept-Language", "es-ES")
		Middleware(r, false)(next).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "en", got.Locale)
	})
}

func TestCatalog(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "es.yaml"), []byte("site.courses: Cursos\nsite.lesson_count: \"%d lecciones\"\n"), 0o600))

	c := NewCatalog("en")
	require.NoError(t, c.LoadDir(dir, []string{"en", "es"}))

	assert.Equal(t, "Cursos", c.T("es", "site.courses"))
	assert.Equal(t, "3 lecciones", c.T("es", "site.lesson_count", 3))
	assert.Equal(t, "Next", c.T("es", "site.next"), "falls back to default locale")
	assert.Equal(t, "missing.key", c.T("es", "missing.key"))
	assert.Equal(t, "Courses", c.T("fr", "site.courses"))
}

func TestCatalogBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "es.yaml"), []byte(": : :\n\t-"), 0o600))
	require.Error(t, NewCatalog("en").LoadDir(dir, []string{"es"}))
}
