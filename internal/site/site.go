// Package site assembles complete HTML pages from the content tree.
package site

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"git.home.luguber.info/inful/coursesite/internal/cache"
	"git.home.luguber.info/inful/coursesite/internal/config"
	"git.home.luguber.info/inful/coursesite/internal/content"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
	"git.home.luguber.info/inful/coursesite/internal/metrics"
	"git.home.luguber.info/inful/coursesite/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = []Kind{KindHome, KindCourse, KindLesson, KindNotFound}

// Options configures a Site. Router, Store, Registry and Theme are required.
type Options struct {
	Site       config.SiteConfig
	Router     *locale.Router
	Store      *content.Store
	Registry   mdx.Registry
	Theme      *theme.Theme
	Catalog    *locale.Catalog
	Cache      cache.Cache
	CacheTTL   time.Duration // 0 keeps entries until purged or evicted
	Recorder   metrics.Recorder
	Logger     *slog.Logger
	LiveReload bool
}

// Site renders pages for the currently published content tree. It is safe
// for concurrent use.
type Site struct {
	opts      Options
	renderer  *mdx.Renderer
	templates map[Kind]*template.Template
	theme     atomic.Pointer[theme.Theme]
	catalog   atomic.Pointer[locale.Catalog]
	logger    *slog.Logger
}

// New parses the page templates and returns a Site.
func New(opts Options) (*Site, error) {
	if opts.Router == nil || opts.Store == nil || opts.Registry == nil || opts.Theme == nil {
		return nil, derrors.InternalError("site requires a locale router, content store, component registry and theme").Build()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Site.Title == "" {
		opts.Site.Title = "Courses"
	}

	tmpls := make(map[Kind]*template.Template, len(pageTemplates))
	for _, k := range pageTemplates {
		t, err := template.New(string(k)).ParseFS(templateFS, "templates/base.html", "templates/"+string(k)+".html")
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryRender, "parse page template").
				WithContext("template", string(k)).Build()
		}
		tmpls[k] = t
	}
	s := &Site{
		opts:      opts,
		renderer:  mdx.NewRenderer(opts.Registry),
		templates: tmpls,
		logger:    opts.Logger,
	}
	s.theme.Store(opts.Theme)
	s.catalog.Store(opts.Catalog)
	return s, nil
}

// Theme returns the compiled theme served with every page.
func (s *Site) Theme() *theme.Theme { return s.theme.Load() }

// SetTheme replaces the theme. Cached pages keep the old stylesheet URL
// until purged.
func (s *Site) SetTheme(t *theme.Theme) {
	if t != nil {
		s.theme.Store(t)
	}
}

// SetCatalog replaces the UI message catalog. Cached pages keep the old
// strings until purged.
func (s *Site) SetCatalog(c *locale.Catalog) {
	if c != nil {
		s.catalog.Store(c)
	}
}

// Store returns the content store pages are rendered from.
func (s *Site) Store() *content.Store { return s.opts.Store }

// Renderer returns the MDX renderer shared by all pages.
func (s *Site) Renderer() *mdx.Renderer { return s.renderer }

// Purge drops every cached page.
func (s *Site) Purge(ctx context.Context) error { return s.opts.Cache.Purge(ctx) }

func (s *Site) tree() (*content.Tree, error) {
	t := s.opts.Store.Current()
	if t == nil {
		return nil, derrors.InternalError("content tree not loaded").Build()
	}
	return t, nil
}

func (s *Site) translator(loc string) func(string, ...any) string {
	return func(key string, args ...any) string { return s.t(loc, key, args...) }
}

func (s *Site) t(loc, key string, args ...any) string {
	c := s.catalog.Load()
	if c == nil {
		return key
	}
	return c.T(loc, key, args...)
}

// LanguageName returns the self-name of a locale, e.g. "español" for es.
func LanguageName(loc string) string {
	tag, err := language.Parse(loc)
	if err != nil {
		return loc
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return loc
}

func (s *Site) absolute(path string) string {
	base := strings.TrimRight(s.opts.Site.BaseURL, "/")
	return base + path
}

// BaseURL returns the parsed site base URL, or nil when unset or invalid.
func (s *Site) BaseURL() *url.URL {
	if s.opts.Site.BaseURL == "" {
		return nil
	}
	u, err := url.Parse(s.opts.Site.BaseURL)
	if err != nil {
		return nil
	}
	return u
}
