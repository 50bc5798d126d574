package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/coursesite/internal/cache"
	"git.home.luguber.info/inful/coursesite/internal/components"
	"git.home.luguber.info/inful/coursesite/internal/config"
	"git.home.luguber.info/inful/coursesite/internal/content"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/metrics"
	"git.home.luguber.info/inful/coursesite/internal/site"
	"git.home.luguber.info/inful/coursesite/internal/theme"
)

// app is the content pipeline every command builds on: a loaded tree, the
// theme and the page renderer.
type app struct {
	cfg      *config.Config
	router   *locale.Router
	loader   *content.Loader
	store    *content.Store
	registry *components.Registry
	cache    cache.Cache
	site     *site.Site
	logger   *slog.Logger
}

type appOptions struct {
	recorder   metrics.Recorder
	liveReload bool
	noCache    bool
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	a := &app{
		cfg:      cfg,
		router:   locale.NewRouter(cfg.I18n.DefaultLocale, cfg.I18n.Locales),
		registry: components.Default(),
		logger:   logger,
	}

	catalog, err := a.loadCatalog()
	if err != nil {
		return nil, err
	}

	a.loader = content.NewLoader(cfg, a.router, logger)
	tree, err := a.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	a.store = content.NewStore(tree)

	th, err := a.loadTheme()
	if err != nil {
		return nil, err
	}

	if opts.noCache {
		a.cache = cache.Noop{}
	} else if a.cache, err = cache.New(ctx, cfg.Cache, logger); err != nil {
		return nil, err
	}

	a.site, err = site.New(site.Options{
		Site:       cfg.Site,
		Router:     a.router,
		Store:      a.store,
		Registry:   a.registry,
		Theme:      th,
		Catalog:    catalog,
		Cache:      a.cache,
		CacheTTL:   cfg.Cache.TTL,
		Recorder:   opts.recorder,
		Logger:     logger,
		LiveReload: opts.liveReload,
	})
	if err != nil {
		_ = a.cache.Close()
		return nil, err
	}

	stats := tree.Stats()
	logger.Info("Content loaded",
		slog.Int("courses", stats.Courses),
		slog.Int("lessons", stats.Lessons),
		slog.Int("documents", stats.Documents),
		slog.Int("warnings", stats.Warnings))
	return a, nil
}

func (a *app) loadCatalog() (*locale.Catalog, error) {
	catalog := locale.NewCatalog(a.router.Default())
	if err := catalog.LoadDir(a.cfg.I18n.MessagesDir, a.router.Supported()); err != nil {
		return nil, err
	}
	return catalog, nil
}

func (a *app) loadTheme() (*theme.Theme, error) {
	return theme.Load(a.cfg.Theme.TokensFile, components.HighlightCSS())
}

func (a *app) Close() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Close()
}
