package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/coursesite/internal/config"
	"git.home.luguber.info/inful/coursesite/internal/contentsync"
	"git.home.luguber.info/inful/coursesite/internal/events"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
	"git.home.luguber.info/inful/coursesite/internal/metrics"
	"git.home.luguber.info/inful/coursesite/internal/observability"
	"git.home.luguber.info/inful/coursesite/internal/search"
	"git.home.luguber.info/inful/coursesite/internal/server/httpserver"
	"git.home.luguber.info/inful/coursesite/internal/version"
	"git.home.luguber.info/inful/coursesite/internal/watch"
)

const shutdownTimeout = 10 * time.Second

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port       int  `short:"p" help:"Override the HTTP port"`
	LiveReload bool `name:"live-reload" help:"Watch content and reload browsers on change"`
	NoWatch    bool `name:"no-watch" help:"Disable content watching"`
}

func (s *ServeCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if s.Port != 0 {
		cfg.Server.Port = s.Port
	}
	if s.LiveReload {
		cfg.Server.LiveReload = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.serve(ctx, cfg, g.logger())
}

func (s *ServeCmd) serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	shutdownTracing, err := observability.InitTracing(ctx, cfg.Tracing, version.Get(), logger)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryConfig, "initialize tracing").Build()
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("Tracing shutdown failed", logfields.Error(err))
		}
	}()

	var syncer *contentsync.Syncer
	if cfg.Sync.Enabled {
		if syncer, err = contentsync.New(cfg.Sync, cfg.Content.Dir, logger); err != nil {
			return err
		}
		if _, err := syncer.Sync(ctx); err != nil {
			return err
		}
	}

	registry := prom.NewRegistry()
	metrics.RegisterRuntime(registry)
	recorder := metrics.NewPrometheusRecorder(registry)

	a, err := newApp(ctx, cfg, logger, appOptions{recorder: recorder, liveReload: cfg.Server.LiveReload})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	tree := a.store.Current()
	stats := tree.Stats()
	for _, loc := range a.router.Supported() {
		recorder.SetContentDocuments(loc, stats.PerLocale[loc])
	}

	reloader := &watch.Reloader{
		Loader:    a.loader,
		Store:     a.store,
		Cache:     a.site,
		Recorder:  recorder,
		Logger:    logger,
		LoadTheme: a.loadTheme,
		Theme:     a.site,
	}
	if cfg.I18n.MessagesDir != "" {
		reloader.LoadCatalog = a.loadCatalog
		reloader.Catalog = a.site
	}
	opts := httpserver.Options{Site: a.site, Registry: registry, Recorder: recorder, Tracing: cfg.Tracing.Enabled, Logger: logger}

	if cfg.Search.Enabled {
		index, err := search.Open(cfg.Search.DBPath, logger)
		if err != nil {
			return err
		}
		defer func() { _ = index.Close() }()
		if err := index.Rebuild(ctx, tree.Documents()); err != nil {
			return err
		}
		reloader.Index = index
		opts.Searcher = index
	}

	publisher, err := events.NewPublisher(cfg.Events, logger)
	if err != nil {
		return err
	}
	defer func() { _ = publisher.Close() }()
	reloader.Publisher = publisher

	if cfg.Server.LiveReload {
		opts.Hub = watch.NewLiveReloadHub(logger)
		reloader.Hub = opts.Hub
	}

	worker := watch.NewWorker(func(ctx context.Context) { _ = reloader.Reload(ctx) })
	worker.Start(ctx)

	if !s.NoWatch {
		w := &watch.Watcher{Dirs: []string{cfg.Content.Dir}, Logger: logger}
		if cfg.I18n.MessagesDir != "" {
			w.Dirs = append(w.Dirs, cfg.I18n.MessagesDir)
		}
		if cfg.Theme.TokensFile != "" {
			w.Files = append(w.Files, cfg.Theme.TokensFile)
		}
		go func() {
			if err := w.Run(ctx, worker.Trigger); err != nil {
				logger.Warn("Content watcher stopped", logfields.Error(err))
			}
		}()
	}

	if syncer != nil {
		scheduler, err := contentsync.NewScheduler(syncer, cfg.Sync.Interval, func(ctx context.Context, res contentsync.Result) {
			e := events.New(events.TypeContentSynced, a.store.Current().Generation(), 0)
			e.Revision = res.Revision
			if err := publisher.Publish(ctx, e); err != nil {
				logger.Warn("Event publish failed", logfields.Error(err))
			}
			worker.Trigger()
		})
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				logger.Warn("Sync scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	srv, err := httpserver.New(*cfg, opts)
	if err != nil {
		return err
	}
	if err := srv.Start(ctx); err != nil {
		return err
	}
	logger.Info("Serving site",
		slog.Int("port", cfg.Server.Port),
		slog.Bool("live_reload", cfg.Server.LiveReload),
		slog.String("version", version.Get()))

	<-ctx.Done()
	logger.Info("Shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Stop(sctx)
	worker.Wait()
	return err
}
