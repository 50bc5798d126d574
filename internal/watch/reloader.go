package watch

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"git.home.luguber.info/inful/coursesite/internal/content"
	"git.home.luguber.info/inful/coursesite/internal/events"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
	"git.home.luguber.info/inful/coursesite/internal/metrics"
	"git.home.luguber.info/inful/coursesite/internal/observability"
	"git.home.luguber.info/inful/coursesite/internal/theme"
)

// TreeLoader builds a fresh content tree.
type TreeLoader interface {
	Load(ctx context.Context) (*content.Tree, error)
}

// PageCache is the rendered page cache flushed after a reload.
type PageCache interface {
	Purge(ctx context.Context) error
}

// Indexer rebuilds the search index.
type Indexer interface {
	Rebuild(ctx context.Context, docs []*content.Document) error
}

// ThemeTarget receives a recompiled theme.
type ThemeTarget interface {
	SetTheme(t *theme.Theme)
}

// CatalogTarget receives reloaded UI message catalogs.
type CatalogTarget interface {
	SetCatalog(c *locale.Catalog)
}

// Reloader rebuilds the content tree and propagates the result. Only
// Loader and Store are required.
type Reloader struct {
	Loader    TreeLoader
	Store     *content.Store
	Cache     PageCache
	Index     Indexer
	Publisher events.Publisher
	Hub       *LiveReloadHub
	Recorder  metrics.Recorder
	Logger    *slog.Logger

	// LoadTheme recompiles the theme; nil skips theme reloads.
	LoadTheme func() (*theme.Theme, error)
	Theme     ThemeTarget

	// LoadCatalog re-reads the message catalogs; nil skips them.
	LoadCatalog func() (*locale.Catalog, error)
	Catalog     CatalogTarget
}

// Reload loads a new tree and, on success, publishes it, purges the page
// cache, reindexes search, publishes an event and notifies browsers. On
// failure the current tree stays in place and browsers receive an
// "error:<ts>" notice.
func (r *Reloader) Reload(ctx context.Context) (err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := r.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	ctx, span := observability.StartSpan(ctx, "content.reload")
	defer func() { observability.EndSpan(span, err) }()

	start := time.Now()
	if r.LoadTheme != nil && r.Theme != nil {
		th, err := r.LoadTheme()
		if err != nil {
			r.fail(ctx, logger, recorder, err)
			return err
		}
		r.Theme.SetTheme(th)
	}
	if r.LoadCatalog != nil && r.Catalog != nil {
		c, err := r.LoadCatalog()
		if err != nil {
			r.fail(ctx, logger, recorder, err)
			return err
		}
		r.Catalog.SetCatalog(c)
	}

	tree, err := r.Loader.Load(ctx)
	if err != nil {
		r.fail(ctx, logger, recorder, err)
		return err
	}
	gen := r.Store.Swap(tree)
	stats := tree.Stats()

	if r.Cache != nil {
		if err := r.Cache.Purge(ctx); err != nil {
			logger.Warn("Page cache purge failed", logfields.Error(err))
		}
	}
	if r.Index != nil {
		if err := r.Index.Rebuild(ctx, tree.Documents()); err != nil {
			logger.Warn("Search reindex failed", logfields.Error(err))
		}
	}
	for _, loc := range tree.Locales().Supported() {
		recorder.SetContentDocuments(loc, stats.PerLocale[loc])
	}
	recorder.IncContentReload(metrics.ResultSuccess)

	if r.Publisher != nil {
		if err := r.Publisher.Publish(ctx, events.New(events.TypeContentReloaded, gen, stats.Documents)); err != nil {
			logger.Warn("Event publish failed", logfields.Error(err))
		}
	}
	if r.Hub != nil {
		r.Hub.Broadcast(strconv.FormatUint(gen, 10) + "-" + strconv.FormatInt(time.Now().UnixNano(), 36))
	}
	logger.Info("Content reloaded",
		slog.Uint64("generation", gen),
		slog.Int("documents", stats.Documents),
		slog.Int("warnings", stats.Warnings),
		logfields.Duration(time.Since(start)))
	return nil
}

func (r *Reloader) fail(ctx context.Context, logger *slog.Logger, recorder metrics.Recorder, err error) {
	logger.Warn("Reload failed; keeping current content", logfields.Error(err))
	recorder.IncContentReload(metrics.ResultFailed)
	if r.Publisher != nil {
		e := events.New(events.TypeContentReloadFailed, 0, 0)
		if cur := r.Store.Current(); cur != nil {
			e.Generation = cur.Generation()
		}
		e.Error = err.Error()
		if perr := r.Publisher.Publish(ctx, e); perr != nil {
			logger.Warn("Event publish failed", logfields.Error(perr))
		}
	}
	if r.Hub != nil {
		r.Hub.Broadcast("error:" + strconv.FormatInt(time.Now().UnixNano(), 10))
	}
}
