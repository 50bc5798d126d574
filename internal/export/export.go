// Package export writes the whole site as static files.
package export

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
	"git.home.luguber.info/inful/coursesite/internal/observability"
	"git.home.luguber.info/inful/coursesite/internal/search"
	"git.home.luguber.info/inful/coursesite/internal/site"
)

// DefaultConcurrency bounds parallel page renders.
const DefaultConcurrency = 8

// Exporter renders every route of Site into OutDir.
type Exporter struct {
	Site        *site.Site
	OutDir      string
	Concurrency int
	Logger      *slog.Logger
}

// Result summarizes an export.
type Result struct {
	Dir      string
	Pages    int
	Files    int
	Duration time.Duration
}

// Run renders into a staging directory next to OutDir and promotes it only
// when every page succeeded. A failed run leaves OutDir untouched.
func (e *Exporter) Run(ctx context.Context) (res Result, err error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "export.run")
	defer func() { observability.EndSpan(span, err) }()

	out := filepath.Clean(e.OutDir)
	stage := out + "_stage"
	if err := os.RemoveAll(stage); err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategoryFileSystem, "clear staging directory").WithContext("dir", stage).Build()
	}
	if err := os.MkdirAll(stage, 0o750); err != nil {
		return Result{}, derrors.WrapError(err, derrors.CategoryFileSystem, "create staging directory").WithContext("dir", stage).Build()
	}
	defer func() {
		if err != nil {
			abortStaging(stage, logger)
		}
	}()

	w := &writer{root: stage}
	pages, err := e.renderPages(ctx, w)
	if err != nil {
		return Result{}, err
	}
	if err := e.writeAssets(ctx, w); err != nil {
		return Result{}, err
	}
	if err := finalizeStaging(stage, out, logger); err != nil {
		return Result{}, err
	}

	res = Result{Dir: out, Pages: pages, Files: int(w.files.Load()), Duration: time.Since(start)}
	logger.Info("Static export finished",
		logfields.Path(out),
		slog.Int("pages", res.Pages),
		slog.Int("files", res.Files),
		logfields.Duration(res.Duration))
	return res, nil
}

func (e *Exporter) renderPages(ctx context.Context, w *writer) (int, error) {
	limit := e.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	routes := e.Site.Routes()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, r := range routes {
		g.Go(func() error {
			page, err := e.Site.Render(gctx, r)
			if err != nil {
				return derrors.WrapError(err, derrors.CategoryRender, "render page").WithContext("route", r.Path).Build()
			}
			return w.write(pageFile(r.Path), page.HTML)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(routes), nil
}

// writeAssets writes the root index, 404 pages, stylesheets and the
// per-locale search documents.
func (e *Exporter) writeAssets(ctx context.Context, w *writer) error {
	router := e.Site.Router()
	def := router.Default()

	home, err := e.Site.RenderHome(ctx, def)
	if err != nil {
		return err
	}
	if err := w.write("index.html", home.HTML); err != nil {
		return err
	}
	for _, loc := range router.Supported() {
		nf, err := e.Site.RenderNotFound(ctx, loc)
		if err != nil {
			return err
		}
		name := path.Join(loc, "404.html")
		if loc == def {
			if err := w.write("404.html", nf.HTML); err != nil {
				return err
			}
		}
		if err := w.write(name, nf.HTML); err != nil {
			return err
		}
	}

	th := e.Site.Theme()
	if err := w.write(strings.TrimPrefix(th.Path(), "/"), th.CSS); err != nil {
		return err
	}
	if err := w.write("theme.css", th.CSS); err != nil {
		return err
	}

	tree := e.Site.Store().Current()
	if tree == nil {
		return derrors.NewError(derrors.CategoryRuntime, "no content loaded").Build()
	}
	byLocale := map[string][]search.Entry{}
	for _, loc := range router.Supported() {
		byLocale[loc] = []search.Entry{}
	}
	for _, entry := range search.Entries(tree.Documents()) {
		byLocale[entry.Locale] = append(byLocale[entry.Locale], entry)
	}
	for loc, entries := range byLocale {
		data, err := json.Marshal(entries)
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryInternal, "encode search documents").Build()
		}
		if err := w.write(path.Join(loc, "search.json"), data); err != nil {
			return err
		}
	}
	return nil
}

// pageFile maps a route path onto its file: "/en/courses/a/b" becomes
// "en/courses/a/b/index.html".
func pageFile(routePath string) string {
	return path.Join(strings.Trim(routePath, "/"), "index.html")
}

type writer struct {
	root  string
	files atomic.Int64
}

func (w *writer) write(rel string, data []byte) error {
	full := filepath.Join(w.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create output directory").WithContext("path", rel).Build()
	}
	// #nosec G306 -- published site files are world-readable
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "write output file").WithContext("path", rel).Build()
	}
	w.files.Add(1)
	return nil
}

// finalizeStaging promotes stage to out:
//  1. Move an existing out to out.prev, replacing an older backup.
//  2. Rename stage to out.
//  3. Remove the backup.
func finalizeStaging(stage, out string, logger *slog.Logger) error {
	prev := out + ".prev"
	if err := os.RemoveAll(prev); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "remove previous backup").WithContext("dir", prev).Build()
	}
	if _, err := os.Stat(out); err == nil {
		if err := os.Rename(out, prev); err != nil {
			return derrors.WrapError(err, derrors.CategoryFileSystem, "backup existing output").WithContext("dir", out).Build()
		}
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o750); err != nil {
		return derrors.WrapError(err, derrors.CategoryFileSystem, "create output parent").WithContext("dir", out).Build()
	}
	if err := os.Rename(stage, out); err != nil {
		// Restore the previous output.
		if _, statErr := os.Stat(prev); statErr == nil {
			_ = os.Rename(prev, out)
		}
		return derrors.WrapError(err, derrors.CategoryFileSystem, "promote staging").WithContext("dir", out).Build()
	}
	if err := os.RemoveAll(prev); err != nil {
		logger.Warn("Failed to remove previous backup", logfields.Path(prev), logfields.Error(err))
	}
	logger.Debug("Promoted staging directory", logfields.Path(out))
	return nil
}

func abortStaging(stage string, logger *slog.Logger) {
	if err := os.RemoveAll(stage); err != nil {
		logger.Warn("Failed to remove staging directory after abort", logfields.Path(stage), logfields.Error(err))
	}
}
