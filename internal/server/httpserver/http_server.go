// Package httpserver assembles the coursesite HTTP endpoints into servers.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"git.home.luguber.info/inful/coursesite/internal/config"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/metrics"
	handlers "git.home.luguber.info/inful/coursesite/internal/server/handlers"
	smw "git.home.luguber.info/inful/coursesite/internal/server/middleware"
	"git.home.luguber.info/inful/coursesite/internal/site"
	"git.home.luguber.info/inful/coursesite/internal/watch"
)

// Options carries the runtime dependencies of the server.
type Options struct {
	Site     *site.Site
	Searcher handlers.Searcher
	// Hub is required when live reload is enabled.
	Hub      *watch.LiveReloadHub
	Registry *prom.Registry
	Recorder metrics.Recorder
	// Tracing wraps the handler with otelhttp.
	Tracing bool
	Logger  *slog.Logger
}

// Server manages the site and metrics listeners.
type Server struct {
	cfg          config.Config
	opts         Options
	errorAdapter *derrors.HTTPErrorAdapter
	logger       *slog.Logger

	siteServer    *http.Server
	metricsServer *http.Server
	addrs         []net.Addr

	monitoringHandlers *handlers.MonitoringHandlers
	apiHandlers        *handlers.APIHandlers
	pageHandlers       *handlers.PageHandlers

	mchain func(http.Handler) http.Handler
}

// New constructs a server. It does not bind any port until Start.
func New(cfg config.Config, opts Options) (*Server, error) {
	if opts.Site == nil {
		return nil, derrors.InternalError("http server requires a site").Build()
	}
	if cfg.Server.LiveReload && opts.Hub == nil {
		return nil, derrors.ConfigError("live reload enabled without a hub").Build()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}

	s := &Server{
		cfg:          cfg,
		opts:         opts,
		errorAdapter: derrors.NewHTTPErrorAdapter(opts.Logger),
		logger:       opts.Logger,
	}
	router := opts.Site.Router()
	s.monitoringHandlers = handlers.NewMonitoringHandlers(opts.Site.Store(), s.errorAdapter)
	s.apiHandlers = handlers.NewAPIHandlers(opts.Site, router, opts.Searcher, s.errorAdapter)
	s.pageHandlers = handlers.NewPageHandlers(opts.Site, s.errorAdapter, opts.Logger)
	s.mchain = smw.Chain(opts.Logger, s.errorAdapter)
	return s, nil
}

// Handler returns the fully wrapped site handler.
func (s *Server) Handler() http.Handler {
	rec := s.opts.Recorder
	mux := http.NewServeMux()
	mux.Handle("/healthz", smw.Instrument(rec, "health", http.HandlerFunc(s.monitoringHandlers.HandleHealthCheck)))
	mux.Handle("/readyz", smw.Instrument(rec, "health", http.HandlerFunc(s.monitoringHandlers.HandleReadiness)))
	mux.Handle("/api/discriminator", smw.Instrument(rec, "api", http.HandlerFunc(s.apiHandlers.HandleDiscriminator)))
	mux.Handle("/api/search", smw.Instrument(rec, "api", http.HandlerFunc(s.apiHandlers.HandleSearch)))
	mux.Handle("/api/routes", smw.Instrument(rec, "api", http.HandlerFunc(s.apiHandlers.HandleRoutes)))
	if s.cfg.Server.LiveReload {
		// Streams are long-lived, so they stay out of the request counter.
		mux.Handle("/livereload", s.opts.Hub)
		mux.Handle("/livereload.js", watch.ScriptHandler())
	}
	if s.cfg.Server.MetricsPort == 0 && s.opts.Registry != nil {
		mux.Handle("/metrics", metrics.HTTPHandler(s.opts.Registry))
	}
	mux.Handle("/", smw.Instrument(rec, "page", s.pageHandlers))

	router := s.opts.Site.Router()
	var h http.Handler = locale.Middleware(router, s.cfg.I18n.DetectLanguage)(mux)
	h = s.mchain(h)
	if s.opts.Tracing {
		h = otelhttp.NewHandler(h, "coursesite.http",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}))
	}
	return h
}

// Start binds every listener first so a port conflict fails the whole
// startup instead of leaving some servers running.
func (s *Server) Start(ctx context.Context) error {
	type preBind struct {
		name string
		port int
		ln   net.Listener
	}
	binds := []preBind{{name: "site", port: s.cfg.Server.Port}}
	if s.cfg.Server.MetricsPort != 0 && s.opts.Registry != nil {
		binds = append(binds, preBind{name: "metrics", port: s.cfg.Server.MetricsPort})
	}

	var bindErrs []error
	lc := net.ListenConfig{}
	for i := range binds {
		ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf(":%d", binds[i].port))
		if err != nil {
			bindErrs = append(bindErrs, fmt.Errorf("%s port %d: %w", binds[i].name, binds[i].port, err))
			continue
		}
		binds[i].ln = ln
	}
	if len(bindErrs) > 0 {
		for _, b := range binds {
			if b.ln != nil {
				_ = b.ln.Close()
			}
		}
		return derrors.WrapError(errors.Join(bindErrs...), derrors.CategoryNetwork, "http startup failed").Build()
	}

	s.siteServer = &http.Server{
		Handler:           s.Handler(),
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		// SSE streams would be cut by a write timeout.
		WriteTimeout: s.writeTimeout(),
		IdleTimeout:  120 * time.Second,
	}
	s.startServerWithListener("site", s.siteServer, binds[0].ln)
	s.addrs = append(s.addrs, binds[0].ln.Addr())

	if len(binds) > 1 {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.HTTPHandler(s.opts.Registry))
		s.metricsServer = &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
		s.startServerWithListener("metrics", s.metricsServer, binds[1].ln)
		s.addrs = append(s.addrs, binds[1].ln.Addr())
	}

	attrs := []any{slog.Int("port", s.cfg.Server.Port), slog.Bool("live_reload", s.cfg.Server.LiveReload)}
	if s.metricsServer != nil {
		attrs = append(attrs, slog.Int("metrics_port", s.cfg.Server.MetricsPort))
	}
	s.logger.Info("HTTP servers started", attrs...)
	return nil
}

// Addrs returns the bound listener addresses after Start, site first.
func (s *Server) Addrs() []net.Addr { return s.addrs }

func (s *Server) writeTimeout() time.Duration {
	if s.cfg.Server.LiveReload {
		return 0
	}
	return s.cfg.Server.WriteTimeout
}

// Stop gracefully shuts down all servers. Live reload streams are closed
// first so Shutdown does not wait on them.
func (s *Server) Stop(ctx context.Context) error {
	if s.opts.Hub != nil {
		s.opts.Hub.Shutdown()
	}
	var errs []error
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if s.siteServer != nil {
		if err := s.siteServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("site server shutdown: %w", err))
		}
	}
	if len(errs) > 0 {
		return derrors.WrapError(errors.Join(errs...), derrors.CategoryRuntime, "shutdown errors").Build()
	}
	s.logger.Info("HTTP servers stopped")
	return nil
}

func (s *Server) startServerWithListener(kind string, srv *http.Server, ln net.Listener) {
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error(fmt.Sprintf("%s server error", kind), slog.Any("error", err))
		}
	}()
}
