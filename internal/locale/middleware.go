package locale

import (
	"context"
	"log/slog"
	"net/http"

	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

type ctxKey struct{}

// WithLocale stores a resolution in ctx.
func WithLocale(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, ctxKey{}, res)
}

// FromContext returns the resolution stored by Middleware.
func FromContext(ctx context.Context) (Resolution, bool) {
	res, ok := ctx.Value(ctxKey{}).(Resolution)
	return res, ok
}

// Middleware resolves the request locale and stores it in the request context.
//
// With detect set, a request for exactly "/" is redirected to the negotiated
// locale's home when that locale is not the default. Unprefixed paths are
// otherwise served in the default locale without a redirect.
func Middleware(r *Router, detect bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			res := r.Resolve(req.URL.Path)

			if detect && !res.Prefixed && req.URL.Path == "/" {
				if preferred := r.Negotiate(req.Header.Get("Accept-Language")); preferred != r.Default() {
					slog.Debug("Redirecting to negotiated locale", logfields.Locale(preferred))
					w.Header().Add("Vary", "Accept-Language")
					http.Redirect(w, req, r.Localize(preferred, "/"), http.StatusFound)
					return
				}
			}

			next.ServeHTTP(w, req.WithContext(WithLocale(req.Context(), res)))
		})
	}
}
