// Package locale maps URL path prefixes to supported locales and negotiates
// the preferred locale from Accept-Language.
package locale

import (
	"slices"
	"strings"

	"golang.org/x/text/language"
)

// Resolution is the outcome of resolving a request path.
type Resolution struct {
	Locale string
	// Rest is the path with the locale prefix removed. It always starts with "/".
	Rest string
	// Prefixed reports whether the path carried an explicit locale segment.
	Prefixed bool
}

// Router resolves locale prefixes. It is immutable after construction.
type Router struct {
	def       string
	supported []string
	lookup    map[string]string // lower-cased -> canonical
	matcher   language.Matcher
	tags      []language.Tag
}

// NewRouter builds a router. def is inserted into supported when missing.
func NewRouter(def string, supported []string) *Router {
	if def == "" {
		def = "en"
	}
	locales := make([]string, 0, len(supported)+1)
	locales = append(locales, def)
	for _, l := range supported {
		if l != "" && !slices.Contains(locales, l) {
			locales = append(locales, l)
		}
	}

	r := &Router{def: def, supported: locales, lookup: make(map[string]string, len(locales))}
	for _, l := range locales {
		r.lookup[strings.ToLower(l)] = l
		r.tags = append(r.tags, language.Make(l))
	}
	// The first tag is the matcher fallback, which keeps the default locale first.
	r.matcher = language.NewMatcher(r.tags)
	return r
}

// Default returns the default locale.
func (r *Router) Default() string { return r.def }

// Supported returns the supported locales, default first.
func (r *Router) Supported() []string { return slices.Clone(r.supported) }

// IsSupported reports whether l names a supported locale (case-insensitive).
func (r *Router) IsSupported(l string) bool {
	_, ok := r.lookup[strings.ToLower(l)]
	return ok
}

// Canonical returns the configured spelling of l, or the default locale.
func (r *Router) Canonical(l string) string {
	if c, ok := r.lookup[strings.ToLower(l)]; ok {
		return c
	}
	return r.def
}

// Resolve splits a request path into its locale and remaining path.
// Paths without a recognised locale segment resolve to the default locale.
func (r *Router) Resolve(path string) Resolution {
	if path == "" || path[0] != '/' {
		path = "/" + path
	}
	trimmed := path[1:]
	seg, rest, hasRest := strings.Cut(trimmed, "/")
	if canonical, ok := r.lookup[strings.ToLower(seg)]; ok && seg != "" {
		if !hasRest {
			return Resolution{Locale: canonical, Rest: "/", Prefixed: true}
		}
		return Resolution{Locale: canonical, Rest: "/" + rest, Prefixed: true}
	}
	return Resolution{Locale: r.def, Rest: path, Prefixed: false}
}

// Localize prefixes path with locale. Unsupported locales use the default.
func (r *Router) Localize(locale, path string) string {
	locale = r.Canonical(locale)
	if path == "" || path == "/" {
		return "/" + locale + "/"
	}
	if path[0] != '/' {
		path = "/" + path
	}
	return "/" + locale + path
}

// Alternate is one localized variant of a path.
type Alternate struct {
	Locale string
	URL    string
}

// Alternates returns path localized for every supported locale.
func (r *Router) Alternates(path string) []Alternate {
	out := make([]Alternate, 0, len(r.supported))
	for _, l := range r.supported {
		out = append(out, Alternate{Locale: l, URL: r.Localize(l, path)})
	}
	return out
}

// Negotiate picks the best supported locale for an Accept-Language header.
func (r *Router) Negotiate(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return r.def
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return r.def
	}
	_, idx, conf := r.matcher.Match(prefs...)
	if conf == language.No {
		return r.def
	}
	return r.supported[idx]
}
