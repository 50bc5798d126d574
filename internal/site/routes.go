package site

import (
	"strings"

	"git.home.luguber.info/inful/coursesite/internal/content"
	"git.home.luguber.info/inful/coursesite/internal/locale"
)

// Kind is a page type.
type Kind string

const (
	KindHome     Kind = "home"
	KindCourse   Kind = "course"
	KindLesson   Kind = "lesson"
	KindNotFound Kind = "notfound"
)

// Route identifies one renderable page.
type Route struct {
	Kind   Kind   `json:"kind"`
	Locale string `json:"locale"`
	Course string `json:"course,omitempty"`
	Lesson string `json:"lesson,omitempty"`
	// Path is the canonical URL path. Match keeps the request's locale prefix
	// (or its absence); Routes always returns prefixed paths.
	Path string `json:"path"`
}

// Match maps a URL path onto a route by shape alone; it does not check that
// the content exists. redirect reports that the request path is not the
// canonical form and the client should be sent to r.Path.
func (s *Site) Match(path string) (r Route, redirect, ok bool) {
	router := s.Router()
	res := router.Resolve(path)
	prefix := ""
	if res.Prefixed {
		prefix = "/" + res.Locale
	}
	r.Locale = res.Locale

	rest := res.Rest
	if rest == "/" {
		r.Kind, r.Path = KindHome, prefix+"/"
		return r, path != r.Path, true
	}
	segs := strings.Split(strings.Trim(rest, "/"), "/")
	if segs[0] != "courses" || len(segs) < 2 || len(segs) > 3 {
		return Route{}, false, false
	}
	for _, seg := range segs[1:] {
		if !validSlug(seg) {
			return Route{}, false, false
		}
	}
	r.Course = segs[1]
	if len(segs) == 2 {
		r.Kind = KindCourse
	} else {
		r.Kind, r.Lesson = KindLesson, segs[2]
	}
	r.Path = prefix + content.RoutePath(r.Course, r.Lesson)
	return r, path != r.Path, true
}

// Routes lists every renderable page of the current tree: the home page,
// course overviews and lessons, for every supported locale. Lessons that
// only exist in the default locale are listed under every locale.
func (s *Site) Routes() []Route {
	t := s.opts.Store.Current()
	if t == nil {
		return nil
	}
	router := t.Locales()
	var out []Route
	for _, loc := range router.Supported() {
		out = append(out, Route{Kind: KindHome, Locale: loc, Path: router.Localize(loc, "/")})
		for _, c := range t.Courses(loc) {
			out = append(out, Route{
				Kind:   KindCourse,
				Locale: loc,
				Course: c.Slug,
				Path:   router.Localize(loc, content.RoutePath(c.Slug, "")),
			})
			for _, l := range t.Lessons(c.Slug, loc) {
				out = append(out, Route{
					Kind:   KindLesson,
					Locale: loc,
					Course: c.Slug,
					Lesson: l.Doc.Lesson,
					Path:   router.Localize(loc, content.RoutePath(c.Slug, l.Doc.Lesson)),
				})
			}
		}
	}
	return out
}

// Exists reports whether r names content in the current tree.
func (s *Site) Exists(r Route) bool {
	t := s.opts.Store.Current()
	if t == nil {
		return false
	}
	switch r.Kind {
	case KindHome:
		return true
	case KindCourse:
		_, ok := t.Course(r.Course)
		return ok
	case KindLesson:
		_, err := t.Lookup(r.Course, r.Lesson, r.Locale)
		return err == nil
	}
	return false
}

// Router returns the locale router of the current tree, or the configured one
// before the first load.
func (s *Site) Router() *locale.Router {
	if t := s.opts.Store.Current(); t != nil {
		return t.Locales()
	}
	return s.opts.Router
}

func validSlug(s string) bool {
	if s == "" || s[0] == '.' || s[0] == '_' {
		return false
	}
	for _, c := range s {
		if c == '/' || c == '\\' || c == ' ' {
			return false
		}
	}
	return true
}
