package site

import (
	"html/template"

	"git.home.luguber.info/inful/coursesite/internal/config"
	"git.home.luguber.info/inful/coursesite/internal/content"
	"git.home.luguber.info/inful/coursesite/internal/locale"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
)

// pageData is the template context shared by every layout.
type pageData struct {
	Site        config.SiteConfig
	Locale      string
	Title       string
	Description string
	Canonical   string
	Alternates  []locale.Alternate
	XDefault    string
	Stylesheet  string
	HomeURL     string
	Languages   []languageLink
	LiveReload  bool

	Courses []courseCard

	CourseTitle string
	CourseURL   string
	Body        template.HTML
	Notice      string
	Lessons     []lessonLink
	TOC         []mdx.Heading
	Prev        *lessonLink
	Next        *lessonLink

	translate func(key string, args ...any) string
}

// T translates a UI message for the page locale.
func (p pageData) T(key string, args ...any) string {
	if p.translate == nil {
		return key
	}
	return p.translate(key, args...)
}

type languageLink struct {
	Locale  string
	Name    string
	URL     string
	Current bool
}

type courseCard struct {
	Title       string
	Description string
	URL         string
	Lessons     int
	Level       string
}

type lessonLink struct {
	Title    string
	URL      string
	Fallback bool
}

// basePage fills the fields common to all pages. path is unlocalized.
func (s *Site) basePage(t *content.Tree, loc, path string) pageData {
	router := t.Locales()
	p := pageData{
		Site:       s.opts.Site,
		Locale:     loc,
		Canonical:  s.absolute(router.Localize(loc, path)),
		Stylesheet: s.Theme().Path(),
		HomeURL:    router.Localize(loc, "/"),
		LiveReload: s.opts.LiveReload,
		translate:  s.translator(loc),
	}
	for _, l := range router.Supported() {
		p.Languages = append(p.Languages, languageLink{
			Locale:  l,
			Name:    LanguageName(l),
			URL:     router.Localize(l, path),
			Current: l == loc,
		})
	}
	p.setAlternates(s, t, path, router.Supported())
	return p
}

// setAlternates lists hreflang links for the locales that have the content.
func (p *pageData) setAlternates(s *Site, t *content.Tree, path string, locales []string) {
	router := t.Locales()
	p.Alternates = p.Alternates[:0]
	for _, l := range locales {
		p.Alternates = append(p.Alternates, locale.Alternate{Locale: l, URL: s.absolute(router.Localize(l, path))})
	}
	p.XDefault = s.absolute(router.Localize(router.Default(), path))
}

func (s *Site) lessonLink(t *content.Tree, r content.Resolved, loc string) lessonLink {
	return lessonLink{
		Title:    r.Doc.Title,
		URL:      t.Locales().Localize(loc, r.Doc.Path),
		Fallback: r.FallbackUsed,
	}
}

func (s *Site) fallbackNotice(r content.Resolved, loc string) string {
	if !r.FallbackUsed {
		return ""
	}
	return s.t(loc, "site.fallback_notice", LanguageName(r.Doc.Locale))
}
