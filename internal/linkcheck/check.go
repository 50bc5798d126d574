package linkcheck

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strings"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
	"git.home.luguber.info/inful/coursesite/internal/site"
)

// Broken is a link that does not resolve.
type Broken struct {
	Page   string `json:"page"`
	Link   string `json:"link"`
	Reason string `json:"reason"`
}

// Report summarizes a check run.
type Report struct {
	Pages  int      `json:"pages"`
	Links  int      `json:"links"`
	Broken []Broken `json:"broken"`
}

// OK reports whether no broken links were found.
func (r Report) OK() bool { return len(r.Broken) == 0 }

const (
	ReasonNoPage     = "no such page"
	ReasonNoFragment = "missing fragment"
	ReasonBadURL     = "malformed URL"
)

// staticPrefixes are served by handlers other than the page renderer.
var staticPrefixes = []string{"/api/", "/livereload", "/theme.css"}

// Check renders every route of s and verifies internal links. A link with a
// fragment must name an element id on its target page.
func Check(ctx context.Context, s *site.Site, logger *slog.Logger) (Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	routes := s.Routes()
	pages := make(map[string]Page, len(routes))
	for _, r := range routes {
		if err := ctx.Err(); err != nil {
			return Report{}, derrors.WrapError(err, derrors.CategoryRuntime, "link check cancelled").Build()
		}
		rendered, err := s.Render(ctx, r)
		if err != nil {
			return Report{}, derrors.WrapError(err, derrors.CategoryRender, "render page for link check").
				WithContext("route", r.Path).Build()
		}
		p, err := Extract(bytes.NewReader(rendered.HTML), s.BaseURL())
		if err != nil {
			return Report{}, err
		}
		pages[r.Path] = p
	}

	c := checker{site: s, pages: pages}
	report := Report{Pages: len(pages)}
	paths := make([]string, 0, len(pages))
	for p := range pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, page := range paths {
		for _, l := range pages[page].Links {
			if !l.Internal {
				continue
			}
			report.Links++
			if reason := c.verify(page, l.URL); reason != "" {
				report.Broken = append(report.Broken, Broken{Page: page, Link: l.URL, Reason: reason})
			}
		}
	}
	logger.Info("Link check finished",
		slog.Int("pages", report.Pages),
		slog.Int("links", report.Links),
		slog.Int("broken", len(report.Broken)))
	for _, b := range report.Broken {
		logger.Warn("Broken link", logfields.Route(b.Page), slog.String("link", b.Link), slog.String("reason", b.Reason))
	}
	return report, nil
}

type checker struct {
	site  *site.Site
	pages map[string]Page
}

// verify returns the reason link on page is broken, or "".
func (c checker) verify(page, link string) string {
	ref, err := url.Parse(link)
	if err != nil {
		return ReasonBadURL
	}
	p := (&url.URL{Path: page}).ResolveReference(ref).Path

	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(p, prefix) {
			return ""
		}
	}
	if p == c.site.Theme().Path() {
		return ""
	}

	route, _, ok := c.site.Match(p)
	if !ok || !c.site.Exists(route) {
		return ReasonNoPage
	}
	if ref.Fragment == "" {
		return ""
	}
	if tp, rendered := c.pages[route.Path]; rendered && !tp.IDs[ref.Fragment] {
		return ReasonNoFragment
	}
	return ""
}
