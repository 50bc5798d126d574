package site

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"git.home.luguber.info/inful/coursesite/internal/content"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
	"git.home.luguber.info/inful/coursesite/internal/metrics"
	"git.home.luguber.info/inful/coursesite/internal/observability"
)

// Page is a rendered HTML document.
type Page struct {
	Status int
	HTML   []byte
	// ETag is a strong validator, quoted; empty for error pages.
	ETag string
}

// Render renders r. Missing content yields a not_found error.
func (s *Site) Render(ctx context.Context, r Route) (Page, error) {
	switch r.Kind {
	case KindHome:
		return s.RenderHome(ctx, r.Locale)
	case KindCourse:
		return s.RenderCourse(ctx, r.Course, r.Locale)
	case KindLesson:
		return s.RenderLesson(ctx, r.Course, r.Lesson, r.Locale)
	case KindNotFound:
		return s.RenderNotFound(ctx, r.Locale)
	}
	return Page{}, derrors.ValidationError("unknown route kind").WithContext("kind", string(r.Kind)).Build()
}

// RenderHome renders the course list for loc.
func (s *Site) RenderHome(ctx context.Context, loc string) (Page, error) {
	return s.cached(ctx, KindHome, loc, "", "", func(_ context.Context, t *content.Tree) (Page, error) {
		p := s.basePage(t, loc, "/")
		p.Description = s.opts.Site.Description
		def := t.Locales().Default()
		for _, c := range t.Courses(loc) {
			lessons := t.Lessons(c.Slug, loc)
			card := courseCard{
				Title:       c.Title(loc, def),
				Description: c.Meta.Description,
				URL:         t.Locales().Localize(loc, content.RoutePath(c.Slug, "")),
				Lessons:     len(lessons),
				Level:       c.Meta.Level,
			}
			if ov, err := t.Lookup(c.Slug, "", loc); err == nil {
				if ov.Doc.Description != "" {
					card.Description = ov.Doc.Description
				}
			}
			p.Courses = append(p.Courses, card)
		}
		return s.execute(KindHome, p, http.StatusOK)
	})
}

// RenderCourse renders a course overview and its lesson list.
func (s *Site) RenderCourse(ctx context.Context, course, loc string) (Page, error) {
	return s.cached(ctx, KindCourse, loc, course, "", func(ctx context.Context, t *content.Tree) (Page, error) {
		c, ok := t.Course(course)
		if !ok {
			return Page{}, derrors.NotFoundError("course not found").WithContext("course", course).Build()
		}
		path := content.RoutePath(course, "")
		p := s.basePage(t, loc, path)
		p.Title = c.Title(loc, t.Locales().Default())
		p.Description = c.Meta.Description
		p.CourseTitle, p.CourseURL = p.Title, t.Locales().Localize(loc, path)

		if ov, err := t.Lookup(course, "", loc); err == nil {
			body, _, err := s.renderDocument(ctx, ov, loc, p.CourseURL)
			if err != nil {
				return Page{}, err
			}
			p.Body = body
			if ov.Doc.Description != "" {
				p.Description = ov.Doc.Description
			}
			p.Notice = s.fallbackNotice(ov, loc)
			p.setAlternates(s, t, path, ov.AvailableLocales)
		}
		for _, l := range t.Lessons(course, loc) {
			p.Lessons = append(p.Lessons, s.lessonLink(t, l, loc))
		}
		return s.execute(KindCourse, p, http.StatusOK)
	})
}

// RenderLesson renders one lesson with its table of contents and pager.
// A lesson missing in loc falls back to the default locale with a notice.
func (s *Site) RenderLesson(ctx context.Context, course, lesson, loc string) (Page, error) {
	return s.cached(ctx, KindLesson, loc, course, lesson, func(ctx context.Context, t *content.Tree) (Page, error) {
		res, err := t.Lookup(course, lesson, loc)
		if err != nil {
			return Page{}, err
		}
		c, _ := t.Course(course)
		path := content.RoutePath(course, lesson)
		p := s.basePage(t, loc, path)
		p.Title = res.Doc.Title
		p.Description = res.Doc.Description
		p.CourseTitle = c.Title(loc, t.Locales().Default())
		p.CourseURL = t.Locales().Localize(loc, content.RoutePath(course, ""))
		p.setAlternates(s, t, path, res.AvailableLocales)

		body, headings, err := s.renderDocument(ctx, res, loc, t.Locales().Localize(loc, path))
		if err != nil {
			return Page{}, err
		}
		p.Body, p.TOC = body, headings
		p.Notice = s.fallbackNotice(res, loc)

		prev, next := t.Neighbors(course, lesson, loc)
		if prev != nil {
			link := s.lessonLink(t, *prev, loc)
			p.Prev = &link
		}
		if next != nil {
			link := s.lessonLink(t, *next, loc)
			p.Next = &link
		}
		return s.execute(KindLesson, p, http.StatusOK)
	})
}

// RenderNotFound renders the localized 404 page.
func (s *Site) RenderNotFound(ctx context.Context, loc string) (Page, error) {
	return s.cached(ctx, KindNotFound, loc, "", "", func(_ context.Context, t *content.Tree) (Page, error) {
		p := s.basePage(t, loc, "/")
		p.Title = s.t(loc, "site.not_found")
		p.Alternates = nil
		p.XDefault = ""
		page, err := s.execute(KindNotFound, p, http.StatusNotFound)
		page.ETag = ""
		return page, err
	})
}

type renderFunc func(ctx context.Context, t *content.Tree) (Page, error)

// cached wraps fn with a span, a duration metric and the page cache. Keys
// include the tree generation so a reload never serves stale pages.
func (s *Site) cached(ctx context.Context, kind Kind, loc, course, lesson string, fn renderFunc) (page Page, err error) {
	t, err := s.tree()
	if err != nil {
		return Page{}, err
	}
	loc = t.Locales().Canonical(loc)

	ctx, span := observability.StartSpan(ctx, "site.render",
		attribute.String("page.kind", string(kind)),
		attribute.String("page.locale", loc),
		attribute.String("page.course", course),
		attribute.String("page.lesson", lesson),
	)
	defer func() { observability.EndSpan(span, err) }()

	key := cacheKey(t.Generation(), kind, loc, course, lesson)
	if data, ok, cerr := s.opts.Cache.Get(ctx, key); cerr != nil {
		s.opts.Recorder.IncCacheResult(metrics.ResultError)
		s.logger.Warn("Page cache read failed", logfields.Route(key), logfields.Error(cerr))
	} else if ok {
		if p, ok := decodePage(data); ok {
			s.opts.Recorder.IncCacheResult(metrics.ResultHit)
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return p, nil
		}
	} else {
		s.opts.Recorder.IncCacheResult(metrics.ResultMiss)
	}

	start := time.Now()
	page, err = fn(ctx, t)
	s.opts.Recorder.ObserveRenderDuration(string(kind), time.Since(start))
	if err != nil {
		return Page{}, err
	}
	if cerr := s.opts.Cache.Set(ctx, key, encodePage(page), s.opts.CacheTTL); cerr != nil {
		s.opts.Recorder.IncCacheResult(metrics.ResultError)
		s.logger.Warn("Page cache write failed", logfields.Route(key), logfields.Error(cerr))
	}
	return page, nil
}

func (s *Site) renderDocument(ctx context.Context, res content.Resolved, loc, route string) (template.HTML, []mdx.Heading, error) {
	doc, err := mdx.ParseAt(res.Doc.Body, res.Doc.BodyLine)
	if err != nil {
		return "", nil, withSource(err, res.Doc)
	}
	out, err := s.renderer.Render(ctx, doc, mdx.RenderContext{Locale: loc, Route: route, T: s.translator(loc)})
	if err != nil {
		return "", nil, withSource(err, res.Doc)
	}
	return out.HTML, out.Headings, nil
}

func withSource(err error, d *content.Document) error {
	if ce, ok := derrors.AsClassified(err); ok {
		return ce.WithContext("file", d.SourcePath)
	}
	return derrors.WrapError(err, derrors.CategoryRender, "render document").WithContext("file", d.SourcePath).Build()
}

// execute renders the page template. The ETag is derived from the output, so
// any change to the page body changes it.
func (s *Site) execute(kind Kind, p pageData, status int) (Page, error) {
	var buf bytes.Buffer
	if err := s.templates[kind].ExecuteTemplate(&buf, "base", p); err != nil {
		return Page{}, derrors.WrapError(err, derrors.CategoryRender, "execute page template").
			WithContext("template", string(kind)).Build()
	}
	return Page{Status: status, HTML: buf.Bytes(), ETag: etag(string(kind), buf.String())}, nil
}

func etag(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return `"` + hex.EncodeToString(sum[:])[:20] + `"`
}

func cacheKey(gen uint64, kind Kind, loc, course, lesson string) string {
	return "page:" + strconv.FormatUint(gen, 10) + ":" + loc + ":" + string(kind) + ":" + course + "/" + lesson
}

// encodePage stores a page as "<status> <etag>\n<html>".
func encodePage(p Page) []byte {
	head := strconv.Itoa(p.Status) + " " + p.ETag + "\n"
	out := make([]byte, 0, len(head)+len(p.HTML))
	return append(append(out, head...), p.HTML...)
}

func decodePage(data []byte) (Page, bool) {
	head, body, ok := bytes.Cut(data, []byte("\n"))
	if !ok {
		return Page{}, false
	}
	status, tag, _ := strings.Cut(string(head), " ")
	code, err := strconv.Atoi(status)
	if err != nil {
		return Page{}, false
	}
	return Page{Status: code, ETag: tag, HTML: body}, true
}
