package content

import (
	"slices"
	"strings"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/locale"
)

// Resolved is the answer to a locale-aware lookup.
type Resolved struct {
	Doc *Document
	// Requested is the locale the caller asked for; Doc.Locale may differ.
	Requested        string
	FallbackUsed     bool
	AvailableLocales []string
}

// Stats summarizes a tree.
type Stats struct {
	Courses   int
	Lessons   int
	Documents int
	PerLocale map[string]int
	Warnings  int
}

// Tree is an immutable snapshot of the content directory.
type Tree struct {
	locales    *locale.Router
	courses    map[string]*Course
	order      []string
	docs       []*Document
	warnings   []Warning
	generation uint64
}

func newTree(r *locale.Router) *Tree {
	return &Tree{locales: r, courses: map[string]*Course{}}
}

func (t *Tree) warn(file, reason string) {
	t.warnings = append(t.warnings, Warning{File: file, Reason: reason})
}

func (t *Tree) course(slug string) *Course {
	c, ok := t.courses[slug]
	if !ok {
		c = &Course{Slug: slug, overviews: map[string]*Document{}, lessons: map[string]map[string]*Document{}}
		t.courses[slug] = c
	}
	return c
}

func (t *Tree) add(d *Document) {
	c := t.course(d.Course)
	if d.IsOverview() {
		c.overviews[d.Locale] = d
	} else {
		if c.lessons[d.Lesson] == nil {
			c.lessons[d.Lesson] = map[string]*Document{}
		}
		c.lessons[d.Lesson][d.Locale] = d
	}
	t.docs = append(t.docs, d)
}

func (t *Tree) finish() {
	def := t.locales.Default()
	for slug, c := range t.courses {
		// course.yaml alone is not a course
		if len(c.overviews) == 0 && len(c.lessons) == 0 {
			delete(t.courses, slug)
			continue
		}
		c.sortLessons(def)
	}
	t.order = t.order[:0]
	for slug := range t.courses {
		t.order = append(t.order, slug)
	}
	slices.SortFunc(t.order, func(a, b string) int {
		if oa, ob := t.courses[a].Meta.Order, t.courses[b].Meta.Order; oa != ob {
			return oa - ob
		}
		return strings.Compare(a, b)
	})
	slices.SortFunc(t.docs, func(a, b *Document) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Locale, b.Locale)
	})
}

// Generation is the store generation the tree was published under (0 if never).
func (t *Tree) Generation() uint64 { return t.generation }

// Locales returns the router the tree was built with.
func (t *Tree) Locales() *locale.Router { return t.locales }

// Warnings returns the files skipped while loading.
func (t *Tree) Warnings() []Warning { return slices.Clone(t.warnings) }

// Courses returns courses that have content in locale or in the default locale,
// ordered by course.yaml order then slug.
func (t *Tree) Courses(loc string) []*Course {
	out := make([]*Course, 0, len(t.order))
	def := t.locales.Default()
	for _, slug := range t.order {
		c := t.courses[slug]
		if slices.Contains(c.Locales(), loc) || slices.Contains(c.Locales(), def) {
			out = append(out, c)
		}
	}
	return out
}

// Course returns a course by slug.
func (t *Tree) Course(slug string) (*Course, bool) {
	c, ok := t.courses[slug]
	return c, ok
}

// Lookup finds a document for course/lesson in loc, falling back to the
// default locale. An empty lesson looks up the course overview.
func (t *Tree) Lookup(course, lesson, loc string) (Resolved, error) {
	c, ok := t.courses[course]
	if !ok {
		return Resolved{}, derrors.NotFoundError("course not found").WithContext("course", course).Build()
	}
	variants := c.overviews
	if lesson != "" {
		variants = c.lessons[lesson]
	}
	if len(variants) == 0 {
		return Resolved{}, derrors.NotFoundError("lesson not found").
			WithContext("course", course).WithContext("lesson", lesson).Build()
	}

	res := Resolved{Requested: loc, AvailableLocales: t.orderedLocales(variants)}
	if d, ok := variants[loc]; ok {
		res.Doc = d
		return res, nil
	}
	if d, ok := variants[t.locales.Default()]; ok {
		res.Doc, res.FallbackUsed = d, true
		return res, nil
	}
	return Resolved{}, derrors.NotFoundError("no variant in requested or default locale").
		WithContext("course", course).WithContext("lesson", lesson).WithContext("locale", loc).Build()
}

// Lessons resolves every lesson of course for loc, in course order.
// Lessons with neither a loc nor a default-locale variant are omitted.
func (t *Tree) Lessons(course, loc string) []Resolved {
	c, ok := t.courses[course]
	if !ok {
		return nil
	}
	out := make([]Resolved, 0, len(c.order))
	for _, slug := range c.order {
		if r, err := t.Lookup(course, slug, loc); err == nil {
			out = append(out, r)
		}
	}
	return out
}

// Neighbors returns the lessons before and after lesson in course order.
func (t *Tree) Neighbors(course, lesson, loc string) (prev, next *Resolved) {
	lessons := t.Lessons(course, loc)
	for i, r := range lessons {
		if r.Doc.Lesson != lesson {
			continue
		}
		if i > 0 {
			p := lessons[i-1]
			prev = &p
		}
		if i+1 < len(lessons) {
			n := lessons[i+1]
			next = &n
		}
		break
	}
	return prev, next
}

// Documents returns every loaded document ordered by path then locale.
func (t *Tree) Documents() []*Document { return slices.Clone(t.docs) }

// Stats counts courses, lessons and documents.
func (t *Tree) Stats() Stats {
	s := Stats{Courses: len(t.courses), Documents: len(t.docs), PerLocale: map[string]int{}, Warnings: len(t.warnings)}
	for _, c := range t.courses {
		s.Lessons += len(c.lessons)
	}
	for _, d := range t.docs {
		s.PerLocale[d.Locale]++
	}
	return s
}

func (t *Tree) orderedLocales(variants map[string]*Document) []string {
	out := make([]string, 0, len(variants))
	for _, l := range t.locales.Supported() {
		if _, ok := variants[l]; ok {
			out = append(out, l)
		}
	}
	return out
}
