package content

import (
	"slices"

	"gopkg.in/yaml.v3"
)

// CourseMeta is the optional course.yaml next to a course's lessons.
type CourseMeta struct {
	Title       string            `yaml:"title"`
	Titles      map[string]string `yaml:"titles,omitempty"` // per-locale overrides
	Description string            `yaml:"description"`
	Order       int               `yaml:"order"`
	Lessons     []string          `yaml:"lessons"`
	Tags        []string          `yaml:"tags"`
	Level       string            `yaml:"level"`
}

func parseCourseMeta(data []byte) (CourseMeta, error) {
	var m CourseMeta
	err := yaml.Unmarshal(data, &m)
	return m, err
}

// Course groups the overviews and lessons of one course.
type Course struct {
	Slug      string
	Meta      CourseMeta
	overviews map[string]*Document            // locale -> overview
	lessons   map[string]map[string]*Document // lesson slug -> locale -> doc
	order     []string                        // lesson slugs, sorted
}

// Title returns the display title for locale: overview frontmatter, then
// course.yaml, then the humanized slug.
func (c *Course) Title(locale, def string) string {
	if d, ok := c.overviews[locale]; ok && d.Title != "" {
		return d.Title
	}
	if t := c.Meta.Titles[locale]; t != "" {
		return t
	}
	if c.Meta.Title != "" {
		return c.Meta.Title
	}
	if d, ok := c.overviews[def]; ok && d.Title != "" {
		return d.Title
	}
	return Humanize(c.Slug)
}

// LessonSlugs returns the ordered lesson slugs of the course.
func (c *Course) LessonSlugs() []string { return slices.Clone(c.order) }

// Locales returns the locales that have at least one document in the course.
func (c *Course) Locales() []string {
	seen := map[string]bool{}
	for l := range c.overviews {
		seen[l] = true
	}
	for _, byLocale := range c.lessons {
		for l := range byLocale {
			seen[l] = true
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

func (c *Course) sortLessons(def string) {
	rank := make(map[string]int, len(c.Meta.Lessons))
	for i, s := range c.Meta.Lessons {
		rank[s] = i
	}
	orderOf := func(slug string) int {
		byLocale := c.lessons[slug]
		if d, ok := byLocale[def]; ok {
			return d.Order
		}
		for _, d := range byLocale {
			return d.Order
		}
		return 0
	}
	c.order = c.order[:0]
	for slug := range c.lessons {
		c.order = append(c.order, slug)
	}
	slices.SortFunc(c.order, func(a, b string) int {
		ra, aListed := rank[a]
		rb, bListed := rank[b]
		switch {
		case aListed && bListed:
			return ra - rb
		case aListed:
			return -1
		case bListed:
			return 1
		}
		if oa, ob := orderOf(a), orderOf(b); oa != ob {
			return oa - ob
		}
		if a < b {
			return -1
		}
		if a > b {
			return 1
		}
		return 0
	})
}
