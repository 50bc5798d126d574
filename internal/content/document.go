// Package content loads the course/lesson tree from disk and answers
// locale-aware lookups against it.
package content

import (
	"bytes"
	"strings"

	"github.com/google/uuid"
)

// uidNamespace seeds derived document UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://coursesite.dev/content"))

// Document is one locale variant of a course overview or a lesson.
type Document struct {
	Course string
	Lesson string // empty for a course overview
	Locale string
	// Path is the unlocalized route, e.g. /courses/anchor/accounts.
	Path string
	// SourcePath is the slash-separated file path relative to the content root.
	SourcePath  string
	Frontmatter map[string]any
	Body        []byte
	// BodyLine is the source line the body starts on, for error positions.
	BodyLine    int
	Title       string
	Description string
	Order       int
	Draft       bool
	Tags        []string
	Fingerprint string
	UID         string
}

// IsOverview reports whether d is a course overview rather than a lesson.
func (d *Document) IsOverview() bool { return d.Lesson == "" }

// Key identifies the document independent of locale.
func (d *Document) Key() string { return d.Course + "/" + d.Lesson }

// DeriveUID returns the stable UID for a route and locale.
func DeriveUID(path, locale string) string {
	return uuid.NewSHA1(uidNamespace, []byte(locale+":"+path)).String()
}

// RoutePath returns the unlocalized route for a course and optional lesson.
func RoutePath(course, lesson string) string {
	if lesson == "" {
		return "/courses/" + course + "/"
	}
	return "/courses/" + course + "/" + lesson
}

// firstHeading returns the text of the first level-1 ATX heading outside code fences.
func firstHeading(body []byte) string {
	inFence := false
	for _, line := range bytes.Split(body, []byte("\n")) {
		s := strings.TrimSpace(string(line))
		if strings.HasPrefix(s, "```") || strings.HasPrefix(s, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(s, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(s, "# "))
		}
	}
	return ""
}

// Humanize turns a slug into a display title: "pda-basics" -> "Pda Basics".
func Humanize(slug string) string {
	parts := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
