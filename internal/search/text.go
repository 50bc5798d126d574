package search

import (
	"regexp"
	"strings"

	"git.home.luguber.info/inful/coursesite/internal/content"
)

var (
	componentTag = regexp.MustCompile(`</?[A-Z][A-Za-z0-9]*(\s[^>]*)?/?>`)
	inlineMarkup = regexp.MustCompile("[*`~]+")
	markdownLink = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	whitespace   = regexp.MustCompile(`\s+`)
)

// Entries converts documents into index entries, in document order.
func Entries(docs []*content.Document) []Entry {
	out := make([]Entry, 0, len(docs))
	for _, d := range docs {
		out = append(out, Entry{
			Route:  "/" + d.Locale + d.Path,
			Locale: d.Locale,
			Course: d.Course,
			Lesson: d.Lesson,
			Title:  d.Title,
			Body:   PlainText(d.Body),
		})
	}
	return out
}

// PlainText reduces an MDX body to searchable prose: code fences, ESM
// statements, Codeblock bodies and component tags are dropped and
// markdown markup is removed.
func PlainText(body []byte) string {
	var b strings.Builder
	fence := ""
	inCode := false
	for _, line := range strings.Split(string(body), "\n") {
		trimmed := strings.TrimSpace(line)
		if inCode {
			inCode = !strings.HasPrefix(trimmed, "</Codeblock>")
			continue
		}
		if fence != "" {
			if strings.HasPrefix(trimmed, fence) {
				fence = ""
			}
			continue
		}
		switch {
		case strings.HasPrefix(trimmed, "```"):
			fence = "```"
			continue
		case strings.HasPrefix(trimmed, "~~~"):
			fence = "~~~"
			continue
		case strings.HasPrefix(trimmed, "import "), strings.HasPrefix(trimmed, "export "):
			continue
		case strings.HasPrefix(trimmed, "<Codeblock") && !strings.HasSuffix(trimmed, "/>"):
			inCode = !strings.Contains(trimmed, "</Codeblock>")
			continue
		}
		trimmed = strings.TrimLeft(trimmed, "#>-+ ")
		trimmed = componentTag.ReplaceAllString(trimmed, " ")
		trimmed = markdownLink.ReplaceAllString(trimmed, "$1")
		trimmed = inlineMarkup.ReplaceAllString(trimmed, "")
		if trimmed != "" {
			b.WriteString(trimmed)
			b.WriteByte(' ')
		}
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(b.String(), " "))
}
