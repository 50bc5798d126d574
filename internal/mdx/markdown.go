package mdx

import "strings"

// ToMarkdown flattens doc into plain CommonMark for terminal display.
// Component children are inlined, an element's title or name prop becomes
// a heading, and self-closing widgets are reduced to a placeholder line.
func ToMarkdown(doc *Document) string {
	var b strings.Builder
	for _, s := range doc.Segments {
		switch s.Kind {
		case SegmentMarkdown:
			b.WriteString(s.Markdown)
		case SegmentComponent:
			writeElement(&b, s.Element)
		}
	}
	return strings.TrimSpace(b.String()) + "\n"
}

func writeElement(b *strings.Builder, el *Element) {
	b.WriteString("\n")
	switch {
	case el.Props.Has("name") && el.Name == "ArticleSection":
		b.WriteString("## " + el.Props.String("name", "") + "\n\n")
	case el.Props.Has("title"):
		b.WriteString("**" + el.Props.String("title", "") + "**\n\n")
	}
	children := strings.TrimSpace(el.Children)
	if children == "" {
		if el.SelfClosing && el.Name != "ArticleSection" {
			b.WriteString("> [" + el.Name + "]\n")
		}
		b.WriteString("\n")
		return
	}
	b.WriteString(children + "\n\n")
}
