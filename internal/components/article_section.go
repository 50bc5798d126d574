package components

import (
	"bytes"
	"context"
	"html/template"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
)

var articleSectionTmpl = template.Must(template.New("ArticleSection").Parse(
	`<section class="article-section animate-fade-in" aria-labelledby="{{.ID}}">` +
		`{{if eq .Level "h3"}}<h3 id="{{.ID}}" class="article-section-title"><a class="anchor" href="#{{.ID}}">{{.Name}}</a></h3>` +
		`{{else}}<h2 id="{{.ID}}" class="article-section-title"><a class="anchor" href="#{{.ID}}">{{.Name}}</a></h2>{{end}}` +
		`{{if .Body}}<div class="article-section-body">{{.Body}}</div>{{end}}` +
		`</section>`))

// ArticleSection renders a titled, linkable section heading.
type ArticleSection struct{}

// NewArticleSection returns the ArticleSection component.
func NewArticleSection() *ArticleSection { return &ArticleSection{} }

func (*ArticleSection) Name() string       { return "ArticleSection" }
func (*ArticleSection) Required() []string { return []string{"name"} }
func (*ArticleSection) RawChildren() bool  { return false }

// Render emits the section. Props: name (required), id, level (h2|h3).
func (*ArticleSection) Render(ctx context.Context, in mdx.Invocation) (template.HTML, error) {
	name := in.Props.String("name", "")
	id := in.Props.String("id", "")
	if id == "" {
		id = Slugify(name)
	}
	if id == "" {
		return "", derrors.ValidationError("ArticleSection needs a name or id that yields a slug").WithContext("line", in.Line).Build()
	}
	level := in.Props.String("level", "h2")
	if level != "h2" && level != "h3" {
		return "", derrors.ValidationError("ArticleSection level must be h2 or h3").WithContext("level", level).Build()
	}

	var body template.HTML
	if in.RenderChildren != nil {
		var err error
		if body, err = in.RenderChildren(ctx); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	err := articleSectionTmpl.Execute(&buf, struct {
		ID, Name, Level string
		Body            template.HTML
	}{ID: id, Name: name, Level: level, Body: body})
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // template-escaped
}
