package mdx

import (
	"bytes"
	"context"
	"html/template"
	"slices"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gparser "github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// Heading is a table-of-contents entry.
type Heading struct {
	Level int
	ID    string
	Text  string
}

// Rendered is the output of rendering a document.
type Rendered struct {
	HTML       template.HTML
	Headings   []Heading
	Components []string // distinct component names, in first-use order
}

// Renderer turns parsed documents into HTML. It is safe for concurrent use.
type Renderer struct {
	md       goldmark.Markdown
	policy   *bluemonday.Policy
	registry Registry
}

// NewRenderer returns a renderer dispatching components to reg.
func NewRenderer(reg Registry) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(gparser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
	)
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("div", "span", "pre", "code")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6", "section", "div")
	return &Renderer{md: md, policy: policy, registry: reg}
}

// Markdown renders a standalone markdown fragment and sanitizes it.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	return r.markdown(src, gparser.NewContext())
}

func (r *Renderer) markdown(src string, pctx gparser.Context) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf, gparser.WithContext(pctx)); err != nil {
		return "", derrors.WrapError(err, derrors.CategoryRender, "markdown conversion failed").Build()
	}
	// Sanitized output is safe to embed.
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// Render renders doc. Component errors abort the render and name the component.
func (r *Renderer) Render(ctx context.Context, doc *Document, rc RenderContext) (Rendered, error) {
	st := &renderState{r: r, doc: doc, rc: rc, pctx: gparser.NewContext()}
	body, err := st.segments(ctx, doc.Segments)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{HTML: body, Headings: ExtractHeadings(body), Components: st.used}, nil
}

type renderState struct {
	r    *Renderer
	doc  *Document
	rc   RenderContext
	pctx gparser.Context // shared so heading IDs stay unique across segments
	used []string
}

func (st *renderState) segments(ctx context.Context, segs []Segment) (template.HTML, error) {
	var out strings.Builder
	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		switch seg.Kind {
		case SegmentMarkdown:
			h, err := st.r.markdown(seg.Markdown, st.pctx)
			if err != nil {
				return "", err
			}
			out.WriteString(string(h))
		case SegmentComponent:
			h, err := st.component(ctx, seg.Element)
			if err != nil {
				return "", err
			}
			out.WriteString(string(h))
			out.WriteByte('\n')
		}
	}
	return template.HTML(out.String()), nil //nolint:gosec // parts are sanitized or component-escaped
}

func (st *renderState) component(ctx context.Context, el *Element) (template.HTML, error) {
	comp, ok := st.r.registry.Lookup(el.Name)
	if !ok {
		return "", derrors.MDXError("unknown component <"+el.Name+">").WithContext("line", el.Line).Build()
	}
	if !slices.Contains(st.used, el.Name) {
		st.used = append(st.used, el.Name)
	}
	in := Invocation{
		Props:    el.Props,
		Children: el.Children,
		Context:  st.rc,
		Line:     el.Line,
		RenderChildren: func(ctx context.Context) (template.HTML, error) {
			if comp.RawChildren() || strings.TrimSpace(el.Children) == "" {
				return "", nil
			}
			child, err := ParseAt([]byte(el.Children), el.Line+1)
			if err != nil {
				return "", err
			}
			return st.segments(ctx, child.Segments)
		},
	}
	h, err := comp.Render(ctx, in)
	if err != nil {
		if derrors.IsClassified(err) {
			return "", err
		}
		return "", derrors.WrapError(err, derrors.CategoryRender, "component render failed").
			WithContext("component", el.Name).
			WithContext("line", el.Line).
			Build()
	}
	return h, nil
}

// ExtractHeadings returns h2 and h3 elements that carry an id, in document order.
func ExtractHeadings(fragment template.HTML) []Heading {
	nodes, err := html.ParseFragment(strings.NewReader(string(fragment)), &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body})
	if err != nil {
		return nil
	}
	var out []Heading
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "h2" || n.Data == "h3") {
			if id := attr(n, "id"); id != "" {
				out = append(out, Heading{Level: int(n.Data[1] - '0'), ID: id, Text: strings.Join(strings.Fields(textOf(n)), " ")})
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textOf(c))
	}
	return b.String()
}
