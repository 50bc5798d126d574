package components

import (
	"bytes"
	"context"
	"html/template"
	"strconv"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
)

// HighlightStyle is the chroma style whose CSS is served with the theme.
const HighlightStyle = "github-dark"

var codeblockTmpl = template.Must(template.New("Codeblock").Parse(
	`<figure class="codeblock" data-lang="{{.Lang}}">` +
		`{{if .Title}}<figcaption class="codeblock-title">{{.Title}}</figcaption>{{end}}` +
		`{{.Code}}</figure>`))

// Codeblock renders syntax highlighted code.
type Codeblock struct {
	style *chroma.Style
}

// NewCodeblock returns the Codeblock component.
func NewCodeblock() *Codeblock {
	return &Codeblock{style: styles.Get(HighlightStyle)}
}

func (*Codeblock) Name() string       { return "Codeblock" }
func (*Codeblock) Required() []string { return nil }
func (*Codeblock) RawChildren() bool  { return true }

// Render highlights the children. Props: lang, title, highlight ("1,3-5"), showLineNumbers.
func (c *Codeblock) Render(_ context.Context, in mdx.Invocation) (template.HTML, error) {
	code, fenceLang := splitFence(in.Children)
	lang := in.Props.String("lang", "")
	if lang == "" {
		lang = fenceLang
	}
	if lang == "" {
		lang = "text"
	}

	ranges, err := parseRanges(in.Props.String("highlight", ""))
	if err != nil {
		return "", derrors.ValidationError("invalid highlight ranges").WithContext("line", in.Line).WithContext("highlight", in.Props.String("highlight", "")).Build()
	}

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	formatter := chromahtml.New(
		chromahtml.WithClasses(true),
		chromahtml.WithLineNumbers(in.Props.Bool("showLineNumbers")),
		chromahtml.HighlightLines(ranges),
		chromahtml.TabWidth(4),
	)
	var hl bytes.Buffer
	if err := formatter.Format(&hl, c.style, iterator); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = codeblockTmpl.Execute(&buf, struct {
		Lang, Title string
		Code        template.HTML
	}{Lang: lang, Title: in.Props.String("title", ""), Code: template.HTML(hl.String())}) //nolint:gosec // chroma escapes tokens
	if err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec // template-escaped
}

// splitFence extracts the code and info-string language from a fenced block.
// Unfenced children are returned as-is with a trailing newline.
func splitFence(children string) (code, lang string) {
	s := strings.Trim(children, "\n")
	lines := strings.Split(s, "\n")
	first := strings.TrimSpace(lines[0])
	marker := ""
	switch {
	case strings.HasPrefix(first, "```"):
		marker = "```"
	case strings.HasPrefix(first, "~~~"):
		marker = "~~~"
	}
	if marker == "" || len(lines) < 2 {
		return dedent(lines) + "\n", ""
	}
	lang = strings.TrimSpace(strings.TrimLeft(first, marker[:1]))
	if i := strings.IndexAny(lang, " {"); i >= 0 {
		lang = lang[:i]
	}
	body := lines[1:]
	if last := strings.TrimSpace(body[len(body)-1]); strings.HasPrefix(last, marker) {
		body = body[:len(body)-1]
	}
	return dedent(body) + "\n", lang
}

func dedent(lines []string) string {
	indent := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	out := make([]string, len(lines))
	for i, l := range lines {
		if len(l) >= indent && indent > 0 {
			l = l[indent:]
		}
		out[i] = l
	}
	return strings.Join(out, "\n")
}

// parseRanges parses "1,3-5" into chroma highlight ranges.
func parseRanges(s string) ([][2]int, error) {
	var out [][2]int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || a < 1 {
			return nil, strconv.ErrSyntax
		}
		b := a
		if isRange {
			if b, err = strconv.Atoi(strings.TrimSpace(hi)); err != nil || b < a {
				return nil, strconv.ErrSyntax
			}
		}
		out = append(out, [2]int{a, b})
	}
	return out, nil
}

var (
	cssOnce sync.Once
	cssData []byte
)

// HighlightCSS returns the stylesheet for the classes Codeblock emits.
func HighlightCSS() []byte {
	cssOnce.Do(func() {
		var buf bytes.Buffer
		f := chromahtml.New(chromahtml.WithClasses(true))
		if err := f.WriteCSS(&buf, styles.Get(HighlightStyle)); err == nil {
			cssData = buf.Bytes()
		}
	})
	return cssData
}
