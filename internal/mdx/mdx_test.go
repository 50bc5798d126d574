package mdx

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

type stubComponent struct {
	name     string
	required []string
	raw      bool
}

func (s stubComponent) Name() string       { return s.name }
func (s stubComponent) Required() []string { return s.required }
func (s stubComponent) RawChildren() bool  { return s.raw }

func (s stubComponent) Render(ctx context.Context, in Invocation) (template.HTML, error) {
	inner, err := in.RenderChildren(ctx)
	if err != nil {
		return "", err
	}
	if s.raw {
		inner = template.HTML(template.HTMLEscapeString(in.Children))
	}
	return template.HTML(fmt.Sprintf(`<div data-c="%s" data-title="%s">%s</div>`, s.name, in.Props.String("title", ""), inner)), nil
}

type stubRegistry map[string]Component

func (r stubRegistry) Lookup(name string) (Component, bool) {
	c, ok := r[name]
	return c, ok
}

func registry() stubRegistry {
	return stubRegistry{
		"Box":  stubComponent{name: "Box", required: []string{"title"}},
		"Code": stubComponent{name: "Code", raw: true},
	}
}

func TestParseSegments(t *testing.T) {
	src := `import { Box, Code } from "@/components"
export const meta = { level: 1 }

# Title

Intro text.

<Box title="One" />

More text.

<Code lang="go">
` + "```go" + `
x := <Box title="not a component" />
` + "```" + `
</Code>
`
	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	require.Len(t, doc.Imports, 1)
	assert.Equal(t, []string{"Box", "Code"}, doc.Imports[0].Names)
	assert.Equal(t, "@/components", doc.Imports[0].Source)
	require.Len(t, doc.Exports, 1)
	assert.Equal(t, "meta", doc.Exports[0].Name)

	require.Len(t, doc.Segments, 4)
	assert.Equal(t, SegmentMarkdown, doc.Segments[0].Kind)
	assert.Equal(t, 4, doc.Segments[0].Line)
	assert.Equal(t, "# Title\n\nIntro text.\n", doc.Segments[0].Markdown)

	box := doc.Segments[1].Element
	assert.Equal(t, "Box", box.Name)
	assert.True(t, box.SelfClosing)
	assert.Equal(t, 8, box.Line)

	assert.Equal(t, "More text.\n", doc.Segments[2].Markdown)

	code := doc.Segments[3].Element
	assert.Equal(t, "Code", code.Name)
	assert.Equal(t, "```go\nx := <Box title=\"not a component\" />\n```", code.Children)
}

func TestParseProps(t *testing.T) {
	doc, err := Parse([]byte(`<Box a="x" b='y' c={"z"} d={'w'} e={123} f={true} g={false} h={` + "`t`" + `} i j={1.5} k={[1, 2]}
  title="multi line" />`))
	require.NoError(t, err)
	p := doc.Segments[0].Element.Props

	assert.Equal(t, Prop{Kind: PropString, String: "x"}, p["a"])
	assert.Equal(t, Prop{Kind: PropString, String: "y"}, p["b"])
	assert.Equal(t, Prop{Kind: PropString, String: "z"}, p["c"])
	assert.Equal(t, Prop{Kind: PropString, String: "w"}, p["d"])
	assert.Equal(t, Prop{Kind: PropNumber, Number: 123}, p["e"])
	assert.Equal(t, Prop{Kind: PropBool, Bool: true}, p["f"])
	assert.Equal(t, Prop{Kind: PropBool, Bool: false}, p["g"])
	assert.Equal(t, Prop{Kind: PropString, String: "t"}, p["h"])
	assert.Equal(t, Prop{Kind: PropBool, Bool: true}, p["i"])
	assert.Equal(t, "1.5", p["j"].Text())
	assert.Equal(t, PropExpression, p["k"].Kind)
	assert.Equal(t, "multi line", p.String("title", ""))
	assert.True(t, p.Bool("i"))
	assert.False(t, p.Bool("g"))
}

func TestParseNestedSameName(t *testing.T) {
	doc, err := Parse([]byte("<Box title=\"outer\">\n<Box title=\"inner\">\nhi\n</Box>\n<Box title=\"leaf\" />\n</Box>\nafter\n"))
	require.NoError(t, err)
	require.Len(t, doc.Segments, 2)
	assert.Equal(t, "<Box title=\"inner\">\nhi\n</Box>\n<Box title=\"leaf\" />", doc.Segments[0].Element.Children)
	assert.Equal(t, "after\n", doc.Segments[1].Markdown)
	assert.Equal(t, 7, doc.Segments[1].Line)
}

func TestParseFenceIsOpaque(t *testing.T) {
	doc, err := Parse([]byte("```mdx\nimport { Nope } from \"x\"\n<Nope />\n</Nope>\n```\n"))
	require.NoError(t, err)
	assert.Empty(t, doc.Imports)
	require.Len(t, doc.Segments, 1)
	assert.Equal(t, SegmentMarkdown, doc.Segments[0].Kind)
}

func TestParseImports(t *testing.T) {
	doc, err := Parse([]byte("import Box from './box'\nimport { Code as C, } from \"c\";\nimport \"./styles.css\"\n"))
	require.NoError(t, err)
	require.Len(t, doc.Imports, 3)
	assert.Equal(t, []string{"Box"}, doc.Imports[0].Names)
	assert.Equal(t, []string{"C"}, doc.Imports[1].Names)
	assert.Empty(t, doc.Imports[2].Names)
	assert.True(t, doc.Imported("C"))
	assert.False(t, doc.Imported("Code"))
}

func TestParseSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		msg  string
	}{
		{"unclosed component", "text\n<Box title=\"x\">\nbody\n", 2, "unclosed <Box>"},
		{"unterminated fence in component", "<Box>\n```go\ncode\n</Box>\n", 2, "unterminated code fence"},
		{"stray closing tag", "a\n\n</Box>\n", 3, "unexpected closing tag"},
		{"malformed prop", "<Box title=x />\n", 1, "must be quoted or braced"},
		{"unterminated string", "<Box title=\"x />\n", 1, "unterminated string"},
		{"unterminated tag", "<Box title=\"x\"\n", 1, "unterminated <Box> tag"},
		{"bad import", "import from nowhere\n", 1, "malformed import"},
		{"bad export", "export default Foo\n", 1, "export const"},
		{"trailing content", "<Box title=\"x\" /> trailing\n", 1, "unexpected content"},
		{"duplicate prop", "<Box a=\"1\" a=\"2\" />\n", 1, "duplicate prop"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src))
			require.Error(t, err)
			assert.True(t, derrors.HasCategory(err, derrors.CategoryMDX))
			assert.Contains(t, err.Error(), tt.msg)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.line, se.Line)
		})
	}
}

func TestParseAtOffsetsLines(t *testing.T) {
	_, err := ParseAt([]byte("ok\n<Box>\n"), 10)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 11, se.Line)
}

func TestCheck(t *testing.T) {
	doc, err := Parse([]byte(`import { Box, Missing } from "@/components"

<Box />

<Code>x</Code>

<Box title="ok">
<Unknown />
</Box>
`))
	require.NoError(t, err)
	problems := Check(doc, registry())

	var msgs []string
	for _, p := range problems {
		msgs = append(msgs, p.String())
	}
	joined := strings.Join(msgs, "\n")
	assert.Contains(t, joined, `line 1: import "Missing" from "@/components" does not resolve`)
	assert.Contains(t, joined, `line 3: <Box> is missing required prop "title"`)
	assert.Contains(t, joined, "line 5: <Code> is used but not imported")
	assert.Contains(t, joined, "<Unknown> is not a known component")
	assert.Len(t, problems, 5) // Unknown is both unimported and unknown
}

func TestCheckClean(t *testing.T) {
	doc, err := Parse([]byte("import { Box } from \"c\"\n\n<Box title=\"t\" />\n"))
	require.NoError(t, err)
	assert.Empty(t, Check(doc, registry()))
}

func TestRender(t *testing.T) {
	src := "import { Box, Code } from \"c\"\n\n## Setup\n\nSome *text* <script>alert(1)</script>\n\n<Box title=\"T\">\n### Inner\n\ninner **md**\n</Box>\n\n<Code>\na < b\n</Code>\n\n## Setup\n"
	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	out, err := NewRenderer(registry()).Render(context.Background(), doc, RenderContext{Locale: "en"})
	require.NoError(t, err)
	html := string(out.HTML)

	assert.Contains(t, html, `<h2 id="setup">Setup</h2>`)
	assert.Contains(t, html, "<em>text</em>")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `<div data-c="Box" data-title="T"><h3 id="inner">Inner</h3>`)
	assert.Contains(t, html, "<strong>md</strong>")
	assert.Contains(t, html, `<div data-c="Code" data-title="">a &lt; b</div>`)
	assert.Contains(t, html, `<h2 id="setup-1">Setup</h2>`, "heading ids stay unique across segments")

	assert.Equal(t, []string{"Box", "Code"}, out.Components)
	require.Len(t, out.Headings, 3)
	assert.Equal(t, Heading{Level: 2, ID: "setup", Text: "Setup"}, out.Headings[0])
	assert.Equal(t, Heading{Level: 3, ID: "inner", Text: "Inner"}, out.Headings[1])
	assert.Equal(t, "setup-1", out.Headings[2].ID)
}

func TestRenderUnknownComponent(t *testing.T) {
	doc, err := Parse([]byte("<Nope />\n"))
	require.NoError(t, err)
	_, err = NewRenderer(registry()).Render(context.Background(), doc, RenderContext{})
	require.Error(t, err)
	assert.True(t, derrors.HasCategory(err, derrors.CategoryMDX))
}

func TestExtractHeadings(t *testing.T) {
	hs := ExtractHeadings(`<h1 id="a">A</h1><section><h2 id="b"><a href="#b">B  <code>c</code></a></h2></section><h3>no id</h3>`)
	require.Len(t, hs, 1)
	assert.Equal(t, Heading{Level: 2, ID: "b", Text: "B c"}, hs[0])
}

func TestToMarkdown(t *testing.T) {
	src := "import { ArticleSection, Codeblock, Calc } from \"@/components\"\n\n" +
		"# Title\n\n" +
		"<ArticleSection name=\"Setup\" id=\"setup\" />\n\n" +
		"Some text.\n\n" +
		"<Codeblock lang=\"rust\" title=\"lib.rs\">\n```rust\nfn main() {}\n```\n</Codeblock>\n\n" +
		"<Calc />\n"
	doc, err := Parse([]byte(src))
	require.NoError(t, err)

	md := ToMarkdown(doc)
	assert.NotContains(t, md, "import")
	assert.Contains(t, md, "# Title")
	assert.Contains(t, md, "## Setup")
	assert.Contains(t, md, "**lib.rs**")
	assert.Contains(t, md, "```rust\nfn main() {}\n```")
	assert.Contains(t, md, "> [Calc]")
	assert.Less(t, strings.Index(md, "## Setup"), strings.Index(md, "Some text."))
}
