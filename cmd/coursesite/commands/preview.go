package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
	"git.home.luguber.info/inful/coursesite/internal/site"
)

// PreviewCmd implements the 'preview' command.
type PreviewCmd struct {
	Route string `arg:"" help:"Page path, e.g. /es/courses/anchor/intro"`
	Style string `help:"Glamour style (auto, dark, light, notty, ascii)" default:"auto"`
	Width int    `help:"Word wrap width" default:"80"`
}

func (p *PreviewCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	a, err := newApp(context.Background(), cfg, g.logger(), appOptions{noCache: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	route, _, ok := a.site.Match(p.Route)
	if !ok {
		return derrors.NotFoundError("no page at path").WithContext("path", p.Route).Build()
	}
	if route.Kind != site.KindCourse && route.Kind != site.KindLesson {
		return derrors.ValidationError("preview needs a course or lesson path").WithContext("path", p.Route).Build()
	}
	res, err := a.store.Current().Lookup(route.Course, route.Lesson, route.Locale)
	if err != nil {
		return err
	}
	doc, err := mdx.ParseAt(res.Doc.Body, res.Doc.BodyLine)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryMDX, "parse document").
			WithContext("file", res.Doc.SourcePath).Build()
	}

	md := "# " + res.Doc.Title + "\n\n" + mdx.ToMarkdown(doc)
	if res.FallbackUsed {
		md = fmt.Sprintf("> Showing %s: no %s version.\n\n", res.Doc.Locale, res.Requested) + md
	}
	out, err := renderTerminal(md, p.Style, p.Width)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(g.out(), out)
	return err
}

func renderTerminal(md, style string, width int) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryValidation, "create terminal renderer").
			WithContext("style", style).Build()
	}
	out, err := r.Render(md)
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryRender, "render markdown").Build()
	}
	return out, nil
}
