package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/coursesite/internal/content"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/linkcheck"
	"git.home.luguber.info/inful/coursesite/internal/mdx"
)

// CheckCmd implements the 'check' command.
type CheckCmd struct {
	NoLinks bool `name:"no-links" help:"Skip the internal link check"`
}

func (c *CheckCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	ctx := context.Background()
	a, err := newApp(ctx, cfg, g.logger(), appOptions{noCache: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	out := g.out()
	tree := a.store.Current()
	problems := 0
	for _, w := range tree.Warnings() {
		_, _ = fmt.Fprintf(out, "%s: %s\n", w.File, w.Reason)
		problems++
	}
	for _, doc := range tree.Documents() {
		for _, p := range checkDocument(doc, a.registry) {
			_, _ = fmt.Fprintf(out, "%s:%s\n", doc.SourcePath, p)
			problems++
		}
	}

	if !c.NoLinks {
		report, err := linkcheck.Check(ctx, a.site, g.logger())
		if err != nil {
			return err
		}
		for _, b := range report.Broken {
			_, _ = fmt.Fprintf(out, "%s: broken link %s (%s)\n", b.Page, b.Link, b.Reason)
			problems++
		}
		_, _ = fmt.Fprintf(out, "Checked %d pages, %d links\n", report.Pages, report.Links)
	}

	if problems > 0 {
		return derrors.ContentError(fmt.Sprintf("%d problem(s) found", problems)).Build()
	}
	_, err = fmt.Fprintln(out, "No problems found")
	return err
}

// checkDocument parses doc and returns its syntax error or semantic problems.
func checkDocument(doc *content.Document, reg mdx.Registry) []string {
	parsed, err := mdx.ParseAt(doc.Body, doc.BodyLine)
	if err != nil {
		return []string{" " + err.Error()}
	}
	var out []string
	for _, p := range mdx.Check(parsed, reg) {
		out = append(out, fmt.Sprintf("%d: %s", p.Line, p.Message))
	}
	return out
}
