package commands

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/coursesite/internal/export"
	"git.home.luguber.info/inful/coursesite/internal/logfields"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory (overrides output.dir)" type:"path"`
	Concurrency int    `help:"Pages rendered in parallel" default:"8"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Dir = b.Output
	}
	logger := g.logger()
	ctx := context.Background()

	// Export renders each page once; the page cache would only hold copies.
	a, err := newApp(ctx, cfg, logger, appOptions{noCache: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	exp := &export.Exporter{Site: a.site, OutDir: cfg.Output.Dir, Concurrency: b.Concurrency, Logger: logger}
	res, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("Site exported",
		logfields.Path(res.Dir),
		slog.Int("pages", res.Pages),
		slog.Int("files", res.Files),
		logfields.Duration(res.Duration))
	_, err = fmt.Fprintf(g.out(), "Wrote %d pages (%d files) to %s\n", res.Pages, res.Files, res.Dir)
	return err
}
