package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
)

// RoutesCmd implements the 'routes' command.
type RoutesCmd struct {
	Locale string `short:"l" help:"Only list routes for this locale"`
}

func (r *RoutesCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	a, err := newApp(context.Background(), cfg, g.logger(), appOptions{noCache: true})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	if r.Locale != "" && !a.router.IsSupported(r.Locale) {
		return derrors.ValidationError("unsupported locale").WithContext("locale", r.Locale).Build()
	}
	want := a.router.Canonical(r.Locale)

	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tLOCALE\tPATH")
	for _, route := range a.site.Routes() {
		if r.Locale != "" && route.Locale != want {
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", route.Kind, route.Locale, route.Path)
	}
	return tw.Flush()
}
