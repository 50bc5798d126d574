package commands

import (
	"fmt"

	"git.home.luguber.info/inful/coursesite/internal/components/discriminator"
)

// DiscriminatorCmd implements the 'discriminator' command.
type DiscriminatorCmd struct {
	Kind   string `arg:"" help:"instruction, account or event"`
	Name   string `arg:"" help:"Instruction, account or event name"`
	Format string `short:"f" help:"Output format" enum:"hex,rust,bytes" default:"hex"`
}

func (d *DiscriminatorCmd) Run(g *Global, _ *CLI) error {
	kind, err := discriminator.ParseKind(d.Kind)
	if err != nil {
		return err
	}
	preimage, err := discriminator.Preimage(kind, d.Name)
	if err != nil {
		return err
	}
	disc, err := discriminator.Compute(kind, d.Name)
	if err != nil {
		return err
	}
	formatted, err := discriminator.Format(disc, d.Format)
	if err != nil {
		return err
	}
	g.logger().Debug("Computed discriminator", "preimage", preimage)
	_, err = fmt.Fprintln(g.out(), formatted)
	return err
}
