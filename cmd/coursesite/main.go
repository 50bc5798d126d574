// Command coursesite serves and exports the multilingual course site.
package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/coursesite/cmd/coursesite/commands"
	derrors "git.home.luguber.info/inful/coursesite/internal/foundation/errors"
	"git.home.luguber.info/inful/coursesite/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("coursesite"),
		kong.Description("Multilingual MDX course site server and static exporter"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)
	err := parser.Run(&commands.Global{Logger: slog.Default(), Out: os.Stdout}, cli)
	derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
