// Package commands implements the coursesite CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/coursesite/internal/config"
)

const (
	defaultConfigFile = "coursesite.yaml"
	logLevelEnv       = "COURSESITE_LOG_LEVEL"
)

// Global carries state shared by every command.
type Global struct {
	Logger *slog.Logger
	Out    io.Writer
}

// CLI definition and global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"coursesite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Serve         ServeCmd         `cmd:"" help:"Serve the site"`
	Build         BuildCmd         `cmd:"" help:"Export the site as static files"`
	Check         CheckCmd         `cmd:"" help:"Check every MDX document and internal link"`
	Routes        RoutesCmd        `cmd:"" help:"List every page route"`
	Discriminator DiscriminatorCmd `cmd:"" help:"Compute an Anchor discriminator"`
	Preview       PreviewCmd       `cmd:"" help:"Render a lesson in the terminal"`
	Init          InitCmd          `cmd:"" help:"Write an example configuration and sample content"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	if env := os.Getenv(logLevelEnv); env != "" {
		if err := level.UnmarshalText([]byte(env)); err != nil {
			return fmt.Errorf("invalid %s %q: %w", logLevelEnv, env, err)
		}
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func (g *Global) out() io.Writer {
	if g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

func (g *Global) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}

// loadConfig reads the configuration file. The default path may be absent,
// in which case built-in defaults apply.
func loadConfig(root *CLI) (*config.Config, error) {
	if root.Config == defaultConfigFile {
		if _, err := os.Stat(root.Config); errors.Is(err, fs.ErrNotExist) {
			slog.Debug("No configuration file, using defaults", "file", root.Config)
			return config.Default(), nil
		}
	}
	return config.Load(root.Config)
}
