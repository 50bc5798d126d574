package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/coursesite/internal/config"
	"git.home.luguber.info/inful/coursesite/internal/sample"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force     bool `short:"f" help:"Overwrite an existing configuration file"`
	NoContent bool `name:"no-content" help:"Only write the configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	if err := config.Init(root.Config, i.Force); err != nil {
		return err
	}
	logger := g.logger()
	logger.Info("Configuration file created", "path", root.Config)
	if i.NoContent {
		return nil
	}

	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	base := filepath.Dir(root.Config)
	contentDir := resolve(base, cfg.Content.Dir)
	files, err := sample.WriteTo(contentDir, i.Force)
	if err != nil {
		return err
	}
	messagesDir := resolve(base, cfg.I18n.MessagesDir)
	catalogs, err := sample.WriteMessagesTo(messagesDir, i.Force)
	if err != nil {
		return err
	}
	logger.Info("Sample content written",
		"content", contentDir, "files", files,
		"messages", messagesDir, "catalogs", catalogs)
	_, err = fmt.Fprintf(g.out(), "Created %s with sample content in %s\n", root.Config, contentDir)
	return err
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
