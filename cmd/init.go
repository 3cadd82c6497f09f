package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rubiojr/reposearch/pkg/config"
	"github.com/urfave/cli/v3"
)

// InitCommand creates the init command
func InitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize configuration",
		Action: func(ctx context.Context, c *cli.Command) error {
			return initConfig(c.Root().Writer, c.String("config"))
		},
	}
}

// initConfig initializes the configuration file
func initConfig(w io.Writer, configPath string) error {
	cfg, err := config.GetDefaultConfig()
	if err != nil {
		return err
	}
	if err := cfg.SaveTemplateConfig(configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(w, "Configuration initialized at %s\n", configPath)
	return nil
}
