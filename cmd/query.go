package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/render"
	"github.com/urfave/cli/v3"
)

// QueryCommand creates the query command with build and parse subcommands
func QueryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Build or inspect search query strings",
		Commands: []*cli.Command{
			{
				Name:  "build",
				Usage: "Print the query string for a search form",
				Flags: append(formFlags(), &cli.BoolFlag{
					Name:  "no-validate",
					Usage: "Build the query even when the form is incomplete",
				}),
				Action: func(ctx context.Context, c *cli.Command) error {
					form, err := formFromFlags(c)
					if err != nil {
						return err
					}
					if !c.Bool("no-validate") {
						if err := query.Validate(form); err != nil {
							return err
						}
					}
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					fmt.Fprintln(c.Root().Writer, builderFor(cfg).Build(form))
					return nil
				},
			},
			{
				Name:      "parse",
				Usage:     "Break a query string into term, search-in fields and filters",
				ArgsUsage: "<query>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the parsed query as JSON",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					raw := strings.Join(c.Args().Slice(), " ")
					fq := query.Parse(raw)
					w := c.Root().Writer
					if c.Bool("json") {
						return json.NewEncoder(w).Encode(fq)
					}
					render.FormattedQuery(w, fq)
					return nil
				},
			},
		},
	}
}
