package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rubiojr/reposearch/pkg/config"
	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/render"
	"github.com/urfave/cli/v3"
)

// HistoryCommand creates the history command with subcommands
func HistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Manage the search history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List past searches, most recent first",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the history as JSON",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withHistory(c, func(_ *config.Config, store *history.Store) error {
						w := c.Root().Writer
						if c.Bool("json") {
							enc := json.NewEncoder(w)
							enc.SetIndent("", "  ")
							return enc.Encode(store.List())
						}
						render.History(w, store.List(), time.Now())
						return nil
					})
				},
			},
			{
				Name:      "show",
				Usage:     "Show a past search and its results",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireID(c)
					if err != nil {
						return err
					}
					return withHistory(c, func(cfg *config.Config, store *history.Store) error {
						item, err := store.Get(id)
						if err != nil {
							return err
						}
						w := c.Root().Writer
						render.FormattedQuery(w, query.Parse(item.Query))
						fmt.Fprintf(w, "Searched %s\n\n", render.FormatTime(item.Time(), time.Now()))
						render.Results(w, &item.Results, 1, cfg.GitHub.PerPage)
						return nil
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "Remove a past search",
				ArgsUsage: "<id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := requireID(c)
					if err != nil {
						return err
					}
					return withHistory(c, func(_ *config.Config, store *history.Store) error {
						removed, err := store.Remove(id)
						if err != nil {
							return err
						}
						if !removed {
							return fmt.Errorf("%w: %s", history.ErrNotFound, id)
						}
						fmt.Fprintf(c.Root().Writer, "Removed %s\n", id)
						return nil
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Remove every past search",
				Action: func(ctx context.Context, c *cli.Command) error {
					return withHistory(c, func(_ *config.Config, store *history.Store) error {
						n := store.Len()
						if err := store.Clear(); err != nil {
							return err
						}
						fmt.Fprintf(c.Root().Writer, "Removed %d searches\n", n)
						return nil
					})
				},
			},
		},
	}
}

func requireID(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", errors.New("expected exactly one history id")
	}
	return c.Args().First(), nil
}
