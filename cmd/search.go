package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rubiojr/reposearch/pkg/log"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/render"
	"github.com/rubiojr/reposearch/pkg/search"
	"github.com/urfave/cli/v3"
)

var logger = log.ForService("cmd")

// SearchCommand creates the search command
func SearchCommand() *cli.Command {
	flags := append(formFlags(),
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort by default, stars or forks",
			Value: string(search.SortDefault),
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Sort order: desc or asc",
			Value: string(search.OrderDesc),
		},
		&cli.IntFlag{
			Name:  "page",
			Usage: "Result page (1-based)",
			Value: 1,
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record this search in the history",
		},
		&cli.BoolFlag{
			Name:  "refresh",
			Usage: "Ignore cached results",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print the raw results as JSON",
		},
	)

	return &cli.Command{
		Name:  "search",
		Usage: "Search GitHub repositories",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			form, err := formFromFlags(c)
			if err != nil {
				return err
			}
			sort, err := search.ParseSort(c.String("sort"))
			if err != nil {
				return err
			}
			order, err := search.ParseOrder(c.String("order"))
			if err != nil {
				return err
			}
			opts := searchOptions{
				sort:      sort,
				order:     order,
				page:      c.Int("page"),
				noHistory: c.Bool("no-history"),
				refresh:   c.Bool("refresh"),
				json:      c.Bool("json"),
			}
			return runSearch(ctx, c, form, opts)
		},
	}
}

type searchOptions struct {
	sort      search.Sort
	order     search.Order
	page      int
	noHistory bool
	refresh   bool
	json      bool
}

// runSearch validates the form, queries the API, prints the page and
// records the search.
func runSearch(ctx context.Context, c *cli.Command, form query.Form, opts searchOptions) error {
	if opts.page < 1 {
		return fmt.Errorf("--page must be at least 1")
	}
	if err := query.Validate(form); err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	client, err := newSearchClient(cfg)
	if err != nil {
		return fmt.Errorf("creating search client: %w", err)
	}

	q := builderFor(cfg).Build(form)
	logger.Debugf("query: %s", q)

	req := search.Request{Query: q, Sort: opts.sort, Order: opts.order, Page: opts.page}
	var results *search.Results
	if opts.refresh {
		results, err = client.Refresh(ctx, req)
	} else {
		results, err = client.Search(ctx, req)
	}
	if err != nil {
		return err
	}

	if err := printResults(c.Root().Writer, q, results, opts, client.PerPage()); err != nil {
		return err
	}

	if opts.noHistory || !cfg.HistoryEnabled() {
		return nil
	}
	store, closeFn, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	item, err := store.Add(q, form, *results)
	if err != nil {
		return err
	}
	logger.Debugf("recorded search %s", item.ID)
	return nil
}

func printResults(w io.Writer, q string, results *search.Results, opts searchOptions, perPage int) error {
	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Fprintf(w, "Query: %s\n\n", q)
	render.Results(w, results, opts.page, perPage)
	return nil
}
