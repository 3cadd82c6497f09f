package cmd

import (
	"fmt"
	"strings"

	"github.com/rubiojr/reposearch/pkg/config"
	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/search"
	"github.com/rubiojr/reposearch/pkg/storage"
	"github.com/urfave/cli/v3"
)

// formFlags are shared by the search and query build commands.
func formFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "term",
			Usage: "Search term (at least 3 characters)",
		},
		&cli.StringSliceFlag{
			Name:  "in",
			Usage: "Fields the term is matched against: name, description, readme",
			Value: []string{query.InName},
		},
		&cli.StringFlag{
			Name:  "user",
			Usage: "Only repositories owned by this user",
		},
		&cli.StringFlag{
			Name:  "org",
			Usage: "Only repositories owned by this organization",
		},
		&cli.StringSliceFlag{
			Name:  "language",
			Usage: "Primary language (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "topic",
			Usage: "Topic (repeatable)",
		},
		&cli.StringFlag{
			Name:  "stars",
			Usage: "Stars filter, e.g. gt:10, lt:5, equal:3 or between:10..100",
		},
		&cli.StringFlag{
			Name:  "size",
			Usage: "Size filter in KB, same notation as --stars",
		},
		&cli.StringFlag{
			Name:  "created",
			Usage: "Creation date filter, e.g. onOrAfter:2024-01-01 or between:2023-01-01..2023-12-31",
		},
	}
}

// formFromFlags assembles a search form from the form flags.
func formFromFlags(c *cli.Command) (query.Form, error) {
	form := query.Form{
		SearchTerm: strings.TrimSpace(c.String("term")),
		SearchIn:   splitList(c.StringSlice("in")),
		AdvancedFilters: query.AdvancedFilters{
			UserName:     strings.TrimSpace(c.String("user")),
			Organization: strings.TrimSpace(c.String("org")),
			Languages:    splitList(c.StringSlice("language")),
			Topics:       splitList(c.StringSlice("topic")),
		},
	}

	var err error
	if s := c.String("stars"); s != "" {
		if form.AdvancedFilters.Stars, err = query.ParseNumericFilter(s); err != nil {
			return form, fmt.Errorf("--stars: %w", err)
		}
	}
	if s := c.String("size"); s != "" {
		if form.AdvancedFilters.Size, err = query.ParseNumericFilter(s); err != nil {
			return form, fmt.Errorf("--size: %w", err)
		}
	}
	if s := c.String("created"); s != "" {
		if form.AdvancedFilters.Created, err = query.ParseDateFilter(s); err != nil {
			return form, fmt.Errorf("--created: %w", err)
		}
	}
	return form, nil
}

// splitList flattens repeated and comma separated values.
func splitList(values []string) []string {
	out := []string{}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func builderFor(cfg *config.Config) query.Builder {
	return query.Builder{Options: query.EncodeOptions{StrictDateBounds: cfg.Query.StrictDateBounds}}
}

func newSearchClient(cfg *config.Config) (*search.Client, error) {
	return search.NewClient(search.Options{
		Token:      cfg.GitHub.Token,
		BaseURL:    cfg.GitHub.APIURL,
		PerPage:    cfg.GitHub.PerPage,
		Retries:    cfg.RetryCount(),
		RetryDelay: cfg.GitHub.RetryDelay.Duration,
		CacheTTL:   cfg.CacheTTL(),
	})
}

// openHistory opens the history database. The returned close function
// releases the storage.
func openHistory(cfg *config.Config, opts ...history.Option) (*history.Store, func() error, error) {
	records, err := storage.Open(cfg.DatabasePath())
	if err != nil {
		return nil, nil, fmt.Errorf("opening history database: %w", err)
	}

	store, err := history.New(history.NewRecordPersister(records, cfg.History.Record), opts...)
	if err != nil {
		records.Close()
		return nil, nil, err
	}
	return store, records.Close, nil
}

func loadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// withHistory runs fn with the history store opened from the config.
func withHistory(c *cli.Command, fn func(cfg *config.Config, store *history.Store) error) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, closeFn, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeFn(); err != nil {
			logger.Warnf("failed to close history database: %v", err)
		}
	}()
	return fn(cfg, store)
}
