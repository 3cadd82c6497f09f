package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v73/github"
	"github.com/rubiojr/reposearch/pkg/log"
	"golang.org/x/oauth2"
)

// Options configures a Client. Zero values select the defaults.
type Options struct {
	// Token is sent as a bearer token when set.
	Token string
	// BaseURL of the REST API, e.g. https://api.github.com/.
	BaseURL string
	// PerPage is the fixed page size (default 10).
	PerPage int
	// Retries is the number of re-attempts after a failed request.
	Retries int
	// RetryDelay is the pause before a re-attempt.
	RetryDelay time.Duration
	// CacheTTL keeps successful pages for this long; 0 disables caching.
	CacheTTL time.Duration
	// HTTPClient is the transport used underneath the token source.
	HTTPClient *http.Client
}

const defaultPerPage = 10

// Client searches repositories through the GitHub REST API.
type Client struct {
	gh         *github.Client
	perPage    int
	retries    int
	retryDelay time.Duration
	textMatch  bool
	cache      *responseCache
	logger     *log.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if opts.Token != "" {
		ctx := context.Background()
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	gh := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL %q: %w", opts.BaseURL, err)
		}
		gh.BaseURL = u
	}

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	c := &Client{
		gh:         gh,
		perPage:    perPage,
		retries:    max(opts.Retries, 0),
		retryDelay: opts.RetryDelay,
		textMatch:  opts.Token != "",
		logger:     log.ForService("search"),
	}
	if opts.CacheTTL > 0 {
		c.cache = newResponseCache(opts.CacheTTL, time.Now)
	}
	return c, nil
}

// PerPage returns the fixed page size.
func (c *Client) PerPage() int {
	return c.perPage
}

// Search returns one page of results, from the cache when still fresh.
func (c *Client) Search(ctx context.Context, req Request) (*Results, error) {
	req = req.normalized()
	if c.cache != nil {
		if res, ok := c.cache.get(req); ok {
			c.logger.Debugf("cache hit for %q page %d", req.Query, req.Page)
			return res, nil
		}
	}
	return c.Refresh(ctx, req)
}

// Refresh re-issues the request against the API regardless of the cache and
// stores the fresh answer.
func (c *Client) Refresh(ctx context.Context, req Request) (*Results, error) {
	req = req.normalized()
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	for attempt := 0; ; attempt++ {
		res, err := c.fetch(ctx, req)
		if err == nil {
			if c.cache != nil {
				c.cache.put(req, res)
			}
			return res, nil
		}
		if attempt >= c.retries || ctx.Err() != nil {
			return nil, err
		}

		c.logger.Warnf("search failed, retrying in %v (attempt %d/%d): %v", c.retryDelay, attempt+1, c.retries, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *Client) fetch(ctx context.Context, req Request) (*Results, error) {
	opts := &github.SearchOptions{
		Order:     string(req.Order),
		TextMatch: c.textMatch,
		ListOptions: github.ListOptions{
			Page:    req.Page,
			PerPage: c.perPage,
		},
	}
	if req.Sort != SortDefault {
		opts.Sort = string(req.Sort)
	}

	c.logger.Debugf("GET search/repositories q=%q sort=%s order=%s page=%d", req.Query, req.Sort, req.Order, req.Page)
	result, _, err := c.gh.Search.Repositories(ctx, req.Query, opts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, asAPIError(err)
	}

	items := result.Repositories
	if items == nil {
		items = []*github.Repository{}
	}
	return &Results{
		TotalCount:        result.GetTotal(),
		IncompleteResults: result.GetIncompleteResults(),
		Items:             items,
	}, nil
}
