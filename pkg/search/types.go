package search

import (
	"context"
	"fmt"

	"github.com/google/go-github/v73/github"
)

// Sort is the result ordering key.
type Sort string

const (
	SortDefault Sort = "default"
	SortStars   Sort = "stars"
	SortForks   Sort = "forks"
)

// Order is the sort direction.
type Order string

const (
	OrderDesc Order = "desc"
	OrderAsc  Order = "asc"
)

// ParseSort accepts "", "default", "stars" and "forks".
func ParseSort(s string) (Sort, error) {
	switch Sort(s) {
	case "", SortDefault:
		return SortDefault, nil
	case SortStars, SortForks:
		return Sort(s), nil
	}
	return "", fmt.Errorf("invalid sort %q: use default, stars or forks", s)
}

// ParseOrder accepts "", "desc" and "asc".
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderDesc:
		return OrderDesc, nil
	case OrderAsc:
		return OrderAsc, nil
	}
	return "", fmt.Errorf("invalid order %q: use desc or asc", s)
}

// Request describes one page of a repository search.
type Request struct {
	Query string
	Sort  Sort
	Order Order
	// Page is 1-based; values below 1 mean the first page.
	Page int
}

func (r Request) normalized() Request {
	if r.Sort == "" {
		r.Sort = SortDefault
	}
	if r.Order == "" {
		r.Order = OrderDesc
	}
	if r.Page < 1 {
		r.Page = 1
	}
	return r
}

// Results is one page of the search API answer.
type Results struct {
	TotalCount        int                  `json:"total_count"`
	IncompleteResults bool                 `json:"incomplete_results"`
	Items             []*github.Repository `json:"items"`
}

// Searcher runs repository searches.
type Searcher interface {
	Search(ctx context.Context, req Request) (*Results, error)
}

// TotalPages is the number of pages needed for totalCount results.
func TotalPages(totalCount, perPage int) int {
	if totalCount <= 0 || perPage <= 0 {
		return 0
	}
	return (totalCount + perPage - 1) / perPage
}
