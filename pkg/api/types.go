package api

import (
	"time"

	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/search"
)

type ErrorResponse struct {
	Error   string             `json:"error"`
	Message string             `json:"message"`
	Status  int                `json:"status,omitempty"`
	Fields  []query.FieldError `json:"fields,omitempty"`
}

type SearchResponse struct {
	Query      string          `json:"query"`
	Page       int             `json:"page"`
	PerPage    int             `json:"per_page"`
	TotalPages int             `json:"total_pages"`
	Sort       search.Sort     `json:"sort"`
	Order      search.Order    `json:"order"`
	Results    *search.Results `json:"results"`
	HistoryID  string          `json:"history_id,omitempty"`
}

type BuildQueryResponse struct {
	Query string `json:"query"`
}

type HistoryEntry struct {
	Item      history.Item         `json:"item"`
	Formatted query.FormattedQuery `json:"formatted"`
}

type HistoryResponse struct {
	Searches []HistoryEntry `json:"searches"`
	Count    int            `json:"count"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}
