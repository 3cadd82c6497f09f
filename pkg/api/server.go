package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/log"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/realtime"
	"github.com/rubiojr/reposearch/pkg/search"
)

var logger = log.ForService("api")

// Refresher is implemented by searchers that can bypass their cache.
type Refresher interface {
	Refresh(ctx context.Context, req search.Request) (*search.Results, error)
}

// Options wires the server dependencies. History and Hub are optional.
type Options struct {
	Searcher search.Searcher
	PerPage  int
	Builder  query.Builder
	History  *history.Store
	Hub      *realtime.Hub
}

type Server struct {
	mu       sync.RWMutex
	searcher search.Searcher
	perPage  int
	builder  query.Builder
	history  *history.Store
	hub      *realtime.Hub
}

func NewServer(opts Options) *Server {
	return &Server{
		searcher: opts.Searcher,
		perPage:  opts.PerPage,
		builder:  opts.Builder,
		history:  opts.History,
		hub:      opts.Hub,
	}
}

// SetSearcher swaps the searcher, e.g. after a configuration reload.
func (s *Server) SetSearcher(searcher search.Searcher, perPage int, builder query.Builder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searcher = searcher
	s.perPage = perPage
	s.builder = builder
}

func (s *Server) current() (search.Searcher, int, query.Builder) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searcher, s.perPage, s.builder
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, error, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   error,
		Message: message,
	})
}

func CorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
