package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/query"
)

func (s *Server) historyEnabled(w http.ResponseWriter) bool {
	if s.history == nil {
		s.writeError(w, http.StatusServiceUnavailable, "History disabled", "search history is disabled in the configuration")
		return false
	}
	return true
}

func (s *Server) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	if !s.historyEnabled(w) {
		return
	}

	items := s.history.List()
	entries := make([]HistoryEntry, len(items))
	for i, it := range items {
		entries[i] = HistoryEntry{Item: it, Formatted: query.Parse(it.Query)}
	}

	s.writeJSON(w, http.StatusOK, HistoryResponse{Searches: entries, Count: len(entries)})
}

func (s *Server) HandleGetHistoryItem(w http.ResponseWriter, r *http.Request) {
	if !s.historyEnabled(w) {
		return
	}

	item, err := s.history.Get(r.PathValue("id"))
	if errors.Is(err, history.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Search not found", err.Error())
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to read history", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, HistoryEntry{Item: item, Formatted: query.Parse(item.Query)})
}

func (s *Server) HandleDeleteHistoryItem(w http.ResponseWriter, r *http.Request) {
	if !s.historyEnabled(w) {
		return
	}

	id := r.PathValue("id")
	removed, err := s.history.Remove(id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to remove search", err.Error())
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "Search not found", fmt.Sprintf("Search '%s' does not exist", id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleClearHistory(w http.ResponseWriter, r *http.Request) {
	if !s.historyEnabled(w) {
		return
	}

	if err := s.history.Clear(); err != nil {
		s.writeError(w, http.StatusInternalServerError, "Failed to clear history", err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
