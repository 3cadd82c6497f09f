package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/query/build", s.HandleBuildQuery)
	mux.HandleFunc("GET /api/query/parse", s.HandleParseQuery)
	mux.HandleFunc("GET /api/history", s.HandleListHistory)
	mux.HandleFunc("DELETE /api/history", s.HandleClearHistory)
	mux.HandleFunc("GET /api/history/events", s.HandleHistoryEvents)
	mux.HandleFunc("GET /api/history/{id}", s.HandleGetHistoryItem)
	mux.HandleFunc("DELETE /api/history/{id}", s.HandleDeleteHistoryItem)
	mux.HandleFunc("GET /health", s.HandleHealth)
}
