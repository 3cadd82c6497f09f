package api

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/search"
	"github.com/rubiojr/reposearch/pkg/version"
)

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	searcher, perPage, builder := s.current()

	req, err := requestFromValues(params)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	archive, err := boolParam(params, "archive", true)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}
	refresh, err := boolParam(params, "refresh", false)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid parameters", err.Error())
		return
	}

	var form query.Form
	if raw := strings.TrimSpace(params.Get("q")); raw != "" {
		req.Query = raw
		fq := query.Parse(raw)
		form = query.Form{SearchTerm: fq.SearchTerm, SearchIn: fq.SearchIn}
	} else {
		var ok bool
		if form, ok = s.readForm(w, params); !ok {
			return
		}
		req.Query = builder.Build(form)
	}

	var results *search.Results
	if rf, ok := searcher.(Refresher); ok && refresh {
		results, err = rf.Refresh(r.Context(), req)
	} else {
		results, err = searcher.Search(r.Context(), req)
	}
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	resp := SearchResponse{
		Query:      req.Query,
		Page:       max(req.Page, 1),
		PerPage:    perPage,
		TotalPages: search.TotalPages(results.TotalCount, perPage),
		Sort:       req.Sort,
		Order:      req.Order,
		Results:    results,
	}

	if archive && s.history != nil {
		item, err := s.history.Add(req.Query, form, *results)
		if err != nil {
			logger.Warnf("archiving search %q: %v", req.Query, err)
		} else {
			resp.HistoryID = item.ID
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) HandleBuildQuery(w http.ResponseWriter, r *http.Request) {
	_, _, builder := s.current()
	form, ok := s.readForm(w, r.URL.Query())
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, BuildQueryResponse{Query: builder.Build(form)})
}

func (s *Server) HandleParseQuery(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, query.Parse(r.URL.Query().Get("q")))
}

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
	}

	s.writeJSON(w, http.StatusOK, health)
}

// readForm parses and validates the form parameters, writing a 400 response
// when they are not acceptable.
func (s *Server) readForm(w http.ResponseWriter, params url.Values) (query.Form, bool) {
	form, err := formFromValues(params)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return form, false
	}
	if err := query.Validate(form); err != nil {
		resp := ErrorResponse{Error: "Invalid search form", Message: err.Error()}
		var verrs query.ValidationErrors
		if errors.As(err, &verrs) {
			resp.Fields = verrs
		}
		s.writeJSON(w, http.StatusBadRequest, resp)
		return form, false
	}
	return form, true
}

func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	if errors.Is(err, search.ErrEmptyQuery) {
		s.writeError(w, http.StatusBadRequest, "Missing query", err.Error())
		return
	}

	resp := ErrorResponse{Error: "Search failed", Message: err.Error()}
	var apiErr *search.APIError
	if errors.As(err, &apiErr) {
		resp.Status = apiErr.StatusCode
		if apiErr.Message != "" {
			resp.Message = err.Error() + ": " + apiErr.Message
		}
	}
	logger.Warnf("search failed: %v", err)
	s.writeJSON(w, http.StatusBadGateway, resp)
}
