package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-github/v73/github"
	"github.com/rubiojr/reposearch/pkg/history"
	"github.com/rubiojr/reposearch/pkg/query"
	"github.com/rubiojr/reposearch/pkg/realtime"
	"github.com/rubiojr/reposearch/pkg/search"
)

type fakeSearcher struct {
	mu        sync.Mutex
	requests  []search.Request
	refreshes int
	results   *search.Results
	err       error
}

func (f *fakeSearcher) Search(ctx context.Context, req search.Request) (*search.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func (f *fakeSearcher) Refresh(ctx context.Context, req search.Request) (*search.Results, error) {
	f.mu.Lock()
	f.refreshes++
	f.mu.Unlock()
	return f.Search(ctx, req)
}

func (f *fakeSearcher) last() search.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func sampleResults() *search.Results {
	return &search.Results{
		TotalCount: 21,
		Items: []*github.Repository{
			{ID: github.Ptr(int64(1)), FullName: github.Ptr("facebook/react")},
		},
	}
}

type testEnv struct {
	searcher *fakeSearcher
	store    *history.Store
	hub      *realtime.Hub
	ts       *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hub := realtime.NewHub(8)
	store, err := history.New(history.NewMemoryPersister(), history.WithObserver(hub.PublishHistory))
	if err != nil {
		t.Fatal(err)
	}
	searcher := &fakeSearcher{results: sampleResults()}

	srv := NewServer(Options{Searcher: searcher, PerPage: 10, History: store, Hub: hub})
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)
	ts := httptest.NewServer(CorsMiddleware(mux))
	t.Cleanup(ts.Close)

	return &testEnv{searcher: searcher, store: store, hub: hub, ts: ts}
}

func (e *testEnv) do(t *testing.T, method, path string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.ts.URL+path, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func TestSearchWithForm(t *testing.T) {
	env := newTestEnv(t)

	params := url.Values{}
	params.Set("term", "react")
	params.Add("in", "name,readme")
	params.Add("language", "ts")
	params.Set("stars_mode", "gt")
	params.Set("stars", "10")
	params.Set("created_mode", "onOrAfter")
	params.Set("created", "2024-01-01")
	params.Set("sort", "stars")
	params.Set("page", "2")

	resp := env.do(t, http.MethodGet, "/api/search?"+params.Encode())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[SearchResponse](t, resp)

	wantQuery := "react in:name,readme language:ts stars:>10 created:>=2024-01-01"
	if body.Query != wantQuery {
		t.Errorf("query = %q, want %q", body.Query, wantQuery)
	}
	req := env.searcher.last()
	if req.Query != wantQuery || req.Sort != search.SortStars || req.Order != search.OrderDesc || req.Page != 2 {
		t.Errorf("unexpected search request %+v", req)
	}
	if body.Page != 2 || body.PerPage != 10 || body.TotalPages != 3 {
		t.Errorf("unexpected paging %+v", body)
	}
	if body.Results == nil || body.Results.TotalCount != 21 {
		t.Errorf("unexpected results %+v", body.Results)
	}

	if body.HistoryID == "" {
		t.Fatal("expected search to be archived")
	}
	item, err := env.store.Get(body.HistoryID)
	if err != nil {
		t.Fatal(err)
	}
	if item.Query != wantQuery || item.SearchData.SearchTerm != "react" {
		t.Errorf("unexpected archived item %+v", item)
	}
	if item.SearchData.AdvancedFilters.Stars == nil || *item.SearchData.AdvancedFilters.Stars.Value != 10 {
		t.Errorf("stars filter not archived: %+v", item.SearchData.AdvancedFilters)
	}
}

func TestSearchRawQuery(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/search?archive=false&q="+url.QueryEscape("go cli in:name stars:>100"))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[SearchResponse](t, resp)
	if env.searcher.last().Query != "go cli in:name stars:>100" {
		t.Errorf("raw query not forwarded: %q", env.searcher.last().Query)
	}
	if body.HistoryID != "" || env.store.Len() != 0 {
		t.Error("archive=false must not record history")
	}
	if body.Sort != search.SortDefault {
		t.Errorf("sort = %q", body.Sort)
	}
}

func TestSearchRefresh(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/api/search?refresh=true&q=react")
	if env.searcher.refreshes != 1 {
		t.Errorf("expected a refresh, got %d", env.searcher.refreshes)
	}
}

func TestSearchValidation(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/search?term=go")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[ErrorResponse](t, resp)
	fields := map[string]bool{}
	for _, f := range body.Fields {
		fields[f.Field] = true
	}
	if !fields["searchTerm"] || !fields["searchIn"] {
		t.Errorf("expected searchTerm and searchIn errors, got %+v", body.Fields)
	}
	if len(env.searcher.requests) != 0 {
		t.Error("invalid forms must not reach the searcher")
	}
}

func TestSearchBadParameters(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{
		"/api/search?q=react&sort=updated",
		"/api/search?q=react&order=up",
		"/api/search?q=react&page=0",
		"/api/search?q=react&archive=maybe",
		"/api/search?term=react&in=name&stars_mode=gt&stars=ten",
		"/api/search?term=react&in=name&created_mode=after&created=yesterday",
	} {
		if resp := env.do(t, http.MethodGet, path); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestSearchUpstreamError(t *testing.T) {
	env := newTestEnv(t)
	env.searcher.err = &search.APIError{StatusCode: 500}

	resp := env.do(t, http.MethodGet, "/api/search?q=react")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	body := decode[ErrorResponse](t, resp)
	if body.Status != 500 || body.Message != "GitHub API error: 500" {
		t.Errorf("unexpected error body %+v", body)
	}
	if env.store.Len() != 0 {
		t.Error("failed searches must not be archived")
	}
}

func TestBuildAndParseQuery(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/query/build?term=react&in=name&user=facebook&size_mode=between&size_min=1&size_max=100")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	built := decode[BuildQueryResponse](t, resp)
	if built.Query != "react in:name user:facebook size:1..100" {
		t.Errorf("query = %q", built.Query)
	}

	resp = env.do(t, http.MethodGet, "/api/query/parse?q="+url.QueryEscape(built.Query))
	fq := decode[query.FormattedQuery](t, resp)
	if fq.SearchTerm != "react" || len(fq.SearchIn) != 1 || len(fq.Filters) != 2 {
		t.Errorf("unexpected parse result %+v", fq)
	}
}

func TestParseEmptyQuery(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/query/parse")
	fq := decode[query.FormattedQuery](t, resp)
	if fq.RawQuery != "" || fq.Filters == nil || len(fq.Filters) != 0 {
		t.Errorf("unexpected parse result %+v", fq)
	}
}

func TestHistoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	first, _ := env.store.Add("react in:name", query.Form{SearchTerm: "react"}, search.Results{})
	second, _ := env.store.Add("vue in:readme", query.Form{SearchTerm: "vue"}, search.Results{})

	list := decode[HistoryResponse](t, env.do(t, http.MethodGet, "/api/history"))
	if list.Count != 2 || list.Searches[0].Item.ID != second.ID {
		t.Fatalf("unexpected history %+v", list)
	}
	if list.Searches[0].Formatted.SearchTerm != "vue" {
		t.Errorf("expected formatted query, got %+v", list.Searches[0].Formatted)
	}

	entry := decode[HistoryEntry](t, env.do(t, http.MethodGet, "/api/history/"+first.ID))
	if entry.Item.Query != "react in:name" {
		t.Errorf("unexpected entry %+v", entry)
	}

	if resp := env.do(t, http.MethodGet, "/api/history/unknown"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get unknown: status = %d", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodDelete, "/api/history/unknown"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("delete unknown: status = %d", resp.StatusCode)
	}
	if resp := env.do(t, http.MethodDelete, "/api/history/"+first.ID); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status = %d", resp.StatusCode)
	}
	if env.store.Len() != 1 {
		t.Errorf("expected 1 item left, got %d", env.store.Len())
	}

	if resp := env.do(t, http.MethodDelete, "/api/history"); resp.StatusCode != http.StatusNoContent {
		t.Errorf("clear: status = %d", resp.StatusCode)
	}
	list = decode[HistoryResponse](t, env.do(t, http.MethodGet, "/api/history"))
	if list.Count != 0 || list.Searches == nil {
		t.Errorf("expected empty history, got %+v", list)
	}
}

func TestHistoryDisabled(t *testing.T) {
	srv := NewServer(Options{Searcher: &fakeSearcher{results: sampleResults()}, PerPage: 10})
	mux := http.NewServeMux()
	srv.RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=react", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("search without history: status = %d", rec.Code)
	}
}

func TestHealthAndCors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health")
	health := decode[HealthResponse](t, resp)
	if health.Status != "ok" || health.Version == "" {
		t.Errorf("unexpected health %+v", health)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}

	resp = env.do(t, http.MethodOptions, "/api/search")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "DELETE") {
		t.Error("DELETE should be allowed")
	}
}
