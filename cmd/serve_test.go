package cmd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rubiojr/reposearch/pkg/api"
	"github.com/rubiojr/reposearch/pkg/config"
)

func countingAPI(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"total_count":0,"incomplete_results":false,"items":[]}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestReloadSearcher(t *testing.T) {
	first, firstHits := countingAPI(t)
	second, secondHits := countingAPI(t)

	configPath := writeConfig(t, first.URL+"/")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		t.Fatal(err)
	}
	client, err := newSearchClient(cfg)
	if err != nil {
		t.Fatal(err)
	}

	server := api.NewServer(api.Options{Searcher: client, PerPage: client.PerPage(), Builder: builderFor(cfg)})
	mux := http.NewServeMux()
	server.RegisterRoutes(mux)

	search := func() {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/search?q=react&archive=false", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("search status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	search()
	if firstHits.Load() != 1 {
		t.Fatalf("expected the first API to be used, hits=%d", firstHits.Load())
	}

	cfg.GitHub.APIURL = second.URL + "/"
	cfg.GitHub.PerPage = 25
	if err := cfg.SaveConfig(configPath); err != nil {
		t.Fatal(err)
	}
	if err := reloadSearcher(configPath, server); err != nil {
		t.Fatalf("reloadSearcher: %v", err)
	}

	search()
	if secondHits.Load() != 1 || firstHits.Load() != 1 {
		t.Errorf("expected the reloaded API to be used, first=%d second=%d", firstHits.Load(), secondHits.Load())
	}
}

func TestReloadSearcherKeepsClientOnBadConfig(t *testing.T) {
	configPath := writeConfig(t, "http://127.0.0.1:1/")
	if err := os.WriteFile(configPath, []byte("[github\nper_page = "), 0600); err != nil {
		t.Fatal(err)
	}
	if err := reloadSearcher(configPath, api.NewServer(api.Options{})); err == nil {
		t.Error("expected error for malformed config")
	}
}

func TestServeStopsOnContextCancel(t *testing.T) {
	srv, _ := countingAPI(t)
	configPath := writeConfig(t, srv.URL+"/")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- serve(ctx, configPath, "127.0.0.1:0")
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("serve returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not stop")
	}

	if _, err := os.Stat(filepath.Join(filepath.Dir(configPath), "data", config.DatabaseFile)); err != nil {
		t.Errorf("expected history database to be created: %v", err)
	}
}
