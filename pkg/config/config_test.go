package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataDir)
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.StorageDir != filepath.Join(dataDir, "reposearch") {
		t.Errorf("unexpected storage dir %q", cfg.StorageDir)
	}
	if cfg.GitHub.APIURL != DefaultAPIURL {
		t.Errorf("unexpected api url %q", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.PerPage != DefaultPerPage {
		t.Errorf("unexpected per page %d", cfg.GitHub.PerPage)
	}
	if cfg.RetryCount() != 1 {
		t.Errorf("expected 1 retry, got %d", cfg.RetryCount())
	}
	if cfg.CacheTTL() != 5*time.Minute {
		t.Errorf("unexpected cache ttl %v", cfg.CacheTTL())
	}
	if !cfg.HistoryEnabled() {
		t.Error("history should be enabled by default")
	}
	if cfg.History.Record != "repo-search-history" {
		t.Errorf("unexpected record name %q", cfg.History.Record)
	}
	if cfg.DatabasePath() != filepath.Join(cfg.StorageDir, "reposearch.db") {
		t.Errorf("unexpected database path %q", cfg.DatabasePath())
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "from-env")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
storage_dir = "` + filepath.ToSlash(dir) + `"

[github]
api_url = "http://localhost:9999/api/v3"
per_page = 30
retries = 0
cache_ttl = "0s"

[history]
enabled = false

[query]
strict_date_bounds = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.GitHub.Token != "from-env" {
		t.Errorf("expected token from environment, got %q", cfg.GitHub.Token)
	}
	if cfg.GitHub.APIURL != "http://localhost:9999/api/v3/" {
		t.Errorf("expected trailing slash, got %q", cfg.GitHub.APIURL)
	}
	if cfg.GitHub.PerPage != 30 {
		t.Errorf("unexpected per page %d", cfg.GitHub.PerPage)
	}
	if cfg.RetryCount() != 0 {
		t.Errorf("expected retries disabled, got %d", cfg.RetryCount())
	}
	if cfg.CacheTTL() != 0 {
		t.Errorf("expected cache disabled, got %v", cfg.CacheTTL())
	}
	if cfg.HistoryEnabled() {
		t.Error("expected history disabled")
	}
	if !cfg.Query.StrictDateBounds {
		t.Error("expected strict date bounds")
	}
	if cfg.GitHub.RetryDelay.Duration != time.Second {
		t.Errorf("unexpected retry delay %v", cfg.GitHub.RetryDelay)
	}
}

func TestLoadConfigRejectsLargePages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := "storage_dir = \"" + filepath.ToSlash(dir) + "\"\n[github]\nper_page = 500\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for per_page above 100")
	}
}

func TestSaveTemplateConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	cfg, err := GetDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "nested", "config.toml")
	if err := cfg.SaveTemplateConfig(path); err != nil {
		t.Fatalf("SaveTemplateConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.StorageDir != cfg.StorageDir {
		t.Errorf("storage dir: got %q, want %q", loaded.StorageDir, cfg.StorageDir)
	}
	if loaded.Server.Addr != DefaultAddr {
		t.Errorf("unexpected addr %q", loaded.Server.Addr)
	}
}
