package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed config.toml.sample
var configTemplate string

const (
	DefaultAPIURL     = "https://api.github.com/"
	DefaultPerPage    = 10
	DefaultRetries    = 1
	DefaultRetryDelay = time.Second
	DefaultCacheTTL   = 5 * time.Minute
	DefaultRecordName = "repo-search-history"
	DefaultAddr       = "127.0.0.1:8080"
	DatabaseFile      = "reposearch.db"
)

type Config struct {
	StorageDir string        `toml:"storage_dir"`
	GitHub     GitHubConfig  `toml:"github"`
	History    HistoryConfig `toml:"history"`
	Query      QueryConfig   `toml:"query"`
	Server     ServerConfig  `toml:"server"`
}

type GitHubConfig struct {
	Token   string `toml:"token"`
	APIURL  string `toml:"api_url"`
	PerPage int    `toml:"per_page"`
	// Retries is the number of automatic re-attempts after a failure.
	// A nil value means the default (1); 0 disables re-attempts.
	Retries    *int     `toml:"retries,omitempty"`
	RetryDelay Duration `toml:"retry_delay"`
	// CacheTTL of nil means the default; "0s" disables caching.
	CacheTTL *Duration `toml:"cache_ttl,omitempty"`
}

type HistoryConfig struct {
	Enabled *bool  `toml:"enabled,omitempty"`
	Record  string `toml:"record"`
}

type QueryConfig struct {
	StrictDateBounds bool `toml:"strict_date_bounds"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// HistoryEnabled reports whether successful searches are archived.
func (c *Config) HistoryEnabled() bool {
	return c.History.Enabled == nil || *c.History.Enabled
}

// RetryCount returns the configured number of re-attempts.
func (c *Config) RetryCount() int {
	if c.GitHub.Retries == nil {
		return DefaultRetries
	}
	return *c.GitHub.Retries
}

// CacheTTL returns the configured response cache lifetime.
func (c *Config) CacheTTL() time.Duration {
	if c.GitHub.CacheTTL == nil {
		return DefaultCacheTTL
	}
	return c.GitHub.CacheTTL.Duration
}

// DatabasePath is the SQLite file holding the search history.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.StorageDir, DatabaseFile)
}

func GetDefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefaultConfig()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() error {
	if c.StorageDir == "" {
		storageDir, err := GetDefaultStorageDir()
		if err != nil {
			return fmt.Errorf("getting default storage directory: %w", err)
		}
		c.StorageDir = storageDir
	}
	if c.GitHub.Token == "" {
		c.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if c.GitHub.APIURL == "" {
		c.GitHub.APIURL = DefaultAPIURL
	}
	if !strings.HasSuffix(c.GitHub.APIURL, "/") {
		c.GitHub.APIURL += "/"
	}
	if c.GitHub.PerPage <= 0 {
		c.GitHub.PerPage = DefaultPerPage
	}
	if c.GitHub.PerPage > 100 {
		return fmt.Errorf("github.per_page must be at most 100, got %d", c.GitHub.PerPage)
	}
	if c.GitHub.Retries != nil && *c.GitHub.Retries < 0 {
		return fmt.Errorf("github.retries must not be negative")
	}
	if c.GitHub.RetryDelay.Duration == 0 {
		c.GitHub.RetryDelay = Duration{DefaultRetryDelay}
	}
	if c.History.Record == "" {
		c.History.Record = DefaultRecordName
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	return nil
}

func (c *Config) SaveConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(configPath, data, 0600)
}

// SaveTemplateConfig writes the commented sample config with this config's
// storage directory filled in.
func (c *Config) SaveTemplateConfig(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	template := strings.Replace(configTemplate, "/home/user/.local/share/reposearch", c.StorageDir, 1)
	return os.WriteFile(configPath, []byte(template), 0600)
}

// GetDefaultStorageDir returns $XDG_DATA_HOME/reposearch, creating it.
func GetDefaultStorageDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	dir := filepath.Join(dataDir, "reposearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating storage directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetConfigDir returns $XDG_CONFIG_HOME/reposearch, creating it.
func GetConfigDir() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(configDir, "reposearch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}
