// Package config manages application configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingRequired indicates a required credential or identifier is unset.
var ErrMissingRequired = errors.New("config: missing required setting")

// Config holds all settings for an engagement sync run.
type Config struct {
	// StoreAPIKey is the tabular store bearer token (required)
	StoreAPIKey string `yaml:"store_api_key"`
	// StoreBaseID identifies the store base (required)
	StoreBaseID string `yaml:"store_base_id"`
	// StoreTable is the table name or ID (required)
	StoreTable string `yaml:"store_table"`
	// StoreView optionally restricts the sync to one named view
	StoreView string `yaml:"store_view"`
	// StoreURL is the store API root
	StoreURL string `yaml:"store_url"`

	// StatsAPIKey is the YouTube Data API key (required)
	StatsAPIKey string `yaml:"stats_api_key"`
	// StatsURL overrides the YouTube Data API root (empty = library default)
	StatsURL string `yaml:"stats_url"`

	// Field names in the table
	URLField      string `yaml:"url_field"`
	ViewsField    string `yaml:"views_field"`
	LikesField    string `yaml:"likes_field"`
	CommentsField string `yaml:"comments_field"`

	// PageSize is the listing page size (1-100)
	PageSize int `yaml:"page_size"`
	// BatchSize is the number of records per update request (1-10)
	BatchSize int `yaml:"batch_size"`
	// BatchPause is the wait between update requests
	BatchPause time.Duration `yaml:"batch_pause"`

	// HTTPTimeout bounds each HTTP request
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	// StoreRPS caps requests per second to the store (0 = unlimited)
	StoreRPS float64 `yaml:"store_rps"`

	// LogLevel is a logrus level name
	LogLevel string `yaml:"log_level"`
	// LogFormat is "text" or "json"
	LogFormat string `yaml:"log_format"`
}

// DefaultConfig returns configuration with safe defaults.
// Credentials and identifiers have no defaults.
func DefaultConfig() *Config {
	return &Config{
		StoreURL:      "https://api.airtable.com",
		URLField:      "Asset Link",
		ViewsField:    "Views",
		LikesField:    "Likes",
		CommentsField: "Comments",
		PageSize:      100,
		BatchSize:     10,
		BatchPause:    250 * time.Millisecond,
		HTTPTimeout:   30 * time.Second,
		StoreRPS:      5,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, then validates it.
// Priority: env vars > config file > defaults. A .env file in the working
// directory is loaded into the environment first without overriding
// variables that are already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	if err := cfg.loadFromFile(); err != nil {
		// Config file is optional
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// configPaths lists candidate YAML files in search order.
func configPaths() []string {
	if p := os.Getenv("ENGAGESYNC_CONFIG"); p != "" {
		return []string{p}
	}

	paths := []string{"engagesync.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "engagesync", "engagesync.yaml"))
	}
	return paths
}

// loadFromFile loads the first config file found. An explicit
// ENGAGESYNC_CONFIG path must exist.
func (c *Config) loadFromFile() error {
	explicit := os.Getenv("ENGAGESYNC_CONFIG") != ""

	for _, path := range configPaths() {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && !explicit {
				continue
			}
			return err
		}

		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		return nil
	}

	return fs.ErrNotExist
}

// loadFromEnv overrides config with environment variables.
func (c *Config) loadFromEnv() error {
	strs := map[string]*string{
		"AIRTABLE_API_KEY":          &c.StoreAPIKey,
		"AIRTABLE_BASE_ID":          &c.StoreBaseID,
		"AIRTABLE_TABLE_NAME":       &c.StoreTable,
		"AIRTABLE_VIEW_NAME":        &c.StoreView,
		"YOUTUBE_API_KEY":           &c.StatsAPIKey,
		"ENGAGESYNC_STORE_URL":      &c.StoreURL,
		"ENGAGESYNC_STATS_URL":      &c.StatsURL,
		"ENGAGESYNC_URL_FIELD":      &c.URLField,
		"ENGAGESYNC_VIEWS_FIELD":    &c.ViewsField,
		"ENGAGESYNC_LIKES_FIELD":    &c.LikesField,
		"ENGAGESYNC_COMMENTS_FIELD": &c.CommentsField,
		"ENGAGESYNC_LOG_LEVEL":      &c.LogLevel,
		"ENGAGESYNC_LOG_FORMAT":     &c.LogFormat,
	}
	for name, dst := range strs {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("ENGAGESYNC_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENGAGESYNC_PAGE_SIZE: %w", err)
		}
		c.PageSize = n
	}
	if v := os.Getenv("ENGAGESYNC_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ENGAGESYNC_BATCH_SIZE: %w", err)
		}
		c.BatchSize = n
	}
	if v := os.Getenv("ENGAGESYNC_BATCH_PAUSE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ENGAGESYNC_BATCH_PAUSE: %w", err)
		}
		c.BatchPause = d
	}
	if v := os.Getenv("ENGAGESYNC_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ENGAGESYNC_HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}
	if v := os.Getenv("ENGAGESYNC_STORE_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ENGAGESYNC_STORE_RPS: %w", err)
		}
		c.StoreRPS = f
	}

	return nil
}

// Validate checks that configuration values are valid and consistent.
// Missing credentials are reported together, by environment variable name.
func (c *Config) Validate() error {
	var missing []string
	if c.StoreAPIKey == "" {
		missing = append(missing, "AIRTABLE_API_KEY")
	}
	if c.StoreBaseID == "" {
		missing = append(missing, "AIRTABLE_BASE_ID")
	}
	if c.StoreTable == "" {
		missing = append(missing, "AIRTABLE_TABLE_NAME")
	}
	if c.StatsAPIKey == "" {
		missing = append(missing, "YOUTUBE_API_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRequired, strings.Join(missing, ", "))
	}

	if c.StoreURL == "" {
		return fmt.Errorf("store_url must not be empty")
	}
	if c.URLField == "" || c.ViewsField == "" || c.LikesField == "" || c.CommentsField == "" {
		return fmt.Errorf("field names must not be empty")
	}
	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("page_size must be between 1 and 100")
	}
	if c.BatchSize < 1 || c.BatchSize > 10 {
		return fmt.Errorf("batch_size must be between 1 and 10")
	}
	if c.BatchPause < 0 {
		return fmt.Errorf("batch_pause must be non-negative")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http_timeout must be positive")
	}
	if c.StoreRPS < 0 {
		return fmt.Errorf("store_rps must be non-negative")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json")
	}
	return nil
}
