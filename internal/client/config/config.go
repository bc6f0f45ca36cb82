package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

var (
	ErrMissingURL = errors.New("service URL is required (TIL_SUPABASE_URL or -u)")
	ErrMissingKey = errors.New("service key is required (TIL_SUPABASE_KEY or -k)")
)

// Config holds runtime settings for the client.
type Config struct {
	SupabaseURL          string
	SupabaseKey          string
	DatabasePath         string
	RefreshCheckInterval time.Duration
	RefreshMargin        time.Duration
	LogLevel             string
}

// LoadDefaults populates c with defaults. URL and key have none.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "til.db"
	c.RefreshCheckInterval = 30 * time.Second
	c.RefreshMargin = time.Minute
	c.LogLevel = "warn"
}

// Validate checks the required settings.
func (c *Config) Validate() error {
	if c.SupabaseURL == "" {
		return ErrMissingURL
	}
	if c.SupabaseKey == "" {
		return ErrMissingKey
	}
	u, err := url.Parse(c.SupabaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid service URL %q", c.SupabaseURL)
	}
	return nil
}

// LoadConfig builds a Config from defaults, JSON, environment and flags,
// in that order, and validates it.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	args := os.Args[1:]
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg, os.LookupEnv)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
