package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/til/internal/flagx"
	"github.com/dmitrijs2005/til/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Only non-empty
// values override the current Config.
type JsonConfig struct {
	SupabaseURL          string         `json:"supabase_url"`
	SupabaseKey          string         `json:"supabase_key"`
	DatabasePath         string         `json:"database_path"`
	RefreshCheckInterval timex.Duration `json:"refresh_check_interval"`
	RefreshMargin        timex.Duration `json:"refresh_margin"`
	LogLevel             string         `json:"log_level"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.SupabaseURL != "" {
		cfg.SupabaseURL = jc.SupabaseURL
	}
	if jc.SupabaseKey != "" {
		cfg.SupabaseKey = jc.SupabaseKey
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.RefreshCheckInterval.Duration > 0 {
		cfg.RefreshCheckInterval = jc.RefreshCheckInterval.Duration
	}
	if jc.RefreshMargin.Duration > 0 {
		cfg.RefreshMargin = jc.RefreshMargin.Duration
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	return nil
}
