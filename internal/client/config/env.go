package config

import "strings"

// parseEnv overlays values from the environment. lookup is os.LookupEnv
// outside of tests.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	set := func(dst *string, key string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	set(&cfg.SupabaseURL, "TIL_SUPABASE_URL")
	set(&cfg.SupabaseKey, "TIL_SUPABASE_KEY")
	set(&cfg.DatabasePath, "TIL_DB")
	set(&cfg.LogLevel, "TIL_LOG_LEVEL")
}
