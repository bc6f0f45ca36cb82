// Package config loads runtime configuration for the Today I Learned client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment: TIL_SUPABASE_URL, TIL_SUPABASE_KEY, TIL_DB, TIL_LOG_LEVEL.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-u string   service endpoint URL
//	-k string   service access (anon) key
//	-d string   path of the local session database
//	-r int      session refresh check interval (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
//	{
//	  "supabase_url": "https://project.supabase.co",
//	  "supabase_key": "eyJ...",
//	  "database_path": "til.db",
//	  "refresh_check_interval": "30s",
//	  "refresh_margin": "1m",
//	  "log_level": "info"
//	}
//
// The endpoint URL and the access key are required; Validate reports their
// absence and the caller is expected to stop.
package config
