package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/til/internal/flagx"
)

// parseFlags overlays values from the command line. Only the flags listed
// here are looked at, so -c/-config and unrelated arguments pass through.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-u", "-k", "-d", "-r", "-l"})

	fs := flag.NewFlagSet("til", flag.ContinueOnError)
	fs.StringVar(&cfg.SupabaseURL, "u", cfg.SupabaseURL, "service endpoint URL")
	fs.StringVar(&cfg.SupabaseKey, "k", cfg.SupabaseKey, "service access key")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local session database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	interval := fs.Int("r", int(cfg.RefreshCheckInterval.Seconds()), "session refresh check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RefreshCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
