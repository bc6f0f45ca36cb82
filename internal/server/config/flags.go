package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/til/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   HTTP bind address (e.g. ":8000")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-k string   anon API key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-l string   log level
//
// Unknown flags are filtered out with flagx.FilterArgs first. A malformed
// value panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-t", "-r", "-l"})

	fs := flag.NewFlagSet("tild", flag.ContinueOnError)

	fs.StringVar(&config.ListenAddr, "a", config.ListenAddr, "address and port to listen on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.AnonKey, "k", config.AnonKey, "anon API key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
}
