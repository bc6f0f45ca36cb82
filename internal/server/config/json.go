package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/til/internal/flagx"
	"github.com/dmitrijs2005/til/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// both "15m" strings and integer nanoseconds.
type JsonConfig struct {
	ListenAddr                   string         `json:"listen_addr"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AnonKey                      string         `json:"anon_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config, if any, into config.
// Empty values leave the current setting alone. An unreadable or invalid
// file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath(os.Args[1:])
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.ListenAddr, c.ListenAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.AnonKey, c.AnonKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration > 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration > 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
