package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/trainingportal/internal/flagx"
	"github.com/dmitrijs2005/trainingportal/internal/timex"
)

// JsonConfig is the on-disk shape of the server configuration. Durations are
// timex.Duration, so "720h" and integer nanoseconds both parse. Empty fields
// leave the current value alone.
type JsonConfig struct {
	HTTPAddr       string         `json:"http_addr"`
	HealthAddr     string         `json:"health_addr"`
	StorageKind    string         `json:"storage"`
	DatabaseDSN    string         `json:"database_dsn"`
	SecretKey      string         `json:"secret_key"`
	TokenValidity  timex.Duration `json:"token_validity"`
	AllowedOrigins []string       `json:"allowed_origins"`
	LogLevel       string         `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// parseJson overlays Config with the file named by -c or -config.
// It panics when the file cannot be read or decoded.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.HealthAddr, c.HealthAddr)
	setString(&config.StorageKind, c.StorageKind)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	if c.TokenValidity.Duration != 0 {
		config.TokenValidity = c.TokenValidity.Duration
	}
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
}
