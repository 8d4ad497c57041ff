package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by parseEnv.
const (
	EnvHTTPAddr       = "MIRROR_HTTP_ADDR"
	EnvHealthAddr     = "MIRROR_HEALTH_ADDR"
	EnvStorage        = "MIRROR_STORAGE"
	EnvDatabaseDSN    = "MIRROR_DATABASE_DSN"
	EnvSecretKey      = "MIRROR_SECRET_KEY"
	EnvTokenValidity  = "MIRROR_TOKEN_VALIDITY"
	EnvAllowedOrigins = "MIRROR_ALLOWED_ORIGINS"
	EnvLogLevel       = "MIRROR_LOG_LEVEL"
)

// envFile is loaded before the environment is read. Variables already set in
// the process environment win over the file.
var envFile = ".env"

func setEnv(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// parseEnv overlays Config with MIRROR_* variables. A missing .env file is
// not an error; a malformed duration panics like a malformed flag would.
func parseEnv(config *Config) {
	_ = godotenv.Load(envFile)

	setEnv(&config.HTTPAddr, EnvHTTPAddr)
	setEnv(&config.HealthAddr, EnvHealthAddr)
	setEnv(&config.StorageKind, EnvStorage)
	setEnv(&config.DatabaseDSN, EnvDatabaseDSN)
	setEnv(&config.SecretKey, EnvSecretKey)
	setEnv(&config.LogLevel, EnvLogLevel)

	if v := os.Getenv(EnvTokenValidity); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.TokenValidity = d
	}

	if v := os.Getenv(EnvAllowedOrigins); v != "" {
		config.AllowedOrigins = splitList(v)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
