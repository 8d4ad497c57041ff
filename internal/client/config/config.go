package config

import (
	"time"

	"github.com/dmitrijs2005/trainingportal/internal/client/validation"
)

// Config holds runtime settings for the portal client.
//
// Units: ProbeTimeout and NetworkTimeout are time.Duration values.
type Config struct {
	DBPath string

	MirrorKind       string
	MirrorURL        string
	MirrorHealthAddr string

	FirestoreProject     string
	FirestoreRoot        string
	FirestoreCredentials string

	ProbeTimeout   time.Duration
	NetworkTimeout time.Duration

	Rules validation.Rules

	BackupDir        string
	BackupPassphrase string
	MaxBackups       int
	S3Endpoint       string
	S3Region         string
	S3Bucket         string
	S3Prefix         string
	S3AccessKey      string
	S3SecretKey      string

	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "portal.db"
	c.MirrorKind = "none"
	c.MirrorURL = "http://127.0.0.1:8080"
	c.MirrorHealthAddr = "127.0.0.1:50051"
	c.FirestoreRoot = "portal"
	c.ProbeTimeout = 5 * time.Second
	c.NetworkTimeout = 10 * time.Second
	c.Rules = validation.DefaultRules()
	c.BackupDir = "backups"
	c.MaxBackups = 10
	c.S3Region = "us-east-1"
	c.LogLevel = "warn"
}

// S3Enabled reports whether backups go to object storage instead of BackupDir.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
