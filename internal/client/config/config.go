package config

import (
	"fmt"
	"strings"
	"time"
)

// Config holds runtime settings for the GymRecord CLI.
//
// Fields:
//   - ProjectURL: base URL of the backend (auth, data and storage services).
//   - AnonKey: the project's public API key.
//   - GoogleClientID, GoogleClientSecret: OAuth client for Google sign-in;
//     Google sign-in is disabled when the id is empty.
//   - StorageEndpoint, StorageRegion, StorageAccessKey, StorageSecretKey:
//     S3 protocol access to object storage.
//   - AvatarBucket: bucket avatars are uploaded to.
//   - DatabasePath: SQLite file of the local store.
//   - DefaultLang: language loaded at startup.
//   - RefreshCheckInterval: how often the session expiry is checked.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	ProjectURL           string
	AnonKey              string
	GoogleClientID       string
	GoogleClientSecret   string
	StorageEndpoint      string
	StorageRegion        string
	StorageAccessKey     string
	StorageSecretKey     string
	AvatarBucket         string
	DatabasePath         string
	DefaultLang          string
	RefreshCheckInterval time.Duration
	LogLevel             string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ProjectURL = "http://127.0.0.1:54321"
	c.StorageRegion = "local"
	c.AvatarBucket = "avatars"
	c.DatabasePath = "gymrecord.db"
	c.DefaultLang = "zh-TW"
	c.RefreshCheckInterval = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the environment (including an optional .env file), JSON (if present) and
// command-line flags (if present). Later sources take precedence over earlier
// ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseEnv(cfg)
	parseJson(cfg)
	parseFlags(cfg)
	cfg.derive()
	cfg.validate()
	return cfg
}

// derive fills values that default to something built from other fields.
func (c *Config) derive() {
	c.ProjectURL = strings.TrimRight(c.ProjectURL, "/")
	if c.StorageEndpoint == "" {
		c.StorageEndpoint = c.ProjectURL + "/storage/v1/s3"
	}
}

// validate panics on values the client cannot run with, like the other
// loaders do on malformed input.
func (c *Config) validate() {
	if c.RefreshCheckInterval <= 0 {
		panic(fmt.Sprintf("refresh check interval must be positive, got %s", c.RefreshCheckInterval))
	}
}
