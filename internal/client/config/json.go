package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gymrecord/internal/flagx"
	"github.com/dmitrijs2005/gymrecord/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds. Empty fields leave the
// runtime Config untouched.
type JsonConfig struct {
	ProjectURL           string         `json:"project_url"`
	AnonKey              string         `json:"anon_key"`
	GoogleClientID       string         `json:"google_client_id"`
	GoogleClientSecret   string         `json:"google_client_secret"`
	StorageEndpoint      string         `json:"storage_endpoint"`
	StorageRegion        string         `json:"storage_region"`
	StorageAccessKey     string         `json:"storage_access_key"`
	StorageSecretKey     string         `json:"storage_secret_key"`
	AvatarBucket         string         `json:"avatar_bucket"`
	DatabasePath         string         `json:"database_path"`
	DefaultLang          string         `json:"default_lang"`
	RefreshCheckInterval timex.Duration `json:"refresh_check_interval"`
	LogLevel             string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from the JSON file given via
// -c or -config. Without the flag nothing is loaded.
//
// Panics on read or unmarshal errors (caller should recover if desired).
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.ProjectURL, jc.ProjectURL)
	overlay(&cfg.AnonKey, jc.AnonKey)
	overlay(&cfg.GoogleClientID, jc.GoogleClientID)
	overlay(&cfg.GoogleClientSecret, jc.GoogleClientSecret)
	overlay(&cfg.StorageEndpoint, jc.StorageEndpoint)
	overlay(&cfg.StorageRegion, jc.StorageRegion)
	overlay(&cfg.StorageAccessKey, jc.StorageAccessKey)
	overlay(&cfg.StorageSecretKey, jc.StorageSecretKey)
	overlay(&cfg.AvatarBucket, jc.AvatarBucket)
	overlay(&cfg.DatabasePath, jc.DatabasePath)
	overlay(&cfg.DefaultLang, jc.DefaultLang)
	overlay(&cfg.LogLevel, jc.LogLevel)
	if jc.RefreshCheckInterval.Duration > 0 {
		cfg.RefreshCheckInterval = jc.RefreshCheckInterval.Duration
	}
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
