package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"GYMRECORD_URL", "GYMRECORD_ANON_KEY", "GYMRECORD_S3_ENDPOINT", "GYMRECORD_S3_REGION",
	"GYMRECORD_S3_ACCESS_KEY", "GYMRECORD_S3_SECRET_KEY", "GYMRECORD_AVATAR_BUCKET",
	"GYMRECORD_DB", "GYMRECORD_LANG", "GYMRECORD_REFRESH_INTERVAL", "GYMRECORD_LOG_LEVEL",
	"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET",
}

// isolateEnv unsets every variable the loader reads and restores them after
// the test, including ones a dotenv file set in between.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		old, had := os.LookupEnv(k)
		require.NoError(t, os.Unsetenv(k))
		t.Cleanup(func() {
			if had {
				_ = os.Setenv(k, old)
			} else {
				_ = os.Unsetenv(k)
			}
		})
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"testbin"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:54321", c.ProjectURL)
	assert.Equal(t, "avatars", c.AvatarBucket)
	assert.Equal(t, "zh-TW", c.DefaultLang)
	assert.Equal(t, 30*time.Second, c.RefreshCheckInterval)
	assert.Equal(t, "info", c.LogLevel)
	assert.Empty(t, c.GoogleClientID)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	isolateEnv(t)
	withArgs(t)

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "http://127.0.0.1:54321", cfg.ProjectURL)
	assert.Equal(t, "http://127.0.0.1:54321/storage/v1/s3", cfg.StorageEndpoint)
	assert.Equal(t, 30*time.Second, cfg.RefreshCheckInterval)
}

func TestLoadConfig_Precedence(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GYMRECORD_URL", "http://env:1")
	t.Setenv("GYMRECORD_LANG", "en")
	t.Setenv("GYMRECORD_ANON_KEY", "env-key")

	path := writeTempJSON(t, "", "", map[string]any{
		"project_url":  "http://json:2/",
		"default_lang": "ja",
	})
	withArgs(t, "-c", path, "-l", "ko")

	cfg := LoadConfig()

	assert.Equal(t, "http://json:2", cfg.ProjectURL)
	assert.Equal(t, "http://json:2/storage/v1/s3", cfg.StorageEndpoint)
	assert.Equal(t, "ko", cfg.DefaultLang)
	assert.Equal(t, "env-key", cfg.AnonKey)
}

func TestLoadConfig_RejectsNonPositiveRefreshInterval(t *testing.T) {
	t.Run("flag", func(t *testing.T) {
		isolateEnv(t)
		withArgs(t, "-i", "0")
		require.Panics(t, func() { LoadConfig() })
	})

	t.Run("environment", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv("GYMRECORD_REFRESH_INTERVAL", "-5s")
		withArgs(t)
		require.Panics(t, func() { LoadConfig() })
	})

	t.Run("positive flag accepted", func(t *testing.T) {
		isolateEnv(t)
		withArgs(t, "-i", "5")
		cfg := LoadConfig()
		assert.Equal(t, 5*time.Second, cfg.RefreshCheckInterval)
	})
}
