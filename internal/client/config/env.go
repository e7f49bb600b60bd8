package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/dmitrijs2005/gymrecord/internal/flagx"
	"github.com/joho/godotenv"
)

const defaultEnvFile = ".env"

// parseEnv overlays Config with environment variables.
//
// A dotenv file is loaded first: the one given via -e/-env (which must
// exist), or ./.env when present. Variables already set in the process
// environment win over the file.
//
// Variables:
//
//	GYMRECORD_URL, GYMRECORD_ANON_KEY, GYMRECORD_S3_ENDPOINT, GYMRECORD_S3_REGION,
//	GYMRECORD_S3_ACCESS_KEY, GYMRECORD_S3_SECRET_KEY, GYMRECORD_AVATAR_BUCKET,
//	GYMRECORD_DB, GYMRECORD_LANG, GYMRECORD_REFRESH_INTERVAL, GYMRECORD_LOG_LEVEL,
//	GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET
//
// Panics on an unreadable explicit dotenv file or a malformed duration.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlag(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	setString(&cfg.ProjectURL, "GYMRECORD_URL")
	setString(&cfg.AnonKey, "GYMRECORD_ANON_KEY")
	setString(&cfg.StorageEndpoint, "GYMRECORD_S3_ENDPOINT")
	setString(&cfg.StorageRegion, "GYMRECORD_S3_REGION")
	setString(&cfg.StorageAccessKey, "GYMRECORD_S3_ACCESS_KEY")
	setString(&cfg.StorageSecretKey, "GYMRECORD_S3_SECRET_KEY")
	setString(&cfg.AvatarBucket, "GYMRECORD_AVATAR_BUCKET")
	setString(&cfg.DatabasePath, "GYMRECORD_DB")
	setString(&cfg.DefaultLang, "GYMRECORD_LANG")
	setString(&cfg.LogLevel, "GYMRECORD_LOG_LEVEL")
	setString(&cfg.GoogleClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.GoogleClientSecret, "GOOGLE_CLIENT_SECRET")

	if v := os.Getenv("GYMRECORD_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		cfg.RefreshCheckInterval = d
	}
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
