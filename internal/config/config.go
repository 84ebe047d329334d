package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the VidTube backend service.
type Config struct {
	AppPort       int
	MongoURI      string
	MongoDatabase string
	LogLevel      string
	CORSOrigins   []string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration

	ObjectStore ObjectStoreConfig
}

// ObjectStoreConfig points at the S3-compatible bucket holding avatars and
// cover images.
type ObjectStoreConfig struct {
	Bucket        string
	Region        string
	Endpoint      string
	PublicBaseURL string
}

// Load reads configuration from environment variables, applying sensible
// defaults for local development. A .env file in the working directory is
// honoured when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppPort:       getInt("VIDTUBE_PORT", 8080),
		MongoURI:      getString("VIDTUBE_MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getString("VIDTUBE_MONGO_DB", "vidtube"),
		LogLevel:      getString("VIDTUBE_LOG_LEVEL", "info"),
		CORSOrigins:   getList("VIDTUBE_CORS_ORIGINS", []string{"http://localhost:3000"}),

		AccessTokenSecret:  getString("VIDTUBE_ACCESS_TOKEN_SECRET", ""),
		RefreshTokenSecret: getString("VIDTUBE_REFRESH_TOKEN_SECRET", ""),
		AccessTokenTTL:     getDuration("VIDTUBE_ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:    getDuration("VIDTUBE_REFRESH_TOKEN_TTL", 7*24*time.Hour),

		ObjectStore: ObjectStoreConfig{
			Bucket:        getString("VIDTUBE_S3_BUCKET", ""),
			Region:        getString("VIDTUBE_S3_REGION", "us-east-1"),
			Endpoint:      getString("VIDTUBE_S3_ENDPOINT", ""),
			PublicBaseURL: getString("VIDTUBE_S3_PUBLIC_URL", ""),
		},
	}

	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		return Config{}, errors.New("config: VIDTUBE_ACCESS_TOKEN_SECRET and VIDTUBE_REFRESH_TOKEN_SECRET are required")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return Config{}, errors.New("config: access and refresh token secrets must differ")
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func getList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
