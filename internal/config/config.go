// Package config loads application configuration from environment variables.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mediavault/service/internal/schema"
)

// Config holds all runtime configuration for the service.
type Config struct {
	Port      string
	AppEnv    string
	LogLevel  string
	JWTSecret string

	// Object storage (S3-compatible: MinIO locally, any S3 provider in production)
	StorageEndpoint  string
	StorageAccessKey string
	StorageSecretKey string
	StorageBucket    string
	StorageUseSSL    bool

	// Admission limits. Quota checks page through store listings, so these
	// also bound how much listing work a single upload can trigger.
	MaxFilesPerUser int
	MaxTotalFiles   int
	ListPageSize    int

	// Per-category ceilings applied on top of the flat per-user count.
	// A zero value disables the category check.
	CategoryQuota map[schema.Category]int

	// Retrieval cap: objects larger than this are refused rather than
	// buffered into memory.
	MaxRetrieveBytes int64

	// Image preprocessing knobs.
	PreviewWidthPx      int
	PreferredMaxWidthPx int
	ImageEncodeQuality  float64
}

// Load reads configuration from a .env file (if present) and environment variables.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, reading from environment")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		JWTSecret: getEnv("JWT_SECRET", "change_me_in_production"),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
		StorageBucket:    getEnv("STORAGE_BUCKET", "mediavault"),
		StorageUseSSL:    getEnv("STORAGE_USE_SSL", "false") == "true",

		MaxFilesPerUser: getEnvInt("MAX_FILES_PER_USER", 100),
		MaxTotalFiles:   getEnvInt("MAX_TOTAL_FILES", 1000),
		ListPageSize:    getEnvInt("LIST_PAGE_SIZE", 1000),

		CategoryQuota: map[schema.Category]int{
			schema.CategoryImage:   getEnvInt("ITEM_QUOTA_IMAGE", 100),
			schema.CategoryUnknown: getEnvInt("ITEM_QUOTA_UNKNOWN", 50),
		},

		MaxRetrieveBytes: getEnvInt64("MAX_RETRIEVE_BYTES", 512*1024*1024),

		PreviewWidthPx:      getEnvInt("PREVIEW_WIDTH_PX", 200),
		PreferredMaxWidthPx: getEnvInt("PREFERRED_MAX_WIDTH_PX", 1024),
		ImageEncodeQuality:  getEnvFloat("IMAGE_ENCODE_QUALITY", 0.7),
	}
}

// IsProduction returns true when the app is running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logrus.Warnf("config: ignoring non-integer value for %s: %q", key, v)
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		logrus.Warnf("config: ignoring non-integer value for %s: %q", key, v)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logrus.Warnf("config: ignoring non-numeric value for %s: %q", key, v)
	}
	return fallback
}
