package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string // empty = in-memory store (dev only)
	JWKSURL     string
	CORSOrigins string
	TablePrefix string
	// Storage
	BlobRoot    string
	MaxUploadMB int64
	// BIM parameter tree converter
	BimTreeCommand string
	BimTreeTimeout time.Duration
	// Commerce platform
	CommerceWebhookSecret string
	// Logging
	LogDir      string // empty = stdout only
	LogMaxFiles int
	// RunMigrations applies embedded migrations on start
	RunMigrations bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           env,
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		JWKSURL:               getEnv("JWKS_URL", ""),
		CORSOrigins:           getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix:           getTablePrefix(env),
		BlobRoot:              getEnv("BLOB_ROOT", "./data/blobs"),
		MaxUploadMB:           int64(getEnvInt("MAX_UPLOAD_MB", 200)),
		BimTreeCommand:        getEnv("BIM_TREE_COMMAND", ""),
		BimTreeTimeout:        getEnvDuration("BIM_TREE_TIMEOUT", 2*time.Minute),
		CommerceWebhookSecret: getEnv("COMMERCE_WEBHOOK_SECRET", ""),
		LogDir:                getEnv("LOG_DIR", ""),
		LogMaxFiles:           getEnvInt("LOG_MAX_FILES", 10),
		RunMigrations:         getEnv("RUN_MIGRATIONS", "true") == "true",
	}
}

// IsProduction reports whether the service runs against production data
func (c *Config) IsProduction() bool {
	return c.Environment == "prod"
}

// AllowedOrigins splits CORSOrigins on commas
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	// Auto-generate based on environment
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
