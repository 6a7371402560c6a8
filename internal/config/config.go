package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Storage
	StorageDir string
	// Database
	DatabaseDriver string // "sqlite", "memory" or "postgres"
	DatabaseURL    string // sqlite file path or postgres connection string
	AutoMigrate    bool
	// Auth (disabled when empty)
	AuthJWKSURL string
	// Logging
	LogDir        string
	LogMaxSizeMB  int
	LogMaxBackups int
	// Uploads
	MaxUploadBytes int64
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		StorageDir:     getEnv("STORAGE_DIR", "storage"),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseURL:    getEnv("DATABASE_URL", "folio.db"),
		AutoMigrate:    getEnv("AUTO_MIGRATE", "true") == "true",
		AuthJWKSURL:    getEnv("AUTH_JWKS_URL", ""),
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxSizeMB:   getEnvInt("LOG_MAX_SIZE_MB", 50),
		LogMaxBackups:  getEnvInt("LOG_MAX_BACKUPS", 5),
		MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_MB", 50)) << 20,
	}
}

// IsDev reports whether debug-level logging should be enabled
func (c *Config) IsDev() bool {
	return c.Environment == "dev"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt falls back to the default when the variable is unset or not a positive integer
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return defaultValue
	}
	return n
}
