package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"reelfake-backend/logger"

	"github.com/joho/godotenv"
)

func LoadEnv() error {
	// .env is only present in local development; in production the variables
	// are already set on the process.
	if err := godotenv.Load(); err != nil {
		return nil
	}
	return nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	log := logger.L()
	if os.Getenv("USERS_DATABASE_URL") == "" {
		log.Warn("USERS_DATABASE_URL not set - users share the catalog database")
	}
	if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		log.Warn("FIREBASE_STORAGE_BUCKET not set - poster uploads will fail")
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		log.Warn("GOOGLE_APPLICATION_CREDENTIALS not set - Firebase features may not work")
	}
	if os.Getenv("FRONTEND_URL") == "" {
		log.Warn("FRONTEND_URL not set - CORS may not work correctly")
	}

	return nil
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvInt returns the integer value of key, or defaultValue when the
// variable is unset or not a number.
func GetEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvInt64(key string, defaultValue int64) int64 {
	value, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetEnvDuration parses values such as "90s" or "1h".
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// UploadDir is where uploaded CSV files wait until an ingestion run consumes them.
func UploadDir() string {
	return GetEnv("UPLOAD_DIR", filepath.Join(os.TempDir(), "reelfake-uploads"))
}

// UploadMaxBytes caps the size of a single catalog upload.
func UploadMaxBytes() int64 {
	return GetEnvInt64("UPLOAD_MAX_BYTES", 50<<20)
}

func IsProduction() bool {
	return GetEnv("APP_ENV", "development") == "production"
}
