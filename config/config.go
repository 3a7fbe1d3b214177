package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the service.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// Archive storage (S3-compatible, e.g. Cloudflare R2). Optional: when
	// the account id is empty the archive feature is disabled.
	ArchiveAccountID       string
	ArchiveAccessKeyID     string
	ArchiveSecretAccessKey string
	ArchiveBucketName      string
	ArchivePublicBaseURL   string
}

// Load reads configuration from environment variables, optionally loading a
// .env file first (useful for local development; its absence is not fatal).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	return &Config{
		DatabaseURL:            dbURL,
		JWTSecretKey:           jwtKey,
		ServerPort:             port,
		ArchiveAccountID:       os.Getenv("ARCHIVE_ACCOUNT_ID"),
		ArchiveAccessKeyID:     os.Getenv("ARCHIVE_ACCESS_KEY_ID"),
		ArchiveSecretAccessKey: os.Getenv("ARCHIVE_SECRET_ACCESS_KEY"),
		ArchiveBucketName:      os.Getenv("ARCHIVE_BUCKET_NAME"),
		ArchivePublicBaseURL:   os.Getenv("ARCHIVE_PUBLIC_BASE_URL"),
	}, nil
}

// ArchiveEnabled reports whether the final-ranking archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.ArchiveAccountID != "" && c.ArchiveAccessKeyID != "" &&
		c.ArchiveSecretAccessKey != "" && c.ArchiveBucketName != ""
}
