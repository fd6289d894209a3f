package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ServerPort string
	ServerHost string

	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis configuration (optional; sessions fall back to memory)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisURL      string
	RedisDB       int

	// Session configuration
	JWTSecret  string
	SessionTTL time.Duration

	// Admin console credential pair. Not a user row.
	AdminEmail    string
	AdminPassword string

	// Photo storage (optional)
	S3Bucket  string
	AWSRegion string
}

// LoadConfig builds a Config from environment variables, with Docker
// secret files taking precedence in development and production.
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	lookup := getenv
	if env == Development || env == Production {
		lookup = secretOrEnv
	}

	cfg := &Config{
		ServerPort:    lookup("SERVER_PORT", "8080"),
		ServerHost:    lookup("SERVER_HOST", "0.0.0.0"),
		DBHost:        lookup("DB_HOST", "localhost"),
		DBPort:        lookup("DB_PORT", "5432"),
		DBUser:        lookup("DB_USER", "postgres"),
		DBPassword:    lookup("DB_PASSWORD", ""),
		DBName:        lookup("DB_NAME", "foodbridge"),
		DBSSLMode:     lookup("DB_SSL_MODE", "disable"),
		RedisHost:     lookup("REDIS_HOST", ""),
		RedisPort:     lookup("REDIS_PORT", "6379"),
		RedisPassword: lookup("REDIS_PASSWORD", ""),
		RedisURL:      lookup("REDIS_URL", ""),
		RedisDB:       0,
		JWTSecret:     lookup("JWT_SECRET", ""),
		AdminEmail:    lookup("ADMIN_EMAIL", ""),
		AdminPassword: lookup("ADMIN_PASSWORD", ""),
		S3Bucket:      lookup("S3_BUCKET_NAME", ""),
		AWSRegion:     lookup("AWS_REGION", ""),
	}

	ttl := lookup("SESSION_TTL", "24h")
	parsed, err := time.ParseDuration(ttl)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL %q: %w", ttl, err)
	}
	cfg.SessionTTL = parsed

	if err := ValidateConfig(cfg, env); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func getenv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// secretOrEnv reads a Docker secret from the secrets directory, falling
// back to the environment variable of the same name.
func secretOrEnv(name, fallback string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, strings.ToLower(name))
	if data, err := os.ReadFile(secretPath); err == nil {
		if v := strings.TrimSpace(string(data)); v != "" {
			return v
		}
	}
	return getenv(name, fallback)
}
