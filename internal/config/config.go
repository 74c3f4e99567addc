package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	DatabaseURL      string
	DatabaseDriver   string
	JWTSecret        string
	JWTTTL           time.Duration
	Environment      string
	CORSOrigins      string
	AttachmentBucket string
	AttachmentDir    string
	GCPCredentials   string
	AuditBuffer      int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	ttl, err := time.ParseDuration(getEnv("JWT_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("JWT_TTL: %w", err)
	}

	cfg := &Config{
		Port:             getEnv("PORT", "3000"),
		DatabaseURL:      os.Getenv("DB_URL"),
		DatabaseDriver:   getEnv("DB_DRIVER", "postgres"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTTTL:           ttl,
		Environment:      getEnv("ENVIRONMENT", "development"),
		CORSOrigins:      getEnv("CORS_ORIGINS", "*"),
		AttachmentBucket: os.Getenv("ATTACHMENT_BUCKET"),
		AttachmentDir:    getEnv("ATTACHMENT_DIR", "uploads"),
		GCPCredentials:   os.Getenv("GCP_SERVICE_ACCOUNT_CREDENTIALS"),
		AuditBuffer:      getEnvInt("AUDIT_BUFFER", 256),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT configuration is required")
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DB_URL configuration is required")
	}
	if c.DatabaseDriver != "postgres" && c.DatabaseDriver != "sqlite" {
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DatabaseDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET configuration is required")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.AuditBuffer <= 0 {
		return fmt.Errorf("AUDIT_BUFFER must be greater than 0")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return intValue
}
