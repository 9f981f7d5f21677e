package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	SMTP     SMTPConfig

	// IdentityFile holds a default user identity read at startup when no
	// user is supplied. CredentialDir is where the file-backed keyring
	// fallback stores entries.
	IdentityFile  string
	CredentialDir string
}

type SMTPConfig struct {
	Host        string
	Port        uint16
	StartTLS    bool
	User        string
	DisplayName string
	Password    string
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		SMTP: SMTPConfig{
			Host:        getEnv("HERMOD_SMTP_HOST", "smtp.gmail.com"),
			Port:        getEnvInt("HERMOD_SMTP_PORT", 587),
			StartTLS:    getEnvBool("HERMOD_SMTP_STARTTLS", true),
			User:        getEnv("HERMOD_USER", ""),
			DisplayName: getEnv("HERMOD_DISPLAY_NAME", ""),
			Password:    getEnv("HERMOD_PASSWORD", ""),
		},
		IdentityFile:  getEnv("HERMOD_IDENTITY_FILE", ""),
		CredentialDir: getEnv("HERMOD_CREDENTIAL_DIR", ""),
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.SMTP.Host == "" {
		return nil, fmt.Errorf("HERMOD_SMTP_HOST must not be empty")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
