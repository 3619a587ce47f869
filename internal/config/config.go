package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Article lifecycle configuration
	Lifecycle LifecycleConfig

	// List pagination configuration
	Pagination PaginationConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigin   string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// LifecycleConfig holds article lifecycle settings
type LifecycleConfig struct {
	// DefaultActor is recorded as the version author when a request carries no actor.
	DefaultActor string
	// DeleteConfirmTTL bounds how long a delete confirmation token stays valid.
	DeleteConfirmTTL time.Duration
}

// PaginationConfig holds list endpoint limits
type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			AllowedOrigin:   getEnv("CORS_ALLOWED_ORIGIN", "*"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "help_workstation"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Lifecycle: LifecycleConfig{
			DefaultActor:     getEnv("DEFAULT_ACTOR", "system"),
			DeleteConfirmTTL: getDurationEnv("LIFECYCLE_DELETE_CONFIRM_TTL", 5*time.Minute),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getIntEnv("PAGE_DEFAULT_LIMIT", 20),
			MaxLimit:     getIntEnv("PAGE_MAX_LIMIT", 100),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.Database,
		validation.Field(&c.Database.Host, validation.Required.Error("DB_HOST is required")),
		validation.Field(&c.Database.Name, validation.Required.Error("DB_NAME is required")),
		validation.Field(&c.Database.MaxOpenConns, validation.Min(1)),
	); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := validation.ValidateStruct(&c.Lifecycle,
		validation.Field(&c.Lifecycle.DefaultActor, validation.Required),
		validation.Field(&c.Lifecycle.DeleteConfirmTTL, validation.Required, validation.Min(time.Second)),
	); err != nil {
		return fmt.Errorf("lifecycle config: %w", err)
	}
	if err := validation.ValidateStruct(&c.Pagination,
		validation.Field(&c.Pagination.DefaultLimit, validation.Required, validation.Min(1)),
		validation.Field(&c.Pagination.MaxLimit, validation.Required, validation.Min(c.Pagination.DefaultLimit)),
	); err != nil {
		return fmt.Errorf("pagination config: %w", err)
	}
	return validation.ValidateStruct(&c.Log,
		validation.Field(&c.Log.Format, validation.In("json", "pretty")),
	)
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
