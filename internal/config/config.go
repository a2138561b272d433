// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store backends.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// devSecret signs tokens in development when JWT_SECRET is unset.
const devSecret = "inkpress-development-secret"

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// StoreBackend selects the persistence layer: "postgres" or "memory".
	StoreBackend string

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBMaxConns int

	// Valkey (Redis-compatible cache and session registry)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string
	ValkeyDB       int

	// Auth
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int

	CacheTTL    time.Duration
	CORSOrigins []string

	// RateLimitAuth is the number of auth requests allowed per IP per minute.
	RateLimitAuth int

	// Uploads: S3 when S3Bucket is set, otherwise local disk.
	UploadDir       string
	UploadURLPrefix string
	S3Endpoint      string
	S3Region        string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3PublicURL     string

	// Seed inserts demo data on startup (development only).
	Seed bool
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Host: v.GetString("APP_HOST"),
		Port: v.GetString("APP_PORT"),
		Env:  v.GetString("APP_ENV"),

		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),

		DBHost:     v.GetString("POSTGRES_HOST"),
		DBPort:     v.GetString("POSTGRES_PORT"),
		DBUser:     v.GetString("POSTGRES_USER"),
		DBPassword: v.GetString("POSTGRES_PASSWORD"),
		DBName:     v.GetString("POSTGRES_DB"),
		DBMaxConns: v.GetInt("POSTGRES_MAX_CONNS"),

		ValkeyHost:     v.GetString("VALKEY_HOST"),
		ValkeyPort:     v.GetString("VALKEY_PORT"),
		ValkeyPassword: v.GetString("VALKEY_PASSWORD"),
		ValkeyDB:       v.GetInt("VALKEY_DB"),

		JWTSecret:  v.GetString("JWT_SECRET"),
		TokenTTL:   v.GetDuration("TOKEN_TTL"),
		BcryptCost: v.GetInt("BCRYPT_COST"),

		CacheTTL:      v.GetDuration("CACHE_TTL"),
		CORSOrigins:   splitList(v.GetString("CORS_ORIGINS")),
		RateLimitAuth: v.GetInt("RATE_LIMIT_AUTH"),

		UploadDir:       v.GetString("UPLOAD_DIR"),
		UploadURLPrefix: v.GetString("UPLOAD_URL_PREFIX"),
		S3Endpoint:      v.GetString("S3_ENDPOINT"),
		S3Region:        v.GetString("S3_REGION"),
		S3AccessKey:     v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:     v.GetString("S3_SECRET_KEY"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3PublicURL:     v.GetString("S3_PUBLIC_URL"),

		Seed: v.GetBool("SEED"),
	}

	switch cfg.StoreBackend {
	case BackendPostgres, BackendMemory:
	default:
		return nil, fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendPostgres, BackendMemory, cfg.StoreBackend)
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDev() {
			return nil, errors.New("JWT_SECRET must be set outside development")
		}
		cfg.JWTSecret = devSecret
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" && cfg.StoreBackend == BackendPostgres {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_HOST", "0.0.0.0")
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORE_BACKEND", BackendPostgres)

	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "inkpress")
	v.SetDefault("POSTGRES_PASSWORD", "changeme")
	v.SetDefault("POSTGRES_DB", "inkpress")
	v.SetDefault("POSTGRES_MAX_CONNS", 25)

	v.SetDefault("VALKEY_HOST", "localhost")
	v.SetDefault("VALKEY_PORT", "6379")
	v.SetDefault("VALKEY_DB", 0)

	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CACHE_TTL", "1m")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_AUTH", 20)

	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("S3_REGION", "us-east-1")
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// ValkeyAddr returns the Valkey host:port.
func (c *Config) ValkeyAddr() string {
	return c.ValkeyHost + ":" + c.ValkeyPort
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// S3Enabled reports whether uploads go to object storage.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// splitList parses a comma-separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
