// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DefaultJWTSecret is only meant for local development.
const DefaultJWTSecret = "devjwtsecret"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	App      AppConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	// CORSAllowedOrigins lists the browser origins allowed to call the API.
	// Empty allows any origin.
	CORSAllowedOrigins []string
}

// DatabaseConfig holds connection settings. Driver is "postgres" or "sqlite".
type DatabaseConfig struct {
	Driver     string
	RawDSN     string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
	Debug      bool
}

// AuthConfig holds token and password settings.
type AuthConfig struct {
	JWTSecret  string
	BcryptCost int
	// CatalogAdminRoles restricts catalog mutations to these client roles.
	// Empty means any authenticated client.
	CatalogAdminRoles []string
	// ClientStatusCacheTTL is how long, in seconds, a client's active flag
	// is trusted before the token verifier reads it again. 0 disables.
	ClientStatusCacheTTL int
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool
	Migrations bool
	Seed       bool
	// LegacyStatusTransitions lets owners set any list status regardless
	// of the current one.
	LegacyStatusTransitions bool
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// DSN returns the connection string for the configured driver.
// DATABASE_DSN, when set, wins over the individual postgres settings.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.RawDSN != "" {
		return NormalizeDSN(d.RawDSN)
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as required by
// golang-migrate.
func (d DatabaseConfig) URL() string {
	if d.RawDSN != "" {
		return ToURLDSN(NormalizeDSN(d.RawDSN))
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "5000"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),

			CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			RawDSN:     os.Getenv("DATABASE_DSN"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "medicaments"),
			Password:   getEnv("DB_PASSWORD", "medicaments123"),
			DBName:     getEnv("DB_NAME", "medicaments_db"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "medicaments.db"),
			Debug:      getEnvBool("DB_DEBUG", false),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", DefaultJWTSecret),
			BcryptCost:           getEnvInt("BCRYPT_COST", 10),
			CatalogAdminRoles:    getEnvList("CATALOG_ADMIN_ROLES"),
			ClientStatusCacheTTL: getEnvInt("CLIENT_STATUS_CACHE_TTL", 30),
		},
		App: AppConfig{
			Dev:                     getEnvBool("DEV", true),
			Migrations:              getEnvBool("MIGRATIONS", false),
			Seed:                    getEnvBool("DB_SEED", false),
			LegacyStatusTransitions: strings.EqualFold(os.Getenv("STATUS_TRANSITIONS"), "legacy"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
