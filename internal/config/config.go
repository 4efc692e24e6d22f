package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DriverMySQL selects the MySQL dialector.
	DriverMySQL = "mysql"
	// DriverPostgres selects the PostgreSQL dialector.
	DriverPostgres = "postgres"

	developmentSecret = "change-me"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Environment string
	Host        string
	Port        string

	DBDriver          string
	DatabaseDSN       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	ResetDB           bool

	SecretKey string

	RedisAddr    string
	RedisPass    string
	RedisDB      int
	UserCacheTTL time.Duration

	LogLevel  string
	LogFormat string

	ShutdownTimeout time.Duration
	AdminPassword   string
}

// Load builds Config from environment with sensible defaults. A .env file in the
// working directory is read first when present; real environment variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Host:        getEnv("HOST", "127.0.0.1"),
		Port:        getEnv("PORT", "8080"),
		DBDriver:    getEnv("DB_DRIVER", DriverMySQL),
		DatabaseDSN: getEnv("DATABASE_DSN", "restaurant:restaurant@tcp(localhost:3306)/restaurant?charset=utf8mb4&parseTime=True&loc=UTC"),
		SecretKey:   os.Getenv("SECRET_KEY"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		RedisPass:   os.Getenv("REDIS_PASSWORD"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogFormat:   getEnv("LOG_FORMAT", "json"),

		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
	}

	var err error
	if cfg.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 25); err != nil {
		return nil, err
	}
	if cfg.DBMaxIdleConns, err = getEnvInt("DB_MAX_IDLE_CONNS", 5); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.DBConnMaxLifetime, err = getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.UserCacheTTL, err = getEnvDuration("USER_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResetDB, err = getEnvBool("RESET_DB", false); err != nil {
		return nil, err
	}

	switch cfg.DBDriver {
	case DriverMySQL, DriverPostgres:
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want %s or %s", cfg.DBDriver, DriverMySQL, DriverPostgres)
	}

	if cfg.SecretKey == "" {
		if !cfg.IsDevelopment() {
			return nil, errors.New("SECRET_KEY is required outside development")
		}
		cfg.SecretKey = developmentSecret
	}

	return cfg, nil
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
