package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// FallbackJWTSecret is used when JWT_SECRET is unset. Tokens signed with it are forgeable
// by anyone who knows this value.
const FallbackJWTSecret = "bookblog-secret-key"

const (
	DriverBadger = "badger"
	DriverMongo  = "mongo"
	DriverMySQL  = "mysql"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrBadExpiry     = errors.New("jwt expiry must be positive")
)

type Config struct {
	Port        string
	Env         string
	LogLevel    string
	StoreDriver string
	BadgerPath  string
	MongoURI    string
	MongoDB     string
	DatabaseDSN string
	JWTSecret   string
	JWTExpiry   time.Duration
	CORSOrigin  string
}

func Load() Config {
	cfg := Config{
		Port:        getEnv("PORT", "5000"),
		Env:         getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		StoreDriver: getEnv("STORE_DRIVER", DriverBadger),
		BadgerPath:  getEnv("BADGER_PATH", "data/badger"),
		MongoURI:    getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:     getEnv("MONGO_DATABASE", "bookblog"),
		DatabaseDSN: getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/bookblog?parseTime=true"),
		JWTSecret:   getEnv("JWT_SECRET", FallbackJWTSecret),
		JWTExpiry:   getDuration("JWT_EXPIRY", 7*24*time.Hour),
		CORSOrigin:  getEnv("CORS_ORIGIN", "*"),
	}

	if cfg.UsesFallbackSecret() {
		if cfg.IsProduction() {
			slog.Error("JWT_SECRET must be set in production environment")
			os.Exit(1)
		}
		slog.Warn("JWT_SECRET not set, signing tokens with the built-in fallback secret")
	}

	return cfg
}

// Validate reports configuration values the server cannot start with.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverBadger, DriverMongo, DriverMySQL:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.StoreDriver)
	}
	if c.JWTExpiry <= 0 {
		return ErrBadExpiry
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) UsesFallbackSecret() bool {
	return c.JWTSecret == FallbackJWTSecret
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
