// Package config loads runtime settings from the environment (and an optional .env file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"

	LockNone   = "none"
	LockMemory = "memory"
	LockRedis  = "redis"
)

type Config struct {
	HTTPPort        string
	LogLevel        string
	ShutdownTimeout time.Duration

	StoreDriver   string
	DatabaseURL   string
	MongoURL      string
	MongoDatabase string

	JWTSecret  string
	JWTTTL     time.Duration
	SessionTTL time.Duration

	IPLookupURL     string
	IPLookupTimeout time.Duration

	LoginLock    string
	LoginLockTTL time.Duration
	RedisURL     string

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HTTP_PORT", "4005")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("MONGO_DATABASE", "gamers_vault")
	v.SetDefault("JWT_EXPIRES_IN", "24h")
	v.SetDefault("SESSION_TTL", "1h")
	v.SetDefault("IP_LOOKUP_URL", "https://api.ipify.org/?format=json")
	v.SetDefault("IP_LOOKUP_TIMEOUT", "5s")
	v.SetDefault("LOGIN_LOCK", LockNone)
	v.SetDefault("LOGIN_LOCK_TTL", "10s")
	v.SetDefault("ADMIN_NAME", "Admin")
}

// Load reads .env if present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		HTTPPort:        v.GetString("HTTP_PORT"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		StoreDriver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		MongoURL:        v.GetString("MONGO_URL"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		JWTSecret:       v.GetString("JWT_USER_SECRETKEY"),
		JWTTTL:          v.GetDuration("JWT_EXPIRES_IN"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		IPLookupURL:     v.GetString("IP_LOOKUP_URL"),
		IPLookupTimeout: v.GetDuration("IP_LOOKUP_TIMEOUT"),
		LoginLock:       strings.ToLower(v.GetString("LOGIN_LOCK")),
		LoginLockTTL:    v.GetDuration("LOGIN_LOCK_TTL"),
		RedisURL:        v.GetString("REDIS_URL"),
		AdminEmail:      strings.ToLower(strings.TrimSpace(v.GetString("ADMIN_EMAIL"))),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		AdminName:       v.GetString("ADMIN_NAME"),
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_USER_SECRETKEY is required")
	}
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case DriverMongo:
		if c.MongoURL == "" {
			return errors.New("MONGO_URL is required for store driver \"mongo\"")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.LoginLock {
	case LockNone, LockMemory:
	case LockRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when LOGIN_LOCK=redis")
		}
	default:
		return fmt.Errorf("unknown LOGIN_LOCK %q", c.LoginLock)
	}
	return nil
}

// SeedAdmin reports whether a default admin should be ensured at start-up.
func (c Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}
