package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/abira1/Academy-Management-System/internal/calculator"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Redis     RedisConfig
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	Reporting ReportingConfig
	Seed      SeedConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// StoreConfig selects the record store backend.
type StoreConfig struct {
	Driver string
	DBPath string
}

// RedisConfig holds settings for the Redis record store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds token settings and the staff logins.
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	AdminUsername     string
	AdminPassword     string
	ReceptionUsername string
	ReceptionPassword string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
	IncomePolicy calculator.IncomePolicy
}

// SeedConfig controls first-run demo data.
type SeedConfig struct {
	OnEmpty bool
}

// LogConfig holds logging options.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	ttl, err := getenvDuration("TOKEN_TTL", 12*time.Hour)
	if err != nil {
		return nil, err
	}
	seed, err := getenvBool("SEED_ON_EMPTY", false)
	if err != nil {
		return nil, err
	}
	policy, err := calculator.ParseIncomePolicy(os.Getenv("INCOME_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("INCOME_POLICY: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Store: StoreConfig{
			Driver: strings.ToLower(getenvWithDefault("STORE_DRIVER", DriverSQLite)),
			DBPath: getenvWithDefault("DB_PATH", "./data/academy.db"),
		},
		Redis: RedisConfig{
			Addr:     getenvWithDefault("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
			Prefix:   getenvWithDefault("REDIS_PREFIX", "academy"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "academy"),
		},
		Auth: AuthConfig{
			JWTSecret:         os.Getenv("JWT_SECRET"),
			TokenTTL:          ttl,
			AdminUsername:     getenvWithDefault("ADMIN_USERNAME", "admin"),
			AdminPassword:     os.Getenv("ADMIN_PASSWORD"),
			ReceptionUsername: os.Getenv("RECEPTION_USERNAME"),
			ReceptionPassword: os.Getenv("RECEPTION_PASSWORD"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("SUMMARY_CRON", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "Asia/Dhaka"),
			IncomePolicy: policy,
		},
		Seed: SeedConfig{
			OnEmpty: seed,
		},
		Log: LogConfig{
			Level:  getenvWithDefault("LOG_LEVEL", "info"),
			Format: getenvWithDefault("LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.DBPath == "" {
			return errors.New("DB_PATH must be provided for the sqlite store")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return errors.New("REDIS_ADDR must be provided for the redis store")
		}
	case DriverMongo:
		if c.MongoDB.URI == "" {
			return errors.New("MONGODB_URI must be provided for the mongo store")
		}
		if c.MongoDB.DBName == "" {
			return errors.New("MONGODB_DB_NAME must not be empty")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of sqlite, redis, mongo, memory", c.Store.Driver)
	}

	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("JWT_SECRET must be provided")
	case c.Auth.TokenTTL <= 0:
		return errors.New("TOKEN_TTL must be positive")
	case c.Auth.AdminUsername == "":
		return errors.New("ADMIN_USERNAME must not be empty")
	case c.Auth.AdminPassword == "":
		return errors.New("ADMIN_PASSWORD must be provided")
	}

	if c.Auth.ReceptionUsername != "" && c.Auth.ReceptionPassword == "" {
		return errors.New("RECEPTION_PASSWORD must be provided when RECEPTION_USERNAME is set")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("SUMMARY_CRON must be provided")
	}

	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Reporting.Timezone, err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT %q is not one of text, json", c.Log.Format)
	}

	return nil
}

// Location returns the reporting time zone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getenvBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration such as 12h: %w", key, err)
	}
	return v, nil
}
