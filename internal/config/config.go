// Package config reads runtime settings from the environment and builds the
// logger and snapshot store they describe.
package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"agri-inventory/internal/app"
	"agri-inventory/internal/core"
	"agri-inventory/internal/db"
	"agri-inventory/internal/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	// Storage
	StoreDriver string
	DataFile    string
	DatabaseURL string

	// Server
	Port           string
	AllowedOrigins []string
	Environment    string

	// Logging
	LogLevel string

	// Presentation
	Locale         language.Tag
	CurrencySymbol string

	// Persistence cadence
	AutosaveInterval time.Duration

	// Seed warehouse created when nothing has been saved yet
	DefaultWarehouseName     string
	DefaultWarehouseLocation string
	DefaultWarehouseCapacity int
}

// Load reads the environment. Unset variables take their defaults; malformed
// values are reported rather than silently replaced.
func Load() (*Config, error) {
	cfg := &Config{
		StoreDriver:              strings.ToLower(getEnv("STORE_DRIVER", DriverFile)),
		DataFile:                 getEnv("DATA_FILE", "data/inventory.json"),
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		Port:                     getEnv("SERVER_PORT", "8080"),
		AllowedOrigins:           splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		Environment:              getEnv("ENVIRONMENT", "development"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		CurrencySymbol:           getEnv("CURRENCY_SYMBOL", "Rp"),
		DefaultWarehouseName:     getEnv("DEFAULT_WAREHOUSE_NAME", "Main Warehouse"),
		DefaultWarehouseLocation: getEnv("DEFAULT_WAREHOUSE_LOCATION", "Default Location"),
	}

	switch cfg.StoreDriver {
	case DriverFile, DriverPostgres, DriverMemory:
	default:
		return nil, fmt.Errorf("STORE_DRIVER %q: must be one of file, postgres, memory", cfg.StoreDriver)
	}
	if cfg.StoreDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("STORE_DRIVER=postgres requires DATABASE_URL")
	}

	locale, err := language.Parse(getEnv("LOCALE", "id-ID"))
	if err != nil {
		return nil, fmt.Errorf("LOCALE: %w", err)
	}
	cfg.Locale = locale

	cfg.AutosaveInterval, err = time.ParseDuration(getEnv("AUTOSAVE_INTERVAL", "30s"))
	if err != nil {
		return nil, fmt.Errorf("AUTOSAVE_INTERVAL: %w", err)
	}
	if cfg.AutosaveInterval < 0 {
		return nil, fmt.Errorf("AUTOSAVE_INTERVAL cannot be negative")
	}

	cfg.DefaultWarehouseCapacity, err = strconv.Atoi(getEnv("DEFAULT_WAREHOUSE_CAPACITY", "100"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_WAREHOUSE_CAPACITY: %w", err)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// NewLogger builds the process logger: JSON lines in production, text otherwise.
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// AppOptions builds the application service options for this configuration.
func (c *Config) AppOptions(logger *logrus.Logger) app.Options {
	return app.Options{
		IDs:    core.UUIDGenerator{},
		Clock:  core.SystemClock{},
		Locale: c.Locale,
		Logger: logger,
		DefaultWarehouse: app.AddWarehouseRequest{
			Name:     c.DefaultWarehouseName,
			Location: c.DefaultWarehouseLocation,
			Capacity: c.DefaultWarehouseCapacity,
		},
	}
}

// InitStore opens the snapshot store selected by StoreDriver. The returned
// close function releases any connection pool and is never nil.
func InitStore(ctx context.Context, cfg *Config) (store.SnapshotStore, func(), error) {
	switch cfg.StoreDriver {
	case DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return store.NewPostgresStore(pool), pool.Close, nil
	case DriverMemory:
		return store.NewMemoryStore(), func() {}, nil
	default:
		return store.NewFileStore(cfg.DataFile), func() {}, nil
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
