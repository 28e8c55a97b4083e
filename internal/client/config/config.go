package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"nexus/internal/session"
	"nexus/internal/storage"
)

// Store backends selectable through NEXUS_STORE.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

var ErrUnknownStore = errors.New("unknown store backend")

// Config is the client configuration read from the environment.
type Config struct {
	APIURL        string        `env:"NEXUS_API_URL" envDefault:"http://localhost:8000"`
	HTTPTimeout   time.Duration `env:"NEXUS_HTTP_TIMEOUT" envDefault:"30s"`
	Store         string        `env:"NEXUS_STORE" envDefault:"file"`
	StorePath     string        `env:"NEXUS_STORE_PATH"`
	StoreHashKey  string        `env:"NEXUS_STORE_HASH_KEY"`
	StoreBlockKey string        `env:"NEXUS_STORE_BLOCK_KEY"`
	LogLevel      string        `env:"NEXUS_LOG_LEVEL" envDefault:"info"`
	SentryDSN     string        `env:"SENTRY_DSN"`
	InspectorAddr string        `env:"NEXUS_INSPECTOR_ADDR" envDefault:"127.0.0.1:4040"`
}

// Load reads an optional .env file from the working directory, then parses
// the environment. Variables already set take precedence over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values env parsing cannot.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.APIURL == "" {
		return errors.New("NEXUS_API_URL must not be empty")
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("NEXUS_HTTP_TIMEOUT must be positive")
	}
	switch c.Store {
	case StoreFile, StoreSQLite, StoreMemory:
	default:
		return fmt.Errorf("%w %q (want %s, %s or %s)", ErrUnknownStore, c.Store, StoreFile, StoreSQLite, StoreMemory)
	}
	return nil
}

// OpenStore opens the configured session store. When NEXUS_STORE_HASH_KEY
// is set, values are sealed before they reach the backend. The returned
// close function releases the backend and is never nil.
func (c *Config) OpenStore() (session.Store, func() error, error) {
	var (
		store   session.Store
		closeFn = func() error { return nil }
	)

	switch c.Store {
	case StoreMemory:
		store = session.NewMemoryStore()
	case StoreSQLite:
		db, err := storage.NewSQLiteStore(c.StorePath)
		if err != nil {
			return nil, nil, err
		}
		store, closeFn = db, db.Close
	case StoreFile:
		fs, err := session.NewFileStore(c.StorePath)
		if err != nil {
			return nil, nil, err
		}
		store = fs
	default:
		return nil, nil, fmt.Errorf("%w %q", ErrUnknownStore, c.Store)
	}

	if c.StoreHashKey != "" {
		sealed, err := session.NewSealedStoreFromHex(store, c.StoreHashKey, c.StoreBlockKey)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		store = sealed
	}
	return store, closeFn, nil
}
