// Package config loads folio's typed configuration and user settings.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Storage selects the key-value backend.
type Storage string

const (
	StorageDiskv  Storage = "diskv"
	StorageSQLite Storage = "sqlite"
	StorageMemory Storage = "memory"
)

// Config holds process configuration. Zero values fall back to the defaults
// through the accessor methods.
type Config struct {
	Path             string
	Storage          Storage
	BooksDir         string
	CoversDir        string
	CoverWidth       int
	CoverHeight      int
	CoverWorkers     int
	ProgressDebounce time.Duration
	SessionDebounce  time.Duration
	LogLevel         string
}

const (
	defaultPath             = "~/.folio"
	defaultCoverWidth       = 300
	defaultCoverHeight      = 420
	defaultCoverWorkers     = 2
	defaultProgressDebounce = 1500 * time.Millisecond
	defaultSessionDebounce  = 250 * time.Millisecond
)

// Default returns a Config rooted at path with every other field defaulted.
func Default(path string) *Config {
	return &Config{
		Path:             path,
		Storage:          StorageDiskv,
		CoverWidth:       defaultCoverWidth,
		CoverHeight:      defaultCoverHeight,
		CoverWorkers:     defaultCoverWorkers,
		ProgressDebounce: defaultProgressDebounce,
		SessionDebounce:  defaultSessionDebounce,
		LogLevel:         "info",
	}
}

// Load reads configuration from .folio.yaml, FOLIO_* environment variables
// and an optional .env file, in increasing order of precedence for the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("path", defaultPath)
	v.SetDefault("storage", string(StorageDiskv))
	v.SetDefault("books_dir", "")
	v.SetDefault("covers_dir", "")
	v.SetDefault("cover_width", defaultCoverWidth)
	v.SetDefault("cover_height", defaultCoverHeight)
	v.SetDefault("cover_workers", defaultCoverWorkers)
	v.SetDefault("progress_debounce", defaultProgressDebounce)
	v.SetDefault("session_debounce", defaultSessionDebounce)
	v.SetDefault("log_level", "info")

	v.SetConfigName(".folio") // .yaml is implicit
	v.SetEnvPrefix("FOLIO")
	v.AutomaticEnv()

	if override := os.Getenv("FOLIO_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	cfg := &Config{
		Path:             v.GetString("path"),
		Storage:          Storage(strings.ToLower(strings.TrimSpace(v.GetString("storage")))),
		BooksDir:         v.GetString("books_dir"),
		CoversDir:        v.GetString("covers_dir"),
		CoverWidth:       v.GetInt("cover_width"),
		CoverHeight:      v.GetInt("cover_height"),
		CoverWorkers:     v.GetInt("cover_workers"),
		ProgressDebounce: v.GetDuration("progress_debounce"),
		SessionDebounce:  v.GetDuration("session_debounce"),
		LogLevel:         v.GetString("log_level"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the subsystem cannot run with.
func (c *Config) Validate() error {
	switch c.Storage {
	case "", StorageDiskv, StorageSQLite, StorageMemory:
	default:
		return fmt.Errorf("config: unknown storage %q (expected diskv, sqlite or memory)", c.Storage)
	}
	if c.CoverWidth < 0 || c.CoverHeight < 0 {
		return errors.New("config: cover dimensions cannot be negative")
	}
	if c.CoverWorkers < 0 {
		return errors.New("config: cover_workers cannot be negative")
	}
	if c.ProgressDebounce < 0 || c.SessionDebounce < 0 {
		return errors.New("config: debounce intervals cannot be negative")
	}
	return nil
}

// BasePath is the expanded data directory.
func (c *Config) BasePath() string {
	p := c.Path
	if p == "" {
		p = defaultPath
	}
	if expanded, err := homedir.Expand(p); err == nil {
		p = expanded
	}
	return filepath.Clean(p)
}

// Backend returns the configured storage backend.
func (c *Config) Backend() Storage {
	if c.Storage == "" {
		return StorageDiskv
	}
	return c.Storage
}

// StatePath is the diskv directory for session state.
func (c *Config) StatePath() string {
	return filepath.Join(c.BasePath(), "state")
}

// SQLitePath is the database file used by the sqlite backend.
func (c *Config) SQLitePath() string {
	return filepath.Join(c.BasePath(), "folio.db")
}

// BookDir is where imported books are copied.
func (c *Config) BookDir() string {
	return c.dirOr(c.BooksDir, "books")
}

// CoverDir is where rendered covers are cached.
func (c *Config) CoverDir() string {
	return c.dirOr(c.CoversDir, "covers")
}

func (c *Config) dirOr(dir, fallback string) string {
	if dir == "" {
		return filepath.Join(c.BasePath(), fallback)
	}
	if expanded, err := homedir.Expand(dir); err == nil {
		dir = expanded
	}
	return filepath.Clean(dir)
}

// CoverSize is the raster size covers are rendered at.
func (c *Config) CoverSize() (int, int) {
	w, h := c.CoverWidth, c.CoverHeight
	if w <= 0 {
		w = defaultCoverWidth
	}
	if h <= 0 {
		h = defaultCoverHeight
	}
	return w, h
}

// Workers bounds concurrent background cover extraction.
func (c *Config) Workers() int {
	if c.CoverWorkers <= 0 {
		return defaultCoverWorkers
	}
	return c.CoverWorkers
}

// ProgressDelay is the debounce interval for page-change saves.
func (c *Config) ProgressDelay() time.Duration {
	if c.ProgressDebounce <= 0 {
		return defaultProgressDebounce
	}
	return c.ProgressDebounce
}

// SessionDelay is the debounce interval for session state writes. Zero
// makes every write synchronous.
func (c *Config) SessionDelay() time.Duration {
	if c.SessionDebounce < 0 {
		return defaultSessionDebounce
	}
	return c.SessionDebounce
}

// Level maps LogLevel onto slog.
func (c *Config) Level() slog.Level {
	return ParseLevel(c.LogLevel)
}

// ParseLevel maps debug/info/warn/error onto slog, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
