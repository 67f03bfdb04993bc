// Package config loads the collector configuration from
// ~/.meta-collector/config.toml, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/meta-collector/internal/collection"
	"github.com/ramonehamilton/meta-collector/internal/errs"
	"github.com/ramonehamilton/meta-collector/internal/export"
	"github.com/ramonehamilton/meta-collector/internal/format"
	"github.com/ramonehamilton/meta-collector/internal/logging"
	"github.com/ramonehamilton/meta-collector/internal/meta"
	"github.com/ramonehamilton/meta-collector/internal/playability"
	"github.com/ramonehamilton/meta-collector/internal/session"
	"github.com/ramonehamilton/meta-collector/internal/wishlist"
)

// Environment variables that override file values.
const (
	EnvDBPath   = "COLLECTOR_DB_PATH"
	EnvLogLevel = "COLLECTOR_LOG_LEVEL"
	EnvFormat   = "COLLECTOR_FORMAT"
)

// DirName is the configuration directory under the home directory.
const DirName = ".meta-collector"

// Config represents the application configuration.
type Config struct {
	// Meta data sources and scoring
	Meta MetaConfig `toml:"meta"`

	// Collection input
	Collection CollectionConfig `toml:"collection"`

	// Interactive session
	Session SessionConfig `toml:"session"`

	// Wishlist export
	Export ExportConfig `toml:"export"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// MetaConfig contains meta fetching and scoring settings.
type MetaConfig struct {
	Format         string   `toml:"format"`          // Default format (e.g., "pauper")
	Sources        []string `toml:"sources"`         // Enabled deck sources
	GoldfishDecks  int      `toml:"goldfish_decks"`  // Archetypes fetched from MTGGoldfish
	Top8Events     int      `toml:"top8_events"`     // Events fetched from MTGTop8
	CopyCap        int      `toml:"copy_cap"`        // Copies counted per deck
	RequiredPolicy string   `toml:"required_policy"` // "max" or "sum"
	CacheTTL       string   `toml:"cache_ttl"`       // Page cache TTL (e.g., "12h")
	RequestTimeout string   `toml:"request_timeout"` // Per request timeout (e.g., "30s")
}

// CollectionConfig contains collection input settings.
type CollectionConfig struct {
	File       string `toml:"file"`       // Optional collection file loaded at startup
	Duplicates string `toml:"duplicates"` // "overwrite" or "accumulate"
	Watch      bool   `toml:"watch"`      // Reload when File changes
}

// SessionConfig contains interactive session settings.
type SessionConfig struct {
	PageSize     int    `toml:"page_size"`     // Rows per page
	SelectAction string `toml:"select_action"` // Default confirm action
	ShowImages   bool   `toml:"show_images"`   // Print image links in card details
}

// ExportConfig contains wishlist export settings.
type ExportConfig struct {
	Format string `toml:"format"` // "text", "csv" or "json"
	Dir    string `toml:"dir"`    // Output directory
}

// AppConfig contains general application settings.
type AppConfig struct {
	LogLevel string `toml:"log_level"` // debug, info, warn, error
	LogFile  string `toml:"log_file"`  // Log file used by the interactive session
	DBPath   string `toml:"db_path"`   // sqlite database
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dir := "~/" + DirName
	return &Config{
		Meta: MetaConfig{
			Format:         format.Default.String(),
			Sources:        []string{meta.SourceGoldfish, meta.SourceTop8},
			GoldfishDecks:  meta.DefaultGoldfishConfig().Decks,
			Top8Events:     meta.DefaultTop8Config().Events,
			CopyCap:        playability.DefaultCopyCap,
			RequiredPolicy: string(wishlist.RequireMax),
			CacheTTL:       "12h",
			RequestTimeout: "30s",
		},
		Collection: CollectionConfig{
			File:       "",
			Duplicates: string(collection.Overwrite),
			Watch:      true,
		},
		Session: SessionConfig{
			PageSize:     session.DefaultHeight,
			SelectAction: session.ActionAddCopy.String(),
			ShowImages:   false,
		},
		Export: ExportConfig{
			Format: string(export.FormatText),
			Dir:    dir + "/exports",
		},
		App: AppConfig{
			LogLevel: "info",
			LogFile:  dir + "/collector.log",
			DBPath:   dir + "/collector.db",
		},
	}
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, DirName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return configDir, nil
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default path.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration at path. A missing file yields the
// defaults. A .env file in the working directory and one next to path are
// loaded into the environment without replacing variables already set, then
// COLLECTOR_* variables override file values. Paths are expanded.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, errs.Configuration("config file", path, err.Error())
		}
	}

	for _, envFile := range []string{".env", filepath.Join(filepath.Dir(path), ".env")} {
		if err := loadDotEnv(envFile); err != nil {
			return nil, err
		}
	}
	config.applyEnv(os.Getenv)

	if err := config.expandPaths(); err != nil {
		return nil, err
	}
	return config, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	logging.Log.WithField("file", path).Debug("loaded environment file")
	return nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvDBPath); v != "" {
		c.App.DBPath = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.App.LogLevel = v
	}
	if v := getenv(EnvFormat); v != "" {
		c.Meta.Format = v
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Collection.File, &c.Export.Dir, &c.App.LogFile, &c.App.DBPath} {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return errs.Configuration("path", *p, err.Error())
		}
		*p = expanded
	}
	return nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values. Every failure is a
// ConfigurationError.
func (c *Config) Validate() error {
	if _, err := c.GetFormat(); err != nil {
		return err
	}

	if len(c.Meta.Sources) == 0 {
		return errs.Configuration("meta.sources", "", "at least one source is required")
	}
	for _, s := range c.Meta.Sources {
		if s != meta.SourceGoldfish && s != meta.SourceTop8 {
			return errs.Configuration("meta.sources", s, fmt.Sprintf("expected %s or %s", meta.SourceGoldfish, meta.SourceTop8))
		}
	}

	if c.Meta.GoldfishDecks < 1 {
		return errs.Configuration("meta.goldfish_decks", fmt.Sprint(c.Meta.GoldfishDecks), "must be at least 1")
	}
	if c.Meta.Top8Events < 1 {
		return errs.Configuration("meta.top8_events", fmt.Sprint(c.Meta.Top8Events), "must be at least 1")
	}
	if c.Meta.CopyCap < 1 {
		return errs.Configuration("meta.copy_cap", fmt.Sprint(c.Meta.CopyCap), "must be at least 1")
	}
	if _, err := c.GetRequiredPolicy(); err != nil {
		return err
	}
	if _, err := c.GetCacheTTL(); err != nil {
		return err
	}
	if _, err := c.GetRequestTimeout(); err != nil {
		return err
	}

	if _, err := c.GetDuplicatePolicy(); err != nil {
		return err
	}

	if c.Session.PageSize < 1 {
		return errs.Configuration("session.page_size", fmt.Sprint(c.Session.PageSize), "must be at least 1")
	}
	if _, err := c.GetSelectAction(); err != nil {
		return err
	}

	if _, err := c.GetExportFormat(); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(c.App.LogLevel); err != nil {
		return err
	}
	if strings.TrimSpace(c.App.DBPath) == "" {
		return errs.Configuration("app.db_path", "", "must not be empty")
	}

	return nil
}

// GetFormat returns the configured default format.
func (c *Config) GetFormat() (format.Format, error) {
	return format.Parse(c.Meta.Format)
}

// GetRequiredPolicy returns the configured required-copies policy.
func (c *Config) GetRequiredPolicy() (wishlist.RequiredPolicy, error) {
	return wishlist.ParseRequiredPolicy(c.Meta.RequiredPolicy)
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return parseDuration("meta.cache_ttl", c.Meta.CacheTTL)
}

// GetRequestTimeout returns the request timeout as a duration.
func (c *Config) GetRequestTimeout() (time.Duration, error) {
	return parseDuration("meta.request_timeout", c.Meta.RequestTimeout)
}

// GetDuplicatePolicy returns the collection duplicate policy.
func (c *Config) GetDuplicatePolicy() (collection.DuplicatePolicy, error) {
	return collection.ParseDuplicatePolicy(c.Collection.Duplicates)
}

// GetSelectAction returns the default confirm action.
func (c *Config) GetSelectAction() (session.Action, error) {
	return session.ParseAction(c.Session.SelectAction)
}

// GetExportFormat returns the export format.
func (c *Config) GetExportFormat() (export.Format, error) {
	return export.ParseFormat(c.Export.Format)
}

func parseDuration(field, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, errs.Configuration(field, value, "expected a duration such as 30s or 12h")
	}
	if d < 0 {
		return 0, errs.Configuration(field, value, "must not be negative")
	}
	return d, nil
}
