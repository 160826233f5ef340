// Package config loads and saves the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Cache configuration
	Cache CacheConfig `toml:"cache"`

	// Meta adjustments configuration
	Meta MetaConfig `toml:"meta"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the card database
	AutoMigrate bool   `toml:"auto_migrate"` // Apply schema migrations on open
}

// CacheConfig contains card lookup cache settings.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`  // Enable card lookup caching
	TTL     string `toml:"ttl"`      // Cache TTL (e.g., "600s")
	MaxSize int    `toml:"max_size"` // Max cache entries
}

// MetaConfig contains meta adjustment settings.
type MetaConfig struct {
	FilePath string `toml:"file_path"` // Path to the adjustments TOML file
	Watch    bool   `toml:"watch"`     // Reload on file change
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "",
			AutoMigrate: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     "600s",
			MaxSize: 1000,
		},
		Meta: MetaConfig{
			FilePath: "",
			Watch:    false,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configPath returns the path to the configuration file.
func configPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".shadowverse-2pick")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// defaultDatabasePath returns the database location used when the config
// leaves it empty.
func defaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".shadowverse-2pick", "cards.db"), nil
}

// Load loads the configuration from disk. Returns default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if data, err := os.ReadFile(path); err == nil {
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if config.Database.Path == "" {
		config.Database.Path, err = defaultDatabasePath()
		if err != nil {
			return nil, err
		}
	}
	return config, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}
	if c.Cache.MaxSize < 0 {
		return fmt.Errorf("cache max size cannot be negative: %d", c.Cache.MaxSize)
	}
	return nil
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}
