// Package config loads and saves the application configuration from
// ~/.eternal-forge/config.toml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Card dataset configuration
	Cards CardsConfig `toml:"cards"`

	// Deck directory watcher configuration
	Watcher WatcherConfig `toml:"watcher"`

	// Simulation defaults
	Simulation SimulationConfig `toml:"simulation"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"` // Bind address
	Port int    `toml:"port"` // Listen port
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	Path        string `toml:"path"`         // Path to the SQLite database file
	AutoMigrate bool   `toml:"auto_migrate"` // Run pending migrations on startup
}

// CardsConfig contains card dataset settings.
type CardsConfig struct {
	DataFile   string `toml:"data_file"`   // Path to eternal-cards.json
	DatasetURL string `toml:"dataset_url"` // Override for the dataset download URL
}

// WatcherConfig contains deck directory watching settings.
type WatcherConfig struct {
	Enabled bool   `toml:"enabled"` // Watch a directory for dropped deck lists
	DeckDir string `toml:"deck_dir"`
}

// SimulationConfig contains Monte Carlo defaults.
type SimulationConfig struct {
	OpeningHandTrials int `toml:"opening_hand_trials"` // Draw simulator trial count
	BattleGames       int `toml:"battle_games"`        // Battle simulator game count
	GoldfishTurns     int `toml:"goldfish_turns"`      // Goldfish auto-play turn count
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8585,
		},
		Database: DatabaseConfig{
			Path:        "",
			AutoMigrate: true,
		},
		Cards: CardsConfig{
			DataFile:   "",
			DatasetURL: "",
		},
		Watcher: WatcherConfig{
			Enabled: false,
			DeckDir: "",
		},
		Simulation: SimulationConfig{
			OpeningHandTrials: 1000,
			BattleGames:       100,
			GoldfishTurns:     10,
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// configDir returns the dot directory under the user home, creating it if
// needed.
func configDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, ".eternal-forge")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	return dir, nil
}

func configPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultDatabasePath returns the database location used when the config
// leaves it empty.
func DefaultDatabasePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "eternal-forge.db"), nil
}

// Load loads the configuration from disk. Returns the default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return &config, nil
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
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Simulation.OpeningHandTrials <= 0 {
		return fmt.Errorf("opening hand trials must be positive: %d", c.Simulation.OpeningHandTrials)
	}
	if c.Simulation.BattleGames <= 0 {
		return fmt.Errorf("battle games must be positive: %d", c.Simulation.BattleGames)
	}
	if c.Simulation.GoldfishTurns <= 0 {
		return fmt.Errorf("goldfish turns must be positive: %d", c.Simulation.GoldfishTurns)
	}
	if c.Watcher.Enabled && c.Watcher.DeckDir == "" {
		return fmt.Errorf("watcher enabled without a deck directory")
	}
	return nil
}

// Addr returns the server bind address in host:port form.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
