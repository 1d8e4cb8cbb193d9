// ABOUTME: Configuration management for linkhoard
// ABOUTME: JSON config under XDG paths, auth token overridable via environment or .env

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config stores linkhoard configuration.
type Config struct {
	// APIEndpoint is the base URL of the bookmarking API. Empty means the
	// production Pinboard endpoint.
	APIEndpoint string `json:"api_endpoint,omitempty"`

	// AuthToken is the API token (user:hex). The LINKHOARD_AUTH_TOKEN
	// environment variable (or a .env file) takes precedence so the token
	// can stay out of the config file.
	AuthToken string `json:"auth_token,omitempty"`

	// DataDir is the root directory for the database and preferences.
	// Supports ~ expansion. Defaults to ~/.local/share/linkhoard.
	DataDir string `json:"data_dir,omitempty"`

	// LogLevel sets logging verbosity: debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`
}

const authTokenEnv = "LINKHOARD_AUTH_TOKEN"

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "linkhoard.db")
}

// PrefsPath returns the preferences file path inside the data directory.
func (c *Config) PrefsPath() string {
	return filepath.Join(c.GetDataDir(), "prefs.json")
}

// GetLogLevel returns the configured log level, defaulting to warn.
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "warn"
	}
	return c.LogLevel
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "linkhoard", "config.json")
}

// Load reads config from disk, then applies environment overrides.
func Load() (*Config, error) {
	// Best effort; a missing .env is the normal case
	_ = godotenv.Load()

	var cfg Config
	path := GetConfigPath()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if token := os.Getenv(authTokenEnv); token != "" {
		cfg.AuthToken = token
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return os.Rename(tmp, path)
}

func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "linkhoard")
}
