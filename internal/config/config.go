package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDebounceMs   = 1000
	DefaultShareBaseURL = "http://localhost:5173"
	DefaultLogLevel     = "info"
	DefaultLogMaxSizeMB = 10
)

// Config represents the application configuration
type Config struct {
	// DataDir holds the offline snapshot and the auth session
	DataDir string `yaml:"data_dir"`
	// DBPath is the remote board store database
	DBPath string `yaml:"db_path"`
	// SocketPath is the notification daemon socket; empty disables it
	SocketPath   string `yaml:"socket_path"`
	DebounceMs   int    `yaml:"debounce_ms"`
	ShareBaseURL string `yaml:"share_base_url"`
	LogLevel     string `yaml:"log_level"`
	LogMaxSizeMB int    `yaml:"log_max_size_mb"`
	Theme        Theme  `yaml:"theme"`
}

// Debounce returns the write debounce window
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// BaseDir returns ~/.circles, the default home for data, logs and the socket
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".circles"), nil
}

// loadThemeFile merges a theme from CIRCLES_THEME_FILE over the config
func loadThemeFile(config *Config) {
	themeFile := os.Getenv("CIRCLES_THEME_FILE")
	if themeFile == "" {
		return
	}

	themeData, err := os.ReadFile(themeFile)
	if err != nil {
		return
	}

	var themeConfig struct {
		Theme Theme `yaml:"theme"`
	}
	if yaml.Unmarshal(themeData, &themeConfig) == nil {
		config.Theme.MergeFrom(themeConfig.Theme)
	}
}

// Load reads the config file, fills defaults and applies env overrides.
// A missing file is not an error.
func Load() (*Config, error) {
	var config Config

	configPath, err := getConfigPath()
	if err == nil {
		data, readErr := os.ReadFile(configPath)
		switch {
		case readErr == nil:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
			}
		case !os.IsNotExist(readErr):
			return nil, readErr
		}
	}

	loadThemeFile(&config)
	config.applyEnv()
	if err := config.applyDefaults(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save writes the config to the user's config directory
func (c *Config) Save() error {
	configPath, err := getConfigPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0o644)
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "circles", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".config", "circles", "config.yaml"), nil
}

// applyEnv lets CIRCLES_* variables override file values
func (c *Config) applyEnv() {
	if v := os.Getenv("CIRCLES_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("CIRCLES_DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CIRCLES_SOCKET_PATH"); v != "" {
		c.SocketPath = v
	}
	if v := os.Getenv("CIRCLES_DEBOUNCE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			c.DebounceMs = ms
		}
	}
	if v := os.Getenv("CIRCLES_SHARE_BASE_URL"); v != "" {
		c.ShareBaseURL = v
	}
	if v := os.Getenv("CIRCLES_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// applyDefaults fills in missing configuration with defaults
func (c *Config) applyDefaults() error {
	if c.DataDir == "" || c.DBPath == "" || c.SocketPath == "" {
		base, err := BaseDir()
		if err != nil {
			return fmt.Errorf("failed to resolve home directory: %w", err)
		}
		if c.DataDir == "" {
			c.DataDir = filepath.Join(base, "data")
		}
		if c.DBPath == "" {
			c.DBPath = filepath.Join(base, "circles.db")
		}
		if c.SocketPath == "" {
			c.SocketPath = filepath.Join(base, "circles.sock")
		}
	}
	if c.DebounceMs <= 0 {
		c.DebounceMs = DefaultDebounceMs
	}
	if c.ShareBaseURL == "" {
		c.ShareBaseURL = DefaultShareBaseURL
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogMaxSizeMB <= 0 {
		c.LogMaxSizeMB = DefaultLogMaxSizeMB
	}
	c.Theme.ApplyDefaults()
	return nil
}
