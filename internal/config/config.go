// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config manages the orchat configuration file.
//
// Configuration lives at ~/.orchat/config.toml with 0600 permissions; it
// holds the OpenRouter API key, so treat it like a credential store.
// Environment variables override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG TYPES
// =============================================================================

// Config is the root configuration.
type Config struct {
	// APIKey is the OpenRouter credential. Empty means unconfigured: the
	// TUI blocks behind a key prompt and sends fail immediately.
	APIKey string `toml:"api_key"`

	// Model is the OpenRouter model identifier or friendly name.
	Model string `toml:"model"`

	// BaseURL overrides the OpenRouter endpoint. Mainly for tests.
	BaseURL string `toml:"base_url,omitempty"`

	// IdleTimeoutSecs cancels a stream when no frame arrives for this many
	// seconds. 0 disables the watchdog.
	IdleTimeoutSecs int `toml:"idle_timeout_secs"`

	UI  UIConfig  `toml:"ui"`
	Log LogConfig `toml:"log"`
}

// UIConfig holds display settings.
type UIConfig struct {
	// Theme selects the color theme: "dark", "light", or "auto".
	Theme string `toml:"theme"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level: debug, info, warn, error.
	Level string `toml:"level"`

	// Path is the log file location. Empty uses ~/.orchat/orchat.log.
	Path string `toml:"path,omitempty"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Model:           "deepseek/deepseek-r1-0528-qwen3-8b:free",
		IdleTimeoutSecs: 120,
		UI:              UIConfig{Theme: "auto"},
		Log:             LogConfig{Level: "info"},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// Dir returns the configuration directory, ~/.orchat.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".orchat"), nil
}

// Path returns the configuration file path, ~/.orchat/config.toml.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ensureSecurePermissions fixes the config file mode if it is too open.
// SECURITY: The file holds the API key and must stay 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load reads the config file at the default path, falling back to defaults
// when the file does not exist. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if err := ensureSecurePermissions(path); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
		}
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to the default path with 0600 permissions.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to an explicit path with 0600 permissions.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Ensure permissions even if the file already existed
	if err := os.Chmod(path, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	fmt.Fprintln(file, "# orchat configuration file")
	fmt.Fprintln(file, "# This file contains your API key - keep permissions at 0600.")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS / VALIDATION / ENV
// =============================================================================

// fillDefaults fills zero values left by a partial config file.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Model == "" {
		c.Model = def.Model
	}
	if c.UI.Theme == "" {
		c.UI.Theme = def.UI.Theme
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.IdleTimeoutSecs < 0 {
		c.IdleTimeoutSecs = def.IdleTimeoutSecs
	}
}

// ValidationError describes a single invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks field values. Returns the first problem found.
func (c *Config) Validate() error {
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return ValidationError{Field: "ui.theme", Message: "must be dark, light, or auto"}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return ValidationError{Field: "log.level", Message: "must be debug, info, warn, or error"}
	}

	if c.IdleTimeoutSecs < 0 {
		return ValidationError{Field: "idle_timeout_secs", Message: "must be >= 0"}
	}
	if c.Model == "" {
		return ValidationError{Field: "model", Message: "must not be empty"}
	}
	return nil
}

// ApplyEnvOverrides applies ORCHAT_* environment variables over file values.
func (c *Config) ApplyEnvOverrides() {
	if key := os.Getenv("ORCHAT_API_KEY"); key != "" {
		c.APIKey = strings.TrimSpace(key)
	}
	if model := os.Getenv("ORCHAT_MODEL"); model != "" {
		c.Model = model
	}
	if url := os.Getenv("ORCHAT_BASE_URL"); url != "" {
		c.BaseURL = url
	}
	if level := os.Getenv("ORCHAT_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
}

// HasCredential reports whether an API key is present.
func (c *Config) HasCredential() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// IdleTimeout returns the stream idle timeout as a duration. Zero
// disables the watchdog.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSecs) * time.Second
}
