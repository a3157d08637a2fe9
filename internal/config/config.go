package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Duration is a time.Duration read from strings such as "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON and TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config represents the application configuration.
type Config struct {
	Port               string   `json:"port" toml:"port"`
	SpoonacularAPIKey  string   `json:"spoonacular_api_key" toml:"spoonacular_api_key"`
	SpoonacularBaseURL string   `json:"spoonacular_base_url" toml:"spoonacular_base_url"`
	RemoteTimeout      Duration `json:"remote_timeout" toml:"remote_timeout"`
	StaticDir          string   `json:"static_dir" toml:"static_dir"`
	RecipesFile        string   `json:"recipes_file" toml:"recipes_file"`
	DatabaseURL        string   `json:"DATABASE_URL" toml:"database_url"`
	LogLevel           string   `json:"log_level" toml:"log_level"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Port:               "8080",
		SpoonacularBaseURL: "https://api.spoonacular.com",
		RemoteTimeout:      Duration{5 * time.Second},
		StaticDir:          "static",
		LogLevel:           "info",
	}
}

// Load builds the configuration from defaults, the optional file at path and
// the environment, in that order. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.DecodeFile(path, c); err != nil {
			return fmt.Errorf("failed to decode %s: %w", path, err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString := func(dst *string, name string) {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
	setString(&c.Port, "PORT")
	setString(&c.SpoonacularAPIKey, "SPOONACULAR_API_KEY")
	setString(&c.SpoonacularBaseURL, "SPOONACULAR_BASE_URL")
	setString(&c.StaticDir, "STATIC_DIR")
	setString(&c.RecipesFile, "RECIPES_FILE")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("REMOTE_TIMEOUT"); v != "" {
		if err := c.RemoteTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid REMOTE_TIMEOUT %q: %w", v, err)
		}
	}
	return nil
}

// RecipesPath returns the local dataset file, defaulting to recipes.json in
// the static directory.
func (c *Config) RecipesPath() string {
	if c.RecipesFile != "" {
		return c.RecipesFile
	}
	return filepath.Join(c.StaticDir, "recipes.json")
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return ValidationError{Field: "port", Message: fmt.Sprintf("invalid port %q", c.Port)}
	}
	if c.RemoteTimeout.Duration <= 0 {
		return ValidationError{Field: "remote_timeout", Message: "must be positive"}
	}
	if c.StaticDir == "" {
		return ValidationError{Field: "static_dir", Message: "is required"}
	}
	if c.SpoonacularBaseURL == "" {
		return ValidationError{Field: "spoonacular_base_url", Message: "is required"}
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return ValidationError{Field: "log_level", Message: err.Error()}
	}
	return nil
}
