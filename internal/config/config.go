package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// Config represents the tool configuration. Values come from the config
// file and are then overridden by WRETCHED_* environment variables.
type Config struct {
	Minify    bool   `toml:"minify" env:"WRETCHED_MINIFY"`
	OutputDir string `toml:"output_dir" env:"WRETCHED_OUTPUT_DIR"`
	LogLevel  string `toml:"log_level" env:"WRETCHED_LOG_LEVEL"`
	LogFormat string `toml:"log_format" env:"WRETCHED_LOG_FORMAT"`
	NoColor   bool   `toml:"no_color" env:"WRETCHED_NO_COLOR"`
	// Seed fixes the shuffle of `simulate`; 0 picks a random seed
	Seed uint64 `toml:"seed" env:"WRETCHED_SEED"`
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		LogLevel:  "warn",
		LogFormat: "text",
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "wretched", "config.toml")
}

// LoadConfig loads the config file, falling back to the defaults when it does
// not exist, and applies environment overrides
func LoadConfig() (*Config, error) {
	return LoadFile(GetConfigFilePath())
}

// LoadFile is LoadConfig for an explicit path
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error decoding config file %s: %w", path, err)
	}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("error reading environment: %w", err)
	}
	return cfg, nil
}

// WriteDefault creates the config file with default values. An existing file
// is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config file already exists: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(Default()); err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	return nil
}
