// Package config handles reading and writing the client's config.yaml and
// applying environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvServer = "APPLYNINJA_SERVER"
	EnvHome   = "APPLYNINJA_HOME"
	EnvDebug  = "APPLYNINJA_DEBUG"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the top-level structure for config.yaml.
type Config struct {
	Version int           `yaml:"version"`
	Server  ServerConfig  `yaml:"server"`
	History HistoryConfig `yaml:"history"`
	Payment PaymentConfig `yaml:"payment"`
	Upload  UploadConfig  `yaml:"upload"`
	Storage StorageConfig `yaml:"storage"`
	Debug   bool          `yaml:"debug"`
}

// ServerConfig locates the backend.
type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
}

// HistoryConfig controls the history poller.
type HistoryConfig struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
	StaleAfter     int `yaml:"stale_after"` // consecutive failures
}

// PaymentConfig controls the proof submission step.
type PaymentConfig struct {
	ProofDelayMs int `yaml:"proof_delay_ms"`
}

// UploadConfig controls the upload workflow.
type UploadConfig struct {
	RedirectDelayMs int `yaml:"redirect_delay_ms"`
}

// StorageConfig selects the profile slot backend.
type StorageConfig struct {
	Driver string `yaml:"driver"` // "sqlite" | "memory"
}

const homeDir = ".applyninja"
const configFile = "config.yaml"

// DBFile is the SQLite database name inside home.
const DBFile = "slots.db"

// DefaultHome returns $APPLYNINJA_HOME, or ~/.applyninja.
func DefaultHome() string {
	if h := os.Getenv(EnvHome); h != "" {
		return h
	}
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, homeDir)
	}
	return homeDir
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(home, configFile)
}

// ReadConfig reads config.yaml from home.
// Returns an error if the file is not found or YAML is malformed.
func ReadConfig(home string) (*Config, error) {
	data, err := os.ReadFile(Path(home))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// WriteConfig writes cfg to config.yaml in home.
// Creates home if it does not exist.
func WriteConfig(home string, cfg *Config) error {
	if err := os.MkdirAll(home, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(Path(home), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Server: ServerConfig{
			BaseURL: "http://localhost:8080",
		},
		History: HistoryConfig{
			PollIntervalMs: 3000,
			StaleAfter:     3,
		},
		Payment: PaymentConfig{
			ProofDelayMs: 1500,
		},
		Upload: UploadConfig{
			RedirectDelayMs: 1000,
		},
		Storage: StorageConfig{
			Driver: DriverSQLite,
		},
	}
}

// Load reads config.yaml from home, falling back to defaults when the file
// does not exist, then applies environment overrides and validates.
func Load(home string) (*Config, error) {
	cfg, err := ReadConfig(home)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
	} else if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file from the working directory if present. A
// missing file is not an error.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvServer); ok && v != "" {
		c.Server.BaseURL = v
	}
	if v, ok := lookup(EnvDebug); ok && v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDebug, err)
		}
		c.Debug = debug
	}
	return nil
}

// Validate checks that the config is usable.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("server.base_url %q must be an http(s) URL", c.Server.BaseURL)
	}
	if c.History.PollIntervalMs <= 0 {
		return fmt.Errorf("history.poll_interval_ms must be positive, got %d", c.History.PollIntervalMs)
	}
	if c.History.StaleAfter < 0 {
		return fmt.Errorf("history.stale_after must not be negative, got %d", c.History.StaleAfter)
	}
	if c.Payment.ProofDelayMs < 0 || c.Upload.RedirectDelayMs < 0 {
		return errors.New("delays must not be negative")
	}
	switch c.Storage.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q must be %q or %q", c.Storage.Driver, DriverSQLite, DriverMemory)
	}
	return nil
}

// PollInterval returns the history poll period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.History.PollIntervalMs) * time.Millisecond
}

// ProofDelay returns the pause shown while a payment proof is submitted.
func (c *Config) ProofDelay() time.Duration {
	return time.Duration(c.Payment.ProofDelayMs) * time.Millisecond
}

// RedirectDelay returns the pause before the dashboard is shown.
func (c *Config) RedirectDelay() time.Duration {
	return time.Duration(c.Upload.RedirectDelayMs) * time.Millisecond
}
