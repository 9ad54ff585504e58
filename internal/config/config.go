package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the client configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	Paths    PathsConfig    `yaml:"paths"`
	Messages MessagesConfig `yaml:"messages"`
}

// APIConfig holds the backend origin and HTTP settings.
type APIConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each request. Zero disables the limit.
	Timeout time.Duration `yaml:"timeout"`
}

// PathsConfig holds filesystem paths for local state.
type PathsConfig struct {
	Data     string `yaml:"data"`
	Database string `yaml:"database"`
	Log      string `yaml:"log"`
}

// MessagesConfig holds inbox polling settings.
type MessagesConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Environment variables that override the file.
const (
	EnvAPIURL       = "CAMPUS_API_URL"
	EnvDataDir      = "CAMPUS_DATA_DIR"
	EnvPollInterval = "CAMPUS_POLL_INTERVAL"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
		},
		Paths: PathsConfig{
			Data:     "./data",
			Database: "./data/campus.db",
			Log:      "./data/campus.log",
		},
		Messages: MessagesConfig{
			PollInterval: 5 * time.Second,
		},
	}
}

// Load reads a YAML config file over the defaults and applies environment overrides.
// A missing file is not an error; the defaults are used instead.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.Paths.Data = v
		c.Paths.Database = filepath.Join(v, "campus.db")
		c.Paths.Log = filepath.Join(v, "campus.log")
	}
	if v := strings.TrimSpace(os.Getenv(EnvPollInterval)); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvPollInterval, err)
		}
		c.Messages.PollInterval = d
	}
	c.API.BaseURL = strings.TrimRight(c.API.BaseURL, "/")
	return nil
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url cannot be empty")
	}
	if c.Messages.PollInterval <= 0 {
		return fmt.Errorf("messages.poll_interval must be > 0")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout cannot be negative")
	}
	return nil
}
