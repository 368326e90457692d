package model

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides, e.g.
// TODOAPP_SERVER_PORT overrides server.port.
const EnvPrefix = "TODOAPP"

// AppInfo identifies the running application.
type AppInfo struct {
	Name    string `mapstructure:"name" yaml:"name"`
	Version string `mapstructure:"version" yaml:"version"`
}

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	Host           string        `mapstructure:"host" yaml:"host"`
	Port           int           `mapstructure:"port" yaml:"port"`
	CORSOrigins    []string      `mapstructure:"cors_origins" yaml:"cors_origins"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the server's storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// DSN is a file path (or ":memory:") for sqlite, or a connection
	// URL for postgres.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// APIConfig holds settings the client uses to reach the API server.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PerPage int           `mapstructure:"per_page" yaml:"per_page"`
}

// SyncConfig controls the periodic background refresh.
type SyncConfig struct {
	Interval     time.Duration `mapstructure:"interval" yaml:"interval"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout" yaml:"fetch_timeout"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`

	// Output is "stdout", "stderr", or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	App      AppInfo        `mapstructure:"app" yaml:"app"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	API      APIConfig      `mapstructure:"api" yaml:"api"`
	Sync     SyncConfig     `mapstructure:"sync" yaml:"sync"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/todoapp/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "todoapp", "config.yaml")
}

// DefaultDatabasePath returns the default SQLite database location next to
// the default config file.
func DefaultDatabasePath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "todos.db")
}

var configDefaults = map[string]any{
	"app.name":               "Todo App API",
	"app.version":            "1.0.0",
	"server.host":            "127.0.0.1",
	"server.port":            8000,
	"server.cors_origins":    []string{"http://localhost:3000"},
	"server.request_timeout": 30 * time.Second,
	"database.driver":        "sqlite",
	"database.dsn":           DefaultDatabasePath(),
	"api.base_url":           "http://127.0.0.1:8000",
	"api.timeout":            10 * time.Second,
	"api.per_page":           DefaultPerPage,
	"sync.interval":          30 * time.Second,
	"sync.fetch_timeout":     15 * time.Second,
	"log.level":              "info",
	"log.format":             "text",
	"log.output":             "stderr",
}

// DefaultAppConfig returns the configuration used when no file is present.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		App: AppInfo{Name: "Todo App API", Version: "1.0.0"},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8000,
			CORSOrigins:    []string{"http://localhost:3000"},
			RequestTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{Driver: "sqlite", DSN: DefaultDatabasePath()},
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
			Timeout: 10 * time.Second,
			PerPage: DefaultPerPage,
		},
		Sync: SyncConfig{
			Interval:     30 * time.Second,
			FetchTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "text", Output: "stderr"},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// A .env file in the working directory is loaded into the environment
// first, and TODOAPP_* variables override file values. A missing config
// file is not an error.
func LoadConfig(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range configDefaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *os.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first invalid setting in c.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if u, err := url.Parse(c.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.PerPage < 1 || c.API.PerPage > MaxPerPage {
		return fmt.Errorf("api.per_page must be between 1 and %d, got %d", MaxPerPage, c.API.PerPage)
	}
	if c.Sync.Interval <= 0 {
		return fmt.Errorf("sync.interval must be positive")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("app", cfg.App)
	v.Set("server", cfg.Server)
	v.Set("database", cfg.Database)
	v.Set("api", cfg.API)
	v.Set("sync", cfg.Sync)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
