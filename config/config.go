/*
Package config loads server configuration.

SOURCES (later wins):
  1. Built-in defaults
  2. YAML file named by PAYROLL_CONFIG
  3. Environment variables, including a .env file in the working directory
  4. Command-line flags (applied by cmd/server)

ENVIRONMENT:
  PAYROLL_PORT              HTTP port (8080)
  PAYROLL_DB                SQLite path (payroll.db)
  PAYROLL_TZ                IANA zone used for "today" and epoch-millis dates
  PAYROLL_LOG_LEVEL         debug, info, warn, error (info)
  PAYROLL_ALLOWED_ORIGINS   Comma-separated CORS origins
  PAYROLL_REPORT_INTERVAL   Company report refresh period, 0 disables (1h)
  PAYROLL_STATIC_DIR        Built frontend to serve at / (web/dist)

YAML:
  app:
    port: 8080
    timezone: Asia/Colombo
    log_level: debug
    allowed_origins: ["http://localhost:5173"]
  database:
    path: ./data/payroll.db
  reports:
    interval: 30m
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Database DatabaseConfig `yaml:"database"`
	Reports  ReportsConfig  `yaml:"reports"`
}

// AppConfig holds HTTP server settings.
type AppConfig struct {
	Port           int      `yaml:"port"`
	Timezone       string   `yaml:"timezone"`
	LogLevel       string   `yaml:"log_level"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	StaticDir      string   `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// ReportsConfig controls the scheduled company report refresh.
type ReportsConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		App: AppConfig{
			Port:           8080,
			LogLevel:       "info",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
			StaticDir:      "./web/dist",
		},
		Database: DatabaseConfig{Path: "payroll.db"},
		Reports:  ReportsConfig{Interval: time.Hour},
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment. A missing .env file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("PAYROLL_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PAYROLL_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PAYROLL_PORT: %w", err)
		}
		c.App.Port = port
	}
	if v := os.Getenv("PAYROLL_REPORT_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PAYROLL_REPORT_INTERVAL: %w", err)
		}
		c.Reports.Interval = d
	}
	if v := os.Getenv("PAYROLL_ALLOWED_ORIGINS"); v != "" {
		c.App.AllowedOrigins = splitCSV(v)
	}
	c.Database.Path = getEnv("PAYROLL_DB", c.Database.Path)
	c.App.Timezone = getEnv("PAYROLL_TZ", c.App.Timezone)
	c.App.LogLevel = getEnv("PAYROLL_LOG_LEVEL", c.App.LogLevel)
	c.App.StaticDir = getEnv("PAYROLL_STATIC_DIR", c.App.StaticDir)
	return nil
}

// Validate checks values that would otherwise fail at startup.
func (c Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.App.Port)
	}
	if c.Database.Path == "" {
		return errors.New("database path required")
	}
	if c.Reports.Interval < 0 {
		return fmt.Errorf("invalid report interval %s", c.Reports.Interval)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Location resolves the configured timezone. Empty means time.Local.
func (c Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}

// Level parses the configured log level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.App.LogLevel, err)
	}
	return level, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
