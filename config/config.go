// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agencyos/growthmeter/domain/quota"
	"github.com/agencyos/growthmeter/domain/usage"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Retention RetentionConfig `yaml:"retention"`
	Quota     QuotaConfig     `yaml:"quota"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DatabaseConfig configures the SQLite event store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// RetentionConfig configures the usage event retention job.
type RetentionConfig struct {
	Days            int           `yaml:"days"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// QuotaConfig allows overriding individual free-tier ceilings.
type QuotaConfig struct {
	Overrides []QuotaOverride `yaml:"overrides"`
}

// QuotaOverride replaces one (tool, metric) ceiling.
type QuotaOverride struct {
	Tool   string `yaml:"tool"`
	Metric string `yaml:"metric"`
	Limit  int64  `yaml:"limit"`
}

// LoggingConfig configures logging output.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "growthmeter.db",
		},
		Retention: RetentionConfig{
			Days:            90,
			CleanupInterval: 24 * time.Hour,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Load reads, parses and validates a config file. Missing fields fall back to
// defaults; GROWTHMETER_* environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadWithFallback tries to load from file, falling back to defaults plus
// environment overrides when the file does not exist.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	cfg := Defaults()
	applyEnvOverrides(cfg)
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Limits builds the quota limit table: the free-tier defaults plus any
// configured overrides.
func (c *Config) Limits() (quota.Limits, error) {
	limits := quota.DefaultFreeTier()
	for _, o := range c.Quota.Overrides {
		tool := usage.Tool(o.Tool)
		if !usage.ValidTool(tool) {
			return quota.Limits{}, fmt.Errorf("quota override: unknown tool %q", o.Tool)
		}
		if o.Limit < 0 {
			return quota.Limits{}, fmt.Errorf("quota override: negative limit for %s/%s", o.Tool, o.Metric)
		}
		metric := quota.Metric(o.Metric)
		if _, err := limits.Get(tool, metric); err != nil {
			return quota.Limits{}, fmt.Errorf("quota override: tool %q has no metric %q", o.Tool, o.Metric)
		}
		limits = limits.WithOverride(tool, metric, o.Limit)
	}
	return limits, nil
}

// RetentionWindow returns the retention duration.
func (c *Config) RetentionWindow() time.Duration {
	return time.Duration(c.Retention.Days) * 24 * time.Hour
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if cfg.Retention.Days < 1 {
		return fmt.Errorf("retention.days must be at least 1, got %d", cfg.Retention.Days)
	}
	if cfg.Retention.CleanupInterval <= 0 {
		return fmt.Errorf("retention.cleanup_interval must be positive")
	}
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", cfg.Logging.Level)
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", cfg.Logging.Format)
	}
	if _, err := cfg.Limits(); err != nil {
		return err
	}
	return nil
}

// applyEnvOverrides applies GROWTHMETER_* environment variables.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GROWTHMETER_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GROWTHMETER_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GROWTHMETER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("GROWTHMETER_RETENTION_DAYS"); v != "" {
		if days, err := strconv.Atoi(v); err == nil {
			cfg.Retention.Days = days
		}
	}
	if v := os.Getenv("GROWTHMETER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("GROWTHMETER_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("GROWTHMETER_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}
