// Package config provides configuration management for the scanner.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"cupscan/internal/analysis/patterns"
	"cupscan/internal/logging"
	"cupscan/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Collector CollectorConfig `mapstructure:"collector"`
	Detection DetectionConfig `mapstructure:"detection"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig holds HTTP API configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSEnabled     bool          `mapstructure:"cors_enabled"`
}

// DatabaseConfig holds SQLite storage configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// CollectorConfig holds market data collection configuration.
type CollectorConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Schedule        string        `mapstructure:"schedule"`     // cron spec with a seconds field
	BarInterval     string        `mapstructure:"bar_interval"` // Yahoo chart interval: 1m, 5m, 15m
	Lookback        string        `mapstructure:"lookback"`     // Yahoo chart range: 1d, 3d, 5d
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MarketHoursOnly bool          `mapstructure:"market_hours_only"`
	Symbols         []string      `mapstructure:"symbols"`
}

// DetectionConfig holds pattern detection tuning.
type DetectionConfig struct {
	WindowSize         int                `mapstructure:"window_size"`
	DistanceThresholds map[string]int     `mapstructure:"distance_thresholds"`
	PriceThresholds    map[string]float64 `mapstructure:"price_thresholds"`
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"` // trace, debug, info, warn, error
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/cupscan"
	}
	return filepath.Join(home, ".config", "cupscan")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(configDir, "cupscan.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadConfigFile(configDir, name string, target *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, create template
			return createTemplateConfig(configDir, name)
		}
		return err
	}

	return v.Unmarshal(target)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.cors_enabled", true)

	v.SetDefault("database.path", "")

	v.SetDefault("collector.enabled", true)
	v.SetDefault("collector.schedule", "0 */5 * * * *")
	v.SetDefault("collector.bar_interval", "5m")
	v.SetDefault("collector.lookback", "3d")
	v.SetDefault("collector.request_timeout", "15s")
	v.SetDefault("collector.max_retries", 3)
	v.SetDefault("collector.market_hours_only", false)

	// Register threshold defaults per leaf key so a partial table in the
	// config file overrides single pairs without dropping the rest.
	defaults := patterns.DefaultThresholds()
	v.SetDefault("detection.window_size", patterns.DefaultWindow)
	for pair, gap := range defaults.Distance {
		v.SetDefault("detection.distance_thresholds."+pair, gap)
	}
	for pair, fraction := range defaults.Price {
		v.SetDefault("detection.price_thresholds."+pair, fraction)
	}

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", "")
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age_days", 30)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CUPSCAN_HTTP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CUPSCAN_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("CUPSCAN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr must not be empty")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database path must not be empty")
	}
	if c.Collector.Schedule == "" {
		return fmt.Errorf("collector schedule must not be empty")
	}
	if c.Collector.BarInterval == "" || c.Collector.Lookback == "" {
		return fmt.Errorf("collector bar_interval and lookback must not be empty")
	}
	if c.Collector.MaxRetries < 0 {
		return fmt.Errorf("collector max_retries must be non-negative")
	}
	if c.Detection.WindowSize < 1 {
		return fmt.Errorf("detection window_size must be a positive integer")
	}
	if err := c.Detection.Thresholds().Validate(); err != nil {
		return fmt.Errorf("detection thresholds: %w", err)
	}
	return nil
}

// Thresholds assembles the detection tuning into the form the pattern
// searcher consumes.
func (d DetectionConfig) Thresholds() patterns.Thresholds {
	th := patterns.Thresholds{
		Distance: make(map[string]int, len(d.DistanceThresholds)),
		Price:    make(map[string]float64, len(d.PriceThresholds)),
	}
	for k, v := range d.DistanceThresholds {
		th.Distance[k] = v
	}
	for k, v := range d.PriceThresholds {
		th.Price[k] = v
	}
	return th
}

// Watchlist returns the configured symbols, falling back to the built-in
// watchlist when none are set.
func (c CollectorConfig) Watchlist() []string {
	if len(c.Symbols) > 0 {
		out := make([]string, len(c.Symbols))
		copy(out, c.Symbols)
		return out
	}
	return models.WatchedSymbols()
}

// LogConfig converts the logging section into the logging package's
// configuration, keeping package defaults for unset values.
func (l LoggingConfig) LogConfig() logging.LogConfig {
	cfg := logging.DefaultLogConfig()
	if l.Level != "" {
		cfg.Level = l.Level
	}
	cfg.Console = l.Console
	cfg.File = l.File
	if l.FilePath != "" {
		cfg.FilePath = l.FilePath
	}
	if l.MaxSizeMB > 0 {
		cfg.MaxSize = l.MaxSizeMB
	}
	if l.MaxBackups > 0 {
		cfg.MaxBackups = l.MaxBackups
	}
	if l.MaxAgeDays > 0 {
		cfg.MaxAge = l.MaxAgeDays
	}
	return cfg
}
