// Package config holds the application configuration: struct-tag defaults,
// an optional YAML overlay and the logger factory.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/srg/thingy52/pkg/thingy"
)

// ReconnectConfig is the YAML shape of the auto-reconnect policy.
type ReconnectConfig struct {
	Enabled      bool          `yaml:"enabled" default:"true"`
	MaxAttempts  int           `yaml:"max_attempts" default:"10"` // 0 = unbounded
	InitialDelay time.Duration `yaml:"initial_delay" default:"1s"`
	MaxDelay     time.Duration `yaml:"max_delay" default:"30s"`
}

// Config holds application configuration
type Config struct {
	LogLevel       string          `yaml:"log_level" default:"info"`
	ScanTimeout    time.Duration   `yaml:"scan_timeout" default:"10s"`
	ConnectTimeout time.Duration   `yaml:"connect_timeout" default:"30s"`
	ReadTimeout    time.Duration   `yaml:"read_timeout" default:"5s"`
	OutputFormat   string          `yaml:"output_format" default:"table"` // table, json
	Reconnect      ReconnectConfig `yaml:"reconnect"`
}

// DefaultConfig returns the struct-tag default configuration.
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML configuration file over the defaults. A missing file is
// not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field domains that struct tags cannot express.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	switch c.OutputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output_format %q (want table or json)", c.OutputFormat)
	}
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("reconnect.max_attempts must be >= 0")
	}
	if c.Reconnect.InitialDelay <= 0 || c.Reconnect.MaxDelay <= 0 {
		return fmt.Errorf("reconnect delays must be positive")
	}
	if c.Reconnect.InitialDelay > c.Reconnect.MaxDelay {
		return fmt.Errorf("reconnect.initial_delay exceeds reconnect.max_delay")
	}
	return nil
}

// ClientOptions translates the configuration into client options.
func (c *Config) ClientOptions() *thingy.Options {
	return &thingy.Options{
		ConnectTimeout: c.ConnectTimeout,
		ReadTimeout:    c.ReadTimeout,
		Reconnect: thingy.ReconnectPolicy{
			Enabled:      c.Reconnect.Enabled,
			MaxAttempts:  c.Reconnect.MaxAttempts,
			InitialDelay: c.Reconnect.InitialDelay,
			MaxDelay:     c.Reconnect.MaxDelay,
		},
	}
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
