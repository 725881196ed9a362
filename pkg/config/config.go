package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/srg/bledisco/internal/discovery"
	goble "github.com/srg/bledisco/internal/device/go-ble"
)

// Config holds application configuration
type Config struct {
	LogLevel       string        `yaml:"log_level" json:"log_level" default:"info"`
	ScanDuration   time.Duration `yaml:"scan_duration" json:"scan_duration" default:"10s"`
	OutputFormat   string        `yaml:"output_format" json:"output_format" default:"table"`
	AllowDuplicate bool          `yaml:"allow_duplicates" json:"allow_duplicates" default:"true"`
	ResolveNames   bool          `yaml:"resolve_names" json:"resolve_names" default:"true"`
	ResolveTimeout time.Duration `yaml:"resolve_timeout" json:"resolve_timeout" default:"10s"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout" default:"10s"`
	EventBuffer    int           `yaml:"event_buffer" json:"event_buffer" default:"256"`
	// Adapter is the BlueZ adapter whose power state is watched on Linux.
	Adapter string `yaml:"adapter" json:"adapter" default:"hci0"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads a YAML file over the defaults. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be represented by their types alone.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.OutputFormat {
	case "table", "json":
	default:
		return fmt.Errorf("invalid output format %q: must be table or json", c.OutputFormat)
	}
	if c.ScanDuration < 0 || c.ResolveTimeout < 0 || c.ConnectTimeout < 0 {
		return fmt.Errorf("durations must not be negative")
	}
	return nil
}

// Level returns the parsed log level, Info when unparsable.
func (c *Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.Level())

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}

// DiscoveryOptions returns the discovery core options.
func (c *Config) DiscoveryOptions() *discovery.Options {
	opts := discovery.DefaultOptions()
	opts.ResolveNames = c.ResolveNames
	opts.ResolveTimeout = c.ResolveTimeout
	opts.EventBuffer = c.EventBuffer
	return opts
}

// CentralOptions returns the go-ble driver options.
func (c *Config) CentralOptions() *goble.Options {
	opts := goble.DefaultOptions()
	opts.AllowDuplicates = c.AllowDuplicate
	if c.ConnectTimeout > 0 {
		opts.ConnectTimeout = c.ConnectTimeout
	}
	return opts
}
