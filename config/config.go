package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirhB/tickwatch/market"
	"gopkg.in/yaml.v3"
)

// Config represents the complete service configuration
type Config struct {
	Feed   FeedConfig   `json:"feed" yaml:"feed"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Notify NotifyConfig `json:"notify" yaml:"notify"`
	Server ServerConfig `json:"server" yaml:"server"`
}

// FeedConfig controls the synthetic price feed
type FeedConfig struct {
	Symbols  []string `json:"symbols" yaml:"symbols"`
	Interval string   `json:"interval" yaml:"interval"` // e.g., "5s", "500ms"
	Seed     int64    `json:"seed,omitempty" yaml:"seed,omitempty"`
}

// ParseInterval converts the tick interval string to time.Duration
func (fc FeedConfig) ParseInterval() (time.Duration, error) {
	return time.ParseDuration(fc.Interval)
}

// StoreConfig contains persistence parameters
type StoreConfig struct {
	DBPath string `json:"db_path" yaml:"db_path"`
}

// NotifyConfig controls the notification log and external delivery
type NotifyConfig struct {
	Cap     int  `json:"cap" yaml:"cap"`
	Desktop bool `json:"desktop" yaml:"desktop"`
}

// ServerConfig contains the HTTP/WS gateway parameters
type ServerConfig struct {
	Addr       string `json:"addr" yaml:"addr"`
	QueueDepth int    `json:"queue_depth" yaml:"queue_depth"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("feed.symbols is required")
	}
	for _, sym := range c.Feed.Symbols {
		// Validate that the instrument exists in the catalog
		if _, ok := market.Instruments[sym]; !ok {
			return fmt.Errorf("unknown instrument: %s", sym)
		}
	}
	d, err := c.Feed.ParseInterval()
	if err != nil {
		return fmt.Errorf("feed.interval: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("feed.interval must be positive")
	}
	if c.Store.DBPath == "" {
		return fmt.Errorf("store.db_path is required")
	}
	if c.Notify.Cap <= 0 {
		return fmt.Errorf("notify.cap must be positive")
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.QueueDepth <= 0 {
		return fmt.Errorf("server.queue_depth must be positive")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Feed: FeedConfig{
			Symbols:  []string{"ES", "NQ", "YM", "RTY", "CL", "GC"},
			Interval: "5s",
		},
		Store: StoreConfig{
			DBPath: "./tickwatch.sqlite",
		},
		Notify: NotifyConfig{
			Cap:     100,
			Desktop: true,
		},
		Server: ServerConfig{
			Addr:       ":8089",
			QueueDepth: 16,
		},
	}
}
