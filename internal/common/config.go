package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Storage     StorageConfig   `toml:"storage"`
	Browser     BrowserConfig   `toml:"browser"`
	Tracking    TrackingConfig  `toml:"tracking"`
	Events      EventsConfig    `toml:"events"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"min=1,max=65535"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// BrowserConfig controls the headless Chrome session pool
type BrowserConfig struct {
	MaxSessions     int           `toml:"max_sessions" validate:"min=1,max=20"` // Concurrent tab contexts drawn from one browser process
	Headless        bool          `toml:"headless"`
	DisableGPU      bool          `toml:"disable_gpu"`
	NoSandbox       bool          `toml:"no_sandbox"`
	UserAgent       string        `toml:"user_agent"`
	NavigateTimeout time.Duration `toml:"navigate_timeout"` // Per-navigation timeout (default 45s)
}

// TrackingConfig controls orchestration behavior
type TrackingConfig struct {
	Workers  int           `toml:"workers" validate:"min=1"` // Concurrent keyword trackings per run
	TopN     int           `toml:"top_n"`                    // Result-snapshot size captured per keyword
	MinDelay time.Duration `toml:"min_delay"`                // Politeness delay floor between lookups
	MaxDelay time.Duration `toml:"max_delay"`                // Politeness delay ceiling (jitter upper bound)
}

// EventsConfig controls the broadcaster's replay buffer
type EventsConfig struct {
	BufferSize        int           `toml:"buffer_size" validate:"min=1"` // Ring buffer entries kept per event type
	HeartbeatInterval time.Duration `toml:"heartbeat_interval"`           // SSE heartbeat comment interval
}

// SchedulerConfig controls cron-driven tracking runs
type SchedulerConfig struct {
	Enabled            bool   `toml:"enabled"`
	SmartplaceSchedule string `toml:"smartplace_schedule"` // Cron expression, e.g. "0 2 * * *"
	BlogSchedule       string `toml:"blog_schedule"`
}

// DefaultConfig returns configuration defaults applied before file/env overrides
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8090,
			Host: "localhost",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/ranktracker",
			},
		},
		Browser: BrowserConfig{
			MaxSessions:     3,
			Headless:        true,
			DisableGPU:      true,
			NoSandbox:       true,
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			NavigateTimeout: 45 * time.Second,
		},
		Tracking: TrackingConfig{
			Workers:  3,
			TopN:     10,
			MinDelay: 800 * time.Millisecond,
			MaxDelay: 2500 * time.Millisecond,
		},
		Events: EventsConfig{
			BufferSize:        100,
			HeartbeatInterval: 15 * time.Second,
		},
		Scheduler: SchedulerConfig{
			Enabled:            false,
			SmartplaceSchedule: "0 2 * * *",
			BlogSchedule:       "30 2 * * *",
		},
	}
}

// LoadFromFiles loads configuration from defaults, then each file in order,
// then environment variables. Later sources override earlier ones.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// ApplyFlagOverrides applies command-line flag values (highest priority)
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// applyEnvOverrides maps RANKTRACKER_* environment variables onto the config
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("RANKTRACKER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("RANKTRACKER_HOST"); v != "" {
		config.Server.Host = v
	}
	if v := os.Getenv("RANKTRACKER_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("RANKTRACKER_DB_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("RANKTRACKER_ENV"); v != "" {
		config.Environment = v
	}
}
