package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Engine    EngineConfig
	Bootstrap BootstrapConfig
	REPL      REPLConfig
	Logging   LogConfig
}

// EngineConfig holds script runtime configuration.
type EngineConfig struct {
	// ModuleRoot is a directory of namespace sources. Empty means the
	// modules embedded in the binary.
	ModuleRoot string `envconfig:"MODULE_ROOT"`
	// Features are the optional runtime capabilities compiled into this build.
	Features         []string `envconfig:"ENGINE_FEATURES" default:"dynamic-loader"`
	MaxCallStackSize int      `envconfig:"ENGINE_MAX_CALL_STACK" default:"4096"`
}

// BootstrapConfig holds runtime bootstrap configuration.
type BootstrapConfig struct {
	WorkerStackSize int           `envconfig:"WORKER_STACK_BYTES" default:"1048576"`
	MaxWorkers      int           `envconfig:"WORKER_MAX" default:"0"`
	RemoteResource  string        `envconfig:"BOOTSTRAP_REMOTE_RESOURCE" default:"repl/server.js"`
	RemoteNamespace string        `envconfig:"BOOTSTRAP_REMOTE_NS" default:"repl.server"`
	RemoteRetries   int           `envconfig:"BOOTSTRAP_REMOTE_RETRIES" default:"0"`
	RetryBackoff    time.Duration `envconfig:"BOOTSTRAP_RETRY_BACKOFF" default:"500ms"`
}

// REPLConfig holds remote evaluation server configuration.
type REPLConfig struct {
	Addr              string `envconfig:"REPL_ADDR" default:"127.0.0.1:7888"`
	RequestsPerSecond int    `envconfig:"REPL_RATE_RPS" default:"20"`
	Burst             int    `envconfig:"REPL_RATE_BURST" default:"40"`
	// AllowedOrigins are the browser origins, besides the server's own, that
	// may call the server. Empty allows same-origin and non-browser clients only.
	AllowedOrigins []string `envconfig:"REPL_ALLOWED_ORIGINS"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Features:         []string{"dynamic-loader"},
			MaxCallStackSize: 4096,
		},
		Bootstrap: BootstrapConfig{
			WorkerStackSize: 1 << 20,
			RemoteResource:  "repl/server.js",
			RemoteNamespace: "repl.server",
			RetryBackoff:    500 * time.Millisecond,
		},
		REPL: REPLConfig{
			Addr:              "127.0.0.1:7888",
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
	}
}
