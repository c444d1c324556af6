package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"gopkg.in/yaml.v3"
)

// Config holds the cps-cli configuration.
//
// Values come from an optional YAML file, then CPS_* environment variables,
// then command-line flags (applied by the caller). Slices in environment
// variables are separated by semicolons.
type Config struct {
	Servers         []string             `yaml:"servers" env:"CPS_SERVERS"`
	Storage         string               `yaml:"storage" env:"CPS_STORAGE"`
	DialTimeout     time.Duration        `yaml:"dial_timeout" env:"CPS_DIAL_TIMEOUT"`
	RequestTimeout  time.Duration        `yaml:"request_timeout" env:"CPS_REQUEST_TIMEOUT"`
	MaxResponseSize int                  `yaml:"max_response_size" env:"CPS_MAX_RESPONSE_SIZE"`
	CircuitBreaker  CircuitBreakerConfig `yaml:"circuit_breaker"`
	Logging         LoggingConfig        `yaml:"logging"`
}

// CircuitBreakerConfig enables a per-server circuit breaker when Enabled is set.
type CircuitBreakerConfig struct {
	Enabled     bool          `yaml:"enabled" env:"CPS_BREAKER_ENABLED"`
	MaxRequests uint32        `yaml:"max_requests" env:"CPS_BREAKER_MAX_REQUESTS"`
	Interval    time.Duration `yaml:"interval" env:"CPS_BREAKER_INTERVAL"`
	Timeout     time.Duration `yaml:"timeout" env:"CPS_BREAKER_TIMEOUT"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env" env:"CPS_LOG_ENV"`     // local, dev, prod (default: local)
	Level string `yaml:"level" env:"CPS_LOG_LEVEL"` // debug, info, warn, error
}

// Load reads the YAML file at path (skipped when path is empty), overlays
// environment variables and applies defaults. It does not validate: a
// dry run needs no servers.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}

		data = expandEnvVars(data)

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.DialTimeout <= 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 30 * time.Second
	}
	if c.MaxResponseSize <= 0 {
		c.MaxResponseSize = 64 << 20
	}
	if c.CircuitBreaker.MaxRequests == 0 {
		c.CircuitBreaker.MaxRequests = 1
	}
	if c.CircuitBreaker.Interval <= 0 {
		c.CircuitBreaker.Interval = time.Minute
	}
	if c.CircuitBreaker.Timeout <= 0 {
		c.CircuitBreaker.Timeout = 10 * time.Second
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the configuration is usable for sending requests.
func (c *Config) Validate() error {
	if len(c.Servers) == 0 {
		return fmt.Errorf("servers is required")
	}
	for _, addr := range c.Servers {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			return fmt.Errorf("servers: invalid address %q: %w", addr, err)
		}
	}
	switch c.Logging.Env {
	case "local", "dev", "prod":
		// ok
	default:
		return fmt.Errorf("logging.env must be one of local, dev, prod, got %q", c.Logging.Env)
	}
	return nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
