// Package config provides configuration loading for dojo-deploy.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultURL     = "https://api.dojo.codes"
	DefaultProject = "project.yml"
	DefaultTimeout = 30 * time.Second

	envPrefix = "DOJO_"
)

// Secret is a string that never prints its value.
type Secret string

// String implements fmt.Stringer. Always returns redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "Secret([REDACTED])"
}

// Value returns the actual secret value. Use sparingly.
func (s Secret) Value() string {
	return string(s)
}

func (s Secret) IsSet() bool {
	return s != ""
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type Config struct {
	URL            string            `koanf:"url"`
	Username       string            `koanf:"username"`
	Token          Secret            `koanf:"token"`
	GitHubUsername string            `koanf:"github_username"`
	Project        string            `koanf:"project"`
	Timeout        time.Duration     `koanf:"timeout"`
	Log            LogConfig         `koanf:"log"`
	Vars           map[string]string `koanf:"variables"`
}

var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// Option overrides a loaded value, typically from a command-line flag.
type Option func(*Config)

// WithProject overrides the project manifest path when project is not empty.
func WithProject(project string) Option {
	return func(cfg *Config) {
		if project != "" {
			cfg.Project = project
		}
	}
}

// WithLogLevel overrides log.level when level is not empty.
func WithLogLevel(level string) Option {
	return func(cfg *Config) {
		if level != "" {
			cfg.Log.Level = level
		}
	}
}

// Load reads configuration from the optional YAML file at path, then
// overrides it with environment variables and finally with options:
//
//	DOJO_URL, DOJO_USERNAME, DOJO_TOKEN, DOJO_PROJECT, DOJO_TIMEOUT
//	DOJO_LOG_LEVEL -> log.level, DOJO_LOG_FORMAT -> log.format
//	GITHUB_USERNAME -> github_username
//
// Validation runs once, after every source is applied.
func Load(path string, options ...Option) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Empty variables are skipped so they do not mask the file or defaults.
	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(s, v string) (string, interface{}) {
		if v == "" {
			return "", nil
		}
		key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if section, field, ok := strings.Cut(key, "_"); ok && section == "log" {
			return section + "." + field, v
		}
		return key, v
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.Load(env.ProviderWithValue("GITHUB_USERNAME", ".", func(s, v string) (string, interface{}) {
		if s != "GITHUB_USERNAME" || v == "" {
			return "", nil
		}
		return "github_username", v
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	for _, option := range options {
		option(&cfg)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Project == "" {
		cfg.Project = DefaultProject
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
}

// Validate checks everything except credentials, which only API commands need.
func (c *Config) Validate() error {
	if !govalidator.IsRequestURL(c.URL) || !(strings.HasPrefix(c.URL, "http://") || strings.HasPrefix(c.URL, "https://")) {
		return fmt.Errorf("%w: url %q must be an http(s) URL", ErrInvalidConfig, c.URL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log.format must be console or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// RequireCredentials fails when the username or token is missing.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.Username == "" {
		missing = append(missing, "DOJO_USERNAME")
	}
	if !c.Token.IsSet() {
		missing = append(missing, "DOJO_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: set %s", ErrMissingCredentials, strings.Join(missing, " and "))
	}
	return nil
}
