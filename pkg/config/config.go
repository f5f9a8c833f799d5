// Package config loads disclosoor configuration from an optional YAML
// file with DISCLOSOOR_* environment overrides.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// DefaultBaseURL points at a local backend's versioned API root.
	DefaultBaseURL = "http://localhost:8080/api/v1"

	// DefaultTimeout bounds a single API exchange.
	DefaultTimeout = 30 * time.Second

	// DefaultLogLevel is the default logging level.
	DefaultLogLevel = "info"

	// DefaultProxyListen is the companion proxy's listen address.
	DefaultProxyListen = ":3001"

	// DefaultProxyBackend is the backend the proxy forwards to.
	DefaultProxyBackend = "http://localhost:55812"

	// DefaultProxyAPIPrefix is the public API path prefix the proxy
	// accepts.
	DefaultProxyAPIPrefix = "/api"

	// DefaultProxyVersionedPrefix is what the API prefix is rewritten to.
	DefaultProxyVersionedPrefix = "/api/v1"

	// envPrefix namespaces environment overrides, e.g.
	// DISCLOSOOR_API_BASE_URL.
	envPrefix = "DISCLOSOOR"
)

// Config is the root configuration for disclosoor.
type Config struct {
	API   APIConfig   `yaml:"api" mapstructure:"api"`
	Log   LogConfig   `yaml:"log" mapstructure:"log"`
	Proxy ProxyConfig `yaml:"proxy" mapstructure:"proxy"`
}

// APIConfig contains platform API client settings.
type APIConfig struct {
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UseMockData bool          `yaml:"use_mock_data" mapstructure:"use_mock_data"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// ProxyConfig contains reverse-proxy companion settings.
type ProxyConfig struct {
	Listen          string          `yaml:"listen" mapstructure:"listen"`
	Backend         string          `yaml:"backend" mapstructure:"backend"`
	APIPrefix       string          `yaml:"api_prefix" mapstructure:"api_prefix"`
	VersionedPrefix string          `yaml:"versioned_prefix" mapstructure:"versioned_prefix"`
	StaticDir       string          `yaml:"static_dir,omitempty" mapstructure:"static_dir"`
	CORSOrigins     []string        `yaml:"cors_origins,omitempty" mapstructure:"cors_origins"`
	RateLimit       RateLimitConfig `yaml:"rate_limit,omitempty" mapstructure:"rate_limit"`
}

// RateLimitConfig configures per-IP rate limiting on the proxy.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// Load reads configuration from path (optional; empty means defaults and
// environment only) and applies DISCLOSOOR_* environment overrides.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("building config decoder: %w", err)
	}

	if err := decoder.Decode(settingsWithEnv(v)); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// settingsWithEnv merges viper's file/default settings with any bound
// environment overrides. AllSettings alone does not surface AutomaticEnv
// values, so every known key is re-read through Get.
func settingsWithEnv(v *viper.Viper) map[string]any {
	merged := make(map[string]any, len(v.AllKeys()))

	for _, key := range v.AllKeys() {
		setNested(merged, strings.Split(key, "."), v.Get(key))
	}

	return merged
}

func setNested(m map[string]any, path []string, value any) {
	if len(path) == 1 {
		m[path[0]] = value

		return
	}

	child, ok := m[path[0]].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[path[0]] = child
	}

	setNested(child, path[1:], value)
}

// setDefaults registers every known key so AutomaticEnv can bind it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout.String())
	v.SetDefault("api.use_mock_data", false)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("proxy.listen", DefaultProxyListen)
	v.SetDefault("proxy.backend", DefaultProxyBackend)
	v.SetDefault("proxy.api_prefix", DefaultProxyAPIPrefix)
	v.SetDefault("proxy.versioned_prefix", DefaultProxyVersionedPrefix)
	v.SetDefault("proxy.static_dir", "")
	v.SetDefault("proxy.cors_origins", []string{})
	v.SetDefault("proxy.rate_limit.enabled", false)
	v.SetDefault("proxy.rate_limit.requests_per_minute", 120)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api timeout must be positive, got %s", c.API.Timeout)
	}

	if err := validateHTTPURL(c.API.BaseURL); err != nil {
		return fmt.Errorf("api base_url: %w", err)
	}

	if err := validateHTTPURL(c.Proxy.Backend); err != nil {
		return fmt.Errorf("proxy backend: %w", err)
	}

	if !strings.HasPrefix(c.Proxy.APIPrefix, "/") {
		return fmt.Errorf(
			"proxy api_prefix must start with /, got %q", c.Proxy.APIPrefix,
		)
	}

	if !strings.HasPrefix(c.Proxy.VersionedPrefix, "/") {
		return fmt.Errorf(
			"proxy versioned_prefix must start with /, got %q",
			c.Proxy.VersionedPrefix,
		)
	}

	if c.Proxy.RateLimit.Enabled && c.Proxy.RateLimit.RequestsPerMinute <= 0 {
		return fmt.Errorf(
			"proxy rate limit requests_per_minute must be positive, got %d",
			c.Proxy.RateLimit.RequestsPerMinute,
		)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q in %q", u.Scheme, raw)
	}

	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}

	return nil
}
