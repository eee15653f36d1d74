// Package config loads seriesbr settings from YAML files and environment
// variables and converts them into the per-source provider configs.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/phelipetls/seriesbr-sub000/internal/logger"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/ipea"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sgs"
	"github.com/phelipetls/seriesbr-sub000/pkg/providers/sidra"
)

// EnvPrefix prefixes every environment override, e.g. SERIESBR_HTTP_TIMEOUT.
const EnvPrefix = "SERIESBR"

var envReplacer = strings.NewReplacer(".", "_")

// Config represents the complete application configuration.
type Config struct {
	Sources SourcesConfig `mapstructure:"sources" yaml:"sources"`
	HTTP    HTTPConfig    `mapstructure:"http"    yaml:"http"`
	Logging logger.Config `mapstructure:"logging" yaml:"logging"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Output  OutputConfig  `mapstructure:"output"  yaml:"output"`
}

// SourcesConfig holds the endpoints of each source.
type SourcesConfig struct {
	SGS   SGSConfig   `mapstructure:"sgs"   yaml:"sgs"`
	IPEA  IPEAConfig  `mapstructure:"ipea"  yaml:"ipea"`
	SIDRA SIDRAConfig `mapstructure:"sidra" yaml:"sidra"`
}

// SGSConfig holds the Central Bank endpoints.
type SGSConfig struct {
	BaseURL   string `mapstructure:"base_url"   yaml:"base_url"`
	SearchURL string `mapstructure:"search_url" yaml:"search_url"`
	FeedURL   string `mapstructure:"feed_url"   yaml:"feed_url"`
}

// IPEAConfig holds the IPEA OData endpoint.
type IPEAConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// SIDRAConfig holds the IBGE endpoints.
type SIDRAConfig struct {
	BaseURL       string `mapstructure:"base_url"       yaml:"base_url"`
	LocalitiesURL string `mapstructure:"localities_url" yaml:"localities_url"`
	FeedURL       string `mapstructure:"feed_url"       yaml:"feed_url"`
}

// HTTPConfig holds transport settings shared by every source.
type HTTPConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"     yaml:"timeout"     json:"timeout"`
	MaxRetries  int           `mapstructure:"max_retries" yaml:"max_retries" json:"max_retries"`
	RetryWait   time.Duration `mapstructure:"retry_wait"  yaml:"retry_wait"  json:"retry_wait"`
	RateLimit   float64       `mapstructure:"rate_limit"  yaml:"rate_limit"  json:"rate_limit"` // requests per second
	Concurrency int           `mapstructure:"concurrency" yaml:"concurrency" json:"concurrency"`
	UserAgent   string        `mapstructure:"user_agent"  yaml:"user_agent"  json:"user_agent,omitempty"`
}

// APIConfig holds the REST server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OutputConfig holds CLI output settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"` // "table", "csv", "json", "yaml"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (working directory)
//  2. ~/.seriesbr/config.yaml (home directory)
//  3. /etc/seriesbr/config.yaml (system)
//
// Environment variables override config file values.
// Format: SERIESBR_<SECTION>_<KEY>, e.g. SERIESBR_HTTP_MAX_RETRIES
func Load() (*Config, error) {
	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".seriesbr"))
	v.AddConfigPath("/etc/seriesbr")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so that environment overrides apply even
// when no file sets it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("sources.sgs.base_url", sgs.DefaultBaseURL)
	v.SetDefault("sources.sgs.search_url", sgs.DefaultSearchURL)
	v.SetDefault("sources.sgs.feed_url", sgs.DefaultFeedURL)
	v.SetDefault("sources.ipea.base_url", ipea.DefaultBaseURL)
	v.SetDefault("sources.sidra.base_url", sidra.DefaultBaseURL)
	v.SetDefault("sources.sidra.localities_url", sidra.DefaultLocalitiesURL)
	v.SetDefault("sources.sidra.feed_url", sidra.DefaultFeedURL)

	v.SetDefault("http.timeout", 60*time.Second)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.retry_wait", 500*time.Millisecond)
	v.SetDefault("http.rate_limit", 0)
	v.SetDefault("http.concurrency", 1)
	v.SetDefault("http.user_agent", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	v.SetDefault("output.format", "table")
}

// Validate rejects values no component can work with.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "table", "csv", "json", "yaml":
	default:
		return fmt.Errorf("output.format must be table, csv, json or yaml, got %q", c.Output.Format)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	if c.HTTP.Timeout < 0 {
		return fmt.Errorf("http.timeout must not be negative, got %s", c.HTTP.Timeout)
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit must not be negative, got %g", c.HTTP.RateLimit)
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return fmt.Errorf("api.port out of range: %d", c.API.Port)
	}
	return nil
}

// SGS returns the Central Bank provider config.
func (c *Config) SGS() sgs.Config {
	return sgs.Config{
		BaseURL:     c.Sources.SGS.BaseURL,
		SearchURL:   c.Sources.SGS.SearchURL,
		FeedURL:     c.Sources.SGS.FeedURL,
		Timeout:     c.HTTP.Timeout,
		MaxRetries:  c.HTTP.MaxRetries,
		RetryWait:   c.HTTP.RetryWait,
		RateLimit:   c.HTTP.RateLimit,
		Concurrency: c.HTTP.Concurrency,
		UserAgent:   c.HTTP.UserAgent,
	}
}

// IPEA returns the IPEA provider config.
func (c *Config) IPEA() ipea.Config {
	return ipea.Config{
		BaseURL:     c.Sources.IPEA.BaseURL,
		Timeout:     c.HTTP.Timeout,
		MaxRetries:  c.HTTP.MaxRetries,
		RetryWait:   c.HTTP.RetryWait,
		RateLimit:   c.HTTP.RateLimit,
		Concurrency: c.HTTP.Concurrency,
		UserAgent:   c.HTTP.UserAgent,
	}
}

// SIDRA returns the IBGE provider config.
func (c *Config) SIDRA() sidra.Config {
	return sidra.Config{
		BaseURL:       c.Sources.SIDRA.BaseURL,
		LocalitiesURL: c.Sources.SIDRA.LocalitiesURL,
		FeedURL:       c.Sources.SIDRA.FeedURL,
		Timeout:       c.HTTP.Timeout,
		MaxRetries:    c.HTTP.MaxRetries,
		RetryWait:     c.HTTP.RetryWait,
		RateLimit:     c.HTTP.RateLimit,
		Concurrency:   c.HTTP.Concurrency,
		UserAgent:     c.HTTP.UserAgent,
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
