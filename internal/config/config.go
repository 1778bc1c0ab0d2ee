// Package config loads the site configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config filename looked up in the working
// directory when none is given.
const DefaultConfigFile = "sitegen.yaml"

// Config is the complete site configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Rebuild RebuildConfig `yaml:"rebuild"`
	NATS    NATSConfig    `yaml:"nats"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the published site.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description,omitempty"`
	BaseURL     string `yaml:"base_url"`
	TagsPrefix  string `yaml:"tags_prefix,omitempty"`
	RssDefault  *bool  `yaml:"rss_default,omitempty"`
}

// ContentConfig locates the markdown tree and tunes the change pipeline.
type ContentConfig struct {
	Dir      string        `yaml:"dir"`
	Debounce time.Duration `yaml:"debounce,omitempty"`
}

// OutputConfig controls where the generated tree is written.
type OutputConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// RebuildConfig enables the optional periodic rebuild.
type RebuildConfig struct {
	Interval time.Duration `yaml:"interval,omitempty"`
}

// NATSConfig enables the optional remote rebuild trigger. Empty URL disables
// it.
type NATSConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// HistoryConfig enables the optional recompute history database. Empty path
// disables it.
type HistoryConfig struct {
	DB string `yaml:"db,omitempty"`
}

// LoggingConfig tunes the slog setup.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text or json
}

// Load reads the config file, applies environment overrides, defaults, and
// validation. A .env file in the working directory is loaded first without
// overriding the process environment.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides maps SITEGEN_* variables onto their config fields. Env
// wins over file values.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SITEGEN_CONTENT_DIR"); v != "" {
		c.Content.Dir = v
	}
	if v := os.Getenv("SITEGEN_BASE_URL"); v != "" {
		c.Site.BaseURL = v
	}
	if v := os.Getenv("SITEGEN_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("SITEGEN_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("SITEGEN_HISTORY_DB"); v != "" {
		c.History.DB = v
	}
	if v := os.Getenv("SITEGEN_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SITEGEN_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SITEGEN_DEBOUNCE: %w", err)
		}
		c.Content.Debounce = d
	}
	if v := os.Getenv("SITEGEN_RSS_DEFAULT"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("SITEGEN_RSS_DEFAULT: %w", err)
		}
		c.Site.RssDefault = &b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Site"
	}
	if c.Site.TagsPrefix == "" {
		c.Site.TagsPrefix = "tags"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./public"
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		c.NATS.Subject = "sitegen.rebuild"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	c.Site.BaseURL = strings.TrimSuffix(c.Site.BaseURL, "/")
}

// Validate reports the first configuration error.
func (c *Config) Validate() error {
	if c.Content.Dir == "" {
		return fmt.Errorf("content.dir is required")
	}
	if c.Site.BaseURL == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.Content.Debounce < 0 {
		return fmt.Errorf("content.debounce must not be negative, got %s", c.Content.Debounce)
	}
	if c.Rebuild.Interval < 0 {
		return fmt.Errorf("rebuild.interval must not be negative, got %s", c.Rebuild.Interval)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	return nil
}

// RssDefault returns the feed-inclusion default, true unless configured off.
func (c *Config) RssDefault() bool {
	if c.Site.RssDefault == nil {
		return true
	}
	return *c.Site.RssDefault
}

// TagBaseURL is the absolute URL prefix for tag listing pages.
func (c *Config) TagBaseURL() string {
	return c.Site.BaseURL + "/" + strings.Trim(c.Site.TagsPrefix, "/")
}
