// Package config loads formpreview settings from an optional YAML file,
// FORMPREVIEW_* environment variables and command-line flags, in that order
// of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpreview/pkg/surface"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORMPREVIEW_"

// Config holds everything the CLI and HTTP shell need to run.
type Config struct {
	Addr           string         `yaml:"addr"`
	Source         SourceConfig   `yaml:"source"`
	TemplateID     string         `yaml:"template_id"`
	Preview        PreviewConfig  `yaml:"preview"`
	Theme          ThemeConfig    `yaml:"theme"`
	SampleValues   map[string]any `yaml:"sample_values"`
	Log            LogConfig      `yaml:"log"`
	RequestTimeout time.Duration  `yaml:"request_timeout"`
}

// SourceConfig selects where templates come from. URL and Dir are mutually
// exclusive.
type SourceConfig struct {
	URL string `yaml:"url"`
	Dir string `yaml:"dir"`
}

type PreviewConfig struct {
	Mode   string `yaml:"mode"`
	HostID string `yaml:"host_id"`
}

type ThemeConfig struct {
	Name    string `yaml:"name"`
	Variant string `yaml:"variant"`
	File    string `yaml:"file"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:       ":8383",
		TemplateID: "invitation",
		Preview: PreviewConfig{
			Mode:   string(surface.ModeShadow),
			HostID: "template-preview",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RequestTimeout: 10 * time.Second,
	}
}

// Load applies the file at path (when non-empty) and the environment on top
// of the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := cfg.Merge(data); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Merge decodes YAML data over c; keys absent from data keep their values.
func (c *Config) Merge(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

// ApplyEnv overlays FORMPREVIEW_* variables resolved through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	strs := map[string]*string{
		"ADDR":            &c.Addr,
		"SOURCE_URL":      &c.Source.URL,
		"SOURCE_DIR":      &c.Source.Dir,
		"TEMPLATE_ID":     &c.TemplateID,
		"PREVIEW_MODE":    &c.Preview.Mode,
		"PREVIEW_HOST_ID": &c.Preview.HostID,
		"THEME_NAME":      &c.Theme.Name,
		"THEME_VARIANT":   &c.Theme.Variant,
		"THEME_FILE":      &c.Theme.File,
		"LOG_LEVEL":       &c.Log.Level,
		"LOG_FORMAT":      &c.Log.Format,
	}
	for name, target := range strs {
		if value, ok := lookup(EnvPrefix + name); ok {
			*target = strings.TrimSpace(value)
		}
	}
	if value, ok := lookup(EnvPrefix + "REQUEST_TIMEOUT"); ok {
		timeout, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %sREQUEST_TIMEOUT: %w", EnvPrefix, err)
		}
		c.RequestTimeout = timeout
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if _, err := surface.ParseMode(c.Preview.Mode); err != nil {
		return fmt.Errorf("config: preview.mode: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log.level %q: must be 'debug', 'info', 'warn', or 'error'", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log.format %q: must be 'text' or 'json'", c.Log.Format)
	}
	if c.Source.URL != "" && c.Source.Dir != "" {
		return errors.New("config: source.url and source.dir are mutually exclusive")
	}
	if c.Source.URL != "" {
		parsed, err := url.Parse(c.Source.URL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("config: invalid source.url %q", c.Source.URL)
		}
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: request_timeout must not be negative")
	}
	return nil
}
