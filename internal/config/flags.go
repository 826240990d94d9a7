package config

import (
	"flag"
	"time"
)

// Flags holds command-line overrides registered on a FlagSet. Only flags the
// operator actually set are applied.
type Flags struct {
	fs *flag.FlagSet

	ConfigFile string

	addr           string
	sourceURL      string
	sourceDir      string
	templateID     string
	previewMode    string
	hostID         string
	themeName      string
	themeVariant   string
	themeFile      string
	logLevel       string
	logFormat      string
	requestTimeout time.Duration
}

// RegisterFlags binds the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	def := Default()
	fs.StringVar(&f.ConfigFile, "config", "", "Path to a YAML config file.")
	fs.StringVar(&f.addr, "addr", def.Addr, "HTTP listen address.")
	fs.StringVar(&f.sourceURL, "source-url", "", "Base URL of the template service.")
	fs.StringVar(&f.sourceDir, "source-dir", "", "Directory of template documents (.json, .yaml, .hcl).")
	fs.StringVar(&f.templateID, "template", def.TemplateID, "Template id to edit.")
	fs.StringVar(&f.previewMode, "preview-mode", def.Preview.Mode, "Preview isolation: 'shadow' or 'scoped'.")
	fs.StringVar(&f.hostID, "host-id", def.Preview.HostID, "Preview host element id.")
	fs.StringVar(&f.themeName, "theme", "", "Theme name.")
	fs.StringVar(&f.themeVariant, "theme-variant", "", "Theme variant.")
	fs.StringVar(&f.themeFile, "theme-file", "", "Path to a YAML theme manifest.")
	fs.StringVar(&f.logLevel, "log-level", def.Log.Level, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	fs.StringVar(&f.logFormat, "log-format", def.Log.Format, "Log output format. Options: 'text' or 'json'.")
	fs.DurationVar(&f.requestTimeout, "timeout", def.RequestTimeout, "Template fetch timeout.")
	return f
}

// Apply copies every flag that was set on the command line into cfg.
func (f *Flags) Apply(cfg *Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "addr":
			cfg.Addr = f.addr
		case "source-url":
			cfg.Source.URL = f.sourceURL
		case "source-dir":
			cfg.Source.Dir = f.sourceDir
		case "template":
			cfg.TemplateID = f.templateID
		case "preview-mode":
			cfg.Preview.Mode = f.previewMode
		case "host-id":
			cfg.Preview.HostID = f.hostID
		case "theme":
			cfg.Theme.Name = f.themeName
		case "theme-variant":
			cfg.Theme.Variant = f.themeVariant
		case "theme-file":
			cfg.Theme.File = f.themeFile
		case "log-level":
			cfg.Log.Level = f.logLevel
		case "log-format":
			cfg.Log.Format = f.logFormat
		case "timeout":
			cfg.RequestTimeout = f.requestTimeout
		}
	})
}

// Resolve loads the config file named by -config, then the environment,
// then the flags, and validates the result.
func (f *Flags) Resolve() (Config, error) {
	cfg, err := Load(f.ConfigFile)
	if err != nil {
		return Config{}, err
	}
	f.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
