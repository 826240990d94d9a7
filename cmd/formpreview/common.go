package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpreview/internal/config"
	"github.com/goliatone/go-formpreview/internal/ctxlog"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/source"
)

// setup parses the shared flags and returns the resolved config and a
// context carrying the configured logger.
func setup(ctx context.Context, fs *flag.FlagSet, args []string, stderr io.Writer) (config.Config, context.Context, error) {
	flags := config.RegisterFlags(fs)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return config.Config{}, nil, err
		}
		return config.Config{}, nil, &exitError{Code: 2, Message: err.Error()}
	}
	cfg, err := flags.Resolve()
	if err != nil {
		return config.Config{}, nil, &exitError{Code: 2, Message: err.Error()}
	}
	logger := config.NewLogger(cfg.Log, stderr)
	slog.SetDefault(logger)
	return cfg, ctxlog.WithLogger(ctx, logger), nil
}

// loadTemplate reads a template document from file when set, otherwise
// fetches the configured template id from the configured source.
func loadTemplate(ctx context.Context, cfg config.Config, file string) (model.Template, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return model.Template{}, fmt.Errorf("read template: %w", err)
		}
		format, ok := source.FormatFromName(file)
		if !ok {
			return model.Template{}, fmt.Errorf("unsupported template document %q", filepath.Ext(file))
		}
		return source.Decode(data, format, file)
	}

	client, err := cfg.SourceClient()
	if err != nil {
		return model.Template{}, err
	}
	if cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RequestTimeout)
		defer cancel()
	}
	loader := source.NewLoader(client, source.WithLoaderLogger(ctxlog.FromContext(ctx)))
	return loader.Load(ctx, cfg.TemplateID)
}

// loadValues reads a JSON or YAML object of template values.
func loadValues(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	values := make(map[string]any)
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &values)
	default:
		err = json.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

// sampleValues resolves the preview samples: configured values win, and
// no configuration means the built-in samples.
func sampleValues(cfg config.Config, builtin map[string]any) map[string]any {
	if cfg.SampleValues != nil {
		return cfg.SampleValues
	}
	return builtin
}
