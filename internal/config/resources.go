package config

import (
	"fmt"
	"os"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formpreview/pkg/source"
	"github.com/goliatone/go-formpreview/pkg/surface"
)

// SourceClient builds the template client for the configured source. With
// neither URL nor directory set it reads the working directory.
func (c Config) SourceClient() (source.Client, error) {
	if c.Source.URL != "" {
		client, err := source.NewHTTPClient(c.Source.URL, source.WithTimeout(c.RequestTimeout))
		if err != nil {
			return nil, fmt.Errorf("config: source client: %w", err)
		}
		return client, nil
	}
	dir := c.Source.Dir
	if dir == "" {
		dir = "."
	}
	return source.NewFileClient(dir), nil
}

// SurfaceMode returns the parsed preview mode.
func (c Config) SurfaceMode() surface.Mode {
	mode, err := surface.ParseMode(c.Preview.Mode)
	if err != nil {
		return surface.ModeShadow
	}
	return mode
}

// ThemeSelection loads the theme manifest file and selects the configured
// theme and variant. It returns nil without a theme file.
func (c Config) ThemeSelection() (*theme.Selection, error) {
	if c.Theme.File == "" {
		return nil, nil
	}
	data, err := os.ReadFile(c.Theme.File)
	if err != nil {
		return nil, fmt.Errorf("config: read theme %s: %w", c.Theme.File, err)
	}
	manifest, err := surface.ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("config: theme %s: %w", c.Theme.File, err)
	}
	selector, err := surface.NewManifestSelector(c.Theme.Variant, manifest)
	if err != nil {
		return nil, fmt.Errorf("config: theme %s: %w", c.Theme.File, err)
	}
	selection, err := selector.Select(c.Theme.Name, c.Theme.Variant)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return selection, nil
}
