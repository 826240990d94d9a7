package surface

import (
	"errors"
	"fmt"
	"maps"
	"strings"

	theme "github.com/goliatone/go-theme"
	"gopkg.in/yaml.v3"
)

// ErrThemeNotFound is returned when a selector has no manifest for a name.
var ErrThemeNotFound = errors.New("surface: theme not found")

// WithTheme applies the tokens of a theme selection as CSS custom
// properties on the boundary.
func WithTheme(selection *theme.Selection) Option {
	return WithCSSVars(ThemeVars(selection))
}

// ThemeVars merges manifest and variant tokens into custom properties.
func ThemeVars(selection *theme.Selection) map[string]string {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	tokens := make(map[string]string, len(selection.Manifest.Tokens))
	maps.Copy(tokens, selection.Manifest.Tokens)
	if variant, ok := selection.Manifest.Variants[selection.Variant]; ok {
		maps.Copy(tokens, variant.Tokens)
	}
	if len(tokens) == 0 {
		return nil
	}
	return normalizeVars(tokens)
}

// ManifestSelector resolves theme selections from manifests held in memory.
type ManifestSelector struct {
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*ManifestSelector)(nil)

// NewManifestSelector validates manifests through a go-theme registry and
// indexes them by name. The first manifest becomes the default theme.
func NewManifestSelector(defaultVariant string, manifests ...*theme.Manifest) (*ManifestSelector, error) {
	registry := theme.NewRegistry()
	sel := &ManifestSelector{
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultVariant: defaultVariant,
	}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, fmt.Errorf("surface: register theme %q: %w", manifest.Name, err)
		}
		sel.manifests[manifest.Name] = manifest
		if sel.defaultTheme == "" {
			sel.defaultTheme = manifest.Name
		}
	}
	return sel, nil
}

// Select resolves name and variant, falling back to the defaults when
// either is empty.
func (s *ManifestSelector) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	if strings.TrimSpace(name) == "" {
		name = s.defaultTheme
	}
	if strings.TrimSpace(variant) == "" {
		variant = s.defaultVariant
	}
	manifest, ok := s.manifests[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrThemeNotFound, name)
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// ParseManifest decodes a YAML theme manifest.
func ParseManifest(data []byte) (*theme.Manifest, error) {
	var manifest theme.Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("surface: decode theme manifest: %w", err)
	}
	if strings.TrimSpace(manifest.Name) == "" {
		return nil, errors.New("surface: theme manifest requires a name")
	}
	return &manifest, nil
}
