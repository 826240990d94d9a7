package surface

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"
)

func acmeManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    "acme",
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":   "#123456",
			"surface": "#ffffff",
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface": "#101010",
				},
			},
		},
	}
}

func TestThemeVars_MergesVariant(t *testing.T) {
	vars := ThemeVars(&theme.Selection{Theme: "acme", Variant: "dark", Manifest: acmeManifest()})
	want := map[string]string{"--brand": "#123456", "--surface": "#101010"}
	if diff := cmp.Diff(want, vars); diff != "" {
		t.Fatalf("vars mismatch (-want +got):\n%s", diff)
	}
	if ThemeVars(nil) != nil {
		t.Fatalf("nil selection should yield no vars")
	}
}

func TestManifestSelector(t *testing.T) {
	sel, err := NewManifestSelector("dark", acmeManifest())
	if err != nil {
		t.Fatalf("new selector: %v", err)
	}

	selection, err := sel.Select("", "")
	if err != nil {
		t.Fatalf("select default: %v", err)
	}
	if selection.Theme != "acme" || selection.Variant != "dark" {
		t.Fatalf("unexpected selection %+v", selection)
	}

	if _, err := sel.Select("missing", ""); !errors.Is(err, ErrThemeNotFound) {
		t.Fatalf("expected ErrThemeNotFound, got %v", err)
	}
}

func TestParseManifest(t *testing.T) {
	manifest, err := ParseManifest([]byte("name: acme\nversion: 1.0.0\ntokens:\n  brand: \"#123456\"\n"))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if manifest.Name != "acme" || manifest.Tokens["brand"] != "#123456" {
		t.Fatalf("unexpected manifest %+v", manifest)
	}
	if _, err := ParseManifest([]byte("tokens: {}")); err == nil {
		t.Fatalf("expected error for nameless manifest")
	}
}
