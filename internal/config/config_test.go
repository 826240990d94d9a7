package config

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/source"
	"github.com/goliatone/go-formpreview/pkg/surface"
)

func TestMerge_KeepsUnsetKeys(t *testing.T) {
	cfg := Default()
	err := cfg.Merge([]byte(`
source:
  dir: ./templates
preview:
  mode: scoped
sample_values:
  name: Ana
request_timeout: 3s
`))
	if err != nil {
		t.Fatalf("merge: %v", err)
	}

	want := Default()
	want.Source.Dir = "./templates"
	want.Preview.Mode = "scoped"
	want.SampleValues = map[string]any{"name": "Ana"}
	want.RequestTimeout = 3 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"FORMPREVIEW_ADDR":            ":9000",
		"FORMPREVIEW_SOURCE_URL":      "https://templates.example.com",
		"FORMPREVIEW_LOG_FORMAT":      "json",
		"FORMPREVIEW_REQUEST_TIMEOUT": "250ms",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Addr != ":9000" || cfg.Source.URL != "https://templates.example.com" || cfg.Log.Format != "json" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.RequestTimeout != 250*time.Millisecond {
		t.Fatalf("timeout = %v", cfg.RequestTimeout)
	}

	env["FORMPREVIEW_REQUEST_TIMEOUT"] = "soon"
	if err := cfg.ApplyEnv(lookup); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestFlags_OnlySetFlagsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formpreview.yaml")
	if err := os.WriteFile(path, []byte("addr: \":7000\"\ntemplate_id: card\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", path, "-template", "menu"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	cfg, err := flags.Resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("unset flag overrode file value: %q", cfg.Addr)
	}
	if cfg.TemplateID != "menu" {
		t.Fatalf("template = %q, want menu", cfg.TemplateID)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "defaults"},
		{name: "mode", mutate: func(c *Config) { c.Preview.Mode = "iframe" }, want: "preview.mode"},
		{name: "level", mutate: func(c *Config) { c.Log.Level = "trace" }, want: "log.level"},
		{name: "format", mutate: func(c *Config) { c.Log.Format = "xml" }, want: "log.format"},
		{name: "both sources", mutate: func(c *Config) {
			c.Source.URL = "https://x.example"
			c.Source.Dir = "."
		}, want: "mutually exclusive"},
		{name: "relative url", mutate: func(c *Config) { c.Source.URL = "/templates" }, want: "source.url"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}
			err := cfg.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSourceClient(t *testing.T) {
	cfg := Default()
	cfg.Source.Dir = t.TempDir()
	client, err := cfg.SourceClient()
	if err != nil {
		t.Fatalf("source client: %v", err)
	}
	if _, ok := client.(*source.FSClient); !ok {
		t.Fatalf("expected FSClient, got %T", client)
	}

	cfg.Source = SourceConfig{URL: "https://templates.example.com"}
	client, err = cfg.SourceClient()
	if err != nil {
		t.Fatalf("source client: %v", err)
	}
	if _, ok := client.(*source.HTTPClient); !ok {
		t.Fatalf("expected HTTPClient, got %T", client)
	}
}

func TestThemeSelection(t *testing.T) {
	cfg := Default()
	selection, err := cfg.ThemeSelection()
	if err != nil || selection != nil {
		t.Fatalf("expected no selection without a file, got %v %v", selection, err)
	}

	path := filepath.Join(t.TempDir(), "theme.yaml")
	if err := os.WriteFile(path, []byte("name: acme\ntokens:\n  brand: \"#123456\"\n"), 0o644); err != nil {
		t.Fatalf("write theme: %v", err)
	}
	cfg.Theme.File = path
	selection, err = cfg.ThemeSelection()
	if err != nil {
		t.Fatalf("theme selection: %v", err)
	}
	if got := surface.ThemeVars(selection)["--brand"]; got != "#123456" {
		t.Fatalf("unexpected theme vars %v", surface.ThemeVars(selection))
	}

	cfg.Theme.Name = "other"
	if _, err := cfg.ThemeSelection(); err == nil {
		t.Fatalf("expected error for unknown theme")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	logger.Info("hidden")
	logger.Warn("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Fatalf("unexpected log output %q", buf.String())
	}
}
