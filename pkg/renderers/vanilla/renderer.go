package vanilla

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/render"
	rendertemplate "github.com/goliatone/go-formpreview/pkg/render/template"
	gotemplate "github.com/goliatone/go-formpreview/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla/components"
)

// DefaultSubmitLabel is the submit button caption when none is configured.
const DefaultSubmitLabel = "Submit"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	partials         map[string]string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponents replaces the component registry.
func WithComponents(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithPartials maps partial keys ("forms.input") to alternate templates,
// usually taken from a theme selection.
func WithPartials(partials map[string]string) Option {
	return func(cfg *config) {
		cfg.partials = cloneStringMap(partials)
	}
}

// Renderer emits the form as HTML.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	registry  *components.Registry
	partials  map[string]string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithName("vanilla"),
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}

	return &Renderer{templates: renderer, registry: cfg.registry, partials: cfg.partials}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render emits the whole form including hidden fields, form-level errors and
// the component assets.
func (r *Renderer) Render(_ context.Context, f render.Form, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	if f == nil {
		return nil, fmt.Errorf("vanilla renderer: form is nil")
	}

	fieldRenderer := newComponentRenderer(r.templates, r.registry, r.partials, options.FieldAction)
	states := applyErrorOverrides(f.Fields(), options.Errors)

	fields := make([]string, 0, len(states))
	for _, state := range states {
		markup, err := fieldRenderer.render(state)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: %w", err)
		}
		fields = append(fields, markup)
	}
	stylesheets, scripts := fieldRenderer.assets()

	submitLabel := strings.TrimSpace(options.SubmitLabel)
	if submitLabel == "" {
		submitLabel = DefaultSubmitLabel
	}

	result, err := r.templates.RenderTemplate("templates/form.tmpl", map[string]any{
		"action":        options.Action,
		"session":       options.SessionID,
		"hidden_fields": render.HiddenFieldsFor(options),
		"form_errors":   render.MergeFormErrors(f.FormErrors(), options.FormErrors...),
		"fields":        fields,
		"submit_label":  submitLabel,
		"classes":       chromeClasses(),
		"stylesheets":   stylesheets,
		"scripts":       scripts,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

// RenderField emits the markup of a single field, used to refresh one field
// after an edit changes its shape (a datetime gaining its time control).
func (r *Renderer) RenderField(state form.FieldState, options render.RenderOptions) (string, error) {
	if r.templates == nil {
		return "", fmt.Errorf("vanilla renderer: template renderer is nil")
	}
	states := applyErrorOverrides([]form.FieldState{state}, options.Errors)
	markup, err := newComponentRenderer(r.templates, r.registry, r.partials, options.FieldAction).render(states[0])
	if err != nil {
		return "", fmt.Errorf("vanilla renderer: %w", err)
	}
	return markup, nil
}

func applyErrorOverrides(states []form.FieldState, overrides map[string][]string) []form.FieldState {
	if len(overrides) == 0 {
		return states
	}
	out := make([]form.FieldState, len(states))
	for idx, state := range states {
		if msgs, ok := overrides[state.Field.Name]; ok {
			state.Errors = append([]string(nil), msgs...)
		}
		out[idx] = state
	}
	return out
}
