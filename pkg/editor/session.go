package editor

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/preview"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/store"
	"github.com/goliatone/go-formpreview/pkg/surface"
)

// DefaultHostID is the id of the preview host element.
const DefaultHostID = "template-preview"

// SampleValues are rendered until the operator fills the matching fields.
func SampleValues() map[string]any {
	return map[string]any{
		"name":     "Emily & Michael",
		"date":     "Saturday, June 15, 2025 at 6:00 PM",
		"location": "123 Celebration Avenue <br> New York, NY 10001",
	}
}

type config struct {
	hostID    string
	mode      surface.Mode
	selection *theme.Selection
	samples   map[string]any
	onSubmit  form.SubmitFunc
	presenter surface.Presenter
	location  *time.Location
	logger    *slog.Logger
}

// Option configures a Session.
type Option func(*config)

// WithHostID sets the preview host element id.
func WithHostID(id string) Option {
	return func(c *config) {
		if id != "" {
			c.hostID = id
		}
	}
}

// WithSurfaceMode selects the isolation boundary for the default surface.
func WithSurfaceMode(mode surface.Mode) Option {
	return func(c *config) {
		if mode != "" {
			c.mode = mode
		}
	}
}

// WithTheme applies theme tokens to the default surface.
func WithTheme(selection *theme.Selection) Option {
	return func(c *config) {
		c.selection = selection
	}
}

// WithSamples replaces the sample values rendered under the store values.
// A nil map disables samples.
func WithSamples(values map[string]any) Option {
	return func(c *config) {
		c.samples = values
	}
}

// WithSubmit sets the callback run after a valid submit.
func WithSubmit(fn form.SubmitFunc) Option {
	return func(c *config) {
		c.onSubmit = fn
	}
}

// WithPresenter replaces the HTML surface, for example with a
// surface.Terminal.
func WithPresenter(p surface.Presenter) Option {
	return func(c *config) {
		if p != nil {
			c.presenter = p
		}
	}
}

// WithLocation sets the time zone date pickers resolve days in.
func WithLocation(loc *time.Location) Option {
	return func(c *config) {
		if loc != nil {
			c.location = loc
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Session is one operator editing one template.
type Session struct {
	ID      string
	Store   *store.Store
	Form    *form.Controller
	Preview *preview.Pipeline
	Surface surface.Presenter

	logger *slog.Logger

	mu       sync.Mutex
	template model.Template
	closed   bool
}

// NewSession builds the controller and preview pipeline for tpl around st
// and renders the initial preview.
func NewSession(id string, tpl model.Template, st *store.Store, opts ...Option) (*Session, error) {
	cfg := config{
		hostID:  DefaultHostID,
		mode:    surface.ModeShadow,
		samples: SampleValues(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if st == nil {
		st = store.New()
	}
	logger := cfg.logger.With("session", id)

	presenter := cfg.presenter
	if presenter == nil {
		presenter = surface.New(cfg.hostID,
			surface.WithMode(cfg.mode),
			surface.WithTheme(cfg.selection),
			surface.WithLogger(logger),
		)
	}

	renderer, err := preview.NewRenderer(preview.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("editor: %w", err)
	}

	formOpts := []form.Option{form.WithLogger(logger)}
	if cfg.location != nil {
		formOpts = append(formOpts, form.WithLocation(cfg.location))
	}

	s := &Session{
		ID:      id,
		Store:   st,
		Form:    form.New(tpl.Fields, st, cfg.onSubmit, formOpts...),
		Preview: preview.NewPipeline(renderer, st, presenter, preview.WithOverlay(cfg.samples)),
		Surface: presenter,
		logger:  logger,
	}
	s.template = tpl

	if err := renderer.SetTemplate(tpl.HTML); err != nil {
		logger.Warn("editor: initial template does not compile", "error", err)
	}
	s.Preview.Start()
	return s, nil
}

// Template returns the template being edited.
func (s *Session) Template() model.Template {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.template
}

// SetTemplate swaps the template. New field definitions reset the form;
// the markup is recompiled before the next render either way.
func (s *Session) SetTemplate(tpl model.Template) (surface.Frame, error) {
	s.mu.Lock()
	prev := s.template
	s.template = tpl
	s.mu.Unlock()

	if !sameFields(prev.Fields, tpl.Fields) {
		s.Form.SetFields(tpl.Fields)
	}
	frame, err := s.Preview.SetTemplate(tpl.HTML)
	if err != nil {
		return frame, fmt.Errorf("editor: %w", err)
	}
	return frame, nil
}

// Submit validates the form. On success the coerced values replace the
// store contents wholesale.
func (s *Session) Submit() form.Outcome {
	outcome := s.Form.Submit()
	if outcome.OK {
		s.Store.SetValues(outcome.Values)
	}
	return outcome
}

// ApplyErrors maps an error payload reported by a downstream system onto
// the form. Keys that name no field become form-level messages.
func (s *Session) ApplyErrors(payload map[string][]string) render.ErrorMapping {
	mapping := render.MapErrorPayload(s.Template().Fields, payload)
	s.Form.SetErrors(mapping.Fields, mapping.Form)
	return mapping
}

// Mount returns the full host markup for a page load. Presenters without a
// host element return the latest frame.
func (s *Session) Mount() surface.Frame {
	if mounter, ok := s.Surface.(interface{ Mount() surface.Frame }); ok {
		return mounter.Mount()
	}
	return s.Preview.Frame()
}

// Frame returns the latest preview frame.
func (s *Session) Frame() surface.Frame {
	return s.Preview.Frame()
}

// Close stops the preview and closes the store.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.Preview.Stop()
	s.Store.Close()
}

func sameFields(a, b []model.Field) bool {
	if len(a) != len(b) {
		return false
	}
	for idx := range a {
		if a[idx].Name != b[idx].Name || a[idx].Kind != b[idx].Kind || a[idx].Label != b[idx].Label ||
			a[idx].Required != b[idx].Required || a[idx].Placeholder != b[idx].Placeholder ||
			a[idx].Description != b[idx].Description || len(a[idx].Options) != len(b[idx].Options) {
			return false
		}
		for o := range a[idx].Options {
			if a[idx].Options[o] != b[idx].Options[o] {
				return false
			}
		}
	}
	return true
}
