package preview

import (
	"maps"
	"sync"

	"github.com/goliatone/go-formpreview/pkg/store"
	"github.com/goliatone/go-formpreview/pkg/surface"
)

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithOverlay seeds values rendered whenever the store has no usable value
// for the same key. Store values win; nil and "" count as unset.
func WithOverlay(values map[string]any) PipelineOption {
	return func(p *Pipeline) {
		p.overlay = maps.Clone(values)
	}
}

// Pipeline re-renders the template on every store write and hands the
// markup to a presenter.
type Pipeline struct {
	renderer  *Renderer
	store     *store.Store
	presenter surface.Presenter
	overlay   map[string]any

	mu      sync.Mutex
	markup  string
	frame   surface.Frame
	renders int
	cancel  func()
}

// NewPipeline wires renderer to st and presenter. Call Start to subscribe.
func NewPipeline(renderer *Renderer, st *store.Store, presenter surface.Presenter, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		renderer:  renderer,
		store:     st,
		presenter: presenter,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Start subscribes to the store and renders the current values once.
func (p *Pipeline) Start() surface.Frame {
	p.mu.Lock()
	if p.cancel == nil {
		p.cancel = p.store.Subscribe(p.onStore)
	}
	p.mu.Unlock()
	return p.Refresh()
}

// Stop unsubscribes from the store.
func (p *Pipeline) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// SetTemplate recompiles (when src changed) and then re-renders, so the new
// template is in place before the next evaluation.
func (p *Pipeline) SetTemplate(src string) (surface.Frame, error) {
	err := p.renderer.SetTemplate(src)
	return p.Refresh(), err
}

// Refresh re-renders against the store's current values, read under the
// render lock.
func (p *Pipeline) Refresh() surface.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presentLocked(p.store.Values())
}

// Markup returns the markup of the last render.
func (p *Pipeline) Markup() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.markup
}

// Frame returns the last frame handed out by the presenter.
func (p *Pipeline) Frame() surface.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.frame
}

// Renders counts completed renders.
func (p *Pipeline) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

// Err reports the renderer's current template error.
func (p *Pipeline) Err() error {
	return p.renderer.Err()
}

func (p *Pipeline) onStore(values map[string]any) {
	p.present(values)
}

func (p *Pipeline) present(values map[string]any) surface.Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.presentLocked(values)
}

func (p *Pipeline) presentLocked(values map[string]any) surface.Frame {
	markup := p.renderer.Render(withOverlay(values, p.overlay))
	p.markup = markup
	p.renders++
	if p.presenter != nil {
		p.frame = p.presenter.Present(markup)
	}
	return p.frame
}

func withOverlay(values, overlay map[string]any) map[string]any {
	if len(overlay) == 0 {
		return values
	}
	merged := maps.Clone(overlay)
	for key, value := range values {
		if unset(value) {
			if _, ok := merged[key]; ok {
				continue
			}
		}
		merged[key] = value
	}
	return merged
}

func unset(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	default:
		return false
	}
}
