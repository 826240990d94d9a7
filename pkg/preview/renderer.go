package preview

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/goliatone/go-formpreview/pkg/render/template"
	"github.com/goliatone/go-formpreview/pkg/render/template/gotemplate"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithCompiler replaces the pongo2 engine used to compile templates.
func WithCompiler(compiler template.Compiler) Option {
	return func(r *Renderer) {
		if compiler != nil {
			r.compiler = compiler
		}
	}
}

// WithLogger overrides the logger used to report template failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Renderer holds one compiled template. The template and its compiled form
// change together under the lock, so a render never sees a stale pair.
type Renderer struct {
	mu         sync.Mutex
	compiler   template.Compiler
	logger     *slog.Logger
	source     string
	compiled   template.Compiled
	compileErr error
	execErr    error
}

// NewRenderer builds a renderer backed by a string-only pongo2 engine
// unless WithCompiler is given.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{logger: slog.Default()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.compiler == nil {
		engine, err := gotemplate.New(gotemplate.WithName("preview"))
		if err != nil {
			return nil, fmt.Errorf("preview: create engine: %w", err)
		}
		r.compiler = engine
	}
	return r, nil
}

// SetTemplate compiles src when it differs from the current template. A
// compile failure clears the compiled template and is returned as well as
// kept for Err.
func (r *Renderer) SetTemplate(src string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if src == r.source && (r.compiled != nil || r.compileErr != nil || src == "") {
		return r.compileErr
	}

	r.source = src
	r.compiled = nil
	r.compileErr = nil
	r.execErr = nil
	if src == "" {
		return nil
	}

	compiled, err := r.compiler.Compile(translateHandlebars(src))
	if err != nil {
		r.compileErr = fmt.Errorf("preview: compile template: %w", err)
		r.logger.Warn("preview: template does not compile", "error", err)
		return r.compileErr
	}
	r.compiled = compiled
	return nil
}

// Template returns the current template source.
func (r *Renderer) Template() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.source
}

// Render evaluates the template against values. Missing variables render
// empty; an empty template, an empty value set or a failing template yields
// "".
func (r *Renderer) Render(values map[string]any) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.execErr = nil
	if r.compiled == nil || len(values) == 0 {
		return ""
	}

	markup, err := r.execute(values)
	if err != nil {
		r.execErr = fmt.Errorf("preview: render template: %w", err)
		r.logger.Warn("preview: template execution failed", "error", err)
		return ""
	}
	return markup
}

func (r *Renderer) execute(values map[string]any) (markup string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return r.compiled.Execute(values)
}

// Err reports the compile error of the current template or the execution
// error of the last render.
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.compileErr != nil {
		return r.compileErr
	}
	return r.execErr
}
