package render

import (
	"context"

	"github.com/goliatone/go-formpreview/pkg/form"
)

// Form is the read side of a form controller that renderers consume.
type Form interface {
	Fields() []form.FieldState
	FormErrors() []string
}

// Renderer converts a form view into a byte representation (HTML, terminal
// transcript, etc.).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, f Form, options RenderOptions) ([]byte, error)
}
