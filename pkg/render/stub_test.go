package render_test

import (
	"context"

	"github.com/goliatone/go-formpreview/pkg/render"
)

type stubRenderer struct {
	name string
}

func (s stubRenderer) Name() string        { return s.name }
func (s stubRenderer) ContentType() string { return "text/plain" }
func (s stubRenderer) Render(context.Context, render.Form, render.RenderOptions) ([]byte, error) {
	return nil, nil
}
