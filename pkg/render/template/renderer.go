package template

import (
	"io"
)

// TemplateRenderer is the seam renderers use to execute named templates and
// ad-hoc template strings.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
}

// Compiled is a parsed template that can be executed repeatedly.
type Compiled interface {
	Execute(data any, out ...io.Writer) (string, error)
}

// Compiler parses template source once so it can be evaluated many times.
type Compiler interface {
	Compile(source string) (Compiled, error)
}
