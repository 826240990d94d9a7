package vanilla

import (
	"bytes"
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/render/template"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla/components"
)

type componentRenderer struct {
	templates   template.TemplateRenderer
	registry    *components.Registry
	partials    map[string]string
	fieldAction string

	usedComponents map[string]struct{}
}

func newComponentRenderer(templates template.TemplateRenderer, registry *components.Registry, partials map[string]string, fieldAction string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		templates:      templates,
		registry:       registry,
		partials:       cloneStringMap(partials),
		fieldAction:    fieldAction,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(state form.FieldState) (string, error) {
	componentName := state.Widget
	if componentName == "" {
		componentName = components.NameInput
	}

	descriptor, ok := r.registry.Descriptor(componentName)
	if !ok {
		return "", fmt.Errorf("component %q not registered for field %q", componentName, state.Field.Name)
	}

	data := components.ComponentData{
		Template:    r.templates,
		FieldAction: fieldActionFor(r.fieldAction, state.Field.Name),
		Partials:    r.partials,
	}

	var control bytes.Buffer
	if err := descriptor.Renderer(&control, state, data); err != nil {
		return "", fmt.Errorf("render component %q for field %q: %w", componentName, state.Field.Name, err)
	}

	r.usedComponents[componentName] = struct{}{}

	return buildFieldMarkup(state, componentName, control.String()), nil
}

func (r *componentRenderer) assets() (stylesheets []string, scripts []components.Script) {
	if r.registry == nil || len(r.usedComponents) == 0 {
		return nil, nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Assets(names)
}

// buildFieldMarkup wraps a control with its label, description and the
// messages recorded for the field. Messages always sit beneath the control.
func buildFieldMarkup(state form.FieldState, componentName, control string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	name := html.EscapeString(state.Field.Name)

	builder.WriteString(`<div class="`)
	builder.WriteString(string(ClassField))
	builder.WriteString(`" data-field="`)
	builder.WriteString(name)
	builder.WriteString(`" data-component="`)
	builder.WriteString(html.EscapeString(componentName))
	builder.WriteString(`"`)
	if state.HasErrors() {
		builder.WriteString(` data-invalid="true"`)
	}
	builder.WriteString(">\n")

	if label := strings.TrimSpace(state.Label); label != "" {
		builder.WriteString(`    <label for="`)
		builder.WriteString(html.EscapeString(components.ControlID(state.Field.Name)))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(label))
		if state.Field.Required {
			builder.WriteString(` <span class="fp-required">*</span>`)
		}
		builder.WriteString("</label>\n")
	}

	for _, line := range strings.Split(control, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		builder.WriteString("    ")
		builder.WriteString(line)
		builder.WriteByte('\n')
	}

	if desc := sanitizeDescription(state.Field.Description); desc != "" {
		builder.WriteString(`    <small class="`)
		builder.WriteString(string(ClassDescription))
		builder.WriteString(`">`)
		builder.WriteString(desc)
		builder.WriteString("</small>\n")
	}

	if state.HasErrors() {
		builder.WriteString(`    <p id="`)
		builder.WriteString(html.EscapeString(components.ErrorID(state.Field.Name)))
		builder.WriteString(`" class="`)
		builder.WriteString(string(ClassFieldErrors))
		builder.WriteString(`" role="alert">`)
		builder.WriteString(html.EscapeString(state.Errors[0]))
		builder.WriteString("</p>\n")
	}

	builder.WriteString("</div>\n")
	return builder.String()
}
