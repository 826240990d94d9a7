package components

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-formpreview/pkg/form"
)

const (
	templatePrefix = "templates/components/"

	// StylesheetHref and ScriptHref are the asset paths every built-in
	// component depends on. The HTTP shell serves them from AssetsFS.
	StylesheetHref = "/assets/formpreview.css"
	ScriptHref     = "/assets/formpreview.js"
)

var sharedScripts = []Script{{Src: ScriptHref, Defer: true}}

// NewDefaultRegistry constructs a registry pre-populated with the built-in
// components used by the vanilla renderer.
func NewDefaultRegistry() *Registry {
	registry := New()

	for _, entry := range []struct {
		name       string
		partialKey string
	}{
		{NameInput, "forms.input"},
		{NameTextarea, "forms.textarea"},
		{NameSelect, "forms.select"},
		{NameDate, "forms.date"},
		{NameDatetime, "forms.datetime"},
	} {
		registry.MustRegister(entry.name, Descriptor{
			Renderer:    templateComponentRenderer(entry.partialKey, templatePrefix+entry.name+".tmpl"),
			Stylesheets: []string{StylesheetHref},
			Scripts:     sharedScripts,
		})
	}

	return registry
}

func templateComponentRenderer(partialKey, templateName string) Renderer {
	return func(buf *bytes.Buffer, field form.FieldState, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		resolvedTemplate := templateName
		if data.Partials != nil {
			if candidate := strings.TrimSpace(data.Partials[partialKey]); candidate != "" {
				resolvedTemplate = candidate
			}
		}

		rendered, err := data.Template.RenderTemplate(resolvedTemplate, controlPayload(field, data))
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}

// controlPayload flattens a field view into the template context shared by
// every component template.
func controlPayload(field form.FieldState, data ComponentData) map[string]any {
	options := make([]map[string]any, 0, len(field.Field.Options))
	for _, opt := range field.Field.Options {
		options = append(options, map[string]any{
			"label":    opt.Label,
			"value":    opt.Value,
			"selected": field.Display == opt.Value,
		})
	}

	return map[string]any{
		"id":          ControlID(field.Field.Name),
		"name":        field.Field.Name,
		"label":       field.Label,
		"input_type":  field.InputType,
		"value":       field.Display,
		"raw":         field.Value,
		"placeholder": field.Placeholder,
		"required":    field.Field.Required,
		"invalid":     field.HasErrors(),
		"error_id":    ErrorID(field.Field.Name),
		"options":     options,
		"iso_date":    isoDate(field),
		"time":        field.Time,
		"show_time":   field.ShowTime,
		"action":      data.FieldAction,
	}
}

// ControlID is the DOM id of a field's primary control.
func ControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "fp-" + trimmed
}

// ErrorID is the DOM id of the element holding a field's messages.
func ErrorID(name string) string {
	id := ControlID(name)
	if id == "" {
		return ""
	}
	return id + "-error"
}

// isoDate renders the picked day in the layout native date inputs expect.
func isoDate(field form.FieldState) string {
	picked, ok := field.Value.(time.Time)
	if !ok || picked.IsZero() {
		return ""
	}
	return picked.Format("2006-01-02")
}
