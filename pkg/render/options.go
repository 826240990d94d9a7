package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the form controller.
type RenderOptions struct {
	// Action is the submit endpoint. Renderers that post per-field edits
	// derive their field endpoints from it.
	Action string
	// FieldAction is the per-field edit endpoint prefix; the field name is
	// appended to it.
	FieldAction string
	// SessionID identifies the editor session the form writes to. It is
	// emitted as a hidden field.
	SessionID string
	// HiddenFields are emitted verbatim as hidden inputs.
	HiddenFields map[string]string
	// Errors overrides the per-field messages held by the form, for example
	// with errors mapped back from a downstream handler.
	Errors map[string][]string
	// FormErrors are shown above the fields.
	FormErrors []string
	// SubmitLabel overrides the submit button caption.
	SubmitLabel string
}
