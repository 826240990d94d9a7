package model

import "strings"

// FieldKind is the closed set of input kinds a field can declare. Unknown
// kinds are preserved verbatim and handled as plain text downstream.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindEmail    FieldKind = "email"
	FieldKindNumber   FieldKind = "number"
	FieldKindTextarea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
	FieldKindDate     FieldKind = "date"
	FieldKindDatetime FieldKind = "datetime"
)

// Known reports whether k is one of the built-in kinds.
func (k FieldKind) Known() bool {
	switch k.Normalize() {
	case FieldKindText, FieldKindEmail, FieldKindNumber, FieldKindTextarea,
		FieldKindSelect, FieldKindDate, FieldKindDatetime:
		return true
	default:
		return false
	}
}

// Normalize lower-cases and trims the kind identifier.
func (k FieldKind) Normalize() FieldKind {
	return FieldKind(strings.ToLower(strings.TrimSpace(string(k))))
}

// IsDateLike reports whether the kind stores a time.Time value.
func (k FieldKind) IsDateLike() bool {
	switch k.Normalize() {
	case FieldKindDate, FieldKindDatetime:
		return true
	default:
		return false
	}
}

// IsTextLike reports whether the kind is edited as free text and initialised
// with an empty string. Unknown kinds count as text.
func (k FieldKind) IsTextLike() bool {
	switch k.Normalize() {
	case FieldKindSelect, FieldKindDate, FieldKindDatetime:
		return false
	default:
		return true
	}
}

// Option is a single choice offered by a select field.
type Option struct {
	Label string `json:"label" yaml:"label" hcl:"label"`
	Value string `json:"value" yaml:"value" hcl:"value"`
}

// Field models one input definition. Tags follow the wire shape of the
// template source payload (`type` carries the kind).
type Field struct {
	Name        string    `json:"name" yaml:"name"`
	Kind        FieldKind `json:"type" yaml:"type"`
	Label       string    `json:"label" yaml:"label"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
}

// DisplayLabel returns the label, falling back to the field name.
func (f Field) DisplayLabel() string {
	if label := strings.TrimSpace(f.Label); label != "" {
		return label
	}
	return strings.TrimSpace(f.Name)
}

// HasOption reports whether value is one of the declared select options.
func (f Field) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// OptionLabel resolves the label for a select value, or "" when unknown.
func (f Field) OptionLabel(value string) string {
	for _, opt := range f.Options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return ""
}

// Template is the `{html, fields}` document served by template sources.
type Template struct {
	ID     string  `json:"id,omitempty" yaml:"id,omitempty"`
	HTML   string  `json:"html" yaml:"html"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Duplicates returns field names that appear more than once, in order of
// their second occurrence.
func Duplicates(fields []Field) []string {
	seen := make(map[string]struct{}, len(fields))
	reported := make(map[string]struct{})
	var out []string
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; !ok {
			seen[name] = struct{}{}
			continue
		}
		if _, ok := reported[name]; ok {
			continue
		}
		reported[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

// CloneFields returns a deep copy of the slice so callers can hold on to a
// definition list without sharing option slices.
func CloneFields(fields []Field) []Field {
	if fields == nil {
		return nil
	}
	out := make([]Field, len(fields))
	for idx, field := range fields {
		if len(field.Options) > 0 {
			field.Options = append([]Option(nil), field.Options...)
		}
		out[idx] = field
	}
	return out
}
