package validation

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// Rule validates and coerces the value of a single field.
type Rule struct {
	field    model.Field
	required bool
	base     base
}

// Field returns the definition the rule was compiled from.
func (r Rule) Field() model.Field {
	return r.field
}

// Required reports whether absence fails the rule.
func (r Rule) Required() bool {
	return r.required
}

// RequiredMessage is the message reported for a missing required value.
func (r Rule) RequiredMessage() string {
	return fmt.Sprintf("%s is required", r.field.DisplayLabel())
}

// Check validates value. present is false when the value is absent (and the
// field optional), in which case out should be omitted from the result.
func (r Rule) Check(value any) (out any, present bool, message string) {
	if r.isAbsent(value) {
		if r.required {
			return nil, false, r.RequiredMessage()
		}
		if r.base.stringKind && value != nil {
			// Optional text keeps the empty string it was given.
			return value, true, ""
		}
		return nil, false, ""
	}

	coerced, msg := r.base.coerce(r.field, value)
	if msg != "" {
		return nil, false, msg
	}
	return coerced, true, ""
}

func (r Rule) isAbsent(value any) bool {
	if value == nil {
		return true
	}
	return r.base.empty(value)
}

// Schema is the compiled, immutable validator for a field list.
type Schema struct {
	order []string
	rules map[string]Rule
}

// Result is the outcome of validating a value set. Values holds coerced values
// for every present field; Errors maps field names to their messages.
type Result struct {
	Values map[string]any
	Errors map[string][]string
}

// Valid reports whether no field failed.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// ErrorFor returns the first message recorded for name.
func (r Result) ErrorFor(name string) string {
	if msgs := r.Errors[name]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Compile builds a Schema from field definitions. Fields with an empty name
// are skipped; duplicate names collapse onto the last definition.
func Compile(fields []model.Field) Schema {
	schema := Schema{rules: make(map[string]Rule, len(fields))}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		field.Name = name
		if _, exists := schema.rules[name]; !exists {
			schema.order = append(schema.order, name)
		}
		schema.rules[name] = compileRule(field)
	}
	return schema
}

func compileRule(field model.Field) Rule {
	return Rule{
		field:    field,
		required: field.Required,
		base:     baseFor(field.Kind),
	}
}

// Fields returns the field names covered by the schema in definition order.
func (s Schema) Fields() []string {
	return append([]string(nil), s.order...)
}

// Rule returns the rule compiled for name.
func (s Schema) Rule(name string) (Rule, bool) {
	rule, ok := s.rules[name]
	return rule, ok
}

// Validate checks every field in the schema against values. Keys in values
// that the schema does not know are ignored.
func (s Schema) Validate(values map[string]any) Result {
	result := Result{Values: make(map[string]any, len(s.order))}
	for _, name := range s.order {
		rule := s.rules[name]
		out, present, msg := rule.Check(values[name])
		if msg != "" {
			if result.Errors == nil {
				result.Errors = make(map[string][]string)
			}
			result.Errors[name] = []string{msg}
			continue
		}
		if present {
			result.Values[name] = out
		}
	}
	return result
}

// ValidateField checks a single value against the rule for name. Unknown
// names validate as optional free text.
func (s Schema) ValidateField(name string, value any) (any, string) {
	rule, ok := s.rules[name]
	if !ok {
		rule = compileRule(model.Field{Name: name})
	}
	out, _, msg := rule.Check(value)
	return out, msg
}
