package form

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/widgets"
)

// Display layouts for picked dates.
const (
	DateLayout     = "January 2, 2006"
	DatetimeLayout = "January 2, 2006 15:04"
	TimeLayout     = "15:04"
)

// FieldState is the renderable view of a single field.
type FieldState struct {
	Field       model.Field
	Widget      string
	InputType   string
	Label       string
	Placeholder string
	Value       any
	// Display is the value formatted for a control: raw text, the selected
	// option's value, or a formatted date.
	Display string
	// Time is the "HH:MM" part of a datetime value.
	Time string
	// ShowTime is true for datetime fields once a date is selected.
	ShowTime bool
	Errors   []string
}

// HasErrors reports whether the field carries messages.
func (s FieldState) HasErrors() bool {
	return len(s.Errors) > 0
}

// Fields returns a view of every field in definition order.
func (c *Controller) Fields() []FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]FieldState, 0, len(c.fields))
	for _, field := range c.fields {
		out = append(out, c.stateLocked(field))
	}
	return out
}

// Field returns the view of a single field.
func (c *Controller) Field(name string) (FieldState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	field, ok := c.byName[name]
	if !ok {
		return FieldState{}, false
	}
	return c.stateLocked(field), true
}

func (c *Controller) stateLocked(field model.Field) FieldState {
	widget, _ := c.widgets.Resolve(field)
	value := c.values[field.Name]
	state := FieldState{
		Field:       field,
		Widget:      widget,
		InputType:   widgets.InputType(field),
		Label:       field.DisplayLabel(),
		Placeholder: Placeholder(field),
		Value:       value,
		Display:     DisplayValue(field, value),
		Errors:      append([]string(nil), c.errors[field.Name]...),
	}
	if field.Kind.Normalize() == model.FieldKindDatetime {
		if picked, ok := value.(time.Time); ok && !picked.IsZero() {
			state.ShowTime = true
			state.Time = picked.Format(TimeLayout)
		}
	}
	return state
}

// Placeholder returns the declared placeholder or the default prompt for the
// field's kind.
func Placeholder(field model.Field) string {
	if placeholder := strings.TrimSpace(field.Placeholder); placeholder != "" {
		return placeholder
	}
	label := strings.ToLower(field.DisplayLabel())
	switch field.Kind.Normalize() {
	case model.FieldKindSelect:
		return "Select " + label
	case model.FieldKindDate:
		return "Pick a date"
	case model.FieldKindDatetime:
		return "Pick date and time"
	default:
		return "Enter " + label
	}
}

// DisplayValue formats value for presentation in the field's control.
func DisplayValue(field model.Field, value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if field.Kind.Normalize() == model.FieldKindDatetime {
			return v.Format(DatetimeLayout)
		}
		return v.Format(DateLayout)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
