package form

import (
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/store"
	"github.com/goliatone/go-formpreview/pkg/validation"
	"github.com/goliatone/go-formpreview/pkg/widgets"
)

// SubmitFunc receives the validated, coerced values of a successful submit.
// A returned error is reported as a form-level error.
type SubmitFunc func(values map[string]any) error

// Outcome describes the result of a submit.
type Outcome struct {
	OK         bool
	Values     map[string]any
	Errors     map[string][]string
	FormErrors []string
}

// Controller owns the controlled values of one form. It never reads the
// preview; the store is the only channel between the two.
type Controller struct {
	mu sync.Mutex

	fields   []model.Field
	byName   map[string]model.Field
	schema   validation.Schema
	values   map[string]any
	errors   map[string][]string
	formErrs []string
	// submitted is set after the first failed submit so later edits
	// re-validate the field they touch.
	submitted bool

	store    *store.Store
	onSubmit SubmitFunc
	widgets  *widgets.Registry
	logger   *slog.Logger
	location *time.Location
}

// New builds a controller for fields writing into st. onSubmit may be nil.
func New(fields []model.Field, st *store.Store, onSubmit SubmitFunc, opts ...Option) *Controller {
	c := &Controller{
		store:    st,
		onSubmit: onSubmit,
		widgets:  widgets.NewRegistry(),
		logger:   slog.Default(),
		location: time.UTC,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.SetFields(fields)
	return c
}

// SetFields replaces the definition list, recompiles the schema and resets
// every controlled value to its initial state.
func (c *Controller) SetFields(fields []model.Field) {
	cloned := model.CloneFields(fields)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.fields = nil
	c.byName = make(map[string]model.Field, len(cloned))
	for _, field := range cloned {
		field.Name = strings.TrimSpace(field.Name)
		if field.Name == "" {
			continue
		}
		if _, dup := c.byName[field.Name]; dup {
			c.logger.Warn("form: duplicate field name merged", "field", field.Name)
			for idx := range c.fields {
				if c.fields[idx].Name == field.Name {
					c.fields[idx] = field
				}
			}
		} else {
			c.fields = append(c.fields, field)
		}
		c.byName[field.Name] = field
	}
	c.schema = validation.Compile(c.fields)
	c.values = make(map[string]any, len(c.fields))
	for _, field := range c.fields {
		if initial, ok := initialValue(field); ok {
			c.values[field.Name] = initial
		}
	}
	c.errors = nil
	c.formErrs = nil
	c.submitted = false
}

// Schema returns the compiled schema for the current field list.
func (c *Controller) Schema() validation.Schema {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema
}

// Value returns the controlled value for name.
func (c *Controller) Value(name string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[name]
	return value, ok
}

// Values returns a copy of every controlled value.
func (c *Controller) Values() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return maps.Clone(c.values)
}

// Input records a keystroke-level edit for a free-text widget. The raw text
// is stored as typed; coercion is left to submit.
func (c *Controller) Input(name, raw string) error {
	c.mu.Lock()
	field, ok := c.byName[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !field.Kind.IsTextLike() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrWidgetMismatch, name, field.Kind)
	}
	c.setLocked(name, raw)
	c.mu.Unlock()

	c.store.UpdateValue(name, raw)
	return nil
}

// Select chooses one of a select field's options.
func (c *Controller) Select(name, value string) error {
	c.mu.Lock()
	field, ok := c.byName[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if field.Kind.Normalize() != model.FieldKindSelect {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrWidgetMismatch, name, field.Kind)
	}
	if !field.HasOption(value) {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q for %s", ErrUnknownOption, value, name)
	}
	c.setLocked(name, value)
	c.mu.Unlock()

	c.store.UpdateValue(name, value)
	return nil
}

// PickDate applies a calendar selection. Only the calendar day of day is
// used; it is placed in the controller's location. Date fields drop the time
// of day; datetime fields keep the hour and minute already chosen.
func (c *Controller) PickDate(name string, day time.Time) error {
	if day.IsZero() {
		return c.Clear(name)
	}
	c.mu.Lock()
	field, ok := c.byName[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if !field.Kind.IsDateLike() {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrWidgetMismatch, name, field.Kind)
	}

	hour, minute := 0, 0
	if field.Kind.Normalize() == model.FieldKindDatetime {
		if current, ok := c.values[name].(time.Time); ok {
			hour, minute = current.Hour(), current.Minute()
		}
	}
	next := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, c.location)
	c.setLocked(name, next)
	c.mu.Unlock()

	c.store.UpdateValue(name, next)
	return nil
}

// SetTime applies an "HH:MM" time of day to the selected date of a datetime
// field.
func (c *Controller) SetTime(name, hhmm string) error {
	parsed, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return c.SetClock(name, parsed.Hour(), parsed.Minute())
}

// SetClock applies hour and minute to the selected date of a datetime field.
func (c *Controller) SetClock(name string, hour, minute int) error {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}
	c.mu.Lock()
	field, ok := c.byName[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	if field.Kind.Normalize() != model.FieldKindDatetime {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s is %s", ErrWidgetMismatch, name, field.Kind)
	}
	current, ok := c.values[name].(time.Time)
	if !ok || current.IsZero() {
		c.mu.Unlock()
		return ErrNoDateSelected
	}
	next := time.Date(current.Year(), current.Month(), current.Day(), hour, minute, 0, 0, current.Location())
	c.setLocked(name, next)
	c.mu.Unlock()

	c.store.UpdateValue(name, next)
	return nil
}

// Clear returns a field to its initial value.
func (c *Controller) Clear(name string) error {
	c.mu.Lock()
	field, ok := c.byName[name]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	initial, present := initialValue(field)
	if present {
		c.setLocked(name, initial)
	} else {
		delete(c.values, name)
		c.revalidateLocked(name)
	}
	c.mu.Unlock()

	if present {
		c.store.UpdateValue(name, initial)
	} else {
		c.store.Delete(name)
	}
	return nil
}

// Submit validates every controlled value. On success the submit callback
// receives the coerced values; on failure per-field errors are recorded and
// the callback is not called.
func (c *Controller) Submit() (outcome Outcome) {
	c.mu.Lock()
	result := c.schema.Validate(c.values)
	if !result.Valid() {
		c.errors = result.Errors
		c.formErrs = nil
		c.submitted = true
		outcome = Outcome{Errors: cloneErrors(result.Errors)}
		c.mu.Unlock()
		return outcome
	}
	c.errors = nil
	c.formErrs = nil
	callback := c.onSubmit
	c.mu.Unlock()

	outcome = Outcome{OK: true, Values: result.Values}
	if callback == nil {
		return outcome
	}
	if err := c.invoke(callback, maps.Clone(result.Values)); err != nil {
		c.mu.Lock()
		c.formErrs = []string{err.Error()}
		c.mu.Unlock()
		return Outcome{Values: result.Values, FormErrors: []string{err.Error()}}
	}
	return outcome
}

func (c *Controller) invoke(fn SubmitFunc, values map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("form: submit handler panicked", "panic", r)
			err = fmt.Errorf("form: submit failed: %v", r)
		}
	}()
	return fn(values)
}

// Errors returns the per-field messages recorded by the last submit.
func (c *Controller) Errors() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneErrors(c.errors)
}

// FormErrors returns errors that are not tied to a field.
func (c *Controller) FormErrors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.formErrs...)
}

// SetErrors replaces the per-field messages, typically with errors mapped
// back from a downstream submit handler.
func (c *Controller) SetErrors(fieldErrors map[string][]string, formErrors []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = cloneErrors(fieldErrors)
	c.formErrs = append([]string(nil), formErrors...)
}

func (c *Controller) setLocked(name string, value any) {
	c.values[name] = value
	c.revalidateLocked(name)
}

func (c *Controller) revalidateLocked(name string) {
	if !c.submitted {
		return
	}
	_, msg := c.schema.ValidateField(name, c.values[name])
	if msg == "" {
		delete(c.errors, name)
		return
	}
	if c.errors == nil {
		c.errors = make(map[string][]string)
	}
	c.errors[name] = []string{msg}
}

func initialValue(field model.Field) (any, bool) {
	if field.Kind.IsTextLike() {
		return "", true
	}
	return nil, false
}

func cloneErrors(src map[string][]string) map[string][]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string][]string, len(src))
	for key, msgs := range src {
		out[key] = append([]string(nil), msgs...)
	}
	return out
}
