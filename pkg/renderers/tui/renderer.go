package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/validation"
	"github.com/goliatone/go-formpreview/pkg/widgets"
)

// Editor is the write side of a form controller. Every answer is routed
// through it so the shared store sees each edit as it happens.
type Editor interface {
	render.Form
	Input(name, raw string) error
	Select(name, value string) error
	PickDate(name string, day time.Time) error
	SetTime(name, hhmm string) error
	Clear(name string) error
	Submit() form.Outcome
}

// skipOption lets optional selects stay unselected.
const skipOption = "(none)"

// Renderer implements render.Renderer for terminal-driven sessions: it
// prompts for every field, submits, and re-prompts the fields that failed.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	maxAttempts  int
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver:       newSurveyDriver(),
		outputFormat: OutputFormatJSON,
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		r.driver = newSurveyDriver()
	}

	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain"
	default:
		return "application/json"
	}
}

// Render prompts for every field of f, which must also implement Editor, and
// returns the serialized values of the successful submit.
func (r *Renderer) Render(ctx context.Context, f render.Form, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	editor, ok := f.(Editor)
	if !ok {
		return nil, ErrNotInteractive
	}

	values, err := r.Fill(ctx, editor, opts)
	if err != nil {
		return nil, err
	}
	return r.serialize(values)
}

// Fill runs the prompt loop and returns the coerced values of the first
// successful submit.
func (r *Renderer) Fill(ctx context.Context, editor Editor, opts render.RenderOptions) (map[string]any, error) {
	for _, msg := range opts.FormErrors {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
	}

	pending := editor.Fields()
	for attempt := 0; ; attempt++ {
		for _, state := range pending {
			if err := r.promptField(ctx, editor, state, opts.Errors[state.Field.Name]); err != nil {
				return nil, err
			}
		}

		outcome := editor.Submit()
		if outcome.OK {
			return outcome.Values, nil
		}

		for _, msg := range outcome.FormErrors {
			_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
		}
		pending = failingFields(editor.Fields(), outcome.Errors)
		if len(pending) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrSubmissionFailed, strings.Join(outcome.FormErrors, "; "))
		}
		for _, state := range pending {
			_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, state.Label, strings.Join(state.Errors, ", ")))
		}

		if r.maxAttempts > 0 && attempt+1 >= r.maxAttempts {
			return nil, ErrSubmissionFailed
		}
		retry, err := r.driver.Confirm(ctx, ConfirmConfig{Message: "Fix the fields above?", Default: true})
		if err != nil {
			return nil, err
		}
		if !retry {
			return nil, ErrSubmissionFailed
		}
	}
}

func (r *Renderer) promptField(ctx context.Context, editor Editor, state form.FieldState, serverErrs []string) error {
	for _, msg := range serverErrs {
		_ = r.driver.Info(ctx, fmt.Sprintf("%s%s: %s", r.theme.ErrorPrefix, state.Label, msg))
	}

	name := state.Field.Name
	switch state.Widget {
	case widgets.WidgetTextarea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: state.Label,
			Default: state.Display,
			Help:    state.Field.Description,
		})
		if err != nil {
			return err
		}
		return editor.Input(name, answer)

	case widgets.WidgetSelect:
		return r.promptSelect(ctx, editor, state)

	case widgets.WidgetDate, widgets.WidgetDatetime:
		return r.promptDate(ctx, editor, state)

	default:
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: state.Label,
			Default: state.Display,
			Help:    helpFor(state),
		})
		if err != nil {
			return err
		}
		return editor.Input(name, answer)
	}
}

func (r *Renderer) promptSelect(ctx context.Context, editor Editor, state form.FieldState) error {
	options := make([]string, 0, len(state.Field.Options)+1)
	if !state.Field.Required {
		options = append(options, skipOption)
	}
	offset := len(options)
	defaultIdx := -1
	for idx, opt := range state.Field.Options {
		label := opt.Label
		if label == "" {
			label = opt.Value
		}
		options = append(options, label)
		if opt.Value == state.Display {
			defaultIdx = idx + offset
		}
	}

	for {
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      state.Label,
			Options:      options,
			DefaultIndex: defaultIdx,
			Help:         helpFor(state),
		})
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(options) {
			_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid %s selection", r.theme.ErrorPrefix, state.Label))
			continue
		}
		if idx < offset {
			return editor.Clear(state.Field.Name)
		}
		return editor.Select(state.Field.Name, state.Field.Options[idx-offset].Value)
	}
}

func (r *Renderer) promptDate(ctx context.Context, editor Editor, state form.FieldState) error {
	name := state.Field.Name
	current := ""
	if picked, ok := state.Value.(time.Time); ok && !picked.IsZero() {
		current = picked.Format("2006-01-02")
	}

	answer, err := r.driver.Input(ctx, InputConfig{
		Message: state.Label + " (YYYY-MM-DD)",
		Default: current,
		Help:    helpFor(state),
		Validator: func(raw string) error {
			if strings.TrimSpace(raw) == "" {
				return nil
			}
			if _, ok := validation.ParseDate(raw); !ok {
				return errors.New(validation.MessageExpectDate)
			}
			return nil
		},
	})
	if err != nil {
		return err
	}
	if strings.TrimSpace(answer) == "" {
		return editor.Clear(name)
	}
	day, ok := validation.ParseDate(answer)
	if !ok {
		return editor.Clear(name)
	}
	if err := editor.PickDate(name, day); err != nil {
		return err
	}
	if state.Widget != widgets.WidgetDatetime {
		return nil
	}

	clock := state.Time
	if clock == "" {
		clock = "00:00"
	}
	for {
		answer, err := r.driver.Input(ctx, InputConfig{
			Message: state.Label + " time (HH:MM)",
			Default: clock,
		})
		if err != nil {
			return err
		}
		err = editor.SetTime(name, answer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, form.ErrInvalidTime) {
			return err
		}
		_ = r.driver.Info(ctx, fmt.Sprintf("%sInvalid time %q", r.theme.ErrorPrefix, answer))
	}
}

func failingFields(states []form.FieldState, errs map[string][]string) []form.FieldState {
	var out []form.FieldState
	for _, state := range states {
		if len(errs[state.Field.Name]) > 0 {
			state.Errors = errs[state.Field.Name]
			out = append(out, state)
		}
	}
	return out
}

func helpFor(state form.FieldState) string {
	if desc := strings.TrimSpace(state.Field.Description); desc != "" {
		return desc
	}
	return state.Placeholder
}

func (r *Renderer) serialize(values map[string]any) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(values)), nil
	default:
		return json.Marshal(values)
	}
}

func flattenForm(values map[string]any) string {
	flattened := url.Values{}
	for key, value := range values {
		flattened.Set(key, scalarString(value))
	}
	return flattened.Encode()
}

func prettyPrint(values map[string]any) string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&b, "%s=%s\n", key, scalarString(values[key]))
	}
	return b.String()
}

func scalarString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case time.Time:
		return v.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
