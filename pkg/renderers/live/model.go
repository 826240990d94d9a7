package live

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/validation"
	"github.com/goliatone/go-formpreview/pkg/widgets"
)

// Editor is the controller surface the live editor drives.
type Editor interface {
	Fields() []form.FieldState
	Input(name, raw string) error
	Select(name, value string) error
	PickDate(name string, day time.Time) error
	SetTime(name, hhmm string) error
	Clear(name string) error
	Submit() form.Outcome
}

// ErrCancelled is returned by Run when the operator leaves without
// submitting.
var ErrCancelled = errors.New("live: editing cancelled")

const (
	draftDateLayout     = "2006-01-02"
	draftDatetimeLayout = "2006-01-02 15:04"
)

// Model is the bubbletea model of the live editor.
type Model struct {
	editor  Editor
	preview func() string
	title   string
	submitF func() form.Outcome

	fields  []form.FieldState
	drafts  map[string]string
	focus   int
	notice  string
	outcome form.Outcome
	done    bool
	quit    bool
	width   int
}

var _ tea.Model = (*Model)(nil)

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the heading above the form.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.title = title
	}
}

// WithSubmit replaces the editor's Submit, e.g. with a session submit that
// also writes the store.
func WithSubmit(fn func() form.Outcome) Option {
	return func(m *Model) {
		m.submitF = fn
	}
}

// New builds a model over editor. preview returns the current preview pane
// and may be nil.
func New(editor Editor, preview func() string, opts ...Option) *Model {
	m := &Model{
		editor:  editor,
		preview: preview,
		title:   "Template settings",
		drafts:  make(map[string]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	m.fields = editor.Fields()
	for _, state := range m.fields {
		m.drafts[state.Field.Name] = draftFor(state)
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.fields) == 0 {
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
			m.quit = true
			return m, tea.Quit
		}
		return m, nil
	}

	current := m.fields[m.focus]
	m.notice = ""

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quit = true
		return m, tea.Quit
	case tea.KeyTab, tea.KeyDown:
		m.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		m.move(-1)
	case tea.KeyLeft:
		if current.Widget == widgets.WidgetSelect {
			m.cycle(current, -1)
		}
	case tea.KeyRight:
		if current.Widget == widgets.WidgetSelect {
			m.cycle(current, 1)
		}
	case tea.KeyEnter:
		if m.focus < len(m.fields)-1 {
			m.move(1)
			return m, nil
		}
		return m.submit()
	case tea.KeyBackspace:
		if current.Widget != widgets.WidgetSelect {
			draft := []rune(m.drafts[current.Field.Name])
			if len(draft) > 0 {
				m.edit(current, string(draft[:len(draft)-1]))
			}
		}
	case tea.KeyCtrlU:
		m.edit(current, "")
	case tea.KeySpace:
		if current.Widget != widgets.WidgetSelect {
			m.edit(current, m.drafts[current.Field.Name]+" ")
		}
	case tea.KeyRunes:
		if current.Widget == widgets.WidgetSelect {
			break
		}
		m.edit(current, m.drafts[current.Field.Name]+string(msg.Runes))
	}
	return m, nil
}

func (m *Model) move(delta int) {
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
}

func (m *Model) cycle(state form.FieldState, delta int) {
	options := state.Field.Options
	if len(options) == 0 {
		return
	}
	idx := -1
	for i, opt := range options {
		if opt.Value == m.drafts[state.Field.Name] {
			idx = i
			break
		}
	}
	switch {
	case idx < 0 && delta < 0:
		idx = len(options) - 1
	case idx < 0:
		idx = 0
	default:
		idx = (idx + delta + len(options)) % len(options)
	}
	value := options[idx].Value
	if err := m.editor.Select(state.Field.Name, value); err != nil {
		m.notice = err.Error()
		return
	}
	m.drafts[state.Field.Name] = value
	m.refresh()
}

// edit applies draft to the controller the way the field's widget would.
func (m *Model) edit(state form.FieldState, draft string) {
	name := state.Field.Name
	m.drafts[name] = draft

	var err error
	switch state.Widget {
	case widgets.WidgetDate:
		err = m.applyDate(name, draft)
	case widgets.WidgetDatetime:
		err = m.applyDatetime(name, draft)
	default:
		err = m.editor.Input(name, draft)
	}
	if err != nil {
		m.notice = err.Error()
	}
	m.refresh()
}

func (m *Model) applyDate(name, draft string) error {
	if strings.TrimSpace(draft) == "" {
		return m.editor.Clear(name)
	}
	day, ok := validation.ParseDate(draft)
	if !ok {
		// Partially typed dates wait for more input.
		return nil
	}
	return m.editor.PickDate(name, day)
}

func (m *Model) applyDatetime(name, draft string) error {
	datePart, timePart, _ := strings.Cut(strings.TrimSpace(draft), " ")
	if datePart == "" {
		return m.editor.Clear(name)
	}
	day, ok := validation.ParseDate(datePart)
	if !ok {
		return nil
	}
	if err := m.editor.PickDate(name, day); err != nil {
		return err
	}
	if len(timePart) < len("15:04") {
		return nil
	}
	return m.editor.SetTime(name, timePart)
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	if m.submitF != nil {
		m.outcome = m.submitF()
	} else {
		m.outcome = m.editor.Submit()
	}
	m.refresh()
	if m.outcome.OK {
		m.done = true
		return m, tea.Quit
	}
	if len(m.outcome.FormErrors) > 0 {
		m.notice = strings.Join(m.outcome.FormErrors, "; ")
	}
	for idx, state := range m.fields {
		if len(m.outcome.Errors[state.Field.Name]) > 0 {
			m.focus = idx
			break
		}
	}
	return m, nil
}

func (m *Model) refresh() {
	m.fields = m.editor.Fields()
	if m.focus >= len(m.fields) {
		m.focus = 0
	}
}

// Outcome returns the result of the last submit.
func (m *Model) Outcome() form.Outcome {
	return m.outcome
}

// Done reports whether a submit succeeded.
func (m *Model) Done() bool {
	return m.done
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done || m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for idx, state := range m.fields {
		focused := idx == m.focus
		prefix := "  "
		label := labelStyle.Render(state.Label + ":")
		if focused {
			prefix = focusedStyle.Render("> ")
			label = focusedStyle.Render(state.Label + ":")
		}
		if state.Field.Required {
			label += errorStyle.Render("*")
		}
		fmt.Fprintf(&b, "%s%s %s\n", prefix, label, m.renderControl(state, focused))
		for _, msg := range state.Errors {
			b.WriteString("    " + errorStyle.Render(msg) + "\n")
		}
	}

	if m.notice != "" {
		b.WriteString("\n" + errorStyle.Render(m.notice) + "\n")
	}
	b.WriteString("\n" + helpStyle.Render("Tab/↑↓: fields  ←→: options  Enter: next/submit  Ctrl+U: clear  Esc: quit"))

	formPane := paneStyle.Render(b.String())
	if m.preview == nil {
		return formPane
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, formPane, m.preview())
}

func (m *Model) renderControl(state form.FieldState, focused bool) string {
	if state.Widget == widgets.WidgetSelect {
		parts := make([]string, 0, len(state.Field.Options))
		for _, opt := range state.Field.Options {
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			if opt.Value == m.drafts[state.Field.Name] {
				parts = append(parts, selectedOptionStyle.Render("<"+label+">"))
			} else {
				parts = append(parts, optionStyle.Render(" "+label+" "))
			}
		}
		if m.drafts[state.Field.Name] == "" {
			parts = append([]string{placeholderStyle.Render(state.Placeholder)}, parts...)
		}
		return strings.Join(parts, " ")
	}

	draft := m.drafts[state.Field.Name]
	if draft == "" {
		hint := state.Placeholder
		switch state.Widget {
		case widgets.WidgetDate:
			hint += " (YYYY-MM-DD)"
		case widgets.WidgetDatetime:
			hint += " (YYYY-MM-DD HH:MM)"
		}
		if focused {
			return placeholderStyle.Render(hint) + "_"
		}
		return placeholderStyle.Render(hint)
	}
	if state.Widget == widgets.WidgetDate || state.Widget == widgets.WidgetDatetime {
		if state.Display != "" && state.Display != draft {
			draft += "  " + labelStyle.Render(state.Display)
		}
	}
	if focused {
		return draft + "_"
	}
	return draft
}

func draftFor(state form.FieldState) string {
	switch v := state.Value.(type) {
	case time.Time:
		if v.IsZero() {
			return ""
		}
		if state.Field.Kind.Normalize() == model.FieldKindDatetime {
			return v.Format(draftDatetimeLayout)
		}
		return v.Format(draftDateLayout)
	case nil:
		return ""
	default:
		return state.Display
	}
}

// Run drives m in a bubbletea program until the operator submits or quits.
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) (form.Outcome, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return form.Outcome{}, fmt.Errorf("live: %w", err)
	}
	result, ok := final.(*Model)
	if !ok || !result.Done() {
		return form.Outcome{}, ErrCancelled
	}
	return result.Outcome(), nil
}
