package editor

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/store"
	"github.com/goliatone/go-formpreview/pkg/surface"
)

func greetingTemplate() model.Template {
	return model.Template{
		ID:   "greeting",
		HTML: "Hello {{name}}",
		Fields: []model.Field{
			{Name: "name", Kind: model.FieldKindText, Label: "Name", Required: true},
		},
	}
}

func TestSession_EditsFlowIntoPreview(t *testing.T) {
	s, err := NewSession("s1", greetingTemplate(), store.New(), WithSamples(nil), WithHostID("pv"))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer s.Close()

	if err := s.Form.Input("name", "Ana"); err != nil {
		t.Fatalf("input: %v", err)
	}
	if got := s.Preview.Markup(); got != "Hello Ana" {
		t.Fatalf("unexpected markup %q", got)
	}
	if got, _ := s.Store.Get("name"); got != "Ana" {
		t.Fatalf("store not updated, got %v", got)
	}

	if err := s.Form.Input("name", "Bo"); err != nil {
		t.Fatalf("input: %v", err)
	}
	if diff := cmp.Diff(surface.Frame{HTML: "Hello Bo"}, s.Frame()); diff != "" {
		t.Fatalf("frame mismatch (-want +got):\n%s", diff)
	}

	mount := s.Mount()
	if !mount.Mount || !strings.Contains(mount.HTML, `id="pv"`) || !strings.Contains(mount.HTML, "Hello Bo") {
		t.Fatalf("unexpected mount frame %+v", mount)
	}
}

func TestSession_SamplesFillUnsetFields(t *testing.T) {
	tpl := model.Template{
		HTML: "{{ name }}|{{{ location }}}",
		Fields: []model.Field{
			{Name: "name", Kind: model.FieldKindText},
		},
	}
	s, err := NewSession("s2", tpl, nil)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer s.Close()

	if got := s.Preview.Markup(); got != "Emily &amp; Michael|123 Celebration Avenue <br> New York, NY 10001" {
		t.Fatalf("unexpected sample markup %q", got)
	}
	if err := s.Form.Input("name", "Ana"); err != nil {
		t.Fatalf("input: %v", err)
	}
	if got := s.Preview.Markup(); !strings.HasPrefix(got, "Ana|") {
		t.Fatalf("form value should win over sample, got %q", got)
	}
}

func TestSession_SubmitWritesWholesale(t *testing.T) {
	var submitted map[string]any
	s, err := NewSession("s3", greetingTemplate(), store.New(), WithSamples(nil), WithSubmit(func(values map[string]any) error {
		submitted = values
		return nil
	}))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer s.Close()

	if outcome := s.Submit(); outcome.OK {
		t.Fatalf("expected required error")
	}
	s.Store.UpdateValue("stray", "x")
	if err := s.Form.Input("name", "Ana"); err != nil {
		t.Fatalf("input: %v", err)
	}
	outcome := s.Submit()
	if !outcome.OK {
		t.Fatalf("expected success, got %+v", outcome)
	}
	want := map[string]any{"name": "Ana"}
	if diff := cmp.Diff(want, submitted); diff != "" {
		t.Fatalf("submit values mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, s.Store.Values()); diff != "" {
		t.Fatalf("store should hold the submitted values (-want +got):\n%s", diff)
	}
}

func TestSession_SetTemplate(t *testing.T) {
	s, err := NewSession("s4", greetingTemplate(), store.New(), WithSamples(nil))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer s.Close()
	if err := s.Form.Input("name", "Ana"); err != nil {
		t.Fatalf("input: %v", err)
	}

	tpl := greetingTemplate()
	tpl.HTML = "Bye {{ name }}"
	frame, err := s.SetTemplate(tpl)
	if err != nil {
		t.Fatalf("set template: %v", err)
	}
	if frame.HTML != "Bye Ana" {
		t.Fatalf("unexpected frame %+v", frame)
	}
	if v, _ := s.Form.Value("name"); v != "Ana" {
		t.Fatalf("same fields should keep form values, got %v", v)
	}

	tpl.HTML = "{% if %}"
	if _, err := s.SetTemplate(tpl); err == nil {
		t.Fatalf("expected compile error")
	}
	if s.Preview.Markup() != "" {
		t.Fatalf("broken template should render empty markup")
	}
}

func TestManager_Lifecycle(t *testing.T) {
	m := NewManager(WithSamples(nil))
	s, err := m.Open(greetingTemplate())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("get: %v", err)
	}
	if err := m.Close(s.ID); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !s.Store.Closed() {
		t.Fatalf("store should be closed")
	}
	if _, err := m.Get(s.ID); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSession_ApplyErrors(t *testing.T) {
	s, err := NewSession("s1", greetingTemplate(), store.New(), WithSamples(nil))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	defer s.Close()

	mapping := s.ApplyErrors(map[string][]string{
		"/body/name":       {"Name is taken"},
		"non_field_errors": {"Try again later"},
	})
	if diff := cmp.Diff(map[string][]string{"name": {"Name is taken"}}, s.Form.Errors()); diff != "" {
		t.Fatalf("field errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Try again later"}, s.Form.FormErrors()); diff != "" {
		t.Fatalf("form errors mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(mapping.Form, s.Form.FormErrors()); diff != "" {
		t.Fatalf("mapping and form disagree:\n%s", diff)
	}
}
