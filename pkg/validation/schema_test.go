package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
)

func TestCompile_EmailRequired(t *testing.T) {
	schema := Compile([]model.Field{
		{Name: "email", Kind: model.FieldKindEmail, Label: "Email", Required: true},
	})

	bad := schema.Validate(map[string]any{"email": "not-an-email"})
	if bad.Valid() {
		t.Fatalf("expected invalid email to be rejected")
	}
	if got := bad.ErrorFor("email"); got != MessageInvalidEmail {
		t.Fatalf("unexpected message %q", got)
	}

	empty := schema.Validate(map[string]any{"email": ""})
	if got := empty.ErrorFor("email"); !strings.Contains(got, "Email") {
		t.Fatalf("expected required message referencing label, got %q", got)
	}

	good := schema.Validate(map[string]any{"email": "a@b.com"})
	if !good.Valid() {
		t.Fatalf("expected valid email, got %v", good.Errors)
	}
	if diff := cmp.Diff(map[string]any{"email": "a@b.com"}, good.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestCompile_OptionalNumberEmptyIsAbsent(t *testing.T) {
	schema := Compile([]model.Field{{Name: "qty", Kind: model.FieldKindNumber}})

	result := schema.Validate(map[string]any{"qty": ""})
	if !result.Valid() {
		t.Fatalf("expected optional empty number to pass, got %v", result.Errors)
	}
	if _, ok := result.Values["qty"]; ok {
		t.Fatalf("expected qty to be absent, got %v", result.Values["qty"])
	}
}

func TestCompile_NumberCoercion(t *testing.T) {
	schema := Compile([]model.Field{{Name: "qty", Kind: model.FieldKindNumber, Label: "Quantity", Required: true}})

	cases := []struct {
		name  string
		input any
		want  any
		msg   string
	}{
		{name: "string", input: " 42 ", want: 42.0},
		{name: "decimal", input: "1.5", want: 1.5},
		{name: "int", input: 7, want: 7.0},
		{name: "garbage", input: "abc", msg: MessageExpectNumber},
		{name: "missing", input: nil, msg: "Quantity is required"},
		{name: "blank", input: "   ", msg: "Quantity is required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, msg := schema.ValidateField("qty", tc.input)
			if msg != tc.msg {
				t.Fatalf("message = %q, want %q", msg, tc.msg)
			}
			if tc.msg == "" && got != tc.want {
				t.Fatalf("value = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompile_RequiredStringKinds(t *testing.T) {
	for _, kind := range []model.FieldKind{model.FieldKindText, model.FieldKindTextarea, model.FieldKindEmail, "unknown"} {
		schema := Compile([]model.Field{{Name: "f", Kind: kind, Label: "Field " + string(kind), Required: true}})
		result := schema.Validate(map[string]any{"f": ""})
		want := "Field " + string(kind) + " is required"
		if got := result.ErrorFor("f"); got != want {
			t.Errorf("kind %q: message = %q, want %q", kind, got, want)
		}

		optional := Compile([]model.Field{{Name: "f", Kind: kind}})
		if res := optional.Validate(map[string]any{"f": ""}); !res.Valid() {
			t.Errorf("kind %q: optional empty rejected: %v", kind, res.Errors)
		}
		if res := optional.Validate(map[string]any{}); !res.Valid() {
			t.Errorf("kind %q: optional absent rejected: %v", kind, res.Errors)
		}
	}
}

func TestCompile_Dates(t *testing.T) {
	schema := Compile([]model.Field{
		{Name: "day", Kind: model.FieldKindDate, Label: "Day", Required: true},
		{Name: "at", Kind: model.FieldKindDatetime, Label: "At"},
	})

	missing := schema.Validate(map[string]any{})
	if got := missing.ErrorFor("day"); got != "Day is required" {
		t.Fatalf("unexpected message %q", got)
	}
	if missing.ErrorFor("at") != "" {
		t.Fatalf("optional datetime should accept absence")
	}

	when := time.Date(2025, 6, 15, 18, 0, 0, 0, time.UTC)
	ok := schema.Validate(map[string]any{"day": when, "at": "2025-06-15T18:00"})
	if !ok.Valid() {
		t.Fatalf("expected valid dates, got %v", ok.Errors)
	}
	if diff := cmp.Diff(map[string]any{"day": when, "at": when}, ok.Values); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}

	bad := schema.Validate(map[string]any{"day": "tomorrow"})
	if got := bad.ErrorFor("day"); got != MessageExpectDate {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCompile_SelectOptions(t *testing.T) {
	schema := Compile([]model.Field{{
		Name:     "venue",
		Kind:     model.FieldKindSelect,
		Label:    "Venue",
		Required: true,
		Options:  []model.Option{{Label: "Park", Value: "park"}, {Label: "Hall", Value: "hall"}},
	}})

	if got := schema.Validate(map[string]any{}).ErrorFor("venue"); got != "Venue is required" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := schema.Validate(map[string]any{"venue": "beach"}).ErrorFor("venue"); got != MessageInvalidOption {
		t.Fatalf("unexpected message %q", got)
	}
	if res := schema.Validate(map[string]any{"venue": "hall"}); !res.Valid() {
		t.Fatalf("expected valid option, got %v", res.Errors)
	}
}

func TestCompile_IsPure(t *testing.T) {
	fields := []model.Field{
		{Name: "name", Kind: model.FieldKindText, Label: "Name", Required: true},
		{Name: "email", Kind: model.FieldKindEmail, Label: "Email"},
		{Name: "qty", Kind: model.FieldKindNumber},
		{Name: "day", Kind: model.FieldKindDate},
	}
	inputs := []map[string]any{
		{},
		{"name": "Ana", "email": "x"},
		{"name": "", "qty": "3"},
		{"name": "Bo", "email": "bo@example.org", "qty": 1, "day": "2025-01-02"},
		{"name": 12, "qty": true, "day": 3},
	}

	first := Compile(fields)
	second := Compile(fields)
	for idx, input := range inputs {
		a := first.Validate(input)
		b := second.Validate(input)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Fatalf("input %d: schemas disagree (-first +second):\n%s", idx, diff)
		}
	}
}

func TestCompile_UnknownKindFallsBackToString(t *testing.T) {
	schema := Compile([]model.Field{{Name: "hue", Kind: "color"}})
	res := schema.Validate(map[string]any{"hue": "teal"})
	if !res.Valid() || res.Values["hue"] != "teal" {
		t.Fatalf("expected free text accepted, got %+v", res)
	}
	if got := schema.Validate(map[string]any{"hue": 4}).ErrorFor("hue"); got != MessageExpectString {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestCompile_DuplicateNamesMerge(t *testing.T) {
	schema := Compile([]model.Field{
		{Name: "x", Kind: model.FieldKindText},
		{Name: "x", Kind: model.FieldKindNumber, Required: true, Label: "X"},
	})
	if diff := cmp.Diff([]string{"x"}, schema.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := schema.Validate(map[string]any{}).ErrorFor("x"); got != "X is required" {
		t.Fatalf("expected last definition to win, got %q", got)
	}
}
