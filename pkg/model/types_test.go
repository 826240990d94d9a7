package model

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTemplateDecodesSourcePayload(t *testing.T) {
	payload := `{
  "html": "<h1>{{name}}</h1>",
  "fields": [
    {"name": "name", "type": "text", "label": "Couple", "required": true},
    {"name": "venue", "type": "select", "label": "Venue", "options": [{"label": "Park", "value": "park"}]}
  ]
}`

	var tpl Template
	if err := json.Unmarshal([]byte(payload), &tpl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	want := Template{
		HTML: "<h1>{{name}}</h1>",
		Fields: []Field{
			{Name: "name", Kind: FieldKindText, Label: "Couple", Required: true},
			{Name: "venue", Kind: FieldKindSelect, Label: "Venue", Options: []Option{{Label: "Park", Value: "park"}}},
		},
	}
	if diff := cmp.Diff(want, tpl); diff != "" {
		t.Fatalf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldKindClassification(t *testing.T) {
	cases := []struct {
		kind     FieldKind
		known    bool
		dateLike bool
		textLike bool
	}{
		{FieldKindText, true, false, true},
		{FieldKindEmail, true, false, true},
		{FieldKindNumber, true, false, true},
		{FieldKindTextarea, true, false, true},
		{FieldKindSelect, true, false, false},
		{FieldKindDate, true, true, false},
		{" DateTime ", true, true, false},
		{"color", false, false, true},
	}

	for _, tc := range cases {
		if got := tc.kind.Known(); got != tc.known {
			t.Errorf("%q Known() = %v, want %v", tc.kind, got, tc.known)
		}
		if got := tc.kind.IsDateLike(); got != tc.dateLike {
			t.Errorf("%q IsDateLike() = %v, want %v", tc.kind, got, tc.dateLike)
		}
		if got := tc.kind.IsTextLike(); got != tc.textLike {
			t.Errorf("%q IsTextLike() = %v, want %v", tc.kind, got, tc.textLike)
		}
	}
}

func TestDuplicates(t *testing.T) {
	fields := []Field{{Name: "a"}, {Name: "b"}, {Name: "a"}, {Name: " b "}, {Name: "a"}, {Name: ""}, {Name: ""}}
	want := []string{"a", "b"}
	if diff := cmp.Diff(want, Duplicates(fields)); diff != "" {
		t.Fatalf("duplicates mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayLabelFallsBackToName(t *testing.T) {
	if got := (Field{Name: "qty"}).DisplayLabel(); got != "qty" {
		t.Fatalf("expected name fallback, got %q", got)
	}
	if got := (Field{Name: "qty", Label: "Quantity"}).DisplayLabel(); got != "Quantity" {
		t.Fatalf("expected label, got %q", got)
	}
}

func TestCloneFieldsCopiesOptions(t *testing.T) {
	src := []Field{{Name: "s", Kind: FieldKindSelect, Options: []Option{{Label: "A", Value: "a"}}}}
	clone := CloneFields(src)
	clone[0].Options[0].Value = "changed"
	if src[0].Options[0].Value != "a" {
		t.Fatalf("expected source options untouched")
	}
}
