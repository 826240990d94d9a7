package source

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
)

func templatesFS() fstest.MapFS {
	return fstest.MapFS{
		"templates/invite.json": &fstest.MapFile{Data: []byte(`{"html":"<p>{{ name }}</p>","fields":[{"name":"name","type":"text"}]}`)},
		"templates/rsvp.yaml": &fstest.MapFile{Data: []byte(`
html: "<p>{{ email }}</p>"
fields:
  - name: email
    type: email
    label: Email
    required: true
`)},
		"templates/booking.hcl": &fstest.MapFile{Data: []byte(`
html = "<p>{{ plan }}</p>"

field "plan" {
  type     = "select"
  required = true
  option "basic" { label = "Basic" }
  option "pro" {}
}

field "notes" {
  type = "textarea"
}
`)},
		"templates/README.md": &fstest.MapFile{Data: []byte("ignored")},
	}
}

func TestFSClient_Formats(t *testing.T) {
	client := NewFSClient(templatesFS(), "templates")

	cases := []struct {
		id   string
		want model.Template
	}{
		{
			id: "invite",
			want: model.Template{ID: "invite", HTML: "<p>{{ name }}</p>", Fields: []model.Field{
				{Name: "name", Kind: model.FieldKindText, Label: "Name"},
			}},
		},
		{
			id: "rsvp",
			want: model.Template{ID: "rsvp", HTML: "<p>{{ email }}</p>", Fields: []model.Field{
				{Name: "email", Kind: model.FieldKindEmail, Label: "Email", Required: true},
			}},
		},
		{
			id: "booking",
			want: model.Template{ID: "booking", HTML: "<p>{{ plan }}</p>", Fields: []model.Field{
				{Name: "plan", Kind: model.FieldKindSelect, Label: "Plan", Required: true, Options: []model.Option{
					{Label: "Basic", Value: "basic"},
					{Label: "pro", Value: "pro"},
				}},
				{Name: "notes", Kind: model.FieldKindTextarea, Label: "Notes"},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			got, err := client.Fetch(context.Background(), tc.id)
			if err != nil {
				t.Fatalf("fetch: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("template mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFSClient_NotFoundAndList(t *testing.T) {
	client := NewFSClient(templatesFS(), "templates")
	if _, err := client.Fetch(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	ids, err := client.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if diff := cmp.Diff([]string{"booking", "invite", "rsvp"}, ids); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_HCLErrors(t *testing.T) {
	if _, err := Decode([]byte(`field "x" {}`), FormatHCL, "bad.hcl"); err == nil {
		t.Fatalf("expected missing html attribute to fail")
	}
	if _, err := Decode([]byte(`{`), FormatJSON, ""); err == nil {
		t.Fatalf("expected json error")
	}
}
