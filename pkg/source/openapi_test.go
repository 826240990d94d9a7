package source

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formpreview/pkg/model"
)

const bookingSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Bookings", "version": "1.0.0"},
  "paths": {
    "/bookings": {
      "post": {
        "operationId": "createBooking",
        "requestBody": {
          "content": {
            "application/json": {
              "schema": {
                "type": "object",
                "required": ["email", "starts"],
                "properties": {
                  "email": {"type": "string", "format": "email", "x-formgen-order": 1},
                  "starts": {"type": "string", "format": "date-time", "title": "Starts at", "x-formgen-order": 2},
                  "guests": {"type": "integer"},
                  "plan": {"type": "string", "enum": ["basic", "pro"]},
                  "notes": {"type": "string", "x-formgen-widget": "textarea"},
                  "day": {"type": "string", "format": "date"},
                  "id": {"type": "string", "readOnly": true}
                }
              }
            }
          }
        },
        "responses": {"201": {"description": "created"}}
      }
    }
  }
}`

func TestFieldsFromOpenAPI(t *testing.T) {
	fields, err := FieldsFromOpenAPI(context.Background(), []byte(bookingSpec), "createBooking")
	if err != nil {
		t.Fatalf("fields: %v", err)
	}

	want := []model.Field{
		{Name: "email", Kind: model.FieldKindEmail, Label: "Email", Required: true},
		{Name: "starts", Kind: model.FieldKindDatetime, Label: "Starts at", Required: true},
		{Name: "day", Kind: model.FieldKindDate, Label: "Day"},
		{Name: "guests", Kind: model.FieldKindNumber, Label: "Guests"},
		{Name: "notes", Kind: model.FieldKindTextarea, Label: "Notes"},
		{Name: "plan", Kind: model.FieldKindSelect, Label: "Plan", Options: []model.Option{
			{Label: "Basic", Value: "basic"},
			{Label: "Pro", Value: "pro"},
		}},
	}
	if diff := cmp.Diff(want, fields); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldsFromOpenAPI_UnknownOperation(t *testing.T) {
	_, err := FieldsFromOpenAPI(context.Background(), []byte(bookingSpec), "deleteBooking")
	if !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}
