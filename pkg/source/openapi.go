package source

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formpreview/pkg/model"
)

const (
	extensionWidget = "x-formgen-widget"
	extensionOrder  = "x-formgen-order"
	extensionLabel  = "x-formgen-label"
)

// ErrOperationNotFound is returned when the document has no operation with
// the requested id.
var ErrOperationNotFound = errors.New("source: operation not found")

// FieldsFromOpenAPI builds field definitions from the request body of
// operationID. Properties map onto kinds by type and format; enums become
// selects and x-formgen-widget: textarea selects the textarea kind.
func FieldsFromOpenAPI(ctx context.Context, data []byte, operationID string) ([]model.Field, error) {
	if len(data) == 0 {
		return nil, errors.New("source: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("source: load openapi document: %w", err)
	}

	operation := findOperation(doc, operationID)
	if operation == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	schema := requestSchema(operation)
	if schema == nil {
		return nil, fmt.Errorf("source: operation %q has no request body schema", operationID)
	}
	return fieldsFromSchema(schema), nil
}

func findOperation(doc *openapi3.T, operationID string) *openapi3.Operation {
	if doc.Paths == nil {
		return nil
	}
	for _, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for _, op := range item.Operations() {
			if op != nil && op.OperationID == operationID {
				return op
			}
		}
	}
	return nil
}

func requestSchema(operation *openapi3.Operation) *openapi3.Schema {
	if operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return nil
	}
	content := operation.RequestBody.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	for _, mt := range content {
		if mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

type orderedField struct {
	field model.Field
	order int
	has   bool
}

func fieldsFromSchema(schema *openapi3.Schema) []model.Field {
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	ordered := make([]orderedField, 0, len(schema.Properties))
	for name, ref := range schema.Properties {
		if ref == nil || ref.Value == nil || ref.Value.ReadOnly {
			continue
		}
		prop := ref.Value
		field := model.Field{
			Name:        name,
			Kind:        kindFor(prop),
			Label:       labelFor(name, prop),
			Description: prop.Description,
			Required:    required[name],
		}
		if len(prop.Enum) > 0 {
			for _, value := range prop.Enum {
				text := fmt.Sprint(value)
				field.Options = append(field.Options, model.Option{Label: model.LabelFromName(text), Value: text})
			}
		}
		order, has := intExtension(prop.Extensions, extensionOrder)
		ordered = append(ordered, orderedField{field: field, order: order, has: has})
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.has != b.has {
			return a.has
		}
		if a.has && a.order != b.order {
			return a.order < b.order
		}
		return a.field.Name < b.field.Name
	})

	fields := make([]model.Field, len(ordered))
	for idx, entry := range ordered {
		fields[idx] = entry.field
	}
	return fields
}

func kindFor(prop *openapi3.Schema) model.FieldKind {
	if len(prop.Enum) > 0 {
		return model.FieldKindSelect
	}
	if widget, ok := prop.Extensions[extensionWidget].(string); ok && strings.EqualFold(widget, "textarea") {
		return model.FieldKindTextarea
	}
	switch {
	case prop.Type != nil && (prop.Type.Is("integer") || prop.Type.Is("number")):
		return model.FieldKindNumber
	}
	switch strings.ToLower(prop.Format) {
	case "email":
		return model.FieldKindEmail
	case "date":
		return model.FieldKindDate
	case "date-time":
		return model.FieldKindDatetime
	}
	return model.FieldKindText
}

func labelFor(name string, prop *openapi3.Schema) string {
	if label, ok := prop.Extensions[extensionLabel].(string); ok && strings.TrimSpace(label) != "" {
		return label
	}
	if title := strings.TrimSpace(prop.Title); title != "" {
		return title
	}
	return model.LabelFromName(name)
}

func intExtension(ext map[string]any, key string) (int, bool) {
	switch v := ext[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	default:
		return 0, false
	}
}
