package source

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/goliatone/go-formpreview/pkg/model"
)

// hclTemplate is the HCL form of a template document:
//
//	id   = "invite"
//	html = "<h1>{{ name }}</h1>"
//
//	field "name" {
//	  type     = "text"
//	  required = true
//	}
//
//	field "plan" {
//	  type = "select"
//	  option "basic" { label = "Basic" }
//	}
type hclTemplate struct {
	ID     string     `hcl:"id,optional"`
	HTML   string     `hcl:"html"`
	Fields []hclField `hcl:"field,block"`
}

type hclField struct {
	Name        string      `hcl:"name,label"`
	Kind        string      `hcl:"type,optional"`
	Label       string      `hcl:"label,optional"`
	Description string      `hcl:"description,optional"`
	Placeholder string      `hcl:"placeholder,optional"`
	Required    bool        `hcl:"required,optional"`
	Options     []hclOption `hcl:"option,block"`
}

type hclOption struct {
	Value string `hcl:"value,label"`
	Label string `hcl:"label,optional"`
}

func decodeHCL(data []byte, filename string) (model.Template, error) {
	if filename == "" {
		filename = "template.hcl"
	}
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return model.Template{}, fmt.Errorf("source: parse hcl %s: %w", filename, diags)
	}

	var doc hclTemplate
	if diags := gohcl.DecodeBody(file.Body, nil, &doc); diags.HasErrors() {
		return model.Template{}, fmt.Errorf("source: decode hcl %s: %w", filename, diags)
	}

	tpl := model.Template{ID: doc.ID, HTML: doc.HTML}
	for _, f := range doc.Fields {
		field := model.Field{
			Name:        f.Name,
			Kind:        model.FieldKind(f.Kind),
			Label:       f.Label,
			Description: f.Description,
			Placeholder: f.Placeholder,
			Required:    f.Required,
		}
		if field.Kind == "" {
			field.Kind = model.FieldKindText
		}
		for _, opt := range f.Options {
			label := opt.Label
			if label == "" {
				label = opt.Value
			}
			field.Options = append(field.Options, model.Option{Label: label, Value: opt.Value})
		}
		tpl.Fields = append(tpl.Fields, field)
	}
	return tpl, nil
}
