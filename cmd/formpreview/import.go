package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/source"
)

func runImport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	specPath := fs.String("openapi", "", "OpenAPI 3 document (JSON or YAML).")
	operation := fs.String("operation", "", "Operation id whose request body defines the fields.")
	htmlPath := fs.String("html", "", "HTML template to pair with the fields.")
	id := fs.String("id", "", "Template id.")
	format := fs.String("format", "json", "Output format: 'json' or 'yaml'.")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return err
		}
		return &exitError{Code: 2, Message: err.Error()}
	}
	if *specPath == "" || *operation == "" {
		return &exitError{Code: 2, Message: "import: -openapi and -operation are required"}
	}

	data, err := os.ReadFile(*specPath)
	if err != nil {
		return fmt.Errorf("read openapi document: %w", err)
	}
	fields, err := source.FieldsFromOpenAPI(ctx, data, *operation)
	if err != nil {
		return err
	}

	tpl := model.Template{ID: *id, Fields: fields}
	if *htmlPath != "" {
		markup, err := os.ReadFile(*htmlPath)
		if err != nil {
			return fmt.Errorf("read html: %w", err)
		}
		tpl.HTML = string(markup)
	}

	var encoded []byte
	switch *format {
	case "yaml":
		encoded, err = yaml.Marshal(tpl)
	case "json":
		encoded, err = json.MarshalIndent(tpl, "", "  ")
		encoded = append(encoded, '\n')
	default:
		return &exitError{Code: 2, Message: fmt.Sprintf("invalid format %q", *format)}
	}
	if err != nil {
		return fmt.Errorf("encode template: %w", err)
	}
	_, err = stdout.Write(encoded)
	return err
}
