// Package testsupport holds template fixtures and output helpers shared by
// package tests.
package testsupport

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"testing"

	"github.com/goliatone/go-formpreview/pkg/model"
	"github.com/goliatone/go-formpreview/pkg/source"
)

//go:embed testdata/*
var fixtures embed.FS

// Fixtures exposes the fixture documents, e.g. for source.NewFSClient.
func Fixtures() fs.FS {
	sub, err := fs.Sub(fixtures, "testdata")
	if err != nil {
		return fixtures
	}
	return sub
}

// Template loads the fixture document with the given id.
func Template(t *testing.T, id string) model.Template {
	t.Helper()

	tpl, err := LoadTemplate(id)
	if err != nil {
		t.Fatalf("load template: %v", err)
	}
	return tpl
}

// LoadTemplate returns a fixture without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadTemplate(id string) (model.Template, error) {
	tpl, err := source.NewFSClient(Fixtures(), ".").Fetch(context.Background(), id)
	if err != nil {
		return model.Template{}, fmt.Errorf("testsupport: %w", err)
	}
	return tpl, nil
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
