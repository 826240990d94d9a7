package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/goliatone/go-formpreview/internal/ctxlog"
	"github.com/goliatone/go-formpreview/pkg/editor"
	"github.com/goliatone/go-formpreview/pkg/store"
	"github.com/goliatone/go-formpreview/pkg/surface"
	"github.com/goliatone/go-formpreview/pkg/validation"
)

func runRender(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	file := fs.String("file", "", "Template document to render instead of fetching one.")
	valuesFile := fs.String("values", "", "JSON or YAML file of field values.")
	text := fs.Bool("text", false, "Print the preview as plain text.")
	validate := fs.Bool("validate", false, "Fail when the values do not satisfy the field definitions.")
	output := fs.String("output", "", "Output file (stdout if empty).")
	cfg, ctx, err := setup(ctx, fs, args, stderr)
	if err != nil {
		return err
	}

	tpl, err := loadTemplate(ctx, cfg, *file)
	if err != nil {
		return err
	}
	values, err := loadValues(*valuesFile)
	if err != nil {
		return err
	}
	if *validate {
		result := validation.Compile(tpl.Fields).Validate(values)
		if !result.Valid() {
			return &exitError{Code: 1, Message: fmt.Sprintf("invalid values: %v", result.Errors)}
		}
		values = result.Values
	}

	selection, err := cfg.ThemeSelection()
	if err != nil {
		return err
	}

	var presenter surface.Presenter
	var term *surface.Terminal
	if *text {
		term = surface.NewTerminal("", 0)
		presenter = term
	}
	session, err := editor.NewSession("render", tpl, store.NewWithValues(values),
		editor.WithHostID(cfg.Preview.HostID),
		editor.WithSurfaceMode(cfg.SurfaceMode()),
		editor.WithTheme(selection),
		editor.WithPresenter(presenter),
		editor.WithSamples(sampleValues(cfg, editor.SampleValues())),
		editor.WithLogger(ctxlog.FromContext(ctx)),
	)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Preview.Err(); err != nil {
		ctxlog.FromContext(ctx).Warn("template error", "error", err)
	}

	var out string
	if term != nil {
		out = term.PlainText(session.Preview.Markup())
	} else {
		out = session.Mount().HTML
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(out+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(stderr, "Preview written to %s\n", *output)
		return nil
	}
	_, err = fmt.Fprintln(stdout, out)
	return err
}
