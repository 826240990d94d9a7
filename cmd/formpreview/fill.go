package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/goliatone/go-formpreview/internal/ctxlog"
	"github.com/goliatone/go-formpreview/pkg/form"
	"github.com/goliatone/go-formpreview/pkg/render"
	"github.com/goliatone/go-formpreview/pkg/renderers/tui"
	"github.com/goliatone/go-formpreview/pkg/renderers/vanilla"
	"github.com/goliatone/go-formpreview/pkg/store"
)

func runFill(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("fill", flag.ContinueOnError)
	file := fs.String("file", "", "Template document to fill instead of fetching one.")
	rendererName := fs.String("renderer", "tui", "Form renderer: 'tui' prompts for values, 'vanilla' prints the HTML form.")
	format := fs.String("format", string(tui.OutputFormatJSON), "tui output format: 'json', 'form' or 'pretty'.")
	attempts := fs.Int("attempts", 3, "Correction rounds after a failed submit (0 is unbounded).")
	action := fs.String("action", "", "vanilla form action.")
	cfg, ctx, err := setup(ctx, fs, args, stderr)
	if err != nil {
		return err
	}

	switch tui.OutputFormat(*format) {
	case tui.OutputFormatJSON, tui.OutputFormatFormURLEncoded, tui.OutputFormatPrettyText:
	default:
		return &exitError{Code: 2, Message: fmt.Sprintf("invalid format %q", *format)}
	}
	registry, err := formRenderers(tui.WithOutputFormat(tui.OutputFormat(*format)), tui.WithMaxAttempts(*attempts))
	if err != nil {
		return err
	}
	renderer, err := registry.Get(*rendererName)
	if err != nil {
		return &exitError{Code: 2, Message: fmt.Sprintf("%v (available: %s)", err, strings.Join(registry.List(), ", "))}
	}

	tpl, err := loadTemplate(ctx, cfg, *file)
	if err != nil {
		return err
	}

	ctrl := form.New(tpl.Fields, store.New(), nil, form.WithLogger(ctxlog.FromContext(ctx)))
	out, err := renderer.Render(ctx, ctrl, render.RenderOptions{Action: *action})
	if err != nil {
		return err
	}
	_, err = stdout.Write(append(out, '\n'))
	return err
}

// formRenderers registers every form renderer the CLI can drive.
func formRenderers(tuiOpts ...tui.Option) (*render.Registry, error) {
	registry := render.NewRegistry()

	html, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	if err := registry.Register(html); err != nil {
		return nil, err
	}

	prompts, err := tui.New(tuiOpts...)
	if err != nil {
		return nil, err
	}
	if err := registry.Register(prompts); err != nil {
		return nil, err
	}
	return registry, nil
}
