package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/goliatone/go-formpreview/internal/ctxlog"
	"github.com/goliatone/go-formpreview/pkg/editor"
	"github.com/goliatone/go-formpreview/pkg/renderers/live"
	"github.com/goliatone/go-formpreview/pkg/store"
	"github.com/goliatone/go-formpreview/pkg/surface"
)

func runEdit(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)
	file := fs.String("file", "", "Template document to edit instead of fetching one.")
	width := fs.Int("width", 48, "Preview pane width.")
	cfg, ctx, err := setup(ctx, fs, args, stderr)
	if err != nil {
		return err
	}

	tpl, err := loadTemplate(ctx, cfg, *file)
	if err != nil {
		return err
	}

	term := surface.NewTerminal("Preview", *width)
	session, err := editor.NewSession("terminal", tpl, store.New(),
		editor.WithPresenter(term),
		editor.WithSamples(sampleValues(cfg, editor.SampleValues())),
		editor.WithLogger(ctxlog.FromContext(ctx)),
	)
	if err != nil {
		return err
	}
	defer session.Close()

	model := live.New(session.Form, term.View, live.WithSubmit(session.Submit))
	outcome, err := live.Run(ctx, model, tea.WithAltScreen(), tea.WithOutput(stderr))
	if errors.Is(err, live.ErrCancelled) {
		return &exitError{Code: 1, Message: "cancelled"}
	}
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(outcome.Values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode values: %w", err)
	}
	_, err = fmt.Fprintln(stdout, string(encoded))
	return err
}
