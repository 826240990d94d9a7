package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/goliatone/go-formpreview/internal/ctxlog"
	"github.com/goliatone/go-formpreview/internal/server"
	"github.com/goliatone/go-formpreview/pkg/editor"
)

func runServe(ctx context.Context, args []string, _, stderr io.Writer) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	grace := fs.Duration("grace", 5*time.Second, "Shutdown grace period.")
	cfg, ctx, err := setup(ctx, fs, args, stderr)
	if err != nil {
		return err
	}
	logger := ctxlog.FromContext(ctx)

	client, err := cfg.SourceClient()
	if err != nil {
		return err
	}
	selection, err := cfg.ThemeSelection()
	if err != nil {
		return err
	}

	srv, err := server.New(client,
		server.WithLogger(logger),
		server.WithTemplateID(cfg.TemplateID),
		server.WithFetchTimeout(cfg.RequestTimeout),
		server.WithSessionOptions(
			editor.WithHostID(cfg.Preview.HostID),
			editor.WithSurfaceMode(cfg.SurfaceMode()),
			editor.WithTheme(selection),
			editor.WithSamples(sampleValues(cfg, editor.SampleValues())),
		),
	)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", "addr", cfg.Addr, "template", cfg.TemplateID, "mode", cfg.SurfaceMode())

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), *grace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}
	logger.Info("stopped", "sessions", srv.Sessions())
	return nil
}
