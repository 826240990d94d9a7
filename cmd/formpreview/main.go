// Command formpreview edits HTML templates through generated forms with a
// live preview, over HTTP or in the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

const usage = `formpreview - schema-driven template editor with live preview.

Usage:
  formpreview <command> [options]

Commands:
  serve    run the HTTP editor
  fill     fill a template's form with terminal prompts and print the values
  edit     edit a template in the terminal with a live preview pane
  render   render a template with values to HTML or text
  import   build template fields from an OpenAPI operation

Run 'formpreview <command> -h' for command options.
`

type command func(ctx context.Context, args []string, stdout, stderr io.Writer) error

var commands = map[string]command{
	"serve":  runServe,
	"fill":   runFill,
	"edit":   runEdit,
	"render": runRender,
	"import": runImport,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		log.Fatalf("formpreview: %v", err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stdout, usage)
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return &exitError{Code: 2, Message: fmt.Sprintf("unknown command %q\n\n%s", args[0], usage)}
	}
	return cmd(ctx, args[1:], stdout, stderr)
}

// exitError carries a specific exit code.
type exitError struct {
	Code    int
	Message string
}

func (e *exitError) Error() string {
	return e.Message
}
