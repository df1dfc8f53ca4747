package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/specialistvlad/pdbuild/internal/app"
	"github.com/specialistvlad/pdbuild/internal/cli"
	"github.com/specialistvlad/pdbuild/internal/hcl"
	"github.com/specialistvlad/pdbuild/internal/linker"
	"github.com/specialistvlad/pdbuild/internal/supervisor"
)

// main is the entrypoint for the pdbuild application.
func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(exitCode(err))
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW io.Writer, args []string) error {
	appConfig, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	pdApp, err := app.NewApp(outW, appConfig, hcl.NewLoader())
	if err != nil {
		return err
	}
	_, err = pdApp.Run(ctx)
	return err
}

// exitCode maps an error to the process exit status: usage errors keep
// their code, subprocess failures propagate the child's status when known.
func exitCode(err error) int {
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var procErr *supervisor.ProcessError
	if errors.As(err, &procErr) && procErr.ExitCode > 0 {
		return procErr.ExitCode
	}
	var linkErr *linker.LinkError
	if errors.As(err, &linkErr) && linkErr.ExitCode > 0 {
		return linkErr.ExitCode
	}
	return 1
}
