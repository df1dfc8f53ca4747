package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/specialistvlad/pdbuild/internal/app"
	"github.com/specialistvlad/pdbuild/internal/hcl"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("pdbuild", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
pdbuild - Runs the compiler driver, pairs its artifacts with the planned
units and packages them for the simulator and the device.

Usage:
  pdbuild [options] [MANIFEST]

Arguments:
  MANIFEST
    Path to a manifest file or a directory of .hcl files (default "pdbuild.hcl").

Options:
`)
		flagSet.PrintDefaults()
	}

	manifestFlag := flagSet.String("manifest", "", "Path to the manifest file or directory.")
	keepGoingFlag := flagSet.Bool("keep-going", false, "Report failures and continue with the remaining artifacts.")
	maxCyclesFlag := flagSet.Int("max-cycles", 0, "Maximum number of reconcile passes before the fallback.")
	jobsFlag := flagSet.Int("jobs", 0, "Number of files packaged concurrently.")
	unitGraphFlag := flagSet.String("unit-graph", "", "Path to a `cargo build --unit-graph` document listing the roots.")
	noColorFlag := flagSet.Bool("no-color", false, "Disable colored status output.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	otelEndpointFlag := flagSet.String("otel-endpoint", "", "OTLP/HTTP endpoint for traces. Empty disables tracing.")
	otelInsecureFlag := flagSet.Bool("otel-insecure", false, "Export traces over plain HTTP.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := hcl.DefaultManifest
	if *manifestFlag != "" {
		path = *manifestFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %v", flagSet.Args()[1:])}
	}
	slog.Debug("Manifest path determined.", "path", path)

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	// Only flags given explicitly override the manifest.
	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg := app.Config{
		ManifestPath: path,
		UnitGraph:    *unitGraphFlag,
		NoColor:      *noColorFlag || os.Getenv("NO_COLOR") != "",
		LogFormat:    logFormat,
		LogLevel:     logLevel,
		OtelEndpoint: *otelEndpointFlag,
		OtelInsecure: *otelInsecureFlag,
	}
	if set["keep-going"] {
		cfg.KeepGoing = keepGoingFlag
	}
	if set["max-cycles"] {
		cfg.MaxCycles = maxCyclesFlag
	}
	if set["jobs"] {
		cfg.Jobs = jobsFlag
	}

	config, err := app.NewConfig(cfg)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
