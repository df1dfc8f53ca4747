package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/specialistvlad/pdbuild/internal/status"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/specialistvlad/pdbuild/internal/supervisor")

// maxLineSize bounds a single event line. Rendered diagnostics of large
// crates easily exceed bufio's 64KiB default.
const maxLineSize = 16 << 20

// Command is a ready-to-run compiler driver invocation.
type Command struct {
	Path string
	Args []string
	Dir  string
	// Env is appended to the current process environment.
	Env []string
}

func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Result is everything the supervisor learned from one run.
type Result struct {
	Artifacts []model.Artifact
	// Success is the final outcome: the driver exited cleanly and, when it
	// sent one, its build-finished signal reported success.
	Success bool
	// Finished reports whether a build-finished event was seen.
	Finished bool
}

// ProcessError reports a spawn failure, a non-zero exit or an explicit
// build-finished:false.
type ProcessError struct {
	Command  string
	ExitCode int // -1 when the process never ran or the code is unknown
	Reason   string
	Err      error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("compiler driver %q: %s", e.Command, e.Reason)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" (exit status %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// Supervisor runs the compiler driver and classifies its event stream.
type Supervisor struct {
	Printer   status.Printer
	KeepGoing bool
}

// New creates a Supervisor reporting to p.
func New(p status.Printer, keepGoing bool) *Supervisor {
	return &Supervisor{Printer: p, KeepGoing: keepGoing}
}

// Run executes cmd to completion and returns the artifacts it reported.
//
// Without keep-going, any process failure is returned as a *ProcessError
// and the result is nil. With keep-going, the failure is logged and the
// partial result is returned with Success set to false.
func (s *Supervisor) Run(ctx context.Context, cmd Command) (*Result, error) {
	ctx, span := tracer.Start(ctx, "supervisor.run")
	defer span.End()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Starting compiler driver.", "command", cmd.String(), "dir", cmd.Dir)

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = append(os.Environ(), cmd.Env...)
	c.Stderr = s.Printer.Writer()

	stdout, err := c.StdoutPipe()
	if err != nil {
		return s.fail(ctx, &Result{}, &ProcessError{Command: cmd.String(), ExitCode: -1, Reason: "cannot attach stdout", Err: err})
	}
	if err := c.Start(); err != nil {
		return s.fail(ctx, &Result{}, &ProcessError{Command: cmd.String(), ExitCode: -1, Reason: "cannot spawn", Err: err})
	}

	result := &Result{}
	readErr := s.consume(ctx, stdout, result)
	if readErr != nil {
		// Unblock the child before waiting on it.
		_, _ = io.Copy(io.Discard, stdout)
	}
	waitErr := c.Wait()

	span.SetAttributes(attribute.Int("artifacts", len(result.Artifacts)))

	var procErr *ProcessError
	var exitErr *exec.ExitError
	switch {
	case readErr != nil:
		procErr = &ProcessError{Command: cmd.String(), ExitCode: -1, Reason: "reading event stream", Err: readErr}
	case errors.As(waitErr, &exitErr):
		procErr = &ProcessError{Command: cmd.String(), ExitCode: exitErr.ExitCode(), Reason: "exited with failure"}
	case waitErr != nil:
		procErr = &ProcessError{Command: cmd.String(), ExitCode: -1, Reason: "wait failed", Err: waitErr}
	case result.Finished && !result.Success:
		procErr = &ProcessError{Command: cmd.String(), ExitCode: -1, Reason: "build finished unsuccessfully"}
	}
	if procErr != nil {
		result.Success = false
		span.RecordError(procErr)
		span.SetStatus(codes.Error, procErr.Reason)
		return s.fail(ctx, result, procErr)
	}

	if !result.Finished {
		logger.Debug("Compiler driver exited without a build-finished event.")
	}
	result.Success = true
	s.Printer.Status(status.TagFinished, fmt.Sprintf("compiler driver, %d artifact(s)", len(result.Artifacts)))
	logger.Debug("Compiler driver finished.", "artifacts", len(result.Artifacts))
	return result, nil
}

// consume reads stdout line by line until EOF.
func (s *Supervisor) consume(ctx context.Context, r io.Reader, result *Result) error {
	logger := ctxlog.FromContext(ctx)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		line := scanner.Bytes()
		ev, err := Decode(line)
		if err != nil {
			logger.Warn("Ignoring malformed driver event.", "error", err)
			continue
		}
		switch ev.Kind {
		case EventArtifact:
			ev.Artifact.Seq = len(result.Artifacts)
			result.Artifacts = append(result.Artifacts, ev.Artifact)
			s.reportArtifact(ctx, ev.Artifact)
		case EventDiagnostic:
			s.forward(ev.Diagnostic)
		case EventFinished:
			// Reported after the stream is drained.
			result.Finished = true
			result.Success = ev.Success
			logger.Debug("Received build-finished.", "success", ev.Success)
		default:
			logger.Debug("Ignoring driver output.", "reason", ev.Reason, "line", string(line))
		}
	}
	return scanner.Err()
}

func (s *Supervisor) reportArtifact(ctx context.Context, a model.Artifact) {
	ctxlog.FromContext(ctx).Debug("Artifact received.",
		"seq", a.Seq,
		"package", a.PackageName(),
		"target", a.Target.Name,
		"files", len(a.Filenames),
		"fresh", a.Fresh,
	)
	tag := status.TagCompiling
	if a.Fresh {
		tag = status.TagFresh
	}
	s.Printer.Status(tag, fmt.Sprintf("%s::%s", a.PackageName(), a.Target.Name))
}

// forward prints a compiler diagnostic as soon as it arrives.
func (s *Supervisor) forward(d Diagnostic) {
	text := strings.TrimRight(d.Rendered, "\n")
	if text == "" {
		text = d.Message
	}
	text = strings.TrimPrefix(text, d.Level+": ")
	switch {
	case strings.HasPrefix(d.Level, "error"):
		s.Printer.Error(text)
	case d.Level == "warning":
		s.Printer.Warn(text)
	default:
		s.Printer.Status(status.TagNote, text)
	}
}

func (s *Supervisor) fail(ctx context.Context, partial *Result, err *ProcessError) (*Result, error) {
	if !s.KeepGoing {
		return nil, err
	}
	ctxlog.FromContext(ctx).Error("Compiler driver failed, continuing with partial results.", "error", err, "artifacts", len(partial.Artifacts))
	s.Printer.Error(err.Error())
	partial.Success = false
	return partial, nil
}
