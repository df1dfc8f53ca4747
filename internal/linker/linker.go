// Package linker wraps the cross-linker that turns a compiled embedded
// object into the final loadable image.
package linker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/pdbuild/internal/ctxlog"
)

const (
	DefaultPath  = "arm-none-eabi-gcc"
	DefaultEntry = "eventHandlerShim"
)

// DefaultArch targets the Cortex-M7 with its single precision FPU.
var DefaultArch = []string{"-mthumb", "-mcpu=cortex-m7", "-mfloat-abi=hard", "-mfpu=fpv5-sp-d16", "-D__FPU_USED=1"}

var defaultFlags = []string{"-nostartfiles", "-Wl,--cref,--gc-sections,--no-warn-mismatch,--emit-relocs"}

// Linker is a cross-linker invocation template.
type Linker struct {
	Path  string
	Entry string
	Arch  []string
	// Flags replace the default linker flags when set.
	Flags []string
	// LinkMap is an optional linker script.
	LinkMap string
}

// LinkError reports a linker that ran and failed.
type LinkError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *LinkError) Error() string {
	msg := fmt.Sprintf("linker %q failed with exit status %d", e.Command, e.ExitCode)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ":\n" + out
	}
	return msg
}

func (l Linker) path() string {
	if l.Path == "" {
		return DefaultPath
	}
	return l.Path
}

// LookPath resolves the linker executable.
func (l Linker) LookPath() (string, error) {
	p, err := exec.LookPath(l.path())
	if err != nil {
		return "", fmt.Errorf("cross-linker %q not found: %w", l.path(), err)
	}
	return p, nil
}

// Args builds the command line for linking input into output.
func (l Linker) Args(input, output string) []string {
	arch := l.Arch
	if len(arch) == 0 {
		arch = DefaultArch
	}
	flags := l.Flags
	if len(flags) == 0 {
		flags = defaultFlags
	}
	entry := l.Entry
	if entry == "" {
		entry = DefaultEntry
	}

	args := []string{input}
	args = append(args, arch...)
	args = append(args, flags...)
	if l.LinkMap != "" {
		args = append(args, "-T"+l.LinkMap)
	}
	mapFile := strings.TrimSuffix(output, filepath.Ext(output)) + ".map"
	args = append(args, "-Wl,-Map="+mapFile, "--entry", entry, "-o", output)
	return args
}

// Link cross-links input into output, creating the output directory.
func (l Linker) Link(ctx context.Context, input, output string) error {
	logger := ctxlog.FromContext(ctx)
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(output), err)
	}

	args := l.Args(input, output)
	cmd := exec.CommandContext(ctx, l.path(), args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	logger.Debug("Running cross-linker.", "path", l.path(), "args", args)
	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &LinkError{
			Command:  strings.Join(append([]string{l.path()}, args...), " "),
			ExitCode: exitErr.ExitCode(),
			Output:   out.String(),
		}
	}
	return fmt.Errorf("running cross-linker %q: %w", l.path(), err)
}
