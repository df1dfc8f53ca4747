package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pdbuild/internal/cli"
	"github.com/specialistvlad/pdbuild/internal/linker"
	"github.com/specialistvlad/pdbuild/internal/supervisor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_InvalidManifest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := filepath.Join(t.TempDir(), "pdbuild.hcl")
	require.NoError(t, os.WriteFile(path, []byte("driver {\n"), 0o600))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, []string{path})

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
	assert.Equal(t, 1, exitCode(err))
}

func TestRun_UsageError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--jobs", "many"})

	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 2, exitCode(&cli.ExitError{Code: 2, Message: "usage"}))
	assert.Equal(t, 101, exitCode(fmt.Errorf("build: %w", &supervisor.ProcessError{ExitCode: 101, Reason: "exited with failure"})))
	assert.Equal(t, 1, exitCode(&supervisor.ProcessError{ExitCode: -1, Reason: "cannot spawn"}))
	assert.Equal(t, 7, exitCode(fmt.Errorf("packaging: %w", &linker.LinkError{ExitCode: 7})))
	assert.Equal(t, 1, exitCode(fmt.Errorf("anything else")))
}
