package packager

import (
	"fmt"

	"github.com/specialistvlad/pdbuild/internal/model"
)

// ToolchainError reports a missing cross-linker or layout for a required
// (output kind, platform) combination. It is always fatal.
type ToolchainError struct {
	Kind     model.OutputKind
	Platform model.Platform
	Err      error
}

func (e *ToolchainError) Error() string {
	return fmt.Sprintf("cannot package %s for %s: %v", e.Kind, e.Platform.ShortName(), e.Err)
}

func (e *ToolchainError) Unwrap() error { return e.Err }

// ArtifactError reports a file that could not be packaged.
type ArtifactError struct {
	Unit model.Unit
	File string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("packaging %s of %s: %v", e.File, e.Unit.String(), e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }
