package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/pdbuild/internal/config"
	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/fsutil"
)

// DefaultManifest is the manifest file name looked up by default.
const DefaultManifest = "pdbuild.hcl"

// Loader is the HCL implementation of config.Loader.
type Loader struct {
	// Env is visible to expressions as `env`. The process environment is
	// used when it is nil.
	Env map[string]string
}

// NewLoader creates a loader evaluating against the process environment.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every manifest file found under paths, merges them and
// validates the result. Directories are searched recursively for .hcl
// files. Relative paths inside a file are resolved against its directory.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	files, err := l.findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no manifest found in %v", paths)
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	env := l.Env
	if env == nil {
		env = processEnv()
	}
	evalCtx, err := newEvalContext(env)
	if err != nil {
		return nil, err
	}

	m := config.NewModel()
	t := &translator{model: m}
	parser := hclparse.NewParser()
	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, evalCtx, &root); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}
		if err := t.merge(file, &root); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}
	logger.Debug("HCL loading complete.", "platforms", len(m.Platforms), "units", len(m.Units), "linker", m.Linker != nil)
	return m, nil
}

// findAllHCLFiles expands paths into a sorted, duplicate free list of files.
func (l *Loader) findAllHCLFiles(paths []string) ([]string, error) {
	var all []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}
		if !info.IsDir() {
			all = append(all, filepath.Clean(path))
			continue
		}
		found, err := fsutil.FindFilesByExtension(path, ".hcl")
		if err != nil {
			return nil, fmt.Errorf("searching %s: %w", path, err)
		}
		all = append(all, found...)
	}
	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, f := range all {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}
