package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/pdbuild/internal/model"
)

const (
	DefaultMaxCycles = 10
	DefaultJobs      = 1
)

// Model is the unified representation of a build manifest.
type Model struct {
	Build  Build
	Driver Driver
	// Platforms maps selector names to platforms, in declaration order
	// through PlatformNames.
	Platforms     map[string]model.Platform
	PlatformNames []string
	// Linker is nil when the manifest does not configure cross-linking.
	Linker *Linker
	Layout Layout
	Units  []Unit
}

// Build holds the run-wide options.
type Build struct {
	KeepGoing bool
	MaxCycles int
	Jobs      int
	// UnitGraph is the path of a `cargo build --unit-graph` document.
	UnitGraph string
}

// Driver is the compiler driver command.
type Driver struct {
	Command string
	Args    []string
	Dir     string
	Env     map[string]string
}

// EnvList returns Env as sorted KEY=VALUE pairs.
func (d Driver) EnvList() []string {
	keys := make([]string, 0, len(d.Env))
	for k := range d.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k + "=" + d.Env[k]
	}
	return out
}

// Linker configures the cross-linker.
type Linker struct {
	Path    string
	Entry   string
	Arch    []string
	Flags   []string
	LinkMap string
}

// Layout configures the package layout.
type Layout struct {
	Root        string
	BinaryName  string
	LibraryName string
}

// Unit is an inline root declaration, built once per listed platform.
type Unit struct {
	PackageID string
	Platforms []string
	Target    model.Target
}

// NewModel returns an empty model with defaults applied.
func NewModel() *Model {
	return &Model{
		Build:     Build{MaxCycles: DefaultMaxCycles, Jobs: DefaultJobs},
		Platforms: make(map[string]model.Platform),
	}
}

// AddPlatform registers a named platform selector.
func (m *Model) AddPlatform(name string, p model.Platform) error {
	if _, ok := m.Platforms[name]; ok {
		return fmt.Errorf("platform %q is declared more than once", name)
	}
	m.Platforms[name] = p
	m.PlatformNames = append(m.PlatformNames, name)
	return nil
}

// Validate reports every inconsistency of the model at once.
func (m *Model) Validate() error {
	var errs []error
	if m.Driver.Command == "" {
		errs = append(errs, errors.New("driver: command is required"))
	}
	if m.Build.MaxCycles < 1 {
		errs = append(errs, fmt.Errorf("build: max_cycles must be at least 1, got %d", m.Build.MaxCycles))
	}
	if m.Build.Jobs < 1 {
		errs = append(errs, fmt.Errorf("build: jobs must be at least 1, got %d", m.Build.Jobs))
	}
	for _, u := range m.Units {
		if len(u.Platforms) == 0 {
			errs = append(errs, fmt.Errorf("unit %q: at least one platform is required", u.PackageID))
		}
		for _, name := range u.Platforms {
			if _, ok := m.Platforms[name]; !ok {
				errs = append(errs, fmt.Errorf("unit %q: unknown platform %q", u.PackageID, name))
			}
		}
	}
	return errors.Join(errs...)
}

// Roots expands the inline unit declarations into roots, one per unit and
// platform, in declaration order.
func (m *Model) Roots() ([]model.Unit, error) {
	var roots []model.Unit
	for _, u := range m.Units {
		for _, name := range u.Platforms {
			p, ok := m.Platforms[name]
			if !ok {
				return nil, fmt.Errorf("unit %q: unknown platform %q", u.PackageID, name)
			}
			roots = append(roots, model.Unit{
				Index:     len(roots),
				PackageID: u.PackageID,
				Target:    u.Target,
				Platform:  p,
			})
		}
	}
	return roots, nil
}
