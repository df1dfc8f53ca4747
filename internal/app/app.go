package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/google/uuid"
	"github.com/specialistvlad/pdbuild/internal/config"
	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/layout"
	"github.com/specialistvlad/pdbuild/internal/linker"
	"github.com/specialistvlad/pdbuild/internal/oracle"
	"github.com/specialistvlad/pdbuild/internal/status"
)

// Version is stamped at build time.
var Version = "dev"

// App encapsulates one configured build.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	printer  status.Printer
	cfg      *Config
	manifest *config.Model
	oracle   oracle.Oracle
	buildID  string
}

// NewApp loads the manifest and prepares an App. Status lines and logs are
// written to outW.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) (*App, error) {
	buildID := uuid.NewString()
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW).With("build_id", buildID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	manifest, err := loader.Load(ctx, cfg.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	applyOverrides(manifest, cfg)
	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.Debug("Manifest loaded.", "platforms", manifest.PlatformNames, "units", len(manifest.Units))

	cached, err := oracle.NewCached(oracle.Conventional{HostOS: runtime.GOOS}, oracle.DefaultCacheSize)
	if err != nil {
		return nil, err
	}

	return &App{
		outW:     outW,
		logger:   logger,
		printer:  status.NewConsole(outW, cfg.NoColor),
		cfg:      cfg,
		manifest: manifest,
		oracle:   cached,
		buildID:  buildID,
	}, nil
}

// applyOverrides lets command line values win over the manifest.
func applyOverrides(m *config.Model, cfg *Config) {
	if cfg.UnitGraph != "" {
		m.Build.UnitGraph = cfg.UnitGraph
	}
	if cfg.KeepGoing != nil {
		m.Build.KeepGoing = *cfg.KeepGoing
	}
	if cfg.MaxCycles != nil {
		m.Build.MaxCycles = *cfg.MaxCycles
	}
	if cfg.Jobs != nil {
		m.Build.Jobs = *cfg.Jobs
	}
}

// Manifest returns the effective manifest. This is primarily for testing.
func (a *App) Manifest() *config.Model {
	return a.manifest
}

// BuildID identifies this App's run in logs.
func (a *App) BuildID() string {
	return a.buildID
}

func (a *App) layout() layout.Layout {
	l := a.manifest.Layout
	return layout.Layout{Root: l.Root, BinaryName: l.BinaryName, LibraryName: l.LibraryName}
}

// linker returns nil when no linker block is configured.
func (a *App) linker() *linker.Linker {
	l := a.manifest.Linker
	if l == nil {
		return nil
	}
	return &linker.Linker{Path: l.Path, Entry: l.Entry, Arch: l.Arch, Flags: l.Flags, LinkMap: l.LinkMap}
}
