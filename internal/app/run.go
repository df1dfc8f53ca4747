package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/specialistvlad/pdbuild/internal/packager"
	"github.com/specialistvlad/pdbuild/internal/reconcile"
	"github.com/specialistvlad/pdbuild/internal/status"
	"github.com/specialistvlad/pdbuild/internal/supervisor"
	"github.com/specialistvlad/pdbuild/internal/telemetry"
	"github.com/specialistvlad/pdbuild/internal/unitgraph"
)

// Run executes the build and returns its products.
//
// A failed compiler driver run yields no products at all unless keep-going
// is set, in which case the artifacts it did report are still packaged.
func (a *App) Run(ctx context.Context) ([]model.BuildProduct, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	shutdown, err := telemetry.Init(ctx, a.cfg.OtelEndpoint, "pdbuild", Version, a.cfg.OtelInsecure)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Telemetry shutdown failed.", "error", err)
		}
	}()

	build := a.manifest.Build
	roots, err := a.roots()
	if err != nil {
		return nil, err
	}
	a.logger.Info("Roots determined.", "count", len(roots), "source", a.rootSource())

	driver := a.manifest.Driver
	result, err := supervisor.New(a.printer, build.KeepGoing).Run(ctx, supervisor.Command{
		Path: driver.Command,
		Args: driver.Args,
		Dir:  driver.Dir,
		Env:  driver.EnvList(),
	})
	if err != nil {
		return nil, err
	}

	engine := reconcile.New(a.oracle, a.printer, build.KeepGoing)
	engine.MaxCycles = build.MaxCycles
	outcome, err := engine.Run(ctx, roots, result.Artifacts)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Artifacts reconciled.",
		"resolved", len(outcome.Resolved),
		"unresolved", len(outcome.Unresolved),
		"passes", outcome.Passes,
		"fallbacks", outcome.Fallbacks,
	)

	pk := &packager.Packager{
		Layout:    a.layout(),
		Linker:    a.linker(),
		Printer:   a.printer,
		KeepGoing: build.KeepGoing,
		Jobs:      build.Jobs,
	}
	products, err := pk.Run(ctx, outcome.Resolved)
	if err != nil {
		return nil, err
	}

	a.summarize(products)
	a.logger.Debug("App.Run method finished.")
	return products, nil
}

func (a *App) roots() ([]model.Unit, error) {
	if path := a.manifest.Build.UnitGraph; path != "" {
		roots, err := unitgraph.Load(path)
		if err != nil {
			return nil, fmt.Errorf("reading unit index: %w", err)
		}
		return roots, nil
	}
	return a.manifest.Roots()
}

func (a *App) rootSource() string {
	if a.manifest.Build.UnitGraph != "" {
		return "unit-graph"
	}
	return "manifest"
}

func (a *App) summarize(products []model.BuildProduct) {
	var built, skipped int
	for _, p := range products {
		switch p := p.(type) {
		case *model.Success:
			built++
			a.printer.Status(status.TagArtifact, fmt.Sprintf("%s::%s (%s, %s) %s", p.Package, p.Name, p.Platform.ShortName(), p.DstKind, p.Path))
		case *model.Skip:
			skipped++
		}
	}
	a.printer.Status(status.TagFinished, fmt.Sprintf("%d product(s) built, %d skipped", built, skipped))
}
