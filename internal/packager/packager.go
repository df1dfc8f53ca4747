// Package packager turns reconciled artifacts into build products: embedded
// objects are cross-linked into a loadable image, host dynamic libraries are
// placed into the layout, and everything else is recorded as skipped.
package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gookit/color"
	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/layout"
	"github.com/specialistvlad/pdbuild/internal/linker"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/specialistvlad/pdbuild/internal/reconcile"
	"github.com/specialistvlad/pdbuild/internal/status"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("github.com/specialistvlad/pdbuild/internal/packager")

// ErrSlotTaken is wrapped by an ArtifactError when two files of one run
// would be packaged to the same destination.
var ErrSlotTaken = errors.New("destination already claimed")

// ErrNoLinker is wrapped by a ToolchainError when cross-linking is needed
// but no linker is configured.
var ErrNoLinker = errors.New("no cross-linker configured")

type action int

const (
	actionSkip action = iota
	actionCrossLink
	actionPlace
)

// dispatch picks the packaging action of one file.
func dispatch(kind model.OutputKind, p model.Platform) action {
	switch {
	case p.Embedded() && (kind == model.OutputExecutable || kind == model.OutputStaticLibrary):
		return actionCrossLink
	case p.IsHost() && kind == model.OutputDynamicLibrary:
		return actionPlace
	}
	return actionSkip
}

// Packager is the packaging stage.
type Packager struct {
	Layout    layout.Layout
	Linker    *linker.Linker
	Printer   status.Printer
	KeepGoing bool
	// Jobs bounds concurrent packaging. Values below 2 mean sequential.
	Jobs int

	linkerOnce sync.Once
	linkerErr  error

	slotsMu sync.Mutex
	slots   map[string]string // destination -> source
}

type task struct {
	res  reconcile.Resolution
	file reconcile.ResolvedFile
}

// Run packages every resolved file and returns the products in resolution
// order.
//
// Toolchain errors abort the run. Filesystem and linker failures abort it
// too unless keep-going is set, in which case they are logged and the file
// produces no product.
func (p *Packager) Run(ctx context.Context, resolutions []reconcile.Resolution) ([]model.BuildProduct, error) {
	ctx, span := tracer.Start(ctx, "packager.run")
	defer span.End()

	var tasks []task
	for _, r := range resolutions {
		for _, f := range r.Files {
			tasks = append(tasks, task{res: r, file: f})
		}
	}

	p.slotsMu.Lock()
	p.slots = make(map[string]string)
	p.slotsMu.Unlock()

	jobs := p.Jobs
	if jobs < 1 {
		jobs = 1
	}
	results := make([]model.BuildProduct, len(tasks))
	var (
		mu     sync.Mutex
		failed []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, t := range tasks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			product, err := p.packageFile(gctx, t)
			if err == nil {
				results[i] = product
				return nil
			}
			var tcErr *ToolchainError
			if !p.KeepGoing || errors.As(err, &tcErr) {
				return err
			}
			ctxlog.FromContext(gctx).Error("Packaging failed, continuing.", "unit", t.res.Root.String(), "file", t.file.Path, "error", err)
			p.Printer.Error(err.Error())
			mu.Lock()
			failed = append(failed, err)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "packaging failed")
		return nil, err
	}

	products := make([]model.BuildProduct, 0, len(results))
	for _, r := range results {
		if r != nil {
			products = append(products, r)
		}
	}
	span.SetAttributes(
		attribute.Int("products", len(products)),
		attribute.Int("failed", len(failed)),
	)
	return products, nil
}

func (p *Packager) packageFile(ctx context.Context, t task) (model.BuildProduct, error) {
	root, kind := t.res.Root, t.file.Kind
	switch dispatch(kind, root.Platform) {
	case actionCrossLink:
		return p.crossLink(ctx, t)
	case actionPlace:
		return p.place(ctx, t)
	}

	skip := &model.Skip{
		Reason:   fmt.Sprintf("unsupported combination: %s for %s", kind, root.Platform.ShortName()),
		Package:  root.PackageName(),
		Kind:     kind,
		Platform: root.Platform,
	}
	ctxlog.FromContext(ctx).Info("Skipping file.", "unit", root.String(), "file", t.file.Path, "reason", skip.Reason)
	p.Printer.StatusWithColor(status.TagSkip, color.Yellow, fmt.Sprintf("%s::%s %s (%s)", skip.Package, root.Target.Name, filepath.Base(t.file.Path), skip.Reason))
	return skip, nil
}

func (p *Packager) crossLink(ctx context.Context, t task) (model.BuildProduct, error) {
	root, kind := t.res.Root, t.file.Kind
	if err := p.toolchain(kind, root.Platform, true); err != nil {
		return nil, err
	}
	if err := checkSource(t); err != nil {
		return nil, err
	}

	profile := t.res.Artifact.Profile.Name()
	dst := p.Layout.BinarySlot(root, profile)
	if err := p.claim(t, dst); err != nil {
		return nil, err
	}
	p.Printer.Status(status.TagLinking, fmt.Sprintf("%s::%s (%s)", root.PackageName(), root.Target.Name, root.Platform.ShortName()))
	if err := p.Linker.Link(ctx, t.file.Path, dst); err != nil {
		return nil, &ArtifactError{Unit: root, File: t.file.Path, Err: err}
	}
	ctxlog.FromContext(ctx).Info("Cross-linked.", "unit", root.String(), "src", t.file.Path, "dst", dst)
	return p.success(t, model.OutputExecutable, dst), nil
}

func (p *Packager) place(ctx context.Context, t task) (model.BuildProduct, error) {
	root, kind := t.res.Root, t.file.Kind
	if err := p.toolchain(kind, root.Platform, false); err != nil {
		return nil, err
	}
	if err := checkSource(t); err != nil {
		return nil, err
	}

	profile := t.res.Artifact.Profile.Name()
	dst := p.Layout.LibrarySlot(root, profile, filepath.Ext(t.file.Path))
	if err := p.claim(t, dst); err != nil {
		return nil, err
	}
	p.Printer.Status(status.TagPlacing, fmt.Sprintf("%s::%s (%s)", root.PackageName(), root.Target.Name, root.Platform.ShortName()))
	method, err := layout.LinkOrCopy(t.file.Path, dst)
	if err != nil {
		return nil, &ArtifactError{Unit: root, File: t.file.Path, Err: err}
	}
	ctxlog.FromContext(ctx).Info("Placed library.", "unit", root.String(), "src", t.file.Path, "dst", dst, "method", method)
	return p.success(t, model.OutputDynamicLibrary, dst), nil
}

func (p *Packager) success(t task, dst model.OutputKind, path string) *model.Success {
	root := t.res.Root
	profile := t.res.Artifact.Profile.Name()
	return &model.Success{
		Package:  root.PackageName(),
		Name:     root.Target.Name,
		SrcKind:  t.file.Kind,
		DstKind:  dst,
		Platform: root.Platform,
		Profile:  profile,
		Path:     path,
		Layout:   p.Layout.Dir(root, profile),
		Example:  root.Target.IsExample(),
	}
}

// toolchain checks that everything an action needs is configured.
func (p *Packager) toolchain(kind model.OutputKind, platform model.Platform, needLinker bool) error {
	if err := p.Layout.Validate(); err != nil {
		return &ToolchainError{Kind: kind, Platform: platform, Err: err}
	}
	if !needLinker {
		return nil
	}
	if p.Linker == nil {
		return &ToolchainError{Kind: kind, Platform: platform, Err: ErrNoLinker}
	}
	p.linkerOnce.Do(func() {
		_, p.linkerErr = p.Linker.LookPath()
	})
	if p.linkerErr != nil {
		return &ToolchainError{Kind: kind, Platform: platform, Err: p.linkerErr}
	}
	return nil
}

// claim reserves dst for the file of t.
func (p *Packager) claim(t task, dst string) error {
	p.slotsMu.Lock()
	defer p.slotsMu.Unlock()
	if owner, ok := p.slots[dst]; ok {
		return &ArtifactError{Unit: t.res.Root, File: t.file.Path, Err: fmt.Errorf("%w: %s by %s", ErrSlotTaken, dst, owner)}
	}
	p.slots[dst] = t.file.Path
	return nil
}

func checkSource(t task) error {
	if _, err := os.Stat(t.file.Path); err != nil {
		return &ArtifactError{Unit: t.res.Root, File: t.file.Path, Err: err}
	}
	return nil
}
