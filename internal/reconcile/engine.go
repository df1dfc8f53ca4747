package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/specialistvlad/pdbuild/internal/oracle"
	"github.com/specialistvlad/pdbuild/internal/status"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/specialistvlad/pdbuild/internal/reconcile")

// DefaultMaxCycles is the default pass budget. One or two passes are
// usually enough.
const DefaultMaxCycles = 10

// ResolvedFile is one file of a resolved artifact and its validated kind.
type ResolvedFile struct {
	Path string
	Kind model.OutputKind
}

// Resolution pairs an artifact with the root that produced it.
type Resolution struct {
	Artifact    model.Artifact
	Root        model.Unit
	Files       []ResolvedFile
	ViaFallback bool
}

// UnresolvedError reports an artifact that could not be paired with exactly
// one root.
type UnresolvedError struct {
	Artifact model.Artifact
	// Considered is the initial candidate set.
	Considered []model.Unit
	// Remaining is what was left after the fallback pass.
	Remaining []model.Unit
}

func (e *UnresolvedError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cannot determine the unit of artifact %s: %d of %d candidate(s) remain",
		e.Artifact.String(), len(e.Remaining), len(e.Considered))
	for _, u := range e.Considered {
		mark := "rejected"
		for _, r := range e.Remaining {
			if r.Index == u.Index {
				mark = "remaining"
				break
			}
		}
		fmt.Fprintf(&b, "\n  candidate %s [%s]", u.String(), mark)
	}
	return b.String()
}

// Outcome is the result of one Run.
type Outcome struct {
	// Resolved is in artifact arrival order.
	Resolved   []Resolution
	Unresolved []*UnresolvedError
	// Passes is the number of filtering passes performed.
	Passes int
	// Fallbacks is the number of artifacts sent through the fallback pass.
	Fallbacks int
}

// Engine reconciles artifacts with roots.
type Engine struct {
	Oracle    oracle.Oracle
	Printer   status.Printer
	MaxCycles int
	KeepGoing bool
}

// New creates an Engine with the default pass budget.
func New(o oracle.Oracle, p status.Printer, keepGoing bool) *Engine {
	return &Engine{Oracle: o, Printer: p, MaxCycles: DefaultMaxCycles, KeepGoing: keepGoing}
}

// Run pairs artifacts with roots.
//
// Unresolved artifacts are always reported. Without keep-going they are
// returned as a joined error of *UnresolvedError values and the outcome is
// nil; with keep-going they are logged, listed in Outcome.Unresolved and
// left out of Outcome.Resolved.
func (e *Engine) Run(ctx context.Context, roots []model.Unit, artifacts []model.Artifact) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "reconcile.run")
	defer span.End()
	logger := ctxlog.FromContext(ctx)

	maxCycles := e.MaxCycles
	if maxCycles < 1 {
		maxCycles = DefaultMaxCycles
	}

	g := newGraph(ctx, roots, artifacts, e.Oracle)
	logger.Debug("Reconciling artifacts.", "roots", len(roots), "artifacts", len(artifacts), "tracked", len(g.entries))

	out := &Outcome{}
	for out.Passes < maxCycles && len(g.pending()) > 0 {
		out.Passes++
		changed := g.pass(ctx)
		logger.Debug("Reconcile pass finished.", "pass", out.Passes, "pending", len(g.pending()), "changed", changed)
		if !changed {
			break
		}
	}

	for _, i := range g.pending() {
		out.Fallbacks++
		g.fallback(ctx, i)
	}

	var errs []error
	for _, en := range g.entries {
		if en.done {
			out.Resolved = append(out.Resolved, Resolution{
				Artifact:    en.artifact,
				Root:        g.roots[en.root],
				Files:       en.files,
				ViaFallback: en.fallback,
			})
			continue
		}
		uerr := &UnresolvedError{
			Artifact:   en.artifact,
			Considered: g.units(en.considered),
			Remaining:  g.units(en.candidates),
		}
		out.Unresolved = append(out.Unresolved, uerr)
		errs = append(errs, uerr)
		logger.Error("Artifact left unresolved.", "artifact", en.artifact.String(), "considered", g.describe(en.considered), "remaining", g.describe(en.candidates))
		e.Printer.Error(uerr.Error())
	}

	span.SetAttributes(
		attribute.Int("passes", out.Passes),
		attribute.Int("fallbacks", out.Fallbacks),
		attribute.Int("resolved", len(out.Resolved)),
		attribute.Int("unresolved", len(out.Unresolved)),
	)

	if len(errs) > 0 && !e.KeepGoing {
		err := errors.Join(errs...)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unresolved artifacts")
		return nil, err
	}
	return out, nil
}

func (g *graph) units(ids []int) []model.Unit {
	out := make([]model.Unit, len(ids))
	for k, id := range ids {
		out[k] = g.roots[id]
	}
	return out
}
