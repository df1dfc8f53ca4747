package reconcile

import (
	"context"
	"slices"

	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/model"
	"github.com/specialistvlad/pdbuild/internal/oracle"
)

// entry is the working state of one artifact.
type entry struct {
	artifact   model.Artifact
	considered []int // initial candidate set, kept for error reports
	candidates []int
	done       bool
	root       int
	files      []ResolvedFile
	fallback   bool
}

// graph is the candidate graph of one Run. It is owned by the goroutine
// running the engine and never shared.
type graph struct {
	roots    []model.Unit
	entries  []*entry
	reserved map[int]int // root position -> entry position
	oracle   oracle.Oracle
}

// newGraph builds the initial candidate sets. Roots are identified by their
// position in the slice; their Index is rewritten to match. Artifacts without any
// structurally compatible root are dependencies of the roots and are not
// tracked.
func newGraph(ctx context.Context, roots []model.Unit, artifacts []model.Artifact, o oracle.Oracle) *graph {
	logger := ctxlog.FromContext(ctx)
	indexed := make([]model.Unit, len(roots))
	for i, r := range roots {
		r.Index = i
		indexed[i] = r
	}
	g := &graph{
		roots:    indexed,
		reserved: make(map[int]int),
		oracle:   o,
	}
	for _, a := range artifacts {
		var candidates []int
		for i, r := range indexed {
			if r.PackageID == a.PackageID && r.Target.Compatible(a.Target) {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) == 0 {
			logger.Debug("Artifact does not belong to a root, ignoring.", "package", a.PackageName(), "target", a.Target.Name)
			continue
		}
		g.entries = append(g.entries, &entry{
			artifact:   a,
			considered: slices.Clone(candidates),
			candidates: candidates,
			root:       -1,
		})
	}
	return g
}

// pending returns the entries that are neither resolved nor dead.
func (g *graph) pending() []int {
	var out []int
	for i, e := range g.entries {
		if !e.done && len(e.candidates) > 0 {
			out = append(out, i)
		}
	}
	return out
}

// pass runs one filtering round and reports whether any candidate set
// changed.
func (g *graph) pass(ctx context.Context) bool {
	logger := ctxlog.FromContext(ctx)
	changed := false

	for i, e := range g.entries {
		if e.done || len(e.candidates) == 0 {
			continue
		}

		var keep, drop []int
		if len(e.candidates) > 1 {
			keep, drop = partition(e.candidates, func(r int) bool { return g.accepts(ctx, i, r) })
		} else {
			// A sole candidate is only ever lost to another reservation.
			keep, drop = partition(e.candidates, func(r int) bool { return !g.reservedByOther(i, r) })
		}
		if len(drop) > 0 {
			logger.Debug("Dropped candidates.", "artifact", e.artifact.String(), "dropped", g.describe(drop), "remaining", len(keep))
			e.candidates = keep
			changed = true
		}

		if len(e.candidates) == 1 {
			g.resolve(ctx, i, e.candidates[0], false)
			changed = true
		}
	}
	return changed
}

// accepts is the per-candidate filter predicate of a pass.
func (g *graph) accepts(ctx context.Context, i, r int) bool {
	if g.reservedByOther(i, r) {
		return false
	}
	e, root := g.entries[i], g.roots[r]
	if e.artifact.IsExecutable() && !root.Target.IsExecutableKind() {
		return false
	}
	preds, err := g.oracle.Predict(root, root.Platform)
	if err != nil {
		ctxlog.FromContext(ctx).Debug("Output prediction failed, dropping candidate.", "root", root.String(), "error", err)
		return false
	}
	_, ok := oracle.Validate(preds, e.artifact.Filenames)
	return ok
}

func (g *graph) reservedByOther(i, r int) bool {
	owner, ok := g.reserved[r]
	return ok && owner != i
}

// resolve reserves root r for entry i, records the kinds of its files and
// removes r from every other candidate set.
func (g *graph) resolve(ctx context.Context, i, r int, viaFallback bool) {
	logger := ctxlog.FromContext(ctx)
	e, root := g.entries[i], g.roots[r]

	kinds, ok := g.validatedKinds(root, e.artifact.Filenames)
	if !ok {
		logger.Warn("Oracle could not validate the resolved root, inferring kinds from file names.", "root", root.String(), "artifact", e.artifact.String())
		kinds = make([]model.OutputKind, len(e.artifact.Filenames))
		for k, f := range e.artifact.Filenames {
			kinds[k] = oracle.InferKind(f)
		}
	}

	e.files = make([]ResolvedFile, len(e.artifact.Filenames))
	for k, f := range e.artifact.Filenames {
		e.files[k] = ResolvedFile{Path: f, Kind: kinds[k]}
	}
	e.root = r
	e.candidates = []int{r}
	e.done = true
	e.fallback = viaFallback
	g.reserved[r] = i

	for j, other := range g.entries {
		if j == i || other.done {
			continue
		}
		other.candidates, _ = partition(other.candidates, func(c int) bool { return c != r })
	}
	logger.Debug("Artifact resolved.", "artifact", e.artifact.String(), "root", root.String(), "fallback", viaFallback)
}

func (g *graph) validatedKinds(root model.Unit, files []string) ([]model.OutputKind, bool) {
	preds, err := g.oracle.Predict(root, root.Platform)
	if err != nil {
		return nil, false
	}
	return oracle.Validate(preds, files)
}

func (g *graph) describe(ids []int) []string {
	out := make([]string, len(ids))
	for k, id := range ids {
		out[k] = g.roots[id].String()
	}
	return out
}

// partition splits ids into the ones kept by pred and the ones dropped,
// preserving order. The input slice is not modified.
func partition(ids []int, pred func(int) bool) (keep, drop []int) {
	for _, id := range ids {
		if pred(id) {
			keep = append(keep, id)
		} else {
			drop = append(drop, id)
		}
	}
	return keep, drop
}
