package reconcile

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/pdbuild/internal/ctxlog"
	"github.com/specialistvlad/pdbuild/internal/model"
)

// fallback narrows an entry that the passes left ambiguous. It prefers the
// single platform whose short name appears as a path segment of the
// artifact's files, then the host platform. It reports whether the entry
// was resolved.
func (g *graph) fallback(ctx context.Context, i int) bool {
	logger := ctxlog.FromContext(ctx)
	e := g.entries[i]

	available, _ := partition(e.candidates, func(r int) bool { return !g.reservedByOther(i, r) })
	switch len(available) {
	case 0:
		e.candidates = nil
		return false
	case 1:
		// An earlier fallback reservation already narrowed this entry.
		g.resolve(ctx, i, available[0], true)
		return true
	}

	var platforms []model.Platform
	for _, r := range available {
		p := g.roots[r].Platform
		if !containsPlatform(platforms, p) {
			platforms = append(platforms, p)
		}
	}

	segments := pathSegments(e.artifact.Filenames)
	var matched []model.Platform
	for _, p := range platforms {
		if _, ok := segments[p.ShortName()]; ok {
			matched = append(matched, p)
		}
	}

	var keep []int
	switch {
	case len(matched) == 1:
		keep, _ = partition(available, func(r int) bool { return g.roots[r].Platform == matched[0] })
		logger.Debug("Fallback matched platform by path segment.", "artifact", e.artifact.String(), "platform", matched[0].ShortName())
	case containsPlatform(platforms, model.Host()):
		keep, _ = partition(available, func(r int) bool { return g.roots[r].Platform.IsHost() })
		logger.Debug("Fallback preferred the host platform.", "artifact", e.artifact.String())
	default:
		logger.Debug("Fallback found nothing to prefer.", "artifact", e.artifact.String(), "platforms", len(platforms))
		e.candidates = available
		return false
	}

	e.candidates = keep
	if len(keep) != 1 {
		return false
	}
	g.resolve(ctx, i, keep[0], true)
	return true
}

func containsPlatform(ps []model.Platform, p model.Platform) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

// pathSegments collects every directory and file name of the given paths.
func pathSegments(paths []string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, p := range paths {
		for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
			if seg != "" {
				out[seg] = struct{}{}
			}
		}
	}
	return out
}
