// Package oracle predicts which files a unit produces on a platform and of
// which output kind. The reconcile engine treats its answers as
// authoritative when it validates candidate roots.
package oracle

import (
	"path/filepath"

	"github.com/specialistvlad/pdbuild/internal/model"
)

// Prediction is one expected output file. A nil Kind means the oracle could
// not determine the output kind.
type Prediction struct {
	Filename string
	Kind     *model.OutputKind
}

// Oracle predicts the outputs of a unit compiled for a platform.
type Oracle interface {
	Predict(unit model.Unit, platform model.Platform) ([]Prediction, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(unit model.Unit, platform model.Platform) ([]Prediction, error)

func (f Func) Predict(unit model.Unit, platform model.Platform) ([]Prediction, error) {
	return f(unit, platform)
}

// Validate checks predictions against the files an artifact actually
// listed. It succeeds only if the counts are equal and every prediction has
// a resolved kind; a single indeterminate prediction invalidates the whole
// set. On success it returns one kind per file, in file order.
//
// Files are paired with predictions by exact base name first, then by
// extension, then by position, so hashed file names still pair up.
func Validate(preds []Prediction, files []string) ([]model.OutputKind, bool) {
	if len(preds) != len(files) {
		return nil, false
	}
	for _, p := range preds {
		if p.Kind == nil {
			return nil, false
		}
	}

	kinds := make([]model.OutputKind, len(files))
	assigned := make([]bool, len(files))
	used := make([]bool, len(preds))

	match := func(eq func(file string, p Prediction) bool) {
		for i, f := range files {
			if assigned[i] {
				continue
			}
			for j, p := range preds {
				if used[j] || !eq(f, p) {
					continue
				}
				kinds[i], assigned[i], used[j] = *p.Kind, true, true
				break
			}
		}
	}
	match(func(f string, p Prediction) bool { return filepath.Base(f) == p.Filename })
	match(func(f string, p Prediction) bool { return filepath.Ext(f) == filepath.Ext(p.Filename) })
	match(func(string, Prediction) bool { return true })

	return kinds, true
}

// InferKind guesses the output kind of a file from its extension. It is
// used only when no oracle prediction is available for a resolved root.
func InferKind(path string) model.OutputKind {
	switch filepath.Ext(path) {
	case ".a", ".lib":
		return model.OutputStaticLibrary
	case ".so", ".dylib", ".dll":
		return model.OutputDynamicLibrary
	case ".rlib", ".rmeta":
		return model.OutputIntermediateLibrary
	case "", ".exe", ".elf":
		return model.OutputExecutable
	default:
		return model.OutputOther
	}
}
