package oracle

import (
	"runtime"
	"strings"

	"github.com/specialistvlad/pdbuild/internal/model"
)

// Conventional predicts output names from the platform's file naming
// conventions, the same way the compiler names its outputs.
type Conventional struct {
	// HostOS is the operating system of the host platform. Empty means
	// runtime.GOOS.
	HostOS string
}

type naming struct {
	exeSuffix    string
	dylibPrefix  string
	dylibSuffix  string
	staticPrefix string
	staticSuffix string
}

func (c Conventional) namingFor(p model.Platform) naming {
	osName := p.OS()
	if p.IsHost() {
		osName = c.HostOS
		if osName == "" {
			osName = runtime.GOOS
		}
	}
	switch {
	case strings.HasPrefix(p.Triple, "wasm"):
		return naming{exeSuffix: ".wasm", dylibSuffix: ".wasm", staticPrefix: "lib", staticSuffix: ".a"}
	case osName == "windows" && strings.HasSuffix(p.Triple, "-gnu"):
		return naming{exeSuffix: ".exe", dylibSuffix: ".dll", staticPrefix: "lib", staticSuffix: ".a"}
	case osName == "windows":
		return naming{exeSuffix: ".exe", dylibSuffix: ".dll", staticSuffix: ".lib"}
	case osName == "darwin" || osName == "ios":
		return naming{dylibPrefix: "lib", dylibSuffix: ".dylib", staticPrefix: "lib", staticSuffix: ".a"}
	default:
		// linux, bare metal and other ELF platforms
		return naming{dylibPrefix: "lib", dylibSuffix: ".so", staticPrefix: "lib", staticSuffix: ".a"}
	}
}

// Predict returns one prediction per declared crate type. Crate types
// without a known naming convention produce an indeterminate prediction.
func (c Conventional) Predict(unit model.Unit, platform model.Platform) ([]Prediction, error) {
	n := c.namingFor(platform)
	name := strings.ReplaceAll(unit.Target.Name, "-", "_")

	crateTypes := unit.Target.CrateTypes
	if len(crateTypes) == 0 {
		crateTypes = unit.Target.Kind
	}

	preds := make([]Prediction, 0, len(crateTypes))
	for _, ct := range crateTypes {
		if platform.Embedded() && !supportedOnBareMetal(ct) {
			// The compiler drops these with a warning instead of failing.
			continue
		}
		kind, known := model.KindFromCrateType(ct)
		var file string
		switch ct {
		case "bin":
			// Executables keep the target name verbatim.
			file = unit.Target.Name + n.exeSuffix
		case "lib", "rlib":
			file = "lib" + name + ".rlib"
		case "staticlib":
			file = n.staticPrefix + name + n.staticSuffix
		case "cdylib", "dylib", "proc-macro":
			file = n.dylibPrefix + name + n.dylibSuffix
		}
		if !known || file == "" {
			preds = append(preds, Prediction{Filename: file})
			continue
		}
		preds = append(preds, Prediction{Filename: file, Kind: model.KindPtr(kind)})
	}
	return preds, nil
}

func supportedOnBareMetal(crateType string) bool {
	switch crateType {
	case "cdylib", "dylib", "proc-macro":
		return false
	}
	return true
}
