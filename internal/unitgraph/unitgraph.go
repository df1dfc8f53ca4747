// Package unitgraph reads the roots of a build from the document printed by
// `cargo build --unit-graph`.
package unitgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/pdbuild/internal/model"
)

// SupportedVersion is the only unit graph format version understood.
const SupportedVersion = 1

type document struct {
	Version int    `json:"version"`
	Units   []unit `json:"units"`
	Roots   []int  `json:"roots"`
}

type unit struct {
	PkgID    string       `json:"pkg_id"`
	Target   model.Target `json:"target"`
	Platform *string      `json:"platform"`
	Mode     string       `json:"mode"`
}

// Parse decodes a unit graph and returns its build roots in root order.
// Roots in other modes (check, doc, test runs) are left out.
func Parse(r io.Reader) ([]model.Unit, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding unit graph: %w", err)
	}
	if doc.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported unit graph version %d", doc.Version)
	}

	roots := make([]model.Unit, 0, len(doc.Roots))
	for _, idx := range doc.Roots {
		if idx < 0 || idx >= len(doc.Units) {
			return nil, fmt.Errorf("root %d is out of range (%d units)", idx, len(doc.Units))
		}
		u := doc.Units[idx]
		if u.Mode != "build" {
			continue
		}
		platform := model.Host()
		if u.Platform != nil {
			platform = model.Cross(*u.Platform)
		}
		roots = append(roots, model.Unit{
			Index:     len(roots),
			PackageID: u.PkgID,
			Target:    u.Target,
			Platform:  platform,
		})
	}
	return roots, nil
}

// Load reads a unit graph from a file.
func Load(path string) ([]model.Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening unit graph: %w", err)
	}
	defer f.Close()
	return Parse(f)
}
