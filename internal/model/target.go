// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Target, the descriptor shared by units and artifacts.
// Structural equality of targets is the first filter the reconcile engine
// applies when it builds an artifact's candidate set.
package model

import "slices"

// Target describes one compilation target of a package.
type Target struct {
	Name       string   `json:"name"`
	Kind       []string `json:"kind"`
	CrateTypes []string `json:"crate_types"`
	SrcPath    string   `json:"src_path"`
}

// Equal reports whether both descriptors are identical.
func (t Target) Equal(o Target) bool {
	return t.Name == o.Name &&
		t.SrcPath == o.SrcPath &&
		slices.Equal(t.Kind, o.Kind) &&
		slices.Equal(t.CrateTypes, o.CrateTypes)
}

// Compatible reports whether an artifact built for t could have been
// planned as o: same target name and, when both are known, the same source
// path. Kinds and crate types are left to later filters because the flags
// generator may override crate types per platform.
func (t Target) Compatible(o Target) bool {
	if t.Name != o.Name {
		return false
	}
	return t.SrcPath == "" || o.SrcPath == "" || t.SrcPath == o.SrcPath
}

// IsExample reports whether the target is an example.
func (t Target) IsExample() bool {
	return slices.Contains(t.Kind, "example")
}

// IsExecutableKind reports whether the target can produce an executable.
// Examples only qualify when they are built as binaries.
func (t Target) IsExecutableKind() bool {
	for _, k := range t.Kind {
		switch k {
		case "bin", "test", "bench":
			return true
		case "example":
			if len(t.CrateTypes) == 0 || slices.Contains(t.CrateTypes, "bin") {
				return true
			}
		}
	}
	return false
}

// DeclaredKinds returns the output kinds declared through the crate types,
// in declaration order and without duplicates.
func (t Target) DeclaredKinds() []OutputKind {
	var kinds []OutputKind
	for _, ct := range t.CrateTypes {
		k, ok := KindFromCrateType(ct)
		if !ok || slices.Contains(kinds, k) {
			continue
		}
		kinds = append(kinds, k)
	}
	return kinds
}
