// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines OutputKind and its mapping from cargo crate types.
package model

import "fmt"

// OutputKind is the category of a single produced file.
type OutputKind int

const (
	OutputOther OutputKind = iota
	OutputExecutable
	OutputStaticLibrary
	OutputDynamicLibrary
	OutputIntermediateLibrary
)

var outputKindNames = map[OutputKind]string{
	OutputOther:               "other",
	OutputExecutable:          "executable",
	OutputStaticLibrary:       "static-library",
	OutputDynamicLibrary:      "dynamic-library",
	OutputIntermediateLibrary: "intermediate-library",
}

func (k OutputKind) String() string {
	if name, ok := outputKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OutputKind(%d)", int(k))
}

// KindFromCrateType maps a cargo crate type to the output kind it produces.
// The second return value is false for crate types without a known mapping.
func KindFromCrateType(crateType string) (OutputKind, bool) {
	switch crateType {
	case "bin":
		return OutputExecutable, true
	case "staticlib":
		return OutputStaticLibrary, true
	case "cdylib", "dylib":
		return OutputDynamicLibrary, true
	case "lib", "rlib":
		return OutputIntermediateLibrary, true
	case "proc-macro":
		return OutputOther, true
	default:
		return OutputOther, false
	}
}

// KindPtr returns a pointer to k. Predictions use a nil kind for
// "indeterminate".
func KindPtr(k OutputKind) *OutputKind { return &k }
