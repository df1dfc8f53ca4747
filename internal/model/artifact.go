// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Artifact, the record of one compiler-artifact event.
package model

import "fmt"

// Artifact is one completed compilation job as reported by the compiler
// driver. Seq is the arrival order within the event stream.
type Artifact struct {
	Seq        int
	PackageID  string
	Target     Target
	Filenames  []string
	Executable string
	Profile    Profile
	Fresh      bool
}

// IsExecutable reports whether the driver flagged the artifact as directly
// executable.
func (a Artifact) IsExecutable() bool { return a.Executable != "" }

// PackageName returns the human readable package name.
func (a Artifact) PackageName() string { return PackageName(a.PackageID) }

func (a Artifact) String() string {
	return fmt.Sprintf("%s::%s %v", a.PackageName(), a.Target.Name, a.Filenames)
}
