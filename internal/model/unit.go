// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Unit, a planned compilation job, and the package-id
// helpers used to print it.
package model

import (
	"fmt"
	"path"
	"strings"
)

// Unit is a planned compilation job ("root"). Index is the position of the
// unit in the unit index and is its identity for one invocation.
type Unit struct {
	Index     int
	PackageID string
	Target    Target
	Platform  Platform
}

// PackageName returns the human readable package name.
func (u Unit) PackageName() string { return PackageName(u.PackageID) }

func (u Unit) String() string {
	return fmt.Sprintf("#%d %s::%s (%s)", u.Index, u.PackageName(), u.Target.Name, u.Platform.ShortName())
}

// PackageName extracts the package name from a cargo package id. Both the
// legacy spelling "name 0.1.0 (path+file:///...)" and the newer
// "path+file:///dir#name@0.1.0" spelling are understood.
func PackageName(id string) string {
	if id == "" {
		return ""
	}
	if name, _, ok := strings.Cut(id, " "); ok && !strings.Contains(name, "://") {
		return name
	}
	if _, frag, ok := strings.Cut(id, "#"); ok {
		name, _, _ := strings.Cut(frag, "@")
		if strings.Contains(name, ".") || name == "" {
			// "#0.1.0": the name is the last path element of the source url.
			src, _, _ := strings.Cut(id, "#")
			return path.Base(src)
		}
		return name
	}
	return path.Base(id)
}
