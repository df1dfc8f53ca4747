// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Platform, the selector that tells which physical or
// virtual machine a unit is compiled for.
package model

import "strings"

// HostShortName is the short name of the host platform selector.
const HostShortName = "host"

// Platform selects the compilation target of a unit. The zero value is the
// host (desktop/simulator) platform; any other value names a cross
// compilation triple such as "thumbv7em-none-eabihf".
type Platform struct {
	Triple string
}

// Host returns the host platform selector.
func Host() Platform { return Platform{} }

// Cross returns the platform selector for the given target triple.
func Cross(triple string) Platform { return Platform{Triple: triple} }

// IsHost reports whether p selects the host platform.
func (p Platform) IsHost() bool { return p.Triple == "" }

// ShortName is the name used in paths and log lines: "host" for the host
// platform, the triple otherwise. Cargo places cross-compiled outputs under
// a directory named after the triple, which the fallback pass relies on.
func (p Platform) ShortName() string {
	if p.IsHost() {
		return HostShortName
	}
	return p.Triple
}

// vendors lists the vendor components that appear in three-part triples
// shaped arch-vendor-os. Any other middle component is the OS itself, as in
// arch-os-env ("thumbv7em-none-eabihf", "aarch64-linux-android").
var vendors = map[string]bool{
	"unknown":  true,
	"pc":       true,
	"apple":    true,
	"nvidia":   true,
	"sun":      true,
	"wrs":      true,
	"uwp":      true,
	"fortanix": true,
	"esp":      true,
	"kmc":      true,
	"sony":     true,
	"nintendo": true,
}

// OS returns the operating-system component of the triple. For the host
// platform it returns an empty string; callers substitute runtime.GOOS.
func (p Platform) OS() string {
	if p.IsHost() {
		return ""
	}
	parts := strings.Split(p.Triple, "-")
	switch len(parts) {
	case 1:
		return ""
	case 2:
		return parts[1]
	case 3:
		if vendors[parts[1]] {
			return parts[2]
		}
		return parts[1]
	default:
		// arch-vendor-os-env
		return parts[2]
	}
}

// Embedded reports whether p is a bare-metal hardware target.
func (p Platform) Embedded() bool {
	return !p.IsHost() && p.OS() == "none"
}

func (p Platform) String() string { return p.ShortName() }
