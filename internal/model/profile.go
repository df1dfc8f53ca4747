// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"encoding/json"
	"fmt"
)

// Profile is the compilation profile reported with an artifact.
type Profile struct {
	OptLevel        string `json:"opt_level"`
	DebugInfo       int    `json:"-"`
	DebugAssertions bool   `json:"debug_assertions"`
	OverflowChecks  bool   `json:"overflow_checks"`
	Test            bool   `json:"test"`
}

// Name returns "debug" for profiles built with debug assertions and
// "release" otherwise.
func (p Profile) Name() string {
	if p.DebugAssertions {
		return "debug"
	}
	return "release"
}

// UnmarshalJSON accepts debuginfo as either a number or a string, since
// cargo changed the representation ("line-tables-only", 2, ...).
func (p *Profile) UnmarshalJSON(data []byte) error {
	type plain Profile
	var raw struct {
		plain
		DebugInfo json.RawMessage `json:"debuginfo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Profile(raw.plain)
	if len(raw.DebugInfo) == 0 || string(raw.DebugInfo) == "null" {
		return nil
	}
	var n int
	if err := json.Unmarshal(raw.DebugInfo, &n); err == nil {
		p.DebugInfo = n
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.DebugInfo, &s); err != nil {
		return fmt.Errorf("unsupported debuginfo value %s", raw.DebugInfo)
	}
	switch s {
	case "none":
		p.DebugInfo = 0
	case "limited", "line-directives-only", "line-tables-only":
		p.DebugInfo = 1
	default:
		p.DebugInfo = 2
	}
	return nil
}
