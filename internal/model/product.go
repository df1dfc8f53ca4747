// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines BuildProduct, the terminal record of the packaging stage.
package model

// BuildProduct is either a *Success or a *Skip.
type BuildProduct interface {
	buildProduct()
}

// Success records one packaged file.
type Success struct {
	Package  string
	Name     string
	SrcKind  OutputKind
	DstKind  OutputKind
	Platform Platform
	Profile  string
	Path     string
	Layout   string
	Example  bool
}

// Skip records a resolved file that has no packaging action.
type Skip struct {
	Reason   string
	Package  string
	Kind     OutputKind
	Platform Platform
}

func (*Success) buildProduct() {}
func (*Skip) buildProduct()    {}
