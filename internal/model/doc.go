// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model holds the data types shared by every stage of a pdbuild
// invocation: the planned compilation units ("roots"), the artifacts the
// compiler driver reports, the output kind of every produced file, and the
// BuildProduct records handed back to the caller.
//
// # Core Concepts
//
//   - Unit: A planned compilation job (package, target, platform). Units are
//     known before the compiler driver runs and are read-only afterwards.
//
//   - Artifact: One compiler-artifact event. It names the files a job actually
//     produced but not the platform it was built for, which is why the
//     reconcile package exists.
//
//   - OutputKind: The category of a produced file. Kinds are assigned per file,
//     not per artifact.
//
//   - BuildProduct: The terminal record for one packaged file, either a
//     Success or a Skip.
//
// Units and artifacts live for one invocation only. BuildProducts are the
// only values that leave the pipeline.
package model
