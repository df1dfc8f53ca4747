// Package reconcile pairs every artifact reported by the compiler driver
// with exactly one planned unit ("root").
//
// The driver reports which files a job produced but not which platform the
// job was for, so one package built for the host and for a cross target
// yields artifacts that structurally match several roots. The engine narrows
// each artifact's candidate set with a bounded number of filtering passes:
//
//  1. Structural match: package id, target name and source path.
//  2. Per pass, for every artifact with more than one candidate: drop roots
//     reserved by another artifact, drop non-executable targets for
//     executable artifacts, and drop roots whose oracle prediction does not
//     validate against the artifact's files.
//  3. A candidate set of size one reserves its root for good and removes it
//     from every other candidate set.
//  4. Artifacts still ambiguous afterwards go through a fallback that prefers
//     the platform named by a path segment, then the host platform.
//
// Candidate sets never grow, so the passes terminate. Whatever remains
// ambiguous is reported as an *UnresolvedError listing every root that was
// considered.
package reconcile
