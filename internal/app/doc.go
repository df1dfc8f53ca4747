// Package app wires the build pipeline together: manifest, unit index,
// compiler driver supervision, artifact reconciliation and packaging. It is
// decoupled from any specific entrypoint like the CLI.
package app
