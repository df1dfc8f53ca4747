// Package supervisor runs the compiler driver, decodes its JSON-lines
// event stream and classifies every event as an artifact, a diagnostic, the
// final build-finished signal, or something to ignore.
//
// The stream is consumed synchronously on the calling goroutine. Diagnostics
// are forwarded to the status printer as soon as they arrive; the final
// success report is held back until the stream is drained and the process
// has exited.
package supervisor
