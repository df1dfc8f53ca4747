// Package config defines the format-agnostic build manifest model and the
// Loader interface that fills it.
//
// The Model is the single source of truth for the app package. The HCL
// implementation of Loader lives in internal/hcl.
package config
