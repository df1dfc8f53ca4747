package config

import "context"

// Loader is the interface for a format-specific manifest loader.
type Loader interface {
	// Load reads the manifest from the given files or directories and
	// returns the validated model.
	Load(ctx context.Context, paths ...string) (*Model, error)
}
