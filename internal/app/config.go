package app

import (
	"errors"
	"fmt"
)

// Config holds the entrypoint level configuration of an App. Pointer fields
// override the manifest only when set.
type Config struct {
	ManifestPath string
	UnitGraph    string
	KeepGoing    *bool
	MaxCycles    *int
	Jobs         *int

	NoColor      bool
	LogFormat    string
	LogLevel     string
	OtelEndpoint string
	OtelInsecure bool
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.MaxCycles != nil && *cfg.MaxCycles < 1 {
		return nil, fmt.Errorf("max-cycles must be at least 1, got %d", *cfg.MaxCycles)
	}
	if cfg.Jobs != nil && *cfg.Jobs < 1 {
		return nil, fmt.Errorf("jobs must be at least 1, got %d", *cfg.Jobs)
	}
	return &cfg, nil
}
