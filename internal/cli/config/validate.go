package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/dbdiff/internal/cli/output"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.StatePath == "" {
		return fmt.Errorf("state_path is required")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxSamples < 1 {
		return fmt.Errorf("max_samples must be at least 1, got %d", c.MaxSamples)
	}
	if !slices.Contains(output.Modes(), c.OutputFormat) {
		return fmt.Errorf("unknown output format %q (valid: %s)",
			c.OutputFormat, strings.Join(output.Modes(), ", "))
	}
	return nil
}
