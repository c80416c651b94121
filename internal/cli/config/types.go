// Package config provides configuration management for the dbdiff CLI.
//
// Configuration is layered: built-in defaults, then dbdiff.yaml, then
// DBDIFF_* environment variables, then flags.
package config

// Config holds all CLI configuration options.
type Config struct {
	StatePath    string       `koanf:"state_path"`
	Workers      int          `koanf:"workers"`
	MaxSamples   int          `koanf:"max_samples"`
	Verbose      bool         `koanf:"verbose"`
	OutputFormat string       `koanf:"output"`
	Serve        *ServeConfig `koanf:"serve"`
}

// ServeConfig holds configuration for the report server.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// GetServeConfig returns the serve config with defaults applied for any
// unset values.
func (c *Config) GetServeConfig() *ServeConfig {
	if c.Serve == nil {
		return &ServeConfig{Addr: DefaultServeAddr}
	}
	serve := c.Serve
	if serve.Addr == "" {
		serve.Addr = DefaultServeAddr
	}
	return serve
}

// Default configuration values.
const (
	DefaultStateFile  = ".dbdiff/history.db"
	DefaultWorkers    = 4
	DefaultMaxSamples = 10
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultServeAddr  = "127.0.0.1:8765"
)

// ConfigFileName is the name of the config file.
const ConfigFileName = "dbdiff.yaml"

// ConfigFileNameAlt is the alternate name of the config file.
const ConfigFileNameAlt = "dbdiff.yml"
