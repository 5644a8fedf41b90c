package worldstate

import (
	"github.com/ffhgterh111-hub/LFGWarframeMain/worldstate/internal/config"
)

// Config is the top-level worldstate configuration. Re-exported from internal.
type Config = config.Config

// NotifierConfig defines a change notification backend.
type NotifierConfig = config.NotifierConfig

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	return config.Default()
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// LoadConfig reads path (if non-empty), applies the WS_* environment
// overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}
