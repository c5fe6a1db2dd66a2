package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the policy parameters consumed at client construction.
type Config struct {
	AllowedTools       []string `yaml:"allowed_tools"`
	DeniedTools        []string `yaml:"denied_tools"`
	DefaultAllow       bool     `yaml:"default_allow"`
	MaxToolCallsPerRun int      `yaml:"max_tool_calls_per_run"`
}

// DefaultConfig returns the built-in policy: allow everything, no budget.
func DefaultConfig() Config {
	return Config{DefaultAllow: true}
}

// LoadConfig reads a policy config from a YAML file. An empty path
// returns the default config. Fields omitted in the file keep their
// defaults, so a file that only lists denied_tools still allows by
// default.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("policy: read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("policy: parse config %s: %w", path, err)
	}
	if cfg.MaxToolCallsPerRun < 0 {
		return Config{}, fmt.Errorf("policy: max_tool_calls_per_run cannot be negative")
	}
	return cfg, nil
}
