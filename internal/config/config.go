// Package config loads an optional YAML defaults file layered under the
// CLI flags the orchestrator accepts. CLI flags always win; this only
// supplies values the user didn't pass explicitly. Grounded on
// 1homsi-gorisk's internal/capability/patternset.go (raw-struct-then-
// validate loading pattern) and on original_source's
// components/directed/src/config/config.py Config dataclass.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the defaults a sliceir.yaml file may supply.
type Config struct {
	SrcRoot          string `yaml:"srcroot"`
	Output           string `yaml:"output"`
	DebugVerbose     int    `yaml:"debug_verbose"`
	MaxSlicingTime   int    `yaml:"max_slicing_time"`   // seconds, informational only
	MaxCallgraphTime int    `yaml:"max_callgraph_time"` // seconds, informational only
}

// Load reads and parses path. A missing file is not an error: it returns
// a zero-value Config so callers can treat "no config file" the same as
// "empty config file".
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyDefaults fills in zero-valued flag fields from cfg, leaving any
// value the caller already set (i.e. the CLI flag) untouched.
func ApplyDefaults(srcRoot, output *string, debugVerbose *int, cfg Config) {
	if *srcRoot == "" {
		*srcRoot = cfg.SrcRoot
	}
	if *output == "" {
		*output = cfg.Output
	}
	if *debugVerbose == 0 {
		*debugVerbose = cfg.DebugVerbose
	}
}
