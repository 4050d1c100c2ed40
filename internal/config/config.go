// Package config loads atiplint configuration and resolves it against the
// inheritable preset graph. Resolution happens exactly once per invocation,
// before any file is linted; every failure here is a ConfigError that aborts
// the whole run.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Severity is a resolved rule severity.
type Severity int

const (
	SeverityOff   Severity = 0
	SeverityWarn  Severity = 1
	SeverityError Severity = 2
)

func (s Severity) String() string {
	switch s {
	case SeverityOff:
		return "off"
	case SeverityWarn:
		return "warn"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// ConfigError is fatal for the whole invocation: unknown preset, preset
// cycle, invalid severity token, or non-object rule options.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config: " + e.Msg }

func errorf(format string, args ...any) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// FileConfig is the raw shape of an atiplint configuration file. Rule values
// stay untyped here; normalization happens during Resolve.
type FileConfig struct {
	Extends        any             `mapstructure:"extends" json:"extends" yaml:"extends"`
	Rules          map[string]any  `mapstructure:"rules" json:"rules" yaml:"rules"`
	IgnorePatterns []string        `mapstructure:"ignorePatterns" json:"ignorePatterns" yaml:"ignorePatterns"`
	Overrides      []Override      `mapstructure:"overrides" json:"overrides" yaml:"overrides"`
	Plugins        []string        `mapstructure:"plugins" json:"plugins" yaml:"plugins"`
	Env            map[string]bool `mapstructure:"env" json:"env" yaml:"env"`
	Schema         SchemaConfig    `mapstructure:"schema" json:"schema" yaml:"schema"`
}

// Override scopes a rule map to files matching a glob list.
type Override struct {
	Files []string       `mapstructure:"files" json:"files" yaml:"files"`
	Rules map[string]any `mapstructure:"rules" json:"rules" yaml:"rules"`
}

// SchemaConfig controls the schema-validation collaborator.
type SchemaConfig struct {
	Enabled *bool  `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" json:"path" yaml:"path"`
}

// DefaultIgnorePatterns is the conservative ignore list used when no
// configuration file is found.
var DefaultIgnorePatterns = []string{
	"**/node_modules/**",
	"**/.git/**",
	"**/dist/**",
	"**/build/**",
}

// configNames is the fixed search order for configuration filenames.
var configNames = []string{
	".atiplintrc.json",
	".atiplintrc.yaml",
	".atiplintrc.yml",
	"atiplint.config.json",
}

// Load reads a configuration file. With an explicit path it must exist and
// parse; with an empty path the conventional filenames are searched in dir
// and its ancestors, and absence of any file yields the zero FileConfig
// (no rules enabled, conservative ignore patterns, schema validation on).
func Load(explicitPath, dir string) (*FileConfig, string, error) {
	path := explicitPath
	if path == "" {
		path = discover(dir)
		if path == "" {
			return &FileConfig{}, "", nil
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, "", errorf("cannot read %s: %v", path, err)
	}

	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, "", errorf("cannot parse %s: %v", path, err)
	}
	return &fc, path, nil
}

// discover walks dir and its ancestors looking for a configuration file.
func discover(dir string) string {
	if dir == "" {
		dir, _ = os.Getwd()
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return ""
	}
	for {
		for _, name := range configNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
