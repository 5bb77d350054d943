package config

import (
	"fmt"
	"strings"
)

// OutputConfig controls where and how modules are written.
type OutputConfig struct {
	// Dir is the destination directory; the --save_folder flag overrides it.
	Dir string `yaml:"dir" json:"dir,omitempty"`

	// Extension is appended to every module file name.
	Extension string `yaml:"extension" json:"extension,omitempty"`

	// Strict makes write failures change the exit status.
	Strict bool `yaml:"strict" json:"strict,omitempty"`

	// Manifest writes a YAML description of the run next to the modules.
	Manifest     bool   `yaml:"manifest" json:"manifest,omitempty"`
	ManifestName string `yaml:"manifest_name" json:"manifest_name,omitempty"`
}

// DefaultOutputConfig returns defaults for output.
func DefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Extension:    ".js",
		ManifestName: "unbundle-manifest.yaml",
	}
}

func (o *OutputConfig) validate() error {
	if o.Extension != "" && !strings.HasPrefix(o.Extension, ".") {
		return fmt.Errorf("output.extension: must start with '.', got %q", o.Extension)
	}
	if strings.ContainsAny(o.Extension, `/\`) {
		return fmt.Errorf("output.extension: must not contain path separators, got %q", o.Extension)
	}
	if o.Manifest && o.ManifestName == "" {
		return fmt.Errorf("output.manifest_name: required when output.manifest is set")
	}
	if strings.ContainsAny(o.ManifestName, `/\`) {
		return fmt.Errorf("output.manifest_name: must be a bare file name, got %q", o.ManifestName)
	}
	return nil
}
