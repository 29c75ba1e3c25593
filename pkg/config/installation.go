package config

import (
	"fmt"
	"path/filepath"

	"github.com/glorpus-work/javup/pkg/platform"
	"github.com/glorpus-work/javup/pkg/vars"
	"gopkg.in/yaml.v3"
)

// InstallationConfig describes one managed installation directory.
type InstallationConfig struct {
	// Vendor of the installation (eclipse, azul).
	Vendor string `yaml:"vendor"`
	// Architecture of the installation. Defaults to the host architecture.
	Architecture string `yaml:"architecture,omitempty"`
	// OS of the installation. Defaults to the host operating system.
	OS string `yaml:"os,omitempty"`
	// Directory of the installation, relative to the config file unless
	// absolute. May contain ${name} variables.
	Directory string `yaml:"directory"`
	// Type of the installation, jdk or jre.
	Type string `yaml:"type"`
	// Version is the major version to track (17, 21, ...).
	Version VersionSpec `yaml:"version"`
	// Enabled toggles processing of this installation. Defaults to true.
	Enabled *bool `yaml:"enabled,omitempty"`

	// OnSuccess commands run after an installation was processed without error.
	OnSuccess []CommandConfig `yaml:"on-success,omitempty"`
	// OnFailure commands run when processing an installation failed.
	OnFailure []CommandConfig `yaml:"on-failure,omitempty"`
	// OnUpdate commands run when an installation was actually updated.
	OnUpdate []CommandConfig `yaml:"on-update,omitempty"`

	// Hooks are scripts run around the update itself.
	Hooks HooksConfig `yaml:"hooks,omitempty"`
}

// CommandConfig describes one notify command. All strings may contain
// ${name} variables.
type CommandConfig struct {
	// Path to the executable.
	Path string `yaml:"path"`
	// Args for the executable.
	Args []string `yaml:"args,omitempty"`
	// Directory is the optional working directory for the executable.
	Directory string `yaml:"directory,omitempty"`
}

// HooksConfig points to the Tengo scripts run around an update, relative to
// the config file unless absolute.
type HooksConfig struct {
	PreUpdate  string `yaml:"pre-update,omitempty"`
	PostUpdate string `yaml:"post-update,omitempty"`
}

// VersionSpec is a version selector that accepts both a YAML integer and a
// YAML string, so version: 21 and version: "21" configure the same thing.
type VersionSpec string

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *VersionSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Tag {
	case "!!int", "!!str":
		*v = VersionSpec(value.Value)
		return nil
	default:
		return fmt.Errorf("version must be an unsigned integer or a string, got %s", value.Tag)
	}
}

// applyDefaults fills in unset values.
func (c *InstallationConfig) applyDefaults() {
	if c.Architecture == "" {
		c.Architecture = platform.HostArch()
	}
	if c.OS == "" {
		c.OS = platform.HostOS()
	}
}

// validate checks the installation entry.
func (c *InstallationConfig) validate(index int) error {
	if c.Vendor == "" {
		return fmt.Errorf("installation %d: vendor is required", index)
	}
	if c.Directory == "" {
		return fmt.Errorf("installation %d: directory is required", index)
	}
	return nil
}

// IsEnabled reports whether the installation should be processed.
func (c *InstallationConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// Resolve implements vars.Resolver with the configuration's own values.
func (c *InstallationConfig) Resolve(name string) (string, error) {
	switch name {
	case "JU_CONFIG_ARCH":
		return c.Architecture, nil
	case "JU_CONFIG_DIRECTORY":
		return c.Directory, nil
	case "JU_CONFIG_TYPE":
		return c.Type, nil
	case "JU_CONFIG_VENDOR":
		return c.Vendor, nil
	case "JU_CONFIG_VERSION":
		return string(c.Version), nil
	default:
		return "", fmt.Errorf("variable %q not a config value", name)
	}
}

// ExpandDirectory returns the directory with all known variables expanded.
// Expansion is lenient: unknown variables survive verbatim.
func (c *InstallationConfig) ExpandDirectory() string {
	expander := vars.NewExpander(
		c,
		vars.NewPrefixed("env.", vars.OSEnv{}),
		vars.Platform{},
		vars.AsIs{},
	)

	expanded, err := expander.Expand(c.Directory)
	if err != nil {
		return c.Directory
	}
	return expanded
}

// TargetDir resolves the absolute installation directory against the
// directory holding the config file.
func (c *InstallationConfig) TargetDir(baseDir string) string {
	dir := c.ExpandDirectory()
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(baseDir, dir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
