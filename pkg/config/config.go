// Package config loads and validates the javup configuration. The YAML file
// holds a list of managed installations plus general settings. Decoding is
// strict: unknown fields reject the file instead of being silently dropped.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/javup/pkg/errors"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFilename is the name of the configuration file looked up in
// the working directory when no explicit path is given.
const DefaultConfigFilename = "javup.yaml"

// Default configuration values.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = Duration(30 * time.Second)

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "warn"
)

// Config represents the application configuration.
type Config struct {
	// Installations lists the managed installation directories.
	Installations []*InstallationConfig `yaml:"installations"`

	// Settings holds general application settings.
	Settings Settings `yaml:"settings,omitempty"`
}

// Duration is a time.Duration that unmarshals from the usual "30s"/"1m"
// notation, which yaml.v3 does not do on its own.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Settings represents general application settings.
type Settings struct {
	// Workers overrides the worker pool size. Zero means automatic.
	Workers int `yaml:"workers,omitempty"`

	// HTTPTimeout bounds every HTTP request.
	HTTPTimeout Duration `yaml:"http_timeout,omitempty"`

	// UserAgent overrides the HTTP user agent.
	UserAgent string `yaml:"user_agent,omitempty"`

	// LogLevel is one of error, warn, info, debug.
	LogLevel string `yaml:"log_level,omitempty"`

	// NoColor disables styled terminal output.
	NoColor bool `yaml:"no_color,omitempty"`
}

// Load loads the configuration from a file. The directory of the file is the
// base for relative installation directories, so the caller needs the
// absolute path; a missing file is an error, not a default.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not absolutize config path")
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrConfigNotFound, absPath)
		}
		return nil, errors.Wrapf(err, "failed to open config file %s", absPath)
	}
	defer func() { _ = file.Close() }()

	return LoadFromReader(file)
}

// LoadFromReader loads configuration from an io.Reader.
func LoadFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil {
		if err == io.EOF {
			// an empty file is an empty configuration
			config = Config{}
		} else {
			return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
		}
	}

	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigValidation, err.Error())
	}

	return &config, nil
}

// applyDefaults fills in unset values.
func (c *Config) applyDefaults() {
	if c.Settings.HTTPTimeout <= 0 {
		c.Settings.HTTPTimeout = DefaultHTTPTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = DefaultLogLevel
	}
	for _, installation := range c.Installations {
		installation.applyDefaults()
	}
}

// validate checks the loaded configuration.
func (c *Config) validate() error {
	for i, installation := range c.Installations {
		if err := installation.validate(i); err != nil {
			return err
		}
	}
	return nil
}
