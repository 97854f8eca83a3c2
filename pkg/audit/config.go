package audit

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v2"
)

// Config is the optional YAML configuration file. Every field mirrors a CLI
// flag; explicitly set flags take precedence over config values.
type Config struct {
	Dir        string `yaml:"dir,omitempty"`
	Depth      int    `yaml:"depth,omitempty"`
	Parallel   int    `yaml:"parallel,omitempty"`
	Timeout    string `yaml:"timeout,omitempty"`
	Warnings   bool   `yaml:"warnings,omitempty"`
	RunTests   *bool  `yaml:"runTests,omitempty"`
	TestOutput bool   `yaml:"testOutput,omitempty"`
	Registry   string `yaml:"registry,omitempty"`
	Dump       string `yaml:"dump,omitempty"`

	timeout time.Duration
}

func (c *Config) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type rawConfig Config
	raw := rawConfig{}

	if err := unmarshal(&raw); err != nil {
		return err
	}

	var allErrors *multierror.Error
	if raw.Depth < 0 {
		allErrors = multierror.Append(allErrors, fmt.Errorf("depth must not be negative, got %d", raw.Depth))
	}
	if raw.Parallel < 0 {
		allErrors = multierror.Append(allErrors, fmt.Errorf("parallel must not be negative, got %d", raw.Parallel))
	}
	if raw.Timeout != "" {
		d, err := time.ParseDuration(raw.Timeout)
		if err != nil {
			allErrors = multierror.Append(allErrors, fmt.Errorf("invalid timeout duration %q: %w", raw.Timeout, err))
		} else {
			raw.timeout = d
		}
	}
	if err := allErrors.ErrorOrNil(); err != nil {
		return err
	}

	*c = Config(raw)
	return nil
}

// Duration returns the parsed timeout, zero when unset.
func (c *Config) Duration() time.Duration { return c.timeout }

// LoadConfig reads and validates the YAML config at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
