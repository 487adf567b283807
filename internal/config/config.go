// Package config loads the YAML configuration of the qsofinstr CLI.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Schedule ScheduleConfig `yaml:"schedule"`
	Output   OutputConfig   `yaml:"output"`
	Log      *LogConfig     `yaml:"log"`
}

// WithDefaults returns a copy of the Config with any missing fields set to
// their default values.
func (c Config) WithDefaults() Config {
	cpy := c
	cpy.Schedule = cpy.Schedule.WithDefaults()
	cpy.Output = cpy.Output.WithDefaults()
	return cpy
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if err := c.Schedule.Resolve().Validate(); err != nil {
		return err
	}
	return c.Output.Validate()
}

// Load reads path and fills in defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config")
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}
