package config

import "github.com/pkg/errors"

const (
	FormatText   = "txt"
	FormatBinary = "bin"
)

type OutputConfig struct {
	Format string `yaml:"format"`
	// Directory for compiled programs; empty means next to the input
	Dir string `yaml:"dir"`
	// Write a YAML manifest with build id and digest beside each program
	Manifest bool `yaml:"manifest"`
}

// WithDefaults returns a copy of the OutputConfig with any missing fields set
// to their default values.
func (c OutputConfig) WithDefaults() OutputConfig {
	cpy := c
	if cpy.Format == "" {
		cpy.Format = FormatText
	}
	return cpy
}

func (c OutputConfig) Validate() error {
	switch c.Format {
	case FormatText, FormatBinary:
		return nil
	}
	return errors.Errorf("output format must be %s or %s, got %q", FormatText, FormatBinary, c.Format)
}
