package config

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type LogConfig struct {
	Path string `yaml:"path"`
}

// CreateLogger builds a development logger when debug is set and a
// production logger otherwise. A configured log path replaces stderr.
func (c *Config) CreateLogger(debug bool) (*zap.Logger, error) {
	if c.Log != nil && c.Log.Path != "" {
		cfg := zap.NewProductionConfig()
		if debug {
			cfg = zap.NewDevelopmentConfig()
		}
		cfg.OutputPaths = []string{c.Log.Path}
		logger, err := cfg.Build()
		return logger, errors.Wrap(err, "create logger")
	}

	var logger *zap.Logger
	var err error
	if debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	return logger, errors.Wrap(err, "create logger")
}
