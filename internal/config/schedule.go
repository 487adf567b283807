package config

import "qsofinstr/schedule"

type ScheduleConfig struct {
	// nil means enabled
	Enabled *bool `yaml:"enabled"`
	// 1 packs commuting gates, 2 isolates every off-diagonal gate
	Mode int `yaml:"mode"`
}

// WithDefaults returns a copy of the ScheduleConfig with any missing fields
// set to their default values.
func (c ScheduleConfig) WithDefaults() ScheduleConfig {
	cpy := c
	def := schedule.DefaultConfig()
	if cpy.Enabled == nil {
		enabled := def.Enabled
		cpy.Enabled = &enabled
	}
	if cpy.Mode == 0 {
		cpy.Mode = int(def.Mode)
	}
	return cpy
}

// Resolve converts the file form into the scheduler's configuration.
func (c ScheduleConfig) Resolve() schedule.Config {
	c = c.WithDefaults()
	return schedule.Config{Enabled: *c.Enabled, Mode: schedule.Mode(c.Mode)}
}
