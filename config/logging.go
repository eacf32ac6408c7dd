package config

import "fmt"

// LogConfig sets the application log level and output format.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// SetDefaults applies sane defaults.
func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the format name. The level is parsed by the logger.
func (c LogConfig) Validate() error {
	switch c.Format {
	case "", "json", "console":
		return nil
	}
	return fmt.Errorf("log: unknown format %s", c.Format)
}
