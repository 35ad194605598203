package config

import (
	"strings"

	"github.com/rs/zerolog"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config holds every kins setting.
type Config struct {
	Log     LogConfig     `toml:"log" yaml:"log" json:"log"`
	Profile ProfileConfig `toml:"profile" yaml:"profile" json:"profile"`
	Record  RecordConfig  `toml:"record" yaml:"record" json:"record"`
}

// LogConfig controls the process logger and event logging.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error.
	Level string `toml:"level" yaml:"level" json:"level"`

	// Format is "console" or "json".
	Format string `toml:"format" yaml:"format" json:"format"`

	// Events logs every publish with its nesting depth.
	Events bool `toml:"events" yaml:"events" json:"events"`
}

// ProfileConfig controls publish timing.
type ProfileConfig struct {
	// Enabled accumulates elapsed time per direction and event name.
	Enabled bool `toml:"enabled" yaml:"enabled" json:"enabled"`

	// Metrics exports publish counters and durations to Prometheus.
	Metrics bool `toml:"metrics" yaml:"metrics" json:"metrics"`
}

// RecordConfig controls publish recording.
type RecordConfig struct {
	// Enabled records every top-level publish.
	Enabled bool `toml:"enabled" yaml:"enabled" json:"enabled"`

	// Path is the SQLite file for records. Empty keeps records in memory.
	Path string `toml:"path" yaml:"path" json:"path"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:  "info",
			Format: FormatConsole,
		},
	}
}

// Validate checks every setting.
func (c Config) Validate() error {
	if _, err := c.Log.ZerologLevel(); err != nil {
		return &ValidationError{Setting: "log.level", Value: c.Log.Level, Message: err.Error()}
	}
	switch strings.ToLower(c.Log.Format) {
	case FormatConsole, FormatJSON:
	default:
		return &ValidationError{Setting: "log.format", Value: c.Log.Format, Message: "must be console or json"}
	}
	return nil
}

// ZerologLevel parses Level. An empty level means info.
func (l LogConfig) ZerologLevel() (zerolog.Level, error) {
	if strings.TrimSpace(l.Level) == "" {
		return zerolog.InfoLevel, nil
	}
	return zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(l.Level)))
}
