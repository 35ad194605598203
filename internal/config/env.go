package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "KINS_"

// envSetters maps a variable name (after the prefix) to the setting it
// overrides.
var envSetters = map[string]func(c *Config, v string) error{
	"LOG_LEVEL":   func(c *Config, v string) error { c.Log.Level = v; return nil },
	"LOG_FORMAT":  func(c *Config, v string) error { c.Log.Format = v; return nil },
	"LOG_EVENTS":  boolSetter(func(c *Config) *bool { return &c.Log.Events }),
	"PROFILE":     boolSetter(func(c *Config) *bool { return &c.Profile.Enabled }),
	"METRICS":     boolSetter(func(c *Config) *bool { return &c.Profile.Metrics }),
	"RECORD":      boolSetter(func(c *Config) *bool { return &c.Record.Enabled }),
	"RECORD_PATH": recordPath,
}

// ApplyEnv overlays environment variables named prefix+LOG_LEVEL,
// LOG_FORMAT, LOG_EVENTS, PROFILE, METRICS, RECORD and RECORD_PATH.
// An empty prefix means EnvPrefix.
// Setting RECORD_PATH also enables recording.
func (c *Config) ApplyEnv(prefix string) error {
	if prefix == "" {
		prefix = EnvPrefix
	}
	for name, set := range envSetters {
		val, ok := os.LookupEnv(prefix + name)
		if !ok {
			continue
		}
		if err := set(c, strings.TrimSpace(val)); err != nil {
			return fmt.Errorf("environment %s%s: %w", prefix, name, err)
		}
	}
	return nil
}

func boolSetter(field func(c *Config) *bool) func(c *Config, v string) error {
	return func(c *Config, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}

func recordPath(c *Config, v string) error {
	c.Record.Path = v
	if v != "" {
		c.Record.Enabled = true
	}
	return nil
}

// parseBool accepts strconv.ParseBool values plus yes/no and on/off.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "on":
		return true, nil
	case "no", "off", "":
		return false, nil
	}
	return strconv.ParseBool(s)
}
