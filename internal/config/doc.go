// Package config loads kins settings.
//
// Settings come from, in increasing priority: built-in defaults, a config
// file (TOML, YAML or JSON, chosen by extension), and KINS_* environment
// variables. A Watcher reloads the file when it changes.
//
// Example file:
//
//	[log]
//	level = "debug"
//	format = "console"
//	events = true
//
//	[profile]
//	enabled = true
//
//	[record]
//	enabled = true
//	path = "kins.db"
package config
