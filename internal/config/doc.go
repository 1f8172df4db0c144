// Package config loads, normalizes, and validates the livecap TOML
// configuration.
//
// Load resolves the config file (explicit path, ~/.config/livecap/config.toml,
// or a project-local livecap.toml), applies repository defaults for missing
// values, expands and absolutizes every path field, and rejects configurations
// a session could not run with. Components receive the resulting *Config and
// never re-read files or environment state themselves.
package config
