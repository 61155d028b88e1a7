// Package config loads, normalizes, and validates hopper configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// HOPPER_WATCH_FOLDER and HOPPER_NTFY_TOPIC. The Config type centralizes every
// knob the daemon and CLI need, so watch rules, runtime file locations, and
// notification settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical extension lists, and clear validation errors.
package config
