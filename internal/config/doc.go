// Package config loads, normalizes, and validates govyu configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GOVYU_LOG_LEVEL and GOVYU_EXPORT_DB. The Config type centralizes every knob
// the CLI needs: merge pruning, output formatting, archive rewrite behaviour,
// the SQLite export target, watch debouncing, and logging.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical format names, and clear validation errors.
package config
