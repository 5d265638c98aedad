// Package config loads, validates, and normalizes gifsmith configuration.
//
// Configuration lives in a TOML file (default ~/.config/gifsmith/config.toml,
// with a project-local gifsmith.toml fallback). Load expands ~ in every path
// field, fills defaults for omitted keys, and rejects out-of-range values so
// downstream components never re-validate. A sample config is embedded and
// written by `gifsmith config init`.
package config
