// Package notifications delivers export events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured
// in config.toml and gracefully degrades to a no-op when notifications are
// disabled. Export code depends only on the small Service interface.
package notifications
