// Package history persists export runs and their per-platform outcomes in
// a SQLite database so past invocations can be inspected from the CLI.
package history
