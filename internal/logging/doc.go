// Package logging assembles the structured slog loggers used across gifsmith
// components.
//
// It owns the console and JSON handlers, centralizes level plumbing, and
// exposes field helpers so export code tags log lines with consistent
// platform/attempt attributes. Prefer these constructors over hand-rolled
// slog setup so every component emits the same shape.
package logging
