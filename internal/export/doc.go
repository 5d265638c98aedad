// Package export sequences platform exports for a single probed source.
// It owns the per-run scratch workspace, dispatches each platform to the
// animated optimizer or the sprite-sheet assembler, and isolates failures
// so one platform can fail while its siblings still produce artifacts.
package export
