// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Probe executes ffprobe and reduces its stream/format payload to the
// Metadata every export component consumes: dimensions, rounded integer
// frame rate, duration, and byte size. Sources without a video stream or
// without a finite duration are rejected with typed sentinel errors.
package ffprobe
