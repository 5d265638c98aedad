// Package ffmpeg wraps the external ffmpeg encoder behind the Encoder
// interface the export pipeline consumes.
//
// Every invocation is a blocking process call: the caller suspends until
// ffmpeg exits and nonzero exits surface the captured diagnostic stream
// tagged as an encode invocation error. Filter text is passed through
// verbatim; this package owns only argument assembly and trim-window
// input seeking.
package ffmpeg
