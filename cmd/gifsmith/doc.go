// Command gifsmith exports video clips into platform-sized animated
// artifacts. It probes sources with ffprobe, drives ffmpeg's palette
// pipeline under each platform's byte and frame budgets, and records run
// history for later inspection.
package main
