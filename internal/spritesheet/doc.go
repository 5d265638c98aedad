// Package spritesheet tiles sampled video frames into a single square
// grid image. It is the terminal export branch for sheet-based platforms:
// instead of re-encoding an animated stream it extracts discrete frames
// under the platform's frame budget and composites them row-major, leaving
// any unused grid cells transparent. The actual frame count and playback
// rate are encoded into the output file name.
package spritesheet
