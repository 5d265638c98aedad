// Package palette orchestrates two-pass palette quantization.
//
// Palette-based animated formats need a reduced color set derived before
// encoding: pass 1 asks the encoder to extract a palette from the filtered
// stream, pass 2 re-encodes the stream against that palette with a dithering
// mode. Both passes must run the identical filter chain; the codec treats
// any divergence as a caller defect by construction (one chain value feeds
// both passes).
package palette
