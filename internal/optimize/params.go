package optimize

import (
	"gifsmith/internal/media/ffprobe"
	"gifsmith/internal/palette"
	"gifsmith/internal/platform"
)

// Preset selects the initial quality seed for an optimization run.
type Preset string

const (
	PresetHigh     Preset = "high"
	PresetBalanced Preset = "balanced"
	PresetCompact  Preset = "compact"
)

type presetSeed struct {
	fps         int
	colors      int
	compression int
}

var presetSeeds = map[Preset]presetSeed{
	PresetHigh:     {fps: 30, colors: 256, compression: 4},
	PresetBalanced: {fps: 24, colors: 192, compression: 6},
	PresetCompact:  {fps: 15, colors: 128, compression: 9},
}

// Parameters is the working state of one optimization run. It is treated as
// a value: Degrade returns a new Parameters rather than mutating in place.
type Parameters struct {
	Width            int
	Height           int
	FPS              int
	Colors           int
	CompressionLevel int
	Dither           palette.Dither
}

// Seed derives the initial Parameters for a platform from the quality
// preset and source metadata. The initial frame rate is capped by the
// platform and never exceeds the source rate; dimensions come from the
// platform's target box.
func Seed(spec platform.Spec, meta ffprobe.Metadata, preset Preset, dither palette.Dither) Parameters {
	seed, ok := presetSeeds[preset]
	if !ok {
		seed = presetSeeds[PresetBalanced]
	}

	fps := seed.fps
	if spec.SeedFPSCap > 0 && fps > spec.SeedFPSCap {
		fps = spec.SeedFPSCap
	}
	if meta.FrameRate > 0 && fps > meta.FrameRate {
		fps = meta.FrameRate
	}

	width, height := spec.TargetBox(meta.Width, meta.Height)
	return Parameters{
		Width:            width,
		Height:           height,
		FPS:              fps,
		Colors:           seed.colors,
		CompressionLevel: seed.compression,
		Dither:           dither,
	}
}
