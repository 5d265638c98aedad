package optimize

import (
	"testing"

	"gifsmith/internal/media/ffprobe"
	"gifsmith/internal/palette"
	"gifsmith/internal/platform"
)

func TestDegradeStepOrder(t *testing.T) {
	ladder := platform.Ladder{
		FPSStep: 5, FPSFloor: 10,
		ColorStep: 64, ColorFloor: 32,
		ScaleFactor: 0.5, MinWidth: 28, MinHeight: 28,
	}
	p := Parameters{Width: 112, Height: 112, FPS: 20, Colors: 160}

	// Frame rate first.
	p, ok := Degrade(p, ladder)
	if !ok || p.FPS != 15 || p.Colors != 160 {
		t.Fatalf("first step should reduce fps only: %+v", p)
	}
	p, _ = Degrade(p, ladder)
	if p.FPS != 10 {
		t.Fatalf("fps should clamp at floor: %+v", p)
	}

	// Then colors.
	p, _ = Degrade(p, ladder)
	if p.FPS != 10 || p.Colors != 96 {
		t.Fatalf("second stage should reduce colors: %+v", p)
	}
	p, _ = Degrade(p, ladder)
	if p.Colors != 32 {
		t.Fatalf("colors should clamp at floor: %+v", p)
	}

	// Then dimensions.
	p, _ = Degrade(p, ladder)
	if p.Width != 56 || p.Height != 56 {
		t.Fatalf("third stage should shrink dimensions: %+v", p)
	}
	p, _ = Degrade(p, ladder)
	if p.Width != 28 || p.Height != 28 {
		t.Fatalf("dimensions should shrink again: %+v", p)
	}

	// All floors reached: no further reduction.
	next, ok := Degrade(p, ladder)
	if ok {
		t.Fatalf("ladder should be exhausted: %+v", next)
	}
	if next != p {
		t.Fatalf("exhausted ladder must return input unchanged: %+v vs %+v", next, p)
	}
}

func TestDegradeClampsDimensionsToFloor(t *testing.T) {
	spec, _ := platform.Lookup("twitch-emote")
	p := Parameters{
		Width: spec.Width, Height: spec.Height,
		FPS: spec.Ladder.FPSFloor, Colors: spec.Ladder.ColorFloor,
	}

	// Walk the dimension rungs until the ladder is spent.
	for i := 0; i < 100; i++ {
		next, ok := Degrade(p, spec.Ladder)
		if !ok {
			break
		}
		p = next
	}
	if p.Width != spec.Ladder.MinWidth || p.Height != spec.Ladder.MinHeight {
		t.Fatalf("ladder should bottom out at the %dx%d floor, got %dx%d",
			spec.Ladder.MinWidth, spec.Ladder.MinHeight, p.Width, p.Height)
	}
	if _, ok := Degrade(p, spec.Ladder); ok {
		t.Fatalf("floor parameters should exhaust the ladder: %+v", p)
	}
}

func TestDegradeNeverBreaksFloors(t *testing.T) {
	for _, spec := range platform.Registry() {
		if spec.SpriteSheet() {
			continue
		}
		p := Seed(spec, ffprobe.Metadata{Width: 1920, Height: 1080, FrameRate: 60, Duration: 10}, PresetHigh, palette.Dither{Mode: "bayer", BayerScale: 3})
		for i := 0; i < 100; i++ {
			next, ok := Degrade(p, spec.Ladder)
			if !ok {
				break
			}
			p = next
			if p.Colors < 2 {
				t.Fatalf("%s: colors fell below 2: %+v", spec.ID, p)
			}
			if p.Width < spec.Ladder.MinWidth || p.Height < spec.Ladder.MinHeight {
				t.Fatalf("%s: dimensions fell below floor: %+v", spec.ID, p)
			}
			if p.FPS < spec.Ladder.FPSFloor {
				t.Fatalf("%s: fps fell below floor: %+v", spec.ID, p)
			}
		}
	}
}

func TestSeedCapsFrameRate(t *testing.T) {
	spec, _ := platform.Lookup("slack-emoji")
	meta := ffprobe.Metadata{Width: 1920, Height: 1080, FrameRate: 60, Duration: 5}

	p := Seed(spec, meta, PresetHigh, palette.Dither{})
	if p.FPS != spec.SeedFPSCap {
		t.Fatalf("fps should cap at platform seed cap %d, got %d", spec.SeedFPSCap, p.FPS)
	}

	// Low-rate sources cap at the source rate.
	meta.FrameRate = 10
	p = Seed(spec, meta, PresetHigh, palette.Dither{})
	if p.FPS != 10 {
		t.Fatalf("fps should cap at source rate, got %d", p.FPS)
	}
}

func TestSeedUsesTargetBox(t *testing.T) {
	spec, _ := platform.Lookup("twitter-gif")
	p := Seed(spec, ffprobe.Metadata{Width: 1920, Height: 1080, FrameRate: 30, Duration: 5}, PresetBalanced, palette.Dither{})
	if p.Height != 480 || p.Width <= 480 {
		t.Fatalf("wide-aspect seed box wrong: %dx%d", p.Width, p.Height)
	}

	p = Seed(spec, ffprobe.Metadata{Width: 500, Height: 500, FrameRate: 30, Duration: 5}, PresetBalanced, palette.Dither{})
	if p.Width != 480 || p.Height != 480 {
		t.Fatalf("square seed box wrong: %dx%d", p.Width, p.Height)
	}
}

func TestSeedUnknownPresetFallsBack(t *testing.T) {
	spec, _ := platform.Lookup("twitch-emote")
	meta := ffprobe.Metadata{Width: 640, Height: 640, FrameRate: 60, Duration: 3}
	got := Seed(spec, meta, Preset("ultra"), palette.Dither{})
	want := Seed(spec, meta, PresetBalanced, palette.Dither{})
	if got != want {
		t.Fatalf("unknown preset should fall back to balanced: %+v vs %+v", got, want)
	}
}
