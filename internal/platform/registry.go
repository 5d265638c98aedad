package platform

import (
	"math"
	"sort"
)

// Container identifies the artifact format a platform expects.
type Container string

const (
	ContainerGIF         Container = "gif"
	ContainerAPNG        Container = "apng"
	ContainerSpriteSheet Container = "sprite-sheet"
)

// Extension returns the output file extension for the container.
func (c Container) Extension() string {
	switch c {
	case ContainerAPNG:
		return "apng"
	case ContainerSpriteSheet:
		return "png"
	default:
		return "gif"
	}
}

// Ladder describes a platform's ordered degradation steps and floors. The
// optimizer applies the first step whose precondition still holds: frame rate
// down to FPSFloor, then colors down to ColorFloor, then dimensions shrunk by
// ScaleFactor down to MinWidth x MinHeight.
type Ladder struct {
	FPSStep     int
	FPSFloor    int
	ColorStep   int
	ColorFloor  int
	ScaleFactor float64
	MinWidth    int
	MinHeight   int
}

// Spec is the immutable target description for one platform, defined at
// process start.
type Spec struct {
	ID          string
	DisplayName string
	Container   Container
	Width       int
	Height      int
	MaxBytes    int64
	// MaxFrames is the hard output frame budget. Zero means unlimited.
	MaxFrames int
	// AllowWide permits output wider than Width, up to MaxAspect.
	AllowWide bool
	MaxAspect float64
	// SeedFPSCap bounds the initial frame rate regardless of quality preset.
	SeedFPSCap  int
	MaxAttempts int
	Ladder      Ladder
}

// SpriteSheet reports whether this platform takes the sprite-sheet export
// branch instead of the palette/optimizer pipeline.
func (s Spec) SpriteSheet() bool {
	return s.Container == ContainerSpriteSheet
}

// TargetBox computes the output box for a source of the given dimensions.
// The box never exceeds Width x Height unless AllowWide is set, in which case
// width may grow with the source aspect ratio up to MaxAspect.
func (s Spec) TargetBox(srcWidth, srcHeight int) (int, int) {
	width, height := s.Width, s.Height
	if !s.AllowWide || srcWidth <= 0 || srcHeight <= 0 {
		return width, height
	}
	aspect := float64(srcWidth) / float64(srcHeight)
	if aspect <= float64(width)/float64(height) {
		return width, height
	}
	if s.MaxAspect > 0 && aspect > s.MaxAspect {
		aspect = s.MaxAspect
	}
	width = evenDim(int(math.Round(float64(height) * aspect)))
	return width, height
}

func evenDim(v int) int {
	if v%2 != 0 {
		v--
	}
	if v < 2 {
		v = 2
	}
	return v
}

// registry is the static platform table. Budgets and ladders reflect how
// strict each platform's byte ceiling is: tight budgets start lower and
// degrade harder.
var registry = []Spec{
	{
		ID:          "twitch-emote",
		DisplayName: "twitch emote",
		Container:   ContainerGIF,
		Width:       112,
		Height:      112,
		MaxBytes:    1 * 1024 * 1024,
		MaxFrames:   60,
		SeedFPSCap:  30,
		MaxAttempts: 12,
		Ladder: Ladder{
			FPSStep: 4, FPSFloor: 8,
			ColorStep: 48, ColorFloor: 48,
			ScaleFactor: 0.9, MinWidth: 56, MinHeight: 56,
		},
	},
	{
		ID:          "discord-emoji",
		DisplayName: "discord emoji",
		Container:   ContainerGIF,
		Width:       128,
		Height:      128,
		MaxBytes:    256 * 1024,
		SeedFPSCap:  24,
		MaxAttempts: 12,
		Ladder: Ladder{
			FPSStep: 4, FPSFloor: 8,
			ColorStep: 64, ColorFloor: 32,
			ScaleFactor: 0.85, MinWidth: 48, MinHeight: 48,
		},
	},
	{
		ID:          "discord-sticker",
		DisplayName: "discord sticker",
		Container:   ContainerAPNG,
		Width:       320,
		Height:      320,
		MaxBytes:    512 * 1024,
		SeedFPSCap:  24,
		MaxAttempts: 12,
		Ladder: Ladder{
			FPSStep: 4, FPSFloor: 8,
			ColorStep: 64, ColorFloor: 48,
			ScaleFactor: 0.85, MinWidth: 160, MinHeight: 160,
		},
	},
	{
		ID:          "slack-emoji",
		DisplayName: "slack emoji",
		Container:   ContainerGIF,
		Width:       128,
		Height:      128,
		MaxBytes:    128 * 1024,
		MaxFrames:   50,
		SeedFPSCap:  15,
		MaxAttempts: 15,
		Ladder: Ladder{
			FPSStep: 3, FPSFloor: 5,
			ColorStep: 64, ColorFloor: 16,
			ScaleFactor: 0.75, MinWidth: 40, MinHeight: 40,
		},
	},
	{
		ID:          "twitter-gif",
		DisplayName: "twitter gif",
		Container:   ContainerGIF,
		Width:       480,
		Height:      480,
		MaxBytes:    15 * 1024 * 1024,
		AllowWide:   true,
		MaxAspect:   3.0,
		SeedFPSCap:  30,
		MaxAttempts: 10,
		Ladder: Ladder{
			FPSStep: 5, FPSFloor: 12,
			ColorStep: 32, ColorFloor: 96,
			ScaleFactor: 0.9, MinWidth: 240, MinHeight: 240,
		},
	},
	{
		ID:          "stream-avatar",
		DisplayName: "stream avatar sheet",
		Container:   ContainerSpriteSheet,
		Width:       1024,
		Height:      1024,
		MaxBytes:    8 * 1024 * 1024,
		MaxFrames:   64,
		SeedFPSCap:  30,
		MaxAttempts: 1,
	},
}

// Registry returns every platform spec, ordered by identifier.
func Registry() []Spec {
	out := make([]Spec, len(registry))
	copy(out, registry)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Lookup returns the spec for the given platform identifier.
func Lookup(id string) (Spec, bool) {
	for _, spec := range registry {
		if spec.ID == id {
			return spec, true
		}
	}
	return Spec{}, false
}

// IDs returns every registered platform identifier, ordered.
func IDs() []string {
	specs := Registry()
	ids := make([]string, 0, len(specs))
	for _, spec := range specs {
		ids = append(ids, spec.ID)
	}
	return ids
}
