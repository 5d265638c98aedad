package filterchain

import (
	"fmt"
	"strconv"
	"strings"

	"gifsmith/internal/frameplan"
	"gifsmith/internal/services"
)

// RGB is a key color in 8-bit RGB.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color in the encoder's 0xRRGGBB notation.
func (c RGB) Hex() string {
	return fmt.Sprintf("0x%02X%02X%02X", c.R, c.G, c.B)
}

// dominantKeyChannel returns "green" or "blue" when that channel dominates
// the key color, or "" when neither does (no spill suppression applies).
func (c RGB) dominantKeyChannel() string {
	switch {
	case c.G > c.R && c.G >= c.B:
		return "green"
	case c.B > c.R && c.B > c.G:
		return "blue"
	default:
		return ""
	}
}

// ParseHexColor parses "#RRGGBB" or "RRGGBB" into an RGB value.
func ParseHexColor(value string) (RGB, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(cleaned) != 6 {
		return RGB{}, fmt.Errorf("color %q is not RRGGBB", value)
	}
	parsed, err := strconv.ParseUint(cleaned, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("color %q is not RRGGBB: %w", value, err)
	}
	return RGB{R: uint8(parsed >> 16), G: uint8(parsed >> 8), B: uint8(parsed)}, nil
}

// ChromaKey configures background color removal.
type ChromaKey struct {
	Color RGB
	// Similarity is the acceptance radius around the key color, 0-1.
	Similarity float64
	// Blend is the width of the soft-alpha falloff band, 0-1.
	Blend float64
}

// Region is a crop rectangle in source pixel coordinates.
type Region struct {
	X, Y          int
	Width, Height int
}

// Window is a trim window in seconds. It is applied at the encoder's
// input-seek level, not inside the filter chain; it rides along with
// Options so every consumer shares one validated value.
type Window struct {
	Start, End float64
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 {
	return w.End - w.Start
}

// Options is the full input to Build. Every recognized effect is an explicit
// field; unsupported combinations are rejected by Validate rather than
// silently ignored.
type Options struct {
	SourceWidth  int
	SourceHeight int
	TargetWidth  int
	TargetHeight int
	ChromaKey    *ChromaKey
	Crop         *Region
	Trim         *Window
	Rate         frameplan.Resample
}

// Validate rejects malformed options before any stage list is constructed.
func (o Options) Validate() error {
	if o.SourceWidth <= 0 || o.SourceHeight <= 0 {
		return services.Wrap(services.ErrValidation, "filterchain", "validate",
			fmt.Sprintf("source dimensions %dx%d are not positive", o.SourceWidth, o.SourceHeight), nil)
	}
	if o.TargetWidth <= 0 || o.TargetHeight <= 0 {
		return services.Wrap(services.ErrValidation, "filterchain", "validate",
			fmt.Sprintf("target dimensions %dx%d are not positive", o.TargetWidth, o.TargetHeight), nil)
	}
	if key := o.ChromaKey; key != nil {
		if key.Similarity < 0 || key.Similarity > 1 {
			return services.Wrap(services.ErrValidation, "filterchain", "validate",
				fmt.Sprintf("chroma similarity %v out of [0,1]", key.Similarity), nil)
		}
		if key.Blend < 0 || key.Blend > 1 {
			return services.Wrap(services.ErrValidation, "filterchain", "validate",
				fmt.Sprintf("chroma blend %v out of [0,1]", key.Blend), nil)
		}
	}
	if crop := o.Crop; crop != nil {
		if crop.Width <= 0 || crop.Height <= 0 {
			return services.Wrap(services.ErrValidation, "filterchain", "validate",
				fmt.Sprintf("crop %dx%d is not positive", crop.Width, crop.Height), nil)
		}
		if crop.X < 0 || crop.Y < 0 || crop.X+crop.Width > o.SourceWidth || crop.Y+crop.Height > o.SourceHeight {
			return services.Wrap(services.ErrValidation, "filterchain", "validate",
				fmt.Sprintf("crop %d,%d %dx%d exceeds source %dx%d",
					crop.X, crop.Y, crop.Width, crop.Height, o.SourceWidth, o.SourceHeight), nil)
		}
	}
	if trim := o.Trim; trim != nil {
		if trim.Start < 0 || trim.End <= trim.Start {
			return services.Wrap(services.ErrValidation, "filterchain", "validate",
				fmt.Sprintf("trim window %v..%v is empty", trim.Start, trim.End), nil)
		}
	}
	return nil
}
