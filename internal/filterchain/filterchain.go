package filterchain

import (
	"fmt"
	"strconv"
	"strings"

	"gifsmith/internal/frameplan"
)

// Chain is an ordered list of effect stages, rendered into the encoder's
// comma-joined filter syntax. Building a chain is deterministic: identical
// options always produce byte-identical text.
type Chain []string

// String renders the chain in encoder filter-graph syntax.
func (c Chain) String() string {
	return strings.Join(c, ",")
}

// Spill correction constants; applied only when despill ran, to counteract
// the desaturation it introduces.
const (
	spillGamma      = 1.05
	spillSaturation = 1.12
)

// Build produces the effect stage list for one encode. Stage order is fixed:
// chroma key, spill suppression, color correction, source crop, scale to
// fill, exact center crop, temporal resample.
func Build(opts Options) (Chain, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	chain := make(Chain, 0, 7)
	if key := opts.ChromaKey; key != nil {
		chain = append(chain, fmt.Sprintf("colorkey=%s:%s:%s",
			key.Color.Hex(), formatFloat(key.Similarity), formatFloat(key.Blend)))
		if channel := key.Color.dominantKeyChannel(); channel != "" {
			chain = append(chain, "despill=type="+channel)
			chain = append(chain, fmt.Sprintf("eq=gamma=%s:saturation=%s",
				formatFloat(spillGamma), formatFloat(spillSaturation)))
		}
	}
	if crop := opts.Crop; crop != nil {
		chain = append(chain, fmt.Sprintf("crop=%d:%d:%d:%d", crop.Width, crop.Height, crop.X, crop.Y))
	}

	// Fill the target box, then cut the overflow. Content always covers the
	// frame; no letterboxing.
	chain = append(chain, fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase:flags=lanczos",
		opts.TargetWidth, opts.TargetHeight))
	chain = append(chain, fmt.Sprintf("crop=%d:%d", opts.TargetWidth, opts.TargetHeight))

	chain = append(chain, rateStage(opts.Rate))
	return chain, nil
}

// rateStage renders the temporal resampling instruction. Applied last so the
// resample sees the final spatial pipeline.
func rateStage(rs frameplan.Resample) string {
	if rs.Mode == frameplan.SampleStride && rs.Stride > 1 {
		return fmt.Sprintf(`select=not(mod(n\,%d)),setpts=N/(%d*TB)`, rs.Stride, rs.FPS)
	}
	fps := rs.FPS
	if fps < 1 {
		fps = 1
	}
	return fmt.Sprintf("fps=%d", fps)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
