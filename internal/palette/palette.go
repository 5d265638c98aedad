package palette

import (
	"context"
	"fmt"
	"log/slog"

	"gifsmith/internal/filterchain"
	"gifsmith/internal/logging"
	"gifsmith/internal/services"
	"gifsmith/internal/services/ffmpeg"
)

// StatsMode favors inter-frame color differences when deriving the palette,
// which captures motion detail better than a single-frame histogram.
const StatsMode = "diff"

// Dither names the quantization dithering algorithm and its scale constant.
type Dither struct {
	Mode       string
	BayerScale int
}

// Param renders the paletteuse dither parameter text.
func (d Dither) Param() string {
	mode := d.Mode
	if mode == "" {
		mode = "bayer"
	}
	if mode == "bayer" {
		return fmt.Sprintf("dither=bayer:bayer_scale=%d", d.BayerScale)
	}
	return "dither=" + mode
}

// Job describes one two-pass quantization run.
type Job struct {
	Input      string
	Trim       *ffmpeg.Trim
	Chain      filterchain.Chain
	Colors     int
	Dither     Dither
	Format     string
	ExtraFlags []string
	// PalettePath receives the pass-1 palette image; OutputPath receives
	// the pass-2 artifact.
	PalettePath string
	OutputPath  string
}

// Codec orchestrates the two-pass palette quantization against the external
// encoder.
type Codec struct {
	enc    ffmpeg.Encoder
	logger *slog.Logger
}

// New constructs a Codec. A nil logger falls back to the no-op logger.
func New(enc ffmpeg.Encoder, logger *slog.Logger) *Codec {
	return &Codec{enc: enc, logger: logging.WithComponent(logger, "palette")}
}

// Run executes both passes. Pass 1 derives the reduced palette from the
// filtered stream; pass 2 re-encodes the stream against that palette. Both
// passes share the identical filter chain so palette and content agree on
// the spatial and temporal transform.
func (c *Codec) Run(ctx context.Context, job Job) error {
	if err := c.Generate(ctx, job); err != nil {
		return err
	}
	return c.Apply(ctx, job)
}

// Generate runs pass 1: palette extraction from the filtered stream.
func (c *Codec) Generate(ctx context.Context, job Job) error {
	if job.Colors < 2 || job.Colors > 256 {
		return services.Wrap(services.ErrValidation, "palette", "generate",
			fmt.Sprintf("color count %d out of [2,256]", job.Colors), nil)
	}

	chainText := job.Chain.String()
	c.logger.Debug("generating palette",
		logging.String("filter", chainText),
		logging.Int("colors", job.Colors),
	)
	return c.enc.GeneratePalette(ctx, ffmpeg.GenerateRequest{
		Input:  job.Input,
		Trim:   job.Trim,
		Filter: GenerateFilter(chainText, job.Colors),
		Output: job.PalettePath,
	})
}

// Apply runs pass 2: quantized re-encode against the pass-1 palette.
func (c *Codec) Apply(ctx context.Context, job Job) error {
	c.logger.Debug("applying palette",
		logging.String("dither", job.Dither.Param()),
		logging.String(logging.FieldOutput, job.OutputPath),
	)
	return c.enc.Encode(ctx, ffmpeg.EncodeRequest{
		Input:        job.Input,
		PaletteInput: job.PalettePath,
		Trim:         job.Trim,
		Filter:       ApplyFilter(job.Chain.String(), job.Dither),
		Format:       job.Format,
		ExtraFlags:   job.ExtraFlags,
		Output:       job.OutputPath,
	})
}

// GenerateFilter appends the palette-extraction stage to the chain text.
func GenerateFilter(chainText string, colors int) string {
	return fmt.Sprintf("%s,palettegen=max_colors=%d:stats_mode=%s", chainText, colors, StatsMode)
}

// ApplyFilter joins the chain with the palette input through the
// quantization stage.
func ApplyFilter(chainText string, dither Dither) string {
	return fmt.Sprintf("[0:v]%s[frames];[frames][1:v]paletteuse=%s", chainText, dither.Param())
}
