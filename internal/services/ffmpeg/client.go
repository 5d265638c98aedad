package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"gifsmith/internal/services"
)

var commandContext = exec.CommandContext

// Trim is an optional input-seek window in seconds. Seeking happens before
// decode for performance, so the filter chain only ever sees the window.
type Trim struct {
	Start float64
	End   float64
}

// GenerateRequest asks the encoder to derive a palette image from the
// filtered stream.
type GenerateRequest struct {
	Input  string
	Trim   *Trim
	Filter string
	Output string
}

// EncodeRequest asks the encoder to produce the final artifact by joining
// the filtered stream with a previously generated palette.
type EncodeRequest struct {
	Input        string
	PaletteInput string
	Trim         *Trim
	Filter       string
	Format       string
	ExtraFlags   []string
	Output       string
}

// FramesRequest asks the encoder to dump individual filtered frames to an
// output pattern (e.g. frame_%04d.png).
type FramesRequest struct {
	Input         string
	Trim          *Trim
	Filter        string
	OutputPattern string
}

// Encoder defines the external frame-encoding capability consumed by the
// export pipeline. Implementations block until the underlying process exits.
type Encoder interface {
	GeneratePalette(ctx context.Context, req GenerateRequest) error
	Encode(ctx context.Context, req EncodeRequest) error
	ExtractFrames(ctx context.Context, req FramesRequest) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// GeneratePalette runs the filter chain through a palette-extraction pass.
func (c *CLI) GeneratePalette(ctx context.Context, req GenerateRequest) error {
	if err := validateIO(req.Input, req.Output); err != nil {
		return err
	}
	args := baseArgs()
	args = append(args, trimArgs(req.Trim)...)
	args = append(args, "-i", req.Input, "-vf", req.Filter, req.Output)
	return c.run(ctx, "generate palette", args)
}

// Encode re-encodes the filtered stream against the palette input.
func (c *CLI) Encode(ctx context.Context, req EncodeRequest) error {
	if err := validateIO(req.Input, req.Output); err != nil {
		return err
	}
	if strings.TrimSpace(req.PaletteInput) == "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "encode", "palette input required", nil)
	}
	args := baseArgs()
	args = append(args, trimArgs(req.Trim)...)
	args = append(args, "-i", req.Input, "-i", req.PaletteInput, "-lavfi", req.Filter)
	if format := strings.TrimSpace(req.Format); format != "" {
		args = append(args, "-f", format)
	}
	args = append(args, req.ExtraFlags...)
	args = append(args, req.Output)
	return c.run(ctx, "encode", args)
}

// ExtractFrames dumps individual filtered frames to the output pattern.
func (c *CLI) ExtractFrames(ctx context.Context, req FramesRequest) error {
	if err := validateIO(req.Input, req.OutputPattern); err != nil {
		return err
	}
	args := baseArgs()
	args = append(args, trimArgs(req.Trim)...)
	args = append(args, "-i", req.Input, "-vf", req.Filter, "-fps_mode", "vfr", req.OutputPattern)
	return c.run(ctx, "extract frames", args)
}

func (c *CLI) run(ctx context.Context, operation string, args []string) error {
	cmd := commandContext(ctx, c.binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			err = fmt.Errorf("%w: %s", err, detail)
		}
		return services.Wrap(services.ErrEncodeInvocation, "ffmpeg", operation, "", err)
	}
	return nil
}

func baseArgs() []string {
	return []string{"-hide_banner", "-loglevel", "error", "-y"}
}

func trimArgs(trim *Trim) []string {
	if trim == nil {
		return nil
	}
	args := []string{"-ss", formatSeconds(trim.Start)}
	if trim.End > trim.Start {
		args = append(args, "-t", formatSeconds(trim.End-trim.Start))
	}
	return args
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func validateIO(input, output string) error {
	if strings.TrimSpace(input) == "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "invoke", "input path required", nil)
	}
	if strings.TrimSpace(output) == "" {
		return services.Wrap(services.ErrValidation, "ffmpeg", "invoke", "output path required", nil)
	}
	return nil
}

var _ Encoder = (*CLI)(nil)
