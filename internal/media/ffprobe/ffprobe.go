package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

var (
	// ErrNoVideoStream indicates the container holds no video stream.
	ErrNoVideoStream = errors.New("no video stream")
	// ErrUnreadableMetadata indicates ffprobe output could not be parsed
	// into usable metadata.
	ErrUnreadableMetadata = errors.New("unreadable metadata")
)

// Metadata describes the probed source video. It is produced once per source
// and treated as immutable by every export component.
type Metadata struct {
	Path      string
	Width     int
	Height    int
	FrameRate int
	Duration  float64
	SizeBytes int64
}

// TotalFrames returns floor(duration * fps), the source frame count every
// frame-budget decision starts from.
func (m Metadata) TotalFrames() int {
	return int(math.Floor(m.Duration * float64(m.FrameRate)))
}

// Valid reports whether the metadata describes a finite-length video stream.
func (m Metadata) Valid() bool {
	return m.Width > 0 && m.Height > 0 && m.FrameRate > 0 && m.Duration > 0
}

// Prober abstracts metadata extraction so tests can substitute a double.
type Prober interface {
	Probe(ctx context.Context, path string) (Metadata, error)
}

// Option configures the CLI prober.
type Option func(*CLI)

// WithBinary overrides the default ffprobe binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffprobe command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI prober using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffprobe"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

type probePayload struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
	Duration   string `json:"duration"`
	NBFrames   string `json:"nb_frames"`
}

type probeFormat struct {
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Probe executes ffprobe against the provided path and decodes the result
// into Metadata.
func (c *CLI) Probe(ctx context.Context, path string) (Metadata, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Metadata{}, fmt.Errorf("%w: empty path", ErrUnreadableMetadata)
	}

	cmd := commandContext(ctx, c.binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: ffprobe: %w: %s", ErrUnreadableMetadata, err, strings.TrimSpace(string(output)))
	}

	var payload probePayload
	if err := json.Unmarshal(output, &payload); err != nil {
		return Metadata{}, fmt.Errorf("%w: parse ffprobe output: %w", ErrUnreadableMetadata, err)
	}
	meta, err := metadataFromPayload(payload)
	if err != nil {
		return Metadata{}, err
	}
	meta.Path = path
	return meta, nil
}

func metadataFromPayload(payload probePayload) (Metadata, error) {
	var video *probeStream
	for i := range payload.Streams {
		if strings.EqualFold(payload.Streams[i].CodecType, "video") {
			video = &payload.Streams[i]
			break
		}
	}
	if video == nil {
		return Metadata{}, ErrNoVideoStream
	}
	if video.Width <= 0 || video.Height <= 0 {
		return Metadata{}, fmt.Errorf("%w: invalid dimensions %dx%d", ErrUnreadableMetadata, video.Width, video.Height)
	}

	fps := parseFrameRate(video.RFrameRate)
	duration := parsePositiveFloat(video.Duration)
	if duration == 0 {
		duration = parsePositiveFloat(payload.Format.Duration)
	}
	if duration == 0 && fps > 0 {
		// Some containers only report a frame count on the stream.
		if frames := parsePositiveFloat(video.NBFrames); frames > 0 {
			duration = frames / float64(fps)
		}
	}
	if fps <= 0 || duration <= 0 {
		return Metadata{}, fmt.Errorf("%w: source is not a finite-length video stream (fps=%d duration=%.3f)", ErrUnreadableMetadata, fps, duration)
	}

	return Metadata{
		Width:     video.Width,
		Height:    video.Height,
		FrameRate: fps,
		Duration:  duration,
		SizeBytes: int64(parsePositiveFloat(payload.Format.Size)),
	}, nil
}

// parseFrameRate converts ffprobe's rational r_frame_rate ("30000/1001") into
// a rounded integer fps.
func parseFrameRate(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	num, den := value, "1"
	if idx := strings.IndexByte(value, '/'); idx >= 0 {
		num, den = value[:idx], value[idx+1:]
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 || n <= 0 {
		return 0
	}
	return int(math.Round(n / d))
}

func parsePositiveFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed < 0 || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}

var _ Prober = (*CLI)(nil)
