package optimize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"gifsmith/internal/fileutil"
	"gifsmith/internal/filterchain"
	"gifsmith/internal/frameplan"
	"gifsmith/internal/logging"
	"gifsmith/internal/media/ffprobe"
	"gifsmith/internal/palette"
	"gifsmith/internal/platform"
	"gifsmith/internal/services"
	"gifsmith/internal/services/ffmpeg"
)

// Attempt records one optimization iteration: the parameters used, the
// resulting artifact size, and the verdict. The log is append-only and
// discarded after the run.
type Attempt struct {
	Index       int
	Params      Parameters
	OutputBytes int64
	Pass        bool
}

// Reporter receives advisory progress notifications. Implementations must
// not block; nothing in the optimizer depends on reporter behavior.
type Reporter interface {
	AttemptStarted(platformID string, attempt, maxAttempts int, params Parameters)
	PassCompleted(platformID string, attempt int, pass string)
	Verdict(platformID string, attempt int, outputBytes int64, pass bool)
}

// NopReporter discards every progress event.
type NopReporter struct{}

func (NopReporter) AttemptStarted(string, int, int, Parameters) {}
func (NopReporter) PassCompleted(string, int, string)           {}
func (NopReporter) Verdict(string, int, int64, bool)            {}

// Request describes one platform's optimization run.
type Request struct {
	Meta      ffprobe.Metadata
	Spec      platform.Spec
	ChromaKey *filterchain.ChromaKey
	Crop      *filterchain.Region
	Trim      *filterchain.Window
	Params    Parameters
	// WorkDir holds per-attempt palettes and candidate artifacts. The
	// optimizer uses collision-free names inside it and removes failed
	// attempts' files before the next attempt.
	WorkDir string
	// OutputPath receives the passing artifact.
	OutputPath string
}

// Outcome is the result of a run. The attempt log is populated even when
// the run fails, so callers can report how many attempts were spent.
type Outcome struct {
	Attempts    []Attempt
	OutputBytes int64
}

// Optimizer runs the bounded parameter-degradation search against the
// external encoder until an artifact satisfies the platform byte budget.
type Optimizer struct {
	codec    *palette.Codec
	logger   *slog.Logger
	reporter Reporter
}

// New constructs an Optimizer. Nil logger and reporter fall back to no-ops.
func New(enc ffmpeg.Encoder, logger *slog.Logger, reporter Reporter) *Optimizer {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Optimizer{
		codec:    palette.New(enc, logger),
		logger:   logging.WithComponent(logger, "optimizer"),
		reporter: reporter,
	}
}

// Run walks the degradation ladder for up to the platform's attempt bound.
// Attempts are strictly sequential: palette generation, encode, size check,
// then a degradation decision. Encode invocation failures are retried
// implicitly by the next attempt; the loop is attempt-bounded regardless of
// encoder behavior.
func (o *Optimizer) Run(ctx context.Context, req Request) (Outcome, error) {
	spec := req.Spec
	params := req.Params
	logger := o.logger.With(logging.String(logging.FieldPlatform, spec.ID))

	duration := req.Meta.Duration
	if req.Trim != nil {
		duration = req.Trim.Duration()
	}

	var (
		attempts  []Attempt
		lastErr   error
		lastBytes int64
	)

	for attempt := 1; attempt <= spec.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{}, err
		}
		o.reporter.AttemptStarted(spec.ID, attempt, spec.MaxAttempts, params)

		rate, err := frameplan.Plan(duration, req.Meta.FrameRate, params.FPS, spec.MaxFrames)
		if err != nil {
			return Outcome{}, err
		}
		chain, err := filterchain.Build(filterchain.Options{
			SourceWidth:  req.Meta.Width,
			SourceHeight: req.Meta.Height,
			TargetWidth:  params.Width,
			TargetHeight: params.Height,
			ChromaKey:    req.ChromaKey,
			Crop:         req.Crop,
			Trim:         req.Trim,
			Rate:         rate,
		})
		if err != nil {
			return Outcome{}, err
		}

		token := uuid.NewString()
		palettePath := filepath.Join(req.WorkDir, fmt.Sprintf("%s-%s-palette.png", spec.ID, token))
		candidatePath := filepath.Join(req.WorkDir, fmt.Sprintf("%s-%s.%s", spec.ID, token, spec.Container.Extension()))
		format, extraFlags := containerArgs(spec.Container, params)

		job := palette.Job{
			Input:       req.Meta.Path,
			Trim:        trimWindow(req.Trim),
			Chain:       chain,
			Colors:      params.Colors,
			Dither:      params.Dither,
			Format:      format,
			ExtraFlags:  extraFlags,
			PalettePath: palettePath,
			OutputPath:  candidatePath,
		}

		logger.Debug("attempt encode",
			logging.Int(logging.FieldAttempt, attempt),
			logging.Int("fps", rate.FPS),
			logging.Int("colors", params.Colors),
			logging.String("box", fmt.Sprintf("%dx%d", params.Width, params.Height)),
		)

		if err := o.codec.Generate(ctx, job); err != nil {
			lastErr = err
			logger.Warn("palette pass failed", logging.Int(logging.FieldAttempt, attempt), logging.Error(err))
			attempts = append(attempts, Attempt{Index: attempt, Params: params})
			cleanupAttempt(palettePath, candidatePath)
			params = degradeOrKeep(params, spec.Ladder)
			continue
		}
		o.reporter.PassCompleted(spec.ID, attempt, "palette")

		if err := o.codec.Apply(ctx, job); err != nil {
			lastErr = err
			logger.Warn("encode pass failed", logging.Int(logging.FieldAttempt, attempt), logging.Error(err))
			attempts = append(attempts, Attempt{Index: attempt, Params: params})
			cleanupAttempt(palettePath, candidatePath)
			params = degradeOrKeep(params, spec.Ladder)
			continue
		}
		o.reporter.PassCompleted(spec.ID, attempt, "encode")

		size, err := fileutil.FileSize(candidatePath)
		if err != nil {
			cleanupAttempt(palettePath, candidatePath)
			return Outcome{}, services.Wrap(services.ErrFilesystem, "optimizer", "stat artifact", candidatePath, err)
		}
		lastBytes = size
		pass := size <= spec.MaxBytes
		attempts = append(attempts, Attempt{Index: attempt, Params: params, OutputBytes: size, Pass: pass})
		o.reporter.Verdict(spec.ID, attempt, size, pass)

		if pass {
			_ = os.Remove(palettePath)
			if err := fileutil.MoveFile(candidatePath, req.OutputPath); err != nil {
				return Outcome{}, services.Wrap(services.ErrFilesystem, "optimizer", "move artifact", req.OutputPath, err)
			}
			logger.Info("export within budget",
				logging.Int(logging.FieldAttempt, attempt),
				logging.String("size", humanize.IBytes(uint64(size))),
				logging.String("budget", humanize.IBytes(uint64(spec.MaxBytes))),
			)
			return Outcome{Attempts: attempts, OutputBytes: size}, nil
		}

		logger.Debug("over budget",
			logging.Int(logging.FieldAttempt, attempt),
			logging.Int64(logging.FieldBytes, size),
		)
		cleanupAttempt(palettePath, candidatePath)
		params = degradeOrKeep(params, spec.Ladder)
	}

	if lastErr != nil {
		return Outcome{Attempts: attempts}, services.Wrap(services.ErrEncodeInvocation, "optimizer", spec.ID,
			fmt.Sprintf("no attempt out of %d produced an artifact", spec.MaxAttempts), lastErr)
	}
	return Outcome{Attempts: attempts}, services.Wrap(services.ErrSizeBudget, "optimizer", spec.ID,
		fmt.Sprintf("%d attempts exhausted, best %s over budget %s",
			spec.MaxAttempts, humanize.IBytes(uint64(lastBytes)), humanize.IBytes(uint64(spec.MaxBytes))), nil)
}

// degradeOrKeep walks one ladder step. When every floor is reached the
// parameters are kept; the attempt bound still terminates the loop.
func degradeOrKeep(params Parameters, ladder platform.Ladder) Parameters {
	next, ok := Degrade(params, ladder)
	if !ok {
		return params
	}
	return next
}

func cleanupAttempt(paths ...string) {
	for _, path := range paths {
		_ = os.Remove(path)
	}
}

func trimWindow(trim *filterchain.Window) *ffmpeg.Trim {
	if trim == nil {
		return nil
	}
	return &ffmpeg.Trim{Start: trim.Start, End: trim.End}
}

// containerArgs maps a container to its encoder format name and per-encode
// flags. GIFs loop forever; APNGs loop forever and carry the run's
// compression level.
func containerArgs(container platform.Container, params Parameters) (string, []string) {
	switch container {
	case platform.ContainerAPNG:
		return "apng", []string{"-plays", "0", "-pred", "mixed", "-compression_level", strconv.Itoa(params.CompressionLevel)}
	default:
		return "gif", []string{"-loop", "0"}
	}
}
