package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"gifsmith/internal/filterchain"
	"gifsmith/internal/logging"
	"gifsmith/internal/media/ffprobe"
	"gifsmith/internal/optimize"
	"gifsmith/internal/palette"
	"gifsmith/internal/platform"
	"gifsmith/internal/services"
	"gifsmith/internal/services/ffmpeg"
	"gifsmith/internal/spritesheet"
)

// Result is the outcome of one platform's export. Exactly one Result is
// produced per requested platform; a failed sibling never suppresses it.
type Result struct {
	Platform   string
	OutputPath string
	Bytes      int64
	Attempts   int
	Success    bool
	Err        error
}

// Message renders the failure for user-facing surfaces. Empty on success.
func (r Result) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Request is one export job across a set of platforms.
type Request struct {
	Meta      ffprobe.Metadata
	Platforms []string
	OutputDir string
	Preset    optimize.Preset
	Dither    palette.Dither
	ChromaKey *filterchain.ChromaKey
	Crop      *filterchain.Region
	Trim      *filterchain.Window
}

// Orchestrator sequences one optimization run per enabled platform. The
// encoder is injected so tests can stand in synthetic processes; the
// reporter receives advisory progress events and never affects control
// flow.
type Orchestrator struct {
	enc      ffmpeg.Encoder
	logger   *slog.Logger
	reporter optimize.Reporter
	tempRoot string
}

// New constructs an Orchestrator. tempRoot hosts the per-run scratch
// workspace; nil logger and reporter fall back to no-ops.
func New(enc ffmpeg.Encoder, tempRoot string, logger *slog.Logger, reporter optimize.Reporter) *Orchestrator {
	if reporter == nil {
		reporter = optimize.NopReporter{}
	}
	return &Orchestrator{
		enc:      enc,
		logger:   logging.WithComponent(logger, "export"),
		reporter: reporter,
		tempRoot: tempRoot,
	}
}

// Run exports the source once per requested platform and returns one
// Result each. Invalid metadata aborts the whole request; every other
// failure is scoped to its platform. The scratch workspace is removed
// before Run returns regardless of per-platform outcomes.
func (o *Orchestrator) Run(ctx context.Context, req Request) ([]Result, error) {
	meta := req.Meta
	if !meta.Valid() {
		return nil, services.Wrap(services.ErrMetadata, "export", "validate source",
			fmt.Sprintf("source %s has no usable video metadata", meta.Path), nil)
	}
	if len(req.Platforms) == 0 {
		return nil, services.Wrap(services.ErrValidation, "export", "validate request", "no platforms requested", nil)
	}
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "export", "create output dir", req.OutputDir, err)
	}

	workDir := filepath.Join(o.tempRoot, "export-"+uuid.NewString())
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "export", "create workspace", workDir, err)
	}
	defer os.RemoveAll(workDir)

	base := baseName(meta.Path)
	results := make([]Result, 0, len(req.Platforms))
	for _, id := range req.Platforms {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, o.exportPlatform(ctx, req, id, base, workDir))
	}
	return results, nil
}

func (o *Orchestrator) exportPlatform(ctx context.Context, req Request, id, base, workDir string) Result {
	spec, ok := platform.Lookup(id)
	if !ok {
		return Result{Platform: id, Err: services.Wrap(services.ErrValidation, "export", "lookup platform",
			fmt.Sprintf("unknown platform %q", id), nil)}
	}

	logger := o.logger.With(logging.String(logging.FieldPlatform, spec.ID))
	logger.Info("export started", logging.String(logging.FieldSource, req.Meta.Path))

	var result Result
	if spec.SpriteSheet() {
		result = o.assembleSheet(ctx, req, spec, base, workDir)
	} else {
		result = o.optimizeAnimation(ctx, req, spec, base, workDir)
	}

	if result.Err != nil {
		logger.Warn("export failed", logging.Error(result.Err))
	} else {
		logger.Info("export finished",
			logging.String(logging.FieldOutput, result.OutputPath),
			logging.Int64(logging.FieldBytes, result.Bytes),
		)
	}
	return result
}

func (o *Orchestrator) optimizeAnimation(ctx context.Context, req Request, spec platform.Spec, base, workDir string) Result {
	outputPath := filepath.Join(req.OutputDir, fmt.Sprintf("%s_%s.%s", base, spec.ID, spec.Container.Extension()))
	outcome, err := optimize.New(o.enc, o.logger, o.reporter).Run(ctx, optimize.Request{
		Meta:       req.Meta,
		Spec:       spec,
		ChromaKey:  req.ChromaKey,
		Crop:       req.Crop,
		Trim:       req.Trim,
		Params:     optimize.Seed(spec, req.Meta, req.Preset, req.Dither),
		WorkDir:    workDir,
		OutputPath: outputPath,
	})
	if err != nil {
		return Result{Platform: spec.ID, Attempts: len(outcome.Attempts), Err: err}
	}
	return Result{
		Platform:   spec.ID,
		OutputPath: outputPath,
		Bytes:      outcome.OutputBytes,
		Attempts:   len(outcome.Attempts),
		Success:    true,
	}
}

func (o *Orchestrator) assembleSheet(ctx context.Context, req Request, spec platform.Spec, base, workDir string) Result {
	sheet, err := spritesheet.New(o.enc, o.logger).Assemble(ctx, spritesheet.Request{
		Meta:      req.Meta,
		Spec:      spec,
		ChromaKey: req.ChromaKey,
		Crop:      req.Crop,
		Trim:      req.Trim,
		WorkDir:   workDir,
		OutputDir: req.OutputDir,
		BaseName:  base,
	})
	if err != nil {
		return Result{Platform: spec.ID, Err: err}
	}
	return Result{
		Platform:   spec.ID,
		OutputPath: sheet.Path,
		Bytes:      sheet.Bytes,
		Attempts:   1,
		Success:    true,
	}
}

func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
