package spritesheet

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"

	"gifsmith/internal/fileutil"
	"gifsmith/internal/filterchain"
	"gifsmith/internal/frameplan"
	"gifsmith/internal/logging"
	"gifsmith/internal/media/ffprobe"
	"gifsmith/internal/platform"
	"gifsmith/internal/services"
	"gifsmith/internal/services/ffmpeg"
)

// Request describes a single sheet assembly.
type Request struct {
	Meta      ffprobe.Metadata
	Spec      platform.Spec
	ChromaKey *filterchain.ChromaKey
	Crop      *filterchain.Region
	Trim      *filterchain.Window
	// WorkDir receives the intermediate frame dumps; the caller owns its
	// lifecycle.
	WorkDir string
	// OutputDir and BaseName determine the final artifact path. The frame
	// count and playback rate are encoded into the file name so downstream
	// consumers can animate the sheet without sidecar metadata.
	OutputDir string
	BaseName  string
}

// Sheet is the assembled artifact.
type Sheet struct {
	Path       string
	Bytes      int64
	FrameCount int
	FPS        int
	GridSize   int
	CellSize   int
}

// Assembler extracts frames under a frame budget and tiles them into a
// fixed-size square grid image.
type Assembler struct {
	enc    ffmpeg.Encoder
	logger *slog.Logger
}

// New constructs an Assembler. A nil logger falls back to the no-op logger.
func New(enc ffmpeg.Encoder, logger *slog.Logger) *Assembler {
	return &Assembler{enc: enc, logger: logging.WithComponent(logger, "spritesheet")}
}

// Grid computes the square grid for a frame count inside a sheet of the
// given edge length: the smallest square grid that fits every frame, and
// the integral cell edge that grid leaves room for.
func Grid(frameCount, sheetSize int) (gridSize, cellSize int) {
	if frameCount < 1 {
		frameCount = 1
	}
	gridSize = int(math.Ceil(math.Sqrt(float64(frameCount))))
	cellSize = sheetSize / gridSize
	return gridSize, cellSize
}

// Assemble extracts up to the platform's frame budget worth of frames
// through the shared filter chain and composites them row-major into a
// square sheet. Cells beyond the final frame stay transparent.
func (a *Assembler) Assemble(ctx context.Context, req Request) (Sheet, error) {
	spec := req.Spec
	logger := a.logger.With(logging.String(logging.FieldPlatform, spec.ID))

	duration := req.Meta.Duration
	if req.Trim != nil {
		duration = req.Trim.Duration()
	}

	resample, frameCount, err := frameplan.PlanStride(duration, req.Meta.FrameRate, spec.MaxFrames)
	if err != nil {
		return Sheet{}, err
	}
	gridSize, cellSize := Grid(frameCount, spec.Width)
	if cellSize < 1 {
		return Sheet{}, services.Wrap(services.ErrValidation, "spritesheet", "grid",
			fmt.Sprintf("%d frames do not fit a %dpx sheet", frameCount, spec.Width), nil)
	}

	chain, err := filterchain.Build(filterchain.Options{
		SourceWidth:  req.Meta.Width,
		SourceHeight: req.Meta.Height,
		TargetWidth:  cellSize,
		TargetHeight: cellSize,
		ChromaKey:    req.ChromaKey,
		Crop:         req.Crop,
		Trim:         req.Trim,
		Rate:         resample,
	})
	if err != nil {
		return Sheet{}, err
	}

	token := uuid.NewString()
	pattern := filepath.Join(req.WorkDir, fmt.Sprintf("%s-%s-%%04d.png", spec.ID, token))
	logger.Debug("extracting frames",
		logging.Int("frames", frameCount),
		logging.Int("stride", resample.Stride),
		logging.Int("cell", cellSize),
	)
	if err := a.enc.ExtractFrames(ctx, ffmpeg.FramesRequest{
		Input:         req.Meta.Path,
		Trim:          trimWindow(req.Trim),
		Filter:        chain.String(),
		OutputPattern: pattern,
	}); err != nil {
		return Sheet{}, err
	}

	frames, err := collectFrames(req.WorkDir, fmt.Sprintf("%s-%s-", spec.ID, token), frameCount)
	if err != nil {
		return Sheet{}, err
	}
	defer func() {
		for _, frame := range frames {
			_ = os.Remove(frame)
		}
	}()

	sheetPath := filepath.Join(req.WorkDir, fmt.Sprintf("%s-%s-sheet.png", spec.ID, token))
	if err := compose(frames, gridSize, cellSize, spec.Width, spec.Height, sheetPath); err != nil {
		return Sheet{}, err
	}

	outputPath := filepath.Join(req.OutputDir,
		fmt.Sprintf("%s_%dframes_%dfps.%s", req.BaseName, len(frames), resample.FPS, spec.Container.Extension()))
	if err := fileutil.MoveFile(sheetPath, outputPath); err != nil {
		return Sheet{}, services.Wrap(services.ErrFilesystem, "spritesheet", "move artifact", outputPath, err)
	}
	size, err := fileutil.FileSize(outputPath)
	if err != nil {
		return Sheet{}, services.Wrap(services.ErrFilesystem, "spritesheet", "stat artifact", outputPath, err)
	}
	if spec.MaxBytes > 0 && size > spec.MaxBytes {
		_ = os.Remove(outputPath)
		return Sheet{}, services.Wrap(services.ErrSizeBudget, "spritesheet", spec.ID,
			fmt.Sprintf("sheet is %d bytes, budget %d", size, spec.MaxBytes), nil)
	}

	logger.Info("sheet assembled",
		logging.String(logging.FieldOutput, outputPath),
		logging.Int("frames", len(frames)),
		logging.Int("grid", gridSize),
		logging.Int64(logging.FieldBytes, size),
	)
	return Sheet{
		Path:       outputPath,
		Bytes:      size,
		FrameCount: len(frames),
		FPS:        resample.FPS,
		GridSize:   gridSize,
		CellSize:   cellSize,
	}, nil
}

// collectFrames lists the dumped frames for this run in sequence order,
// capped at the planned count. The encoder occasionally emits one frame
// more or fewer than planned around stream boundaries; the cap keeps the
// grid math honest either way.
func collectFrames(dir, prefix string, limit int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "spritesheet", "list frames", dir, err)
	}
	var frames []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		if filepath.Ext(name) != ".png" {
			continue
		}
		frames = append(frames, filepath.Join(dir, name))
	}
	if len(frames) == 0 {
		return nil, services.Wrap(services.ErrEncodeInvocation, "spritesheet", "list frames",
			"encoder produced no frames", nil)
	}
	sort.Strings(frames)
	if len(frames) > limit {
		for _, extra := range frames[limit:] {
			_ = os.Remove(extra)
		}
		frames = frames[:limit]
	}
	return frames, nil
}

// compose tiles the frames row-major into a sheetW x sheetH canvas. Frames
// are rescaled to the cell edge when the encoder's output differs, so the
// grid stays aligned regardless.
func compose(frames []string, gridSize, cellSize, sheetW, sheetH int, outputPath string) error {
	canvas := image.NewNRGBA(image.Rect(0, 0, sheetW, sheetH))
	for i, framePath := range frames {
		frame, err := decodePNG(framePath)
		if err != nil {
			return err
		}
		col := i % gridSize
		row := i / gridSize
		cell := image.Rect(col*cellSize, row*cellSize, (col+1)*cellSize, (row+1)*cellSize)
		xdraw.ApproxBiLinear.Scale(canvas, cell, frame, frame.Bounds(), xdraw.Src, nil)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return services.Wrap(services.ErrFilesystem, "spritesheet", "create sheet", outputPath, err)
	}
	if err := png.Encode(out, canvas); err != nil {
		_ = out.Close()
		return services.Wrap(services.ErrFilesystem, "spritesheet", "encode sheet", outputPath, err)
	}
	if err := out.Close(); err != nil {
		return services.Wrap(services.ErrFilesystem, "spritesheet", "close sheet", outputPath, err)
	}
	return nil
}

func decodePNG(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "spritesheet", "open frame", path, err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		return nil, services.Wrap(services.ErrEncodeInvocation, "spritesheet", "decode frame", path, err)
	}
	return img, nil
}

func trimWindow(trim *filterchain.Window) *ffmpeg.Trim {
	if trim == nil {
		return nil
	}
	return &ffmpeg.Trim{Start: trim.Start, End: trim.End}
}
