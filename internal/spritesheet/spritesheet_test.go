package spritesheet

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gifsmith/internal/media/ffprobe"
	"gifsmith/internal/platform"
	"gifsmith/internal/services"
	"gifsmith/internal/services/ffmpeg"
)

func TestGrid(t *testing.T) {
	cases := []struct {
		frames   int
		sheet    int
		wantGrid int
		wantCell int
	}{
		{frames: 64, sheet: 1024, wantGrid: 8, wantCell: 128},
		{frames: 10, sheet: 1024, wantGrid: 4, wantCell: 256},
		{frames: 1, sheet: 1024, wantGrid: 1, wantCell: 1024},
		{frames: 17, sheet: 1000, wantGrid: 5, wantCell: 200},
	}
	for _, tc := range cases {
		grid, cell := Grid(tc.frames, tc.sheet)
		if grid != tc.wantGrid || cell != tc.wantCell {
			t.Fatalf("Grid(%d, %d) = %d, %d; want %d, %d",
				tc.frames, tc.sheet, grid, cell, tc.wantGrid, tc.wantCell)
		}
	}
}

func TestGridCapsAtBudget(t *testing.T) {
	// A 130-frame plan never reaches Grid directly: PlanStride caps the
	// count at the budget first. With the stream-avatar budget of 64 the
	// capped count still lands on an 8x8 grid.
	spec, ok := platform.Lookup("stream-avatar")
	if !ok {
		t.Fatal("stream-avatar platform missing")
	}
	capped := 130
	if capped > spec.MaxFrames {
		capped = spec.MaxFrames
	}
	grid, _ := Grid(capped, spec.Width)
	if grid != 8 {
		t.Fatalf("grid for capped count = %d, want 8", grid)
	}
}

// frameDumpEncoder writes solid-color PNG frames matching the requested
// output pattern, simulating the external frame extraction.
type frameDumpEncoder struct {
	frames  int
	size    int
	filters []string
	fail    bool
}

func (e *frameDumpEncoder) GeneratePalette(context.Context, ffmpeg.GenerateRequest) error {
	return nil
}

func (e *frameDumpEncoder) Encode(context.Context, ffmpeg.EncodeRequest) error {
	return nil
}

func (e *frameDumpEncoder) ExtractFrames(_ context.Context, req ffmpeg.FramesRequest) error {
	if e.fail {
		return services.Wrap(services.ErrEncodeInvocation, "ffmpeg", "extract frames", "exit status 1", nil)
	}
	e.filters = append(e.filters, req.Filter)
	for i := 1; i <= e.frames; i++ {
		img := image.NewNRGBA(image.Rect(0, 0, e.size, e.size))
		for y := 0; y < e.size; y++ {
			for x := 0; x < e.size; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: uint8(i * 7), A: 255})
			}
		}
		path := fmt.Sprintf(req.OutputPattern, i)
		file, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := png.Encode(file, img); err != nil {
			file.Close()
			return err
		}
		if err := file.Close(); err != nil {
			return err
		}
	}
	return nil
}

func sheetRequest(t *testing.T, meta ffprobe.Metadata) Request {
	t.Helper()
	spec, ok := platform.Lookup("stream-avatar")
	if !ok {
		t.Fatal("stream-avatar platform missing")
	}
	return Request{
		Meta:      meta,
		Spec:      spec,
		WorkDir:   t.TempDir(),
		OutputDir: t.TempDir(),
		BaseName:  "clip",
	}
}

func TestAssembleProducesNamedSheet(t *testing.T) {
	meta := ffprobe.Metadata{Path: "clip.mp4", Width: 1280, Height: 720, FrameRate: 30, Duration: 2}
	req := sheetRequest(t, meta)
	// 2s at 30fps = 60 frames, within the 64-frame budget.
	enc := &frameDumpEncoder{frames: 60, size: 128}

	sheet, err := New(enc, nil).Assemble(context.Background(), req)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if sheet.FrameCount != 60 || sheet.GridSize != 8 || sheet.CellSize != 128 {
		t.Fatalf("unexpected sheet geometry: %+v", sheet)
	}
	wantName := "clip_60frames_30fps.png"
	if filepath.Base(sheet.Path) != wantName {
		t.Fatalf("sheet name = %s, want %s", filepath.Base(sheet.Path), wantName)
	}

	file, err := os.Open(sheet.Path)
	if err != nil {
		t.Fatalf("open sheet: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("decode sheet: %v", err)
	}
	if b := img.Bounds(); b.Dx() != req.Spec.Width || b.Dy() != req.Spec.Height {
		t.Fatalf("sheet bounds = %v, want %dx%d", b, req.Spec.Width, req.Spec.Height)
	}
}

func TestAssembleCapsFrameBudget(t *testing.T) {
	// 10s at 30fps = 300 source frames against a 64-frame budget: the
	// stride plan keeps at most 64 and the name reflects the reduced rate.
	meta := ffprobe.Metadata{Path: "clip.mp4", Width: 640, Height: 640, FrameRate: 30, Duration: 10}
	req := sheetRequest(t, meta)
	enc := &frameDumpEncoder{frames: 60, size: 128}

	sheet, err := New(enc, nil).Assemble(context.Background(), req)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if sheet.FrameCount > req.Spec.MaxFrames {
		t.Fatalf("frame count %d exceeds budget %d", sheet.FrameCount, req.Spec.MaxFrames)
	}
	if !strings.Contains(filepath.Base(sheet.Path), "6fps") {
		t.Fatalf("sheet name should carry the effective rate: %s", sheet.Path)
	}
	if len(enc.filters) != 1 || !strings.Contains(enc.filters[0], "select=not(mod(n\\,") {
		t.Fatalf("extraction filter should sample by stride: %v", enc.filters)
	}
}

func TestAssembleCleansFrameDumps(t *testing.T) {
	meta := ffprobe.Metadata{Path: "clip.mp4", Width: 640, Height: 640, FrameRate: 25, Duration: 1}
	req := sheetRequest(t, meta)
	enc := &frameDumpEncoder{frames: 25, size: 64}

	if _, err := New(enc, nil).Assemble(context.Background(), req); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	entries, err := os.ReadDir(req.WorkDir)
	if err != nil {
		t.Fatalf("read workdir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("workdir should be empty, found %d entries", len(entries))
	}
}

func TestAssembleSurfacesExtractionFailure(t *testing.T) {
	meta := ffprobe.Metadata{Path: "clip.mp4", Width: 640, Height: 640, FrameRate: 30, Duration: 2}
	req := sheetRequest(t, meta)

	_, err := New(&frameDumpEncoder{fail: true}, nil).Assemble(context.Background(), req)
	if !errors.Is(err, services.ErrEncodeInvocation) {
		t.Fatalf("expected encode invocation error, got %v", err)
	}
}

func TestAssembleRejectsInvalidMetadata(t *testing.T) {
	meta := ffprobe.Metadata{Path: "clip.mp4", Width: 640, Height: 640, FrameRate: 0, Duration: 2}
	req := sheetRequest(t, meta)

	_, err := New(&frameDumpEncoder{frames: 1, size: 64}, nil).Assemble(context.Background(), req)
	if !errors.Is(err, services.ErrMetadata) {
		t.Fatalf("expected metadata error, got %v", err)
	}
}
