package frameplan

import (
	"fmt"
	"math"

	"gifsmith/internal/services"
)

// Mode selects how the temporal stage is expressed in the filter chain.
type Mode int

const (
	// ConstantRate resamples to a fixed output frame rate.
	ConstantRate Mode = iota
	// SampleStride keeps every Nth frame and rescales timestamps. Used when
	// an exact output frame count matters more than a smooth rate.
	SampleStride
)

// Resample is the planner's temporal resampling instruction.
type Resample struct {
	Mode Mode
	// FPS is the effective output rate. Set for both modes.
	FPS int
	// Stride is the keep-every-Nth modulus. Set only for SampleStride.
	Stride int
}

// Plan decides the constant-rate resample for a source of the given duration
// and frame rate, honoring an optional maximum output frame count. The
// emitted rate never exceeds targetFPS, and when the budget binds it drops to
// floor(maxFrames / duration) so the output stays within budget.
func Plan(duration float64, sourceFPS, targetFPS, maxFrames int) (Resample, error) {
	if duration <= 0 || sourceFPS <= 0 {
		return Resample{}, services.Wrap(services.ErrMetadata, "frameplan", "plan",
			fmt.Sprintf("source is not a finite video stream (duration=%.3f fps=%d)", duration, sourceFPS), nil)
	}
	if targetFPS <= 0 {
		targetFPS = sourceFPS
	}
	if targetFPS > sourceFPS {
		targetFPS = sourceFPS
	}

	totalSourceFrames := int(math.Floor(duration * float64(sourceFPS)))
	if maxFrames <= 0 || totalSourceFrames <= maxFrames {
		return Resample{Mode: ConstantRate, FPS: targetFPS}, nil
	}

	effectiveFPS := int(math.Floor(float64(maxFrames) / duration))
	if effectiveFPS < 1 {
		effectiveFPS = 1
	}
	if effectiveFPS < targetFPS {
		targetFPS = effectiveFPS
	}
	return Resample{Mode: ConstantRate, FPS: targetFPS}, nil
}

// PlanStride decides a frame-selection stride for consumers that extract
// discrete frames rather than re-time a stream. The returned frame count is
// min(totalSourceFrames, maxFrames); the stride is chosen so at least that
// many frames survive selection, and callers discard any surplus. The
// Resample carries the effective playback rate of the kept frames.
func PlanStride(duration float64, sourceFPS, maxFrames int) (Resample, int, error) {
	if duration <= 0 || sourceFPS <= 0 {
		return Resample{}, 0, services.Wrap(services.ErrMetadata, "frameplan", "plan stride",
			fmt.Sprintf("source is not a finite video stream (duration=%.3f fps=%d)", duration, sourceFPS), nil)
	}
	if maxFrames <= 0 {
		return Resample{}, 0, services.Wrap(services.ErrValidation, "frameplan", "plan stride", "frame budget must be positive", nil)
	}

	totalSourceFrames := int(math.Floor(duration * float64(sourceFPS)))
	if totalSourceFrames < 1 {
		totalSourceFrames = 1
	}
	if totalSourceFrames <= maxFrames {
		return Resample{Mode: SampleStride, FPS: sourceFPS, Stride: 1}, totalSourceFrames, nil
	}

	stride := totalSourceFrames / maxFrames
	if stride < 1 {
		stride = 1
	}
	fps := int(math.Round(float64(maxFrames) / duration))
	if fps < 1 {
		fps = 1
	}
	return Resample{Mode: SampleStride, FPS: fps, Stride: stride}, maxFrames, nil
}
