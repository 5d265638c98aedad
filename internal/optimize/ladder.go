package optimize

import (
	"math"

	"gifsmith/internal/platform"
)

// Degrade applies the first ladder step whose precondition still holds and
// returns the reduced parameters. The boolean is false when every floor has
// been reached and no further reduction is possible; the input is returned
// unchanged in that case.
//
// Step order: frame rate down to the floor, then color count, then
// dimensions shrunk by the ladder's scale factor and clamped to the
// minimum box. One step per call, so
// successive calls walk the ladder in sequence.
func Degrade(p Parameters, ladder platform.Ladder) (Parameters, bool) {
	if p.FPS > ladder.FPSFloor {
		p.FPS -= ladder.FPSStep
		if p.FPS < ladder.FPSFloor {
			p.FPS = ladder.FPSFloor
		}
		return p, true
	}

	if p.Colors > ladder.ColorFloor {
		p.Colors -= ladder.ColorStep
		if p.Colors < ladder.ColorFloor {
			p.Colors = ladder.ColorFloor
		}
		if p.Colors < 2 {
			p.Colors = 2
		}
		return p, true
	}

	width := evenDim(int(math.Round(float64(p.Width) * ladder.ScaleFactor)))
	height := evenDim(int(math.Round(float64(p.Height) * ladder.ScaleFactor)))
	if width < ladder.MinWidth {
		width = ladder.MinWidth
	}
	if height < ladder.MinHeight {
		height = ladder.MinHeight
	}
	if width < p.Width || height < p.Height {
		p.Width, p.Height = width, height
		return p, true
	}

	return p, false
}

func evenDim(v int) int {
	if v%2 != 0 {
		v--
	}
	if v < 2 {
		v = 2
	}
	return v
}
