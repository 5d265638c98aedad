package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"gifsmith/internal/optimize"
)

// progressReporter renders optimization progress. Interactive terminals get
// an attempt-count progress bar per platform; everything else gets plain
// lines so logs stay readable.
type progressReporter struct {
	out         io.Writer
	interactive bool
	bar         *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer) *progressReporter {
	interactive := false
	if f, ok := out.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &progressReporter{out: out, interactive: interactive}
}

func (r *progressReporter) AttemptStarted(platformID string, attempt, maxAttempts int, params optimize.Parameters) {
	label := fmt.Sprintf("%s %dx%d %dfps %dc", platformID, params.Width, params.Height, params.FPS, params.Colors)
	if !r.interactive {
		fmt.Fprintf(r.out, "%s: attempt %d/%d (%s)\n", platformID, attempt, maxAttempts, label)
		return
	}
	if r.bar == nil {
		r.bar = progressbar.NewOptions(maxAttempts,
			progressbar.OptionSetWriter(r.out),
			progressbar.OptionSetDescription(label),
			progressbar.OptionSetPredictTime(false),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	r.bar.Describe(label)
}

func (r *progressReporter) PassCompleted(platformID string, attempt int, pass string) {
	if !r.interactive {
		fmt.Fprintf(r.out, "%s: attempt %d %s pass done\n", platformID, attempt, pass)
	}
}

func (r *progressReporter) Verdict(platformID string, attempt int, outputBytes int64, pass bool) {
	if r.interactive && r.bar != nil {
		_ = r.bar.Add(1)
		if pass {
			_ = r.bar.Finish()
			r.bar = nil
		}
	}
	verdict := "over budget"
	if pass {
		verdict = "within budget"
	}
	if !r.interactive {
		fmt.Fprintf(r.out, "%s: attempt %d produced %s (%s)\n",
			platformID, attempt, humanize.IBytes(uint64(outputBytes)), verdict)
	} else if pass {
		fmt.Fprintf(r.out, "%s: %s after %d attempt(s)\n",
			platformID, humanize.IBytes(uint64(outputBytes)), attempt)
	}
}

// PlatformDone closes out an abandoned bar when a platform fails without a
// passing verdict.
func (r *progressReporter) PlatformDone() {
	if r.bar != nil {
		_ = r.bar.Close()
		r.bar = nil
	}
}
