package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gifsmith/internal/media/ffprobe"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <video>",
		Short: "Show video metadata as seen by the export pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			prober := ffprobe.NewCLI(ffprobe.WithBinary(cfg.Encoder.FFprobeBinary))
			meta, err := prober.Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Path", meta.Path},
				{"Dimensions", fmt.Sprintf("%dx%d", meta.Width, meta.Height)},
				{"Frame rate", strconv.Itoa(meta.FrameRate) + " fps"},
				{"Duration", fmt.Sprintf("%.2fs", meta.Duration)},
				{"Total frames", strconv.Itoa(meta.TotalFrames())},
				{"Size", humanize.IBytes(uint64(meta.SizeBytes))},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Field", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
