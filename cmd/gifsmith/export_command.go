package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"gifsmith/internal/config"
	"gifsmith/internal/export"
	"gifsmith/internal/filterchain"
	"gifsmith/internal/history"
	"gifsmith/internal/logging"
	"gifsmith/internal/media/ffprobe"
	"gifsmith/internal/notifications"
	"gifsmith/internal/optimize"
	"gifsmith/internal/palette"
	"gifsmith/internal/platform"
	"gifsmith/internal/services/ffmpeg"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var (
		platformsFlag []string
		outputDir     string
		preset        string
		dither        string
		trimStart     float64
		trimEnd       float64
		cropFlag      string
		chromaKey     bool
		keyColor      string
		keySimilarity float64
		keyBlend      float64
		noHistory     bool
	)

	cmd := &cobra.Command{
		Use:   "export <video>",
		Short: "Export a video for one or more platforms",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			platforms := resolvePlatforms(platformsFlag, cfg.Export.Platforms)
			if outputDir == "" {
				outputDir = cfg.Paths.OutputDir
			}
			if preset == "" {
				preset = cfg.Encoder.Preset
			}
			if dither == "" {
				dither = cfg.Encoder.DitherMode
			}

			trim, err := parseTrim(trimStart, trimEnd)
			if err != nil {
				return err
			}
			crop, err := parseCrop(cropFlag)
			if err != nil {
				return err
			}
			key, err := resolveChromaKey(cmd, cfg, chromaKey, keyColor, keySimilarity, keyBlend)
			if err != nil {
				return err
			}

			prober := ffprobe.NewCLI(ffprobe.WithBinary(cfg.Encoder.FFprobeBinary))
			meta, err := prober.Probe(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			reporter := newProgressReporter(cmd.OutOrStdout())
			notifier := notifications.NewService(cfg)
			orch := export.New(
				ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.Encoder.FFmpegBinary)),
				cfg.Paths.TempDir,
				logger,
				reporter,
			)

			results, err := orch.Run(cmd.Context(), export.Request{
				Meta:      meta,
				Platforms: platforms,
				OutputDir: outputDir,
				Preset:    optimize.Preset(preset),
				Dither:    palette.Dither{Mode: dither, BayerScale: cfg.Encoder.BayerScale},
				ChromaKey: key,
				Crop:      crop,
				Trim:      trim,
			})
			reporter.PlatformDone()
			if err != nil {
				_ = notifier.NotifyExportFailed(cmd.Context(), meta.Path, err)
				return err
			}

			succeeded, failed := tally(results)
			if !noHistory {
				if recordErr := recordHistory(cmd, cfg.Paths.HistoryDB, meta.Path, preset, results); recordErr != nil {
					logger.Warn("history not recorded", logging.Error(recordErr))
				}
			}
			_ = notifier.NotifyExportCompleted(cmd.Context(), meta.Path, succeeded, failed)

			fmt.Fprintln(cmd.OutOrStdout(), renderResultsTable(results))
			if succeeded == 0 {
				return fmt.Errorf("all %d platform exports failed", len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&platformsFlag, "platform", "p", nil, "Platform identifiers to export (default: configured platforms, or every platform)")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for exported artifacts")
	cmd.Flags().StringVar(&preset, "preset", "", "Quality preset: high, balanced, or compact")
	cmd.Flags().StringVar(&dither, "dither", "", "Dithering mode for palette application")
	cmd.Flags().Float64Var(&trimStart, "trim-start", 0, "Trim window start in seconds")
	cmd.Flags().Float64Var(&trimEnd, "trim-end", 0, "Trim window end in seconds")
	cmd.Flags().StringVar(&cropFlag, "crop", "", "Crop region as x:y:width:height in source pixels")
	cmd.Flags().BoolVar(&chromaKey, "chroma-key", false, "Remove the configured background color")
	cmd.Flags().StringVar(&keyColor, "key-color", "", "Chroma key color as #RRGGBB")
	cmd.Flags().Float64Var(&keySimilarity, "key-similarity", 0, "Chroma key similarity in [0,1]")
	cmd.Flags().Float64Var(&keyBlend, "key-blend", 0, "Chroma key blend in [0,1]")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Skip recording this run in the history database")

	return cmd
}

// resolvePlatforms picks the export targets: flags win over the configured
// list, and an empty configuration enables every registered platform.
func resolvePlatforms(fromFlags, configured []string) []string {
	if len(fromFlags) > 0 {
		return fromFlags
	}
	if len(configured) > 0 {
		return configured
	}
	return platform.IDs()
}

func parseTrim(start, end float64) (*filterchain.Window, error) {
	if start == 0 && end == 0 {
		return nil, nil
	}
	if end <= start || start < 0 {
		return nil, fmt.Errorf("trim window %v..%v is empty", start, end)
	}
	return &filterchain.Window{Start: start, End: end}, nil
}

func parseCrop(value string) (*filterchain.Region, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parts := strings.Split(value, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("crop %q is not x:y:width:height", value)
	}
	numbers := make([]int, 4)
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("crop %q is not x:y:width:height: %w", value, err)
		}
		numbers[i] = n
	}
	return &filterchain.Region{X: numbers[0], Y: numbers[1], Width: numbers[2], Height: numbers[3]}, nil
}

func resolveChromaKey(cmd *cobra.Command, cfg *config.Config, enabledFlag bool, color string, similarity, blend float64) (*filterchain.ChromaKey, error) {
	chromaCfg := cfg.ChromaKey
	enabled := chromaCfg.Enabled
	if cmd.Flags().Changed("chroma-key") {
		enabled = enabledFlag
	}
	if !enabled {
		return nil, nil
	}

	if color == "" {
		color = chromaCfg.Color
	}
	rgb, err := filterchain.ParseHexColor(color)
	if err != nil {
		return nil, err
	}
	if !cmd.Flags().Changed("key-similarity") {
		similarity = chromaCfg.Similarity
	}
	if !cmd.Flags().Changed("key-blend") {
		blend = chromaCfg.Blend
	}
	return &filterchain.ChromaKey{Color: rgb, Similarity: similarity, Blend: blend}, nil
}

func tally(results []export.Result) (succeeded, failed int) {
	for _, result := range results {
		if result.Success {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}

func recordHistory(cmd *cobra.Command, dbPath, sourcePath, preset string, results []export.Result) error {
	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	rows := make([]history.Result, 0, len(results))
	for _, result := range results {
		rows = append(rows, history.Result{
			Platform:   result.Platform,
			OutputPath: result.OutputPath,
			Bytes:      result.Bytes,
			Attempts:   result.Attempts,
			Success:    result.Success,
			Message:    result.Message(),
		})
	}
	_, err = store.RecordRun(cmd.Context(), history.Run{SourcePath: sourcePath, Preset: preset}, rows)
	return err
}

func renderResultsTable(results []export.Result) string {
	rows := make([][]string, 0, len(results))
	for _, result := range results {
		size := ""
		if result.Success {
			size = humanize.IBytes(uint64(result.Bytes))
		}
		detail := result.OutputPath
		if !result.Success {
			detail = result.Message()
		}
		rows = append(rows, []string{
			result.Platform,
			yesNo(result.Success),
			strconv.Itoa(result.Attempts),
			size,
			detail,
		})
	}
	return renderTable(
		[]string{"Platform", "OK", "Attempts", "Size", "Output"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	)
}
