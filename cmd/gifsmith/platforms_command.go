package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"gifsmith/internal/platform"
)

func newPlatformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "platforms",
		Short:       "List supported export platforms and their budgets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			titler := cases.Title(language.English)
			rows := make([][]string, 0)
			for _, spec := range platform.Registry() {
				maxFrames := "-"
				if spec.MaxFrames > 0 {
					maxFrames = strconv.Itoa(spec.MaxFrames)
				}
				rows = append(rows, []string{
					spec.ID,
					titler.String(spec.DisplayName),
					string(spec.Container),
					fmt.Sprintf("%dx%d", spec.Width, spec.Height),
					humanize.IBytes(uint64(spec.MaxBytes)),
					maxFrames,
					yesNo(spec.AllowWide),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Container", "Target", "Budget", "Max Frames", "Wide"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}
