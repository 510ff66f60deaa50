package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrsinham/tomoslice/internal/dicom/synth"
)

func newSynthCmd(a *app) *cobra.Command {
	opts := synth.TreeOptions{}
	var quirks string

	cmd := &cobra.Command{
		Use:   "synth <out>",
		Short: "Write a synthetic tree of tomosynthesis studies",
		Long: `Writes <out>/Patient_<id>_StudyNNN folders holding the four views, each as
--series series of decreasing size starting at --slices slices. Each view
uses a different header convention. With --decoys every study also gets a
multi-frame file and a non-DICOM file that collect must skip.

--quirks damages every slice the way real scanners and transfers do:
vendor-private, odd-pixel-length, truncated, unknown-charset,
no-group-length, or all.`,
		Example: `  tomoslice synth ./sample --studies 5 --slices 15 --seed 42
  tomoslice collect ./sample`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := synth.ParseQuirks(quirks)
			if err != nil {
				return err
			}
			opts.Root = args[0]
			opts.Quirks = q
			opts.Progress = func(done, total int) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  Progress: %d/%d studies\n", done, total)
			}

			studies, err := synth.Tree(opts)
			if err != nil {
				return fmt.Errorf("synth: %w", err)
			}
			a.logger.Debug("synthetic tree written", "root", opts.Root, "studies", len(studies), "seed", opts.Seed)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\n✓ %d studies created in: %s/\n", len(studies), opts.Root)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Studies, "studies", 3, "Number of study folders")
	cmd.Flags().IntVar(&opts.Series, "series", 2, "Series per view")
	cmd.Flags().IntVar(&opts.Slices, "slices", 9, "Slices in the largest series")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "Seed for reproducible names and UIDs")
	cmd.Flags().BoolVar(&opts.Decoys, "decoys", true, "Add a multi-frame and a non-DICOM file per study")
	cmd.Flags().StringVar(&quirks, "quirks", "", "Comma-separated file quirks (vendor-private, odd-pixel-length, truncated, unknown-charset, no-group-length, all)")

	return cmd
}
