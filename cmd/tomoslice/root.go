package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app holds the state shared by all subcommands.
type app struct {
	verbose bool
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "tomoslice",
		Short: "Collect representative center slices from breast tomosynthesis studies",
		Long: `tomoslice organizes folders of DICOM studies by their header metadata.

Its main command, collect, picks for each study and each view (LCC, RCC,
LMLO, RMLO) the series with the most slices and copies its center slice
into a separate output tree. Companion commands count files by folder or
tag value and sort files into folders named after a tag value.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			level := slog.LevelInfo
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(a.logger)
		},
	}

	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log every skipped file and copy")

	cmd.AddCommand(newCollectCmd(a))
	cmd.AddCommand(newCountCmd(a))
	cmd.AddCommand(newSortCmd(a))
	cmd.AddCommand(newSynthCmd(a))

	return cmd
}
