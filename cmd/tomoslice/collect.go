package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrsinham/tomoslice/internal/config"
	"github.com/mrsinham/tomoslice/internal/pipeline"
	"github.com/mrsinham/tomoslice/internal/report"
)

func newCollectCmd(a *app) *cobra.Command {
	var (
		mb         float64
		deep       bool
		out        string
		mode       string
		workers    int
		configPath string
		saveConfig string
	)

	cmd := &cobra.Command{
		Use:   "collect <parent>",
		Short: "Copy the center slice of each view for every study folder",
		Long: `For every immediate subfolder of <parent> (one study per folder), collect
classifies each DICOM file as LCC, RCC, LMLO or RMLO, keeps single-frame
images under the size limit, picks the series with the most slices per view
and copies its center slice to <parent>/<out>/<study tail>/<VIEW>_<file>.

Settings are read from built-in defaults, then --config, then TOMOSLICE_*
environment variables (a .env file is honored), then flags.`,
		Example: `  # Default run: shallow scan, 100 MB limit
  tomoslice collect /data/tomo

  # Recursive scan with four studies at a time
  tomoslice collect /data/tomo --deep --workers 4

  # Processing-mode labels, saved for later runs
  tomoslice collect /data/tomo --mode processing --save-config tomoslice.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.LoadFromYAML(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("mb") {
				cfg.Collect.MaxSize = strconv.FormatFloat(mb, 'f', -1, 64)
			}
			if flags.Changed("deep") {
				cfg.Collect.Recursive = deep
			}
			if flags.Changed("out") {
				cfg.Collect.OutputName = out
			}
			if flags.Changed("mode") {
				cfg.Collect.Mode = mode
			}
			if flags.Changed("workers") {
				cfg.Collect.Workers = workers
			}

			opts, err := cfg.ToOptions(args[0])
			if err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}

			if saveConfig != "" {
				if err := config.SaveToYAML(cfg, saveConfig); err != nil {
					return err
				}
				a.logger.Info("configuration saved", "path", saveConfig)
			}

			opts.Logger = a.logger
			opts.Progress = func(done, total int) {
				a.logger.Debug("study finished", "done", done, "total", total)
			}

			p := report.New(cmd.OutOrStdout())
			p.CollectHeader(opts)

			summary, err := pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("collect: %w", err)
			}
			p.Collection(summary)
			return nil
		},
	}

	d := pipeline.DefaultOptions("")
	cmd.Flags().Float64Var(&mb, "mb", d.MaxMiB, "Skip files larger than this many MB")
	cmd.Flags().BoolVar(&deep, "deep", false, "Scan study folders recursively")
	cmd.Flags().StringVar(&out, "out", d.OutputName, "Output root folder name, created inside <parent>")
	cmd.Flags().StringVar(&mode, "mode", d.Mode.String(), "View labeling mode: presentation or processing")
	cmd.Flags().IntVar(&workers, "workers", d.Workers, "Studies processed in parallel (0 = CPU cores)")
	cmd.Flags().StringVar(&configPath, "config", "", "Load settings from a YAML file")
	cmd.Flags().StringVar(&saveConfig, "save-config", "", "Save the effective settings to a YAML file")

	return cmd
}
