package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/tomoslice/internal/report"
	"github.com/mrsinham/tomoslice/internal/tally"
	"github.com/mrsinham/tomoslice/internal/util"
)

const tagHelp = `<tag> is "gggg,eeee", "(gggg,eeee)", two hex numbers ("0018 5101") or a
keyword such as ViewPosition.`

func newCountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count DICOM files per folder or per tag value",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "folders <parent>",
		Short: "Count readable DICOM files in each subfolder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := tally.CountFiles(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report.New(cmd.OutOrStdout()).FolderCounts("DICOM files by folder", counts)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tag <root> <tag>",
		Short: "Count files per value of a tag, recursively",
		Long:  "Walks <root> recursively and counts readable DICOM files per value of <tag>.\n\n" + tagHelp,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTagArgs(args[1:])
			if err != nil {
				return err
			}
			counts, err := tally.CountValues(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			report.New(cmd.OutOrStdout()).ValueCounts(counts)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "present <parent> <tag>",
		Short: "Count files with a non-empty tag value in each subfolder",
		Long:  "Counts, per immediate subfolder of <parent>, the DICOM files where <tag> has a value.\n\n" + tagHelp,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTagArgs(args[1:])
			if err != nil {
				return err
			}
			counts, err := tally.CountPresent(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			report.New(cmd.OutOrStdout()).FolderCounts(fmt.Sprintf("Files with %s by folder", t), counts)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "frames <parent>",
		Short: "Count multi-frame and single-frame files in each subfolder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := tally.CountFrames(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			report.New(cmd.OutOrStdout()).FrameCounts(counts)
			return nil
		},
	})

	return cmd
}

func parseTagArgs(args []string) (tag.Tag, error) {
	t, err := util.ParseTag(args...)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("invalid tag: %w", err)
	}
	return t, nil
}
