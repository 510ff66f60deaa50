package main

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mrsinham/tomoslice/internal/report"
	"github.com/mrsinham/tomoslice/internal/tally"
)

func newSortCmd(a *app) *cobra.Command {
	var (
		nested bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "sort <dir> <tag>",
		Short: "Move DICOM files into folders named after a tag value",
		Long: `Moves the DICOM files directly inside <dir> to <dir>/sorted_by_tag/<value>/,
using Tag_Not_Found for files without the tag.

With --nested, the files of every subfolder of <dir> are moved to
<dir>/<value>/ instead, using Unknown for files without a value. The
per-folder counts are shown first.

Files are moved, not copied. Existing files are never overwritten and
unreadable files stay where they are.

` + tagHelp,
		Example: `  tomoslice sort /data/incoming ViewPosition
  tomoslice sort /data/studies 0020,0062 --nested --yes`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			t, err := parseTagArgs(args[1:])
			if err != nil {
				return err
			}
			p := report.New(cmd.OutOrStdout())

			if nested {
				counts, err := tally.CountPresent(cmd.Context(), dir, t)
				if err != nil {
					return err
				}
				p.FolderCounts("Count result by folder", counts)
			}

			if !yes {
				confirmed, err := confirm(fmt.Sprintf("Move files in %s into folders by %s value?", dir, t))
				if err != nil {
					return err
				}
				if !confirmed {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Sorting canceled")
					return nil
				}
			}

			res, err := tally.Sort(cmd.Context(), dir, t, tally.SortOptions{
				Nested: nested,
				OnMove: p.Move,
			})
			if err != nil {
				return fmt.Errorf("sort: %w", err)
			}
			a.logger.Debug("sort finished", "moved", len(res.Moves), "skipped", res.Skipped)
			p.SortDone(res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&nested, "nested", false, "Sort the files of every subfolder into <dir>/<value>/")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed (use --yes in scripts): %w", err)
	}
	return ok, nil
}
