package tally

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
	"github.com/mrsinham/tomoslice/internal/util"
)

const (
	// SortedDirName is the folder created by a flat sort.
	SortedDirName = "sorted_by_tag"
	// FlatMissing names the folder for files without the tag in a flat sort.
	FlatMissing = "Tag_Not_Found"
	// NestedMissing names the folder for files without a value in a nested
	// sort.
	NestedMissing = "Unknown"
)

// SortOptions controls Sort.
type SortOptions struct {
	// Nested sorts the files of every immediate subfolder of dir into
	// dir/<value>/. Otherwise the files directly in dir go to
	// dir/sorted_by_tag/<value>/.
	Nested bool
	// OnMove is called after each file is moved.
	OnMove func(Move)
}

// Move records one relocated file.
type Move struct {
	Source string
	Dest   string
	Value  string
}

// SortResult summarizes a Sort.
type SortResult struct {
	Moves []Move
	// Skipped counts files that could not be read as DICOM and were left in
	// place.
	Skipped int
}

// Sort moves DICOM files into folders named after their value of t. Folder
// names are sanitized and existing files are never overwritten. Unreadable
// files stay where they are.
func Sort(ctx context.Context, dir string, t tag.Tag, opts SortOptions) (*SortResult, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("folder not found: %s", dir)
	}

	res := &SortResult{}
	if !opts.Nested {
		err := sortFolder(ctx, dir, filepath.Join(dir, SortedDirName), t, FlatMissing, opts, res)
		return res, err
	}

	// The folder list is taken before any value folder is created.
	folders, err := subfolders(dir)
	if err != nil {
		return nil, err
	}
	for _, name := range folders {
		if err := sortFolder(ctx, filepath.Join(dir, name), dir, t, NestedMissing, opts, res); err != nil {
			return res, err
		}
	}
	return res, nil
}

func sortFolder(ctx context.Context, src, destRoot string, t tag.Tag, missing string, opts SortOptions, res *SortResult) error {
	files, err := regularFiles(src)
	if err != nil {
		return err
	}

	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := meta.Read(p)
		if err != nil {
			res.Skipped++
			continue
		}

		value, ok := r.String(t)
		if !ok || (value == "" && missing == NestedMissing) {
			value = missing
		}
		target := filepath.Join(destRoot, util.SanitizeName(value))
		if filepath.Clean(filepath.Dir(p)) == filepath.Clean(target) {
			continue
		}
		if err := os.MkdirAll(target, 0755); err != nil {
			return fmt.Errorf("create %s: %w", target, err)
		}
		dest, err := util.MoveUnique(p, target)
		if err != nil {
			return fmt.Errorf("move %s: %w", p, err)
		}

		m := Move{Source: p, Dest: dest, Value: value}
		res.Moves = append(res.Moves, m)
		if opts.OnMove != nil {
			opts.OnMove(m)
		}
	}
	return nil
}
