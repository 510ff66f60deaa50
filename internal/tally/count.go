// Package tally counts and sorts DICOM files by folder and by tag value.
// It shares the header reader and placement helpers with the collection
// pipeline.
package tally

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
)

// TagNotFound is the value counted for files that lack the tag.
const TagNotFound = "Tag Not Found"

// FolderCount is a number of files in one folder.
type FolderCount struct {
	Folder string
	Count  int
}

// ValueCount is a number of files sharing one tag value.
type ValueCount struct {
	Value string
	Count int
}

// FrameCount splits the files of a folder by Number of Frames.
type FrameCount struct {
	Folder string
	Multi  int
	Single int
	// Unknown counts files whose Number of Frames does not parse.
	Unknown int
}

// CountFiles counts the readable DICOM files directly inside each immediate
// subfolder of parent, largest first.
func CountFiles(ctx context.Context, parent string) ([]FolderCount, error) {
	return countPerFolder(ctx, parent, func(*meta.Record) bool { return true })
}

// CountPresent counts, per immediate subfolder of parent, the files where t
// has a non-empty value, largest first.
func CountPresent(ctx context.Context, parent string, t tag.Tag) ([]FolderCount, error) {
	return countPerFolder(ctx, parent, func(r *meta.Record) bool {
		v, ok := r.String(t)
		return ok && v != ""
	})
}

func countPerFolder(ctx context.Context, parent string, match func(*meta.Record) bool) ([]FolderCount, error) {
	folders, err := subfolders(parent)
	if err != nil {
		return nil, err
	}

	out := make([]FolderCount, 0, len(folders))
	for _, name := range folders {
		fc := FolderCount{Folder: name}
		err := eachRecord(ctx, filepath.Join(parent, name), func(r *meta.Record) {
			if match(r) {
				fc.Count++
			}
		})
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}

	slices.SortStableFunc(out, func(a, b FolderCount) int { return cmp.Compare(b.Count, a.Count) })
	return out, nil
}

// CountValues walks root recursively and counts files per value of t. Files
// without the tag are counted under TagNotFound. The result is ordered by
// count, then value.
func CountValues(ctx context.Context, root string, t tag.Tag) ([]ValueCount, error) {
	counts := make(map[string]int)
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == root {
				return fmt.Errorf("walk %s: %w", root, err)
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		r, err := meta.Read(p)
		if err != nil {
			return nil
		}
		v, ok := r.String(t)
		if !ok {
			v = TagNotFound
		}
		counts[v]++
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b ValueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out, nil
}

// CountFrames classifies the files of each immediate subfolder of parent as
// multi-frame, single-frame, or unknown, in folder name order. A missing
// Number of Frames counts as single-frame.
func CountFrames(ctx context.Context, parent string) ([]FrameCount, error) {
	folders, err := subfolders(parent)
	if err != nil {
		return nil, err
	}

	out := make([]FrameCount, 0, len(folders))
	for _, name := range folders {
		fc := FrameCount{Folder: name}
		err := eachRecord(ctx, filepath.Join(parent, name), func(r *meta.Record) {
			s, ok := r.String(meta.NumberOfFrames)
			if !ok || s == "" {
				fc.Single++
				return
			}
			n, err := strconv.Atoi(s)
			switch {
			case err != nil:
				fc.Unknown++
			case n > 1:
				fc.Multi++
			default:
				fc.Single++
			}
		})
		if err != nil {
			return nil, err
		}
		out = append(out, fc)
	}
	return out, nil
}

// subfolders lists the immediate subdirectories of parent by name.
func subfolders(parent string) ([]string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	var names []string
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(parent, e.Name()))
		if err == nil && info.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// regularFiles lists the regular files directly inside dir, by name.
func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		p := filepath.Join(dir, e.Name())
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// eachRecord calls fn for every readable DICOM file directly inside dir.
// Unreadable files are skipped.
func eachRecord(ctx context.Context, dir string, fn func(*meta.Record)) error {
	files, err := regularFiles(dir)
	if err != nil {
		return err
	}
	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		r, err := meta.Read(p)
		if err != nil {
			continue
		}
		fn(r)
	}
	return nil
}
