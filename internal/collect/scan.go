package collect

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
	"github.com/mrsinham/tomoslice/internal/dicom/slice"
	"github.com/mrsinham/tomoslice/internal/dicom/view"
)

// DefaultMaxBytes is the default per-file size cap (100 MiB).
const DefaultMaxBytes = 100 * 1024 * 1024

// Options controls Scan.
type Options struct {
	// MaxBytes skips files larger than this. Zero means DefaultMaxBytes.
	MaxBytes int64
	// Recursive walks the whole subtree instead of direct children only.
	Recursive bool
	// Exclude is a directory pruned from the walk (the output root).
	Exclude string
	Mode    view.Mode
	Logger  *slog.Logger
}

// Stats counts what happened to each file seen by Scan.
type Stats struct {
	Seen         int
	Accepted     int
	TooLarge     int
	Unreadable   int
	Unclassified int
	MultiFrame   int
	NoSeries     int
}

// Skipped returns the number of files that did not make it into a bucket.
func (s Stats) Skipped() int { return s.Seen - s.Accepted }

// Scan classifies the files of dir and buckets the eligible ones. Files that
// are too large, unreadable, not one of the target views, multi-frame, or
// missing a series UID are skipped. Only a failure to list dir itself is
// returned as an error.
func Scan(ctx context.Context, dir string, opts Options) (*Buckets, Stats, error) {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &scanner{opts: opts, log: logger, buckets: NewBuckets()}

	var err error
	if opts.Recursive {
		err = s.walk(ctx, dir)
	} else {
		err = s.shallow(ctx, dir)
	}
	if err != nil {
		return nil, s.stats, err
	}
	return s.buckets, s.stats, nil
}

type scanner struct {
	opts    Options
	log     *slog.Logger
	buckets *Buckets
	stats   Stats
}

func (s *scanner) shallow(ctx context.Context, dir string) error {
	if s.excluded(dir) {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("list %s: %w", dir, err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		p := filepath.Join(dir, e.Name())
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		s.consider(p, info.Size())
	}
	return nil
}

func (s *scanner) walk(ctx context.Context, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return fmt.Errorf("walk %s: %w", dir, err)
			}
			s.log.Debug("skipping unreadable path", "path", p, "error", err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if s.excluded(p) {
				return filepath.SkipDir
			}
			return nil
		}
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			return nil
		}
		s.consider(p, info.Size())
		return nil
	})
}

// excluded reports whether p is the excluded directory or inside it.
func (s *scanner) excluded(p string) bool {
	if s.opts.Exclude == "" {
		return false
	}
	ex, err1 := filepath.Abs(s.opts.Exclude)
	abs, err2 := filepath.Abs(p)
	if err1 != nil || err2 != nil {
		return false
	}
	rel, err := filepath.Rel(ex, abs)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (s *scanner) consider(path string, size int64) {
	s.stats.Seen++

	if size > s.opts.MaxBytes {
		s.stats.TooLarge++
		s.log.Debug("skipping large file", "path", path, "bytes", size)
		return
	}

	rec, err := meta.Read(path)
	if err != nil {
		s.stats.Unreadable++
		s.log.Debug("skipping unreadable file", "path", path, "error", err)
		return
	}

	img, reason := classify(rec, s.opts.Mode)
	if reason != "" {
		switch reason {
		case reasonView:
			s.stats.Unclassified++
		case reasonFrames:
			s.stats.MultiFrame++
		case reasonSeries:
			s.stats.NoSeries++
		}
		s.log.Debug("skipping file", "path", path, "reason", reason)
		return
	}

	img.Path = path
	img.Size = size
	s.buckets.Add(img)
	s.stats.Accepted++
}

const (
	reasonView   = "not a target view"
	reasonFrames = "multi-frame"
	reasonSeries = "no series UID"
)

// classify turns a header into an Image, or returns why it is not eligible.
func classify(acc meta.Accessor, mode view.Mode) (Image, string) {
	v := view.Canonical(view.Classify(acc, mode))
	if !view.IsTarget(v) {
		return Image{}, reasonView
	}

	frames := FrameCount(acc)
	if frames > 1 {
		return Image{}, reasonFrames
	}

	uid, _ := acc.String(meta.SeriesInstanceUID)
	if uid == "" {
		return Image{}, reasonSeries
	}

	return Image{View: v, SeriesUID: uid, Key: slice.KeyOf(acc), Frames: frames}, ""
}

// FrameCount returns Number of Frames, or 1 when it is absent or does not
// parse as an integer.
func FrameCount(acc meta.Accessor) int {
	s, ok := acc.String(meta.NumberOfFrames)
	if !ok || s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return n
}
