// Package pipeline runs the center-slice collection over a parent folder of
// study folders.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrsinham/tomoslice/internal/collect"
	"github.com/mrsinham/tomoslice/internal/dicom/view"
	"github.com/mrsinham/tomoslice/internal/util"
)

const (
	DefaultOutputName = "_collected_center_slices_≤100MB"
	DefaultMaxMiB     = 100
	DefaultTailLength = 10
)

var (
	ErrParentNotFound = errors.New("pipeline: parent folder not found")
	ErrInvalidOptions = errors.New("pipeline: invalid options")
)

// Options configures Run. It is passed by value and never mutated by Run.
type Options struct {
	Parent     string
	OutputName string
	MaxMiB     float64
	Recursive  bool
	Mode       view.Mode
	// Workers is the number of studies processed at once (0 = one per CPU).
	Workers int
	// TailLength is how many trailing characters of a study folder name are
	// kept for its output folder.
	TailLength int

	Logger *slog.Logger
	// Progress is called after each study completes. It may be called from
	// several goroutines but never concurrently.
	Progress func(done, total int)
}

// DefaultOptions returns the defaults for parent.
func DefaultOptions(parent string) Options {
	return Options{
		Parent:     parent,
		OutputName: DefaultOutputName,
		MaxMiB:     DefaultMaxMiB,
		Mode:       view.Presentation,
		Workers:    1,
		TailLength: DefaultTailLength,
	}
}

// Validate checks the options without touching the output tree.
func (o Options) Validate() error {
	if o.Parent == "" {
		return fmt.Errorf("%w: parent folder is required", ErrInvalidOptions)
	}
	if o.MaxMiB <= 0 {
		return fmt.Errorf("%w: max size must be > 0 MiB, got %g", ErrInvalidOptions, o.MaxMiB)
	}
	if o.Workers < 0 {
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidOptions, o.Workers)
	}
	if o.TailLength <= 0 {
		return fmt.Errorf("%w: tail length must be > 0, got %d", ErrInvalidOptions, o.TailLength)
	}
	if o.Mode != view.Presentation && o.Mode != view.Processing {
		return fmt.Errorf("%w: unknown mode %d", ErrInvalidOptions, o.Mode)
	}
	name := o.OutputName
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name {
		return fmt.Errorf("%w: output name %q must be a plain folder name", ErrInvalidOptions, name)
	}

	info, err := os.Stat(o.Parent)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrParentNotFound, o.Parent)
	}
	return nil
}

// CopyResult is one copied center slice.
type CopyResult struct {
	View      view.View
	SeriesUID string
	Source    string
	Dest      string
	// Count is the number of slices in the chosen series.
	Count int
}

// StudyResult is the outcome for one study folder.
type StudyResult struct {
	Name     string
	DestName string
	DestDir  string
	Copied   []CopyResult
	Stats    collect.Stats
}

// Views returns the copied view labels sorted by name.
func (r StudyResult) Views() []string {
	out := make([]string, 0, len(r.Copied))
	for _, c := range r.Copied {
		out = append(out, string(c.View))
	}
	slices.Sort(out)
	return out
}

// Summary is the result of a run, with studies in sorted folder order.
type Summary struct {
	Parent     string
	OutputRoot string
	Studies    []StudyResult
	Total      int
}

// Run collects the center slice of every target view for each study folder
// under opts.Parent. Per-file read problems are skipped; any failure to
// create or write the output stops the run.
func Run(ctx context.Context, opts Options) (*Summary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	outRoot := filepath.Join(opts.Parent, opts.OutputName)
	if err := os.MkdirAll(outRoot, 0755); err != nil {
		return nil, fmt.Errorf("create output root: %w", err)
	}

	studies, err := listStudies(opts.Parent, opts.OutputName)
	if err != nil {
		return nil, err
	}
	logger.Info("collecting center slices",
		"parent", opts.Parent, "studies", len(studies), "output", outRoot,
		"recursive", opts.Recursive, "mode", opts.Mode.String())

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Destinations are reserved in sorted order so that colliding tails get
	// the same _k suffixes whatever the worker count.
	dests := make([]string, len(studies))
	for i, name := range studies {
		dest, err := util.UniqueDir(outRoot, util.SafeTailName(name, opts.TailLength))
		if err != nil {
			return nil, fmt.Errorf("study %s: create destination: %w", name, err)
		}
		dests[i] = dest
	}

	results := make([]StudyResult, len(studies))
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range studies {
		g.Go(func() error {
			res, err := runStudy(gctx, opts, logger, outRoot, name, dests[i])
			if err != nil {
				return fmt.Errorf("study %s: %w", name, err)
			}
			results[i] = res
			if opts.Progress != nil {
				mu.Lock()
				done++
				opts.Progress(done, len(studies))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Parent: opts.Parent, OutputRoot: outRoot, Studies: results}
	for _, r := range results {
		summary.Total += len(r.Copied)
	}
	logger.Info("collection finished", "studies", len(results), "copied", summary.Total)
	return summary, nil
}

// listStudies returns the immediate subfolders of parent, sorted, without
// the output root.
func listStudies(parent, outputName string) ([]string, error) {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	var names []string
	for _, e := range entries {
		if e.Name() == outputName {
			continue
		}
		info, err := os.Stat(filepath.Join(parent, e.Name()))
		if err != nil || !info.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func runStudy(ctx context.Context, opts Options, logger *slog.Logger, outRoot, name, dest string) (StudyResult, error) {
	src := filepath.Join(opts.Parent, name)
	res := StudyResult{Name: name, DestName: filepath.Base(dest), DestDir: dest}

	buckets, stats, err := collect.Scan(ctx, src, collect.Options{
		MaxBytes:  int64(opts.MaxMiB * util.MiB),
		Recursive: opts.Recursive,
		Exclude:   outRoot,
		Mode:      opts.Mode,
		Logger:    logger.With("study", name),
	})
	res.Stats = stats
	if err != nil {
		if ctx.Err() != nil {
			return res, err
		}
		// An unlistable study is treated like an empty one.
		logger.Warn("cannot scan study", "study", name, "error", err)
		return res, nil
	}

	for _, choice := range buckets.Select() {
		out, err := util.CopyUnique(choice.Center.Path, dest, string(choice.View))
		if err != nil {
			return res, fmt.Errorf("copy %s: %w", choice.View, err)
		}
		logger.Debug("copied center slice",
			"study", name, "view", choice.View, "series", choice.SeriesUID,
			"slices", choice.Count, "source", choice.Center.Path, "dest", out)
		res.Copied = append(res.Copied, CopyResult{
			View:      choice.View,
			SeriesUID: choice.SeriesUID,
			Source:    choice.Center.Path,
			Dest:      out,
			Count:     choice.Count,
		})
	}
	return res, nil
}
