// Package report prints run results to the console.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mrsinham/tomoslice/internal/dicom/view"
	"github.com/mrsinham/tomoslice/internal/pipeline"
	"github.com/mrsinham/tomoslice/internal/tally"
)

// Printer writes styled text. Styles degrade to plain text when w is not a
// terminal.
type Printer struct {
	w io.Writer

	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	dim   lipgloss.Style
	done  lipgloss.Style
}

// New returns a Printer for w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("63")),
		label: r.NewStyle().Foreground(lipgloss.Color("244")),
		value: r.NewStyle().Foreground(lipgloss.Color("252")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("244")),
		done:  r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	}
}

func (p *Printer) field(label, value string) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.label.Render(label+":"), p.value.Render(value))
}

// CollectHeader prints the settings of a collection run.
func (p *Printer) CollectHeader(opts pipeline.Options) {
	targets := make([]string, 0, 4)
	for _, v := range view.Targets() {
		targets = append(targets, string(v))
	}
	recursive := "OFF"
	if opts.Recursive {
		recursive = "ON"
	}

	_, _ = fmt.Fprintln(p.w, p.title.Render("Center slice collection"))
	p.field("Parent folder", opts.Parent)
	p.field("Output root", filepath.Join(opts.Parent, opts.OutputName))
	p.field("Target views", strings.Join(targets, ", ")+" (RLMO normalized to RMLO)")
	p.field("Size limit", fmt.Sprintf("≤ %g MB", opts.MaxMiB))
	p.field("Recursive", recursive)
	p.field("Mode", opts.Mode.String())
	_, _ = fmt.Fprintln(p.w)
}

// StudyLine formats one study as "- <study> → <dest> : <views|None>".
func StudyLine(r pipeline.StudyResult) string {
	views := "None"
	if v := r.Views(); len(v) > 0 {
		views = strings.Join(v, ", ")
	}
	return fmt.Sprintf("- %s → %s : %s", r.Name, r.DestName, views)
}

// Collection prints one line per study and the grand total.
func (p *Printer) Collection(s *pipeline.Summary) {
	for _, r := range s.Studies {
		_, _ = fmt.Fprintln(p.w, StudyLine(r))
	}
	_, _ = fmt.Fprintln(p.w)
	_, _ = fmt.Fprintln(p.w, p.done.Render(fmt.Sprintf("✓ Done: total copied files = %d", s.Total)))
	p.field("Result location", s.OutputRoot)
	_, _ = fmt.Fprintln(p.w, p.dim.Render("(folder names keep their last characters, file names carry the view prefix)"))
}

// FolderCounts prints "<folder>: <n> DICOM files" per folder.
func (p *Printer) FolderCounts(title string, counts []tally.FolderCount) {
	_, _ = fmt.Fprintln(p.w, p.title.Render(title))
	for _, c := range counts {
		_, _ = fmt.Fprintf(p.w, "%s: %d DICOM files\n", c.Folder, c.Count)
	}
}

// ValueCounts prints the histogram of a tag.
func (p *Printer) ValueCounts(counts []tally.ValueCount) {
	for _, c := range counts {
		_, _ = fmt.Fprintf(p.w, "Tag Value: %s, File Count: %d\n", c.Value, c.Count)
	}
}

// FrameCounts prints a fixed-width table of frame counts.
func (p *Printer) FrameCounts(counts []tally.FrameCount) {
	_, _ = fmt.Fprintln(p.w, p.title.Render(fmt.Sprintf("%-30s %12s %12s %10s", "Folder", "Multi-slice", "Single-slice", "Unknown")))
	_, _ = fmt.Fprintln(p.w, strings.Repeat("-", 70))
	for _, c := range counts {
		_, _ = fmt.Fprintf(p.w, "%-30s %12d %12d %10d\n", c.Folder, c.Multi, c.Single, c.Unknown)
	}
}

// Move prints one moved file as "<name> → <value>/".
func (p *Printer) Move(m tally.Move) {
	_, _ = fmt.Fprintf(p.w, "%s → %s/\n", filepath.Base(m.Source), filepath.Base(filepath.Dir(m.Dest)))
}

// SortDone prints the outcome of a sort.
func (p *Printer) SortDone(r *tally.SortResult) {
	_, _ = fmt.Fprintln(p.w, p.done.Render(fmt.Sprintf("✓ Sorting completed: %d files moved", len(r.Moves))))
	if r.Skipped > 0 {
		_, _ = fmt.Fprintln(p.w, p.dim.Render(fmt.Sprintf("%d unreadable files left in place", r.Skipped)))
	}
}
