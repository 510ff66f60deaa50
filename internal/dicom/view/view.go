// Package view derives mammography view labels (LCC, RCC, LMLO, RMLO) from
// DICOM header tags.
package view

import (
	"regexp"
	"strings"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
)

// View is a normalized view label. The empty View means no label.
type View string

const (
	LCC  View = "LCC"
	RCC  View = "RCC"
	LMLO View = "LMLO"
	RMLO View = "RMLO"

	// rlmo is a transposed spelling of RMLO seen in some series descriptions.
	rlmo View = "RLMO"
)

// Targets returns the views the pipeline collects, in reporting order.
func Targets() []View {
	return []View{LCC, RCC, LMLO, RMLO}
}

// IsTarget reports whether v is one of Targets.
func IsTarget(v View) bool {
	for _, t := range Targets() {
		if v == t {
			return true
		}
	}
	return false
}

// Canonical maps raw labels onto their canonical spelling.
func Canonical(v View) View {
	if v == rlmo {
		return RMLO
	}
	return v
}

var positionVariants = map[string]string{
	"M-L-O": "MLO",
	"M L O": "MLO",
	"C-C":   "CC",
	"C C":   "CC",
}

// NormalizePosition upper-cases a View Position value and folds its common
// spacing and punctuation variants.
func NormalizePosition(s string) string {
	v := strings.ToUpper(strings.TrimSpace(s))
	if canon, ok := positionVariants[v]; ok {
		return canon
	}
	return v
}

// Patterns are tried in this order; the first match wins.
var descriptionPatterns = []struct {
	view View
	re   *regexp.Regexp
}{
	{LCC, regexp.MustCompile(`\bL\s*CC\b|LCC\b|LCCID\b`)},
	{RCC, regexp.MustCompile(`\bR\s*CC\b|RCC\b|RCCID\b`)},
	{LMLO, regexp.MustCompile(`\bL\s*MLO\b|LMLO\b|LMLOID\b`)},
	{RMLO, regexp.MustCompile(`\bR\s*MLO\b|RMLO\b|RLMO\b|RMLOID\b`)},
}

// GuessFromDescription looks for a view label in free text such as a
// Series Description.
func GuessFromDescription(desc string) View {
	if desc == "" {
		return ""
	}
	s := strings.ToUpper(desc)
	for _, p := range descriptionPatterns {
		if p.re.MatchString(s) {
			return p.view
		}
	}
	return ""
}

// Classify returns the view label of one image header.
//
// In Presentation mode laterality (0020,0060 then 0020,0062) is combined with
// a CC or MLO view position; when either is missing the Series Description
// is searched instead. Processing mode returns the normalized view position
// without laterality and never consults the description.
func Classify(acc meta.Accessor, mode Mode) View {
	laterality := lateralityOf(acc)

	position := ""
	if s, ok := acc.String(meta.ViewPosition); ok {
		position = NormalizePosition(s)
	}

	switch mode {
	case Processing:
		return View(position)
	default:
		if laterality != "" && (position == "CC" || position == "MLO") {
			return View(laterality + position)
		}
	}

	desc, _ := acc.String(meta.SeriesDescription)
	return GuessFromDescription(desc)
}

func lateralityOf(acc meta.Accessor) string {
	s, ok := acc.String(meta.Laterality)
	if !ok || s == "" {
		s, _ = acc.String(meta.ImageLaterality)
	}
	s = strings.ToUpper(s)
	if s == "L" || s == "R" {
		return s
	}
	return ""
}
