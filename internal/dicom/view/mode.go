package view

import (
	"fmt"
	"strings"
)

// Mode selects the labeling convention used by Classify.
type Mode int

const (
	// Presentation combines laterality with view position and falls back to
	// the series description.
	Presentation Mode = iota
	// Processing returns the normalized view position as-is.
	Processing
)

// String returns the lower-case name of the mode.
func (m Mode) String() string {
	switch m {
	case Processing:
		return "processing"
	default:
		return "presentation"
	}
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "presentation":
		return Presentation, nil
	case "processing":
		return Processing, nil
	default:
		return Presentation, fmt.Errorf("invalid mode: %s (valid: presentation, processing)", s)
	}
}
