package util

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MiB is one mebibyte.
const MiB = 1024 * 1024

var sizePattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(B|KB|MB|GB)?$`)

// ParseSize parses a size such as "100MB" or "1.5GB" into bytes. Units are
// binary and case-insensitive; a bare number is read as mebibytes, matching
// the --mb flag.
func ParseSize(sizeStr string) (int64, error) {
	matches := sizePattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(sizeStr)))
	if matches == nil {
		return 0, fmt.Errorf("invalid size %q: use a form like '100', '100MB' or '1.5GB'", sizeStr)
	}

	value, err := strconv.ParseFloat(matches[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid numeric value: %v", err)
	}

	multipliers := map[string]int64{
		"":   MiB,
		"B":  1,
		"KB": 1024,
		"MB": MiB,
		"GB": 1024 * MiB,
	}

	return int64(value * float64(multipliers[matches[2]])), nil
}
