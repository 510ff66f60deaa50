package meta

import (
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"
)

// Fields is an in-memory Accessor keyed by tag.
type Fields map[tag.Tag][]string

// String implements Accessor.
func (f Fields) String(t tag.Tag) (string, bool) {
	vals, ok := f[t]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(strings.Join(vals, `\`)), true
}

// Values implements Accessor.
func (f Fields) Values(t tag.Tag) ([]string, bool) {
	vals, ok := f[t]
	return vals, ok
}
