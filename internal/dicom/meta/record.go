// Package meta reads DICOM header metadata and exposes permissive,
// never-failing tag lookups.
package meta

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ErrUnreadable is returned by Read for files that do not parse as DICOM.
var ErrUnreadable = errors.New("meta: unreadable DICOM file")

// Accessor is the read side of a parsed header.
type Accessor interface {
	// String returns the trimmed string form of t, or false when t is absent
	// or its value cannot be rendered as text.
	String(t tag.Tag) (string, bool)
	// Values returns every value of a multi-valued element.
	Values(t tag.Tag) ([]string, bool)
}

// Record is the header of one file.
type Record struct {
	Path string
	ds   dicom.Dataset
}

// parseOptions accept the non-conforming headers scanners commonly emit:
// vendor character sets, a meta group without (0002,0000), and pixel data
// whose length disagrees with its attributes.
var parseOptions = []dicom.ParseOption{
	dicom.SkipPixelData(),
	dicom.AllowUnknownSpecificCharacterSet(),
	dicom.AllowMissingMetaElementGroupLength(),
	dicom.AllowMismatchPixelDataLength(),
}

// Read parses the header of path without touching pixel data. It keeps every
// element decoded before the first parse error, so files with a damaged tail
// still yield their leading tags.
func Read(path string) (*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	p, err := dicom.NewParser(f, info.Size(), nil, parseOptions...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	var elements []*dicom.Element
	for {
		elem, err := p.Next()
		if err != nil {
			break
		}
		elements = append(elements, elem)
	}

	metaElems := p.GetMetadata().Elements
	if len(elements) == 0 && len(metaElems) == 0 {
		return nil, fmt.Errorf("%w: %s: no elements parsed", ErrUnreadable, path)
	}

	ds := dicom.Dataset{Elements: append(metaElems, elements...)}
	return &Record{Path: path, ds: ds}, nil
}

// FromDataset wraps an already parsed dataset.
func FromDataset(ds dicom.Dataset) *Record {
	return &Record{ds: ds}
}

// Values implements Accessor.
func (r *Record) Values(t tag.Tag) ([]string, bool) {
	elem, err := r.ds.FindElementByTag(t)
	if err != nil || elem == nil || elem.Value == nil {
		return nil, false
	}
	return valueStrings(elem.Value)
}

// String implements Accessor. Multiple values are joined with a backslash,
// which is how they appear on the wire.
func (r *Record) String(t tag.Tag) (string, bool) {
	vals, ok := r.Values(t)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(strings.Join(vals, `\`)), true
}

func valueStrings(v dicom.Value) (out []string, ok bool) {
	// Value accessors panic on unexpected underlying types.
	defer func() {
		if recover() != nil {
			out, ok = nil, false
		}
	}()

	switch v.ValueType() {
	case dicom.Strings:
		raw, _ := v.GetValue().([]string)
		out = make([]string, 0, len(raw))
		for _, s := range raw {
			out = append(out, cleanText(s))
		}
		return out, true
	case dicom.Bytes:
		raw, _ := v.GetValue().([]byte)
		return []string{cleanText(string(raw))}, true
	case dicom.Ints:
		raw, _ := v.GetValue().([]int)
		out = make([]string, 0, len(raw))
		for _, n := range raw {
			out = append(out, strconv.Itoa(n))
		}
		return out, true
	case dicom.Floats:
		raw, _ := v.GetValue().([]float64)
		out = make([]string, 0, len(raw))
		for _, f := range raw {
			out = append(out, strconv.FormatFloat(f, 'g', -1, 64))
		}
		return out, true
	default:
		return nil, false
	}
}

// cleanText drops invalid UTF-8 and the NUL/space padding DICOM uses for even
// value lengths.
func cleanText(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.TrimSpace(strings.Trim(s, "\x00"))
}
