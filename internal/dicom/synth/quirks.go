package synth

import (
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Quirk is a kind of vendor or transfer damage seen in real scanner output.
type Quirk string

const (
	// VendorPrivate adds private creator blocks, a private binary label with
	// invalid UTF-8 and a private sequence, as mammography vendors do.
	VendorPrivate Quirk = "vendor-private"
	// OddPixelLength patches the Pixel Data length to an odd value, as in
	// "Length of element (7fe0,0010) is not a multiple of 2".
	OddPixelLength Quirk = "odd-pixel-length"
	// Truncated cuts the file in the middle of the pixel data.
	Truncated Quirk = "truncated"
	// UnknownCharset declares a Specific Character Set outside the standard
	// list, like the "ISO_IR 149" Korean units write.
	UnknownCharset Quirk = "unknown-charset"
	// NoGroupLength drops (0002,0000) from the file meta header.
	NoGroupLength Quirk = "no-group-length"
)

// nonStandardCharset is a Specific Character Set value the parser does not
// know.
const nonStandardCharset = "ISO_IR 149"

// AllQuirks returns every quirk.
func AllQuirks() []Quirk {
	return []Quirk{VendorPrivate, OddPixelLength, Truncated, UnknownCharset, NoGroupLength}
}

// ParseQuirks parses comma-separated quirk names. "all" enables every quirk.
func ParseQuirks(input string) ([]Quirk, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}

	valid := make(map[Quirk]bool)
	for _, q := range AllQuirks() {
		valid[q] = true
	}

	var result []Quirk
	seen := make(map[Quirk]bool)
	for _, p := range strings.Split(input, ",") {
		p = strings.TrimSpace(p)
		if p == "all" {
			return AllQuirks(), nil
		}
		q := Quirk(p)
		if !valid[q] {
			return nil, fmt.Errorf("unknown quirk %q, valid quirks: %v (or 'all')", p, AllQuirks())
		}
		if !seen[q] {
			result = append(result, q)
			seen[q] = true
		}
	}
	return result, nil
}

func hasQuirk(quirks []Quirk, q Quirk) bool {
	for _, have := range quirks {
		if have == q {
			return true
		}
	}
	return false
}

// newPrivateElement creates an element with an explicit VR, which
// dicom.NewElement cannot do for tags outside the dictionary.
func newPrivateElement(t tag.Tag, rawVR string, data any) *dicom.Element {
	value, err := dicom.NewValue(data)
	if err != nil {
		panic(fmt.Sprintf("failed to create value for private element %v: %v", t, err))
	}
	return &dicom.Element{
		Tag:                    t,
		ValueRepresentation:    tag.GetVRKind(t, rawVR),
		RawValueRepresentation: rawVR,
		Value:                  value,
	}
}

// vendorPrivateElements returns private blocks in the style of Hologic and
// GE mammography units.
func vendorPrivateElements(rng *rand.Rand, label string) []*dicom.Element {
	version := fmt.Sprintf("AWS:MAMMODROC3_%d_%d", rng.IntN(5)+1, rng.IntN(10))

	// Binary label: printable text followed by bytes that are not UTF-8.
	raw := append([]byte(label), 0xFF, 0xFE, 0x00)
	if len(raw)%2 != 0 {
		raw = append(raw, 0x00)
	}

	item := []*dicom.Element{
		newPrivateElement(tag.Tag{Group: 0x0019, Element: 0x0011}, "LO", []string{"HOLOGIC, Inc."}),
		newPrivateElement(tag.Tag{Group: 0x0019, Element: 0x1100}, "DS", []string{fmt.Sprintf("%.4f", rng.Float64()*50)}),
	}

	return []*dicom.Element{
		newPrivateElement(tag.Tag{Group: 0x0009, Element: 0x0010}, "LO", []string{"GEMS_IDEN_01"}),
		newPrivateElement(tag.Tag{Group: 0x0009, Element: 0x10E3}, "LO", []string{version}),
		newPrivateElement(tag.Tag{Group: 0x0019, Element: 0x0010}, "LO", []string{"HOLOGIC, Inc."}),
		newPrivateElement(tag.Tag{Group: 0x0019, Element: 0x1006}, "OB", raw),
		newPrivateElement(tag.Tag{Group: 0x0019, Element: 0x100E}, "SQ", [][]*dicom.Element{item}),
	}
}

// applyFileQuirks post-processes a written file.
func applyFileQuirks(path string, quirks []Quirk) error {
	if !hasQuirk(quirks, OddPixelLength) && !hasQuirk(quirks, Truncated) && !hasQuirk(quirks, NoGroupLength) {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s for patching: %w", path, err)
	}

	if hasQuirk(quirks, OddPixelLength) {
		patchPixelDataOddLength(data)
	}
	if hasQuirk(quirks, NoGroupLength) {
		data = stripMetaGroupLength(data)
	}
	if hasQuirk(quirks, Truncated) {
		if i := pixelDataOffset(data); i >= 0 {
			end := i + 12 + (len(data)-i-12)/2
			data = data[:end]
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write patched %s: %w", path, err)
	}
	return nil
}

// pixelDataOffset returns the offset of the Pixel Data element header in an
// explicit VR little endian file, or -1.
func pixelDataOffset(data []byte) int {
	for i := 0; i <= len(data)-12; i++ {
		if data[i] == 0xE0 && data[i+1] == 0x7F && data[i+2] == 0x10 && data[i+3] == 0x00 {
			vr := string(data[i+4 : i+6])
			if vr == "OW" || vr == "OB" {
				return i
			}
		}
	}
	return -1
}

// patchPixelDataOddLength shortens the Pixel Data value length by one byte.
func patchPixelDataOddLength(data []byte) bool {
	i := pixelDataOffset(data)
	if i < 0 {
		return false
	}
	vl := binary.LittleEndian.Uint32(data[i+8 : i+12])
	if vl <= 1 || vl%2 != 0 {
		return false
	}
	binary.LittleEndian.PutUint32(data[i+8:i+12], vl-1)
	return true
}

// metaGroupLengthOffset is where (0002,0000) starts: after the 128 byte
// preamble and "DICM".
const metaGroupLengthOffset = 132

// stripMetaGroupLength removes the 12 byte (0002,0000) UL element that
// opens the file meta header. Data without it is returned unchanged.
func stripMetaGroupLength(data []byte) []byte {
	const n = 12
	if len(data) < metaGroupLengthOffset+n {
		return data
	}
	h := data[metaGroupLengthOffset:]
	if h[0] != 0x02 || h[1] != 0x00 || h[2] != 0x00 || h[3] != 0x00 || string(h[4:6]) != "UL" {
		return data
	}
	return append(data[:metaGroupLengthOffset:metaGroupLengthOffset], data[metaGroupLengthOffset+n:]...)
}
