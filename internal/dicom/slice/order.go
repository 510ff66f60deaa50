// Package slice orders the images of one series and picks its central slice.
package slice

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
)

// Tier ranks the source of an ordering key. Lower tiers always sort first.
type Tier int

const (
	// TierInstance keys come from Instance Number (0020,0013).
	TierInstance Tier = iota
	// TierPosition keys come from the z component of Image Position (Patient).
	TierPosition
	// TierUID keys come from SOP Instance UID.
	TierUID
)

func (t Tier) String() string {
	switch t {
	case TierInstance:
		return "A"
	case TierPosition:
		return "B"
	default:
		return "C"
	}
}

// Key is the sort key of one slice. Only the payload matching Tier is set.
type Key struct {
	Tier     Tier
	Instance int
	Z        float64
	UID      string
}

func (k Key) String() string {
	switch k.Tier {
	case TierInstance:
		return fmt.Sprintf("A:%d", k.Instance)
	case TierPosition:
		return fmt.Sprintf("B:%g", k.Z)
	default:
		return fmt.Sprintf("C:%s", k.UID)
	}
}

// Compare orders keys by tier, then by the tier's payload.
func Compare(a, b Key) int {
	if c := cmp.Compare(a.Tier, b.Tier); c != 0 {
		return c
	}
	switch a.Tier {
	case TierInstance:
		return cmp.Compare(a.Instance, b.Instance)
	case TierPosition:
		return cmp.Compare(a.Z, b.Z)
	default:
		return strings.Compare(a.UID, b.UID)
	}
}

// Less reports whether k sorts before o.
func (k Key) Less(o Key) bool { return Compare(k, o) < 0 }

var positionSep = regexp.MustCompile(`[\\, ]+`)

// KeyOf builds the ordering key of a header: Instance Number when it parses
// as an integer, else the third Image Position coordinate, else the SOP
// Instance UID (possibly empty).
func KeyOf(acc meta.Accessor) Key {
	if s, ok := acc.String(meta.InstanceNumber); ok && s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return Key{Tier: TierInstance, Instance: n}
		}
	}

	if z, ok := positionZ(acc); ok {
		return Key{Tier: TierPosition, Z: z}
	}

	uid, _ := acc.String(meta.SOPInstanceUID)
	return Key{Tier: TierUID, UID: uid}
}

func positionZ(acc meta.Accessor) (float64, bool) {
	vals, ok := acc.Values(meta.ImagePositionPatient)
	if !ok {
		return 0, false
	}
	parts := vals
	if len(parts) == 1 {
		parts = positionSep.Split(strings.TrimSpace(parts[0]), -1)
	}
	if len(parts) < 3 {
		return 0, false
	}
	z, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
	if err != nil {
		return 0, false
	}
	return z, true
}

// Center sorts a copy of items by key and returns the element at index
// len/2. For an even count that is the upper of the two middle elements.
func Center[T any](items []T, key func(T) Key) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		return Compare(key(a), key(b))
	})
	return sorted[len(sorted)/2], true
}
