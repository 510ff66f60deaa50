// Package util holds the file placement, size and tag lookup helpers shared
// by the pipeline and the tally tools.
package util

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
)

// TagInfo names a tag the tools commonly count or sort by.
type TagInfo struct {
	Name string
	Tag  tag.Tag
}

// tagRegistry maps lowercase keywords to their TagInfo. It backs the
// "did you mean" suggestions; any other dictionary keyword is still accepted.
var tagRegistry = map[string]TagInfo{
	"laterality":           {Name: "Laterality", Tag: meta.Laterality},
	"imagelaterality":      {Name: "ImageLaterality", Tag: meta.ImageLaterality},
	"viewposition":         {Name: "ViewPosition", Tag: meta.ViewPosition},
	"seriesdescription":    {Name: "SeriesDescription", Tag: meta.SeriesDescription},
	"instancenumber":       {Name: "InstanceNumber", Tag: meta.InstanceNumber},
	"imagepositionpatient": {Name: "ImagePositionPatient", Tag: meta.ImagePositionPatient},
	"sopinstanceuid":       {Name: "SOPInstanceUID", Tag: meta.SOPInstanceUID},
	"numberofframes":       {Name: "NumberOfFrames", Tag: meta.NumberOfFrames},
	"seriesinstanceuid":    {Name: "SeriesInstanceUID", Tag: meta.SeriesInstanceUID},
	"studyinstanceuid":     {Name: "StudyInstanceUID", Tag: tag.StudyInstanceUID},
	"patientid":            {Name: "PatientID", Tag: tag.PatientID},
	"patientname":          {Name: "PatientName", Tag: tag.PatientName},
	"accessionnumber":      {Name: "AccessionNumber", Tag: tag.AccessionNumber},
	"modality":             {Name: "Modality", Tag: tag.Modality},
	"manufacturer":         {Name: "Manufacturer", Tag: tag.Manufacturer},
	"studydescription":     {Name: "StudyDescription", Tag: tag.StudyDescription},
	"bodypartexamined":     {Name: "BodyPartExamined", Tag: tag.BodyPartExamined},
}

// ParseTag resolves a tag given on the command line. Accepted forms are
// "0020,0060", "(0020,0060)", "00200060", a group and element as two
// arguments ("0x0020", "0x0060"), or a dictionary keyword ("Laterality").
func ParseTag(args ...string) (tag.Tag, error) {
	switch len(args) {
	case 1:
		s := strings.TrimSpace(args[0])
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
		if g, e, ok := strings.Cut(inner, ","); ok {
			return parseGroupElement(g, e)
		}
		if len(inner) == 8 && isHex(inner) {
			return parseGroupElement(inner[:4], inner[4:])
		}
		info, err := GetTagByName(s)
		if err != nil {
			return tag.Tag{}, err
		}
		return info.Tag, nil
	case 2:
		return parseGroupElement(args[0], args[1])
	default:
		return tag.Tag{}, fmt.Errorf("expected a tag keyword, 'gggg,eeee' or group and element, got %d arguments", len(args))
	}
}

func parseGroupElement(group, element string) (tag.Tag, error) {
	g, err := parseHex16(group)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("invalid tag group %q: %w", group, err)
	}
	e, err := parseHex16(element)
	if err != nil {
		return tag.Tag{}, fmt.Errorf("invalid tag element %q: %w", element, err)
	}
	return tag.Tag{Group: g, Element: e}, nil
}

func parseHex16(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

func isHex(s string) bool {
	_, err := strconv.ParseUint(s, 16, 32)
	return err == nil
}

// GetTagByName returns TagInfo for a keyword, ignoring case. Keywords outside
// the registry are looked up in the full DICOM dictionary. When nothing
// matches, the error suggests the closest registered keyword.
func GetTagByName(name string) (TagInfo, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if info, ok := tagRegistry[normalizedName]; ok {
		return info, nil
	}

	if normalizedName != "" {
		if info, err := tag.FindByName(strings.TrimSpace(name)); err == nil {
			return TagInfo{Name: strings.TrimSpace(name), Tag: info.Tag}, nil
		}
	}

	suggestion := findClosestTagName(normalizedName)
	if suggestion != "" {
		return TagInfo{}, fmt.Errorf("unknown tag %q, did you mean %q?", name, suggestion)
	}

	return TagInfo{}, fmt.Errorf("unknown tag %q", name)
}

// findClosestTagName returns the registered keyword nearest to input, or ""
// when none is within 5 edits.
func findClosestTagName(input string) string {
	const maxDistance = 5
	bestDistance := maxDistance + 1
	var bestMatch string

	for key, info := range tagRegistry {
		distance := levenshteinDistance(input, key)
		if distance < bestDistance || (distance == bestDistance && info.Name < bestMatch) {
			bestDistance = distance
			bestMatch = info.Name
		}
	}

	if bestDistance <= maxDistance {
		return bestMatch
	}
	return ""
}

func levenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
