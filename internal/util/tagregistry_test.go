package util

import (
	"strings"
	"testing"

	"github.com/suyashkumar/dicom/pkg/tag"
)

func TestParseTag_Forms(t *testing.T) {
	laterality := tag.Tag{Group: 0x0020, Element: 0x0060}

	tests := []struct {
		name string
		args []string
		want tag.Tag
	}{
		{"comma", []string{"0020,0060"}, laterality},
		{"parenthesized", []string{"(0020,0060)"}, laterality},
		{"packed", []string{"00200060"}, laterality},
		{"two args hex prefix", []string{"0x0020", "0x0060"}, laterality},
		{"two args bare", []string{"0020", "0060"}, laterality},
		{"upper hex", []string{"0008,103E"}, tag.Tag{Group: 0x0008, Element: 0x103E}},
		{"keyword", []string{"Laterality"}, laterality},
		{"keyword lower", []string{"viewposition"}, tag.Tag{Group: 0x0018, Element: 0x5101}},
		{"dictionary keyword", []string{"PatientBirthDate"}, tag.PatientBirthDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseTag(tc.args...)
			if err != nil {
				t.Fatalf("ParseTag(%q) returned error: %v", tc.args, err)
			}
			if got != tc.want {
				t.Errorf("ParseTag(%q) = %v, want %v", tc.args, got, tc.want)
			}
		})
	}
}

func TestParseTag_Invalid(t *testing.T) {
	tests := [][]string{
		{},
		{"0020,zzzz"},
		{"10000,0060"},
		{"0x0020", "nope"},
		{"a", "b", "c"},
		{"NotATagAtAll"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			if _, err := ParseTag(args...); err == nil {
				t.Errorf("ParseTag(%q) should fail", args)
			}
		})
	}
}

func TestGetTagByName_Suggestion(t *testing.T) {
	tests := []struct {
		typo       string
		suggestion string
	}{
		{"Lateralty", "Laterality"},
		{"ViewPositon", "ViewPosition"},
		{"SeriesDescripton", "SeriesDescription"},
		{"NumberOfFrame", "NumberOfFrames"},
	}

	for _, tc := range tests {
		t.Run(tc.typo, func(t *testing.T) {
			_, err := GetTagByName(tc.typo)
			if err == nil {
				t.Fatalf("GetTagByName(%q) should return error", tc.typo)
			}
			if !strings.Contains(err.Error(), tc.suggestion) {
				t.Errorf("Error for %q should suggest %q, got: %v", tc.typo, tc.suggestion, err)
			}
		})
	}
}

func TestGetTagByName_CaseInsensitive(t *testing.T) {
	for _, input := range []string{"seriesinstanceuid", "SERIESINSTANCEUID", "SeriesInstanceUID"} {
		info, err := GetTagByName(input)
		if err != nil {
			t.Fatalf("GetTagByName(%q) returned error: %v", input, err)
		}
		if info.Name != "SeriesInstanceUID" {
			t.Errorf("GetTagByName(%q).Name = %q, want SeriesInstanceUID", input, info.Name)
		}
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1},
		{"kitten", "sitting", 3},
		{"laterality", "lateralty", 1},
	}

	for _, tc := range tests {
		t.Run(tc.a+"_"+tc.b, func(t *testing.T) {
			if got := levenshteinDistance(tc.a, tc.b); got != tc.expected {
				t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.expected)
			}
		})
	}
}
