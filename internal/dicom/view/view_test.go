package view

import (
	"testing"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
)

func TestClassify_Presentation(t *testing.T) {
	tests := []struct {
		name   string
		fields meta.Fields
		want   View
	}{
		{"laterality and CC", meta.Fields{meta.Laterality: {"L"}, meta.ViewPosition: {"CC"}}, LCC},
		{"lower case", meta.Fields{meta.Laterality: {"r"}, meta.ViewPosition: {"mlo"}}, RMLO},
		{"image laterality fallback", meta.Fields{meta.ImageLaterality: {"R"}, meta.ViewPosition: {"CC"}}, RCC},
		{"empty laterality uses image laterality", meta.Fields{meta.Laterality: {""}, meta.ImageLaterality: {"L"}, meta.ViewPosition: {"MLO"}}, LMLO},
		{"dashed MLO", meta.Fields{meta.Laterality: {"L"}, meta.ViewPosition: {"M-L-O"}}, LMLO},
		{"spaced CC", meta.Fields{meta.Laterality: {"R"}, meta.ViewPosition: {"C C"}}, RCC},
		{"structured tags win over description", meta.Fields{meta.Laterality: {"L"}, meta.ViewPosition: {"CC"}, meta.SeriesDescription: {"R MLO"}}, LCC},
		{"bilateral falls back to description", meta.Fields{meta.Laterality: {"B"}, meta.ViewPosition: {"CC"}, meta.SeriesDescription: {"RCC tomo"}}, RCC},
		{"unknown position falls back", meta.Fields{meta.Laterality: {"L"}, meta.ViewPosition: {"XCCL"}, meta.SeriesDescription: {"L MLO"}}, LMLO},
		{"description only", meta.Fields{meta.SeriesDescription: {"Tomo LCCID"}}, LCC},
		{"transposed RLMO", meta.Fields{meta.SeriesDescription: {"rlmo 3d"}}, RMLO},
		{"nothing", meta.Fields{}, ""},
		{"unrelated description", meta.Fields{meta.SeriesDescription: {"Scout"}}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.fields, Presentation); got != tc.want {
				t.Errorf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestClassify_Processing(t *testing.T) {
	tests := []struct {
		name   string
		fields meta.Fields
		want   View
	}{
		{"no laterality concatenation", meta.Fields{meta.Laterality: {"L"}, meta.ViewPosition: {"CC"}}, "CC"},
		{"variant normalized", meta.Fields{meta.ViewPosition: {"M L O"}}, "MLO"},
		{"position already labeled", meta.Fields{meta.ViewPosition: {"rmlo"}}, RMLO},
		{"no description fallback", meta.Fields{meta.SeriesDescription: {"L CC"}}, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Classify(tc.fields, Processing); got != tc.want {
				t.Errorf("Classify = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestGuessFromDescription(t *testing.T) {
	tests := []struct {
		desc string
		want View
	}{
		{"L CC", LCC},
		{"LCC", LCC},
		{"lccid", LCC},
		{"Tomo R  CC", RCC},
		{"RCCID", RCC},
		{"L MLO", LMLO},
		{"2D LMLO", LMLO},
		{"R MLO", RMLO},
		{"RLMO", RMLO},
		{"RMLOID", RMLO},
		{"LCC and RCC", LCC},
		{"RCC then LCC", LCC},
		{"XLCCY", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			if got := GuessFromDescription(tc.desc); got != tc.want {
				t.Errorf("GuessFromDescription(%q) = %q, want %q", tc.desc, got, tc.want)
			}
		})
	}
}

func TestCanonical(t *testing.T) {
	if got := Canonical("RLMO"); got != RMLO {
		t.Errorf("Canonical(RLMO) = %q, want RMLO", got)
	}
	for _, v := range Targets() {
		if got := Canonical(v); got != v {
			t.Errorf("Canonical(%q) = %q, want unchanged", v, got)
		}
	}
	if IsTarget("RLMO") || IsTarget("CC") || IsTarget("") {
		t.Error("only canonical labels are targets")
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"presentation", Presentation, false},
		{"PROCESSING", Processing, false},
		{"", Presentation, false},
		{"viewer", Presentation, true},
	}
	for _, tc := range tests {
		got, err := ParseMode(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseMode(%q) = (%v, %v), want (%v, err=%v)", tc.in, got, err, tc.want, tc.wantErr)
		}
	}
	if Processing.String() != "processing" || Presentation.String() != "presentation" {
		t.Error("Mode.String mismatch")
	}
}
