package synth

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
)

func TestWrite_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slice.dcm")
	s := Slice{
		PatientID:         "P1",
		SeriesUID:         "1.2.3",
		SOPUID:            "1.2.3.4",
		Laterality:        "L",
		ViewPosition:      "CC",
		SeriesDescription: "L CC Tomo",
		InstanceNumber:    "7",
		ImagePosition:     []string{"1", "2", "3.5"},
		NumberOfFrames:    "1",
	}
	if err := Write(path, s); err != nil {
		t.Fatalf("Write: %v", err)
	}

	rec, err := meta.Read(path)
	if err != nil {
		t.Fatalf("meta.Read: %v", err)
	}

	checks := map[string]struct {
		got  func() (string, bool)
		want string
	}{
		"laterality": {func() (string, bool) { return rec.String(meta.Laterality) }, "L"},
		"view":       {func() (string, bool) { return rec.String(meta.ViewPosition) }, "CC"},
		"series":     {func() (string, bool) { return rec.String(meta.SeriesInstanceUID) }, "1.2.3"},
		"sop":        {func() (string, bool) { return rec.String(meta.SOPInstanceUID) }, "1.2.3.4"},
		"instance":   {func() (string, bool) { return rec.String(meta.InstanceNumber) }, "7"},
		"position":   {func() (string, bool) { return rec.String(meta.ImagePositionPatient) }, `1\2\3.5`},
		"frames":     {func() (string, bool) { return rec.String(meta.NumberOfFrames) }, "1"},
	}
	for name, c := range checks {
		got, ok := c.got()
		if !ok || got != c.want {
			t.Errorf("%s = (%q, %v), want %q", name, got, ok, c.want)
		}
	}

	if _, ok := rec.String(meta.ImageLaterality); ok {
		t.Error("ImageLaterality was not set and should be absent")
	}
}

func TestWrite_MultiFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mf.dcm")
	if err := Write(path, Slice{SOPUID: "1.9", NumberOfFrames: "5", Frames: 5, Size: 16}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rec, err := meta.Read(path)
	if err != nil {
		t.Fatalf("meta.Read: %v", err)
	}
	if got, _ := rec.String(meta.NumberOfFrames); got != "5" {
		t.Errorf("NumberOfFrames = %q, want 5", got)
	}
}

func TestTree(t *testing.T) {
	root := t.TempDir()
	var calls int
	studies, err := Tree(TreeOptions{
		Root: root, Studies: 2, Series: 2, Slices: 3, Seed: 7, Decoys: true,
		Progress: func(done, total int) { calls++ },
	})
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(studies) != 2 || calls != 2 {
		t.Fatalf("got %d studies and %d progress calls, want 2 and 2", len(studies), calls)
	}

	entries, err := os.ReadDir(studies[0])
	if err != nil {
		t.Fatal(err)
	}
	// 4 views x (3 + 2 slices) + multi-frame decoy + garbage file
	if want := 4*5 + 2; len(entries) != want {
		t.Errorf("study holds %d files, want %d", len(entries), want)
	}

	again := filepath.Join(t.TempDir(), "again")
	second, err := Tree(TreeOptions{Root: again, Studies: 2, Series: 2, Slices: 3, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(second[1]) != filepath.Base(studies[1]) {
		t.Errorf("same seed should give same folder names: %s vs %s", second[1], studies[1])
	}
}

func TestTree_InvalidOptions(t *testing.T) {
	if _, err := Tree(TreeOptions{Root: t.TempDir(), Studies: 0, Series: 1, Slices: 1}); err == nil {
		t.Error("Tree should reject zero studies")
	}
}
