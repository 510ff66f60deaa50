package synth

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/mrsinham/tomoslice/internal/util"
)

// TreeOptions controls Tree.
type TreeOptions struct {
	Root    string
	Studies int
	// Series per view; series k (from 0) holds Slices-k slices, at least 1.
	Series int
	Slices int
	Seed   int64
	// Decoys adds a multi-frame file and a non-DICOM file to each study.
	Decoys bool
	// Quirks is applied to every slice.
	Quirks []Quirk
	// Progress is called after each study is written.
	Progress func(done, total int)
}

// viewStyle describes how one view is encoded in the header. Each view uses
// a different tagging convention so every classifier path gets exercised.
type viewStyle struct {
	name            string
	laterality      string
	imageLaterality string
	position        string
	description     string
}

var viewStyles = []viewStyle{
	{name: "LCC", laterality: "L", position: "CC", description: "L CC Tomo"},
	{name: "RCC", imageLaterality: "R", position: "C-C", description: "R CC Tomo"},
	{name: "LMLO", laterality: "L", position: "M L O", description: "L MLO Tomo"},
	{name: "RMLO", description: "RLMO Tomosynthesis"},
}

// Tree writes a parent folder of synthetic studies and returns the study
// folder paths.
func Tree(opts TreeOptions) ([]string, error) {
	if opts.Studies <= 0 || opts.Series <= 0 || opts.Slices <= 0 {
		return nil, fmt.Errorf("studies, series and slices must be > 0")
	}
	if err := os.MkdirAll(opts.Root, 0755); err != nil {
		return nil, fmt.Errorf("create root: %w", err)
	}

	rng := rand.New(rand.NewPCG(uint64(opts.Seed), uint64(opts.Seed)))
	var studies []string

	for st := 0; st < opts.Studies; st++ {
		patientID := fmt.Sprintf("TOMO%06d", rng.IntN(1_000_000))
		dir := filepath.Join(opts.Root, fmt.Sprintf("Patient_%s_Study%03d", patientID, st+1))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create study folder: %w", err)
		}
		if err := writeStudy(dir, patientID, util.PatientName(rng), st, opts); err != nil {
			return nil, err
		}
		studies = append(studies, dir)
		if opts.Progress != nil {
			opts.Progress(st+1, opts.Studies)
		}
	}

	return studies, nil
}

func writeStudy(dir, patientID, patientName string, st int, opts TreeOptions) error {
	seed := fmt.Sprintf("%d/%d", opts.Seed, st)
	studyUID := util.DeterministicUID(seed + "/study")
	fileNum := 1

	next := func() string {
		p := filepath.Join(dir, fmt.Sprintf("IMG%05d.dcm", fileNum))
		fileNum++
		return p
	}

	for _, vs := range viewStyles {
		for se := 0; se < opts.Series; se++ {
			seriesUID := util.DeterministicUID(fmt.Sprintf("%s/%s/%d", seed, vs.name, se))
			count := max(1, opts.Slices-se)
			for in := 1; in <= count; in++ {
				s := Slice{
					PatientID:         patientID,
					PatientName:       patientName,
					StudyUID:          studyUID,
					SeriesUID:         seriesUID,
					SOPUID:            util.DeterministicUID(fmt.Sprintf("%s/%d", seriesUID, in)),
					Laterality:        vs.laterality,
					ImageLaterality:   vs.imageLaterality,
					ViewPosition:      vs.position,
					SeriesDescription: vs.description,
					InstanceNumber:    fmt.Sprintf("%d", in),
					ImagePosition:     []string{"0", "0", fmt.Sprintf("%.1f", float64(in))},
					Label:             fmt.Sprintf("%s %d/%d", vs.name, in, count),
					Quirks:            opts.Quirks,
				}
				if err := Write(next(), s); err != nil {
					return err
				}
			}
		}
	}

	if opts.Decoys {
		decoy := Slice{
			PatientID:      patientID,
			StudyUID:       studyUID,
			SeriesUID:      util.DeterministicUID(seed + "/multiframe"),
			SOPUID:         util.DeterministicUID(seed + "/multiframe/1"),
			Laterality:     "L",
			ViewPosition:   "CC",
			InstanceNumber: "1",
			NumberOfFrames: "3",
			Frames:         3,
		}
		if err := Write(next(), decoy); err != nil {
			return err
		}
		if err := WriteGarbage(filepath.Join(dir, "notes.txt"), 512); err != nil {
			return err
		}
	}

	return nil
}
