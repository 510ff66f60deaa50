// Package synth writes small synthetic breast tomosynthesis DICOM files and
// study trees. They carry real Part 10 headers so the pipeline and the tally
// tools can be exercised without patient data.
package synth

import (
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/frame"
	"github.com/suyashkumar/dicom/pkg/tag"

	"github.com/mrsinham/tomoslice/internal/dicom/meta"
	"github.com/mrsinham/tomoslice/internal/util"
)

const (
	explicitVRLittleEndian = "1.2.840.10008.1.2.1"
	// Breast Tomosynthesis Image Storage.
	tomoSOPClassUID = "1.2.840.10008.5.1.4.1.1.13.1.3"

	defaultSize = 64
)

// Slice describes one synthetic file. Empty string fields are left out of
// the header entirely, so absent-tag paths can be produced on purpose.
type Slice struct {
	PatientID   string
	PatientName string
	StudyUID    string
	SeriesUID   string
	SOPUID      string

	Laterality        string
	ImageLaterality   string
	ViewPosition      string
	SeriesDescription string

	// InstanceNumber is written verbatim so malformed values can be tested.
	InstanceNumber string
	// ImagePosition is written as one value per entry.
	ImagePosition []string
	// NumberOfFrames is written when non-empty; Frames controls how many
	// frames of pixel data are stored (at least one).
	NumberOfFrames string
	Frames         int

	// Label is burned into the pixels; it defaults to the view position.
	Label string
	// Size is the frame edge in pixels (default 64).
	Size int
	// NoPixels omits Pixel Data.
	NoPixels bool
	// Quirks damages the file the way some scanners and transfers do.
	Quirks []Quirk
}

// Write encodes s as a Part 10 file at path.
func Write(path string, s Slice) error {
	elements := []*dicom.Element{
		mustNewElement(tag.TransferSyntaxUID, []string{explicitVRLittleEndian}),
		mustNewElement(tag.MediaStorageSOPClassUID, []string{tomoSOPClassUID}),
	}
	if hasQuirk(s.Quirks, UnknownCharset) {
		elements = append(elements, mustNewElement(tag.SpecificCharacterSet, []string{nonStandardCharset}))
	}
	elements = append(elements,
		mustNewElement(tag.SOPClassUID, []string{tomoSOPClassUID}),
		mustNewElement(tag.Modality, []string{"MG"}),
	)
	// The file meta group always carries an instance UID; the dataset only
	// when one was asked for.
	mediaUID := s.SOPUID
	if mediaUID == "" {
		mediaUID = util.UIDRoot + "0"
	}
	elements = append(elements, mustNewElement(tag.MediaStorageSOPInstanceUID, []string{mediaUID}))
	if s.SOPUID != "" {
		elements = append(elements, mustNewElement(meta.SOPInstanceUID, []string{s.SOPUID}))
	}

	optional := []struct {
		t tag.Tag
		v string
	}{
		{tag.PatientID, s.PatientID},
		{tag.PatientName, s.PatientName},
		{tag.StudyInstanceUID, s.StudyUID},
		{meta.SeriesInstanceUID, s.SeriesUID},
		{meta.SeriesDescription, s.SeriesDescription},
		{meta.ViewPosition, s.ViewPosition},
		{meta.Laterality, s.Laterality},
		{meta.ImageLaterality, s.ImageLaterality},
		{meta.InstanceNumber, s.InstanceNumber},
		{meta.NumberOfFrames, s.NumberOfFrames},
	}
	for _, o := range optional {
		if o.v != "" {
			elements = append(elements, mustNewElement(o.t, []string{o.v}))
		}
	}
	if len(s.ImagePosition) > 0 {
		elements = append(elements, mustNewElement(meta.ImagePositionPatient, s.ImagePosition))
	}

	if hasQuirk(s.Quirks, VendorPrivate) {
		seed, _ := strconv.ParseUint(s.InstanceNumber, 10, 64)
		rng := rand.New(rand.NewPCG(seed, 0x4d47))
		elements = append(elements, vendorPrivateElements(rng, s.Laterality+s.ImageLaterality+s.ViewPosition)...)
	}
	if !s.NoPixels {
		elements = append(elements, pixelElements(s)...)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ds := dicom.Dataset{Elements: elements}
	if err := dicom.Write(f, ds, dicom.SkipVRVerification(), dicom.SkipValueTypeVerification()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return applyFileQuirks(path, s.Quirks)
}

// pixelElements builds the image pixel module: a soft radial gradient with
// a little noise and the label burned in.
func pixelElements(s Slice) []*dicom.Element {
	size := s.Size
	if size <= 0 {
		size = defaultSize
	}
	n := max(1, s.Frames)
	label := s.Label
	if label == "" {
		label = s.Laterality + s.ImageLaterality + s.ViewPosition
	}

	seed, _ := strconv.ParseUint(s.InstanceNumber, 10, 64)
	rng := rand.New(rand.NewPCG(seed, uint64(size)))

	frames := make([]*frame.Frame, 0, n)
	for i := 0; i < n; i++ {
		nativeFrame := frame.NewNativeFrame[uint16](16, size, size, size*size, 1)
		c := float64(size) / 2
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				dx, dy := float64(x)-c, float64(y)-c
				v := 2048 - (dx*dx+dy*dy)*1200/(c*c) + float64(rng.IntN(200))
				nativeFrame.RawData[y*size+x] = uint16(min(4095, max(0, v)))
			}
		}
		burnLabel(nativeFrame, size, size, label)
		frames = append(frames, &frame.Frame{Encapsulated: false, NativeData: nativeFrame})
	}

	return []*dicom.Element{
		mustNewElement(tag.Rows, []int{size}),
		mustNewElement(tag.Columns, []int{size}),
		mustNewElement(tag.BitsAllocated, []int{16}),
		mustNewElement(tag.BitsStored, []int{12}),
		mustNewElement(tag.HighBit, []int{11}),
		mustNewElement(tag.PixelRepresentation, []int{0}),
		mustNewElement(tag.SamplesPerPixel, []int{1}),
		mustNewElement(tag.PhotometricInterpretation, []string{"MONOCHROME2"}),
		mustNewElement(tag.PixelData, dicom.PixelDataInfo{Frames: frames}),
	}
}

// WriteGarbage writes size bytes that are not a DICOM file.
func WriteGarbage(path string, size int) error {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte('a' + i%26)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func mustNewElement(t tag.Tag, value any) *dicom.Element {
	elem, err := dicom.NewElement(t, value)
	if err != nil {
		panic(fmt.Sprintf("failed to create element %v: %v", t, err))
	}
	return elem
}
