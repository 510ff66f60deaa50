package meta

import "github.com/suyashkumar/dicom/pkg/tag"

// Header tags read by the slice pipeline and the tally tools.
var (
	Laterality           = tag.Tag{Group: 0x0020, Element: 0x0060}
	ImageLaterality      = tag.Tag{Group: 0x0020, Element: 0x0062}
	ViewPosition         = tag.Tag{Group: 0x0018, Element: 0x5101}
	SeriesDescription    = tag.Tag{Group: 0x0008, Element: 0x103E}
	InstanceNumber       = tag.Tag{Group: 0x0020, Element: 0x0013}
	ImagePositionPatient = tag.Tag{Group: 0x0020, Element: 0x0032}
	SOPInstanceUID       = tag.Tag{Group: 0x0008, Element: 0x0018}
	NumberOfFrames       = tag.Tag{Group: 0x0028, Element: 0x0008}
	SeriesInstanceUID    = tag.Tag{Group: 0x0020, Element: 0x000E}
)
