// Package collect groups the images of one study folder by view and series
// and picks a representative slice per view.
package collect

import (
	"github.com/mrsinham/tomoslice/internal/dicom/slice"
	"github.com/mrsinham/tomoslice/internal/dicom/view"
)

// Image is one classified file.
type Image struct {
	Path      string
	Size      int64
	View      view.View
	SeriesUID string
	Key       slice.Key
	Frames    int
}

// Series holds the images of one (view, series UID) pair in encounter order.
type Series struct {
	UID    string
	Images []Image
}

// Buckets maps view → series → images. Series are kept in insertion order
// per view so selection is deterministic.
type Buckets struct {
	views map[view.View][]*Series
	index map[view.View]map[string]*Series
}

// NewBuckets returns empty buckets.
func NewBuckets() *Buckets {
	return &Buckets{
		views: make(map[view.View][]*Series),
		index: make(map[view.View]map[string]*Series),
	}
}

// Add appends img to its (view, series) bucket, creating it on first use.
func (b *Buckets) Add(img Image) {
	byUID, ok := b.index[img.View]
	if !ok {
		byUID = make(map[string]*Series)
		b.index[img.View] = byUID
	}
	s, ok := byUID[img.SeriesUID]
	if !ok {
		s = &Series{UID: img.SeriesUID}
		byUID[img.SeriesUID] = s
		b.views[img.View] = append(b.views[img.View], s)
	}
	s.Images = append(s.Images, img)
}

// Series returns the series of v in insertion order.
func (b *Buckets) Series(v view.View) []*Series {
	return b.views[v]
}

// Len returns the number of images across all buckets.
func (b *Buckets) Len() int {
	n := 0
	for _, list := range b.views {
		for _, s := range list {
			n += len(s.Images)
		}
	}
	return n
}

// Choice is the representative slice picked for one view.
type Choice struct {
	View      view.View
	SeriesUID string
	Center    Image
	// Count is the number of slices in the chosen series.
	Count int
}

// Select picks, for each target view, the series with the most slices (the
// first one encountered on a tie) and its central slice. Views without any
// series are left out.
func (b *Buckets) Select() []Choice {
	var out []Choice
	for _, v := range view.Targets() {
		var best *Series
		for _, s := range b.views[v] {
			if best == nil || len(s.Images) > len(best.Images) {
				best = s
			}
		}
		if best == nil {
			continue
		}
		center, ok := slice.Center(best.Images, func(img Image) slice.Key { return img.Key })
		if !ok {
			continue
		}
		out = append(out, Choice{
			View:      v,
			SeriesUID: best.UID,
			Center:    center,
			Count:     len(best.Images),
		})
	}
	return out
}
