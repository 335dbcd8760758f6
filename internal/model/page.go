package model

import "fmt"

// Descriptor is the immutable geometry of a single page at scale 1 and
// rotation 0. One descriptor exists per page; it is computed once per
// document.
type Descriptor struct {
	Index  int     `json:"page_index"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Size returns the page size after applying rotation and scale.
// Quarter turns swap width and height.
func (d Descriptor) Size(rotation int, scale float64) Size {
	w, h := d.Width*scale, d.Height*scale
	if NormalizeRotation(rotation)%180 != 0 {
		w, h = h, w
	}
	return Size{Width: w, Height: h}
}

// Size is a width/height pair in viewport units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RenderStatus is the per-page render lifecycle tag.
type RenderStatus int

const (
	// NotRendered means the page has no rendered content for the current
	// scale and rotation.
	NotRendered RenderStatus = iota
	// Rendering means a render has been started and has not completed.
	Rendering
	// Rendered means the page content is up to date.
	Rendered
)

// String implements fmt.Stringer.
func (s RenderStatus) String() string {
	switch s {
	case NotRendered:
		return "NotRendered"
	case Rendering:
		return "Rendering"
	case Rendered:
		return "Rendered"
	default:
		return fmt.Sprintf("RenderStatus(%d)", int(s))
	}
}

// Record is the visibility record of one page.
type Record struct {
	Index      int          `json:"page_index"`
	Status     RenderStatus `json:"status"`
	Visibility Visibility   `json:"visibility"`
}

// Range is the inclusive window of page indices eligible for rendering.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether pageIndex lies in [Start, End].
func (r Range) Contains(pageIndex int) bool {
	return pageIndex >= r.Start && pageIndex <= r.End
}

// Len returns the number of pages in the range.
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// Valid reports whether the range is non-empty and lies inside a document
// of numPages pages.
func (r Range) Valid(numPages int) bool {
	return r.Start >= 0 && r.Start <= r.End && r.End < numPages
}

// String implements fmt.Stringer.
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d]", r.Start, r.End)
}

// NormalizeRotation maps any multiple of 90 degrees into {0, 90, 180, 270}.
// Values that are not multiples of 90 are truncated toward zero first.
func NormalizeRotation(deg int) int {
	deg = (deg / 90) * 90
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}
