package model

import "fmt"

// File identifies the bytes a viewer was opened with.
type File struct {
	Name string `json:"name"`
	Data []byte `json:"-"`
}

// ViewerState is the committed snapshot broadcast to plugins and the host
// application. It is a value type; plugins receive copies.
type ViewerState struct {
	PageIndex  int     `json:"page_index"`
	Scale      float64 `json:"scale"`
	Rotation   int     `json:"rotation"`
	PageWidth  float64 `json:"page_width"`
	PageHeight float64 `json:"page_height"`
	File       File    `json:"file"`
}

// SpecialZoomLevel is a scale that depends on the viewport and page size.
type SpecialZoomLevel string

const (
	// ActualSize renders pages at scale 1.
	ActualSize SpecialZoomLevel = "actual-size"
	// PageFit fits a whole page inside the viewport.
	PageFit SpecialZoomLevel = "page-fit"
	// PageWidth fits the page width to the viewport width.
	PageWidth SpecialZoomLevel = "page-width"
)

// ParseSpecialZoomLevel validates s.
func ParseSpecialZoomLevel(s string) (SpecialZoomLevel, error) {
	switch l := SpecialZoomLevel(s); l {
	case ActualSize, PageFit, PageWidth:
		return l, nil
	default:
		return "", fmt.Errorf("unknown zoom level %q", s)
	}
}

// ScaleFor resolves the level for a page of the given size (at scale 1)
// inside a viewport. A zero viewport resolves to 1.
func (l SpecialZoomLevel) ScaleFor(page Size, viewport Size) float64 {
	if viewport.Width <= 0 || viewport.Height <= 0 || page.Width <= 0 || page.Height <= 0 {
		return 1
	}
	switch l {
	case PageFit:
		return min(viewport.Width/page.Width, viewport.Height/page.Height)
	case PageWidth:
		return viewport.Width / page.Width
	default:
		return 1
	}
}

// ScrollMode is the axis pages are stacked along.
type ScrollMode string

const (
	Vertical   ScrollMode = "vertical"
	Horizontal ScrollMode = "horizontal"
)

// ParseScrollMode validates s. The empty string means Vertical.
func ParseScrollMode(s string) (ScrollMode, error) {
	switch m := ScrollMode(s); m {
	case "":
		return Vertical, nil
	case Vertical, Horizontal:
		return m, nil
	default:
		return "", fmt.Errorf("unknown scroll mode %q", s)
	}
}
