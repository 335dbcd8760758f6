package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Visibility is either OutOfRange or Visible(ratio).
//
// The zero value is OutOfRange, so freshly allocated records start outside
// the virtualization window.
type Visibility struct {
	ratio   float64
	visible bool
}

// OutOfRange returns the visibility of a page that is not mounted.
func OutOfRange() Visibility {
	return Visibility{}
}

// Visible returns the visibility of a mounted page intersecting the
// viewport by ratio. The ratio is clamped to [0, 1]; NaN becomes 0.
func Visible(ratio float64) Visibility {
	switch {
	case math.IsNaN(ratio):
		ratio = 0
	case ratio < 0:
		ratio = 0
	case ratio > 1:
		ratio = 1
	}
	return Visibility{ratio: ratio, visible: true}
}

// IsOutOfRange reports whether v is OutOfRange.
func (v Visibility) IsOutOfRange() bool {
	return !v.visible
}

// Ratio returns the ratio and true for Visible, or (0, false) for OutOfRange.
func (v Visibility) Ratio() (float64, bool) {
	return v.ratio, v.visible
}

// Compare returns -1, 0 or +1. OutOfRange is strictly less than any
// Visible ratio, including Visible(0).
func (v Visibility) Compare(o Visibility) int {
	switch {
	case !v.visible && !o.visible:
		return 0
	case !v.visible:
		return -1
	case !o.visible:
		return 1
	case v.ratio < o.ratio:
		return -1
	case v.ratio > o.ratio:
		return 1
	default:
		return 0
	}
}

// Less reports whether v orders before o.
func (v Visibility) Less(o Visibility) bool {
	return v.Compare(o) < 0
}

// String implements fmt.Stringer.
func (v Visibility) String() string {
	if !v.visible {
		return "OutOfRange"
	}
	return fmt.Sprintf("Visible(%s)", strconv.FormatFloat(v.ratio, 'g', -1, 64))
}

// MarshalJSON encodes OutOfRange as null and Visible as its ratio.
func (v Visibility) MarshalJSON() ([]byte, error) {
	if !v.visible {
		return []byte("null"), nil
	}
	return json.Marshal(v.ratio)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = OutOfRange()
		return nil
	}
	var ratio float64
	if err := json.Unmarshal(data, &ratio); err != nil {
		return fmt.Errorf("visibility: %w", err)
	}
	*v = Visible(ratio)
	return nil
}
