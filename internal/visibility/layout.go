package visibility

import (
	"sort"

	"github.com/roach88/pageflow/internal/model"
)

// Observation is the intersection ratio of one page.
type Observation struct {
	Index int     `json:"page_index"`
	Ratio float64 `json:"ratio"`
}

// Layout is the position of every page along the scroll axis.
// It is immutable; a rescale or rotation builds a new Layout.
type Layout struct {
	mode    model.ScrollMode
	gap     float64
	sizes   []model.Size
	offsets []float64
	extent  float64
}

// NewLayout stacks pages along the scroll axis of mode, separated by gap.
func NewLayout(pages []model.Descriptor, scale float64, rotation int, gap float64, mode model.ScrollMode) *Layout {
	if mode == "" {
		mode = model.Vertical
	}
	if gap < 0 {
		gap = 0
	}
	l := &Layout{
		mode:    mode,
		gap:     gap,
		sizes:   make([]model.Size, len(pages)),
		offsets: make([]float64, len(pages)),
	}

	pos := 0.0
	for i, p := range pages {
		l.sizes[i] = p.Size(rotation, scale)
		l.offsets[i] = pos
		pos += l.axis(l.sizes[i])
		if i < len(pages)-1 {
			pos += gap
		}
	}
	l.extent = pos
	return l
}

// NumPages returns the number of pages in the layout.
func (l *Layout) NumPages() int {
	return len(l.sizes)
}

// Mode returns the scroll axis.
func (l *Layout) Mode() model.ScrollMode {
	return l.mode
}

// Size returns the rendered size of page i.
func (l *Layout) Size(i int) model.Size {
	if i < 0 || i >= len(l.sizes) {
		return model.Size{}
	}
	return l.sizes[i]
}

// Offset returns the scroll offset at which page i starts.
func (l *Layout) Offset(i int) float64 {
	if i < 0 || i >= len(l.offsets) {
		return 0
	}
	return l.offsets[i]
}

// Extent returns the total length of the layout along the scroll axis.
func (l *Layout) Extent() float64 {
	return l.extent
}

// PageAt returns the page whose slot (page plus the gap after it) contains
// offset. Offsets before the first page map to 0 and past the end map to the
// last page. Returns -1 for an empty layout.
func (l *Layout) PageAt(offset float64) int {
	n := len(l.offsets)
	if n == 0 {
		return -1
	}
	// First page starting strictly after offset, minus one.
	i := sort.Search(n, func(i int) bool { return l.offsets[i] > offset }) - 1
	if i < 0 {
		return 0
	}
	return i
}

// Intersect returns the pages intersecting the viewport at scroll, in index
// order. Pages touching the viewport only at an edge are not included.
func (l *Layout) Intersect(viewport model.Size, scroll float64) []Observation {
	length := l.axis(viewport)
	if length <= 0 || len(l.sizes) == 0 {
		return nil
	}
	top, bottom := scroll, scroll+length

	var out []Observation
	for i := max(l.PageAt(top), 0); i < len(l.sizes); i++ {
		start := l.offsets[i]
		if start >= bottom {
			break
		}
		size := l.axis(l.sizes[i])
		if size <= 0 {
			continue
		}
		overlap := min(bottom, start+size) - max(top, start)
		if overlap <= 0 {
			continue
		}
		out = append(out, Observation{Index: i, Ratio: min(overlap/size, 1)})
	}
	return out
}

func (l *Layout) axis(s model.Size) float64 {
	if l.mode == model.Horizontal {
		return s.Width
	}
	return s.Height
}
