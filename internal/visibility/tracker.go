package visibility

import (
	"fmt"
	"log/slog"

	"github.com/roach88/pageflow/internal/model"
)

// DefaultOverscan is the number of pages mounted beyond the visible ones on
// each side.
const DefaultOverscan = 2

// Sink receives visibility signals. *render.Queue implements it.
type Sink interface {
	SetVisibility(pageIndex int, ratio float64) error
	SetOutOfRange(pageIndex int) error
	SetRange(start, end int) error
}

// Update describes the outcome of one recomputation.
type Update struct {
	Window        model.Range
	WindowChanged bool
	Visible       []Observation
}

// Tracker turns viewport geometry into visibility signals.
//
// Thread-safety: Tracker is not safe for concurrent use; the viewer calls it
// from its event loop only.
type Tracker struct {
	sink     Sink
	layout   *Layout
	viewport model.Size
	scroll   float64
	overscan int
	window   model.Range
	seeded   bool
}

// NewTracker creates a tracker that reports into sink.
func NewTracker(sink Sink, layout *Layout, overscan int) *Tracker {
	if overscan < 0 {
		overscan = 0
	}
	return &Tracker{
		sink:     sink,
		layout:   layout,
		overscan: overscan,
	}
}

// Layout returns the current layout.
func (t *Tracker) Layout() *Layout {
	return t.layout
}

// Viewport returns the last observed container size.
func (t *Tracker) Viewport() model.Size {
	return t.viewport
}

// Scroll returns the current scroll offset.
func (t *Tracker) Scroll() float64 {
	return t.scroll
}

// Window returns the current virtualization window.
func (t *Tracker) Window() model.Range {
	return t.window
}

// OnResize records a new container size and recomputes visibility.
func (t *Tracker) OnResize(width, height float64) (Update, error) {
	t.viewport = model.Size{Width: max(width, 0), Height: max(height, 0)}
	return t.recompute()
}

// OnScroll records a new scroll offset and recomputes visibility.
func (t *Tracker) OnScroll(offset float64) (Update, error) {
	t.scroll = max(offset, 0)
	return t.recompute()
}

// ScrollTo scrolls so that page i starts at the top of the viewport.
func (t *Tracker) ScrollTo(pageIndex int) (Update, error) {
	if t.layout == nil || pageIndex < 0 || pageIndex >= t.layout.NumPages() {
		return Update{}, fmt.Errorf("scroll to page %d: out of bounds", pageIndex)
	}
	t.scroll = t.layout.Offset(pageIndex)
	return t.recompute()
}

// SetLayout replaces the layout (after a rescale or rotation) and keeps
// anchorPage at the top of the viewport.
func (t *Tracker) SetLayout(layout *Layout, anchorPage int) (Update, error) {
	t.layout = layout
	if layout != nil && anchorPage >= 0 && anchorPage < layout.NumPages() {
		t.scroll = layout.Offset(anchorPage)
	}
	return t.recompute()
}

// OnIntersectionChange forwards a raw intersection observation from a host
// that measures intersections itself. The sink clamps the ratio to [0, 1];
// a mounted page that stopped intersecting stays visible at ratio zero.
func (t *Tracker) OnIntersectionChange(pageIndex int, ratio float64) error {
	return t.sink.SetVisibility(pageIndex, ratio)
}

// Refresh recomputes visibility without changing any input.
func (t *Tracker) Refresh() (Update, error) {
	return t.recompute()
}

func (t *Tracker) recompute() (Update, error) {
	if t.layout == nil || t.layout.NumPages() == 0 {
		return Update{}, nil
	}
	n := t.layout.NumPages()

	visible := t.layout.Intersect(t.viewport, t.scroll)
	first, last := -1, -1
	if len(visible) > 0 {
		first, last = visible[0].Index, visible[len(visible)-1].Index
	} else {
		first = t.layout.PageAt(t.scroll)
		last = first
	}

	window := model.Range{
		Start: max(first-t.overscan, 0),
		End:   min(last+t.overscan, n-1),
	}

	changed := !t.seeded || window != t.window
	if changed {
		if t.seeded {
			for i := t.window.Start; i <= t.window.End && i < n; i++ {
				if window.Contains(i) {
					continue
				}
				if err := t.sink.SetOutOfRange(i); err != nil {
					return Update{}, fmt.Errorf("page %d: %w", i, err)
				}
			}
		}
		if err := t.sink.SetRange(window.Start, window.End); err != nil {
			return Update{}, fmt.Errorf("set range: %w", err)
		}
		slog.Debug("virtualization window moved",
			"from", t.window.String(),
			"to", window.String(),
		)
		t.window = window
		t.seeded = true
	}

	ratios := make(map[int]float64, len(visible))
	for _, o := range visible {
		ratios[o.Index] = o.Ratio
	}
	// Mounted pages outside the viewport report a zero ratio. Only SetRange
	// takes pages out of range.
	for i := window.Start; i <= window.End; i++ {
		if err := t.sink.SetVisibility(i, ratios[i]); err != nil {
			return Update{}, fmt.Errorf("page %d: %w", i, err)
		}
	}

	return Update{Window: window, WindowChanged: changed, Visible: visible}, nil
}
