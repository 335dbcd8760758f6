package render

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/pageflow/internal/model"
)

// NoPage is returned when there is nothing to render or no current page.
const NoPage = -1

var (
	// ErrPageIndex is returned for a page index outside [0, numPages-1].
	ErrPageIndex = errors.New("page index out of bounds")

	// ErrInvalidRange is returned by SetRange for an empty or out-of-bounds
	// window.
	ErrInvalidRange = errors.New("invalid range")

	// ErrNotInRange is returned by MarkRendering for a page outside the
	// current window.
	ErrNotInRange = errors.New("page not in range")
)

// Queue holds the render queue state of one document.
type Queue struct {
	numPages             int
	currentRenderingPage int
	rng                  model.Range
	records              []model.Record
}

// NewQueue creates a queue for a document of numPages pages. Every page
// starts OutOfRange and NotRendered, and the range covers the whole
// document.
func NewQueue(numPages int) *Queue {
	if numPages < 0 {
		numPages = 0
	}
	records := make([]model.Record, numPages)
	for i := range records {
		records[i] = model.Record{
			Index:      i,
			Status:     model.NotRendered,
			Visibility: model.OutOfRange(),
		}
	}
	return &Queue{
		numPages:             numPages,
		currentRenderingPage: NoPage,
		rng:                  model.Range{Start: 0, End: numPages - 1},
		records:              records,
	}
}

// NumPages returns the fixed page count.
func (q *Queue) NumPages() int {
	return q.numPages
}

// Range returns the current window.
func (q *Queue) Range() model.Range {
	return q.rng
}

// CurrentRenderingPage returns the page being rendered, or NoPage.
func (q *Queue) CurrentRenderingPage() int {
	return q.currentRenderingPage
}

// Record returns the record of pageIndex.
func (q *Queue) Record(pageIndex int) (model.Record, bool) {
	if !q.valid(pageIndex) {
		return model.Record{}, false
	}
	return q.records[pageIndex], true
}

// Records returns a copy of every record, indexed by page.
func (q *Queue) Records() []model.Record {
	out := make([]model.Record, len(q.records))
	copy(out, q.records)
	return out
}

// IsInRange reports whether pageIndex lies inside the current window.
func (q *Queue) IsInRange(pageIndex int) bool {
	return q.rng.Contains(pageIndex)
}

// SetVisibility records the intersection ratio of a page. The ratio is
// clamped to [0, 1]. Observations for pages outside the window are ignored
// so the out-of-range invariant holds.
func (q *Queue) SetVisibility(pageIndex int, ratio float64) error {
	if !q.valid(pageIndex) {
		return fmt.Errorf("set visibility of page %d: %w", pageIndex, ErrPageIndex)
	}
	if !q.IsInRange(pageIndex) {
		slog.Debug("ignoring visibility of page outside range",
			"page", pageIndex,
			"range", q.rng.String(),
		)
		return nil
	}
	q.records[pageIndex].Visibility = model.Visible(ratio)
	return nil
}

// SetOutOfRange marks a page as no longer intersecting the mounted window.
func (q *Queue) SetOutOfRange(pageIndex int) error {
	if !q.valid(pageIndex) {
		return fmt.Errorf("set out of range of page %d: %w", pageIndex, ErrPageIndex)
	}
	q.records[pageIndex].Visibility = model.OutOfRange()
	return nil
}

// SetRange moves the window to [start, end]. Every page outside the new
// window is reset to OutOfRange and NotRendered.
func (q *Queue) SetRange(start, end int) error {
	r := model.Range{Start: start, End: end}
	if !r.Valid(q.numPages) {
		return fmt.Errorf("set range %s for %d pages: %w", r, q.numPages, ErrInvalidRange)
	}

	q.rng = r
	for i := range q.records {
		if r.Contains(i) {
			continue
		}
		q.records[i].Visibility = model.OutOfRange()
		q.records[i].Status = model.NotRendered
	}
	if q.currentRenderingPage != NoPage && !r.Contains(q.currentRenderingPage) {
		q.currentRenderingPage = NoPage
	}
	return nil
}

// MarkRendering records that pageIndex started rendering. If a different
// page was still Rendering, that render was abandoned and the page goes
// back to NotRendered so it gets another chance.
func (q *Queue) MarkRendering(pageIndex int) error {
	if !q.valid(pageIndex) {
		return fmt.Errorf("mark rendering page %d: %w", pageIndex, ErrPageIndex)
	}
	if !q.IsInRange(pageIndex) {
		return fmt.Errorf("mark rendering page %d outside %s: %w", pageIndex, q.rng, ErrNotInRange)
	}

	prev := q.currentRenderingPage
	if prev != NoPage && prev != pageIndex && q.records[prev].Status == model.Rendering {
		slog.Debug("demoting abandoned render",
			"page", prev,
			"next", pageIndex,
		)
		q.records[prev].Status = model.NotRendered
	}

	q.records[pageIndex].Status = model.Rendering
	q.currentRenderingPage = pageIndex
	return nil
}

// MarkRendered records that pageIndex finished rendering. It is
// idempotent. A completion for a page outside the window is accepted but
// leaves the page NotRendered.
func (q *Queue) MarkRendered(pageIndex int) error {
	if !q.valid(pageIndex) {
		return fmt.Errorf("mark rendered page %d: %w", pageIndex, ErrPageIndex)
	}
	if q.currentRenderingPage == pageIndex {
		q.currentRenderingPage = NoPage
	}
	if !q.IsInRange(pageIndex) {
		slog.Debug("render completed outside range",
			"page", pageIndex,
			"range", q.rng.String(),
		)
		return nil
	}
	q.records[pageIndex].Status = model.Rendered
	return nil
}

// MarkNotRendered resets a single page, typically after a failed render.
func (q *Queue) MarkNotRendered(pageIndex int) error {
	if !q.valid(pageIndex) {
		return fmt.Errorf("mark not rendered page %d: %w", pageIndex, ErrPageIndex)
	}
	if q.currentRenderingPage == pageIndex {
		q.currentRenderingPage = NoPage
	}
	q.records[pageIndex].Status = model.NotRendered
	return nil
}

// MarkRangeNotRendered resets the status of every in-range page without
// touching visibility. Used after a rotation or scale change invalidates
// rendered content.
func (q *Queue) MarkRangeNotRendered() {
	for i := q.rng.Start; i <= q.rng.End && i < q.numPages; i++ {
		q.records[i].Status = model.NotRendered
	}
	q.currentRenderingPage = NoPage
}

// HighestPriorityPage returns the page that should render next, or NoPage.
//
// Visible pages are the in-range pages that are not OutOfRange. The first
// visible NotRendered page (lowest index) wins, unless a visible page is
// already Rendering. When every visible page is Rendered, the page right
// after the last visible one is prefetched, then the page right before the
// first visible one. A prefetch candidate only has to exist, so it may lie
// just outside the window; such a page cannot be marked Rendering and
// callers render it off the books.
func (q *Queue) HighestPriorityPage() int {
	first, last := NoPage, NoPage
	firstNotRendered := NoPage

	for i := q.rng.Start; i <= q.rng.End && i < q.numPages; i++ {
		rec := q.records[i]
		if rec.Visibility.IsOutOfRange() {
			continue
		}
		if first == NoPage {
			first = i
		}
		last = i

		switch rec.Status {
		case model.Rendering:
			return NoPage
		case model.NotRendered:
			if firstNotRendered == NoPage {
				firstNotRendered = i
			}
		}
	}

	if first == NoPage {
		return NoPage
	}
	if firstNotRendered != NoPage {
		return firstNotRendered
	}

	if next := last + 1; q.prefetchable(next) {
		return next
	}
	if prev := first - 1; q.prefetchable(prev) {
		return prev
	}
	return NoPage
}

// CurrentPage returns the in-range page with the highest visibility, ties
// broken toward the lowest index, or NoPage when nothing is visible.
func (q *Queue) CurrentPage() int {
	best := NoPage
	for i := q.rng.Start; i <= q.rng.End && i < q.numPages; i++ {
		v := q.records[i].Visibility
		if v.IsOutOfRange() {
			continue
		}
		if best == NoPage || q.records[best].Visibility.Less(v) {
			best = i
		}
	}
	return best
}

func (q *Queue) prefetchable(pageIndex int) bool {
	return q.valid(pageIndex) && q.records[pageIndex].Status != model.Rendered
}

func (q *Queue) valid(pageIndex int) bool {
	return pageIndex >= 0 && pageIndex < q.numPages
}
