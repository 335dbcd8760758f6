package visibility

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/render"
)

func uniformPages(n int, w, h float64) []model.Descriptor {
	pages := make([]model.Descriptor, n)
	for i := range pages {
		pages[i] = model.Descriptor{Index: i, Width: w, Height: h}
	}
	return pages
}

// recordingSink records every call in order.
type recordingSink struct {
	calls []string
	fail  error
}

func (s *recordingSink) SetVisibility(i int, r float64) error {
	s.calls = append(s.calls, "vis")
	return s.fail
}

func (s *recordingSink) SetOutOfRange(i int) error {
	s.calls = append(s.calls, "out")
	return s.fail
}

func (s *recordingSink) SetRange(start, end int) error {
	s.calls = append(s.calls, "range")
	return s.fail
}

func TestNewLayout_Offsets(t *testing.T) {
	l := NewLayout(uniformPages(4, 100, 200), 1, 0, 10, model.Vertical)

	assert.Equal(t, 4, l.NumPages())
	assert.Equal(t, 0.0, l.Offset(0))
	assert.Equal(t, 210.0, l.Offset(1))
	assert.Equal(t, 630.0, l.Offset(3))
	assert.Equal(t, 830.0, l.Extent())
	assert.Equal(t, 0.0, l.Offset(9))
}

func TestNewLayout_ScaleAndRotation(t *testing.T) {
	l := NewLayout(uniformPages(2, 100, 200), 2, 90, 0, model.Vertical)

	assert.Equal(t, model.Size{Width: 400, Height: 200}, l.Size(0))
	assert.Equal(t, 200.0, l.Offset(1))
	assert.Equal(t, model.Size{}, l.Size(5))
}

func TestNewLayout_Horizontal(t *testing.T) {
	l := NewLayout(uniformPages(3, 100, 200), 1, 0, 5, model.Horizontal)

	assert.Equal(t, model.Horizontal, l.Mode())
	assert.Equal(t, 105.0, l.Offset(1))
	assert.Equal(t, 310.0, l.Extent())
}

func TestLayout_PageAt(t *testing.T) {
	l := NewLayout(uniformPages(4, 100, 200), 1, 0, 10, model.Vertical)

	assert.Equal(t, 0, l.PageAt(-50))
	assert.Equal(t, 0, l.PageAt(0))
	assert.Equal(t, 0, l.PageAt(205))
	assert.Equal(t, 1, l.PageAt(210))
	assert.Equal(t, 3, l.PageAt(10000))
	assert.Equal(t, -1, NewLayout(nil, 1, 0, 0, "").PageAt(0))
}

func TestLayout_Intersect(t *testing.T) {
	l := NewLayout(uniformPages(4, 100, 200), 1, 0, 10, model.Vertical)
	vp := model.Size{Width: 300, Height: 300}

	assert.Equal(t, []Observation{{Index: 0, Ratio: 1}, {Index: 1, Ratio: 0.45}}, l.Intersect(vp, 0))
	assert.Equal(t, []Observation{{Index: 1, Ratio: 0.8}, {Index: 2, Ratio: 0.65}}, l.Intersect(vp, 250))
	assert.Nil(t, l.Intersect(model.Size{}, 0), "zero viewport sees nothing")
}

func TestLayout_IntersectEdgeTouchExcluded(t *testing.T) {
	l := NewLayout(uniformPages(2, 100, 200), 1, 0, 0, model.Vertical)

	obs := l.Intersect(model.Size{Width: 100, Height: 200}, 0)
	assert.Equal(t, []Observation{{Index: 0, Ratio: 1}}, obs)
}

func TestTracker_ResizeSeedsWindowAndVisibility(t *testing.T) {
	q := render.NewQueue(8)
	tr := NewTracker(q, NewLayout(uniformPages(8, 100, 200), 1, 0, 10, model.Vertical), 1)

	up, err := tr.OnResize(300, 300)
	require.NoError(t, err)

	assert.True(t, up.WindowChanged)
	assert.Equal(t, model.Range{Start: 0, End: 2}, up.Window)
	assert.Equal(t, model.Range{Start: 0, End: 2}, q.Range())
	assert.Equal(t, 0, q.CurrentPage())

	rec2, _ := q.Record(2)
	assert.Equal(t, model.Visible(0), rec2.Visibility, "overscan page is mounted at ratio zero")
	rec3, _ := q.Record(3)
	assert.True(t, rec3.Visibility.IsOutOfRange())
	assert.Equal(t, 0, q.HighestPriorityPage())
}

func TestTracker_ScrollMovesWindow(t *testing.T) {
	q := render.NewQueue(8)
	tr := NewTracker(q, NewLayout(uniformPages(8, 100, 200), 1, 0, 10, model.Vertical), 1)
	_, err := tr.OnResize(300, 300)
	require.NoError(t, err)

	up, err := tr.OnScroll(1050)
	require.NoError(t, err)

	// offsets: 0,210,420,630,840,1050,1260,... viewport [1050,1350]
	assert.Equal(t, model.Range{Start: 4, End: 7}, up.Window)
	assert.Equal(t, 5, q.CurrentPage())
	rec0, _ := q.Record(0)
	assert.True(t, rec0.Visibility.IsOutOfRange())
	assert.Equal(t, model.NotRendered, rec0.Status)
}

func TestTracker_SameWindowDoesNotResetRange(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(sink, NewLayout(uniformPages(8, 100, 200), 1, 0, 10, model.Vertical), 0)
	_, err := tr.OnResize(300, 300)
	require.NoError(t, err)
	sink.calls = nil

	up, err := tr.OnScroll(5)
	require.NoError(t, err)

	assert.False(t, up.WindowChanged)
	assert.NotContains(t, sink.calls, "range")
}

func TestTracker_ScrollTo(t *testing.T) {
	q := render.NewQueue(8)
	tr := NewTracker(q, NewLayout(uniformPages(8, 100, 200), 1, 0, 10, model.Vertical), 2)
	_, err := tr.OnResize(300, 300)
	require.NoError(t, err)

	_, err = tr.ScrollTo(7)
	require.NoError(t, err)

	assert.Equal(t, 1470.0, tr.Scroll())
	assert.Equal(t, 7, q.CurrentPage())
	assert.Equal(t, model.Range{Start: 5, End: 7}, tr.Window())

	_, err = tr.ScrollTo(8)
	assert.Error(t, err)
}

func TestTracker_SetLayoutKeepsAnchor(t *testing.T) {
	q := render.NewQueue(8)
	pages := uniformPages(8, 100, 200)
	tr := NewTracker(q, NewLayout(pages, 1, 0, 10, model.Vertical), 1)
	_, err := tr.OnResize(300, 300)
	require.NoError(t, err)
	_, err = tr.ScrollTo(3)
	require.NoError(t, err)

	_, err = tr.SetLayout(NewLayout(pages, 2, 0, 10, model.Vertical), 3)
	require.NoError(t, err)

	assert.Equal(t, 3*410.0, tr.Scroll())
	assert.Equal(t, 3, q.CurrentPage())
}

func TestTracker_ZeroViewportAnchorsWindowAtScroll(t *testing.T) {
	q := render.NewQueue(8)
	tr := NewTracker(q, NewLayout(uniformPages(8, 100, 200), 1, 0, 10, model.Vertical), 1)

	up, err := tr.OnScroll(640)
	require.NoError(t, err)

	assert.Equal(t, model.Range{Start: 2, End: 4}, up.Window)
	assert.Empty(t, up.Visible)
	// Mounted pages sit at ratio zero, so the window still renders top-down.
	assert.Equal(t, 2, q.HighestPriorityPage())
	assert.Equal(t, 2, q.CurrentPage())
}

func TestTracker_OnIntersectionChange(t *testing.T) {
	q := render.NewQueue(4)
	tr := NewTracker(q, nil, 0)

	require.NoError(t, tr.OnIntersectionChange(2, 0.4))
	rec, _ := q.Record(2)
	r, ok := rec.Visibility.Ratio()
	assert.True(t, ok)
	assert.Equal(t, 0.4, r)

	require.NoError(t, tr.OnIntersectionChange(1, 0))
	rec, _ = q.Record(1)
	assert.Equal(t, model.Visible(0), rec.Visibility)

	require.NoError(t, tr.OnIntersectionChange(2, -0.5))
	rec, _ = q.Record(2)
	assert.Equal(t, model.Visible(0), rec.Visibility)

	require.NoError(t, tr.OnIntersectionChange(3, 1.7))
	rec, _ = q.Record(3)
	assert.Equal(t, model.Visible(1), rec.Visibility)
}

func TestTracker_PagesLeavingWindowGoOutOfRange(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(sink, NewLayout(uniformPages(8, 100, 200), 1, 0, 0, model.Vertical), 0)
	_, err := tr.OnResize(100, 200)
	require.NoError(t, err)
	assert.Equal(t, []string{"range", "vis"}, sink.calls)
	sink.calls = nil

	// Window [0,0] moves to [2,2]: page 0 leaves explicitly.
	_, err = tr.OnScroll(400)
	require.NoError(t, err)
	assert.Equal(t, []string{"out", "range", "vis"}, sink.calls)
}

func TestTracker_NilLayoutIsNoop(t *testing.T) {
	sink := &recordingSink{}
	tr := NewTracker(sink, nil, 1)

	up, err := tr.OnResize(100, 100)
	require.NoError(t, err)
	assert.Equal(t, Update{}, up)
	assert.Empty(t, sink.calls)
}

func TestTracker_SinkErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	sink := &recordingSink{fail: boom}
	tr := NewTracker(sink, NewLayout(uniformPages(2, 100, 100), 1, 0, 0, model.Vertical), 0)

	_, err := tr.OnResize(100, 100)
	assert.ErrorIs(t, err, boom)
}
