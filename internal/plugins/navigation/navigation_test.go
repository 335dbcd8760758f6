package navigation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pageflow/internal/document"
	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/testutil"
	"github.com/roach88/pageflow/internal/viewer"
)

type fakeHandle struct {
	jumps []int
}

func (h *fakeHandle) JumpToPage(pageIndex int) { h.jumps = append(h.jumps, pageIndex) }
func (h *fakeHandle) Rotate(plugin.Direction) {}
func (h *fakeHandle) SetScale(float64) {}
func (h *fakeHandle) ZoomTo(model.SpecialZoomLevel) {}
func (h *fakeHandle) ViewerState() model.ViewerState { return model.ViewerState{} }

func installed(t *testing.T) (*Navigator, *fakeHandle, plugin.Plugin) {
	t.Helper()
	n := New()
	h := &fakeHandle{}
	p := n.Plugin()
	require.NoError(t, p.Install(h))
	return n, h, p
}

func TestNavigator_NotInstalled(t *testing.T) {
	n := New()
	assert.ErrorIs(t, n.JumpToPage(1), plugin.ErrNotInstalled)
}

func TestNavigator_TracksState(t *testing.T) {
	n, _, p := installed(t)

	var seen []int
	n.Store().Subscribe(KeyCurrentPage, func(v any) { seen = append(seen, v.(int)) })

	require.NoError(t, p.OnDocumentLoad(plugin.DocumentLoadEvent{Doc: document.NewSynthetic("d", document.UniformPages(5, 10, 10))}))
	assert.Equal(t, 5, n.NumberOfPages())

	for _, page := range []int{0, 2, 2, 4} {
		require.NoError(t, p.OnViewerStateCommit(model.ViewerState{PageIndex: page, Scale: 1}))
	}
	assert.Equal(t, 4, n.CurrentPage())
	assert.Equal(t, []int{2, 4}, seen, "unchanged pages are not republished")
}

func TestNavigator_Buttons(t *testing.T) {
	n, h, p := installed(t)
	require.NoError(t, p.OnDocumentLoad(plugin.DocumentLoadEvent{Doc: document.NewSynthetic("d", document.UniformPages(5, 10, 10))}))

	assert.False(t, n.CanGoPrevious())
	require.NoError(t, n.GoToPreviousPage())
	require.NoError(t, n.GoToNextPage())
	require.NoError(t, n.GoToLastPage())

	require.NoError(t, p.OnViewerStateCommit(model.ViewerState{PageIndex: 4}))
	assert.False(t, n.CanGoNext())
	require.NoError(t, n.GoToNextPage())
	require.NoError(t, n.GoToPreviousPage())
	require.NoError(t, n.GoToFirstPage())

	assert.Equal(t, []int{1, 4, 3, 0}, h.jumps)

	require.NoError(t, p.Uninstall(h))
	assert.ErrorIs(t, n.GoToFirstPage(), plugin.ErrNotInstalled)
}

func TestNavigator_WithViewer(t *testing.T) {
	nav := New()
	c := viewer.New(
		document.NewSynthetic("doc", document.UniformPages(6, 100, 200)),
		model.File{Name: "doc.pdf"},
		viewer.WithLogger(testutil.QuietLogger()),
		viewer.WithViewport(100, 300),
		viewer.WithPlugins(nav.Plugin()),
	)
	require.NoError(t, c.Mount())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Drain(ctx))
	assert.Equal(t, 6, nav.NumberOfPages())

	require.NoError(t, nav.GoToLastPage())
	require.NoError(t, c.Drain(ctx))
	assert.Equal(t, 5, c.ViewerState().PageIndex)
	assert.Equal(t, 5, nav.CurrentPage())

	require.NoError(t, nav.GoToPreviousPage())
	require.NoError(t, c.Drain(ctx))
	assert.Equal(t, 4, nav.CurrentPage())
}

func TestNavigator_PublishesCommittedPage(t *testing.T) {
	nav := New()
	// A later plugin sends every jump to page 5 back to page 2.
	redirect := plugin.Plugin{
		Name: "redirect",
		OnViewerStateChange: func(st model.ViewerState) (model.ViewerState, error) {
			if st.PageIndex == 5 {
				st.PageIndex = 2
			}
			return st, nil
		},
	}
	var seen []int
	nav.Store().Subscribe(KeyCurrentPage, func(v any) { seen = append(seen, v.(int)) })

	c := viewer.New(
		document.NewSynthetic("doc", document.UniformPages(6, 100, 200)),
		model.File{Name: "doc.pdf"},
		viewer.WithLogger(testutil.QuietLogger()),
		viewer.WithViewport(100, 300),
		viewer.WithPlugins(nav.Plugin(), redirect),
	)
	require.NoError(t, c.Mount())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, c.Drain(ctx))

	require.NoError(t, nav.JumpToPage(5))
	require.NoError(t, c.Drain(ctx))

	assert.Equal(t, 2, c.ViewerState().PageIndex)
	assert.Equal(t, 2, nav.CurrentPage())
	assert.NotContains(t, seen, 5, "a page the viewer never committed is not published")
}
