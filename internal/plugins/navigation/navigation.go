// Package navigation provides first/previous/next/last page navigation on
// top of the plugin contract.
//
// The plugin mirrors the committed page and the page count into its store
// under KeyCurrentPage and KeyNumberOfPages. Toolbars subscribe to those
// keys; buttons call the navigation methods, which go through the viewer
// handle and are therefore applied on the viewer loop.
package navigation

import (
	"sync"

	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/store"
)

// Store keys.
const (
	KeyCurrentPage   = "currentPage"
	KeyNumberOfPages = "numberOfPages"
)

// Navigator is the page navigation plugin.
type Navigator struct {
	store *store.Store

	mu     sync.Mutex
	handle plugin.Handle
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithStore shares an existing store instead of creating one.
func WithStore(s *store.Store) Option {
	return func(n *Navigator) {
		n.store = s
	}
}

// New creates a navigation plugin.
func New(opts ...Option) *Navigator {
	n := &Navigator{}
	for _, opt := range opts {
		opt(n)
	}
	if n.store == nil {
		n.store = store.NewWithValues(map[string]any{
			KeyCurrentPage:   0,
			KeyNumberOfPages: 0,
		})
	}
	return n
}

// Store returns the plugin store.
func (n *Navigator) Store() *store.Store {
	return n.store
}

// Plugin returns the hook bundle to register with the viewer.
func (n *Navigator) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "navigation",
		Install: func(h plugin.Handle) error {
			n.setHandle(h)
			return nil
		},
		Uninstall: func(plugin.Handle) error {
			n.setHandle(nil)
			return nil
		},
		OnDocumentLoad: func(ev plugin.DocumentLoadEvent) error {
			n.store.Update(KeyNumberOfPages, ev.Doc.NumPages())
			return nil
		},
		OnViewerStateCommit: func(st model.ViewerState) error {
			if st.PageIndex != n.CurrentPage() {
				n.store.Update(KeyCurrentPage, st.PageIndex)
			}
			return nil
		},
	}
}

// CurrentPage returns the last page index seen by the plugin.
func (n *Navigator) CurrentPage() int {
	return store.GetOr(n.store, KeyCurrentPage, 0)
}

// NumberOfPages returns the page count of the loaded document, or 0.
func (n *Navigator) NumberOfPages() int {
	return store.GetOr(n.store, KeyNumberOfPages, 0)
}

// CanGoPrevious reports whether a previous page exists.
func (n *Navigator) CanGoPrevious() bool {
	return n.CurrentPage() > 0
}

// CanGoNext reports whether a next page exists.
func (n *Navigator) CanGoNext() bool {
	return n.CurrentPage()+1 < n.NumberOfPages()
}

// JumpToPage requests a jump to pageIndex. Indices outside the document
// are ignored by the viewer.
func (n *Navigator) JumpToPage(pageIndex int) error {
	h, err := n.getHandle()
	if err != nil {
		return err
	}
	h.JumpToPage(pageIndex)
	return nil
}

// GoToFirstPage jumps to the first page.
func (n *Navigator) GoToFirstPage() error {
	return n.JumpToPage(0)
}

// GoToLastPage jumps to the last page.
func (n *Navigator) GoToLastPage() error {
	return n.JumpToPage(n.NumberOfPages() - 1)
}

// GoToPreviousPage jumps one page back. It does nothing on the first page.
func (n *Navigator) GoToPreviousPage() error {
	if !n.CanGoPrevious() {
		return nil
	}
	return n.JumpToPage(n.CurrentPage() - 1)
}

// GoToNextPage jumps one page forward. It does nothing on the last page.
func (n *Navigator) GoToNextPage() error {
	if !n.CanGoNext() {
		return nil
	}
	return n.JumpToPage(n.CurrentPage() + 1)
}

func (n *Navigator) setHandle(h plugin.Handle) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handle = h
}

func (n *Navigator) getHandle() (plugin.Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.handle == nil {
		return nil, plugin.ErrNotInstalled
	}
	return n.handle, nil
}
