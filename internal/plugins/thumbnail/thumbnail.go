// Package thumbnail keeps a downscaled copy of every rendered page.
//
// Thumbnails are taken from the canvas surface when a page finishes
// rendering, so only pages the viewer has rendered have one. A rotation
// change drops every thumbnail; pages get new ones as they re-render.
package thumbnail

import (
	"image"
	"log/slog"
	"math"
	"sync"

	"golang.org/x/image/draw"

	"github.com/roach88/pageflow/internal/model"
	"github.com/roach88/pageflow/internal/plugin"
	"github.com/roach88/pageflow/internal/store"
)

// Store keys.
const (
	KeyCurrentPage = "currentPage"
	KeyRotation    = "rotation"
	KeyThumbnails  = "thumbnails"
)

// DefaultWidth is the thumbnail width in pixels.
const DefaultWidth = 100

// Thumbnail is the downscaled canvas of one page.
type Thumbnail struct {
	PageIndex int
	Rotation  int
	Image     *image.RGBA
}

// Thumbnailer is the thumbnail plugin.
type Thumbnailer struct {
	store  *store.Store
	width  int
	logger *slog.Logger

	mu       sync.Mutex
	handle   plugin.Handle
	rotation int
	thumbs   map[int]Thumbnail
}

// Option configures a Thumbnailer.
type Option func(*Thumbnailer)

// WithWidth sets the thumbnail width. Surfaces narrower than width are
// copied at their own size.
func WithWidth(px int) Option {
	return func(t *Thumbnailer) {
		if px > 0 {
			t.width = px
		}
	}
}

// WithStore shares an existing store instead of creating one.
func WithStore(s *store.Store) Option {
	return func(t *Thumbnailer) {
		t.store = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Thumbnailer) {
		t.logger = logger
	}
}

// New creates a thumbnail plugin.
func New(opts ...Option) *Thumbnailer {
	t := &Thumbnailer{
		width:  DefaultWidth,
		logger: slog.Default(),
		thumbs: make(map[int]Thumbnail),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.store == nil {
		t.store = store.New()
	}
	return t
}

// Store returns the plugin store.
func (t *Thumbnailer) Store() *store.Store {
	return t.store
}

// Plugin returns the hook bundle to register with the viewer.
func (t *Thumbnailer) Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: "thumbnail",
		Install: func(h plugin.Handle) error {
			t.mu.Lock()
			t.handle = h
			t.mu.Unlock()
			return nil
		},
		Uninstall: func(plugin.Handle) error {
			t.mu.Lock()
			t.handle = nil
			t.mu.Unlock()
			return nil
		},
		OnDocumentLoad: func(plugin.DocumentLoadEvent) error {
			t.mu.Lock()
			clear(t.thumbs)
			t.mu.Unlock()
			t.store.Update(KeyThumbnails, t.Thumbnails())
			return nil
		},
		OnCanvasLayerRender: t.onCanvasLayerRender,
		OnViewerStateCommit: t.onViewerStateCommit,
	}
}

func (t *Thumbnailer) onViewerStateCommit(st model.ViewerState) error {
	if cur, ok := store.Get[int](t.store, KeyCurrentPage); !ok || cur != st.PageIndex {
		t.store.Update(KeyCurrentPage, st.PageIndex)
	}

	t.mu.Lock()
	rotated := st.Rotation != t.rotation
	if rotated {
		t.rotation = st.Rotation
		clear(t.thumbs)
	}
	t.mu.Unlock()

	if rotated {
		t.store.Update(KeyRotation, st.Rotation)
		t.store.Update(KeyThumbnails, t.Thumbnails())
	}
	return nil
}

func (t *Thumbnailer) onCanvasLayerRender(ev plugin.CanvasLayerRenderEvent) error {
	if ev.Status != plugin.DidRender || ev.Surface == nil {
		return nil
	}
	src := ev.Surface.Bounds()
	if src.Empty() {
		return nil
	}

	w := min(t.width, src.Dx())
	h := max(int(math.Round(float64(src.Dy())*float64(w)/float64(src.Dx()))), 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), ev.Surface, src, draw.Src, nil)

	t.mu.Lock()
	t.thumbs[ev.PageIndex] = Thumbnail{PageIndex: ev.PageIndex, Rotation: ev.Rotation, Image: dst}
	t.mu.Unlock()

	t.logger.Debug("thumbnail updated", "page", ev.PageIndex, "width", w, "height", h)
	t.store.Update(KeyThumbnails, t.Thumbnails())
	return nil
}

// Thumbnail returns the thumbnail of pageIndex, if the page has rendered.
func (t *Thumbnailer) Thumbnail(pageIndex int) (Thumbnail, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	th, ok := t.thumbs[pageIndex]
	return th, ok
}

// Thumbnails returns a snapshot of every thumbnail by page index.
func (t *Thumbnailer) Thumbnails() map[int]Thumbnail {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[int]Thumbnail, len(t.thumbs))
	for k, v := range t.thumbs {
		out[k] = v
	}
	return out
}

// JumpToPage jumps to the page of a clicked thumbnail.
func (t *Thumbnailer) JumpToPage(pageIndex int) error {
	t.mu.Lock()
	h := t.handle
	t.mu.Unlock()
	if h == nil {
		return plugin.ErrNotInstalled
	}
	h.JumpToPage(pageIndex)
	return nil
}
